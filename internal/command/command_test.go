package command

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lbarasti/graphsynth/internal/protocol"
	"github.com/lbarasti/graphsynth/internal/ring"
	"github.com/lbarasti/graphsynth/internal/state"
)

const testRate = 44100

type fixture struct {
	stage  *Stage
	msgs   *ring.SPSC[protocol.Message]
	events chan protocol.Event
	shared *state.Shared
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	msgs := ring.New[protocol.Message](64)
	events := make(chan protocol.Event, 64)
	shared := state.New(testRate, 1)
	commands := make(chan protocol.Command)
	stage := New(commands, msgs, events, shared, testRate, 4, log.New(io.Discard))
	return &fixture{stage: stage, msgs: msgs, events: events, shared: shared}
}

func (f *fixture) popMsg(t *testing.T) protocol.Message {
	t.Helper()
	m, ok := f.msgs.Pop()
	require.True(t, ok, "expected a message on the ring")
	return m
}

func (f *fixture) popEvent(t *testing.T) protocol.Event {
	t.Helper()
	select {
	case e := <-f.events:
		return e
	default:
		t.Fatal("expected an event")
		return nil
	}
}

func (f *fixture) expectCommandError(t *testing.T) protocol.CommandError {
	t.Helper()
	e := f.popEvent(t)
	ce, ok := e.(protocol.CommandError)
	require.True(t, ok, "expected CommandError, got %T", e)
	return ce
}

func TestNoteStartRoutesToRowInstrument(t *testing.T) {
	f := newFixture(t)
	f.stage.Handle(protocol.SelectInstrument{Index: 2, Row: 1})
	f.stage.Handle(protocol.NoteStart{Note: 60, Row: 1, Velocity: 0.8})

	m := f.popMsg(t).(protocol.MsgNoteStart)
	assert.Equal(t, 2, m.Instrument)
	assert.Equal(t, 60, m.Note, "octave 4 means no transposition")
	assert.Equal(t, float32(0.8), m.Velocity)
}

func TestNoteTransposedByOctave(t *testing.T) {
	f := newFixture(t)
	f.stage.Handle(protocol.SetOctave{Octave: 6, Row: 0})
	f.stage.Handle(protocol.NoteStart{Note: 60, Row: 0, Velocity: 1})
	m := f.popMsg(t).(protocol.MsgNoteStart)
	assert.Equal(t, 84, m.Note)

	f.stage.Handle(protocol.NoteStop{Note: 60, Row: 0})
	stop := f.popMsg(t).(protocol.MsgNoteStop)
	assert.Equal(t, 84, stop.Note)
}

func TestNoteStartValidation(t *testing.T) {
	f := newFixture(t)
	f.stage.Handle(protocol.NoteStart{Note: 60, Row: 9, Velocity: 1})
	f.expectCommandError(t)

	f.stage.Handle(protocol.NoteStart{Note: 200, Row: 0, Velocity: 1})
	f.expectCommandError(t)

	f.stage.Handle(protocol.NoteStart{Note: 60, Row: 0, Velocity: 1.5})
	f.expectCommandError(t)

	assert.Equal(t, 0, f.msgs.Len(), "rejected commands emit no messages")
}

func TestOctaveShiftSaturates(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 10; i++ {
		f.stage.Handle(protocol.OctaveUp{Row: 0})
	}
	octaves, _ := f.stage.Rows()
	assert.Equal(t, 8, octaves[0])

	for i := 0; i < 20; i++ {
		f.stage.Handle(protocol.OctaveDown{Row: 0})
	}
	octaves, _ = f.stage.Rows()
	assert.Equal(t, 0, octaves[0])
}

func TestSetOctaveValidates(t *testing.T) {
	f := newFixture(t)
	f.stage.Handle(protocol.SetOctave{Octave: 12, Row: 0})
	f.expectCommandError(t)
	octaves, _ := f.stage.Rows()
	assert.Equal(t, 4, octaves[0], "invalid octave leaves state untouched")
}

func TestLinkedOctavesMoveTogether(t *testing.T) {
	f := newFixture(t)
	f.stage.Handle(protocol.LinkOctaves{})
	f.stage.Handle(protocol.SetOctave{Octave: 6, Row: 1})
	octaves, _ := f.stage.Rows()
	assert.Equal(t, [2]int{6, 6}, octaves)

	f.stage.Handle(protocol.UnlinkOctaves{})
	f.stage.Handle(protocol.SetOctave{Octave: 3, Row: 0})
	octaves, _ = f.stage.Rows()
	assert.Equal(t, [2]int{3, 6}, octaves)
}

func TestInstrumentCycling(t *testing.T) {
	f := newFixture(t)
	f.stage.Handle(protocol.NextInstrument{Row: 0})
	_, instruments := f.stage.Rows()
	assert.Equal(t, 1, instruments[0])

	f.stage.Handle(protocol.PreviousInstrument{Row: 0})
	f.stage.Handle(protocol.PreviousInstrument{Row: 0})
	_, instruments = f.stage.Rows()
	assert.Equal(t, 3, instruments[0], "previous wraps around the bank")

	f.stage.Handle(protocol.SelectInstrument{Index: 9, Row: 0})
	f.expectCommandError(t)
}

func TestAddNodeEmitsAssignedID(t *testing.T) {
	f := newFixture(t)
	f.stage.Handle(protocol.AddNode{NodeType: "sine"})
	e := f.popEvent(t).(protocol.NodeAdded)
	assert.Equal(t, "sine", e.NodeType)
	assert.NotZero(t, e.ID)
	assert.Equal(t, 1, f.stage.Patch().Len())

	f.stage.Handle(protocol.AddNode{NodeType: "flux-capacitor"})
	f.expectCommandError(t)
}

func buildPlayablePatch(t *testing.T, f *fixture) (src, flt, out uint64) {
	t.Helper()
	f.stage.Handle(protocol.AddNode{NodeType: "sine"})
	src = f.popEvent(t).(protocol.NodeAdded).ID
	f.stage.Handle(protocol.AddNode{NodeType: "lowpass"})
	flt = f.popEvent(t).(protocol.NodeAdded).ID
	f.stage.Handle(protocol.AddNode{NodeType: "audio-out"})
	out = f.popEvent(t).(protocol.NodeAdded).ID
	f.stage.Handle(protocol.Connect{From: src, FromPort: 0, To: flt, ToPort: 0})
	f.stage.Handle(protocol.Connect{From: flt, FromPort: 0, To: out, ToPort: 0})
	return
}

func TestPlaySwapsGraphThenSetsMode(t *testing.T) {
	f := newFixture(t)
	buildPlayablePatch(t, f)
	f.stage.Handle(protocol.Play{})

	swap, ok := f.popMsg(t).(protocol.MsgSwapGraph)
	require.True(t, ok, "SwapGraph must precede SetRenderMode")
	require.NotNil(t, swap.Graph)
	mode := f.popMsg(t).(protocol.MsgSetRenderMode)
	assert.Equal(t, protocol.ModeGraph, mode.Mode)
	assert.True(t, f.stage.GraphLive())

	_, ok = f.popEvent(t).(protocol.AudioStarted)
	assert.True(t, ok)
}

func TestPlayWithBadCycleEmitsGraphError(t *testing.T) {
	f := newFixture(t)
	f.stage.Handle(protocol.AddNode{NodeType: "lowpass"})
	a := f.popEvent(t).(protocol.NodeAdded).ID
	f.stage.Handle(protocol.AddNode{NodeType: "lowpass"})
	b := f.popEvent(t).(protocol.NodeAdded).ID
	f.stage.Handle(protocol.Connect{From: a, FromPort: 0, To: b, ToPort: 0})
	f.stage.Handle(protocol.Connect{From: b, FromPort: 0, To: a, ToPort: 0})

	f.stage.Handle(protocol.Play{})
	_, ok := f.popEvent(t).(protocol.GraphError)
	assert.True(t, ok)
	assert.Equal(t, 0, f.msgs.Len(), "failed compilation sends nothing to the render stage")
	assert.False(t, f.stage.GraphLive())
}

func TestLiveSetParameterTranslatesID(t *testing.T) {
	f := newFixture(t)
	_, flt, _ := buildPlayablePatch(t, f)
	f.stage.Handle(protocol.Play{})
	f.popMsg(t) // SwapGraph
	f.popMsg(t) // SetRenderMode
	f.popEvent(t)

	f.stage.Handle(protocol.SetParameter{NodeID: flt, ParamName: "cutoff_hz", Value: 500})
	m := f.popMsg(t).(protocol.MsgGraphSetParameter)
	assert.Equal(t, "cutoff_hz", m.ParamName)
	assert.Equal(t, float32(500), m.Value)
}

func TestSetParameterClampsAndReports(t *testing.T) {
	f := newFixture(t)
	f.stage.Handle(protocol.AddNode{NodeType: "gain"})
	id := f.popEvent(t).(protocol.NodeAdded).ID
	f.stage.Handle(protocol.SetParameter{NodeID: id, ParamName: "factor", Value: 9999})
	e := f.popEvent(t).(protocol.ParameterClamped)
	assert.Equal(t, float32(9999), e.Requested)
	assert.Equal(t, float32(16), e.Applied)
}

func TestSetParameterOfflineSendsNothing(t *testing.T) {
	f := newFixture(t)
	_, flt, _ := buildPlayablePatch(t, f)
	f.stage.Handle(protocol.SetParameter{NodeID: flt, ParamName: "cutoff_hz", Value: 500})
	assert.Equal(t, 0, f.msgs.Len(), "no live graph, no runtime update")
}

func TestStopClearsGraph(t *testing.T) {
	f := newFixture(t)
	buildPlayablePatch(t, f)
	f.stage.Handle(protocol.Play{})
	f.popMsg(t)
	f.popMsg(t)
	f.popEvent(t)

	f.stage.Handle(protocol.Stop{})
	_, ok := f.popMsg(t).(protocol.MsgClearGraph)
	require.True(t, ok)
	mode := f.popMsg(t).(protocol.MsgSetRenderMode)
	assert.Equal(t, protocol.ModeInstruments, mode.Mode)
	assert.False(t, f.stage.GraphLive())
}

func TestPausePreservesGraph(t *testing.T) {
	f := newFixture(t)
	buildPlayablePatch(t, f)
	f.stage.Handle(protocol.Play{})
	f.popMsg(t)
	f.popMsg(t)
	f.popEvent(t)

	f.stage.Handle(protocol.Pause{})
	mode, ok := f.popMsg(t).(protocol.MsgSetRenderMode)
	require.True(t, ok, "pause only flips the mode; the graph stays resident")
	assert.Equal(t, protocol.ModeInstruments, mode.Mode)
	assert.True(t, f.stage.GraphLive())
}

func TestStartStopNodeTranslate(t *testing.T) {
	f := newFixture(t)
	src, _, _ := buildPlayablePatch(t, f)
	f.stage.Handle(protocol.Play{})
	f.popMsg(t)
	f.popMsg(t)
	f.popEvent(t)

	f.stage.Handle(protocol.StopNode{ID: src})
	_, ok := f.popMsg(t).(protocol.MsgGraphStopNode)
	assert.True(t, ok)
	f.stage.Handle(protocol.StartNode{ID: src})
	_, ok = f.popMsg(t).(protocol.MsgGraphStartNode)
	assert.True(t, ok)
}

func TestShutdownSetsFlagAndForwards(t *testing.T) {
	f := newFixture(t)
	f.stage.Handle(protocol.Shutdown{})
	assert.True(t, f.shared.ShuttingDown())
	_, ok := f.popMsg(t).(protocol.MsgShutdown)
	assert.True(t, ok)
}

func TestRemoveNodeThenSetParameterErrors(t *testing.T) {
	f := newFixture(t)
	f.stage.Handle(protocol.AddNode{NodeType: "gain"})
	id := f.popEvent(t).(protocol.NodeAdded).ID
	f.stage.Handle(protocol.RemoveNode{ID: id})
	f.stage.Handle(protocol.SetParameter{NodeID: id, ParamName: "factor", Value: 2})
	f.expectCommandError(t)
}
