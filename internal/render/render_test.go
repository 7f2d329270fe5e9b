package render

import (
	"io"
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lbarasti/graphsynth/internal/graph"
	"github.com/lbarasti/graphsynth/internal/protocol"
	"github.com/lbarasti/graphsynth/internal/ring"
	"github.com/lbarasti/graphsynth/internal/state"
	"github.com/lbarasti/graphsynth/internal/synth"
)

const testRate = 44100

func newTestStage(instruments []*synth.Instrument) (*Stage, *ring.SPSC[protocol.Message], *ring.SPSC[float32], *state.Shared) {
	shared := state.New(testRate, 1)
	msgs := ring.New[protocol.Message](64)
	out := ring.New[float32](1024)
	logger := log.New(io.Discard)
	s := New(shared, msgs, out, instruments, 256, 50*time.Millisecond, logger)
	return s, msgs, out, shared
}

func TestGraphModeWithoutGraphIsSilent(t *testing.T) {
	// Scenario: SetRenderMode(Graph) with no prior SwapGraph. Every
	// rendered sample is exactly zero.
	s, msgs, _, _ := newTestStage(nil)
	msgs.Push(protocol.MsgSetRenderMode{Mode: protocol.ModeGraph})
	for i := 0; i < 256; i++ {
		assert.Equal(t, float32(0), s.Step())
	}
	assert.Equal(t, protocol.ModeGraph, s.Mode())
}

func TestInstrumentModeSumsBank(t *testing.T) {
	bank := []*synth.Instrument{synth.SineLead(), synth.SineLead()}
	s, msgs, _, _ := newTestStage(bank)
	msgs.Push(protocol.MsgNoteStart{Instrument: 0, Note: 69, Velocity: 1})
	msgs.Push(protocol.MsgNoteStart{Instrument: 1, Note: 69, Velocity: 1})
	v := s.Step()
	assert.NotZero(t, v)

	solo := synth.SineLead()
	solo.StartNote(69, 1)
	solo.Tick(testRate)
	assert.InDelta(t, float64(2*solo.Output()), float64(v), 1e-6)
}

func TestNoteStopReleases(t *testing.T) {
	bank := []*synth.Instrument{synth.SineLead()}
	s, msgs, _, _ := newTestStage(bank)
	msgs.Push(protocol.MsgNoteStart{Instrument: 0, Note: 60, Velocity: 1})
	s.Step()
	require.Equal(t, 1, bank[0].ActiveVoices())

	msgs.Push(protocol.MsgNoteStop{Instrument: 0, Note: 60})
	for i := 0; i < testRate; i++ {
		s.Step()
	}
	assert.Equal(t, 0, bank[0].ActiveVoices())
}

func TestMasterVolumeScalesOutput(t *testing.T) {
	bank := []*synth.Instrument{synth.SineLead()}
	s, msgs, _, shared := newTestStage(bank)
	msgs.Push(protocol.MsgNoteStart{Instrument: 0, Note: 69, Velocity: 1})
	full := s.Step()
	shared.SetMasterVolume(0.5)
	next := s.Step()

	ref := synth.SineLead()
	ref.StartNote(69, 1)
	ref.Tick(testRate)
	ref.Tick(testRate)
	assert.InDelta(t, float64(ref.Output())*0.5, float64(next), 1e-6)
	assert.NotEqual(t, full, next)
}

func buildSinePatch(t *testing.T) *graph.Compiled {
	t.Helper()
	p := graph.NewPatch()
	src, err := p.AddNode("sine", graph.Position{})
	require.NoError(t, err)
	_, err = p.SetParam(src, "frequency_hz", 440)
	require.NoError(t, err)
	_, err = p.SetParam(src, "amplitude", 0.5)
	require.NoError(t, err)
	out, err := p.AddNode("audio-out", graph.Position{})
	require.NoError(t, err)
	require.NoError(t, p.Connect(src, 0, out, 0))
	c, err := graph.Compile(p, testRate)
	require.NoError(t, err)
	return c
}

func TestSwapGraphThenGraphMode(t *testing.T) {
	s, msgs, _, _ := newTestStage(nil)
	msgs.Push(protocol.MsgSwapGraph{Graph: buildSinePatch(t)})
	msgs.Push(protocol.MsgSetRenderMode{Mode: protocol.ModeGraph})

	for k := 1; k <= 10; k++ {
		got := s.Step()
		want := 0.5 * math.Sin(2*math.Pi*440*float64(k)/testRate)
		assert.InDelta(t, want, float64(got), 1e-5, "sample %d", k)
	}
}

func TestClearGraphReturnsToSilence(t *testing.T) {
	s, msgs, _, _ := newTestStage(nil)
	msgs.Push(protocol.MsgSwapGraph{Graph: buildSinePatch(t)})
	msgs.Push(protocol.MsgSetRenderMode{Mode: protocol.ModeGraph})
	s.Step()
	require.True(t, s.HasGraph())

	msgs.Push(protocol.MsgClearGraph{})
	assert.Equal(t, float32(0), s.Step())
	assert.False(t, s.HasGraph())
}

func TestGraphParameterUpdateApplies(t *testing.T) {
	p := graph.NewPatch()
	src, _ := p.AddNode("sine", graph.Position{})
	flt, _ := p.AddNode("lowpass", graph.Position{})
	out, _ := p.AddNode("audio-out", graph.Position{})
	require.NoError(t, p.Connect(src, 0, flt, 0))
	require.NoError(t, p.Connect(flt, 0, out, 0))
	c, err := graph.Compile(p, testRate)
	require.NoError(t, err)
	iFlt, _ := c.IndexByID(flt)

	s, msgs, _, _ := newTestStage(nil)
	msgs.Push(protocol.MsgSwapGraph{Graph: c})
	msgs.Push(protocol.MsgSetRenderMode{Mode: protocol.ModeGraph})
	s.Step()
	// A retune between steps must keep producing smoothly (no reset).
	msgs.Push(protocol.MsgGraphSetParameter{NodeIndex: iFlt, ParamName: "cutoff_hz", Value: 500})
	before := s.Step()
	after := s.Step()
	assert.InDelta(t, float64(before), float64(after), 0.1)
}

func TestRunFillsOutputQueue(t *testing.T) {
	// Sample-count conservation: the loop pushes whole chunks until the
	// ring cannot take another, then idles.
	s, _, out, shared := newTestStage(nil)
	go s.Run()
	deadline := time.After(2 * time.Second)
	for out.Free() >= 256 {
		select {
		case <-deadline:
			t.Fatal("render loop did not fill the output ring")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	shared.RequestShutdown()
	// All queued samples are silence (no notes, instruments mode).
	for {
		v, ok := out.Pop()
		if !ok {
			break
		}
		require.Equal(t, float32(0), v)
	}
}

func TestShutdownMessageStopsRun(t *testing.T) {
	s, msgs, _, _ := newTestStage(nil)
	done := make(chan struct{})
	go func() {
		s.Run()
		close(done)
	}()
	msgs.Push(protocol.MsgShutdown{})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("render stage did not exit on shutdown message")
	}
}
