// Package command implements the command stage: the goroutine that owns
// the canonical application state (the graph patch, row/octave/instrument
// assignments), validates incoming commands, and drives the render stage
// through the message ring. Every failure surfaces as a backend event;
// nothing here panics across the engine boundary.
package command

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lbarasti/graphsynth/internal/graph"
	"github.com/lbarasti/graphsynth/internal/protocol"
	"github.com/lbarasti/graphsynth/internal/ring"
	"github.com/lbarasti/graphsynth/internal/state"
)

// RowCount is the number of input rows: two keyboard rows, each with an
// independent octave and instrument selection.
const RowCount = 2

const (
	minOctave = 0
	maxOctave = 8
	maxNote   = 127
)

type row struct {
	octave     int
	instrument int
}

// Stage is the command loop state. Construct with New and call Run on
// its own goroutine; Handle is the synchronous entry used by tests.
type Stage struct {
	commands <-chan protocol.Command
	messages *ring.SPSC[protocol.Message]
	events   chan<- protocol.Event
	shared   *state.Shared
	logger   *log.Logger

	sampleRate      int
	instrumentCount int

	patch             *graph.Patch
	liveIndex         map[uint64]int
	graphLive         bool
	rows              [RowCount]row
	octavesLinked     bool
	instrumentsLinked bool

	underrunEvery time.Duration
	lastUnderruns uint64
	done          bool
}

// New builds a command stage over the given queues. instrumentCount is
// the size of the render stage's bank.
func New(
	commands <-chan protocol.Command,
	messages *ring.SPSC[protocol.Message],
	events chan<- protocol.Event,
	shared *state.Shared,
	sampleRate int,
	instrumentCount int,
	logger *log.Logger,
) *Stage {
	s := &Stage{
		commands:        commands,
		messages:        messages,
		events:          events,
		shared:          shared,
		logger:          logger,
		sampleRate:      sampleRate,
		instrumentCount: instrumentCount,
		patch:           graph.NewPatch(),
		underrunEvery:   time.Second,
	}
	for i := range s.rows {
		s.rows[i].octave = 4
	}
	return s
}

// Run loops until Shutdown or until the command channel closes. An
// underrun report is emitted periodically from the shared counter.
func (s *Stage) Run() {
	ticker := time.NewTicker(s.underrunEvery)
	defer ticker.Stop()
	s.logger.Debug("command stage running")
	for !s.done {
		select {
		case cmd, ok := <-s.commands:
			if !ok {
				// Counterpart has exited; treat as fatal and shut down.
				s.logger.Warn("command channel closed", "err", protocol.ErrChannelClosed)
				s.beginShutdown()
				continue
			}
			s.Handle(cmd)
		case <-ticker.C:
			s.reportUnderruns()
		}
	}
	s.logger.Debug("command stage exiting")
}

func (s *Stage) reportUnderruns() {
	count := s.shared.Underruns()
	if count != s.lastUnderruns {
		s.lastUnderruns = count
		s.emit(protocol.UnderrunReport{Count: count})
	}
}

// Handle validates and applies a single command.
func (s *Stage) Handle(cmd protocol.Command) {
	var err error
	switch c := cmd.(type) {
	case protocol.NoteStart:
		err = s.noteStart(c)
	case protocol.NoteStop:
		err = s.noteStop(c)
	case protocol.SetRenderMode:
		s.send(protocol.MsgSetRenderMode{Mode: c.Mode})
	case protocol.Shutdown:
		s.beginShutdown()

	case protocol.AddNode:
		err = s.addNode(c)
	case protocol.RemoveNode:
		err = s.patch.RemoveNode(c.ID)
	case protocol.Connect:
		err = s.patch.Connect(c.From, c.FromPort, c.To, c.ToPort)
	case protocol.Disconnect:
		err = s.patch.Disconnect(c.From, c.To)
	case protocol.SetParameter:
		err = s.setParameter(c)
	case protocol.Play:
		s.play()
	case protocol.Pause:
		s.pause()
	case protocol.Stop:
		s.stop()
	case protocol.StartNode:
		s.forwardNodeToggle(c.ID, true)
	case protocol.StopNode:
		s.forwardNodeToggle(c.ID, false)

	case protocol.OctaveUp:
		err = s.shiftOctave(c.Row, 1)
	case protocol.OctaveDown:
		err = s.shiftOctave(c.Row, -1)
	case protocol.SetOctave:
		err = s.setOctave(c.Row, c.Octave)
	case protocol.LinkOctaves:
		s.octavesLinked = true
		s.syncLinked()
	case protocol.UnlinkOctaves:
		s.octavesLinked = false
	case protocol.SelectInstrument:
		err = s.selectInstrument(c.Row, c.Index)
	case protocol.NextInstrument:
		err = s.cycleInstrument(c.Row, 1)
	case protocol.PreviousInstrument:
		err = s.cycleInstrument(c.Row, -1)
	case protocol.LinkInstruments:
		s.instrumentsLinked = true
		s.syncLinked()
	case protocol.UnlinkInstruments:
		s.instrumentsLinked = false

	default:
		err = fmt.Errorf("unhandled command %T", cmd)
	}
	if err != nil {
		s.logger.Debug("command rejected", "cmd", fmt.Sprintf("%T", cmd), "err", err)
		s.emit(protocol.CommandError{Reason: err.Error()})
	}
}

func (s *Stage) beginShutdown() {
	s.shared.RequestShutdown()
	s.send(protocol.MsgShutdown{})
	s.done = true
}

// --- audio commands ---

func (s *Stage) validRow(r uint8) error {
	if int(r) >= RowCount {
		return fmt.Errorf("%w: %d", protocol.ErrRowOutOfBounds, r)
	}
	return nil
}

// transpose shifts a note by the row's octave relative to the center
// octave 4, clamping to the MIDI range.
func (s *Stage) transpose(note uint8, r uint8) int {
	n := int(note) + 12*(s.rows[r].octave-4)
	if n < 0 {
		n = 0
	}
	if n > maxNote {
		n = maxNote
	}
	return n
}

func (s *Stage) noteStart(c protocol.NoteStart) error {
	if err := s.validRow(c.Row); err != nil {
		return err
	}
	if c.Note > maxNote {
		return fmt.Errorf("%w: %d", protocol.ErrInvalidNote, c.Note)
	}
	if c.Velocity < 0 || c.Velocity > 1 {
		return fmt.Errorf("%w: %v", protocol.ErrInvalidVelocity, c.Velocity)
	}
	s.send(protocol.MsgNoteStart{
		Instrument: s.rows[c.Row].instrument,
		Note:       s.transpose(c.Note, c.Row),
		Velocity:   c.Velocity,
	})
	return nil
}

func (s *Stage) noteStop(c protocol.NoteStop) error {
	if err := s.validRow(c.Row); err != nil {
		return err
	}
	if c.Note > maxNote {
		return fmt.Errorf("%w: %d", protocol.ErrInvalidNote, c.Note)
	}
	s.send(protocol.MsgNoteStop{
		Instrument: s.rows[c.Row].instrument,
		Note:       s.transpose(c.Note, c.Row),
	})
	return nil
}

// --- graph commands ---

func (s *Stage) addNode(c protocol.AddNode) error {
	id, err := s.patch.AddNode(c.NodeType, graph.Position{X: c.X, Y: c.Y})
	if err != nil {
		return err
	}
	s.emit(protocol.NodeAdded{ID: id, NodeType: c.NodeType})
	return nil
}

func (s *Stage) setParameter(c protocol.SetParameter) error {
	applied, err := s.patch.SetParam(c.NodeID, c.ParamName, c.Value)
	if err != nil {
		return err
	}
	if applied != c.Value {
		s.emit(protocol.ParameterClamped{
			NodeID: c.NodeID, ParamName: c.ParamName,
			Requested: c.Value, Applied: applied,
		})
	}
	if s.graphLive {
		if idx, ok := s.liveIndex[c.NodeID]; ok {
			s.send(protocol.MsgGraphSetParameter{
				NodeIndex: idx, ParamName: c.ParamName, Value: applied,
			})
		}
	}
	return nil
}

// play compiles the canonical patch and hands the result to the render
// stage. On failure the currently-running graph is not disturbed.
func (s *Stage) play() {
	compiled, err := graph.Compile(s.patch, s.sampleRate)
	if err != nil {
		s.logger.Warn("graph compilation failed", "err", err)
		s.emit(protocol.GraphError{Reason: err.Error()})
		return
	}
	// Record the ID->index translation before ownership moves.
	s.liveIndex = make(map[uint64]int, s.patch.Len())
	for _, id := range s.patch.IDs() {
		if idx, ok := compiled.IndexByID(id); ok {
			s.liveIndex[id] = idx
		}
	}
	s.send(protocol.MsgSwapGraph{Graph: compiled})
	s.send(protocol.MsgSetRenderMode{Mode: protocol.ModeGraph})
	s.graphLive = true
	s.emit(protocol.AudioStarted{})
}

// pause leaves the compiled graph (and its envelope state) in place so a
// later Play resumes; only the render mode flips back to instruments.
func (s *Stage) pause() {
	if !s.graphLive {
		return
	}
	s.send(protocol.MsgSetRenderMode{Mode: protocol.ModeInstruments})
	s.emit(protocol.AudioStopped{})
}

func (s *Stage) stop() {
	if !s.graphLive {
		return
	}
	s.send(protocol.MsgClearGraph{})
	s.send(protocol.MsgSetRenderMode{Mode: protocol.ModeInstruments})
	s.graphLive = false
	s.liveIndex = nil
	s.emit(protocol.AudioStopped{})
}

func (s *Stage) forwardNodeToggle(id uint64, start bool) {
	if !s.graphLive {
		return
	}
	idx, ok := s.liveIndex[id]
	if !ok {
		return
	}
	if start {
		s.send(protocol.MsgGraphStartNode{NodeIndex: idx})
	} else {
		s.send(protocol.MsgGraphStopNode{NodeIndex: idx})
	}
}

// --- app commands ---

func (s *Stage) shiftOctave(r uint8, delta int) error {
	if err := s.validRow(r); err != nil {
		return err
	}
	octave := s.rows[r].octave + delta
	if octave < minOctave {
		octave = minOctave
	}
	if octave > maxOctave {
		octave = maxOctave
	}
	s.applyOctave(r, octave)
	return nil
}

func (s *Stage) setOctave(r uint8, octave int) error {
	if err := s.validRow(r); err != nil {
		return err
	}
	if octave < minOctave || octave > maxOctave {
		return fmt.Errorf("%w: %d", protocol.ErrInvalidOctave, octave)
	}
	s.applyOctave(r, octave)
	return nil
}

func (s *Stage) applyOctave(r uint8, octave int) {
	s.rows[r].octave = octave
	if s.octavesLinked {
		for i := range s.rows {
			s.rows[i].octave = octave
		}
	}
}

func (s *Stage) selectInstrument(r uint8, index int) error {
	if err := s.validRow(r); err != nil {
		return err
	}
	if index < 0 || index >= s.instrumentCount {
		return fmt.Errorf("%w: %d", protocol.ErrUnknownInstrument, index)
	}
	s.applyInstrument(r, index)
	return nil
}

func (s *Stage) cycleInstrument(r uint8, delta int) error {
	if err := s.validRow(r); err != nil {
		return err
	}
	if s.instrumentCount == 0 {
		return fmt.Errorf("%w: no instruments", protocol.ErrUnknownInstrument)
	}
	index := (s.rows[r].instrument + delta + s.instrumentCount) % s.instrumentCount
	s.applyInstrument(r, index)
	return nil
}

func (s *Stage) applyInstrument(r uint8, index int) {
	s.rows[r].instrument = index
	if s.instrumentsLinked {
		for i := range s.rows {
			s.rows[i].instrument = index
		}
	}
}

// syncLinked copies row 0's selections onto the other rows when a link
// is established.
func (s *Stage) syncLinked() {
	if s.octavesLinked {
		for i := range s.rows {
			s.rows[i].octave = s.rows[0].octave
		}
	}
	if s.instrumentsLinked {
		for i := range s.rows {
			s.rows[i].instrument = s.rows[0].instrument
		}
	}
}

// --- plumbing ---

// send pushes a message onto the ring, waiting for room. The render
// stage drains continuously, so waiting is short; shutdown aborts it.
func (s *Stage) send(m protocol.Message) {
	for !s.messages.Push(m) {
		if s.shared.ShuttingDown() {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// emit delivers an event without ever blocking the command loop. If the
// UI is not draining, the event is dropped and logged.
func (s *Stage) emit(e protocol.Event) {
	select {
	case s.events <- e:
	default:
		s.logger.Warn("event queue full, dropping", "event", fmt.Sprintf("%T", e))
	}
}

// Rows exposes the row assignments for tests.
func (s *Stage) Rows() (octaves [RowCount]int, instruments [RowCount]int) {
	for i, r := range s.rows {
		octaves[i] = r.octave
		instruments[i] = r.instrument
	}
	return
}

// Patch exposes the canonical graph for tests and persistence.
func (s *Stage) Patch() *graph.Patch { return s.patch }

// GraphLive reports whether a compiled graph has been handed to the
// render stage.
func (s *Stage) GraphLive() bool { return s.graphLive }
