// Package render implements the render stage: the goroutine that owns
// the live DSP objects and produces the output sample stream. It drains
// parameter and note messages from the command stage, computes samples in
// chunks, and pushes them onto the output ring for the device callback.
//
// The stage never allocates in steady state: instruments, the compiled
// graph and all buffers exist before the loop starts, and messages only
// swap pointers or mutate pre-sized state.
package render

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/lbarasti/graphsynth/internal/graph"
	"github.com/lbarasti/graphsynth/internal/protocol"
	"github.com/lbarasti/graphsynth/internal/ring"
	"github.com/lbarasti/graphsynth/internal/state"
	"github.com/lbarasti/graphsynth/internal/synth"
)

// Stage is the render loop state. Construct with New, then call Run on
// its own goroutine; or drive it synchronously with Step for offline
// rendering and tests.
type Stage struct {
	shared      *state.Shared
	messages    *ring.SPSC[protocol.Message]
	out         *ring.SPSC[float32]
	instruments []*synth.Instrument
	graph       *graph.Compiled
	mode        protocol.RenderMode
	sampleRate  float64
	chunkSize   int
	idleSleep   time.Duration
	logger      *log.Logger
	done        bool
}

// New builds a render stage. The instrument bank is owned by the stage
// from here on.
func New(
	shared *state.Shared,
	messages *ring.SPSC[protocol.Message],
	out *ring.SPSC[float32],
	instruments []*synth.Instrument,
	chunkSize int,
	targetLatency time.Duration,
	logger *log.Logger,
) *Stage {
	// Sleep a fraction of the latency budget when the ring is full so
	// the stage stays reactive to shutdown.
	idle := targetLatency / 8
	if idle < time.Millisecond {
		idle = time.Millisecond
	}
	return &Stage{
		shared:      shared,
		messages:    messages,
		out:         out,
		instruments: instruments,
		mode:        protocol.ModeInstruments,
		sampleRate:  float64(shared.SampleRate()),
		chunkSize:   chunkSize,
		idleSleep:   idle,
		logger:      logger,
	}
}

// Run loops until shutdown: drain messages, render a chunk if the output
// ring has room, otherwise sleep briefly to let the callback drain.
func (s *Stage) Run() {
	s.logger.Debug("render stage running", "chunk", s.chunkSize)
	for !s.done && !s.shared.ShuttingDown() {
		s.drainMessages()
		if s.out.Free() >= s.chunkSize {
			for i := 0; i < s.chunkSize; i++ {
				s.out.Push(s.renderSample())
			}
		} else {
			time.Sleep(s.idleSleep)
		}
	}
	s.logger.Debug("render stage exiting")
}

// Step drains pending messages and produces exactly one sample. It is
// the synchronous entry used by offline rendering and tests.
func (s *Stage) Step() float32 {
	s.drainMessages()
	return s.renderSample()
}

func (s *Stage) drainMessages() {
	for {
		msg, ok := s.messages.Pop()
		if !ok {
			return
		}
		s.apply(msg)
	}
}

func (s *Stage) apply(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.MsgNoteStart:
		if m.Instrument >= 0 && m.Instrument < len(s.instruments) {
			s.instruments[m.Instrument].StartNote(m.Note, float64(m.Velocity))
		}
	case protocol.MsgNoteStop:
		if m.Instrument >= 0 && m.Instrument < len(s.instruments) {
			s.instruments[m.Instrument].StopNote(m.Note)
		}
	case protocol.MsgSwapGraph:
		s.graph = m.Graph
	case protocol.MsgClearGraph:
		s.graph = nil
	case protocol.MsgSetRenderMode:
		s.mode = m.Mode
	case protocol.MsgGraphSetParameter:
		// Updates for nodes that no longer exist are dropped silently.
		if s.graph != nil {
			s.graph.SetParameter(m.NodeIndex, m.ParamName, m.Value)
		}
	case protocol.MsgGraphStartNode:
		if s.graph != nil {
			s.graph.StartNode(m.NodeIndex)
		}
	case protocol.MsgGraphStopNode:
		if s.graph != nil {
			s.graph.StopNode(m.NodeIndex)
		}
	case protocol.MsgShutdown:
		s.done = true
	}
}

// renderSample computes one output sample for the active mode.
func (s *Stage) renderSample() float32 {
	volume := s.shared.MasterVolume()
	switch s.mode {
	case protocol.ModeGraph:
		if s.graph == nil {
			return 0
		}
		s.graph.Step()
		v, ok := s.graph.ConsumePrimary()
		if !ok {
			return 0
		}
		return v * volume
	default:
		var sum float32
		for _, ins := range s.instruments {
			ins.Tick(s.sampleRate)
			sum += ins.Output()
		}
		return sum * volume
	}
}

// Mode exposes the active render mode for tests.
func (s *Stage) Mode() protocol.RenderMode { return s.mode }

// HasGraph reports whether a compiled graph is installed.
func (s *Stage) HasGraph() bool { return s.graph != nil }

// Instruments exposes the bank for the offline renderer.
func (s *Stage) Instruments() []*synth.Instrument { return s.instruments }
