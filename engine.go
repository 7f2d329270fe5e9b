// Package graphsynth is a real-time modular audio synthesis core. Users
// build signal-processing graphs (oscillators, filters, sinks) and play
// them live, or drive a polyphonic instrument bank from keyboard-style
// input. Three cooperating contexts make up the pipeline: a command
// stage that owns canonical state, a render stage that produces one
// sample per tick, and the audio device callback that drains the
// lock-free output ring.
package graphsynth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lbarasti/graphsynth/internal/command"
	"github.com/lbarasti/graphsynth/internal/config"
	"github.com/lbarasti/graphsynth/internal/device"
	"github.com/lbarasti/graphsynth/internal/protocol"
	"github.com/lbarasti/graphsynth/internal/render"
	"github.com/lbarasti/graphsynth/internal/ring"
	"github.com/lbarasti/graphsynth/internal/state"
	"github.com/lbarasti/graphsynth/internal/synth"
)

// Config is the engine configuration document. See LoadConfig.
type Config = config.Config

// LoadConfig reads the YAML configuration at path; a missing file yields
// the defaults.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config { return config.Default() }

// Option adjusts engine construction.
type Option func(*engineOptions)

type engineOptions struct {
	withoutDevice bool
	logger        *log.Logger
}

// WithoutDevice builds an engine that never opens an audio device. The
// command and render stages run as usual; samples accumulate in the
// output ring or are pulled synchronously with RenderOffline. Intended
// for tests and offline analysis.
func WithoutDevice() Option {
	return func(o *engineOptions) { o.withoutDevice = true }
}

// WithLogger overrides the logger built from the configuration.
func WithLogger(logger *log.Logger) Option {
	return func(o *engineOptions) { o.logger = logger }
}

// Engine wires the pipeline together and owns its lifecycle.
type Engine struct {
	cfg    Config
	logger *log.Logger
	shared *state.Shared

	commands chan protocol.Command
	events   chan protocol.Event
	messages *ring.SPSC[protocol.Message]
	out      *ring.SPSC[float32]

	renderer  *render.Stage
	commander *command.Stage
	output    *device.Output

	opts    engineOptions
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	closed  bool
}

// New builds an engine from the configuration. Nothing runs until Start.
func New(cfg Config, opts ...Option) (*Engine, error) {
	var eo engineOptions
	for _, opt := range opts {
		opt(&eo)
	}
	logger := eo.logger
	if logger == nil {
		var err error
		logger, err = config.NewLogger(cfg.Logging)
		if err != nil {
			return nil, err
		}
	}

	shared := state.New(uint32(cfg.Audio.SampleRate), cfg.Audio.MasterVolume)
	messages := ring.New[protocol.Message](cfg.System.MessageRingSize)
	out := ring.New[float32](cfg.Audio.AudioRingSize)
	events := make(chan protocol.Event, cfg.System.EventBufferSize)
	commands := make(chan protocol.Command)

	bank := synth.DefaultBank()
	latency := time.Duration(cfg.Audio.TargetLatencyMs) * time.Millisecond
	renderer := render.New(shared, messages, out, bank, cfg.Audio.RenderChunkSize, latency, logger)
	commander := command.New(commands, messages, events, shared, cfg.Audio.SampleRate, len(bank), logger)

	return &Engine{
		cfg:       cfg,
		logger:    logger,
		shared:    shared,
		commands:  commands,
		events:    events,
		messages:  messages,
		out:       out,
		renderer:  renderer,
		commander: commander,
		opts:      eo,
	}, nil
}

// Start opens the output device and spawns the pipeline goroutines.
// With WithoutDevice, only the stages start. A device-open failure is
// fatal: the engine refuses to start.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return errors.New("engine already started")
	}
	if e.closed {
		return errors.New("engine closed")
	}

	if !e.opts.withoutDevice {
		devices, err := device.List()
		if err != nil {
			return err
		}
		out, err := device.Open(e.out, e.shared, e.cfg.Audio.DeviceBufferSize)
		if err != nil {
			return err
		}
		e.output = out
		e.emit(protocol.OutputDeviceList{Devices: devices})
		e.emit(protocol.OutputDeviceChanged{Device: out.Name()})
		e.logger.Info("output device opened",
			"device", out.Name(), "sample_rate", e.shared.SampleRate())
	}

	e.wg.Add(2)
	go func() {
		defer e.wg.Done()
		e.renderer.Run()
	}()
	go func() {
		defer e.wg.Done()
		e.commander.Run()
	}()
	e.started = true
	e.emit(protocol.AudioStarted{})
	return nil
}

// Submit hands a command to the command stage. Commands from one caller
// are applied in submission order. Returns an error once the engine is
// shutting down.
func (e *Engine) Submit(cmd protocol.Command) error {
	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if !started {
		// Before Start (or with an offline engine that was never
		// started) commands are applied synchronously.
		e.commander.Handle(cmd)
		return nil
	}
	if e.shared.ShuttingDown() {
		return fmt.Errorf("engine is shutting down")
	}
	e.commands <- cmd
	return nil
}

// Events returns the backend event channel. Drain it from a dedicated
// goroutine; events are dropped, not blocked on, when the buffer fills.
func (e *Engine) Events() <-chan protocol.Event { return e.events }

// SetMasterVolume updates the global output scalar.
func (e *Engine) SetMasterVolume(v float32) {
	if v < 0 {
		v = 0
	}
	e.shared.SetMasterVolume(v)
}

// MasterVolume returns the global output scalar.
func (e *Engine) MasterVolume() float32 { return e.shared.MasterVolume() }

// Underruns returns the total underruns the device callback observed.
func (e *Engine) Underruns() uint64 { return e.shared.Underruns() }

// Close shuts the pipeline down: the shutdown flag is set, both stages
// drain and exit, and the device (if open) is torn down. Idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	started := e.started
	e.mu.Unlock()

	if started {
		if !e.shared.ShuttingDown() {
			e.commands <- protocol.Shutdown{}
		}
		e.wg.Wait()
	} else {
		e.shared.RequestShutdown()
	}

	var err error
	if e.output != nil {
		err = e.output.Close()
		e.output = nil
	}
	e.emit(protocol.AudioStopped{})
	close(e.events)
	e.logger.Info("engine stopped", "underruns", e.shared.Underruns())
	return err
}

func (e *Engine) emit(ev protocol.Event) {
	select {
	case e.events <- ev:
	default:
	}
}
