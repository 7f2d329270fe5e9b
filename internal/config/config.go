// Package config loads the engine configuration from a YAML document and
// wires up logging. The configuration is read once at startup and treated
// as immutable afterwards.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration document: three groups mirroring the
// file layout.
type Config struct {
	System  System  `yaml:"system"`
	Audio   Audio   `yaml:"audio"`
	Logging Logging `yaml:"logging"`
}

// System holds engine-internal capacities.
type System struct {
	// MessageRingSize is the capacity of the command->render message queue.
	MessageRingSize int `yaml:"message_ring_buffer_size"`
	// EventBufferSize is the capacity of the backend event channel.
	EventBufferSize int `yaml:"event_buffer_size"`
}

// Audio holds the playback parameters.
type Audio struct {
	SampleRate       int     `yaml:"sample_rate"`
	MasterVolume     float32 `yaml:"master_volume"`
	DeviceBufferSize int     `yaml:"device_buffer_size"`
	RenderChunkSize  int     `yaml:"render_chunk_size"`
	AudioRingSize    int     `yaml:"audio_ring_buffer_size"`
	TargetLatencyMs  int     `yaml:"target_latency_ms"`
}

// Logging controls the process logger.
type Logging struct {
	Level    string `yaml:"level"`
	ToStdout *bool  `yaml:"to_stdout"`
	ToFile   bool   `yaml:"to_file"`
	FilePath string `yaml:"file_path"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	stdout := true
	return Config{
		System: System{
			MessageRingSize: 1024,
			EventBufferSize: 256,
		},
		Audio: Audio{
			SampleRate:       44100,
			MasterVolume:     1.0,
			DeviceBufferSize: 64,
			RenderChunkSize:  256,
			AudioRingSize:    88200,
			TargetLatencyMs:  50,
		},
		Logging: Logging{
			Level:    "info",
			ToStdout: &stdout,
			FilePath: "graphsynth.log",
		},
	}
}

// Load reads the YAML document at path, filling absent fields with
// defaults. A missing file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.RenderChunkSize <= 0 {
		return fmt.Errorf("audio.render_chunk_size must be positive, got %d", c.Audio.RenderChunkSize)
	}
	if c.Audio.AudioRingSize < c.Audio.RenderChunkSize {
		return fmt.Errorf("audio.audio_ring_buffer_size (%d) must hold at least one render chunk (%d)",
			c.Audio.AudioRingSize, c.Audio.RenderChunkSize)
	}
	if c.System.MessageRingSize <= 0 {
		return fmt.Errorf("system.message_ring_buffer_size must be positive, got %d", c.System.MessageRingSize)
	}
	return nil
}

// NewLogger builds the process logger from the logging group. The render
// stage and device callback never log on the sample path, so a single
// shared logger is fine.
func NewLogger(lc Logging) (*log.Logger, error) {
	var writers []io.Writer
	if lc.ToStdout == nil || *lc.ToStdout {
		writers = append(writers, os.Stdout)
	}
	if lc.ToFile && lc.FilePath != "" {
		f, err := os.OpenFile(lc.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
	}
	var out io.Writer = io.Discard
	switch len(writers) {
	case 1:
		out = writers[0]
	default:
		if len(writers) > 1 {
			out = io.MultiWriter(writers...)
		}
	}
	// "trace" maps onto debug; the logger has no finer level.
	name := lc.Level
	if name == "trace" {
		name = "debug"
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "graphsynth",
	})
	return logger, nil
}
