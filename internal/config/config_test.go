package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 256, cfg.Audio.RenderChunkSize)
	assert.Equal(t, 88200, cfg.Audio.AudioRingSize)
	assert.Equal(t, 1024, cfg.System.MessageRingSize)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestPartialDocumentKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
audio:
  sample_rate: 48000
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 48000, cfg.Audio.SampleRate)
	assert.Equal(t, 256, cfg.Audio.RenderChunkSize, "absent field takes default")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestInvalidValuesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
audio:
  sample_rate: -1
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestRingMustHoldChunk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
audio:
  render_chunk_size: 512
  audio_ring_buffer_size: 256
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error", "bogus"} {
		lc := Default().Logging
		lc.Level = level
		off := false
		lc.ToStdout = &off
		logger, err := NewLogger(lc)
		require.NoError(t, err, level)
		require.NotNil(t, logger)
	}
}
