package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	s := New(44100, 0.8)
	assert.Equal(t, uint32(44100), s.SampleRate())
	assert.InDelta(t, 0.8, s.MasterVolume(), 1e-6)
	assert.False(t, s.ShuttingDown())
	assert.Equal(t, uint64(0), s.Underruns())
}

func TestShutdownIsSticky(t *testing.T) {
	s := New(44100, 1)
	s.RequestShutdown()
	s.RequestShutdown()
	assert.True(t, s.ShuttingDown())
}

func TestUnderrunMonotonic(t *testing.T) {
	s := New(48000, 1)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				s.ReportUnderrun()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(4000), s.Underruns())
}

func TestMasterVolumeRoundTrip(t *testing.T) {
	s := New(44100, 1)
	for _, v := range []float32{0, 0.25, 0.5, 1, 1.5} {
		s.SetMasterVolume(v)
		assert.Equal(t, v, s.MasterVolume())
	}
}
