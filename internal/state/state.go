// Package state holds the process-wide atomic record shared by the
// command stage, the render stage and the device callback. Every field is
// read and written with atomic operations only; the record is constructed
// once at startup and a single pointer is handed to each stage.
package state

import (
	"math"
	"sync/atomic"
)

// Shared is the cross-stage atomic record. Shutdown uses acquire-release
// semantics (Go's sync/atomic is sequentially consistent, which is
// stronger); the counters only need to be monotonic.
type Shared struct {
	shutdown      atomic.Bool
	underrunCount atomic.Uint64
	sampleRate    atomic.Uint32
	// master volume stored as the IEEE-754 bit pattern of a float32,
	// since there is no atomic float primitive.
	masterVolume atomic.Uint32
}

// New creates the shared record with the given initial sample rate and
// master volume.
func New(sampleRate uint32, masterVolume float32) *Shared {
	s := &Shared{}
	s.sampleRate.Store(sampleRate)
	s.masterVolume.Store(math.Float32bits(masterVolume))
	return s
}

// RequestShutdown flips the shutdown flag. Idempotent.
func (s *Shared) RequestShutdown() {
	s.shutdown.Store(true)
}

// ShuttingDown reports whether shutdown has been requested.
func (s *Shared) ShuttingDown() bool {
	return s.shutdown.Load()
}

// ReportUnderrun increments the underrun counter by one and returns the
// new total. Called from the device callback; must stay allocation-free.
func (s *Shared) ReportUnderrun() uint64 {
	return s.underrunCount.Add(1)
}

// Underruns returns the total number of underruns observed so far.
func (s *Shared) Underruns() uint64 {
	return s.underrunCount.Load()
}

// SampleRate returns the current sample rate in Hz.
func (s *Shared) SampleRate() uint32 {
	return s.sampleRate.Load()
}

// SetSampleRate updates the published sample rate.
func (s *Shared) SetSampleRate(rate uint32) {
	s.sampleRate.Store(rate)
}

// MasterVolume returns the current master volume scalar.
func (s *Shared) MasterVolume() float32 {
	return math.Float32frombits(s.masterVolume.Load())
}

// SetMasterVolume updates the master volume scalar.
func (s *Shared) SetMasterVolume(v float32) {
	s.masterVolume.Store(math.Float32bits(v))
}
