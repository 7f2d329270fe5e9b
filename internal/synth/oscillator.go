package synth

import "math"

const twoPi = 2 * math.Pi

// Waveform selects the oscillator's wave shape.
type Waveform int

const (
	Sine Waveform = iota
	Square
	Sawtooth
	Triangle
	WhiteNoise
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Square:
		return "square"
	case Sawtooth:
		return "sawtooth"
	case Triangle:
		return "triangle"
	case WhiteNoise:
		return "white-noise"
	default:
		return "unknown"
	}
}

// ParseWaveform maps a waveform name back to its variant.
func ParseWaveform(name string) (Waveform, bool) {
	for _, w := range []Waveform{Sine, Square, Sawtooth, Triangle, WhiteNoise} {
		if w.String() == name {
			return w, true
		}
	}
	return Sine, false
}

// oscState is the oscillator lifecycle: created idle, Start begins
// production, Stop releases the envelope, and once the amplitude envelope
// decays to zero the oscillator is completed.
type oscState int

const (
	oscIdle oscState = iota
	oscPlaying
	oscStopped
	oscCompleted
)

// Oscillator produces one waveform at a fundamental frequency, shaped by
// a pitch envelope (multiplicative factor) and an amplitude envelope.
// Start and Stop never allocate.
type Oscillator struct {
	wave      Waveform
	frequency float64 // Hz
	amplitude float64
	pitchEnv  Envelope
	ampEnv    Envelope

	phase float64
	time  float64 // normalized time since Start, seconds
	state oscState
	rng   uint64
}

// NewOscillator builds an idle oscillator. Nil envelopes default to
// constant unity.
func NewOscillator(wave Waveform, frequency, amplitude float64, pitchEnv, ampEnv Envelope) *Oscillator {
	if pitchEnv == nil {
		pitchEnv = NewConstant(1)
	}
	if ampEnv == nil {
		ampEnv = NewConstant(1)
	}
	return &Oscillator{
		wave:      wave,
		frequency: frequency,
		amplitude: amplitude,
		pitchEnv:  pitchEnv,
		ampEnv:    ampEnv,
		rng:       0x9e3779b97f4a7c15,
	}
}

// Start resets phase and normalized time and begins producing.
func (o *Oscillator) Start() {
	o.phase = 0
	o.time = 0
	o.pitchEnv.Reset()
	o.ampEnv.Reset()
	o.state = oscPlaying
}

// Stop releases the envelopes; the oscillator keeps sounding until the
// amplitude envelope decays to zero.
func (o *Oscillator) Stop() {
	if o.state != oscPlaying {
		return
	}
	o.pitchEnv.Release(o.time)
	o.ampEnv.Release(o.time)
	o.state = oscStopped
}

// Playing reports whether the oscillator still produces signal.
func (o *Oscillator) Playing() bool {
	return o.state == oscPlaying || o.state == oscStopped
}

// Completed reports whether the release finished.
func (o *Oscillator) Completed() bool { return o.state == oscCompleted }

// Idle reports whether the oscillator was never started.
func (o *Oscillator) Idle() bool { return o.state == oscIdle }

// SetFrequency retunes the fundamental without resetting phase.
func (o *Oscillator) SetFrequency(hz float64) { o.frequency = hz }

// Frequency returns the fundamental in Hz.
func (o *Oscillator) Frequency() float64 { return o.frequency }

// SetAmplitude rescales the output.
func (o *Oscillator) SetAmplitude(a float64) { o.amplitude = a }

// Tick advances one sample and returns the output value.
func (o *Oscillator) Tick(sampleRate float64) float32 {
	if o.state == oscIdle || o.state == oscCompleted {
		return 0
	}
	dt := 1 / sampleRate
	o.time += dt

	pitch := o.pitchEnv.At(o.time)
	o.phase += twoPi * o.frequency * pitch / sampleRate
	for o.phase >= twoPi {
		o.phase -= twoPi
	}

	var sample float64
	switch o.wave {
	case Sine:
		sample = math.Sin(o.phase)
	case Square:
		if math.Sin(o.phase) >= 0 {
			sample = 1
		} else {
			sample = -1
		}
	case Sawtooth:
		sample = 2*(o.phase/twoPi) - 1
	case Triangle:
		if o.phase < math.Pi {
			sample = -1 + 2*o.phase/math.Pi
		} else {
			sample = 3 - 2*o.phase/math.Pi
		}
	case WhiteNoise:
		sample = o.randUnit()
	}

	amp := o.ampEnv.At(o.time)
	if o.state == oscStopped && o.ampEnv.Done(o.time) {
		o.state = oscCompleted
		return 0
	}
	return float32(sample * amp * o.amplitude)
}

// randUnit is a small xorshift PRNG mapped to [-1, 1]; math/rand would
// be fine off the audio path, but the render loop wants no locks at all.
func (o *Oscillator) randUnit() float64 {
	o.rng ^= o.rng << 13
	o.rng ^= o.rng >> 7
	o.rng ^= o.rng << 17
	return float64(o.rng>>11)/float64(1<<52) - 1
}

// Clone returns an idle copy with cloned envelopes.
func (o *Oscillator) Clone() *Oscillator {
	return NewOscillator(o.wave, o.frequency, o.amplitude, o.pitchEnv.Clone(), o.ampEnv.Clone())
}
