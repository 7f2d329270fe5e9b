package dsp

import "math"

func resonantParams(sampleRate float64) []ParamSpec {
	return []ParamSpec{
		{Name: "center_hz", Min: 1, Max: float32(sampleRate/2 - 1), Default: 1000},
		{Name: "q", Min: 0.5, Max: 100, Default: 5},
	}
}

// Resonant is a resonant band-pass biquad. The pole radius is derived
// from the bandwidth fc/Q:
//
//	r  = exp(-pi*(fc/Q)/fs)
//	a1 = -2*r*cos(2*pi*fc/fs),  a2 = r^2
//	b0 = 1-r,  b1 = 0,  b2 = -(1-r)*r
//
// r < 1 by construction, so the filter is stable for any valid cutoff.
// The numerator normalizes the pass-band peak to roughly unity gain.
// State is a transposed direct-form-II pair of float64 accumulators.
type Resonant struct {
	sampleRate float64
	center     float64
	q          float64

	b0, b1, b2 float64
	a1, a2     float64
	s1, s2     float64

	in    float32
	out   [1]float32
	specs []ParamSpec
}

func NewResonant(centerHz, q float32, sampleRate int) *Resonant {
	f := &Resonant{
		sampleRate: float64(sampleRate),
		specs:      resonantParams(float64(sampleRate)),
	}
	f.center = float64(f.specs[0].Clamp(centerHz))
	f.q = float64(f.specs[1].Clamp(q))
	f.recompute()
	return f
}

func (f *Resonant) recompute() {
	r := math.Exp(-math.Pi * (f.center / f.q) / f.sampleRate)
	w := twoPi * f.center / f.sampleRate
	f.a1 = -2 * r * math.Cos(w)
	f.a2 = r * r
	f.b0 = 1 - r
	f.b1 = 0
	f.b2 = -(1 - r) * r
}

// PoleRadius exposes r for stability checks.
func (f *Resonant) PoleRadius() float64 {
	return math.Sqrt(f.a2)
}

func (f *Resonant) Inputs() int  { return 1 }
func (f *Resonant) Outputs() int { return 1 }

func (f *Resonant) Push(v float32, port int) {
	f.in += v
}

func (f *Resonant) Transform() []float32 {
	x := float64(f.in)
	f.in = 0
	y := f.b0*x + f.s1
	f.s1 = f.b1*x - f.a1*y + f.s2
	f.s2 = f.b2*x - f.a2*y
	f.out[0] = float32(y)
	return f.out[:]
}

// Postponable: the biquad's feedback taps give it a sample-scale memory
// path, so a feedback edge may terminate here.
func (f *Resonant) Postponable() bool   { return true }
func (f *Resonant) Params() []ParamSpec { return f.specs }

// SetParameter recomputes coefficients from the new parameter set. The
// z-state is kept, so a constant input does not spike when Q changes.
func (f *Resonant) SetParameter(name string, v float32) {
	spec, ok := findSpec(f.specs, name)
	if !ok {
		return
	}
	switch name {
	case "center_hz":
		f.center = float64(spec.Clamp(v))
	case "q":
		f.q = float64(spec.Clamp(v))
	default:
		return
	}
	f.recompute()
}

func (f *Resonant) Clone() Node {
	return NewResonant(float32(f.center), float32(f.q), int(f.sampleRate))
}
