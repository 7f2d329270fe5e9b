package dsp

import "math"

const twoPi = 2 * math.Pi

func lowPassParams(sampleRate float64) []ParamSpec {
	return []ParamSpec{
		{Name: "cutoff_hz", Min: 1, Max: float32(sampleRate/2 - 1), Default: 1000},
	}
}

// LowPass is a one-pole low-pass filter:
//
//	y[n] = a*x[n] + (1-a)*y[n-1],  a = 1 - exp(-2*pi*fc/fs)
//
// The exponential form keeps a in (0,1) for any cutoff below Nyquist.
type LowPass struct {
	sampleRate float64
	cutoff     float64
	alpha      float64
	prevOut    float64
	in         float32
	out        [1]float32
	specs      []ParamSpec
}

func NewLowPass(cutoffHz float32, sampleRate int) *LowPass {
	f := &LowPass{
		sampleRate: float64(sampleRate),
		specs:      lowPassParams(float64(sampleRate)),
	}
	f.cutoff = float64(f.specs[0].Clamp(cutoffHz))
	f.recompute()
	return f
}

func (f *LowPass) recompute() {
	f.alpha = 1 - math.Exp(-twoPi*f.cutoff/f.sampleRate)
}

func (f *LowPass) Inputs() int  { return 1 }
func (f *LowPass) Outputs() int { return 1 }

func (f *LowPass) Push(v float32, port int) {
	f.in += v
}

func (f *LowPass) Transform() []float32 {
	x := float64(f.in)
	f.in = 0
	f.prevOut = f.alpha*x + (1-f.alpha)*f.prevOut
	f.out[0] = float32(f.prevOut)
	return f.out[:]
}

func (f *LowPass) Postponable() bool   { return false }
func (f *LowPass) Params() []ParamSpec { return f.specs }

// SetParameter recomputes the coefficient; the previous output is kept so
// a live cutoff change does not click.
func (f *LowPass) SetParameter(name string, v float32) {
	if spec, ok := findSpec(f.specs, name); ok && name == "cutoff_hz" {
		f.cutoff = float64(spec.Clamp(v))
		f.recompute()
	}
}

func (f *LowPass) Clone() Node {
	return NewLowPass(float32(f.cutoff), int(f.sampleRate))
}

func highPassParams(sampleRate float64) []ParamSpec {
	return []ParamSpec{
		{Name: "cutoff_hz", Min: 1, Max: float32(sampleRate/2 - 1), Default: 200},
	}
}

// HighPass is a one-pole high-pass filter:
//
//	y[n] = a*(y[n-1] + x[n] - x[n-1]),  a = RC/(RC+dt),  RC = 1/(2*pi*fc)
type HighPass struct {
	sampleRate float64
	cutoff     float64
	alpha      float64
	prevIn     float64
	prevOut    float64
	in         float32
	out        [1]float32
	specs      []ParamSpec
}

func NewHighPass(cutoffHz float32, sampleRate int) *HighPass {
	f := &HighPass{
		sampleRate: float64(sampleRate),
		specs:      highPassParams(float64(sampleRate)),
	}
	f.cutoff = float64(f.specs[0].Clamp(cutoffHz))
	f.recompute()
	return f
}

func (f *HighPass) recompute() {
	rc := 1 / (twoPi * f.cutoff)
	dt := 1 / f.sampleRate
	f.alpha = rc / (rc + dt)
}

func (f *HighPass) Inputs() int  { return 1 }
func (f *HighPass) Outputs() int { return 1 }

func (f *HighPass) Push(v float32, port int) {
	f.in += v
}

func (f *HighPass) Transform() []float32 {
	x := float64(f.in)
	f.in = 0
	f.prevOut = f.alpha * (f.prevOut + x - f.prevIn)
	f.prevIn = x
	f.out[0] = float32(f.prevOut)
	return f.out[:]
}

func (f *HighPass) Postponable() bool   { return false }
func (f *HighPass) Params() []ParamSpec { return f.specs }

func (f *HighPass) SetParameter(name string, v float32) {
	if spec, ok := findSpec(f.specs, name); ok && name == "cutoff_hz" {
		f.cutoff = float64(spec.Clamp(v))
		f.recompute()
	}
}

func (f *HighPass) Clone() Node {
	return NewHighPass(float32(f.cutoff), int(f.sampleRate))
}

func bandPassParams(sampleRate float64) []ParamSpec {
	nyq := float32(sampleRate/2 - 1)
	return []ParamSpec{
		{Name: "lower_hz", Min: 1, Max: nyq, Default: 200},
		{Name: "upper_hz", Min: 1, Max: nyq, Default: 2000},
	}
}

// BandPass cascades a high-pass at lower_hz into a low-pass at upper_hz.
// Stability follows from its one-pole stages.
type BandPass struct {
	hp    *HighPass
	lp    *LowPass
	out   [1]float32
	specs []ParamSpec
}

func NewBandPass(lowerHz, upperHz float32, sampleRate int) *BandPass {
	specs := bandPassParams(float64(sampleRate))
	return &BandPass{
		hp:    NewHighPass(specs[0].Clamp(lowerHz), sampleRate),
		lp:    NewLowPass(specs[1].Clamp(upperHz), sampleRate),
		specs: specs,
	}
}

func (f *BandPass) Inputs() int  { return 1 }
func (f *BandPass) Outputs() int { return 1 }

func (f *BandPass) Push(v float32, port int) {
	f.hp.Push(v, 0)
}

func (f *BandPass) Transform() []float32 {
	mid := f.hp.Transform()
	f.lp.Push(mid[0], 0)
	f.out[0] = f.lp.Transform()[0]
	return f.out[:]
}

func (f *BandPass) Postponable() bool   { return false }
func (f *BandPass) Params() []ParamSpec { return f.specs }

func (f *BandPass) SetParameter(name string, v float32) {
	switch name {
	case "lower_hz":
		f.hp.SetParameter("cutoff_hz", f.specs[0].Clamp(v))
	case "upper_hz":
		f.lp.SetParameter("cutoff_hz", f.specs[1].Clamp(v))
	}
}

func (f *BandPass) Clone() Node {
	return NewBandPass(float32(f.hp.cutoff), float32(f.lp.cutoff), int(f.lp.sampleRate))
}
