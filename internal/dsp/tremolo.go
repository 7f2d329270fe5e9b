package dsp

import "math"

var tremoloParams = []ParamSpec{
	{Name: "lfo_hz", Min: 0.01, Max: 40, Default: 5},
	{Name: "lower", Min: 0, Max: 1, Default: 0.3},
	{Name: "upper", Min: 0, Max: 1, Default: 1},
}

// Tremolo modulates amplitude with a sine LFO sweeping between lower and
// upper.
type Tremolo struct {
	sampleRate float64
	lfoHz      float64
	lower      float64
	upper      float64
	phase      float64
	in         float32
	out        [1]float32
}

func NewTremolo(lfoHz, lower, upper float32, sampleRate int) *Tremolo {
	return &Tremolo{
		sampleRate: float64(sampleRate),
		lfoHz:      float64(tremoloParams[0].Clamp(lfoHz)),
		lower:      float64(tremoloParams[1].Clamp(lower)),
		upper:      float64(tremoloParams[2].Clamp(upper)),
	}
}

func (t *Tremolo) Inputs() int  { return 1 }
func (t *Tremolo) Outputs() int { return 1 }

func (t *Tremolo) Push(v float32, port int) {
	t.in += v
}

func (t *Tremolo) Transform() []float32 {
	x := float64(t.in)
	t.in = 0
	mod := math.Sin(t.phase)*(t.upper-t.lower)/2 + (t.upper+t.lower)/2
	t.phase += twoPi * t.lfoHz / t.sampleRate
	if t.phase >= twoPi {
		t.phase -= twoPi
	}
	t.out[0] = float32(x * mod)
	return t.out[:]
}

func (t *Tremolo) Postponable() bool   { return false }
func (t *Tremolo) Params() []ParamSpec { return tremoloParams }

func (t *Tremolo) SetParameter(name string, v float32) {
	spec, ok := findSpec(tremoloParams, name)
	if !ok {
		return
	}
	switch name {
	case "lfo_hz":
		t.lfoHz = float64(spec.Clamp(v))
	case "lower":
		t.lower = float64(spec.Clamp(v))
	case "upper":
		t.upper = float64(spec.Clamp(v))
	}
}

func (t *Tremolo) Clone() Node {
	return NewTremolo(float32(t.lfoHz), float32(t.lower), float32(t.upper), int(t.sampleRate))
}
