package dsp

import "math"

func compressorParams() []ParamSpec {
	return []ParamSpec{
		{Name: "threshold", Min: 0.01, Max: 1, Default: 0.5},
		{Name: "ratio", Min: 1, Max: 20, Default: 4},
		{Name: "attack_s", Min: 0.0001, Max: 1, Default: 0.005},
		{Name: "release_s", Min: 0.001, Max: 5, Default: 0.1},
	}
}

// Compressor applies downward compression above a linear threshold. An
// envelope follower tracks |x| with separate attack and release time
// constants; the static curve reduces the excess over the threshold by
// the ratio.
type Compressor struct {
	sampleRate float64
	threshold  float64
	ratio      float64
	attackS    float64
	releaseS   float64

	attackCoef  float64
	releaseCoef float64
	env         float64

	in    float32
	out   [1]float32
	specs []ParamSpec
}

func NewCompressor(threshold, ratio, attackS, releaseS float32, sampleRate int) *Compressor {
	c := &Compressor{
		sampleRate: float64(sampleRate),
		specs:      compressorParams(),
	}
	c.threshold = float64(c.specs[0].Clamp(threshold))
	c.ratio = float64(c.specs[1].Clamp(ratio))
	c.attackS = float64(c.specs[2].Clamp(attackS))
	c.releaseS = float64(c.specs[3].Clamp(releaseS))
	c.recompute()
	return c
}

func (c *Compressor) recompute() {
	c.attackCoef = math.Exp(-1 / (c.attackS * c.sampleRate))
	c.releaseCoef = math.Exp(-1 / (c.releaseS * c.sampleRate))
}

func (c *Compressor) Inputs() int  { return 1 }
func (c *Compressor) Outputs() int { return 1 }

func (c *Compressor) Push(v float32, port int) {
	c.in += v
}

func (c *Compressor) Transform() []float32 {
	x := float64(c.in)
	c.in = 0
	mag := math.Abs(x)
	coef := c.releaseCoef
	if mag > c.env {
		coef = c.attackCoef
	}
	c.env = coef*c.env + (1-coef)*mag

	gain := 1.0
	if c.env > c.threshold {
		gain = (c.threshold + (c.env-c.threshold)/c.ratio) / c.env
	}
	c.out[0] = float32(x * gain)
	return c.out[:]
}

func (c *Compressor) Postponable() bool   { return false }
func (c *Compressor) Params() []ParamSpec { return c.specs }

// SetParameter keeps the envelope follower state so live tweaks do not
// pump the gain.
func (c *Compressor) SetParameter(name string, v float32) {
	spec, ok := findSpec(c.specs, name)
	if !ok {
		return
	}
	switch name {
	case "threshold":
		c.threshold = float64(spec.Clamp(v))
	case "ratio":
		c.ratio = float64(spec.Clamp(v))
	case "attack_s":
		c.attackS = float64(spec.Clamp(v))
		c.recompute()
	case "release_s":
		c.releaseS = float64(spec.Clamp(v))
		c.recompute()
	}
}

func (c *Compressor) Clone() Node {
	return NewCompressor(float32(c.threshold), float32(c.ratio),
		float32(c.attackS), float32(c.releaseS), int(c.sampleRate))
}
