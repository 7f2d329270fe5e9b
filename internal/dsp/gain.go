package dsp

var gainParams = []ParamSpec{
	{Name: "factor", Min: 0, Max: 16, Default: 1},
}

// Gain scales its input by a linear factor.
type Gain struct {
	factor float32
	in     float32
	out    [1]float32
}

func NewGain(factor float32) *Gain {
	g := &Gain{}
	g.factor = gainParams[0].Clamp(factor)
	return g
}

func (g *Gain) Inputs() int  { return 1 }
func (g *Gain) Outputs() int { return 1 }

func (g *Gain) Push(v float32, port int) {
	g.in += v
}

func (g *Gain) Transform() []float32 {
	g.out[0] = g.in * g.factor
	g.in = 0
	return g.out[:]
}

func (g *Gain) Postponable() bool   { return false }
func (g *Gain) Params() []ParamSpec { return gainParams }

func (g *Gain) SetParameter(name string, v float32) {
	if spec, ok := findSpec(gainParams, name); ok && name == "factor" {
		g.factor = spec.Clamp(v)
	}
}

func (g *Gain) Clone() Node { return NewGain(g.factor) }

var clipperParams = []ParamSpec{
	{Name: "max_amplitude", Min: 0.001, Max: 1, Default: 1},
}

// Clipper limits its input to [-max, +max]. Clipping is symmetric about
// zero; an asymmetric clip would introduce a DC offset.
type Clipper struct {
	max float32
	in  float32
	out [1]float32
}

func NewClipper(max float32) *Clipper {
	c := &Clipper{}
	c.max = clipperParams[0].Clamp(max)
	return c
}

func (c *Clipper) Inputs() int  { return 1 }
func (c *Clipper) Outputs() int { return 1 }

func (c *Clipper) Push(v float32, port int) {
	c.in += v
}

func (c *Clipper) Transform() []float32 {
	v := c.in
	c.in = 0
	if v > c.max {
		v = c.max
	} else if v < -c.max {
		v = -c.max
	}
	c.out[0] = v
	return c.out[:]
}

func (c *Clipper) Postponable() bool   { return false }
func (c *Clipper) Params() []ParamSpec { return clipperParams }

func (c *Clipper) SetParameter(name string, v float32) {
	if spec, ok := findSpec(clipperParams, name); ok && name == "max_amplitude" {
		c.max = spec.Clamp(v)
	}
}

func (c *Clipper) Clone() Node { return NewClipper(c.max) }
