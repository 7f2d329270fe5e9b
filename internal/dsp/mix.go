package dsp

import (
	"fmt"
	"strconv"
	"strings"
)

// Combinator is an N-input M-output weighted mixer. Each input port has a
// weight parameter named weight_0 .. weight_{N-1}; the weighted sum is
// repeated on every output. An input with no value this step counts as
// zero.
type Combinator struct {
	weights []float32
	ins     []float32
	outs    []float32
	specs   []ParamSpec
}

func NewCombinator(inputs, outputs int) *Combinator {
	if inputs < 1 {
		inputs = 1
	}
	if outputs < 1 {
		outputs = 1
	}
	c := &Combinator{
		weights: make([]float32, inputs),
		ins:     make([]float32, inputs),
		outs:    make([]float32, outputs),
		specs:   make([]ParamSpec, inputs),
	}
	for i := range c.weights {
		c.weights[i] = 1
		c.specs[i] = ParamSpec{Name: fmt.Sprintf("weight_%d", i), Min: -4, Max: 4, Default: 1}
	}
	return c
}

func (c *Combinator) Inputs() int  { return len(c.ins) }
func (c *Combinator) Outputs() int { return len(c.outs) }

func (c *Combinator) Push(v float32, port int) {
	if port >= 0 && port < len(c.ins) {
		c.ins[port] += v
	}
}

func (c *Combinator) Transform() []float32 {
	var sum float32
	for i, v := range c.ins {
		sum += v * c.weights[i]
		c.ins[i] = 0
	}
	for i := range c.outs {
		c.outs[i] = sum
	}
	return c.outs
}

func (c *Combinator) Postponable() bool   { return false }
func (c *Combinator) Params() []ParamSpec { return c.specs }

func (c *Combinator) SetParameter(name string, v float32) {
	idx, ok := weightIndex(name)
	if !ok || idx >= len(c.weights) {
		return
	}
	c.weights[idx] = c.specs[idx].Clamp(v)
}

func weightIndex(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "weight_")
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(rest)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

func (c *Combinator) Clone() Node {
	clone := NewCombinator(len(c.ins), len(c.outs))
	copy(clone.weights, c.weights)
	return clone
}

// Duplicator fans its single input out to every output port unchanged.
type Duplicator struct {
	in   float32
	outs []float32
}

func NewDuplicator(outputs int) *Duplicator {
	if outputs < 2 {
		outputs = 2
	}
	return &Duplicator{outs: make([]float32, outputs)}
}

func (d *Duplicator) Inputs() int  { return 1 }
func (d *Duplicator) Outputs() int { return len(d.outs) }

func (d *Duplicator) Push(v float32, port int) {
	d.in += v
}

func (d *Duplicator) Transform() []float32 {
	for i := range d.outs {
		d.outs[i] = d.in
	}
	d.in = 0
	return d.outs
}

func (d *Duplicator) Postponable() bool            { return false }
func (d *Duplicator) Params() []ParamSpec          { return nil }
func (d *Duplicator) SetParameter(string, float32) {}

func (d *Duplicator) Clone() Node { return NewDuplicator(len(d.outs)) }
