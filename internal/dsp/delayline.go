package dsp

import "math"

var delayParams = []ParamSpec{
	{Name: "delay_seconds", Min: 0.00001, Max: 5, Default: 0.25},
}

// DelayLine delays its input by ceil(delay_seconds * sample_rate) samples.
// Read-before-write on a ring buffer: the value read at the write index is
// exactly N samples old. Postponable, so it may close a feedback cycle.
type DelayLine struct {
	sampleRate int
	seconds    float32
	buf        []float32
	length     int
	idx        int
	in         float32
	out        [1]float32
}

func NewDelayLine(delaySeconds float32, sampleRate int) *DelayLine {
	d := &DelayLine{sampleRate: sampleRate}
	d.seconds = delayParams[0].Clamp(delaySeconds)
	d.length = delayLength(d.seconds, sampleRate)
	d.buf = make([]float32, d.length)
	return d
}

func delayLength(seconds float32, sampleRate int) int {
	// The relative epsilon absorbs float32 rounding (at most about 6e-8 of
	// the value) when seconds was derived from an integral sample count.
	x := float64(seconds) * float64(sampleRate)
	n := int(math.Ceil(x - x*2e-7))
	if n < 1 {
		n = 1
	}
	return n
}

func (d *DelayLine) Inputs() int  { return 1 }
func (d *DelayLine) Outputs() int { return 1 }

func (d *DelayLine) Push(v float32, port int) {
	d.in += v
}

func (d *DelayLine) Transform() []float32 {
	x := d.in
	d.in = 0
	y := d.buf[d.idx]
	d.buf[d.idx] = x
	d.idx++
	if d.idx >= d.length {
		d.idx = 0
	}
	d.out[0] = y
	return d.out[:]
}

func (d *DelayLine) Postponable() bool   { return true }
func (d *DelayLine) Params() []ParamSpec { return delayParams }

// SetParameter resizes the effective delay. The ring only grows its
// backing store when the new length exceeds capacity; history already in
// the line is kept where it overlaps the new length.
func (d *DelayLine) SetParameter(name string, v float32) {
	if name != "delay_seconds" {
		return
	}
	d.seconds = delayParams[0].Clamp(v)
	n := delayLength(d.seconds, d.sampleRate)
	if n == d.length {
		return
	}
	if n > cap(d.buf) {
		grown := make([]float32, n)
		copy(grown, d.buf[:d.length])
		d.buf = grown
	} else {
		d.buf = d.buf[:n]
	}
	d.length = n
	if d.idx >= n {
		d.idx = 0
	}
}

func (d *DelayLine) Clone() Node { return NewDelayLine(d.seconds, d.sampleRate) }
