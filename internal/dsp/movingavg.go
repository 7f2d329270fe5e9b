package dsp

var movingAverageParams = []ParamSpec{
	{Name: "window_size", Min: 1, Max: 8192, Default: 8},
}

// MovingAverage is a constant-time FIR smoother: a ring of the last
// window_size inputs plus a running sum.
type MovingAverage struct {
	window int
	buf    []float32
	idx    int
	sum    float64
	in     float32
	out    [1]float32
}

func NewMovingAverage(window int) *MovingAverage {
	w := int(movingAverageParams[0].Clamp(float32(window)))
	return &MovingAverage{
		window: w,
		buf:    make([]float32, int(movingAverageParams[0].Max)),
	}
}

func (m *MovingAverage) Inputs() int  { return 1 }
func (m *MovingAverage) Outputs() int { return 1 }

func (m *MovingAverage) Push(v float32, port int) {
	m.in += v
}

func (m *MovingAverage) Transform() []float32 {
	x := m.in
	m.in = 0
	m.sum -= float64(m.buf[m.idx])
	m.buf[m.idx] = x
	m.sum += float64(x)
	m.idx++
	if m.idx >= m.window {
		m.idx = 0
	}
	m.out[0] = float32(m.sum / float64(m.window))
	return m.out[:]
}

func (m *MovingAverage) Postponable() bool   { return false }
func (m *MovingAverage) Params() []ParamSpec { return movingAverageParams }

// SetParameter adjusts the window length. The buffer is pre-sized to the
// maximum window, so no allocation happens here. The running sum is
// recomputed over the first window_size slots of the buffer, which are
// not necessarily the most recent inputs; the output is the true average
// again once window_size new samples have arrived.
func (m *MovingAverage) SetParameter(name string, v float32) {
	if name != "window_size" {
		return
	}
	w := int(movingAverageParams[0].Clamp(v))
	if w == m.window {
		return
	}
	if m.idx >= w {
		m.idx = 0
	}
	m.window = w
	var sum float64
	for i := 0; i < w; i++ {
		sum += float64(m.buf[i])
	}
	m.sum = sum
}

func (m *MovingAverage) Clone() Node { return NewMovingAverage(m.window) }
