// Package dsp implements the filter kernels that populate an audio graph.
// Every kernel exchanges float32 samples at its ports; recursive kernels
// keep float64 state internally to limit drift at high Q.
package dsp

// Node is the capability set shared by all graph elements. Sources are
// nodes with zero input ports, sinks are nodes with zero output ports.
//
// Per step the scheduler calls Push once for each incoming edge, then
// Transform exactly once. Transform returns the node's output values for
// this step; the returned slice is owned by the node and is overwritten
// by the next Transform, so callers must copy what they need. Inputs that
// were not pushed this step read as zero.
type Node interface {
	// Inputs and Outputs report the port counts.
	Inputs() int
	Outputs() int

	// Push accumulates an input value for the current step. Port is
	// 0-based and must be < Inputs().
	Push(v float32, port int)

	// Transform computes this step's outputs and clears the pending
	// inputs. Must not allocate.
	Transform() []float32

	// Postponable reports whether the node provides a natural one-sample
	// delay, allowing a feedback edge to terminate at it.
	Postponable() bool

	// Params returns the declared parameter set.
	Params() []ParamSpec

	// SetParameter updates a parameter by name, clamping the value to
	// the declared range. Internal history state is preserved; kernels
	// with derived coefficients recompute them. Unknown names are
	// ignored.
	SetParameter(name string, value float32)

	// Clone returns an independent copy with the same parameters and a
	// fresh state.
	Clone() Node
}

// Starter is implemented by generator nodes that can be activated and
// deactivated without rebuilding the graph.
type Starter interface {
	Start()
	Stop()
}

// SampleSink is implemented by sink nodes. A sink buffers the values it
// receives; Consume drains up to len(dst) of the oldest finished samples
// into dst and returns how many were written.
type SampleSink interface {
	Node
	Consume(dst []float32) int
}

// ParamSpec declares one tunable parameter: its name, numeric range and
// default. The UI builds controls from these.
type ParamSpec struct {
	Name    string
	Min     float32
	Max     float32
	Default float32
}

// Clamp forces v into the declared range.
func (p ParamSpec) Clamp(v float32) float32 {
	if v < p.Min {
		return p.Min
	}
	if v > p.Max {
		return p.Max
	}
	return v
}

func findSpec(specs []ParamSpec, name string) (ParamSpec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return ParamSpec{}, false
}
