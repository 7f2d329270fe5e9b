package graph

import (
	"sort"

	"github.com/lbarasti/graphsynth/internal/dsp"
	"github.com/lbarasti/graphsynth/internal/synth"
)

// Kind classifies a node type for the editor.
type Kind int

const (
	KindGenerator Kind = iota
	KindFilter
	KindSink
)

func (k Kind) String() string {
	switch k {
	case KindGenerator:
		return "generator"
	case KindFilter:
		return "filter"
	case KindSink:
		return "sink"
	default:
		return "unknown"
	}
}

// Descriptor declares a node type: its kind, port counts, parameters and
// constructor. Port counts and parameter specs are static so the canonical
// graph can validate connections and parameter values without
// instantiating anything.
type Descriptor struct {
	Type    string
	Kind    Kind
	Inputs  int
	Outputs int
	Params  []dsp.ParamSpec
	build   func(sampleRate int) dsp.Node
}

var registry = map[string]Descriptor{}

func register(d Descriptor) {
	registry[d.Type] = d
}

func init() {
	probeRate := 44100
	oscTypes := map[string]synth.Waveform{
		"sine":     synth.Sine,
		"square":   synth.Square,
		"sawtooth": synth.Sawtooth,
		"triangle": synth.Triangle,
		"noise":    synth.WhiteNoise,
	}
	for name, wave := range oscTypes {
		w := wave
		register(Descriptor{
			Type: name, Kind: KindGenerator, Inputs: 0, Outputs: 1,
			Params: oscSourceParams(float64(probeRate)),
			build:  func(sr int) dsp.Node { return newOscSource(w, sr) },
		})
	}
	register(Descriptor{
		Type: "impulse", Kind: KindGenerator, Inputs: 0, Outputs: 1,
		build: func(int) dsp.Node { return newImpulseSource() },
	})

	register(Descriptor{
		Type: "gain", Kind: KindFilter, Inputs: 1, Outputs: 1,
		Params: dsp.NewGain(1).Params(),
		build:  func(int) dsp.Node { return dsp.NewGain(1) },
	})
	register(Descriptor{
		Type: "clipper", Kind: KindFilter, Inputs: 1, Outputs: 1,
		Params: dsp.NewClipper(1).Params(),
		build:  func(int) dsp.Node { return dsp.NewClipper(1) },
	})
	register(Descriptor{
		Type: "lowpass", Kind: KindFilter, Inputs: 1, Outputs: 1,
		Params: dsp.NewLowPass(1000, probeRate).Params(),
		build:  func(sr int) dsp.Node { return dsp.NewLowPass(1000, sr) },
	})
	register(Descriptor{
		Type: "highpass", Kind: KindFilter, Inputs: 1, Outputs: 1,
		Params: dsp.NewHighPass(200, probeRate).Params(),
		build:  func(sr int) dsp.Node { return dsp.NewHighPass(200, sr) },
	})
	register(Descriptor{
		Type: "bandpass", Kind: KindFilter, Inputs: 1, Outputs: 1,
		Params: dsp.NewBandPass(200, 2000, probeRate).Params(),
		build:  func(sr int) dsp.Node { return dsp.NewBandPass(200, 2000, sr) },
	})
	register(Descriptor{
		Type: "resonator", Kind: KindFilter, Inputs: 1, Outputs: 1,
		Params: dsp.NewResonant(1000, 5, probeRate).Params(),
		build:  func(sr int) dsp.Node { return dsp.NewResonant(1000, 5, sr) },
	})
	register(Descriptor{
		Type: "moving-average", Kind: KindFilter, Inputs: 1, Outputs: 1,
		Params: dsp.NewMovingAverage(8).Params(),
		build:  func(int) dsp.Node { return dsp.NewMovingAverage(8) },
	})
	register(Descriptor{
		Type: "delay", Kind: KindFilter, Inputs: 1, Outputs: 1,
		Params: dsp.NewDelayLine(0.25, probeRate).Params(),
		build:  func(sr int) dsp.Node { return dsp.NewDelayLine(0.25, sr) },
	})
	register(Descriptor{
		Type: "combinator", Kind: KindFilter, Inputs: 4, Outputs: 1,
		Params: dsp.NewCombinator(4, 1).Params(),
		build:  func(int) dsp.Node { return dsp.NewCombinator(4, 1) },
	})
	register(Descriptor{
		Type: "duplicator", Kind: KindFilter, Inputs: 1, Outputs: 2,
		build: func(int) dsp.Node { return dsp.NewDuplicator(2) },
	})
	register(Descriptor{
		Type: "tremolo", Kind: KindFilter, Inputs: 1, Outputs: 1,
		Params: dsp.NewTremolo(5, 0.3, 1, probeRate).Params(),
		build:  func(sr int) dsp.Node { return dsp.NewTremolo(5, 0.3, 1, sr) },
	})
	register(Descriptor{
		Type: "compressor", Kind: KindFilter, Inputs: 1, Outputs: 1,
		Params: dsp.NewCompressor(0.5, 4, 0.005, 0.1, probeRate).Params(),
		build:  func(sr int) dsp.Node { return dsp.NewCompressor(0.5, 4, 0.005, 0.1, sr) },
	})
	register(Descriptor{
		Type: "audio-out", Kind: KindSink, Inputs: 1, Outputs: 0,
		build: func(int) dsp.Node { return dsp.NewBufferSink() },
	})
}

// Lookup returns the descriptor for a node type name.
func Lookup(typeName string) (Descriptor, bool) {
	d, ok := registry[typeName]
	return d, ok
}

// Types returns all registered type names, sorted.
func Types() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
