package synth

// Factory presets for the default instrument bank. Each builds a voice
// template and returns an instrument that clones it per voice.

func SineLead() *Instrument {
	tmpl := NewMultiTone(MixSum, nil, nil,
		Tone{Osc: NewOscillator(Sine, 440, 0.5, nil, NewADSR(0.01, 0.02, 0.7, 0.05)), Relation: RelIdentity{}},
	)
	return NewInstrument("sine-lead", tmpl, DefaultPolyphony)
}

func SquareBass() *Instrument {
	tmpl := NewMultiTone(MixSum, nil, nil,
		Tone{Osc: NewOscillator(Square, 440, 0.25, nil, NewADSR(0.005, 0.05, 0.6, 0.08)), Relation: RelIdentity{}},
		Tone{Osc: NewOscillator(Square, 440, 0.12, nil, NewADSR(0.005, 0.05, 0.6, 0.08)), Relation: RelSemitones{Semitones: -12}},
	)
	return NewInstrument("square-bass", tmpl, DefaultPolyphony)
}

func SawPad() *Instrument {
	tmpl := NewMultiTone(MixMean, nil, NewADSR(0.3, 0.2, 0.8, 0.5),
		Tone{Osc: NewOscillator(Sawtooth, 440, 0.4, nil, NewConstant(1)), Relation: RelIdentity{}},
		Tone{Osc: NewOscillator(Sawtooth, 440, 0.4, nil, NewConstant(1)), Relation: RelRatio{Ratio: 1.005}},
		Tone{Osc: NewOscillator(Sawtooth, 440, 0.4, nil, NewConstant(1)), Relation: RelRatio{Ratio: 0.995}},
	)
	return NewInstrument("saw-pad", tmpl, DefaultPolyphony)
}

func NoisePercussion() *Instrument {
	tmpl := NewMultiTone(MixSum, nil, nil,
		Tone{Osc: NewOscillator(WhiteNoise, 0, 0.35, nil, NewADSR(0.001, 0.1, 0, 0.05)), Relation: RelIdentity{}},
	)
	return NewInstrument("noise-perc", tmpl, DefaultPolyphony)
}

// DefaultBank is the instrument set the render stage starts with.
func DefaultBank() []*Instrument {
	return []*Instrument{SineLead(), SquareBass(), SawPad(), NoisePercussion()}
}
