package graph

import (
	"github.com/lbarasti/graphsynth/internal/dsp"
	"github.com/lbarasti/graphsynth/internal/synth"
)

func oscSourceParams(sampleRate float64) []dsp.ParamSpec {
	return []dsp.ParamSpec{
		{Name: "frequency_hz", Min: 0.1, Max: float32(sampleRate/2 - 1), Default: 440},
		{Name: "amplitude", Min: 0, Max: 1, Default: 0.5},
	}
}

// oscSource adapts a synth oscillator into a zero-input graph node.
// Created running; StartNode/StopNode toggle it without a rebuild.
type oscSource struct {
	osc        *synth.Oscillator
	sampleRate float64
	out        [1]float32
	specs      []dsp.ParamSpec
}

func newOscSource(wave synth.Waveform, sampleRate int) *oscSource {
	specs := oscSourceParams(float64(sampleRate))
	s := &oscSource{
		osc:        synth.NewOscillator(wave, float64(specs[0].Default), float64(specs[1].Default), nil, nil),
		sampleRate: float64(sampleRate),
		specs:      specs,
	}
	s.osc.Start()
	return s
}

func (s *oscSource) Inputs() int  { return 0 }
func (s *oscSource) Outputs() int { return 1 }

func (s *oscSource) Push(float32, int) {}

func (s *oscSource) Transform() []float32 {
	s.out[0] = s.osc.Tick(s.sampleRate)
	return s.out[:]
}

func (s *oscSource) Postponable() bool       { return false }
func (s *oscSource) Params() []dsp.ParamSpec { return s.specs }

func (s *oscSource) SetParameter(name string, v float32) {
	switch name {
	case "frequency_hz":
		s.osc.SetFrequency(float64(s.specs[0].Clamp(v)))
	case "amplitude":
		s.osc.SetAmplitude(float64(s.specs[1].Clamp(v)))
	}
}

func (s *oscSource) Start() { s.osc.Start() }
func (s *oscSource) Stop()  { s.osc.Stop() }

func (s *oscSource) Clone() dsp.Node {
	clone := &oscSource{
		osc:        s.osc.Clone(),
		sampleRate: s.sampleRate,
		specs:      s.specs,
	}
	clone.osc.Start()
	return clone
}

// impulseSource emits a single 1.0 on its first step, then zeros.
// Useful for exciting feedback patches and for measuring responses.
type impulseSource struct {
	fired bool
	out   [1]float32
}

func newImpulseSource() *impulseSource { return &impulseSource{} }

func (s *impulseSource) Inputs() int  { return 0 }
func (s *impulseSource) Outputs() int { return 1 }

func (s *impulseSource) Push(float32, int) {}

func (s *impulseSource) Transform() []float32 {
	if s.fired {
		s.out[0] = 0
	} else {
		s.out[0] = 1
		s.fired = true
	}
	return s.out[:]
}

func (s *impulseSource) Postponable() bool            { return false }
func (s *impulseSource) Params() []dsp.ParamSpec      { return nil }
func (s *impulseSource) SetParameter(string, float32) {}

func (s *impulseSource) Start() { s.fired = false }
func (s *impulseSource) Stop()  { s.fired = true }

func (s *impulseSource) Clone() dsp.Node { return newImpulseSource() }
