package synth

import "math"

// DefaultPolyphony is the voice count per instrument.
const DefaultPolyphony = 4

// NoteFrequency converts a MIDI-style pitch index (0..127) to Hz with
// A4 = note 69 = 440 Hz.
func NoteFrequency(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

type voice struct {
	gen        *MultiTone
	note       int
	velocity   float64
	startOrder uint64
	active     bool
}

// Instrument is a polyphonic container of voices built from a single
// voice template. StartNote assigns an unused voice; when every voice is
// busy the least recently started one is stolen.
type Instrument struct {
	name       string
	voices     []voice
	octave     int
	startCount uint64
	lastOut    float32
}

// NewInstrument clones template into polyphony voices.
func NewInstrument(name string, template *MultiTone, polyphony int) *Instrument {
	if polyphony <= 0 {
		polyphony = DefaultPolyphony
	}
	ins := &Instrument{name: name, voices: make([]voice, polyphony), octave: 4}
	for i := range ins.voices {
		ins.voices[i].gen = template.Clone()
	}
	return ins
}

// Name returns the preset name.
func (ins *Instrument) Name() string { return ins.name }

// Octave returns the instrument's global octave setting.
func (ins *Instrument) Octave() int { return ins.octave }

// SetOctave stores the global octave setting (0..8).
func (ins *Instrument) SetOctave(octave int) {
	if octave < 0 {
		octave = 0
	}
	if octave > 8 {
		octave = 8
	}
	ins.octave = octave
}

// StartNote assigns a voice to the note. Velocity scales amplitude.
func (ins *Instrument) StartNote(note int, velocity float64) {
	v := ins.pickVoice()
	v.note = note
	v.velocity = velocity
	ins.startCount++
	v.startOrder = ins.startCount
	v.active = true
	v.gen.SetBaseFrequency(NoteFrequency(note))
	v.gen.Start()
}

func (ins *Instrument) pickVoice() *voice {
	// Prefer a voice that has fully completed (or was never used).
	for i := range ins.voices {
		v := &ins.voices[i]
		if !v.active || v.gen.Completed() || v.gen.Idle() {
			return v
		}
	}
	// All busy: steal the least recently started.
	steal := &ins.voices[0]
	for i := range ins.voices {
		if ins.voices[i].startOrder < steal.startOrder {
			steal = &ins.voices[i]
		}
	}
	return steal
}

// StopNote releases every voice currently sounding the note.
func (ins *Instrument) StopNote(note int) {
	for i := range ins.voices {
		v := &ins.voices[i]
		if v.active && v.note == note {
			v.gen.Stop()
		}
	}
}

// Tick advances all voices one sample and caches their sum.
func (ins *Instrument) Tick(sampleRate float64) {
	var sum float64
	for i := range ins.voices {
		v := &ins.voices[i]
		if !v.active {
			continue
		}
		sum += float64(v.gen.Tick(sampleRate)) * v.velocity
		if v.gen.Completed() {
			v.active = false
		}
	}
	ins.lastOut = float32(sum)
}

// Output returns the sum produced by the last Tick.
func (ins *Instrument) Output() float32 { return ins.lastOut }

// ActiveVoices returns how many voices are currently sounding.
func (ins *Instrument) ActiveVoices() int {
	n := 0
	for i := range ins.voices {
		if ins.voices[i].active {
			n++
		}
	}
	return n
}
