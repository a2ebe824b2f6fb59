package generation

import "sort"

// RhythmTemplate defines onsets, accents and note lengths for a part
type RhythmTemplate struct {
	Name string
	// Onsets in beats within ReferenceBeats (4 = one bar of 4/4)
	Offsets []float64
	// Velocity multipliers for accents (1.0 = normal)
	Accents []float64
	// Optional per-onset lengths in beats; NoteDuration applies otherwise
	Durations []float64
	// Base note length in beats
	NoteDuration float64
	// Duration multiplier (affects note length)
	Articulation   float64
	ReferenceBeats float64
}

// Template names used when a part does not pick one
const (
	DefaultMelodyRhythm = "default_melody_rhythm"
	DefaultBassRhythm   = "bass_quarter_notes"
)

const (
	articulationFull    = 1.0
	articulationHigh    = 0.9
	articulationMedium  = 0.8
	articulationMidHigh = 0.85
	articulationShort   = 0.4
	articulationOverlap = 1.1

	oneBar = 4.0
)

var rhythmTemplates = map[string]RhythmTemplate{
	DefaultMelodyRhythm: {
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{1.0, 1.0, 1.0, 1.0},
		NoteDuration: 1.0,
		Articulation: articulationFull,
	},
	DefaultBassRhythm: {
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{0.75, 0.7, 0.75, 0.7},
		Durations:    []float64{1, 1, 1, 1},
		NoteDuration: 1.0,
		Articulation: articulationFull,
	},
	"bass_half_notes": {
		Offsets:      []float64{0, 2},
		Accents:      []float64{0.8, 0.75},
		Durations:    []float64{2, 2},
		NoteDuration: 2.0,
		Articulation: articulationFull,
	},
	"whole": {
		Offsets:      []float64{0},
		Accents:      []float64{1.0},
		NoteDuration: 4.0,
		Articulation: articulationFull,
	},
	"half": {
		Offsets:      []float64{0, 2},
		Accents:      []float64{1.0, 0.9},
		NoteDuration: 2.0,
		Articulation: articulationFull,
	},
	"quarters": {
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{1.0, 0.8, 0.9, 0.8},
		NoteDuration: 1.0,
		Articulation: articulationHigh,
	},
	"8ths": {
		Offsets:      []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5},
		Accents:      []float64{1.0, 0.7, 0.9, 0.7, 0.95, 0.7, 0.9, 0.7},
		NoteDuration: 0.5,
		Articulation: articulationMidHigh,
	},
	"16ths": {
		Offsets:      []float64{0, 0.25, 0.5, 0.75, 1, 1.25, 1.5, 1.75, 2, 2.25, 2.5, 2.75, 3, 3.25, 3.5, 3.75},
		Accents:      []float64{1.0, 0.6, 0.8, 0.6, 0.9, 0.6, 0.8, 0.6, 0.95, 0.6, 0.8, 0.6, 0.9, 0.6, 0.8, 0.6},
		NoteDuration: 0.25,
		Articulation: articulationMedium,
	},
	"swing": {
		Offsets:      []float64{0, 0.67, 1, 1.67, 2, 2.67, 3, 3.67}, // Triplet feel
		Accents:      []float64{1.0, 0.7, 0.9, 0.7, 0.95, 0.7, 0.9, 0.7},
		NoteDuration: 0.5,
		Articulation: articulationMidHigh,
	},
	"bossa": {
		Offsets:        []float64{0, 1.5, 3, 4.5, 6, 7.5}, // Two bars
		Accents:        []float64{1.0, 0.8, 0.9, 0.8, 1.0, 0.8},
		NoteDuration:   1.0,
		Articulation:   articulationHigh,
		ReferenceBeats: 8,
	},
	"tresillo": {
		Offsets:      []float64{0, 1.5, 3}, // 3+3+2
		Accents:      []float64{1.0, 0.9, 0.95},
		NoteDuration: 1.5,
		Articulation: articulationHigh,
	},
	"waltz": {
		Offsets:        []float64{0, 1, 2},
		Accents:        []float64{1.0, 0.7, 0.75},
		NoteDuration:   1.0,
		Articulation:   articulationHigh,
		ReferenceBeats: 3,
	},
	"syncopated": {
		Offsets:      []float64{0, 0.5, 1.5, 2, 3, 3.5},
		Accents:      []float64{1.0, 0.8, 0.9, 0.85, 0.95, 0.8},
		NoteDuration: 0.5,
		Articulation: articulationMidHigh,
	},
	"anticipation": {
		Offsets:      []float64{0, 1, 1.75, 3, 3.75}, // Push before beats 2 and 4
		Accents:      []float64{1.0, 0.8, 0.9, 0.85, 0.9},
		NoteDuration: 0.75,
		Articulation: articulationMidHigh,
	},
	"staccato": {
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{1.0, 0.9, 0.95, 0.9},
		NoteDuration: 1.0,
		Articulation: articulationShort,
	},
	"legato": {
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{0.9, 0.85, 0.9, 0.85},
		NoteDuration: 1.0,
		Articulation: articulationOverlap,
	},
}

// GetRhythmTemplate returns a rhythm template by name
func GetRhythmTemplate(name string) (RhythmTemplate, bool) {
	tmpl, ok := rhythmTemplates[name]
	if !ok {
		return RhythmTemplate{}, false
	}
	tmpl.Name = name
	if tmpl.ReferenceBeats == 0 {
		tmpl.ReferenceBeats = oneBar
	}
	return tmpl, true
}

// RhythmTemplateNames lists the available templates in alphabetical order
func RhythmTemplateNames() []string {
	names := make([]string, 0, len(rhythmTemplates))
	for name := range rhythmTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StretchFactor scales template beats to a block of the given length
func (t RhythmTemplate) StretchFactor(lengthBeats float64) float64 {
	if t.ReferenceBeats <= 0 {
		return 1.0
	}
	return lengthBeats / t.ReferenceBeats
}

// Stretch maps the template onsets onto a block, dropping onsets at or past its end
func (t RhythmTemplate) Stretch(lengthBeats float64) []float64 {
	factor := t.StretchFactor(lengthBeats)
	out := make([]float64, 0, len(t.Offsets))
	for _, off := range t.Offsets {
		pos := off * factor
		if pos >= lengthBeats {
			break
		}
		out = append(out, pos)
	}
	return out
}

// Accent returns the velocity multiplier of the i-th onset
func (t RhythmTemplate) Accent(i int) float64 {
	if i < len(t.Accents) {
		return t.Accents[i]
	}
	return 1.0
}

// Duration returns the template length of the i-th onset in template beats
func (t RhythmTemplate) Duration(i int) float64 {
	if i < len(t.Durations) {
		return t.Durations[i]
	}
	return t.NoteDuration
}
