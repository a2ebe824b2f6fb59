package scale

import "strings"

// Mode is a canonical scale mode name
type Mode string

// Supported modes
const (
	Major           Mode = "major"
	Dorian          Mode = "dorian"
	Phrygian        Mode = "phrygian"
	Lydian          Mode = "lydian"
	Mixolydian      Mode = "mixolydian"
	Aeolian         Mode = "aeolian"
	Locrian         Mode = "locrian"
	HarmonicMinor   Mode = "harmonic_minor"
	MelodicMinor    Mode = "melodic_minor"
	WholeTone       Mode = "whole_tone"
	Chromatic       Mode = "chromatic"
	MajorPentatonic Mode = "major_pentatonic"
	MinorPentatonic Mode = "minor_pentatonic"
	Blues           Mode = "blues"
	Octatonic       Mode = "octatonic"
)

// intervals are semitone steps above the tonic, ascending
var intervals = map[Mode][]int{
	Major:           {0, 2, 4, 5, 7, 9, 11},
	Dorian:          {0, 2, 3, 5, 7, 9, 10},
	Phrygian:        {0, 1, 3, 5, 7, 8, 10},
	Lydian:          {0, 2, 4, 6, 7, 9, 11},
	Mixolydian:      {0, 2, 4, 5, 7, 9, 10},
	Aeolian:         {0, 2, 3, 5, 7, 8, 10},
	Locrian:         {0, 1, 3, 5, 6, 8, 10},
	HarmonicMinor:   {0, 2, 3, 5, 7, 8, 11},
	MelodicMinor:    {0, 2, 3, 5, 7, 9, 11},
	WholeTone:       {0, 2, 4, 6, 8, 10},
	Chromatic:       {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	MajorPentatonic: {0, 2, 4, 7, 9},
	MinorPentatonic: {0, 3, 5, 7, 10},
	Blues:           {0, 3, 5, 6, 7, 10},
	Octatonic:       {0, 2, 3, 5, 6, 8, 9, 11},
}

// aliases maps accepted mode names to their canonical mode.
// Octatonic is only reachable through the name-derived lookup.
var aliases = map[string]Mode{
	"ionian":           Major,
	"major":            Major,
	"dorian":           Dorian,
	"phrygian":         Phrygian,
	"lydian":           Lydian,
	"mixolydian":       Mixolydian,
	"aeolian":          Aeolian,
	"natural_minor":    Aeolian,
	"minor":            Aeolian,
	"locrian":          Locrian,
	"harmonicminor":    HarmonicMinor,
	"harmonic_minor":   HarmonicMinor,
	"melodicminor":     MelodicMinor,
	"melodic_minor":    MelodicMinor,
	"wholetone":        WholeTone,
	"whole_tone":       WholeTone,
	"chromatic":        Chromatic,
	"majorpentatonic":  MajorPentatonic,
	"major_pentatonic": MajorPentatonic,
	"minorpentatonic":  MinorPentatonic,
	"minor_pentatonic": MinorPentatonic,
	"blues":            Blues,
}

// Modes returns every canonical mode
func Modes() []Mode {
	return []Mode{
		Major, Dorian, Phrygian, Lydian, Mixolydian, Aeolian, Locrian,
		HarmonicMinor, MelodicMinor, WholeTone, Chromatic,
		MajorPentatonic, MinorPentatonic, Blues, Octatonic,
	}
}

// Intervals returns a copy of the mode's semitone steps above the tonic
func (m Mode) Intervals() []int {
	steps, ok := intervals[m]
	if !ok {
		steps = intervals[Major]
	}
	out := make([]int, len(steps))
	copy(out, steps)
	return out
}

// LookupMode resolves a mode name. Known names and aliases resolve directly;
// otherwise the name is compacted ("Harmonic Minor", "whole-tone scale") and
// matched against the catalogue.
func LookupMode(name string) (Mode, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if m, ok := aliases[lower]; ok {
		return m, true
	}

	compact := compactName(lower)
	if compact == "" {
		return "", false
	}
	for _, m := range Modes() {
		if compactName(string(m)) == compact {
			return m, true
		}
	}
	return "", false
}

func compactName(name string) string {
	name = strings.TrimSuffix(strings.ToLower(name), "scale")
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(name)
}
