package scale

import "strings"

var (
	defaultTensions = []int{2, 4, 6}

	tensionDegrees = map[string][]int{
		"major":      {2, 6, 9, 11, 13},
		"ionian":     {2, 6, 9, 11, 13},
		"lydian":     {2, 6, 9, 11, 13},
		"minor":      {2, 4, 6, 9, 11, 13},
		"aeolian":    {2, 4, 6, 9, 11, 13},
		"dorian":     {2, 4, 6, 9, 11, 13},
		"phrygian":   {2, 4, 6, 9, 11, 13},
		"mixolydian": {2, 4, 6, 9, 11, 13},
	}

	avoidDegrees = map[string][]int{
		"major":      {4},
		"ionian":     {4},
		"dorian":     {},
		"phrygian":   {2, 6},
		"lydian":     {},
		"mixolydian": {4},
		"aeolian":    {6},
		"minor":      {6},
		"locrian":    {1, 2, 3, 4, 5, 6, 7},
	}
)

// TensionDegrees returns the scale degrees usable as tensions in a mode.
// Unrecognized modes get a conservative {2, 4, 6}.
func TensionDegrees(mode string) []int {
	if degrees, ok := tensionDegrees[strings.ToLower(strings.TrimSpace(mode))]; ok {
		return copyInts(degrees)
	}
	return copyInts(defaultTensions)
}

// AvoidDegrees returns the scale degrees (1-7) that clash with the prevailing
// harmony of a mode. Locrian avoids every degree.
func AvoidDegrees(mode string) []int {
	if degrees, ok := avoidDegrees[strings.ToLower(strings.TrimSpace(mode))]; ok {
		return copyInts(degrees)
	}
	return []int{}
}

// TensionPitchClasses resolves the mode's tension degrees against a scale,
// dropping avoid degrees. Compound degrees are reduced (9 -> 2, 11 -> 4, 13 -> 6)
// before the avoid check. An empty result means no pitch class is preferred.
func TensionPitchClasses(ctx Context, mode string) []int {
	avoid := make(map[int]bool)
	for _, d := range AvoidDegrees(mode) {
		avoid[d] = true
	}

	seen := make(map[int]bool)
	pcs := []int{}
	for _, d := range TensionDegrees(mode) {
		if avoid[simpleDegree(d)] {
			continue
		}
		pc := ctx.PitchClassFromDegree(d)
		if !seen[pc] {
			seen[pc] = true
			pcs = append(pcs, pc)
		}
	}
	return pcs
}

func simpleDegree(d int) int {
	if d <= 7 {
		return d
	}
	return (d-1)%7 + 1
}

func copyInts(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	return out
}

// TensionSet is the tension policy of a mode resolved against a scale
type TensionSet struct {
	TensionDegrees      []int `json:"tension_degrees"`
	AvoidDegrees        []int `json:"avoid_degrees"`
	TensionPitchClasses []int `json:"tension_pitch_classes"`
}

// Tensions resolves the full tension policy for a scale context
func Tensions(ctx Context, mode string) TensionSet {
	return TensionSet{
		TensionDegrees:      TensionDegrees(mode),
		AvoidDegrees:        AvoidDegrees(mode),
		TensionPitchClasses: TensionPitchClasses(ctx, mode),
	}
}
