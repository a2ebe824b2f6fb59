package generation

import (
	"math/rand/v2"

	"github.com/Conceptual-Machines/magda-composer/internal/harmony"
	"github.com/Conceptual-Machines/magda-composer/internal/logger"
	"github.com/Conceptual-Machines/magda-composer/internal/scale"
)

// DefaultMelodyOctaves is the melody range when none is given
var DefaultMelodyOctaves = OctaveRange{Low: 4, High: 5}

// MelodyGenerator picks one pitch per onset from weighted chord and tension
// candidates, refined by the contour model once a previous pitch exists
type MelodyGenerator struct {
	scales    *scale.Registry
	weighting *WeightingEngine
	contour   *ContourModel
}

// NewMelodyGenerator creates a generator; weighting and contour share src
func NewMelodyGenerator(scales *scale.Registry, src rand.Source) *MelodyGenerator {
	return &MelodyGenerator{
		scales:    scales,
		weighting: NewWeightingEngine(src),
		contour:   NewContourModel(DefaultTransitions, src),
	}
}

// GenerateMelodicPitches returns one MIDI pitch per beat offset. Offsets are
// beats relative to the chord's block and set the beat strength of each pick.
func (g *MelodyGenerator) GenerateMelodicPitches(chord *harmony.Chord, tonic, mode string, beatOffsets []float64, octaves OctaveRange) []int {
	if chord == nil {
		logger.Warn("No chord for melodic pitches", logger.Fields{"tonic": tonic, "mode": mode})
		return []int{}
	}
	octaves = normalizeRange(octaves)

	ctx := g.scales.Get(tonic, mode)
	chordPCs := chord.PitchClasses()
	tensionPCs := scale.TensionPitchClasses(ctx, string(ctx.Mode))
	root := chord.Root

	pitches := make([]int, 0, len(beatOffsets))
	var prev *int
	prevInterval := 0

	for _, offset := range beatOffsets {
		chosen := g.weighting.SelectPitch(Selection{
			ChordPitchClasses:   chordPCs,
			TensionPitchClasses: tensionPCs,
			Root:                &root,
			Previous:            prev,
			BeatStrength:        BeatStrength(offset),
			Octaves:             octaves,
		})

		if prev != nil {
			desired := g.contour.NextInterval(prevInterval)
			candidate := *prev + desired
			if harmony.ValidMIDI(candidate) && octaves.Contains(candidate) {
				chosen = candidate
				prevInterval = desired
			} else {
				prevInterval = chosen - *prev
			}
		} else {
			prevInterval = 0
		}

		p := chosen
		prev = &p
		pitches = append(pitches, chosen)
	}

	return pitches
}

func normalizeRange(r OctaveRange) OctaveRange {
	if r.Low == 0 && r.High == 0 {
		return DefaultMelodyOctaves
	}
	if r.High < r.Low {
		logger.Warn("Octave range inverted, using the low octave only", logger.Fields{
			"octave_low":  r.Low,
			"octave_high": r.High,
		})
		r.High = r.Low
	}
	return r
}
