package generation

import (
	"math/rand/v2"
	"strings"

	"github.com/Conceptual-Machines/magda-composer/internal/harmony"
	"github.com/Conceptual-Machines/magda-composer/internal/logger"
	"github.com/Conceptual-Machines/magda-composer/internal/scale"
)

// BassStyle selects how a bass measure is built
type BassStyle string

// Bass styles
const (
	BassRootOnly  BassStyle = "root_only"
	BassRootFifth BassStyle = "root_fifth"
	BassWalking   BassStyle = "walking"
)

// DefaultBassOctave is the octave bass roots are placed in
const DefaultBassOctave = 2

type bassMeasureFunc func(b *BassLine, now, next *harmony.Chord, ctx scale.Context, octave int) []int

var bassStyles = map[BassStyle]bassMeasureFunc{
	BassRootOnly:  rootOnly,
	BassRootFifth: rootFifth,
	BassWalking:   walkingQuarters,
}

// SelectBassStyle returns the explicit style when valid, otherwise one derived
// from the block intensity: calm blocks hold the root, medium ones alternate
// root and fifth, anything busier walks.
func SelectBassStyle(explicit, intensity string) BassStyle {
	if explicit != "" {
		if _, ok := bassStyles[BassStyle(explicit)]; ok {
			return BassStyle(explicit)
		}
		logger.Warn("Unknown bass style, using root_only", logger.Fields{"style": explicit})
		return BassRootOnly
	}

	switch strings.ToLower(intensity) {
	case "low", "medium_low":
		return BassRootOnly
	case "medium", "":
		return BassRootFifth
	default:
		return BassWalking
	}
}

// BassLine builds four-pitch bass measures
type BassLine struct {
	rng *rand.Rand
}

// NewBassLine creates a bass line builder drawing from src
func NewBassLine(src rand.Source) *BassLine {
	return &BassLine{rng: rand.New(src)}
}

// Measure returns the four pitches of one measure in the given style.
// next is the chord that follows and is only used by walking lines.
func (b *BassLine) Measure(style BassStyle, now, next *harmony.Chord, ctx scale.Context, octave int) []int {
	fn, ok := bassStyles[style]
	if !ok {
		fn = rootOnly
	}
	if next == nil {
		next = now
	}
	pitches := fn(b, now, next, ctx, octave)
	for i, p := range pitches {
		pitches[i] = harmony.FitMIDI(p)
	}
	return pitches
}

func rootOnly(_ *BassLine, now, _ *harmony.Chord, _ scale.Context, octave int) []int {
	root := harmony.MIDI(now.Root, octave)
	return []int{root, root, root, root}
}

func rootFifth(_ *BassLine, now, _ *harmony.Chord, _ scale.Context, octave int) []int {
	root := harmony.MIDI(now.Root, octave)
	fifth := root + 12
	if pc, ok := now.Fifth(); ok {
		fifth = harmony.MIDI(pc, octave)
	} else {
		logger.Warn("Chord has no fifth, using the octave", logger.Fields{"chord": now.Figure})
	}
	return []int{root, fifth, root, fifth}
}

// walkingQuarters: root, a chord tone, a scale step toward the next root and
// a chromatic approach
func walkingQuarters(b *BassLine, now, next *harmony.Chord, ctx scale.Context, octave int) []int {
	beat1 := harmony.MIDI(now.Root, octave)
	nextRoot := harmony.MIDI(next.Root, octave)

	var options []int
	if pc, ok := now.Third(); ok {
		options = append(options, pc)
	}
	if pc, ok := now.Fifth(); ok {
		options = append(options, pc)
	}
	if len(options) == 0 {
		options = []int{now.Root}
	}
	beat2 := harmony.MIDI(options[b.rng.IntN(len(options))], octave)

	step := -2
	if nextRoot-beat2 > 0 {
		step = 2
	}
	beat3 := beat2 + step
	if !ctx.Contains(beat3) {
		beat3 = beat2
	}

	return []int{beat1, beat2, beat3, approach(beat3, nextRoot)}
}

// approach moves a semitone from cur toward target
func approach(cur, target int) int {
	if target-cur > 0 {
		return cur + 1
	}
	return cur - 1
}
