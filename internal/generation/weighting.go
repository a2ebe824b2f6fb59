package generation

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Conceptual-Machines/magda-composer/internal/harmony"
	"github.com/Conceptual-Machines/magda-composer/internal/logger"
)

// Candidate weights
const (
	baseWeight       = 1.0
	chordToneFactor  = 4.0
	tensionFactor    = 2.0
	proximityCeiling = 1.5
	proximityFloor   = 0.1
	proximitySpan    = 8.0
	offGridStrength  = 0.5
	beatsPerBar      = 4.0
)

// beatStrength4_4 weights beat positions in common time
var beatStrength4_4 = map[float64]float64{
	0: 1.0,
	1: 0.6,
	2: 0.9,
	3: 0.4,
}

// BeatStrength returns the metrical weight of an offset (in beats) within a 4/4 bar
func BeatStrength(offset float64) float64 {
	pos := math.Mod(offset, beatsPerBar)
	if pos < 0 {
		pos += beatsPerBar
	}
	if s, ok := beatStrength4_4[pos]; ok {
		return s
	}
	return offGridStrength
}

// OctaveRange is an inclusive range of octaves (C4 = middle C)
type OctaveRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Contains reports whether a MIDI pitch lies within the range
func (r OctaveRange) Contains(pitch int) bool {
	oct := harmony.Octave(pitch)
	return oct >= r.Low && oct <= r.High
}

// Candidate is a pitch with its sampling weight
type Candidate struct {
	Pitch  int     `json:"pitch"`
	Weight float64 `json:"weight"`
}

// Selection describes one pitch choice
type Selection struct {
	ChordPitchClasses   []int
	TensionPitchClasses []int
	Root                *int // chord root pitch class, used when the pool is empty
	Previous            *int // previously chosen MIDI pitch
	BeatStrength        float64
	Octaves             OctaveRange
}

// WeightingEngine builds weighted candidate pools and samples from them
type WeightingEngine struct {
	src rand.Source
}

// NewWeightingEngine creates an engine drawing from src
func NewWeightingEngine(src rand.Source) *WeightingEngine {
	return &WeightingEngine{src: src}
}

// Pool returns every chord and tension pitch class across the octave range,
// deduplicated, with its weight
func (e *WeightingEngine) Pool(sel Selection) []Candidate {
	chord := toSet(sel.ChordPitchClasses)
	tension := toSet(sel.TensionPitchClasses)

	seen := make(map[int]bool)
	var pool []Candidate
	add := func(pc int) {
		for oct := sel.Octaves.Low; oct <= sel.Octaves.High; oct++ {
			p := harmony.MIDI(pc, oct)
			if p < 0 || p > 127 || seen[p] {
				continue
			}
			seen[p] = true
			pool = append(pool, Candidate{Pitch: p, Weight: weight(p, chord, tension, sel)})
		}
	}
	for _, pc := range sel.ChordPitchClasses {
		add(pc)
	}
	for _, pc := range sel.TensionPitchClasses {
		add(pc)
	}
	return pool
}

func weight(p int, chord, tension map[int]bool, sel Selection) float64 {
	w := baseWeight
	pc := harmony.PitchClass(p)
	if chord[pc] {
		w *= chordToneFactor
	} else if tension[pc] {
		w *= tensionFactor
	}
	if sel.Previous != nil {
		dist := math.Abs(float64(p - *sel.Previous))
		w *= math.Max(proximityFloor, proximityCeiling-dist/proximitySpan)
	}
	return w * math.Max(0, sel.BeatStrength)
}

// SelectPitch samples a pitch from the weighted pool. An empty pool falls back
// to the chord root (C without one) in the lowest octave of the range.
func (e *WeightingEngine) SelectPitch(sel Selection) int {
	pool := e.Pool(sel)
	if len(pool) == 0 {
		root := 0
		if sel.Root != nil {
			root = *sel.Root
		}
		fallback := harmony.FitMIDI(harmony.MIDI(root, sel.Octaves.Low))
		logger.Warn("Candidate pool empty, using chord root", logger.Fields{
			"root":       harmony.PitchClassName(root),
			"octave_low": sel.Octaves.Low,
		})
		return fallback
	}

	weights := make([]float64, len(pool))
	for i, c := range pool {
		weights[i] = c.Weight
	}
	return pool[sample(weights, e.src)].Pitch
}

// sample draws an index proportionally to weights. A zero total picks index 0.
func sample(weights []float64, src rand.Source) int {
	if len(weights) <= 1 || floats.Sum(weights) <= 0 {
		return 0
	}
	return int(distuv.NewCategorical(weights, src).Rand())
}

func toSet(pcs []int) map[int]bool {
	set := make(map[int]bool, len(pcs))
	for _, pc := range pcs {
		set[harmony.PitchClass(pc)] = true
	}
	return set
}
