package generation

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/Conceptual-Machines/magda-composer/internal/chordlabel"
	"github.com/Conceptual-Machines/magda-composer/internal/harmony"
	"github.com/Conceptual-Machines/magda-composer/internal/logger"
	"github.com/Conceptual-Machines/magda-composer/internal/models"
	"github.com/Conceptual-Machines/magda-composer/internal/scale"
)

// Composer defaults
const (
	MinNoteDuration       = 0.125
	DefaultMelodyDensity  = 0.7
	DefaultMelodyVelocity = 80
	DefaultBassVelocity   = 70
	defaultNoteDuration   = 0.5
	defaultBlockLength    = 4.0
	quarterGridSteps      = 4
)

// ResolvedBlock is a timeline block with its normalized label and parsed chord.
// Chord is nil when the label resolved to Rest.
type ResolvedBlock struct {
	Block models.ChordBlock
	Label chordlabel.Label
	Chord *harmony.Chord
}

// Composer turns a chord timeline into melody and bass events.
// It is not safe for concurrent use; build one per generation run.
type Composer struct {
	normalizer      *chordlabel.Normalizer
	parser          harmony.Parser
	scales          *scale.Registry
	melody          *MelodyGenerator
	bass            *BassLine
	rng             *rand.Rand
	minNoteDuration float64
}

// NewComposer creates a composer. Every random draw comes from src.
func NewComposer(normalizer *chordlabel.Normalizer, parser harmony.Parser, scales *scale.Registry, src rand.Source, minNoteDuration float64) *Composer {
	if minNoteDuration <= 0 {
		minNoteDuration = MinNoteDuration
	}
	return &Composer{
		normalizer:      normalizer,
		parser:          parser,
		scales:          scales,
		melody:          NewMelodyGenerator(scales, src),
		bass:            NewBassLine(src),
		rng:             rand.New(src),
		minNoteDuration: minNoteDuration,
	}
}

// Resolve normalizes and parses every block, filling in the default key
func (c *Composer) Resolve(blocks []models.ChordBlock, tonic, mode string) []ResolvedBlock {
	resolved := make([]ResolvedBlock, len(blocks))
	for i, blk := range blocks {
		if blk.Tonic == "" {
			blk.Tonic = tonic
		}
		if blk.Mode == "" {
			blk.Mode = mode
		}
		if blk.LengthBeats <= 0 {
			blk.LengthBeats = defaultBlockLength
		}

		rb := ResolvedBlock{Block: blk, Label: c.normalizer.Normalize(blk.ChordLabel)}
		if !rb.Label.IsRest() {
			chord, err := c.parser.Parse(rb.Label.Text())
			if err != nil {
				logger.Warn("Canonical label failed to parse, treating block as rest", logger.Fields{
					"block": i,
					"label": rb.Label.Text(),
					"error": err.Error(),
				})
				rb.Label = chordlabel.Rest
			} else {
				rb.Chord = chord
			}
		}
		resolved[i] = rb
	}
	return resolved
}

// ChordEvents lists the normalized chord of every block
func (c *Composer) ChordEvents(resolved []ResolvedBlock) []models.ChordEvent {
	events := make([]models.ChordEvent, len(resolved))
	for i, rb := range resolved {
		events[i] = models.ChordEvent{
			ChordSymbol:   rb.Label.String(),
			StartBeats:    rb.Block.Offset,
			DurationBeats: rb.Block.LengthBeats,
			Rest:          rb.Label.IsRest(),
		}
	}
	return events
}

// ComposeMelody generates melody notes for every non-rest block
func (c *Composer) ComposeMelody(resolved []ResolvedBlock, params models.MelodyParams) []models.NoteEvent {
	tmpl := c.rhythm(params.RhythmKey, DefaultMelodyRhythm)

	density := DefaultMelodyDensity
	if params.Density != nil {
		density = *params.Density
	}
	velocity := params.Velocity
	if velocity <= 0 {
		velocity = DefaultMelodyVelocity
	}
	baseDuration := tmpl.NoteDuration
	if params.NoteDuration > 0 {
		baseDuration = params.NoteDuration
	}
	if baseDuration <= 0 {
		baseDuration = defaultNoteDuration
	}
	octaves := OctaveRange{Low: params.OctaveLow, High: params.OctaveHigh}

	var events []models.NoteEvent
	for i, rb := range resolved {
		if rb.Chord == nil {
			logger.Debug("Skipping melody for rest block", logger.Fields{"block": i})
			continue
		}

		length := rb.Block.LengthBeats
		offsets := blockOffsets(rb.Block, tmpl)
		stretch := tmpl.StretchFactor(length)
		pitches := c.melody.GenerateMelodicPitches(rb.Chord, rb.Block.Tonic, rb.Block.Mode, offsets, octaves)

		for idx, pitch := range pitches {
			if c.rng.Float64() > density {
				continue
			}

			gap := length - offsets[idx]
			if idx+1 < len(offsets) {
				gap = offsets[idx+1] - offsets[idx]
			}
			duration := math.Max(c.minNoteDuration, math.Min(gap, baseDuration*stretch*tmpl.Articulation))

			events = append(events, models.NoteEvent{
				MidiNoteNumber: pitch,
				Velocity:       clampVelocity(int(float64(velocity) * tmpl.Accent(idx))),
				StartBeats:     rb.Block.Offset + offsets[idx],
				DurationBeats:  duration,
			})
		}
	}
	return events
}

// ComposeBass generates a bass line for every non-rest block. The rhythm
// template is stretched over the whole block and cycles through the measure pitches.
func (c *Composer) ComposeBass(resolved []ResolvedBlock, params models.BassParams) []models.NoteEvent {
	tmpl := c.rhythm(params.RhythmKey, DefaultBassRhythm)

	octave := params.Octave
	if octave == 0 {
		octave = DefaultBassOctave
	}
	velocity := params.Velocity
	if velocity <= 0 {
		velocity = DefaultBassVelocity
	}

	var events []models.NoteEvent
	for i, rb := range resolved {
		if rb.Chord == nil {
			continue
		}

		next := rb.Chord
		if i+1 < len(resolved) && resolved[i+1].Chord != nil {
			next = resolved[i+1].Chord
		}

		style := SelectBassStyle(params.Style, rb.Block.Intensity)
		ctx := c.scales.Get(rb.Block.Tonic, rb.Block.Mode)
		measure := c.bass.Measure(style, rb.Chord, next, ctx, octave)

		length := rb.Block.LengthBeats
		pitchIdx := 0
		for j, off := range tmpl.Offsets {
			start := off / tmpl.ReferenceBeats * length
			duration := tmpl.Duration(j) / tmpl.ReferenceBeats * length
			if duration < c.minNoteDuration/2 || start >= length {
				continue
			}

			events = append(events, models.NoteEvent{
				MidiNoteNumber: measure[pitchIdx%len(measure)],
				Velocity:       clampVelocity(int(float64(velocity) * tmpl.Accent(j))),
				StartBeats:     rb.Block.Offset + start,
				DurationBeats:  duration,
			})
			pitchIdx++
		}
	}
	return events
}

func (c *Composer) rhythm(name, fallback string) RhythmTemplate {
	if name == "" {
		name = fallback
	}
	tmpl, ok := GetRhythmTemplate(name)
	if !ok {
		logger.Warn("Rhythm template not found, using default", logger.Fields{"rhythm_key": name, "default": fallback})
		tmpl, _ = GetRhythmTemplate(fallback)
	}
	return tmpl
}

// blockOffsets returns the onsets of a block relative to its start: explicit
// beat positions when given, else the stretched template, else a quarter grid
func blockOffsets(blk models.ChordBlock, tmpl RhythmTemplate) []float64 {
	var offsets []float64
	for _, pos := range blk.BeatPositions {
		if pos >= 0 && pos < blk.LengthBeats {
			offsets = append(offsets, pos)
		}
	}
	sort.Float64s(offsets)
	if len(offsets) == 0 {
		offsets = tmpl.Stretch(blk.LengthBeats)
	}
	if len(offsets) == 0 {
		step := blk.LengthBeats / quarterGridSteps
		for i := 0; i < quarterGridSteps; i++ {
			offsets = append(offsets, float64(i)*step)
		}
	}
	return offsets
}

func clampVelocity(v int) int {
	if v < 1 {
		return 1
	}
	if v > 127 {
		return 127
	}
	return v
}
