package humanize

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Conceptual-Machines/magda-composer/internal/logger"
	"github.com/Conceptual-Machines/magda-composer/internal/models"
)

// MinNoteDuration is the shortest generated note in beats; humanized
// durations never drop below an eighth of it
const MinNoteDuration = 0.125

// noiseClamp bounds a fractional noise shift to this many scale units
const noiseClamp = 3.0

// Humanizer perturbs timing, length and velocity of note events.
// It is not safe for concurrent use.
type Humanizer struct {
	src           rand.Source
	rng           *rand.Rand
	noise         NoiseGenerator
	durationFloor float64
	role          string
}

// NewHumanizer creates a humanizer using the given noise strategy.
// minNoteDuration <= 0 uses MinNoteDuration.
func NewHumanizer(src rand.Source, strategy Strategy, minNoteDuration float64) *Humanizer {
	if minNoteDuration <= 0 {
		minNoteDuration = MinNoteDuration
	}
	return &Humanizer{
		src:           src,
		rng:           rand.New(src),
		noise:         NewNoiseGenerator(strategy, src),
		durationFloor: minNoteDuration / 8,
	}
}

// WithRole returns a humanizer whose base velocity follows the role default
// for events without a velocity. The copy shares the random source.
func (h *Humanizer) WithRole(role string) *Humanizer {
	c := *h
	c.role = role
	return &c
}

// ApplyToEvent returns a humanized copy of a single event. Rests are returned unchanged.
func (h *Humanizer) ApplyToEvent(event models.NoteEvent, p Profile) models.NoteEvent {
	if event.Rest {
		return event
	}
	if p.UseFractionalNoise {
		return h.apply(event, h.clampNoise(h.noise.Generate(1, p.FBMHurst, p.FBMScale)[0], p), p)
	}
	return h.apply(event, h.uniformShift(p), p)
}

// ApplyToSequence returns humanized copies of events with the same length and
// index order. Notes are shifted in start order and never move before a note
// that started earlier; rests pass through unchanged.
func (h *Humanizer) ApplyToSequence(events []models.NoteEvent, p Profile) []models.NoteEvent {
	out := make([]models.NoteEvent, len(events))
	copy(out, events)

	order := make([]int, 0, len(events))
	for i, ev := range events {
		if !ev.Rest {
			order = append(order, i)
		}
	}
	if len(order) == 0 {
		return out
	}
	sort.SliceStable(order, func(a, b int) bool {
		return events[order[a]].StartBeats < events[order[b]].StartBeats
	})

	var noise []float64
	if p.UseFractionalNoise {
		noise = h.noise.Generate(len(order), p.FBMHurst, p.FBMScale)
	}

	floor := 0.0
	for k, idx := range order {
		var shift float64
		if noise != nil {
			shift = h.clampNoise(noise[k], p)
		} else {
			shift = h.uniformShift(p)
		}
		ev := h.apply(events[idx], shift, p)
		if ev.StartBeats < floor {
			ev.StartBeats = floor
		}
		floor = ev.StartBeats
		out[idx] = ev
	}

	logger.Debug("Humanized sequence", logger.Fields{
		"events":     len(events),
		"notes":      len(order),
		"fbm":        p.UseFractionalNoise,
		"time_range": p.TimeVariation,
	})
	return out
}

func (h *Humanizer) apply(ev models.NoteEvent, shift float64, p Profile) models.NoteEvent {
	ev.StartBeats = math.Max(0, ev.StartBeats+shift)

	if p.DurationPercentage > 0 {
		change := ev.DurationBeats * distuv.Uniform{Min: -p.DurationPercentage, Max: p.DurationPercentage, Src: h.src}.Rand()
		ev.DurationBeats += change
	}
	if ev.DurationBeats < h.durationFloor {
		ev.DurationBeats = h.durationFloor
	}

	base := ev.Velocity
	if base <= 0 {
		base = models.GetDefaultVelocityForRole(h.role)
	}
	if p.VelocityVariation > 0 {
		base += h.rng.IntN(2*p.VelocityVariation+1) - p.VelocityVariation
	}
	ev.Velocity = min(127, max(1, base))
	return ev
}

func (h *Humanizer) uniformShift(p Profile) float64 {
	if p.TimeVariation <= 0 {
		return 0
	}
	return distuv.Uniform{Min: -p.TimeVariation, Max: p.TimeVariation, Src: h.src}.Rand()
}

func (h *Humanizer) clampNoise(v float64, p Profile) float64 {
	limit := noiseClamp * p.FBMScale
	return math.Max(-limit, math.Min(limit, v))
}
