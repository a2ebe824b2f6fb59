package generation

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/magda-composer/internal/chordlabel"
	"github.com/Conceptual-Machines/magda-composer/internal/harmony"
	"github.com/Conceptual-Machines/magda-composer/internal/models"
	"github.com/Conceptual-Machines/magda-composer/internal/scale"
)

func newTestComposer(seed uint64) *Composer {
	parser := harmony.NewParser()
	return NewComposer(
		chordlabel.NewNormalizer(parser),
		parser,
		scale.NewRegistry(scale.NewCache()),
		rand.NewPCG(seed, seed),
		0,
	)
}

func fullDensity() *float64 {
	d := 1.0
	return &d
}

func testTimeline() []models.ChordBlock {
	return []models.ChordBlock{
		{Offset: 0, LengthBeats: 4, ChordLabel: "Cmaj7"},
		{Offset: 4, LengthBeats: 4, ChordLabel: "n.c."},
		{Offset: 8, LengthBeats: 4, ChordLabel: "Gsus alt"},
		{Offset: 12, ChordLabel: "Am", Tonic: "A", Mode: "minor"},
	}
}

func TestComposer_Resolve(t *testing.T) {
	c := newTestComposer(1)
	resolved := c.Resolve(testTimeline(), "C", "major")
	require.Len(t, resolved, 4)

	assert.Equal(t, "Cmaj7", resolved[0].Label.Text())
	require.NotNil(t, resolved[0].Chord)
	assert.Equal(t, 0, resolved[0].Chord.Root)
	assert.Equal(t, "C", resolved[0].Block.Tonic)
	assert.Equal(t, "major", resolved[0].Block.Mode)

	assert.True(t, resolved[1].Label.IsRest())
	assert.Nil(t, resolved[1].Chord)
	assert.True(t, resolved[2].Label.IsRest())

	assert.Equal(t, "A", resolved[3].Block.Tonic)
	assert.Equal(t, "minor", resolved[3].Block.Mode)
	assert.Equal(t, 4.0, resolved[3].Block.LengthBeats)
}

func TestComposer_ChordEvents(t *testing.T) {
	c := newTestComposer(1)
	events := c.ChordEvents(c.Resolve(testTimeline(), "C", "major"))

	require.Len(t, events, 4)
	assert.Equal(t, models.ChordEvent{ChordSymbol: "Cmaj7", StartBeats: 0, DurationBeats: 4}, events[0])
	assert.Equal(t, models.ChordEvent{ChordSymbol: "Rest", StartBeats: 4, DurationBeats: 4, Rest: true}, events[1])
	assert.True(t, events[2].Rest)
	assert.Equal(t, "Am", events[3].ChordSymbol)
}

func TestComposer_ComposeMelody(t *testing.T) {
	t.Run("full density fills every non-rest onset", func(t *testing.T) {
		c := newTestComposer(2)
		resolved := c.Resolve(testTimeline(), "C", "major")
		events := c.ComposeMelody(resolved, models.MelodyParams{Density: fullDensity()})

		require.Len(t, events, 8)
		starts := make([]float64, len(events))
		for i, ev := range events {
			starts[i] = ev.StartBeats
			assert.Equal(t, 1.0, ev.DurationBeats)
			assert.Equal(t, DefaultMelodyVelocity, ev.Velocity)
			assert.True(t, DefaultMelodyOctaves.Contains(ev.MidiNoteNumber))
		}
		assert.Equal(t, []float64{0, 1, 2, 3, 12, 13, 14, 15}, starts)
	})

	t.Run("zero density is silent", func(t *testing.T) {
		c := newTestComposer(3)
		zero := 0.0
		events := c.ComposeMelody(c.Resolve(testTimeline(), "C", "major"), models.MelodyParams{Density: &zero})
		assert.Empty(t, events)
	})

	t.Run("explicit beat positions", func(t *testing.T) {
		c := newTestComposer(4)
		blocks := []models.ChordBlock{{Offset: 8, LengthBeats: 4, ChordLabel: "F", BeatPositions: []float64{2, 0, 5}}}
		events := c.ComposeMelody(c.Resolve(blocks, "C", "major"), models.MelodyParams{Density: fullDensity()})

		require.Len(t, events, 2)
		assert.Equal(t, 8.0, events[0].StartBeats)
		assert.Equal(t, 10.0, events[1].StartBeats)
		assert.Equal(t, 1.0, events[0].DurationBeats)
	})

	t.Run("custom range and velocity", func(t *testing.T) {
		c := newTestComposer(5)
		params := models.MelodyParams{Density: fullDensity(), OctaveLow: 3, OctaveHigh: 3, Velocity: 100, RhythmKey: "8ths"}
		events := c.ComposeMelody(c.Resolve(testTimeline(), "C", "major"), params)
		require.Len(t, events, 16)
		for _, ev := range events {
			assert.Equal(t, 3, harmony.Octave(ev.MidiNoteNumber))
			assert.LessOrEqual(t, ev.Velocity, 100)
			assert.GreaterOrEqual(t, ev.DurationBeats, MinNoteDuration)
		}
	})

	t.Run("unknown rhythm falls back", func(t *testing.T) {
		c := newTestComposer(6)
		events := c.ComposeMelody(c.Resolve(testTimeline(), "C", "major"), models.MelodyParams{Density: fullDensity(), RhythmKey: "polka"})
		assert.Len(t, events, 8)
	})

	t.Run("same seed same events", func(t *testing.T) {
		a := newTestComposer(7)
		b := newTestComposer(7)
		ea := a.ComposeMelody(a.Resolve(testTimeline(), "C", "major"), models.MelodyParams{})
		eb := b.ComposeMelody(b.Resolve(testTimeline(), "C", "major"), models.MelodyParams{})
		assert.Equal(t, ea, eb)
	})
}

func TestComposer_ComposeBass(t *testing.T) {
	t.Run("root only per block", func(t *testing.T) {
		c := newTestComposer(1)
		blocks := []models.ChordBlock{
			{Offset: 0, LengthBeats: 4, ChordLabel: "C", Intensity: "low"},
			{Offset: 4, LengthBeats: 4, ChordLabel: "rest"},
			{Offset: 8, LengthBeats: 4, ChordLabel: "G", Intensity: "low"},
		}
		events := c.ComposeBass(c.Resolve(blocks, "C", "major"), models.BassParams{})

		require.Len(t, events, 8)
		for i, ev := range events[:4] {
			assert.Equal(t, 36, ev.MidiNoteNumber)
			assert.Equal(t, float64(i), ev.StartBeats)
			assert.Equal(t, 1.0, ev.DurationBeats)
		}
		assert.Equal(t, 52, events[0].Velocity)
		for _, ev := range events[4:] {
			assert.Equal(t, 43, ev.MidiNoteNumber)
			assert.GreaterOrEqual(t, ev.StartBeats, 8.0)
		}
	})

	t.Run("pattern stretches over long blocks", func(t *testing.T) {
		c := newTestComposer(1)
		blocks := []models.ChordBlock{{Offset: 0, LengthBeats: 8, ChordLabel: "D"}}
		events := c.ComposeBass(c.Resolve(blocks, "D", "major"), models.BassParams{Style: "root_fifth"})

		require.Len(t, events, 4)
		assert.Equal(t, []int{38, 45, 38, 45}, []int{
			events[0].MidiNoteNumber, events[1].MidiNoteNumber, events[2].MidiNoteNumber, events[3].MidiNoteNumber,
		})
		assert.Equal(t, 2.0, events[1].DurationBeats)
		assert.Equal(t, 6.0, events[3].StartBeats)
	})

	t.Run("custom octave", func(t *testing.T) {
		c := newTestComposer(1)
		blocks := []models.ChordBlock{{Offset: 0, LengthBeats: 4, ChordLabel: "E", Intensity: "low"}}
		events := c.ComposeBass(c.Resolve(blocks, "E", "major"), models.BassParams{Octave: 1, RhythmKey: "bass_half_notes"})
		require.Len(t, events, 2)
		assert.Equal(t, 28, events[0].MidiNoteNumber)
		assert.Equal(t, 2.0, events[0].DurationBeats)
	})
}
