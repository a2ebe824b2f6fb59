package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/magda-composer/internal/humanize"
	"github.com/Conceptual-Machines/magda-composer/internal/models"
)

func newTestService() *GenerationService {
	return NewGenerationService(NewMemoryStore(), Options{NoiseStrategy: humanize.StrategyGaussian}, nil)
}

func seed(v int64) *int64 {
	return &v
}

func testRequest() models.GenerationRequest {
	return models.GenerationRequest{
		Blocks: []models.ChordBlock{
			{Offset: 0, LengthBeats: 4, ChordLabel: "Cmaj7"},
			{Offset: 4, LengthBeats: 4, ChordLabel: "N.C."},
			{Offset: 8, LengthBeats: 4, ChordLabel: "Dm7(b5)"},
			{Offset: 12, LengthBeats: 4, ChordLabel: "G7alt"},
		},
		Seed: seed(42),
	}
}

func TestGenerationService_Generate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	resp, err := svc.Generate(ctx, testRequest(), "req-1")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, int64(42), resp.Seed)
	assert.Equal(t, 1, resp.RestBlocks)
	assert.Equal(t, 120, resp.Result.Tempo)
	assert.Equal(t, "4/4", resp.Result.Meter)

	require.Len(t, resp.Result.Chords, 4)
	assert.Equal(t, "Cmaj7", resp.Result.Chords[0].ChordSymbol)
	assert.True(t, resp.Result.Chords[1].Rest)
	assert.Equal(t, "Dm7b5", resp.Result.Chords[2].ChordSymbol)
	assert.Equal(t, "G7#9b13", resp.Result.Chords[3].ChordSymbol)

	require.Len(t, resp.Result.Parts, 2)
	assert.Equal(t, models.RoleMelody, resp.Result.Parts[0].Role)
	assert.Equal(t, models.RoleBass, resp.Result.Parts[1].Role)
	assert.Len(t, resp.Result.Parts[1].Events, 12)
	for _, ev := range resp.Result.Parts[1].Events {
		assert.False(t, ev.StartBeats >= 4 && ev.StartBeats < 8, "bass note in rest block at %v", ev.StartBeats)
	}

	t.Run("stored and retrievable", func(t *testing.T) {
		stored, err := svc.GetGeneration(ctx, resp.ID)
		require.NoError(t, err)
		assert.Equal(t, resp.Result, stored.Result)
		assert.Equal(t, resp.Seed, stored.Seed)
	})

	t.Run("same seed same result", func(t *testing.T) {
		again, err := svc.Generate(ctx, testRequest(), "req-2")
		require.NoError(t, err)
		assert.Equal(t, resp.Result, again.Result)
		assert.NotEqual(t, resp.ID, again.ID)
	})
}

func TestGenerationService_GenerateWithHumanize(t *testing.T) {
	svc := newTestService()
	req := testRequest()
	req.Roles = []string{models.RoleMelody}
	density := 1.0
	req.Melody.Density = &density
	req.Humanize = &models.HumanizeSettings{Template: "drum_tight"}

	resp, err := svc.Generate(context.Background(), req, "")
	require.NoError(t, err)
	require.Len(t, resp.Result.Parts, 1)

	events := resp.Result.Parts[0].Events
	require.Len(t, events, 12)
	for _, ev := range events {
		assert.True(t, ev.Velocity >= 1 && ev.Velocity <= 127)
		assert.GreaterOrEqual(t, ev.StartBeats, 0.0)
	}
}

func TestGenerationService_GenerateInvalid(t *testing.T) {
	svc := newTestService()
	negative := -0.5

	tests := []struct {
		name   string
		mutate func(r *models.GenerationRequest)
	}{
		{name: "no blocks", mutate: func(r *models.GenerationRequest) { r.Blocks = nil }},
		{name: "bad role", mutate: func(r *models.GenerationRequest) { r.Roles = []string{"kazoo"} }},
		{name: "tempo", mutate: func(r *models.GenerationRequest) { r.Tempo = 1000 }},
		{name: "negative offset", mutate: func(r *models.GenerationRequest) { r.Blocks[0].Offset = -1 }},
		{name: "density", mutate: func(r *models.GenerationRequest) { r.Melody.Density = &negative }},
		{name: "melody octave above midi", mutate: func(r *models.GenerationRequest) { r.Melody.OctaveHigh = 10 }},
		{name: "melody octave below midi", mutate: func(r *models.GenerationRequest) { r.Melody.OctaveLow = -2 }},
		{name: "bass octave at top", mutate: func(r *models.GenerationRequest) { r.Bass.Octave = 9 }},
		{name: "bass octave far above", mutate: func(r *models.GenerationRequest) { r.Bass.Octave = 12 }},
		{name: "bass octave below midi", mutate: func(r *models.GenerationRequest) { r.Bass.Octave = -2 }},
		{name: "long chord label", mutate: func(r *models.GenerationRequest) {
			r.Blocks[0].ChordLabel = "C" + strings.Repeat("add9", 20)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest()
			tt.mutate(&req)
			_, err := svc.Generate(context.Background(), req, "")
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestGenerationService_GenerateOctaveEdges(t *testing.T) {
	svc := newTestService()
	density := 1.0

	tests := []struct {
		name      string
		low, high int
		bass      int
	}{
		{name: "top octave", low: 9, high: 9, bass: 8},
		{name: "bottom octave", low: -1, high: -1, bass: -1},
		{name: "full range", low: -1, high: 9, bass: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for s := int64(0); s < 20; s++ {
				req := testRequest()
				req.Seed = seed(s)
				req.Melody.Density = &density
				req.Melody.OctaveLow = tt.low
				req.Melody.OctaveHigh = tt.high
				req.Bass.Octave = tt.bass
				req.Bass.Style = "walking"

				resp, err := svc.Generate(context.Background(), req, "")
				require.NoError(t, err)
				for _, part := range resp.Result.Parts {
					for _, ev := range part.Events {
						assert.True(t, ev.MidiNoteNumber >= 0 && ev.MidiNoteNumber <= 127,
							"%s pitch %d with seed %d", part.Role, ev.MidiNoteNumber, s)
					}
				}
			}
		})
	}
}

func TestGenerationService_GetGenerationNotFound(t *testing.T) {
	svc := newTestService()

	_, err := svc.GetGeneration(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetGeneration(context.Background(), "0b5e4c7a-3f1e-4d7b-9a51-6f2a0c9d1e23")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGenerationService_Humanize(t *testing.T) {
	svc := newTestService()
	tv := 0.1
	req := HumanizeRequest{
		Events: []models.NoteEvent{
			{MidiNoteNumber: 60, Velocity: 90, StartBeats: 0, DurationBeats: 1},
			{MidiNoteNumber: 62, Velocity: 90, StartBeats: 1, DurationBeats: 1},
		},
		Settings: models.HumanizeSettings{Template: "piano_block_chord", TimeVariation: &tv},
		Seed:     seed(7),
	}

	resp, err := svc.Humanize(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Events, 2)
	assert.Equal(t, 0.1, resp.Profile.TimeVariation)
	assert.Equal(t, 7, resp.Profile.VelocityVariation)
	for i, ev := range resp.Events {
		assert.InDelta(t, req.Events[i].StartBeats, ev.StartBeats, 0.1)
	}

	_, err = svc.Humanize(context.Background(), HumanizeRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGenerationService_Presets(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	profile := humanize.Profile{TimeVariation: 0.04, DurationPercentage: 0.1, VelocityVariation: 12, FBMScale: 0.01, FBMHurst: 0.5}

	created, err := svc.CreatePreset(ctx, "laid_back", profile)
	require.NoError(t, err)
	assert.Equal(t, "laid_back", created.Name)
	assert.False(t, created.BuiltIn)

	_, err = svc.CreatePreset(ctx, "laid_back", profile)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.CreatePreset(ctx, "drum_tight", profile)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.CreatePreset(ctx, "broken", humanize.Profile{FBMHurst: 2})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = svc.CreatePreset(ctx, " ", profile)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	got, err := svc.GetPreset(ctx, "laid_back")
	require.NoError(t, err)
	assert.Equal(t, profile, got.Profile)

	builtIn, err := svc.GetPreset(ctx, "default_subtle")
	require.NoError(t, err)
	assert.True(t, builtIn.BuiltIn)

	_, err = svc.GetPreset(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := svc.ListPresets(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(humanize.TemplateNames())+1)
	assert.Equal(t, "laid_back", all[len(all)-1].Name)

	t.Run("stored preset drives humanization", func(t *testing.T) {
		resp, err := svc.Humanize(ctx, HumanizeRequest{
			Events:   []models.NoteEvent{{MidiNoteNumber: 60, Velocity: 80, DurationBeats: 1}},
			Settings: models.HumanizeSettings{Template: "laid_back"},
			Seed:     seed(1),
		})
		require.NoError(t, err)
		assert.Equal(t, profile, resp.Profile)
	})
}

func TestGenerationService_NormalizeLabels(t *testing.T) {
	svc := newTestService()

	results, err := svc.NormalizeLabels([]string{"Cmaj7(9)", "rest", "Bbmaj7"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Cmaj7add9", results[0].Label.Text())
	assert.ElementsMatch(t, []int{0, 4, 7, 11, 2}, results[0].PitchClasses)
	assert.True(t, results[1].Rest)
	assert.Empty(t, results[1].PitchClasses)
	assert.Equal(t, "B-maj7", results[2].Label.Text())

	_, err = svc.NormalizeLabels(nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.NormalizeLabels([]string{"Am", strings.Repeat("C", 65)})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGenerationService_Scale(t *testing.T) {
	svc := newTestService()

	info, err := svc.Scale("D", "dorian", 4, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, info.TonicPitchClass)
	assert.Equal(t, []int{4, 7, 11}, info.Tensions.TensionPitchClasses)
	assert.Equal(t, []int{62, 64, 65, 67, 69, 71, 72, 74}, info.Pitches)

	_, err = svc.Scale("C", "major", 5, 4)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGenerationService_ExportMIDI(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	gen, err := svc.Generate(ctx, testRequest(), "")
	require.NoError(t, err)

	data, err := svc.ExportMIDI(ctx, ExportRequest{GenerationID: gen.ID})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("MThd")))

	_, err = svc.ExportMIDI(ctx, ExportRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.ExportMIDI(ctx, ExportRequest{Parts: []models.Part{{Role: models.RoleBass}}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
