package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Conceptual-Machines/magda-composer/internal/chordlabel"
	"github.com/Conceptual-Machines/magda-composer/internal/generation"
	"github.com/Conceptual-Machines/magda-composer/internal/harmony"
	"github.com/Conceptual-Machines/magda-composer/internal/humanize"
	"github.com/Conceptual-Machines/magda-composer/internal/logger"
	"github.com/Conceptual-Machines/magda-composer/internal/metrics"
	"github.com/Conceptual-Machines/magda-composer/internal/models"
	"github.com/Conceptual-Machines/magda-composer/internal/scale"
)

const (
	defaultTonic = "C"
	defaultMode  = "major"
	maxTempo     = 400
	maxBlocks    = 512

	// second PCG word so a seed alone fixes the stream
	seedStream = 0x9e3779b97f4a7c15
)

var defaultRoles = []string{models.RoleMelody, models.RoleBass}

// Options configures generation defaults
type Options struct {
	NoiseStrategy           humanize.Strategy
	DefaultHumanizeTemplate string
	DefaultTempo            int
	MinNoteDuration         float64
}

// GenerationService runs the composer pipeline and persists the results
type GenerationService struct {
	store         Store
	parser        harmony.Parser
	normalizer    *chordlabel.Normalizer
	scales        *scale.Registry
	opts          Options
	sentryMetrics *metrics.SentryMetrics
	cloudwatch    *metrics.Client
}

// GenerationResponse is a completed generation run
type GenerationResponse struct {
	ID         string                  `json:"id"`
	Seed       int64                   `json:"seed"`
	RestBlocks int                     `json:"rest_blocks"`
	CreatedAt  time.Time               `json:"created_at"`
	Result     models.GenerationResult `json:"result"`
}

// NewGenerationService wires the pipeline. cloudwatch may be nil.
func NewGenerationService(store Store, opts Options, cloudwatch *metrics.Client) *GenerationService {
	if opts.DefaultTempo <= 0 {
		opts.DefaultTempo = 120
	}
	if opts.MinNoteDuration <= 0 {
		opts.MinNoteDuration = generation.MinNoteDuration
	}
	if opts.NoiseStrategy == "" {
		opts.NoiseStrategy = humanize.StrategySpectral
	}
	if opts.DefaultHumanizeTemplate == "" {
		opts.DefaultHumanizeTemplate = humanize.DefaultTemplate
	}

	parser := harmony.NewParser()
	return &GenerationService{
		store:         store,
		parser:        parser,
		normalizer:    chordlabel.NewNormalizer(parser),
		scales:        scale.NewRegistry(scale.NewCache()),
		opts:          opts,
		sentryMetrics: metrics.NewSentryMetrics(),
		cloudwatch:    cloudwatch,
	}
}

// Generate composes every requested role over the chord timeline, humanizes
// the parts when asked and stores the run
func (s *GenerationService) Generate(ctx context.Context, req models.GenerationRequest, requestID string) (*GenerationResponse, error) {
	start := time.Now()

	if err := validateGenerationRequest(req); err != nil {
		return nil, err
	}

	seed := resolveSeed(req.Seed)
	src := newSource(seed)

	tonic := orDefault(req.Tonic, defaultTonic)
	mode := orDefault(req.Mode, defaultMode)
	tempo := req.Tempo
	if tempo == 0 {
		tempo = s.opts.DefaultTempo
	}
	meter := generation.ParseTimeSignature(req.TimeSignature)

	composer := generation.NewComposer(s.normalizer, s.parser, s.scales, src, s.opts.MinNoteDuration)
	resolved := composer.Resolve(req.Blocks, tonic, mode)

	var profile *humanize.Profile
	if req.Humanize != nil {
		p := s.resolveProfile(ctx, *req.Humanize)
		profile = &p
	}
	humanizer := humanize.NewHumanizer(src, s.opts.NoiseStrategy, s.opts.MinNoteDuration)

	roles := req.Roles
	if len(roles) == 0 {
		roles = defaultRoles
	}

	result := models.GenerationResult{
		Chords: composer.ChordEvents(resolved),
		Tempo:  tempo,
		Meter:  meter.String(),
	}
	eventCount := 0
	for _, role := range roles {
		var events []models.NoteEvent
		switch role {
		case models.RoleMelody:
			events = composer.ComposeMelody(resolved, req.Melody)
		case models.RoleBass:
			events = composer.ComposeBass(resolved, req.Bass)
		}
		if profile != nil {
			events = humanizer.WithRole(role).ApplyToSequence(events, *profile)
		}
		if events == nil {
			events = []models.NoteEvent{}
		}
		eventCount += len(events)
		result.Parts = append(result.Parts, models.Part{Role: role, Events: events})
	}

	restBlocks := 0
	for _, rb := range resolved {
		if rb.Label.IsRest() {
			restBlocks++
		}
	}

	duration := time.Since(start)
	record, err := s.persist(ctx, req, result, requestID, seed, restBlocks, eventCount, duration)

	stats := metrics.GenerationStats{
		Duration:   duration,
		Blocks:     len(req.Blocks),
		RestBlocks: restBlocks,
		Events:     eventCount,
		Success:    err == nil,
	}
	s.sentryMetrics.RecordGeneration(ctx, stats)
	s.cloudwatch.RecordGeneration(stats)

	if err != nil {
		logger.Error("Failed to store generation", err, logger.Fields{"request_id": requestID, "seed": seed})
		return nil, err
	}

	logger.LogGenerationRequest(ctx, strings.Join(roles, ","), duration, eventCount, logger.Fields{
		"request_id":  requestID,
		"generation":  record.PublicID,
		"seed":        seed,
		"blocks":      len(req.Blocks),
		"rest_blocks": restBlocks,
	})

	return &GenerationResponse{
		ID:         record.PublicID,
		Seed:       seed,
		RestBlocks: restBlocks,
		CreatedAt:  record.CreatedAt,
		Result:     result,
	}, nil
}

// Ping checks that the backing store is reachable
func (s *GenerationService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// GetGeneration loads a stored run by its public ID
func (s *GenerationService) GetGeneration(ctx context.Context, id string) (*GenerationResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("generation id %q: %w", id, ErrNotFound)
	}

	record, err := s.store.GetGeneration(ctx, id)
	if err != nil {
		return nil, err
	}

	var result models.GenerationResult
	if err := json.Unmarshal([]byte(record.Result), &result); err != nil {
		return nil, fmt.Errorf("failed to decode generation %s: %w", id, err)
	}
	return &GenerationResponse{
		ID:         record.PublicID,
		Seed:       record.Seed,
		RestBlocks: record.RestBlocks,
		CreatedAt:  record.CreatedAt,
		Result:     result,
	}, nil
}

func (s *GenerationService) persist(
	ctx context.Context,
	req models.GenerationRequest,
	result models.GenerationResult,
	requestID string,
	seed int64,
	restBlocks, eventCount int,
	duration time.Duration,
) (*models.Generation, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	record := &models.Generation{
		PublicID:   uuid.New().String(),
		RequestID:  requestID,
		Seed:       seed,
		BlockCount: len(req.Blocks),
		EventCount: eventCount,
		RestBlocks: restBlocks,
		Request:    string(reqJSON),
		Result:     string(resultJSON),
		DurationMS: int(duration.Milliseconds()),
	}
	if err := s.store.SaveGeneration(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func validateGenerationRequest(req models.GenerationRequest) error {
	if len(req.Blocks) == 0 {
		return fmt.Errorf("%w: at least one block is required", ErrInvalidRequest)
	}
	if len(req.Blocks) > maxBlocks {
		return fmt.Errorf("%w: at most %d blocks are allowed", ErrInvalidRequest, maxBlocks)
	}
	if req.Tempo < 0 || req.Tempo > maxTempo {
		return fmt.Errorf("%w: tempo must be between 1 and %d", ErrInvalidRequest, maxTempo)
	}
	for _, role := range req.Roles {
		if !models.IsGeneratedRole(role) {
			return fmt.Errorf("%w: unsupported role %q", ErrInvalidRequest, role)
		}
	}
	for i, blk := range req.Blocks {
		if blk.Offset < 0 || blk.LengthBeats < 0 {
			return fmt.Errorf("%w: block %d has a negative offset or length", ErrInvalidRequest, i)
		}
		if len(blk.ChordLabel) > chordlabel.MaxLabelLength {
			return fmt.Errorf("%w: block %d chord label exceeds %d characters", ErrInvalidRequest, i, chordlabel.MaxLabelLength)
		}
	}
	for _, oct := range []int{req.Melody.OctaveLow, req.Melody.OctaveHigh} {
		if oct < harmony.MinOctave || oct > harmony.MaxOctave {
			return fmt.Errorf("%w: melody octaves must be between %d and %d", ErrInvalidRequest, harmony.MinOctave, harmony.MaxOctave)
		}
	}
	// the bass fifth and walking tones sit above the root, so the top octave is excluded
	if req.Bass.Octave < harmony.MinOctave || req.Bass.Octave >= harmony.MaxOctave {
		return fmt.Errorf("%w: bass octave must be between %d and %d", ErrInvalidRequest, harmony.MinOctave, harmony.MaxOctave-1)
	}
	if req.Melody.Density != nil && (*req.Melody.Density < 0 || *req.Melody.Density > 1) {
		return fmt.Errorf("%w: melody density must be in [0, 1]", ErrInvalidRequest)
	}
	return nil
}

func resolveSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return time.Now().UnixNano()
}

func newSource(seed int64) rand.Source {
	return rand.NewPCG(uint64(seed), seedStream)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
