package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Conceptual-Machines/magda-composer/internal/humanize"
	"github.com/Conceptual-Machines/magda-composer/internal/logger"
	"github.com/Conceptual-Machines/magda-composer/internal/models"
)

// HumanizeRequest humanizes an existing event list
type HumanizeRequest struct {
	Events   []models.NoteEvent      `json:"events" binding:"required"`
	Role     string                  `json:"role,omitempty"`
	Settings models.HumanizeSettings `json:"settings"`
	Seed     *int64                  `json:"seed,omitempty"`
}

// HumanizeResponse carries the perturbed events and the profile that produced them
type HumanizeResponse struct {
	Events  []models.NoteEvent `json:"events"`
	Profile humanize.Profile   `json:"profile"`
	Seed    int64              `json:"seed"`
}

// Humanize applies a template or stored preset to the given events
func (s *GenerationService) Humanize(ctx context.Context, req HumanizeRequest) (*HumanizeResponse, error) {
	if len(req.Events) == 0 {
		return nil, fmt.Errorf("%w: events are required", ErrInvalidRequest)
	}
	for i, ev := range req.Events {
		if ev.DurationBeats <= 0 || ev.StartBeats < 0 {
			return nil, fmt.Errorf("%w: event %d needs start >= 0 and duration > 0", ErrInvalidRequest, i)
		}
	}

	seed := resolveSeed(req.Seed)
	profile := s.resolveProfile(ctx, req.Settings)
	h := humanize.NewHumanizer(newSource(seed), s.opts.NoiseStrategy, s.opts.MinNoteDuration).WithRole(req.Role)

	return &HumanizeResponse{
		Events:  h.ApplyToSequence(req.Events, profile),
		Profile: profile,
		Seed:    seed,
	}, nil
}

// resolveProfile picks a built-in template, then a stored preset, then the default
func (s *GenerationService) resolveProfile(ctx context.Context, settings models.HumanizeSettings) humanize.Profile {
	name, overrides := humanize.FromSettings(settings)
	if name == "" {
		name = s.opts.DefaultHumanizeTemplate
	}

	if base, ok := humanize.GetTemplate(name); ok {
		return base.Resolve(overrides)
	}

	preset, err := s.store.GetPreset(ctx, name)
	if err == nil {
		return humanize.FromPreset(*preset).Resolve(overrides)
	}
	if !errors.Is(err, ErrNotFound) {
		logger.Error("Failed to load humanization preset", err, logger.Fields{"template": name})
	}
	return humanize.ResolveProfile(name, overrides)
}
