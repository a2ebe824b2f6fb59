package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/magda-composer/internal/humanize"
	"github.com/Conceptual-Machines/magda-composer/internal/logger"
	"github.com/Conceptual-Machines/magda-composer/internal/models"
)

const maxPresetNameLength = 64

// PresetView is a built-in template or a stored preset
type PresetView struct {
	Name    string           `json:"name"`
	BuiltIn bool             `json:"built_in"`
	Profile humanize.Profile `json:"profile"`
}

// CreatePreset stores a named humanization profile. Built-in template names are reserved.
func (s *GenerationService) CreatePreset(ctx context.Context, name string, profile humanize.Profile) (*PresetView, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxPresetNameLength {
		return nil, fmt.Errorf("%w: preset name must be 1-%d characters", ErrInvalidRequest, maxPresetNameLength)
	}
	if _, ok := humanize.GetTemplate(name); ok {
		return nil, fmt.Errorf("preset %s is a built-in template: %w", name, ErrConflict)
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	preset := &models.HumanizationPreset{
		Name:               name,
		TimeVariation:      profile.TimeVariation,
		DurationPercentage: profile.DurationPercentage,
		VelocityVariation:  profile.VelocityVariation,
		UseFractionalNoise: profile.UseFractionalNoise,
		FBMScale:           profile.FBMScale,
		FBMHurst:           profile.FBMHurst,
	}
	if err := s.store.SavePreset(ctx, preset); err != nil {
		return nil, err
	}

	logger.Info("Humanization preset created", logger.Fields{"preset": name})
	return &PresetView{Name: name, Profile: humanize.FromPreset(*preset)}, nil
}

// GetPreset returns a built-in template or a stored preset by name
func (s *GenerationService) GetPreset(ctx context.Context, name string) (*PresetView, error) {
	if p, ok := humanize.GetTemplate(name); ok {
		return &PresetView{Name: name, BuiltIn: true, Profile: p}, nil
	}
	preset, err := s.store.GetPreset(ctx, name)
	if err != nil {
		return nil, err
	}
	return &PresetView{Name: preset.Name, Profile: humanize.FromPreset(*preset)}, nil
}

// ListPresets returns the built-in templates followed by stored presets
func (s *GenerationService) ListPresets(ctx context.Context) ([]PresetView, error) {
	stored, err := s.store.ListPresets(ctx)
	if err != nil {
		return nil, err
	}

	names := humanize.TemplateNames()
	views := make([]PresetView, 0, len(names)+len(stored))
	for _, name := range names {
		p, _ := humanize.GetTemplate(name)
		views = append(views, PresetView{Name: name, BuiltIn: true, Profile: p})
	}
	for _, preset := range stored {
		views = append(views, PresetView{Name: preset.Name, Profile: humanize.FromPreset(preset)})
	}
	return views, nil
}
