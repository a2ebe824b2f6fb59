package humanize

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Conceptual-Machines/magda-composer/internal/logger"
	"github.com/Conceptual-Machines/magda-composer/internal/models"
)

// DefaultTemplate is used when no template, or an unknown one, is requested
const DefaultTemplate = "default_subtle"

// Fractional noise defaults for templates that do not set them
const (
	DefaultFBMScale = 0.01
	DefaultFBMHurst = 0.6
)

// ErrInvalidProfile is returned by Profile.Validate
var ErrInvalidProfile = errors.New("invalid humanization profile")

// Profile holds the randomness applied to timing, length and velocity.
// TimeVariation and FBMScale are in beats, DurationPercentage is a fraction.
type Profile struct {
	TimeVariation      float64 `json:"time_variation"`
	DurationPercentage float64 `json:"duration_percentage"`
	VelocityVariation  int     `json:"velocity_variation"`
	UseFractionalNoise bool    `json:"use_fbm_time"`
	FBMScale           float64 `json:"fbm_time_scale"`
	FBMHurst           float64 `json:"fbm_hurst"`
}

// Overrides replaces individual profile fields; nil fields keep the template value
type Overrides struct {
	TimeVariation      *float64
	DurationPercentage *float64
	VelocityVariation  *int
	UseFractionalNoise *bool
	FBMScale           *float64
	FBMHurst           *float64
}

var templates = map[string]Profile{
	"default_subtle":          {TimeVariation: 0.01, DurationPercentage: 0.03, VelocityVariation: 5},
	"piano_gentle_arpeggio":   {TimeVariation: 0.008, DurationPercentage: 0.02, VelocityVariation: 4, UseFractionalNoise: true, FBMScale: 0.005, FBMHurst: 0.7},
	"piano_block_chord":       {TimeVariation: 0.015, DurationPercentage: 0.04, VelocityVariation: 7},
	"drum_tight":              {TimeVariation: 0.005, DurationPercentage: 0.01, VelocityVariation: 3},
	"drum_loose_fbm":          {TimeVariation: 0.02, DurationPercentage: 0.05, VelocityVariation: 8, UseFractionalNoise: true, FBMScale: 0.01, FBMHurst: 0.6},
	"guitar_strum_loose":      {TimeVariation: 0.025, DurationPercentage: 0.06, VelocityVariation: 10, UseFractionalNoise: true, FBMScale: 0.015},
	"guitar_arpeggio_precise": {TimeVariation: 0.008, DurationPercentage: 0.02, VelocityVariation: 4},
	"vocal_ballad_smooth":     {TimeVariation: 0.025, DurationPercentage: 0.05, VelocityVariation: 4, UseFractionalNoise: true, FBMScale: 0.01, FBMHurst: 0.7},
	"vocal_pop_energetic":     {TimeVariation: 0.015, DurationPercentage: 0.02, VelocityVariation: 8, UseFractionalNoise: true, FBMScale: 0.008},
}

// GetTemplate returns a named template with noise defaults filled in
func GetTemplate(name string) (Profile, bool) {
	p, ok := templates[name]
	if !ok {
		return Profile{}, false
	}
	return p.withDefaults(), true
}

// TemplateNames lists the registered templates in alphabetical order
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveProfile looks up a template (DefaultTemplate when unknown) and applies overrides.
// Out-of-range override values are replaced by safe ones.
func ResolveProfile(name string, o Overrides) Profile {
	if name == "" {
		name = DefaultTemplate
	}
	p, ok := GetTemplate(name)
	if !ok {
		logger.Warn("Unknown humanization template, using default", logger.Fields{
			"template": name,
			"default":  DefaultTemplate,
		})
		p, _ = GetTemplate(DefaultTemplate)
	}
	return p.Resolve(o)
}

// Resolve applies overrides and clamps out-of-range values
func (p Profile) Resolve(o Overrides) Profile {
	return p.Apply(o).sanitized()
}

// Apply returns a copy of p with the non-nil overrides set
func (p Profile) Apply(o Overrides) Profile {
	if o.TimeVariation != nil {
		p.TimeVariation = *o.TimeVariation
	}
	if o.DurationPercentage != nil {
		p.DurationPercentage = *o.DurationPercentage
	}
	if o.VelocityVariation != nil {
		p.VelocityVariation = *o.VelocityVariation
	}
	if o.UseFractionalNoise != nil {
		p.UseFractionalNoise = *o.UseFractionalNoise
	}
	if o.FBMScale != nil {
		p.FBMScale = *o.FBMScale
	}
	if o.FBMHurst != nil {
		p.FBMHurst = *o.FBMHurst
	}
	return p
}

// Validate checks value ranges
func (p Profile) Validate() error {
	switch {
	case p.TimeVariation < 0:
		return fmt.Errorf("%w: time_variation must be >= 0", ErrInvalidProfile)
	case p.DurationPercentage < 0 || p.DurationPercentage >= 1:
		return fmt.Errorf("%w: duration_percentage must be in [0, 1)", ErrInvalidProfile)
	case p.VelocityVariation < 0 || p.VelocityVariation > 127:
		return fmt.Errorf("%w: velocity_variation must be in [0, 127]", ErrInvalidProfile)
	case p.FBMScale < 0:
		return fmt.Errorf("%w: fbm_time_scale must be >= 0", ErrInvalidProfile)
	case p.FBMHurst <= 0 || p.FBMHurst >= 1:
		return fmt.Errorf("%w: fbm_hurst must be in (0, 1)", ErrInvalidProfile)
	}
	return nil
}

func (p Profile) withDefaults() Profile {
	if p.FBMScale == 0 {
		p.FBMScale = DefaultFBMScale
	}
	if p.FBMHurst == 0 {
		p.FBMHurst = DefaultFBMHurst
	}
	return p
}

func (p Profile) sanitized() Profile {
	err := p.Validate()
	if err == nil {
		return p
	}
	logger.Warn("Humanization profile out of range, clamping", logger.Fields{"error": err.Error()})

	p.TimeVariation = max(0, p.TimeVariation)
	p.DurationPercentage = min(max(0, p.DurationPercentage), 0.99)
	p.VelocityVariation = min(max(0, p.VelocityVariation), 127)
	p.FBMScale = max(0, p.FBMScale)
	if p.FBMHurst <= 0 || p.FBMHurst >= 1 {
		p.FBMHurst = DefaultFBMHurst
	}
	return p
}

// FromSettings splits request settings into a template name and overrides
func FromSettings(s models.HumanizeSettings) (string, Overrides) {
	return s.Template, Overrides{
		TimeVariation:      s.TimeVariation,
		DurationPercentage: s.DurationPercent,
		VelocityVariation:  s.VelocityVariation,
		UseFractionalNoise: s.UseFractionalNoise,
		FBMScale:           s.FBMScale,
		FBMHurst:           s.FBMHurst,
	}
}

// FromPreset converts a stored preset into a profile
func FromPreset(preset models.HumanizationPreset) Profile {
	return Profile{
		TimeVariation:      preset.TimeVariation,
		DurationPercentage: preset.DurationPercentage,
		VelocityVariation:  preset.VelocityVariation,
		UseFractionalNoise: preset.UseFractionalNoise,
		FBMScale:           preset.FBMScale,
		FBMHurst:           preset.FBMHurst,
	}.withDefaults()
}
