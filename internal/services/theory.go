package services

import (
	"fmt"

	"github.com/Conceptual-Machines/magda-composer/internal/chordlabel"
	"github.com/Conceptual-Machines/magda-composer/internal/harmony"
	"github.com/Conceptual-Machines/magda-composer/internal/scale"
)

const maxLabelsPerRequest = 256

// LabelResult is one normalized chord label
type LabelResult struct {
	Input        string           `json:"input"`
	Label        chordlabel.Label `json:"label"`
	Rest         bool             `json:"rest"`
	PitchClasses []int            `json:"pitch_classes,omitempty"`
	Notes        []string         `json:"notes,omitempty"`
}

// ScaleInfo describes a scale and its tension policy
type ScaleInfo struct {
	scale.Context
	Tensions scale.TensionSet `json:"tensions"`
	Pitches  []int            `json:"pitches"`
}

// NormalizeLabels canonicalizes raw chord labels; unusable ones become Rest
func (s *GenerationService) NormalizeLabels(labels []string) ([]LabelResult, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: labels are required", ErrInvalidRequest)
	}
	if len(labels) > maxLabelsPerRequest {
		return nil, fmt.Errorf("%w: at most %d labels are allowed", ErrInvalidRequest, maxLabelsPerRequest)
	}

	for i, label := range labels {
		if len(label) > chordlabel.MaxLabelLength {
			return nil, fmt.Errorf("%w: label %d exceeds %d characters", ErrInvalidRequest, i, chordlabel.MaxLabelLength)
		}
	}

	results := make([]LabelResult, len(labels))
	for i, raw := range s.normalizer.NormalizeAll(labels) {
		res := LabelResult{Input: labels[i], Label: raw, Rest: raw.IsRest()}
		if !raw.IsRest() {
			if chord, err := s.parser.Parse(raw.Text()); err == nil {
				res.PitchClasses = chord.PitchClasses()
				for _, pc := range res.PitchClasses {
					res.Notes = append(res.Notes, harmony.PitchClassName(pc))
				}
			}
		}
		results[i] = res
	}
	return results, nil
}

// Scale resolves a scale with its tensions and pitches between two octaves
func (s *GenerationService) Scale(tonic, mode string, octaveLow, octaveHigh int) (*ScaleInfo, error) {
	if octaveLow > octaveHigh {
		return nil, fmt.Errorf("%w: octave_low must not exceed octave_high", ErrInvalidRequest)
	}
	ctx := s.scales.Get(tonic, mode)
	return &ScaleInfo{
		Context:  ctx,
		Tensions: scale.Tensions(ctx, string(ctx.Mode)),
		Pitches:  s.scales.Pitches(tonic, mode, octaveLow, octaveHigh),
	}, nil
}
