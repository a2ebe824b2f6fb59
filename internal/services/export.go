package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Conceptual-Machines/magda-composer/internal/export"
	"github.com/Conceptual-Machines/magda-composer/internal/generation"
	"github.com/Conceptual-Machines/magda-composer/internal/models"
)

// ExportRequest renders parts, or a stored generation, to a MIDI file
type ExportRequest struct {
	GenerationID  string        `json:"generation_id,omitempty"`
	Parts         []models.Part `json:"parts,omitempty"`
	Tempo         int           `json:"tempo,omitempty"`
	TimeSignature string        `json:"time_signature,omitempty"`
}

// ExportMIDI returns Standard MIDI File bytes
func (s *GenerationService) ExportMIDI(ctx context.Context, req ExportRequest) ([]byte, error) {
	start := time.Now()

	parts, tempo, meter := req.Parts, req.Tempo, req.TimeSignature
	if req.GenerationID != "" {
		stored, err := s.GetGeneration(ctx, req.GenerationID)
		if err != nil {
			return nil, err
		}
		parts = stored.Result.Parts
		if tempo == 0 {
			tempo = stored.Result.Tempo
		}
		if meter == "" {
			meter = stored.Result.Meter
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: parts or generation_id is required", ErrInvalidRequest)
	}
	if tempo == 0 {
		tempo = s.opts.DefaultTempo
	}
	if tempo < 0 || tempo > maxTempo {
		return nil, fmt.Errorf("%w: tempo must be between 1 and %d", ErrInvalidRequest, maxTempo)
	}

	ts := generation.ParseTimeSignature(meter)
	data, err := export.WriteSMF(parts, tempo, export.Meter{
		Numerator:   uint8(min(ts.Numerator, 255)),
		Denominator: uint8(min(ts.Denominator, 128)),
	})
	if errors.Is(err, export.ErrNothingToExport) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err != nil {
		return nil, err
	}

	s.sentryMetrics.RecordPerformanceMetric(ctx, "export.midi", time.Since(start), map[string]interface{}{
		"parts": len(parts),
		"bytes": len(data),
	})
	return data, nil
}
