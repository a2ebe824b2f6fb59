package chordlabel

import (
	"strings"

	"github.com/Conceptual-Machines/magda-composer/internal/harmony"
	"github.com/Conceptual-Machines/magda-composer/internal/logger"
)

const (
	// MaxLabelLength is the longest raw label the normalizer will rewrite
	MaxLabelLength = 64

	// a rewrite can expose input for an earlier pass (such as "C 11" -> "C11"),
	// so rewriting repeats until the label stops changing
	maxRewriteRounds = 4
)

var restKeywords = map[string]bool{
	"rest":    true,
	"r":       true,
	"nc":      true,
	"n.c.":    true,
	"silence": true,
	"-":       true,
}

// Normalizer converts free-form chord text into canonical labels.
// Normalize never fails: anything that cannot be made parseable becomes Rest.
type Normalizer struct {
	parser harmony.Parser
	passes []Pass
}

// NewNormalizer creates a normalizer that validates its output with the given parser
func NewNormalizer(parser harmony.Parser) *Normalizer {
	if parser == nil {
		parser = harmony.NewParser()
	}
	return &Normalizer{
		parser: parser,
		passes: DefaultPasses(),
	}
}

// Passes returns the rewrite pipeline in execution order
func (n *Normalizer) Passes() []Pass {
	return n.passes
}

// Rewrite runs every rewrite pass without validating the result
func (n *Normalizer) Rewrite(raw string) string {
	s := strings.TrimSpace(raw)
	for _, p := range n.passes {
		s = p.Apply(s)
	}
	return s
}

// rewriteStable applies Rewrite until it reaches a fixed point. It reports false
// when the label is still changing after maxRewriteRounds.
func (n *Normalizer) rewriteStable(s string) (string, bool) {
	for i := 0; i < maxRewriteRounds; i++ {
		next := n.Rewrite(s)
		if next == s {
			return s, true
		}
		s = next
	}
	return s, false
}

// Normalize returns the canonical form of raw, or Rest
func (n *Normalizer) Normalize(raw string) Label {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || restKeywords[strings.ToLower(trimmed)] {
		logger.Debug("Chord label is a rest", logger.Fields{"label": raw})
		return Rest
	}

	if len(trimmed) > MaxLabelLength {
		logger.Warn("Chord label too long, using rest", logger.Fields{"length": len(trimmed)})
		return Rest
	}

	canonical, stable := n.rewriteStable(trimmed)
	if !stable {
		logger.Warn("Chord label rewrite does not settle, using rest", logger.Fields{"label": raw, "canonical": canonical})
		return Rest
	}
	if len(canonical) > MaxLabelLength {
		logger.Warn("Normalized chord label too long, using rest", logger.Fields{"label": raw, "length": len(canonical)})
		return Rest
	}
	if canonical == "" {
		logger.Info("Chord label rewrote to nothing, using rest", logger.Fields{"label": raw})
		return Rest
	}

	if canonical != raw {
		logger.Debug("Chord label normalized", logger.Fields{"label": raw, "canonical": canonical})
	}

	chord, err := n.parser.Parse(canonical)
	if err != nil {
		logger.Warn("Normalized chord label does not parse, using rest", logger.Fields{
			"label":     raw,
			"canonical": canonical,
			"error":     err.Error(),
		})
		return Rest
	}
	if chord == nil || len(chord.PitchClasses()) == 0 {
		logger.Warn("Normalized chord label has no pitches, using rest", logger.Fields{
			"label":     raw,
			"canonical": canonical,
		})
		return Rest
	}
	if canonical[0] < 'A' || canonical[0] > 'G' {
		logger.Warn("Normalized chord label does not start with a note name, using rest", logger.Fields{
			"label":     raw,
			"canonical": canonical,
		})
		return Rest
	}

	return Canonical(canonical)
}

// NormalizeAll normalizes labels in order
func (n *Normalizer) NormalizeAll(raws []string) []Label {
	out := make([]Label, len(raws))
	for i, raw := range raws {
		out[i] = n.Normalize(raw)
	}
	return out
}
