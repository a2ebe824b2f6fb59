package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFields(t *testing.T) {
	tests := []struct {
		name     string
		fields   Fields
		expected string
	}{
		{name: "empty", fields: Fields{}, expected: ""},
		{name: "nil", fields: nil, expected: ""},
		{name: "single string", fields: Fields{"label": "Cmaj7"}, expected: "{label=Cmaj7}"},
		{
			name:     "sorted keys",
			fields:   Fields{"mode": "dorian", "count": 3, "floor": 0.125},
			expected: "{count=3, floor=0.125, mode=dorian}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFields(tt.fields))
		})
	}
}

func TestLoggingWithoutSentryClient(t *testing.T) {
	// No Sentry client is configured in tests; every call must be a plain log line.
	assert.NotPanics(t, func() {
		Info("info", Fields{"a": 1})
		Warn("warn", Fields{"b": "x"})
		Debug("debug", nil)
		Error("error", errors.New("boom"), Fields{"request_id": "r1", "role": "melody"})
		Error("error without cause", nil, nil)
	})
}
