package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTimeSignature(t *testing.T) {
	tests := []struct {
		input    string
		expected TimeSignature
		beats    float64
	}{
		{input: "4/4", expected: CommonTime, beats: 4},
		{input: "3/4", expected: TimeSignature{Numerator: 3, Denominator: 4}, beats: 3},
		{input: " 6/8 ", expected: TimeSignature{Numerator: 6, Denominator: 8}, beats: 3},
		{input: "7/8", expected: TimeSignature{Numerator: 7, Denominator: 8}, beats: 3.5},
		{input: "2/2", expected: TimeSignature{Numerator: 2, Denominator: 2}, beats: 4},
		{input: "", expected: CommonTime, beats: 4},
		{input: "7", expected: CommonTime, beats: 4},
		{input: "4/3", expected: CommonTime, beats: 4},
		{input: "0/4", expected: CommonTime, beats: 4},
		{input: "a/b", expected: CommonTime, beats: 4},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ts := ParseTimeSignature(tt.input)
			assert.Equal(t, tt.expected, ts)
			assert.Equal(t, tt.beats, ts.BeatsPerMeasure())
		})
	}
}

func TestTimeSignature_String(t *testing.T) {
	assert.Equal(t, "6/8", TimeSignature{Numerator: 6, Denominator: 8}.String())
	assert.Equal(t, "4/4", CommonTime.String())
}
