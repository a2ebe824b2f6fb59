package harmony

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PitchClasses(t *testing.T) {
	tests := []struct {
		name     string
		figure   string
		expected []int
	}{
		{name: "C major", figure: "C", expected: []int{0, 4, 7}},
		{name: "E minor", figure: "Em", expected: []int{4, 7, 11}},
		{name: "A minor 7th", figure: "Am7", expected: []int{9, 0, 4, 7}},
		{name: "C major 7th", figure: "Cmaj7", expected: []int{0, 4, 7, 11}},
		{name: "maj7 add9", figure: "Cmaj7add9", expected: []int{0, 4, 7, 11, 2}},
		{name: "canonical flat root", figure: "B-maj7", expected: []int{10, 2, 5, 9}},
		{name: "sus4", figure: "Csus4", expected: []int{0, 5, 7}},
		{name: "sus2", figure: "Dsus2", expected: []int{2, 4, 9}},
		{name: "half diminished", figure: "Bm7b5", expected: []int{11, 2, 5, 9}},
		{name: "diminished 7th", figure: "Cdim7", expected: []int{0, 3, 6, 9}},
		{name: "augmented", figure: "Caug", expected: []int{0, 4, 8}},
		{name: "altered dominant", figure: "G7#9b13", expected: []int{7, 11, 2, 5, 10, 3}},
		{name: "power chord", figure: "E5", expected: []int{4, 11}},
		{name: "minor add11", figure: "Cmadd11", expected: []int{0, 3, 7, 5}},
		{name: "omit5", figure: "C7omit5", expected: []int{0, 4, 10}},
		{name: "slash bass outside chord", figure: "C/B-", expected: []int{10, 0, 4, 7}},
		{name: "slash bass inside chord", figure: "C/E", expected: []int{0, 4, 7}},
		{name: "sharp root", figure: "F#m", expected: []int{6, 9, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chord, err := Parse(tt.figure)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, chord.PitchClasses())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		figure string
	}{
		{name: "empty", figure: ""},
		{name: "whitespace", figure: "   "},
		{name: "lowercase root", figure: "cmaj7"},
		{name: "not a note", figure: "H7"},
		{name: "unknown modifier", figure: "Cxyz"},
		{name: "trailing alt", figure: "Gsus4alt"},
		{name: "bad bass", figure: "C/X"},
		{name: "unsupported extension", figure: "C69"},
		{name: "flat add", figure: "C7#9badd13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.figure)
			assert.Error(t, err)
		})
	}
}

func TestParse_ErrorTypes(t *testing.T) {
	_, err := Parse("")
	assert.True(t, errors.Is(err, ErrEmptyFigure))

	_, err = Parse("Cxyz")
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "Cxyz", parseErr.Figure)
	assert.Equal(t, 1, parseErr.Pos)
}

func TestChord_Pitches(t *testing.T) {
	chord, err := Parse("C")
	require.NoError(t, err)
	assert.Equal(t, []int{60, 64, 67}, chord.Pitches(4))
	assert.Equal(t, []int{48, 52, 55}, chord.Pitches(3))

	// Bass one octave below the root, prepended
	inversion, err := Parse("Em/G")
	require.NoError(t, err)
	notes := inversion.Pitches(4)
	require.Len(t, notes, 4)
	assert.Equal(t, 55, notes[0]) // G3
	assert.Equal(t, []int{64, 67, 71}, notes[1:])
}

func TestChord_ThirdAndFifth(t *testing.T) {
	minor, err := Parse("Am")
	require.NoError(t, err)
	third, ok := minor.Third()
	require.True(t, ok)
	assert.Equal(t, 0, third)
	fifth, ok := minor.Fifth()
	require.True(t, ok)
	assert.Equal(t, 4, fifth)

	power, err := Parse("A5")
	require.NoError(t, err)
	_, ok = power.Third()
	assert.False(t, ok)
}

func TestSymbolParser_ImplementsParser(t *testing.T) {
	var p Parser = NewParser()
	chord, err := p.Parse("Dm7")
	require.NoError(t, err)
	assert.Equal(t, 2, chord.Root)
}
