package chordlabel

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/dlclark/regexp2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/magda-composer/internal/harmony"
)

func TestNormalize_Canonical(t *testing.T) {
	n := NewNormalizer(harmony.NewParser())

	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "already canonical", raw: "Cmaj7", expected: "Cmaj7"},
		{name: "lowercase root", raw: "cm7", expected: "Cm7"},
		{name: "word minor", raw: "C minor", expected: "Cm"},
		{name: "word major", raw: "C major", expected: "Cmaj"},
		{name: "ascii flat root", raw: "Bbmaj7", expected: "B-maj7"},
		{name: "flat root and bass", raw: "Eb/Bb", expected: "E-/B-"},
		{name: "bare sus", raw: "Csus", expected: "Csus4"},
		{name: "seventh sus", raw: "C7sus", expected: "C7sus4"},
		{name: "sus2 preserved", raw: "Dsus2", expected: "Dsus2"},
		{name: "alt", raw: "G7alt", expected: "G7#9b13"},
		{name: "paren tension", raw: "Cmaj7(9)", expected: "Cmaj7add9"},
		{name: "paren alteration", raw: "Dm7(b5)", expected: "Dm7b5"},
		{name: "paren list", raw: "C7(#9,b13)", expected: "C7#9b13"},
		{name: "unclosed paren", raw: "Cmaj7(9", expected: "Cmaj7add9"},
		{name: "empty unclosed paren", raw: "C(", expected: "C"},
		{name: "stray close paren", raw: "C)", expected: "C"},
		{name: "min", raw: "Dmin7", expected: "Dm7"},
		{name: "minor7", raw: "Dminor7", expected: "Dm7"},
		{name: "half diminished words", raw: "C half-dim", expected: "Cm7b5"},
		{name: "half diminished glyph", raw: "Cø7", expected: "Cm7b5"},
		{name: "dominant", raw: "Cdominant7", expected: "C7"},
		{name: "diminished7", raw: "Cdiminished7", expected: "Cdim7"},
		{name: "augmented", raw: "Caugmented", expected: "Caug"},
		{name: "major7 word", raw: "Cmajor7", expected: "Cmaj7"},
		{name: "maj9 with sharp", raw: "Cmaj9(#11)", expected: "Cmaj7#11add9"},
		{name: "bare two digit number", raw: "C13", expected: "Cadd13"},
		{name: "flat thirteen keeps its accidental", raw: "C7b13", expected: "C7b13"},
		{name: "sharp eleven keeps its accidental", raw: "C7#11", expected: "C7#11"},
		{name: "minor eleven", raw: "Cm11", expected: "Cmadd11"},
		{name: "duplicate add", raw: "Cadd9add9", expected: "Cadd9"},
		{name: "surrounding whitespace", raw: "  F#m7  ", expected: "F#m7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.raw)
			require.False(t, got.IsRest(), "expected %q to normalize to a chord", tt.raw)
			assert.Equal(t, tt.expected, got.Text())
		})
	}
}

func TestNormalize_Rest(t *testing.T) {
	n := NewNormalizer(harmony.NewParser())

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "whitespace", raw: " \t\n"},
		{name: "Rest", raw: "Rest"},
		{name: "r", raw: "R"},
		{name: "n.c.", raw: "n.c."},
		{name: "NC", raw: "NC"},
		{name: "silence", raw: "Silence"},
		{name: "dash", raw: "-"},
		{name: "not a chord", raw: "xyz"},
		{name: "only parens", raw: "(("},
		{name: "no pitches left", raw: "Comitrootomit3omit5"},
		{name: "sus then alt", raw: "Gsus alt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, n.Normalize(tt.raw).IsRest())
		})
	}
}

func TestNormalize_Properties(t *testing.T) {
	n := NewNormalizer(nil)

	t.Run("rest keywords agree", func(t *testing.T) {
		assert.Equal(t, Rest, n.Normalize("Rest"))
		assert.Equal(t, n.Normalize("Rest"), n.Normalize("n.c."))
		assert.Equal(t, n.Normalize("n.c."), n.Normalize(""))
	})

	t.Run("ascii and canonical flats agree", func(t *testing.T) {
		assert.Equal(t, n.Normalize("B-maj7"), n.Normalize("Bbmaj7"))
	})

	t.Run("sus completes to sus4", func(t *testing.T) {
		assert.Equal(t, n.Normalize("Csus4"), n.Normalize("Csus"))
	})

	t.Run("parenthesized ninth", func(t *testing.T) {
		label := n.Normalize("Cmaj7(9)")
		require.Equal(t, "Cmaj7add9", label.Text())

		chord, err := harmony.Parse(label.Text())
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{0, 4, 7, 11, 2}, chord.PitchClasses())
	})

	t.Run("sus then alt regression", func(t *testing.T) {
		// sus completion runs first, so "alt" is no longer attached to a root
		assert.Equal(t, "Gsus4alt", n.Rewrite("Gsus alt"))
		assert.True(t, n.Normalize("Gsus alt").IsRest())
	})
}

func TestNormalize_Idempotent(t *testing.T) {
	n := NewNormalizer(harmony.NewParser())

	inputs := []string{
		"Cmaj7(9)", "Bbmaj7", "Csus", "C minor", "Dm7(b5)", "C7(#9,b13)", "G7alt",
		"Cmaj9(#11)", "C13", "Cm11", "F#m7", "Ebm", "Cmaj7(9", "Dmin7", "C half-dim",
		"Cdominant7", "Eb/Bb", "Gsus alt", "", "xyz", "((", "Comitrootomit3omit5",
	}

	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			first := n.Normalize(raw)
			second := n.Normalize(first.String())
			assert.Equal(t, first, second)
		})
	}
}

func TestNormalize_Total(t *testing.T) {
	n := NewNormalizer(harmony.NewParser())

	inputs := []string{
		"(((", ")))", "C(((9", "#", "/", "ø", "add9", "13th", "C/", "Cmaj7/", "C(9,(11",
		"C(9)(11)(13)(#5)(b9)(omit5)", "sus", "alt", "Bbb", "H7", "C#####", "Cmaj7add",
	}

	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			var label Label
			assert.NotPanics(t, func() { label = n.Normalize(raw) })
			if !label.IsRest() {
				first := label.Text()[0]
				assert.True(t, first >= 'A' && first <= 'G', "label %q", label.Text())
				_, err := harmony.Parse(label.Text())
				assert.NoError(t, err)
			}
		})
	}
}

type stubParser struct {
	chord *harmony.Chord
	err   error
}

func (p stubParser) Parse(string) (*harmony.Chord, error) {
	return p.chord, p.err
}

func TestNormalize_ValidatesWithParser(t *testing.T) {
	t.Run("parse error", func(t *testing.T) {
		n := NewNormalizer(stubParser{err: errors.New("nope")})
		assert.True(t, n.Normalize("Cmaj7").IsRest())
	})

	t.Run("no pitches", func(t *testing.T) {
		n := NewNormalizer(stubParser{chord: &harmony.Chord{}})
		assert.True(t, n.Normalize("Cmaj7").IsRest())
	})

	t.Run("accepted", func(t *testing.T) {
		n := NewNormalizer(stubParser{chord: &harmony.Chord{Intervals: []int{0}}})
		assert.Equal(t, "Cmaj7", n.Normalize("Cmaj7").Text())
	})
}

func TestNormalizeAll(t *testing.T) {
	n := NewNormalizer(harmony.NewParser())
	labels := n.NormalizeAll([]string{"Am", "rest", "Bbmaj7"})
	require.Len(t, labels, 3)
	assert.Equal(t, "Am", labels[0].Text())
	assert.True(t, labels[1].IsRest())
	assert.Equal(t, "B-maj7", labels[2].Text())
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Rest", Rest.String())
	assert.Equal(t, "", Rest.Text())
	assert.Equal(t, "Am7", Canonical("Am7").String())

	data, err := json.Marshal(struct {
		A Label `json:"a"`
		B Label `json:"b"`
	}{A: Canonical("Am7"), B: Rest})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"Am7","b":null}`, string(data))
}

func TestLabel_UnmarshalJSON(t *testing.T) {
	var decoded struct {
		A Label `json:"a"`
		B Label `json:"b"`
		C Label `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"Am7","b":null,"c":"Rest"}`), &decoded))
	assert.Equal(t, Canonical("Am7"), decoded.A)
	assert.True(t, decoded.B.IsRest())
	assert.True(t, decoded.C.IsRest())

	var bad Label
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestNormalize_SettlesSeparatedTokens(t *testing.T) {
	n := NewNormalizer(harmony.NewParser())

	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "space before number", raw: "C 11", expected: "Cadd11"},
		{name: "space before flat", raw: "B b", expected: "B-"},
		{name: "comma before number", raw: "G,11", expected: "Gadd11"},
		{name: "space before sharp", raw: "F #11", expected: "F#add11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := n.Normalize(tt.raw)
			require.False(t, first.IsRest())
			assert.Equal(t, tt.expected, first.Text())
			assert.Equal(t, first, n.Normalize(first.String()))
		})
	}
}

func TestNormalize_IdempotentGenerated(t *testing.T) {
	n := NewNormalizer(harmony.NewParser())
	tokens := []string{
		"C", "D", "E", "F", "G", "A", "B", "c", "b", "#", "-", "m", "maj", "min", "7", "9", "11", "13",
		"sus", "sus2", "add", "alt", "dim", "aug", "ø", "(", ")", ",", " ", "/", "omit5", "b5", "#9",
	}
	rng := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 5000; i++ {
		var sb strings.Builder
		count := 1 + rng.IntN(6)
		for j := 0; j < count; j++ {
			sb.WriteString(tokens[rng.IntN(len(tokens))])
		}
		raw := sb.String()

		first := n.Normalize(raw)
		second := n.Normalize(first.String())
		if !assert.Equal(t, first, second, "raw %q", raw) {
			return
		}
	}
}

func TestNormalize_LabelLength(t *testing.T) {
	n := NewNormalizer(harmony.NewParser())

	tests := []struct {
		name   string
		raw    string
		isRest bool
	}{
		{name: "at limit", raw: "C" + strings.Repeat(" ", MaxLabelLength-1), isRest: false},
		{name: "over limit", raw: "Cmaj7" + strings.Repeat("add9", MaxLabelLength), isRest: true},
		{name: "long whitespace run", raw: "C" + strings.Repeat(" ", 4*MaxLabelLength) + "m", isRest: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isRest, n.Normalize(tt.raw).IsRest())
		})
	}
}

func TestCompile_SetsMatchTimeout(t *testing.T) {
	re := compile(`(add\d+)(?=.*\1)`, regexp2.None)
	assert.Equal(t, matchTimeout, re.MatchTimeout)
}
