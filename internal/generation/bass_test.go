package generation

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/magda-composer/internal/harmony"
	"github.com/Conceptual-Machines/magda-composer/internal/scale"
)

func TestSelectBassStyle(t *testing.T) {
	tests := []struct {
		explicit  string
		intensity string
		expected  BassStyle
	}{
		{explicit: "walking", intensity: "low", expected: BassWalking},
		{explicit: "root_fifth", intensity: "high", expected: BassRootFifth},
		{explicit: "funky", intensity: "high", expected: BassRootOnly},
		{intensity: "low", expected: BassRootOnly},
		{intensity: "Medium_Low", expected: BassRootOnly},
		{intensity: "medium", expected: BassRootFifth},
		{intensity: "", expected: BassRootFifth},
		{intensity: "high", expected: BassWalking},
		{intensity: "very_high", expected: BassWalking},
	}

	for _, tt := range tests {
		t.Run(tt.explicit+"/"+tt.intensity, func(t *testing.T) {
			assert.Equal(t, tt.expected, SelectBassStyle(tt.explicit, tt.intensity))
		})
	}
}

func TestBassLine_Measure(t *testing.T) {
	reg := scale.NewRegistry(scale.NewCache())
	cMajor := reg.Get("C", "major")
	b := NewBassLine(rand.NewPCG(1, 2))

	t.Run("root only", func(t *testing.T) {
		got := b.Measure(BassRootOnly, mustParse(t, "Cmaj7"), nil, cMajor, DefaultBassOctave)
		assert.Equal(t, []int{36, 36, 36, 36}, got)
	})

	t.Run("root fifth", func(t *testing.T) {
		got := b.Measure(BassRootFifth, mustParse(t, "C"), nil, cMajor, DefaultBassOctave)
		assert.Equal(t, []int{36, 43, 36, 43}, got)
	})

	t.Run("root fifth without a fifth uses the octave", func(t *testing.T) {
		got := b.Measure(BassRootFifth, mustParse(t, "C7omit5"), nil, cMajor, DefaultBassOctave)
		assert.Equal(t, []int{36, 48, 36, 48}, got)
	})

	t.Run("unknown style holds the root", func(t *testing.T) {
		got := b.Measure(BassStyle("disco"), mustParse(t, "A-"), nil, cMajor, 1)
		assert.Equal(t, []int{32, 32, 32, 32}, got)
	})

	t.Run("top octave folds back into midi", func(t *testing.T) {
		tests := []struct {
			name  string
			style BassStyle
			now   string
			next  string
		}{
			{name: "root only B", style: BassRootOnly, now: "B", next: "B"},
			{name: "root fifth B", style: BassRootFifth, now: "B", next: "E"},
			{name: "octave instead of fifth", style: BassRootFifth, now: "C7omit5", next: "C"},
			{name: "walking B to E", style: BassWalking, now: "B", next: "E"},
			{name: "walking A to B", style: BassWalking, now: "A", next: "B"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				for i := 0; i < 20; i++ {
					for _, p := range b.Measure(tt.style, mustParse(t, tt.now), mustParse(t, tt.next), cMajor, harmony.MaxOctave) {
						assert.True(t, harmony.ValidMIDI(p), "pitch %d", p)
					}
				}
			})
		}
	})

	t.Run("walking toward the next root", func(t *testing.T) {
		now := mustParse(t, "C")
		next := mustParse(t, "G")
		for i := 0; i < 20; i++ {
			got := b.Measure(BassWalking, now, next, cMajor, DefaultBassOctave)
			require.Len(t, got, 4)
			assert.Equal(t, 36, got[0])
			// E walks up to F# (outside C major) so it holds; G steps down to F
			switch got[1] {
			case 40:
				assert.Equal(t, []int{40, 41}, got[2:])
			case 43:
				assert.Equal(t, []int{41, 42}, got[2:])
			default:
				t.Fatalf("beat 2 %d is not a chord tone", got[1])
			}
		}
	})
}
