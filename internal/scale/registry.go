package scale

import (
	"strings"
	"sync"

	"github.com/Conceptual-Machines/magda-composer/internal/harmony"
	"github.com/Conceptual-Machines/magda-composer/internal/logger"
)

const (
	defaultTonic    = "C"
	referenceOctave = 4
	highestMIDINote = 127
)

// Context is a resolved scale: a tonic, a mode and the mode's pitch classes
type Context struct {
	Tonic           string `json:"tonic"`
	TonicPitchClass int    `json:"tonic_pitch_class"`
	Mode            Mode   `json:"mode"`
	PitchClasses    []int  `json:"pitch_classes"`
	TonicReference  int    `json:"tonic_reference"` // MIDI note of the tonic in octave 4
}

// PitchClassFromDegree returns the pitch class of a 1-based scale degree.
// Degrees past the scale length wrap, so 9 in a seven-note scale is degree 2.
func (c Context) PitchClassFromDegree(degree int) int {
	n := len(c.PitchClasses)
	if n == 0 {
		return c.TonicPitchClass
	}
	idx := (degree - 1) % n
	if idx < 0 {
		idx += n
	}
	return c.PitchClasses[idx]
}

// Contains reports whether a pitch class belongs to the scale
func (c Context) Contains(pc int) bool {
	pc = harmony.PitchClass(pc)
	for _, p := range c.PitchClasses {
		if p == pc {
			return true
		}
	}
	return false
}

type cacheKey struct {
	tonic string
	mode  string
}

// Cache holds resolved scales. It is safe for concurrent use; entries are
// never evicted and inserting an equal value twice is harmless.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]Context
}

// NewCache creates an empty scale cache
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]Context)}
}

func (c *Cache) load(key cacheKey) (Context, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ctx, ok := c.entries[key]
	return ctx, ok
}

func (c *Cache) store(key cacheKey, ctx Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = ctx
}

// Len returns the number of cached scales
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Registry resolves (tonic, mode) pairs into scale contexts
type Registry struct {
	cache *Cache
}

// NewRegistry creates a registry backed by the given cache
func NewRegistry(cache *Cache) *Registry {
	if cache == nil {
		cache = NewCache()
	}
	return &Registry{cache: cache}
}

// Get resolves a scale. An unknown tonic falls back to C and an unknown mode
// falls back to major; both fallbacks are logged, never returned as errors.
func (r *Registry) Get(tonic, mode string) Context {
	key := cacheKey{tonic: capitalize(tonic, defaultTonic), mode: strings.ToLower(orDefault(mode, string(Major)))}

	if ctx, ok := r.cache.load(key); ok {
		return clone(ctx)
	}

	ctx := build(key)
	r.cache.store(key, ctx)
	return clone(ctx)
}

// Pitches returns the ascending scale pitches (MIDI) from the tonic in octaveLow
// up to and including the tonic in octaveHigh. Invalid ranges yield an empty slice.
func (r *Registry) Pitches(tonic, mode string, octaveLow, octaveHigh int) []int {
	if octaveLow > octaveHigh {
		logger.Error("Invalid octave range for scale pitches", nil, logger.Fields{
			"tonic":       tonic,
			"mode":        mode,
			"octave_low":  octaveLow,
			"octave_high": octaveHigh,
		})
		return []int{}
	}

	ctx := r.Get(tonic, mode)
	start := harmony.MIDI(ctx.TonicPitchClass, octaveLow)
	end := harmony.MIDI(ctx.TonicPitchClass, octaveHigh)
	if start < 0 || end > highestMIDINote {
		logger.Error("Scale pitch range outside MIDI range", nil, logger.Fields{
			"tonic":       tonic,
			"mode":        mode,
			"octave_low":  octaveLow,
			"octave_high": octaveHigh,
		})
		return []int{}
	}

	steps := ctx.Mode.Intervals()
	pitches := make([]int, 0, (octaveHigh-octaveLow+1)*len(steps))
	for base := start; base < end; base += 12 {
		for _, step := range steps {
			if base+step < end {
				pitches = append(pitches, base+step)
			}
		}
	}
	return append(pitches, end)
}

func build(key cacheKey) Context {
	tonicPC, err := parseTonic(key.tonic)
	tonicName := key.tonic
	if err != nil {
		logger.Warn("Unknown tonic, using C", logger.Fields{"tonic": key.tonic, "error": err.Error()})
		tonicPC = 0
		tonicName = defaultTonic
	}

	mode, ok := LookupMode(key.mode)
	if !ok {
		logger.Warn("Unknown mode, using major", logger.Fields{"tonic": tonicName, "mode": key.mode})
		mode = Major
	}

	steps := mode.Intervals()
	pcs := make([]int, len(steps))
	for i, step := range steps {
		pcs[i] = harmony.PitchClass(tonicPC + step)
	}

	logger.Debug("Built scale", logger.Fields{"tonic": tonicName, "mode": string(mode)})
	return Context{
		Tonic:           harmony.PitchClassName(tonicPC),
		TonicPitchClass: tonicPC,
		Mode:            mode,
		PitchClasses:    pcs,
		TonicReference:  harmony.MIDI(tonicPC, referenceOctave),
	}
}

func parseTonic(name string) (int, error) {
	pc, consumed, err := harmony.ParsePitchClass(name)
	if err != nil {
		return 0, err
	}
	if consumed != len(name) {
		return 0, &harmony.ParseError{Figure: name, Pos: consumed, Reason: "unexpected characters after tonic"}
	}
	return pc, nil
}

func clone(ctx Context) Context {
	pcs := make([]int, len(ctx.PitchClasses))
	copy(pcs, ctx.PitchClasses)
	ctx.PitchClasses = pcs
	return ctx
}

func capitalize(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return strings.TrimSpace(s)
}
