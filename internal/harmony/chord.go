package harmony

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrEmptyFigure is returned when there is nothing to parse
var ErrEmptyFigure = errors.New("empty chord figure")

// ParseError describes where and why a chord figure could not be parsed
type ParseError struct {
	Figure string
	Pos    int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse chord %q at %d: %s", e.Figure, e.Pos, e.Reason)
}

// Parser turns a canonical chord label into a chord
type Parser interface {
	Parse(figure string) (*Chord, error)
}

// SymbolParser parses the canonical chord grammar produced by the label normalizer:
// root ("C", "F#", "B-"), quality ("m", "maj7", "dim7", "m7b5", ...), modifiers
// ("sus4", "add9", "#11", "b13", "omit5") and an optional slash bass ("/E-").
type SymbolParser struct{}

// NewParser creates a chord symbol parser
func NewParser() *SymbolParser {
	return &SymbolParser{}
}

// Parse implements Parser
func (p *SymbolParser) Parse(figure string) (*Chord, error) {
	return Parse(figure)
}

// Chord is a parsed chord symbol
type Chord struct {
	Figure    string
	Root      int   // pitch class of the root
	Bass      int   // pitch class of the bass (equals Root without a slash)
	Intervals []int // semitones above the root, ascending and unique
}

// Chord interval constants (semitones from root)
const (
	minorThird     = 3
	majorThird     = 4
	perfectFourth  = 5
	majorSecond    = 2
	dimFifth       = 6
	perfectFifth   = 7
	augFifth       = 8
	majorSixth     = 9
	minorSeventh   = 10
	majorSeventh   = 11
	dimSeventh     = 9
	majorNinth     = 14
	perfectEleven  = 17
	majorThirteen  = 21
	maxChordDegree = 13
)

// degreeSemitones maps scale degrees of the chord-symbol grammar to semitones above the root
var degreeSemitones = map[int]int{
	1: 0, 2: 2, 3: 4, 4: 5, 5: 7, 6: 9, 7: 10,
	8: 12, 9: 14, 10: 16, 11: 17, 12: 19, 13: 21,
}

// qualityPrefixes are checked in order; the first match wins
var qualityPrefixes = []struct {
	prefix    string
	intervals []int
	seventh   int // seventh used when an extension number follows
}{
	{"m7b5", []int{0, minorThird, dimFifth, minorSeventh}, minorSeventh},
	{"ø7", []int{0, minorThird, dimFifth, minorSeventh}, minorSeventh},
	{"ø", []int{0, minorThird, dimFifth, minorSeventh}, minorSeventh},
	{"maj", []int{0, majorThird, perfectFifth}, majorSeventh},
	{"dim", []int{0, minorThird, dimFifth}, dimSeventh},
	{"aug", []int{0, majorThird, augFifth}, minorSeventh},
	{"+", []int{0, majorThird, augFifth}, minorSeventh},
	{"m", []int{0, minorThird, perfectFifth}, minorSeventh},
}

// Parse parses a chord figure with the default grammar
func Parse(figure string) (*Chord, error) {
	if strings.TrimSpace(figure) == "" {
		return nil, ErrEmptyFigure
	}

	body, bass, hasBass := strings.Cut(figure, "/")

	root, consumed, err := ParsePitchClass(body)
	if err != nil {
		return nil, &ParseError{Figure: figure, Pos: 0, Reason: err.Error()}
	}
	if body[0] < 'A' || body[0] > 'G' {
		return nil, &ParseError{Figure: figure, Pos: 0, Reason: "root must be an uppercase note letter"}
	}

	b := &chordBuilder{figure: figure, pos: consumed, intervals: map[int]bool{}}
	if err := b.parseQuality(body[consumed:]); err != nil {
		return nil, err
	}
	if err := b.parseModifiers(body[b.pos:]); err != nil {
		return nil, err
	}

	chord := &Chord{
		Figure:    figure,
		Root:      root,
		Bass:      root,
		Intervals: b.sorted(),
	}

	if hasBass {
		bassPC, n, err := ParsePitchClass(bass)
		if err != nil || n != len(bass) {
			return nil, &ParseError{Figure: figure, Pos: len(body) + 1, Reason: "invalid bass note"}
		}
		chord.Bass = bassPC
	}

	return chord, nil
}

// PitchClasses returns the chord's pitch classes ordered by interval above the root,
// with a slash bass first when it is not already a chord tone
func (c *Chord) PitchClasses() []int {
	seen := make(map[int]bool, len(c.Intervals)+1)
	pcs := make([]int, 0, len(c.Intervals)+1)
	for _, iv := range c.Intervals {
		pc := mod12(c.Root + iv)
		if !seen[pc] {
			seen[pc] = true
			pcs = append(pcs, pc)
		}
	}
	if c.Bass != c.Root && !seen[c.Bass] {
		pcs = append([]int{c.Bass}, pcs...)
	}
	return pcs
}

// Pitches returns MIDI note numbers with the root in the given octave.
// A slash bass is placed one octave lower and prepended.
func (c *Chord) Pitches(octave int) []int {
	rootMIDI := MIDI(c.Root, octave)
	notes := make([]int, 0, len(c.Intervals)+1)
	for _, iv := range c.Intervals {
		n := rootMIDI + iv
		if n < 0 || n > midiMax {
			continue
		}
		notes = append(notes, n)
	}

	if c.Bass != c.Root {
		bassMIDI := MIDI(c.Bass, octave-1)
		if bassMIDI >= 0 && bassMIDI <= midiMax {
			notes = append([]int{bassMIDI}, notes...)
		}
	}
	return notes
}

// Third returns the pitch class of the chord's third, if it has one
func (c *Chord) Third() (int, bool) {
	return c.firstOf(majorThird, minorThird)
}

// Fifth returns the pitch class of the chord's fifth, if it has one
func (c *Chord) Fifth() (int, bool) {
	return c.firstOf(perfectFifth, dimFifth, augFifth)
}

func (c *Chord) firstOf(candidates ...int) (int, bool) {
	for _, want := range candidates {
		for _, iv := range c.Intervals {
			if iv == want {
				return mod12(c.Root + iv), true
			}
		}
	}
	return 0, false
}

type chordBuilder struct {
	figure     string
	pos        int
	intervals  map[int]bool
	seventh    int
	hasSeventh bool
}

func (b *chordBuilder) fail(reason string) error {
	return &ParseError{Figure: b.figure, Pos: b.pos, Reason: reason}
}

func (b *chordBuilder) parseQuality(s string) error {
	b.seventh = minorSeventh
	base := []int{0, majorThird, perfectFifth}
	matched := false

	for _, q := range qualityPrefixes {
		if strings.HasPrefix(s, q.prefix) {
			base = q.intervals
			b.seventh = q.seventh
			b.pos += len(q.prefix)
			s = s[len(q.prefix):]
			matched = true
			break
		}
	}
	for _, iv := range base {
		b.intervals[iv] = true
	}
	if len(base) == 4 {
		b.hasSeventh = true
	}

	// Power chord: "C5"
	if !matched && strings.HasPrefix(s, "5") && !startsWithNumber(s[1:]) {
		delete(b.intervals, majorThird)
		b.pos++
		return nil
	}

	n, width := leadingNumber(s)
	if width == 0 {
		return nil
	}
	if err := b.extend(n); err != nil {
		return err
	}
	b.pos += width
	return nil
}

// extend stacks the chord up to an extension number (6, 7, 9, 11, 13)
func (b *chordBuilder) extend(n int) error {
	switch n {
	case 6:
		b.intervals[majorSixth] = true
		return nil
	case 7, 9, 11, 13:
	default:
		return b.fail(fmt.Sprintf("unsupported extension %d", n))
	}

	b.intervals[b.seventh] = true
	b.hasSeventh = true
	if n >= 9 {
		b.intervals[majorNinth] = true
	}
	if n >= 11 {
		b.intervals[perfectEleven] = true
	}
	if n >= 13 {
		b.intervals[majorThirteen] = true
	}
	return nil
}

func (b *chordBuilder) parseModifiers(s string) error {
	for len(s) > 0 {
		start := len(s)
		var err error
		switch {
		case strings.HasPrefix(s, "sus"):
			s, err = b.sus(s[len("sus"):])
		case strings.HasPrefix(s, "add"):
			s, err = b.add(s[len("add"):])
		case strings.HasPrefix(s, "omitroot"):
			delete(b.intervals, 0)
			s = s[len("omitroot"):]
		case strings.HasPrefix(s, "omit"):
			s, err = b.omit(s[len("omit"):])
		case s[0] == '#' || s[0] == 'b' || s[0] == '-':
			s, err = b.alter(s)
		case isDigit(s[0]):
			n, width := leadingNumber(s)
			if !b.hasSeventh {
				err = b.extend(n)
			} else {
				err = b.addDegree(n, 0)
			}
			s = s[width:]
		default:
			return b.fail(fmt.Sprintf("unknown modifier %q", s))
		}
		if err != nil {
			return err
		}
		b.pos += start - len(s)
	}
	return nil
}

func (b *chordBuilder) sus(s string) (string, error) {
	replacement := perfectFourth
	if strings.HasPrefix(s, "2") {
		replacement = majorSecond
		s = s[1:]
	} else if strings.HasPrefix(s, "4") {
		s = s[1:]
	}
	delete(b.intervals, majorThird)
	delete(b.intervals, minorThird)
	b.intervals[replacement] = true
	return s, nil
}

func (b *chordBuilder) add(s string) (string, error) {
	shift := 0
	if len(s) > 0 {
		switch s[0] {
		case '#':
			shift = 1
			s = s[1:]
		case 'b', '-':
			shift = -1
			s = s[1:]
		}
	}
	n, width := leadingNumber(s)
	if width == 0 {
		return s, b.fail("add without degree")
	}
	return s[width:], b.addDegree(n, shift)
}

func (b *chordBuilder) addDegree(n, shift int) error {
	semis, ok := degreeSemitones[n]
	if !ok {
		return b.fail(fmt.Sprintf("unsupported degree %d", n))
	}
	b.intervals[semis+shift] = true
	return nil
}

func (b *chordBuilder) omit(s string) (string, error) {
	n, width := leadingNumber(s)
	if width == 0 {
		return s, b.fail("omit without degree")
	}
	switch n {
	case 1:
		delete(b.intervals, 0)
	case 3:
		delete(b.intervals, majorThird)
		delete(b.intervals, minorThird)
	case 5:
		delete(b.intervals, perfectFifth)
		delete(b.intervals, dimFifth)
		delete(b.intervals, augFifth)
	default:
		semis, ok := degreeSemitones[n]
		if !ok {
			return s, b.fail(fmt.Sprintf("unsupported omit %d", n))
		}
		delete(b.intervals, semis)
	}
	return s[width:], nil
}

// alter applies "#5", "b9", "-13", ... replacing the natural degree when present
func (b *chordBuilder) alter(s string) (string, error) {
	shift := 1
	if s[0] != '#' {
		shift = -1
	}
	n, width := leadingNumber(s[1:])
	if width == 0 || n > maxChordDegree {
		return s, b.fail(fmt.Sprintf("invalid alteration %q", s))
	}
	natural, ok := degreeSemitones[n]
	if !ok {
		return s, b.fail(fmt.Sprintf("unsupported alteration degree %d", n))
	}
	delete(b.intervals, natural)
	b.intervals[natural+shift] = true
	return s[1+width:], nil
}

func (b *chordBuilder) sorted() []int {
	out := make([]int, 0, len(b.intervals))
	for iv := range b.intervals {
		out = append(out, iv)
	}
	sort.Ints(out)
	return out
}

func leadingNumber(s string) (int, int) {
	width := 0
	for width < len(s) && isDigit(s[width]) {
		width++
	}
	if width == 0 {
		return 0, 0
	}
	n, err := strconv.Atoi(s[:width])
	if err != nil {
		return 0, 0
	}
	return n, width
}

func startsWithNumber(s string) bool {
	return len(s) > 0 && isDigit(s[0])
}
