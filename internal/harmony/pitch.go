package harmony

import (
	"fmt"
	"strings"
)

const (
	// MiddleC is the MIDI number of C4
	MiddleC = 60

	semitonesPerOctave = 12
	midiMax            = 127
)

// letterOffsets are the natural note semitone offsets from C
var letterOffsets = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

var sharpNames = [semitonesPerOctave]string{"C", "C#", "D", "E-", "E", "F", "F#", "G", "A-", "A", "B-", "B"}

// MIDI returns the MIDI number of a pitch class in the given octave (C4 = 60)
func MIDI(pitchClass, octave int) int {
	return (octave+1)*semitonesPerOctave + mod12(pitchClass)
}

// Octaves that hold at least one valid MIDI note
const (
	MinOctave = -1
	MaxOctave = 9
)

// ValidMIDI reports whether a pitch is a MIDI note number (0-127)
func ValidMIDI(pitch int) bool {
	return pitch >= 0 && pitch <= midiMax
}

// FitMIDI shifts a pitch by whole octaves until it lies in 0-127, keeping its pitch class
func FitMIDI(pitch int) int {
	for pitch > midiMax {
		pitch -= semitonesPerOctave
	}
	for pitch < 0 {
		pitch += semitonesPerOctave
	}
	return pitch
}

// Octave returns the octave of a MIDI number (60 -> 4)
func Octave(midi int) int {
	if midi < 0 {
		return (midi+1)/semitonesPerOctave - 2
	}
	return midi/semitonesPerOctave - 1
}

// PitchClass returns the pitch class (0-11) of a MIDI number
func PitchClass(midi int) int {
	return mod12(midi)
}

// NoteName renders a MIDI number as a note name with octave, e.g. 61 -> "C#4"
func NoteName(midi int) string {
	return fmt.Sprintf("%s%d", sharpNames[mod12(midi)], Octave(midi))
}

// PitchClassName renders a pitch class using the canonical spelling ("-" for flats)
func PitchClassName(pc int) string {
	return sharpNames[mod12(pc)]
}

// ParsePitchClass parses a note name without octave: "C", "c#", "Bb", "B-", "E--".
// It returns the pitch class and the number of bytes consumed.
func ParsePitchClass(name string) (int, int, error) {
	if name == "" {
		return 0, 0, fmt.Errorf("empty note name")
	}

	letter := strings.ToUpper(name[:1])[0]
	offset, ok := letterOffsets[letter]
	if !ok {
		return 0, 0, fmt.Errorf("invalid note letter: %q", name[:1])
	}

	i := 1
	for i < len(name) {
		switch name[i] {
		case '#':
			offset++
		case '-':
			offset--
		case 'b':
			// "b" is only a flat when it is not the start of a tension like "b9"
			if i+1 < len(name) && isDigit(name[i+1]) {
				return mod12(offset), i, nil
			}
			offset--
		default:
			return mod12(offset), i, nil
		}
		i++
	}

	return mod12(offset), i, nil
}

// NoteNameToMIDI converts a note name like "E1", "C4", "F#3", "Bb2" or "B-2" to a MIDI note number
// Format: <note><accidental*><octave> where octave may be negative (-1 to 9, C4 = 60)
func NoteNameToMIDI(noteName string) (int, error) {
	if len(noteName) < 2 {
		return 0, fmt.Errorf("note name too short: %s", noteName)
	}

	pc, consumed, err := parsePitchClassBeforeOctave(noteName)
	if err != nil {
		return 0, err
	}

	octaveStr := noteName[consumed:]
	if octaveStr == "" {
		return 0, fmt.Errorf("missing octave in note name: %s", noteName)
	}

	var octave int
	if _, err := fmt.Sscanf(octaveStr, "%d", &octave); err != nil {
		return 0, fmt.Errorf("invalid octave in note name %s: %w", noteName, err)
	}

	midiNote := MIDI(pc, octave)
	if midiNote < 0 {
		midiNote = 0
	}
	if midiNote > midiMax {
		midiNote = midiMax
	}
	return midiNote, nil
}

// parsePitchClassBeforeOctave is ParsePitchClass for names followed by an octave.
// A trailing "-1" is the lowest MIDI octave ("C-1" = 0), not a flat.
func parsePitchClassBeforeOctave(noteName string) (int, int, error) {
	letter := strings.ToUpper(noteName[:1])[0]
	offset, ok := letterOffsets[letter]
	if !ok {
		return 0, 0, fmt.Errorf("invalid note letter: %q", noteName[:1])
	}

	i := 1
	for i < len(noteName) {
		c := noteName[i]
		if c == '-' && noteName[i+1:] == "1" {
			break
		}
		if c == '#' {
			offset++
		} else if c == '-' || c == 'b' {
			offset--
		} else {
			break
		}
		i++
	}
	return mod12(offset), i, nil
}

func mod12(v int) int {
	return ((v % semitonesPerOctave) + semitonesPerOctave) % semitonesPerOctave
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
