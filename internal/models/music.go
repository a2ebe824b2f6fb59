package models

// NoteEvent represents a single musical note with timing and pitch information.
// Rest events carry no pitch; Velocity 0 means "not set" and resolves to the role default.
type NoteEvent struct {
	MidiNoteNumber int     `json:"midiNoteNumber"`
	Velocity       int     `json:"velocity"`
	StartBeats     float64 `json:"startBeats"`
	DurationBeats  float64 `json:"durationBeats"`
	Rest           bool    `json:"rest,omitempty"`
}

// EndBeats returns the beat at which the event stops sounding
func (n NoteEvent) EndBeats() float64 {
	return n.StartBeats + n.DurationBeats
}

// ChordEvent represents a chord with timing information
type ChordEvent struct {
	ChordSymbol   string  `json:"chordSymbol"`
	StartBeats    float64 `json:"startBeats"`
	DurationBeats float64 `json:"durationBeats"`
	Rest          bool    `json:"rest,omitempty"`
}

// ChordBlock is one entry of the harmonic timeline
type ChordBlock struct {
	Offset        float64   `json:"offset"`
	LengthBeats   float64   `json:"length_beats"`
	ChordLabel    string    `json:"chord_label"`
	Tonic         string    `json:"tonic,omitempty"`
	Mode          string    `json:"mode,omitempty"`
	BeatPositions []float64 `json:"beat_positions,omitempty"` // explicit onsets within the block
	Intensity     string    `json:"intensity,omitempty"`      // low, medium_low, medium, high, ...
}
