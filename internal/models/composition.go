package models

// GenerationRequest wraps the timeline and the generation parameters
type GenerationRequest struct {
	Blocks        []ChordBlock `json:"blocks" binding:"required,min=1,dive"`
	Roles         []string     `json:"roles,omitempty"` // defaults to melody and bass
	Tonic         string       `json:"tonic,omitempty"` // fallback for blocks without one
	Mode          string       `json:"mode,omitempty"`
	Tempo         int          `json:"tempo,omitempty"`
	TimeSignature string       `json:"time_signature,omitempty"`
	Seed          *int64       `json:"seed,omitempty"` // Optional seed for reproducibility

	Melody   MelodyParams      `json:"melody"`
	Bass     BassParams        `json:"bass"`
	Humanize *HumanizeSettings `json:"humanize,omitempty"`
}

// MelodyParams controls the melody block composer
type MelodyParams struct {
	RhythmKey    string   `json:"rhythm_key,omitempty"`
	Density      *float64 `json:"density,omitempty"` // probability that an onset sounds (default 0.7)
	Velocity     int      `json:"velocity,omitempty"`
	OctaveLow    int      `json:"octave_low,omitempty"`
	OctaveHigh   int      `json:"octave_high,omitempty"`
	NoteDuration float64  `json:"note_duration,omitempty"`
}

// BassParams controls the bass composer
type BassParams struct {
	Style     string `json:"style,omitempty"` // root_only, root_fifth, walking; empty picks from intensity
	RhythmKey string `json:"rhythm_key,omitempty"`
	Octave    int    `json:"octave,omitempty"`
	Velocity  int    `json:"velocity,omitempty"`
}

// HumanizeSettings selects a humanization template and optional per-field overrides
type HumanizeSettings struct {
	Template           string   `json:"template,omitempty"`
	TimeVariation      *float64 `json:"time_variation,omitempty"`
	DurationPercent    *float64 `json:"duration_percentage,omitempty"`
	VelocityVariation  *int     `json:"velocity_variation,omitempty"`
	UseFractionalNoise *bool    `json:"use_fbm_time,omitempty"`
	FBMScale           *float64 `json:"fbm_time_scale,omitempty"`
	FBMHurst           *float64 `json:"fbm_hurst,omitempty"`
}

// Part is a generated event list for one role
type Part struct {
	Role   string      `json:"role"`
	Events []NoteEvent `json:"events"`
}

// GenerationResult is the output of a generation run
type GenerationResult struct {
	Parts  []Part       `json:"parts"`
	Chords []ChordEvent `json:"chords"`
	Tempo  int          `json:"tempo"`
	Meter  string       `json:"time_signature"`
}
