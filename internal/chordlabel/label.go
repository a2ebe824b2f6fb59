package chordlabel

import "encoding/json"

// Label is the result of normalizing a raw chord label: either a canonical
// chord symbol that parses into at least one pitch, or Rest.
type Label struct {
	text string
}

// Rest means no harmony sounds for the block
var Rest = Label{}

// Canonical wraps an already validated canonical symbol
func Canonical(text string) Label {
	return Label{text: text}
}

// IsRest reports whether the label is the Rest sentinel
func (l Label) IsRest() bool {
	return l.text == ""
}

// Text returns the canonical symbol, or "" for Rest
func (l Label) Text() string {
	return l.text
}

// String renders the label; Rest renders as "Rest" so it normalizes back to Rest
func (l Label) String() string {
	if l.IsRest() {
		return "Rest"
	}
	return l.text
}

// MarshalJSON encodes Rest as null and canonical labels as strings
func (l Label) MarshalJSON() ([]byte, error) {
	if l.IsRest() {
		return []byte("null"), nil
	}
	return json.Marshal(l.text)
}

// UnmarshalJSON decodes null or "Rest" as Rest and any other string as a
// canonical label without re-validating it
func (l *Label) UnmarshalJSON(data []byte) error {
	var text *string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	if text == nil || *text == "Rest" {
		*l = Rest
		return nil
	}
	*l = Canonical(*text)
	return nil
}
