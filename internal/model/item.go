package model

// MaxDescriptionLen caps the free-text item description accepted by the
// matcher.
const MaxDescriptionLen = 1000

// Specification is a single extracted spec entry. Specifications are kept as
// an ordered slice rather than a map so discovery order survives
// serialization.
type Specification struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ItemDescription is the structured form of a claimed item's free-text
// description. It is built once per request and never mutated afterwards.
type ItemDescription struct {
	Text           string          `json:"text"`
	Category       string          `json:"category,omitempty"`
	Brand          string          `json:"brand,omitempty"`
	Model          string          `json:"model,omitempty"`
	Specifications []Specification `json:"specifications,omitempty"`
	Keywords       []string        `json:"keywords,omitempty"`
}

// Spec returns the value for a specification name, if present.
func (d ItemDescription) Spec(name string) (string, bool) {
	for _, s := range d.Specifications {
		if s.Name == name {
			return s.Value, true
		}
	}
	return "", false
}
