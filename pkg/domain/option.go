package domain

// Option is one selectable, independently scored choice of a choice element.
//
// ID is assigned at creation and never changes. Sockets are still keyed by the
// option's index, not by ID.
type Option struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
	Image string `json:"image,omitempty"`
	// Score may be negative or zero.
	Score int `json:"score"`
}
