package domain

// Edge is a directed wire from an outbound socket to a node's inbound socket.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	// SourceSocket is empty for the node's default outbound socket. Otherwise
	// it names the socket of one option of a choice element.
	SourceSocket string `json:"sourceSocket,omitempty"`
	Target       string `json:"target"`
}

// FromDefaultSocket reports whether the edge leaves through the default socket.
func (e Edge) FromDefaultSocket() bool { return e.SourceSocket == "" }
