package domain

// NodeKind controls how a node takes part in the flow.
type NodeKind string

const (
	// KindStart is the single entry point of a quiz.
	KindStart NodeKind = "start"
	// KindComposite holds an ordered sequence of elements.
	KindComposite NodeKind = "composite"
	// KindResult is a sink that shows an outcome to the respondent.
	KindResult NodeKind = "result"
)

// Valid reports whether k is one of the known node kinds.
func (k NodeKind) Valid() bool {
	switch k {
	case KindStart, KindComposite, KindResult:
		return true
	}
	return false
}

// Position is the canvas coordinate of a node. It carries no invariant.
type Position struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// Node is a vertex of the quiz graph.
//
// The kind-specific payload is flattened into the node: start and result
// nodes use Label, composite nodes use Elements (order is meaningful).
type Node struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"type"`
	Position Position `json:"position"`

	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`

	Elements []Element `json:"elements,omitempty"`
}

// ElementIndex returns the position of the element in the node's sequence, or -1.
func (n *Node) ElementIndex(elementID string) int {
	for i := range n.Elements {
		if n.Elements[i].ID == elementID {
			return i
		}
	}
	return -1
}

// Element looks up an element by id.
func (n *Node) Element(elementID string) (Element, bool) {
	i := n.ElementIndex(elementID)
	if i < 0 {
		return Element{}, false
	}
	return n.Elements[i], true
}

// HasChoices reports whether any element of the node exposes per-option sockets.
func (n *Node) HasChoices() bool {
	for i := range n.Elements {
		if n.Elements[i].HasOptions() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	out := n
	if n.Elements != nil {
		out.Elements = make([]Element, len(n.Elements))
		for i := range n.Elements {
			out.Elements[i] = n.Elements[i].Clone()
		}
	}
	return out
}
