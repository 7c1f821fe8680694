package domain

// QuizGraph is the aggregate authored by a session: nodes, edges and the
// score ranges attached to results.
//
// Exactly one start node is expected by convention. It is not enforced here;
// the diagnostics engine reports its absence.
type QuizGraph struct {
	Nodes       []Node       `json:"nodes"`
	Edges       []Edge       `json:"edges"`
	ScoreRanges []ScoreRange `json:"scoreRanges"`
}

// NodeIndex returns the slice position of the node, or -1.
func (g *QuizGraph) NodeIndex(id string) int {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Node looks up a node by id. Absence is reported, never raised.
func (g *QuizGraph) Node(id string) (Node, bool) {
	i := g.NodeIndex(id)
	if i < 0 {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// HasNode reports whether a node with the id exists.
func (g *QuizGraph) HasNode(id string) bool { return g.NodeIndex(id) >= 0 }

// Edge looks up an edge by id.
func (g *QuizGraph) Edge(id string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// EdgesFrom returns the edges leaving the node, in insertion order.
func (g *QuizGraph) EdgesFrom(nodeID string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns the edges entering the node, in insertion order.
func (g *QuizGraph) EdgesTo(nodeID string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Target == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// Element looks up an element inside a node.
func (g *QuizGraph) Element(nodeID, elementID string) (Element, bool) {
	n, ok := g.Node(nodeID)
	if !ok {
		return Element{}, false
	}
	return n.Element(elementID)
}

// FindElement locates an element by its globally unique id.
func (g *QuizGraph) FindElement(elementID string) (nodeID string, el Element, ok bool) {
	for i := range g.Nodes {
		if j := g.Nodes[i].ElementIndex(elementID); j >= 0 {
			return g.Nodes[i].ID, g.Nodes[i].Elements[j], true
		}
	}
	return "", Element{}, false
}

// NodesOfKind returns the ids of every node of the given kind.
func (g *QuizGraph) NodesOfKind(kind NodeKind) []string {
	var ids []string
	for _, n := range g.Nodes {
		if n.Kind == kind {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Elements visits every element of every node in graph order.
// Iteration stops when fn returns false.
func (g *QuizGraph) Elements(fn func(node *Node, el *Element) bool) {
	for i := range g.Nodes {
		for j := range g.Nodes[i].Elements {
			if !fn(&g.Nodes[i], &g.Nodes[i].Elements[j]) {
				return
			}
		}
	}
}

// MissingEndpoints returns edges whose source or target node does not exist.
func (g *QuizGraph) MissingEndpoints() []Edge {
	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = struct{}{}
	}
	var out []Edge
	for _, e := range g.Edges {
		_, src := ids[e.Source]
		_, dst := ids[e.Target]
		if !src || !dst {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a deep copy. Mutations work on clones so a failed operation
// leaves the original untouched.
func (g QuizGraph) Clone() QuizGraph {
	out := QuizGraph{}
	if g.Nodes != nil {
		out.Nodes = make([]Node, len(g.Nodes))
		for i := range g.Nodes {
			out.Nodes[i] = g.Nodes[i].Clone()
		}
	}
	if g.Edges != nil {
		out.Edges = append([]Edge(nil), g.Edges...)
	}
	if g.ScoreRanges != nil {
		out.ScoreRanges = make([]ScoreRange, len(g.ScoreRanges))
		for i := range g.ScoreRanges {
			out.ScoreRanges[i] = g.ScoreRanges[i].Clone()
		}
	}
	return out
}
