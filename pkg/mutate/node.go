package mutate

import (
	"fmt"
	"slices"

	"github.com/aretw0/quizgraph/pkg/domain"
)

// AddNode places a new node of the given kind at pos.
func AddNode(g domain.QuizGraph, ids domain.IDGenerator, kind domain.NodeKind, pos domain.Position) (*Change, error) {
	n, err := domain.NewNode(ids, kind, pos)
	if err != nil {
		return nil, err
	}
	out := g.Clone()
	out.Nodes = append(out.Nodes, n)

	c := newChange(OpAddNode, out)
	c.Created = n.ID
	c.Layout = []string{n.ID}
	c.emit(domain.ChangeEvent{Type: domain.ChangeNodeAdded, NodeID: n.ID})
	return c, nil
}

// RemoveNode deletes a node and every edge that touches it.
func RemoveNode(g domain.QuizGraph, nodeID string) (*Change, error) {
	i := g.NodeIndex(nodeID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID)
	}
	out := g.Clone()
	out.Nodes = slices.Delete(out.Nodes, i, i+1)

	c := newChange(OpRemoveNode, out)
	kept := out.Edges[:0]
	for _, e := range out.Edges {
		if e.Source == nodeID || e.Target == nodeID {
			c.emit(domain.ChangeEvent{Type: domain.ChangeEdgeRemoved, EdgeID: e.ID, NodeID: e.Source})
			continue
		}
		kept = append(kept, e)
	}
	out.Edges = kept
	c.Graph = out
	c.Removed = []string{nodeID}
	c.emit(domain.ChangeEvent{Type: domain.ChangeNodeRemoved, NodeID: nodeID})
	return c, nil
}

// MoveNode changes a node's canvas position.
func MoveNode(g domain.QuizGraph, nodeID string, pos domain.Position) (*Change, error) {
	out := g.Clone()
	i := out.NodeIndex(nodeID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID)
	}
	out.Nodes[i].Position = pos

	c := newChange(OpMoveNode, out)
	c.emit(nodeUpdated(nodeID, ""))
	return c, nil
}

// NodePatch lists the node fields to overwrite. Nil fields are kept.
type NodePatch struct {
	Label       *string `json:"label,omitempty" mapstructure:"label"`
	Description *string `json:"description,omitempty" mapstructure:"description"`
}

// UpdateNode overwrites the patched display fields of a node.
func UpdateNode(g domain.QuizGraph, nodeID string, p NodePatch) (*Change, error) {
	out := g.Clone()
	i := out.NodeIndex(nodeID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID)
	}
	if p.Label != nil {
		out.Nodes[i].Label = *p.Label
	}
	if p.Description != nil {
		out.Nodes[i].Description = *p.Description
	}

	c := newChange(OpUpdateNode, out)
	c.emit(nodeUpdated(nodeID, ""))
	return c, nil
}

// DuplicateNode copies a node, shifted by offset. The copy gets fresh node,
// element and option ids; no edges are copied.
func DuplicateNode(g domain.QuizGraph, ids domain.IDGenerator, nodeID string, offset domain.Position) (*Change, error) {
	src, ok := g.Node(nodeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID)
	}
	cp := src.Clone()
	cp.ID = ids.NewID(domain.PrefixNode)
	cp.Position = domain.Position{X: src.Position.X + offset.X, Y: src.Position.Y + offset.Y}
	for i := range cp.Elements {
		cp.Elements[i].ID = ids.NewID(domain.PrefixElement)
		for j := range cp.Elements[i].Options {
			cp.Elements[i].Options[j].ID = ids.NewID(domain.PrefixOption)
		}
	}
	out := g.Clone()
	out.Nodes = append(out.Nodes, cp)

	c := newChange(OpDuplicateNode, out)
	c.Created = cp.ID
	c.Layout = []string{cp.ID}
	c.emit(domain.ChangeEvent{Type: domain.ChangeNodeAdded, NodeID: cp.ID})
	return c, nil
}
