// Package mutate implements the authoring operations on a quiz graph.
//
// Every operation is a pure transformation: it clones the input, applies the
// change to the clone and returns it inside a Change. On error the input is
// returned untouched, so an operation either applies fully or not at all.
//
// Two behaviours are deliberate and documented per operation:
//   - removing an element or an option does not repair edges bound to its
//     sockets (they become dangling, see socket.Dangling);
//   - removing a node cascades to every incident edge.
package mutate

import (
	"fmt"

	"github.com/aretw0/quizgraph/pkg/domain"
)

// Operation names, shared with the command layer and metrics labels.
const (
	OpAddElement      = "add_element"
	OpRemoveElement   = "remove_element"
	OpReorderElements = "reorder_elements"
	OpUpdateElement   = "update_element"
	OpAddOption       = "add_option"
	OpRemoveOption    = "remove_option"
	OpUpdateOption    = "update_option"
	OpAddNode         = "add_node"
	OpRemoveNode      = "remove_node"
	OpMoveNode        = "move_node"
	OpUpdateNode      = "update_node"
	OpDuplicateNode   = "duplicate_node"
	OpConnect         = "connect"
	OpDisconnect      = "disconnect"
	OpSetScoreRanges  = "set_score_ranges"
)

// Change is the outcome of a successful operation.
type Change struct {
	Op    string
	Graph domain.QuizGraph
	// Dirty is set whenever the graph differs from what was last persisted.
	Dirty bool
	// Created holds the id of the node, element, option or edge the operation made.
	Created string
	// Layout lists nodes whose element sequence or option counts may have changed.
	Layout []string
	// Removed lists nodes deleted by the operation.
	Removed []string
	// Events are the change notifications for the rendering collaborator.
	Events []domain.ChangeEvent
}

func newChange(op string, g domain.QuizGraph) *Change {
	return &Change{Op: op, Graph: g, Dirty: true}
}

func (c *Change) emit(e domain.ChangeEvent) {
	c.Events = append(c.Events, e)
}

func nodeUpdated(nodeID, elementID string) domain.ChangeEvent {
	return domain.ChangeEvent{Type: domain.ChangeNodeUpdated, NodeID: nodeID, ElementID: elementID}
}

// compositeIndex finds a node that may hold elements.
func compositeIndex(g *domain.QuizGraph, nodeID string) (int, error) {
	i := g.NodeIndex(nodeID)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID)
	}
	if g.Nodes[i].Kind != domain.KindComposite {
		return -1, fmt.Errorf("%w: %s is %s", domain.ErrNotComposite, nodeID, g.Nodes[i].Kind)
	}
	return i, nil
}

// elementLocation finds an element anywhere in the graph by id.
func elementLocation(g *domain.QuizGraph, elementID string) (nodeIdx, elIdx int, err error) {
	for i := range g.Nodes {
		if j := g.Nodes[i].ElementIndex(elementID); j >= 0 {
			return i, j, nil
		}
	}
	return -1, -1, fmt.Errorf("%w: %s", domain.ErrElementNotFound, elementID)
}
