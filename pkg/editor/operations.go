package editor

import (
	"context"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/mutate"
)

// AddElement appends a default element of typ to a composite node.
func (e *Editor) AddElement(ctx context.Context, nodeID string, typ domain.ElementType) (Result, error) {
	return e.apply(ctx, mutate.OpAddElement, func(g domain.QuizGraph) (*mutate.Change, error) {
		return mutate.AddElement(g, e.ids, nodeID, typ)
	})
}

// RemoveElement deletes an element. Edges on its sockets are left dangling.
func (e *Editor) RemoveElement(ctx context.Context, nodeID, elementID string) (Result, error) {
	return e.apply(ctx, mutate.OpRemoveElement, func(g domain.QuizGraph) (*mutate.Change, error) {
		return mutate.RemoveElement(g, nodeID, elementID)
	})
}

// ReorderElements moves an element within its node.
func (e *Editor) ReorderElements(ctx context.Context, nodeID string, from, to int) (Result, error) {
	return e.apply(ctx, mutate.OpReorderElements, func(g domain.QuizGraph) (*mutate.Change, error) {
		return mutate.ReorderElements(g, nodeID, from, to)
	})
}

// UpdateElement patches an element's fields.
func (e *Editor) UpdateElement(ctx context.Context, elementID string, p mutate.ElementPatch) (Result, error) {
	return e.apply(ctx, mutate.OpUpdateElement, func(g domain.QuizGraph) (*mutate.Change, error) {
		return mutate.UpdateElement(g, elementID, p)
	})
}

// AddOption inserts an option at index, or appends with mutate.AppendIndex.
func (e *Editor) AddOption(ctx context.Context, elementID string, index int, label string, score int) (Result, error) {
	return e.apply(ctx, mutate.OpAddOption, func(g domain.QuizGraph) (*mutate.Change, error) {
		return mutate.AddOption(g, e.ids, elementID, index, label, score)
	})
}

// RemoveOption deletes the option at index.
func (e *Editor) RemoveOption(ctx context.Context, elementID string, index int) (Result, error) {
	return e.apply(ctx, mutate.OpRemoveOption, func(g domain.QuizGraph) (*mutate.Change, error) {
		return mutate.RemoveOption(g, elementID, index)
	})
}

// UpdateOption patches the option at index.
func (e *Editor) UpdateOption(ctx context.Context, elementID string, index int, p mutate.OptionPatch) (Result, error) {
	return e.apply(ctx, mutate.OpUpdateOption, func(g domain.QuizGraph) (*mutate.Change, error) {
		return mutate.UpdateOption(g, elementID, index, p)
	})
}

// AddNode places a new node.
func (e *Editor) AddNode(ctx context.Context, kind domain.NodeKind, pos domain.Position) (Result, error) {
	return e.apply(ctx, mutate.OpAddNode, func(g domain.QuizGraph) (*mutate.Change, error) {
		return mutate.AddNode(g, e.ids, kind, pos)
	})
}

// RemoveNode deletes a node and its incident edges. Any pending socket
// signal for the node is cancelled.
func (e *Editor) RemoveNode(ctx context.Context, nodeID string) (Result, error) {
	return e.apply(ctx, mutate.OpRemoveNode, func(g domain.QuizGraph) (*mutate.Change, error) {
		return mutate.RemoveNode(g, nodeID)
	})
}

// MoveNode changes a node's position.
func (e *Editor) MoveNode(ctx context.Context, nodeID string, pos domain.Position) (Result, error) {
	return e.apply(ctx, mutate.OpMoveNode, func(g domain.QuizGraph) (*mutate.Change, error) {
		return mutate.MoveNode(g, nodeID, pos)
	})
}

// UpdateNode patches a node's label or description.
func (e *Editor) UpdateNode(ctx context.Context, nodeID string, p mutate.NodePatch) (Result, error) {
	return e.apply(ctx, mutate.OpUpdateNode, func(g domain.QuizGraph) (*mutate.Change, error) {
		return mutate.UpdateNode(g, nodeID, p)
	})
}

// DuplicateNode copies a node with fresh ids, shifted by offset.
func (e *Editor) DuplicateNode(ctx context.Context, nodeID string, offset domain.Position) (Result, error) {
	return e.apply(ctx, mutate.OpDuplicateNode, func(g domain.QuizGraph) (*mutate.Change, error) {
		return mutate.DuplicateNode(g, e.ids, nodeID, offset)
	})
}

// Connect wires source's socket to target.
func (e *Editor) Connect(ctx context.Context, source, sourceSocket, target string) (Result, error) {
	return e.apply(ctx, mutate.OpConnect, func(g domain.QuizGraph) (*mutate.Change, error) {
		return mutate.Connect(g, e.ids, source, sourceSocket, target)
	})
}

// Disconnect removes an edge.
func (e *Editor) Disconnect(ctx context.Context, edgeID string) (Result, error) {
	return e.apply(ctx, mutate.OpDisconnect, func(g domain.QuizGraph) (*mutate.Change, error) {
		return mutate.Disconnect(g, edgeID)
	})
}

// SetScoreRanges replaces the score ranges.
func (e *Editor) SetScoreRanges(ctx context.Context, ranges []domain.ScoreRange) (Result, error) {
	return e.apply(ctx, mutate.OpSetScoreRanges, func(g domain.QuizGraph) (*mutate.Change, error) {
		return mutate.SetScoreRanges(g, ranges)
	})
}
