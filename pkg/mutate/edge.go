package mutate

import (
	"fmt"
	"slices"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/socket"
)

// Connect adds an edge from source's socket to target.
//
// Both endpoints must exist and the socket must be one the source currently
// exposes. Cycles, duplicate edges and self loops are accepted.
func Connect(g domain.QuizGraph, ids domain.IDGenerator, source, sourceSocket, target string) (*Change, error) {
	src, ok := g.Node(source)
	if !ok {
		return nil, fmt.Errorf("%w: source %s", domain.ErrNodeNotFound, source)
	}
	if !g.HasNode(target) {
		return nil, fmt.Errorf("%w: target %s", domain.ErrNodeNotFound, target)
	}
	if !socket.Exists(src, sourceSocket) {
		return nil, fmt.Errorf("%w: %q on %s", domain.ErrSocketNotFound, sourceSocket, source)
	}

	e := domain.Edge{
		ID:           ids.NewID(domain.PrefixEdge),
		Source:       source,
		SourceSocket: sourceSocket,
		Target:       target,
	}
	out := g.Clone()
	out.Edges = append(out.Edges, e)

	c := newChange(OpConnect, out)
	c.Created = e.ID
	c.emit(domain.ChangeEvent{Type: domain.ChangeEdgeAdded, EdgeID: e.ID, NodeID: source})
	return c, nil
}

// Disconnect removes an edge by id.
func Disconnect(g domain.QuizGraph, edgeID string) (*Change, error) {
	i := slices.IndexFunc(g.Edges, func(e domain.Edge) bool { return e.ID == edgeID })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEdgeNotFound, edgeID)
	}
	out := g.Clone()
	source := out.Edges[i].Source
	out.Edges = slices.Delete(out.Edges, i, i+1)

	c := newChange(OpDisconnect, out)
	c.emit(domain.ChangeEvent{Type: domain.ChangeEdgeRemoved, EdgeID: edgeID, NodeID: source})
	return c, nil
}

// SetScoreRanges replaces the outcome bands. Ranges are stored as given;
// overlaps and gaps are not checked.
func SetScoreRanges(g domain.QuizGraph, ranges []domain.ScoreRange) (*Change, error) {
	out := g.Clone()
	out.ScoreRanges = slices.Clone(ranges)
	if out.ScoreRanges == nil {
		out.ScoreRanges = []domain.ScoreRange{}
	}

	c := newChange(OpSetScoreRanges, out)
	c.emit(domain.ChangeEvent{Type: domain.ChangeScoreRanges})
	return c, nil
}
