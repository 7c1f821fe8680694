package dsl

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/socket"
)

// Builder manages the graph construction.
type Builder struct {
	ids    domain.IDGenerator
	order  []string
	nodes  map[string]*NodeBuilder
	edges  []domain.Edge
	ranges []domain.ScoreRange
	errs   []error
}

// Option configures the Builder.
type Option func(*Builder)

// WithIDs sets the generator for node, element, option and edge ids.
func WithIDs(ids domain.IDGenerator) Option {
	return func(b *Builder) {
		b.ids = ids
	}
}

// New creates a new graph builder. Ids default to domain.UUIDs().
func New(opts ...Option) *Builder {
	b := &Builder{
		ids:   domain.UUIDs(),
		nodes: make(map[string]*NodeBuilder),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start adds a start node. An empty id is replaced with a fresh one.
func (b *Builder) Start(id string) *NodeBuilder {
	return b.add(id, domain.KindStart)
}

// Composite adds a composite node. An empty id is replaced with a fresh one.
func (b *Builder) Composite(id string) *NodeBuilder {
	return b.add(id, domain.KindComposite)
}

// Result adds a result node. An empty id is replaced with a fresh one.
func (b *Builder) Result(id string) *NodeBuilder {
	return b.add(id, domain.KindResult)
}

// Node returns the builder of an existing node, or nil.
func (b *Builder) Node(id string) *NodeBuilder {
	return b.nodes[id]
}

// ScoreRanges appends outcome bands to the graph.
func (b *Builder) ScoreRanges(ranges ...domain.ScoreRange) *Builder {
	b.ranges = append(b.ranges, ranges...)
	return b
}

// add creates a node. If the id already exists, it returns the existing builder.
func (b *Builder) add(id string, kind domain.NodeKind) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	n, err := domain.NewNode(b.ids, kind, domain.Position{})
	if err != nil {
		b.errs = append(b.errs, err)
	}
	if id != "" {
		n.ID = id
	}
	nb := &NodeBuilder{node: n, builder: b}
	b.nodes[n.ID] = nb
	b.order = append(b.order, n.ID)
	return nb
}

func (b *Builder) connect(source, sourceSocket, target string) {
	b.edges = append(b.edges, domain.Edge{
		ID:           b.ids.NewID(domain.PrefixEdge),
		Source:       source,
		SourceSocket: sourceSocket,
		Target:       target,
	})
}

// Build assembles the graph in insertion order.
// It fails if an element could not be built, an edge points at an unknown
// node, or an edge leaves from a socket its source does not expose.
func (b *Builder) Build() (domain.QuizGraph, error) {
	g := domain.QuizGraph{
		Nodes:       make([]domain.Node, 0, len(b.order)),
		Edges:       slices.Clone(b.edges),
		ScoreRanges: slices.Clone(b.ranges),
	}
	if g.Edges == nil {
		g.Edges = []domain.Edge{}
	}
	if g.ScoreRanges == nil {
		g.ScoreRanges = []domain.ScoreRange{}
	}
	for _, id := range b.order {
		g.Nodes = append(g.Nodes, b.nodes[id].Build())
	}

	errs := slices.Clone(b.errs)
	for _, e := range g.MissingEndpoints() {
		errs = append(errs, fmt.Errorf("edge %s (%s -> %s): %w", e.ID, e.Source, e.Target, domain.ErrNodeNotFound))
	}
	for _, e := range socket.Dangling(g) {
		errs = append(errs, fmt.Errorf("edge %s from %s: %w: %q", e.ID, e.Source, domain.ErrSocketNotFound, e.SourceSocket))
	}
	if err := errors.Join(errs...); err != nil {
		return domain.QuizGraph{}, fmt.Errorf("failed to build quiz graph: %w", err)
	}
	return g, nil
}
