package generate

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/quizgraph/internal/logging"
	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/dsl"
)

// DefaultSpacing is the horizontal distance between generated nodes.
const DefaultSpacing = 320

// Generator builds quiz graphs from descriptors.
type Generator struct {
	ids     domain.IDGenerator
	logger  *slog.Logger
	spacing float64
}

// Option configures the Generator.
type Option func(*Generator)

// WithIDs sets the id generator. Defaults to domain.UUIDs().
func WithIDs(ids domain.IDGenerator) Option {
	return func(g *Generator) {
		g.ids = ids
	}
}

// WithLogger configures a logger for the Generator.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithSpacing sets the horizontal distance between nodes.
func WithSpacing(px float64) Option {
	return func(g *Generator) {
		g.spacing = px
	}
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		ids:     domain.UUIDs(),
		logger:  logging.NewNop(),
		spacing: DefaultSpacing,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds start -> one composite node per descriptor -> result and
// attaches ranges verbatim. An empty descriptor list wires start straight to
// result.
func (g *Generator) Generate(descs []Descriptor, ranges []domain.ScoreRange) (domain.QuizGraph, error) {
	b := dsl.New(dsl.WithIDs(g.ids))
	b.ScoreRanges(ranges...)

	prev := b.Start("").At(0, 0)
	for i, d := range descs {
		el, err := g.element(d)
		if err != nil {
			return domain.QuizGraph{}, &DescriptorError{Index: i, Err: err}
		}
		node := b.Composite("").At(g.spacing*float64(i+1), 0).Element(el)
		link(prev, node.ID())
		prev = node
	}
	result := b.Result("").At(g.spacing*float64(len(descs)+1), 0)
	link(prev, result.ID())

	graph, err := b.Build()
	if err != nil {
		return domain.QuizGraph{}, fmt.Errorf("failed to generate quiz: %w", err)
	}
	g.logger.Debug("Quiz generated", "questions", len(descs), "nodes", len(graph.Nodes))
	return graph, nil
}

// link wires from's outbound socket to target: the last option of its last
// choice element, or the default socket.
func link(from *dsl.NodeBuilder, target string) {
	n := from.Build()
	for j := len(n.Elements) - 1; j >= 0; j-- {
		if el := n.Elements[j]; el.HasOptions() && len(el.Options) > 0 {
			from.OnOption(len(el.Options)-1, target)
			return
		}
	}
	from.Go(target)
}

// element builds the default element for the descriptor type and overwrites
// it with the descriptor's fields. Descriptors are questions: unknown and
// passive types become single choice, so every generated node is interactive.
func (g *Generator) element(d Descriptor) (domain.Element, error) {
	typ := domain.ElementType(d.Type)
	if !typ.Interactive() {
		g.logger.Debug("Unsupported question type, using single choice", "type", d.Type)
		typ = domain.ElementChoiceSingle
	}
	el, err := domain.NewElement(g.ids, typ)
	if err != nil {
		return domain.Element{}, err
	}

	if d.Question != "" {
		el.Question = d.Question
	}
	if el.HasOptions() && len(d.Options) > 0 {
		el.Options = make([]domain.Option, 0, len(d.Options))
		for _, o := range d.Options {
			el.Options = append(el.Options, domain.NewOption(g.ids, o.Label, o.Score))
		}
	}
	switch typ {
	case domain.ElementRating:
		if d.RatingType != "" {
			el.Rating.Kind = domain.RatingKind(d.RatingType)
		}
		if d.MinValue != nil {
			el.Rating.Min = *d.MinValue
		}
		if d.MaxValue != nil {
			el.Rating.Max = *d.MaxValue
		}
		if d.ScoreMultiplier != nil {
			el.Rating.ScoreMultiplier = *d.ScoreMultiplier
		}
	case domain.ElementOpenText:
		if d.Placeholder != "" {
			el.OpenText.Placeholder = d.Placeholder
		}
	}
	return el, nil
}
