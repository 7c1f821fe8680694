package dsl

import (
	"fmt"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/socket"
)

// OptionSpec describes one answer of a choice element.
type OptionSpec struct {
	Label string
	Score int
}

// Opt is shorthand for an OptionSpec.
func Opt(label string, score int) OptionSpec {
	return OptionSpec{Label: label, Score: score}
}

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// ID returns the node id, useful when the builder generated it.
func (n *NodeBuilder) ID() string { return n.node.ID }

// At sets the canvas position.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Position{X: x, Y: y}
	return n
}

// Label sets the node title.
func (n *NodeBuilder) Label(label string) *NodeBuilder {
	n.node.Label = label
	return n
}

// Description sets the node description.
func (n *NodeBuilder) Description(text string) *NodeBuilder {
	n.node.Description = text
	return n
}

// Element appends a prebuilt element.
func (n *NodeBuilder) Element(el domain.Element) *NodeBuilder {
	if n.node.Kind != domain.KindComposite {
		n.fail(fmt.Errorf("element %s on %s: %w", el.ID, n.node.ID, domain.ErrNotComposite))
		return n
	}
	n.node.Elements = append(n.node.Elements, el)
	return n
}

// Add appends a default element of the given type.
func (n *NodeBuilder) Add(typ domain.ElementType) *NodeBuilder {
	el, err := domain.NewElement(n.builder.ids, typ)
	if err != nil {
		n.fail(err)
		return n
	}
	return n.Element(el)
}

// Text appends a text element.
func (n *NodeBuilder) Text(content string) *NodeBuilder {
	return n.with(domain.ElementText, func(el *domain.Element) {
		el.Content = content
	})
}

// Choice appends a single-choice element with the given options.
func (n *NodeBuilder) Choice(question string, opts ...OptionSpec) *NodeBuilder {
	return n.choice(domain.ElementChoiceSingle, question, opts)
}

// MultiChoice appends a multiple-choice element with the given options.
func (n *NodeBuilder) MultiChoice(question string, opts ...OptionSpec) *NodeBuilder {
	return n.choice(domain.ElementChoiceMultiple, question, opts)
}

func (n *NodeBuilder) choice(typ domain.ElementType, question string, opts []OptionSpec) *NodeBuilder {
	return n.with(typ, func(el *domain.Element) {
		el.Question = question
		el.Options = make([]domain.Option, 0, len(opts))
		for _, o := range opts {
			el.Options = append(el.Options, domain.NewOption(n.builder.ids, o.Label, o.Score))
		}
	})
}

// Rating appends a rating element.
func (n *NodeBuilder) Rating(question string, kind domain.RatingKind, lo, hi int, multiplier float64) *NodeBuilder {
	return n.with(domain.ElementRating, func(el *domain.Element) {
		el.Question = question
		el.Rating = &domain.RatingSettings{Kind: kind, Min: lo, Max: hi, ScoreMultiplier: multiplier}
	})
}

// OpenText appends an open text element.
func (n *NodeBuilder) OpenText(question, placeholder string, score int) *NodeBuilder {
	return n.with(domain.ElementOpenText, func(el *domain.Element) {
		el.Question = question
		el.OpenText.Placeholder = placeholder
		el.OpenText.Score = score
	})
}

// LeadCapture appends a lead capture element with the default fields.
func (n *NodeBuilder) LeadCapture() *NodeBuilder {
	return n.Add(domain.ElementLeadCapture)
}

func (n *NodeBuilder) with(typ domain.ElementType, fn func(*domain.Element)) *NodeBuilder {
	el, err := domain.NewElement(n.builder.ids, typ)
	if err != nil {
		n.fail(err)
		return n
	}
	fn(&el)
	return n.Element(el)
}

// Go wires the node's default socket to target.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.builder.connect(n.node.ID, socket.Default, target)
	return n
}

// OnOption wires option i of the last choice element added so far to target.
func (n *NodeBuilder) OnOption(i int, target string) *NodeBuilder {
	for j := len(n.node.Elements) - 1; j >= 0; j-- {
		if el := n.node.Elements[j]; el.HasOptions() {
			n.builder.connect(n.node.ID, socket.Option(el.ID, i), target)
			return n
		}
	}
	n.fail(fmt.Errorf("option %d on %s: %w", i, n.node.ID, domain.ErrNotChoice))
	return n
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node.Clone()
}

func (n *NodeBuilder) fail(err error) {
	n.builder.errs = append(n.builder.errs, err)
}
