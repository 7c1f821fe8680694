package domain

import "fmt"

// NewOption builds an option with a fresh id.
func NewOption(ids IDGenerator, label string, score int) Option {
	return Option{ID: ids.NewID(PrefixOption), Label: label, Score: score}
}

// NewElement builds the canonical default shape of an element type.
// A fresh choice element always starts with three options scored 10, 5 and 0.
func NewElement(ids IDGenerator, typ ElementType) (Element, error) {
	el := Element{ID: ids.NewID(PrefixElement), Type: typ}

	switch typ {
	case ElementText:
		el.Content = "Enter your text here"
	case ElementImage, ElementVideo, ElementAudio:
		el.Media = &MediaSettings{}
	case ElementScript:
		el.Content = ""
	case ElementGame:
		el.Game = &GameSettings{Kind: "spin-wheel"}
	case ElementChoiceSingle, ElementChoiceMultiple, ElementChoiceGrid:
		el.Question = "New question"
		el.Options = []Option{
			NewOption(ids, "Option A", 10),
			NewOption(ids, "Option B", 5),
			NewOption(ids, "Option C", 0),
		}
		if typ == ElementChoiceGrid {
			el.Rows = []string{"Row 1", "Row 2"}
		}
	case ElementRating:
		el.Question = "How would you rate this?"
		el.Rating = &RatingSettings{Kind: RatingStars, Min: 1, Max: 5, ScoreMultiplier: 1}
	case ElementOpenText:
		el.Question = "Tell us more"
		el.OpenText = &OpenTextSettings{Placeholder: "Type your answer...", Score: 10}
	case ElementLeadCapture:
		el.Question = "Where should we send your results?"
		el.LeadCapture = &LeadCaptureSettings{Fields: []LeadField{
			{Name: "name", Label: "Name", Kind: "text", Required: true},
			{Name: "email", Label: "Email", Kind: "email", Required: true},
		}}
	default:
		return Element{}, fmt.Errorf("%w: %q", ErrUnknownElementType, typ)
	}

	return el, nil
}

// NewNode builds an empty node of the given kind with a fresh id.
func NewNode(ids IDGenerator, kind NodeKind, pos Position) (Node, error) {
	n := Node{ID: ids.NewID(PrefixNode), Kind: kind, Position: pos}
	switch kind {
	case KindStart:
		n.Label = DefaultStartLabel
	case KindResult:
		n.Label = DefaultResultLabel
	case KindComposite:
		n.Elements = []Element{}
	default:
		return Node{}, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	return n, nil
}
