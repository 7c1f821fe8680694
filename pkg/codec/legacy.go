package codec

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Legacy single-purpose node kinds.
const (
	legacyQuestion = "question"
	legacyLeadForm = "lead-form"
)

type legacyOption struct {
	ID    string `mapstructure:"id"`
	Label string `mapstructure:"label"`
	Text  string `mapstructure:"text"`
	Icon  string `mapstructure:"icon"`
	Image string `mapstructure:"image"`
	Score int    `mapstructure:"score"`
}

// legacyNode is the flat shape older editors stored for one-element nodes.
type legacyNode struct {
	ID           string             `mapstructure:"id"`
	Type         string             `mapstructure:"type"`
	Position     domain.Position    `mapstructure:"position"`
	Label        string             `mapstructure:"label"`
	Question     string             `mapstructure:"question"`
	Content      string             `mapstructure:"content"`
	QuestionType string             `mapstructure:"questionType"`
	Options      []legacyOption     `mapstructure:"options"`
	Rows         []string           `mapstructure:"rows"`
	Placeholder  string             `mapstructure:"placeholder"`
	RatingType   string             `mapstructure:"ratingType"`
	MinValue     *int               `mapstructure:"minValue"`
	MaxValue     *int               `mapstructure:"maxValue"`
	Multiplier   *float64           `mapstructure:"scoreMultiplier"`
	Score        *int               `mapstructure:"score"`
	Fields       []domain.LeadField `mapstructure:"fields"`
	URL          string             `mapstructure:"url"`
}

// decodeNode decodes current nodes directly and normalises legacy ones.
func decodeNode(data json.RawMessage) (domain.Node, error) {
	var head struct {
		Type domain.NodeKind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return domain.Node{}, err
	}
	if head.Type.Valid() {
		var n domain.Node
		if err := json.Unmarshal(data, &n); err != nil {
			return domain.Node{}, err
		}
		return n, nil
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return domain.Node{}, err
	}
	return normalizeLegacy(fields)
}

// normalizeLegacy turns a legacy node into a composite holding one element.
// The element reuses the node id, so legacy socket ids of the form
// "<nodeID>-option-<i>" keep resolving.
func normalizeLegacy(fields map[string]any) (domain.Node, error) {
	// Canvas libraries nest the payload under "data"; top-level keys win.
	if data, ok := fields["data"].(map[string]any); ok {
		merged := maps.Clone(data)
		maps.Copy(merged, fields)
		fields = merged
	}

	var ln legacyNode
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &ln,
	})
	if err != nil {
		return domain.Node{}, err
	}
	if err := dec.Decode(fields); err != nil {
		return domain.Node{}, fmt.Errorf("legacy node: %w", err)
	}

	typ, err := legacyElementType(ln)
	if err != nil {
		return domain.Node{}, err
	}
	el := domain.Element{ID: ln.ID, Type: typ, Question: ln.Question, Content: ln.Content}

	switch {
	case typ.HasOptions():
		for i, o := range ln.Options {
			label := o.Label
			if label == "" {
				label = o.Text
			}
			id := o.ID
			if id == "" {
				id = fmt.Sprintf("%s-opt-%d", ln.ID, i)
			}
			el.Options = append(el.Options, domain.Option{ID: id, Label: label, Icon: o.Icon, Image: o.Image, Score: o.Score})
		}
		el.Rows = ln.Rows
	case typ == domain.ElementRating:
		el.Rating = &domain.RatingSettings{Kind: domain.RatingKind(ln.RatingType), Min: 1, Max: 5, ScoreMultiplier: 1}
		if el.Rating.Kind == "" {
			el.Rating.Kind = domain.RatingStars
		}
		if ln.MinValue != nil {
			el.Rating.Min = *ln.MinValue
		}
		if ln.MaxValue != nil {
			el.Rating.Max = *ln.MaxValue
		}
		if ln.Multiplier != nil {
			el.Rating.ScoreMultiplier = *ln.Multiplier
		}
	case typ == domain.ElementOpenText:
		el.OpenText = &domain.OpenTextSettings{Placeholder: ln.Placeholder}
		if ln.Score != nil {
			el.OpenText.Score = *ln.Score
		}
	case typ == domain.ElementLeadCapture:
		el.LeadCapture = &domain.LeadCaptureSettings{Fields: ln.Fields}
	case typ == domain.ElementImage || typ == domain.ElementVideo || typ == domain.ElementAudio:
		el.Media = &domain.MediaSettings{URL: ln.URL}
	}

	return domain.Node{
		ID:       ln.ID,
		Kind:     domain.KindComposite,
		Position: ln.Position,
		Label:    ln.Label,
		Elements: []domain.Element{el},
	}, nil
}

func legacyElementType(ln legacyNode) (domain.ElementType, error) {
	switch ln.Type {
	case legacyQuestion:
		switch ln.QuestionType {
		case "", "single":
			return domain.ElementChoiceSingle, nil
		case "multiple":
			return domain.ElementChoiceMultiple, nil
		case "grid":
			return domain.ElementChoiceGrid, nil
		}
		if t := domain.ElementType(ln.QuestionType); t.Valid() {
			return t, nil
		}
		return "", fmt.Errorf("%w: question type %q", domain.ErrUnknownElementType, ln.QuestionType)
	case legacyLeadForm:
		return domain.ElementLeadCapture, nil
	}
	if t := domain.ElementType(ln.Type); t.Valid() {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidKind, ln.Type)
}
