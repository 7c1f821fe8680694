package mutate

import (
	"fmt"
	"slices"

	"github.com/aretw0/quizgraph/pkg/domain"
)

// AddElement appends a default element of the given type to a composite node.
// The new element id is fresh.
func AddElement(g domain.QuizGraph, ids domain.IDGenerator, nodeID string, typ domain.ElementType) (*Change, error) {
	out := g.Clone()
	ni, err := compositeIndex(&out, nodeID)
	if err != nil {
		return nil, err
	}
	el, err := domain.NewElement(ids, typ)
	if err != nil {
		return nil, err
	}
	out.Nodes[ni].Elements = append(out.Nodes[ni].Elements, el)

	c := newChange(OpAddElement, out)
	c.Created = el.ID
	c.Layout = []string{nodeID}
	c.emit(nodeUpdated(nodeID, el.ID))
	return c, nil
}

// RemoveElement deletes an element from its node.
//
// Edges bound to the element's option sockets are left in place and become
// dangling. Reconnecting them is the author's job.
func RemoveElement(g domain.QuizGraph, nodeID, elementID string) (*Change, error) {
	out := g.Clone()
	ni, err := compositeIndex(&out, nodeID)
	if err != nil {
		return nil, err
	}
	ei := out.Nodes[ni].ElementIndex(elementID)
	if ei < 0 {
		return nil, fmt.Errorf("%w: %s in node %s", domain.ErrElementNotFound, elementID, nodeID)
	}
	out.Nodes[ni].Elements = slices.Delete(out.Nodes[ni].Elements, ei, ei+1)

	c := newChange(OpRemoveElement, out)
	c.Layout = []string{nodeID}
	c.emit(nodeUpdated(nodeID, elementID))
	return c, nil
}

// ReorderElements moves the element at from to position to. Element ids and
// option lists are untouched, so every existing socket survives.
func ReorderElements(g domain.QuizGraph, nodeID string, from, to int) (*Change, error) {
	out := g.Clone()
	ni, err := compositeIndex(&out, nodeID)
	if err != nil {
		return nil, err
	}
	els := out.Nodes[ni].Elements
	if from < 0 || from >= len(els) || to < 0 || to >= len(els) {
		return nil, fmt.Errorf("%w: move %d -> %d in %d elements", domain.ErrIndexOutOfRange, from, to, len(els))
	}
	moved := els[from]
	els = slices.Delete(els, from, from+1)
	els = slices.Insert(els, to, moved)
	out.Nodes[ni].Elements = els

	c := newChange(OpReorderElements, out)
	c.Layout = []string{nodeID}
	c.emit(nodeUpdated(nodeID, moved.ID))
	return c, nil
}

// ElementPatch lists the fields to overwrite on an element. Nil fields are kept.
// The element type never changes.
type ElementPatch struct {
	Question    *string                     `json:"question,omitempty" mapstructure:"question"`
	Content     *string                     `json:"content,omitempty" mapstructure:"content"`
	Rows        []string                    `json:"rows,omitempty" mapstructure:"rows"`
	Rating      *domain.RatingSettings      `json:"rating,omitempty" mapstructure:"rating"`
	OpenText    *domain.OpenTextSettings    `json:"openText,omitempty" mapstructure:"openText"`
	LeadCapture *domain.LeadCaptureSettings `json:"leadCapture,omitempty" mapstructure:"leadCapture"`
	Media       *domain.MediaSettings       `json:"media,omitempty" mapstructure:"media"`
	Game        *domain.GameSettings        `json:"game,omitempty" mapstructure:"game"`
}

// checkType rejects settings blocks that belong to another element type.
func (p ElementPatch) checkType(t domain.ElementType) error {
	if p.Rows != nil && t != domain.ElementChoiceGrid {
		return fmt.Errorf("rows on %s element: %w", t, domain.ErrNotChoice)
	}
	blocks := []struct {
		name  string
		set   bool
		types []domain.ElementType
	}{
		{"rating", p.Rating != nil, []domain.ElementType{domain.ElementRating}},
		{"openText", p.OpenText != nil, []domain.ElementType{domain.ElementOpenText}},
		{"leadCapture", p.LeadCapture != nil, []domain.ElementType{domain.ElementLeadCapture}},
		{"media", p.Media != nil, []domain.ElementType{domain.ElementImage, domain.ElementVideo, domain.ElementAudio}},
		{"game", p.Game != nil, []domain.ElementType{domain.ElementGame}},
	}
	for _, b := range blocks {
		if b.set && !slices.Contains(b.types, t) {
			return fmt.Errorf("%s on %s element: %w", b.name, t, domain.ErrSettingsMismatch)
		}
	}
	return nil
}

// UpdateElement overwrites the patched fields of an element.
// A settings block that does not match the element type fails the whole patch.
func UpdateElement(g domain.QuizGraph, elementID string, p ElementPatch) (*Change, error) {
	out := g.Clone()
	ni, ei, err := elementLocation(&out, elementID)
	if err != nil {
		return nil, err
	}
	el := &out.Nodes[ni].Elements[ei]
	if err := p.checkType(el.Type); err != nil {
		return nil, fmt.Errorf("update element %s: %w", elementID, err)
	}

	if p.Question != nil {
		el.Question = *p.Question
	}
	if p.Content != nil {
		el.Content = *p.Content
	}
	if p.Rows != nil {
		el.Rows = slices.Clone(p.Rows)
	}
	if p.Rating != nil {
		r := *p.Rating
		el.Rating = &r
	}
	if p.OpenText != nil {
		o := *p.OpenText
		el.OpenText = &o
	}
	if p.LeadCapture != nil {
		l := domain.LeadCaptureSettings{Fields: slices.Clone(p.LeadCapture.Fields)}
		el.LeadCapture = &l
	}
	if p.Media != nil {
		m := *p.Media
		el.Media = &m
	}
	if p.Game != nil {
		gs := *p.Game
		el.Game = &gs
	}

	c := newChange(OpUpdateElement, out)
	c.emit(nodeUpdated(out.Nodes[ni].ID, elementID))
	return c, nil
}
