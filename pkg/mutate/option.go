package mutate

import (
	"fmt"
	"slices"

	"github.com/aretw0/quizgraph/pkg/domain"
)

// AppendIndex asks AddOption to append at the end of the list.
const AppendIndex = -1

// AddOption inserts a new option into a choice element at index, or appends
// it when index is AppendIndex or the list length. Appending never
// invalidates an existing socket; inserting before existing options shifts
// the meaning of every later socket index.
func AddOption(g domain.QuizGraph, ids domain.IDGenerator, elementID string, index int, label string, score int) (*Change, error) {
	out := g.Clone()
	ni, ei, err := elementLocation(&out, elementID)
	if err != nil {
		return nil, err
	}
	el := &out.Nodes[ni].Elements[ei]
	if !el.HasOptions() {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrNotChoice, elementID, el.Type)
	}
	if index == AppendIndex {
		index = len(el.Options)
	}
	if index < 0 || index > len(el.Options) {
		return nil, fmt.Errorf("%w: option %d of %d", domain.ErrIndexOutOfRange, index, len(el.Options))
	}
	opt := domain.NewOption(ids, label, score)
	el.Options = slices.Insert(el.Options, index, opt)

	nodeID := out.Nodes[ni].ID
	c := newChange(OpAddOption, out)
	c.Created = opt.ID
	c.Layout = []string{nodeID}
	c.emit(nodeUpdated(nodeID, elementID))
	return c, nil
}

// RemoveOption deletes the option at index.
//
// Sockets are positional: every edge bound to an index above the removed one
// now refers to the option that shifted into that slot, and an edge bound to
// the last index dangles. Edges are not touched.
func RemoveOption(g domain.QuizGraph, elementID string, index int) (*Change, error) {
	out := g.Clone()
	ni, ei, err := elementLocation(&out, elementID)
	if err != nil {
		return nil, err
	}
	el := &out.Nodes[ni].Elements[ei]
	if !el.HasOptions() {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrNotChoice, elementID, el.Type)
	}
	if index < 0 || index >= len(el.Options) {
		return nil, fmt.Errorf("%w: option %d of %d", domain.ErrIndexOutOfRange, index, len(el.Options))
	}
	el.Options = slices.Delete(el.Options, index, index+1)

	nodeID := out.Nodes[ni].ID
	c := newChange(OpRemoveOption, out)
	c.Layout = []string{nodeID}
	c.emit(nodeUpdated(nodeID, elementID))
	return c, nil
}

// OptionPatch lists the option fields to overwrite. Nil fields are kept.
type OptionPatch struct {
	Label *string `json:"label,omitempty" mapstructure:"label"`
	Icon  *string `json:"icon,omitempty" mapstructure:"icon"`
	Image *string `json:"image,omitempty" mapstructure:"image"`
	Score *int    `json:"score,omitempty" mapstructure:"score"`
}

// UpdateOption overwrites the patched fields of the option at index.
func UpdateOption(g domain.QuizGraph, elementID string, index int, p OptionPatch) (*Change, error) {
	out := g.Clone()
	ni, ei, err := elementLocation(&out, elementID)
	if err != nil {
		return nil, err
	}
	el := &out.Nodes[ni].Elements[ei]
	if !el.HasOptions() {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrNotChoice, elementID, el.Type)
	}
	if index < 0 || index >= len(el.Options) {
		return nil, fmt.Errorf("%w: option %d of %d", domain.ErrIndexOutOfRange, index, len(el.Options))
	}
	opt := &el.Options[index]
	if p.Label != nil {
		opt.Label = *p.Label
	}
	if p.Icon != nil {
		opt.Icon = *p.Icon
	}
	if p.Image != nil {
		opt.Image = *p.Image
	}
	if p.Score != nil {
		opt.Score = *p.Score
	}

	c := newChange(OpUpdateOption, out)
	c.emit(nodeUpdated(out.Nodes[ni].ID, elementID))
	return c, nil
}
