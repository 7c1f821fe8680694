// Package command translates requests from the rendering collaborator into
// editor operations, one request per operation.
//
// Requests arrive as JSON (HTTP) or as loosely typed maps (MCP tool
// arguments); both decode into a Command.
package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/editor"
	"github.com/aretw0/quizgraph/pkg/mutate"
	"github.com/mitchellh/mapstructure"
)

var (
	// ErrUnknownCommand is returned for an unrecognised op.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidCommand is returned when a required argument is missing.
	ErrInvalidCommand = errors.New("invalid command")
)

// Command is one authoring request. Op selects the operation; only the
// arguments it needs are read.
type Command struct {
	Op string `json:"op"`

	NodeID    string `json:"nodeId,omitempty"`
	ElementID string `json:"elementId,omitempty"`
	EdgeID    string `json:"edgeId,omitempty"`

	ElementType domain.ElementType `json:"elementType,omitempty"`
	Kind        domain.NodeKind    `json:"kind,omitempty"`
	Position    *domain.Position   `json:"position,omitempty"`
	Offset      *domain.Position   `json:"offset,omitempty"`

	Index *int `json:"index,omitempty"`
	From  *int `json:"from,omitempty"`
	To    *int `json:"to,omitempty"`

	Label string `json:"label,omitempty"`
	Score int    `json:"score,omitempty"`

	Source       string `json:"source,omitempty"`
	SourceSocket string `json:"sourceSocket,omitempty"`
	Target       string `json:"target,omitempty"`

	Element     *mutate.ElementPatch `json:"element,omitempty"`
	Option      *mutate.OptionPatch  `json:"option,omitempty"`
	Node        *mutate.NodePatch    `json:"node,omitempty"`
	ScoreRanges []domain.ScoreRange  `json:"scoreRanges,omitempty"`
}

// Decode parses a JSON command.
func Decode(data []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(data, &c); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return c, nil
}

// FromMap decodes a loosely typed command, as found in tool call arguments.
// Field names follow the JSON names; numbers may arrive as strings.
func FromMap(args map[string]any) (Command, error) {
	var c Command
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &c,
	})
	if err != nil {
		return Command{}, err
	}
	if err := dec.Decode(args); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return c, nil
}

// Apply runs the command against the editor.
func Apply(ctx context.Context, ed *editor.Editor, c Command) (editor.Result, error) {
	switch c.Op {
	case mutate.OpAddElement:
		if err := require(c.Op, "nodeId", c.NodeID, "elementType", string(c.ElementType)); err != nil {
			return editor.Result{}, err
		}
		return ed.AddElement(ctx, c.NodeID, c.ElementType)

	case mutate.OpRemoveElement:
		if err := require(c.Op, "nodeId", c.NodeID, "elementId", c.ElementID); err != nil {
			return editor.Result{}, err
		}
		return ed.RemoveElement(ctx, c.NodeID, c.ElementID)

	case mutate.OpReorderElements:
		if err := require(c.Op, "nodeId", c.NodeID); err != nil {
			return editor.Result{}, err
		}
		if c.From == nil || c.To == nil {
			return editor.Result{}, fmt.Errorf("%w: %s needs from and to", ErrInvalidCommand, c.Op)
		}
		return ed.ReorderElements(ctx, c.NodeID, *c.From, *c.To)

	case mutate.OpUpdateElement:
		if err := require(c.Op, "elementId", c.ElementID); err != nil {
			return editor.Result{}, err
		}
		if c.Element == nil {
			return editor.Result{}, fmt.Errorf("%w: %s needs element", ErrInvalidCommand, c.Op)
		}
		return ed.UpdateElement(ctx, c.ElementID, *c.Element)

	case mutate.OpAddOption:
		if err := require(c.Op, "elementId", c.ElementID); err != nil {
			return editor.Result{}, err
		}
		index := mutate.AppendIndex
		if c.Index != nil {
			index = *c.Index
		}
		return ed.AddOption(ctx, c.ElementID, index, c.Label, c.Score)

	case mutate.OpRemoveOption:
		if err := require(c.Op, "elementId", c.ElementID); err != nil {
			return editor.Result{}, err
		}
		if c.Index == nil {
			return editor.Result{}, fmt.Errorf("%w: %s needs index", ErrInvalidCommand, c.Op)
		}
		return ed.RemoveOption(ctx, c.ElementID, *c.Index)

	case mutate.OpUpdateOption:
		if err := require(c.Op, "elementId", c.ElementID); err != nil {
			return editor.Result{}, err
		}
		if c.Index == nil || c.Option == nil {
			return editor.Result{}, fmt.Errorf("%w: %s needs index and option", ErrInvalidCommand, c.Op)
		}
		return ed.UpdateOption(ctx, c.ElementID, *c.Index, *c.Option)

	case mutate.OpAddNode:
		if err := require(c.Op, "kind", string(c.Kind)); err != nil {
			return editor.Result{}, err
		}
		return ed.AddNode(ctx, c.Kind, position(c.Position))

	case mutate.OpRemoveNode:
		if err := require(c.Op, "nodeId", c.NodeID); err != nil {
			return editor.Result{}, err
		}
		return ed.RemoveNode(ctx, c.NodeID)

	case mutate.OpMoveNode:
		if err := require(c.Op, "nodeId", c.NodeID); err != nil {
			return editor.Result{}, err
		}
		if c.Position == nil {
			return editor.Result{}, fmt.Errorf("%w: %s needs position", ErrInvalidCommand, c.Op)
		}
		return ed.MoveNode(ctx, c.NodeID, *c.Position)

	case mutate.OpUpdateNode:
		if err := require(c.Op, "nodeId", c.NodeID); err != nil {
			return editor.Result{}, err
		}
		if c.Node == nil {
			return editor.Result{}, fmt.Errorf("%w: %s needs node", ErrInvalidCommand, c.Op)
		}
		return ed.UpdateNode(ctx, c.NodeID, *c.Node)

	case mutate.OpDuplicateNode:
		if err := require(c.Op, "nodeId", c.NodeID); err != nil {
			return editor.Result{}, err
		}
		offset := domain.Position{X: 40, Y: 40}
		if c.Offset != nil {
			offset = *c.Offset
		}
		return ed.DuplicateNode(ctx, c.NodeID, offset)

	case mutate.OpConnect:
		if err := require(c.Op, "source", c.Source, "target", c.Target); err != nil {
			return editor.Result{}, err
		}
		return ed.Connect(ctx, c.Source, c.SourceSocket, c.Target)

	case mutate.OpDisconnect:
		if err := require(c.Op, "edgeId", c.EdgeID); err != nil {
			return editor.Result{}, err
		}
		return ed.Disconnect(ctx, c.EdgeID)

	case mutate.OpSetScoreRanges:
		return ed.SetScoreRanges(ctx, c.ScoreRanges)
	}
	return editor.Result{}, fmt.Errorf("%w: %q", ErrUnknownCommand, c.Op)
}

// Ops lists every supported op.
func Ops() []string {
	return []string{
		mutate.OpAddElement, mutate.OpRemoveElement, mutate.OpReorderElements, mutate.OpUpdateElement,
		mutate.OpAddOption, mutate.OpRemoveOption, mutate.OpUpdateOption,
		mutate.OpAddNode, mutate.OpRemoveNode, mutate.OpMoveNode, mutate.OpUpdateNode, mutate.OpDuplicateNode,
		mutate.OpConnect, mutate.OpDisconnect, mutate.OpSetScoreRanges,
	}
}

// require checks name/value pairs for empty values.
func require(op string, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return fmt.Errorf("%w: %s needs %s", ErrInvalidCommand, op, pairs[i])
		}
	}
	return nil
}

func position(p *domain.Position) domain.Position {
	if p == nil {
		return domain.Position{}
	}
	return *p
}
