package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Persisted field names.
const (
	FieldCanvasData  = "canvasData"
	FieldScoreRanges = "scoreRanges"
)

// FieldWarning reports a persisted field that could not be decoded and was
// replaced with its empty value.
type FieldWarning struct {
	Field string
	Err   error
}

func (w *FieldWarning) Error() string {
	return fmt.Sprintf("field %q ignored: %v", w.Field, w.Err)
}

func (w *FieldWarning) Unwrap() error { return w.Err }

// Canvas is the shape of canvasData.
type Canvas struct {
	Nodes []domain.Node `json:"nodes"`
	Edges []domain.Edge `json:"edges"`
}

// Encode builds the persisted record for a graph. canvasData is a JSON string.
func Encode(quizID string, g domain.QuizGraph, settings map[string]any) (*ports.QuizRecord, error) {
	canvas := Canvas{Nodes: g.Nodes, Edges: g.Edges}
	if canvas.Nodes == nil {
		canvas.Nodes = []domain.Node{}
	}
	if canvas.Edges == nil {
		canvas.Edges = []domain.Edge{}
	}
	inner, err := json.Marshal(canvas)
	if err != nil {
		return nil, fmt.Errorf("encode canvas: %w", err)
	}
	canvasData, err := json.Marshal(string(inner))
	if err != nil {
		return nil, fmt.Errorf("encode canvas string: %w", err)
	}

	ranges := g.ScoreRanges
	if ranges == nil {
		ranges = []domain.ScoreRange{}
	}
	scoreRanges, err := json.Marshal(ranges)
	if err != nil {
		return nil, fmt.Errorf("encode score ranges: %w", err)
	}

	return &ports.QuizRecord{
		ID:          quizID,
		CanvasData:  canvasData,
		ScoreRanges: scoreRanges,
		Settings:    settings,
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

// Decode rebuilds the graph from a persisted record. It never fails; fields
// that cannot be decoded are returned as warnings.
func Decode(rec *ports.QuizRecord) (domain.QuizGraph, []*FieldWarning) {
	var warnings []*FieldWarning
	g := domain.QuizGraph{Nodes: []domain.Node{}, Edges: []domain.Edge{}, ScoreRanges: []domain.ScoreRange{}}
	if rec == nil {
		return g, nil
	}

	canvas, nodeWarnings, err := DecodeCanvas(rec.CanvasData)
	if err != nil {
		warnings = append(warnings, &FieldWarning{Field: FieldCanvasData, Err: err})
	} else {
		g.Nodes, g.Edges = canvas.Nodes, canvas.Edges
		warnings = append(warnings, nodeWarnings...)
	}

	ranges, err := DecodeScoreRanges(rec.ScoreRanges)
	if err != nil {
		warnings = append(warnings, &FieldWarning{Field: FieldScoreRanges, Err: err})
	} else {
		g.ScoreRanges = ranges
	}
	return g, warnings
}

// DecodeCanvas accepts canvasData as a JSON-encoded string, a JSON object, a
// Go string, []byte, or an already-parsed map. Empty input yields an empty canvas.
//
// A node that cannot be normalised does not fail the canvas: it is kept with
// its stored kind when it still decodes as a node, and dropped otherwise. Each
// such node yields a warning. The error is reserved for a canvas that is not
// a structure at all.
func DecodeCanvas(v any) (Canvas, []*FieldWarning, error) {
	empty := Canvas{Nodes: []domain.Node{}, Edges: []domain.Edge{}}
	data, err := unwrap(v)
	if err != nil || data == nil {
		return empty, nil, err
	}

	var raw struct {
		Nodes []json.RawMessage `json:"nodes"`
		Edges []domain.Edge     `json:"edges"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return empty, nil, fmt.Errorf("decode canvas: %w", err)
	}
	out := Canvas{Nodes: make([]domain.Node, 0, len(raw.Nodes)), Edges: raw.Edges}
	if out.Edges == nil {
		out.Edges = []domain.Edge{}
	}
	var warnings []*FieldWarning
	for i, rn := range raw.Nodes {
		n, err := decodeNode(rn)
		if err == nil {
			out.Nodes = append(out.Nodes, n)
			continue
		}
		field := fmt.Sprintf("%s.nodes[%d]", FieldCanvasData, i)
		kept, ok := keepNode(rn)
		if !ok {
			warnings = append(warnings, &FieldWarning{Field: field, Err: fmt.Errorf("node dropped: %w", err)})
			continue
		}
		warnings = append(warnings, &FieldWarning{Field: field, Err: fmt.Errorf("node %q kept as stored: %w", kept.ID, err)})
		out.Nodes = append(out.Nodes, kept)
	}
	return out, warnings, nil
}

// keepNode decodes a node without normalising it. Nodes without an id cannot
// be referenced and are not kept.
func keepNode(data json.RawMessage) (domain.Node, bool) {
	var n domain.Node
	if err := json.Unmarshal(data, &n); err != nil || n.ID == "" {
		return domain.Node{}, false
	}
	return n, true
}

// DecodeScoreRanges accepts scoreRanges in the same shapes as DecodeCanvas,
// plus an already-parsed []any.
func DecodeScoreRanges(v any) ([]domain.ScoreRange, error) {
	if list, ok := v.([]any); ok {
		return decodeRangeMaps(list)
	}
	data, err := unwrap(v)
	if err != nil || data == nil {
		return []domain.ScoreRange{}, err
	}
	var out []domain.ScoreRange
	if err := json.Unmarshal(data, &out); err != nil {
		return []domain.ScoreRange{}, fmt.Errorf("decode score ranges: %w", err)
	}
	if out == nil {
		out = []domain.ScoreRange{}
	}
	return out, nil
}

func decodeRangeMaps(list []any) ([]domain.ScoreRange, error) {
	out := []domain.ScoreRange{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(list); err != nil {
		return []domain.ScoreRange{}, fmt.Errorf("decode score ranges: %w", err)
	}
	return out, nil
}

// unwrap normalises the accepted shapes into JSON bytes holding a structure.
// A JSON string is unquoted once, so double-encoded fields decode as well.
// nil means "absent".
func unwrap(v any) ([]byte, error) {
	var data []byte
	switch t := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		data = t
	case []byte:
		data = t
	case string:
		data = []byte(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		data = b
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode string field: %w", err)
		}
		return unwrap(s)
	}
	return data, nil
}

// Parse reads a quiz file. It accepts a persisted record (with canvasData)
// or a bare canvas that may carry scoreRanges next to nodes and edges.
// Only input that is not a JSON object is an error.
func Parse(data []byte) (domain.QuizGraph, map[string]any, []*FieldWarning, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return domain.QuizGraph{}, nil, nil, fmt.Errorf("parse quiz: %w", err)
	}
	if _, ok := top[FieldCanvasData]; ok {
		var rec ports.QuizRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return domain.QuizGraph{}, nil, nil, fmt.Errorf("parse quiz record: %w", err)
		}
		g, warnings := Decode(&rec)
		return g, rec.Settings, warnings, nil
	}
	g, warnings := Decode(&ports.QuizRecord{CanvasData: data, ScoreRanges: top[FieldScoreRanges]})
	return g, nil, warnings, nil
}
