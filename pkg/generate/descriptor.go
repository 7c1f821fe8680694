package generate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// OptionDescriptor is one answer of a generated choice question.
type OptionDescriptor struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

// Descriptor describes one generated question.
type Descriptor struct {
	Type            string             `json:"type"`
	Question        string             `json:"question,omitempty"`
	Options         []OptionDescriptor `json:"options,omitempty"`
	Placeholder     string             `json:"placeholder,omitempty"`
	RatingType      string             `json:"ratingType,omitempty"`
	MinValue        *int               `json:"minValue,omitempty"`
	MaxValue        *int               `json:"maxValue,omitempty"`
	ScoreMultiplier *float64           `json:"scoreMultiplier,omitempty"`
}

// Request is the payload supplied by the generation collaborator.
type Request struct {
	Questions   []Descriptor        `json:"questions"`
	ScoreRanges []domain.ScoreRange `json:"scoreRanges,omitempty"`
}

// DescriptorError reports a payload that does not match the descriptor schema.
type DescriptorError struct {
	// Index is the offending question, or -1 when the whole payload is at fault.
	Index int
	Err   error
}

func (e *DescriptorError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid generation request: %v", e.Err)
	}
	return fmt.Sprintf("invalid question %d: %v", e.Index, e.Err)
}

func (e *DescriptorError) Unwrap() error { return e.Err }

//go:embed descriptor.schema.json
var requestSchema []byte

const schemaURL = "schema://quizgraph/generate-request.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The jsonschema library expects a parsed JSON value (any), not raw bytes.
		var def any
		if err := json.Unmarshal(requestSchema, &def); err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// DecodeRequest parses and validates a generation payload. A bare JSON array
// is accepted as the question list with no score ranges.
func DecodeRequest(data []byte) (Request, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		wrapped, err := json.Marshal(map[string]json.RawMessage{"questions": data})
		if err != nil {
			return Request{}, &DescriptorError{Index: -1, Err: err}
		}
		data = wrapped
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Request{}, &DescriptorError{Index: -1, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	s, err := schema()
	if err != nil {
		return Request{}, fmt.Errorf("compile descriptor schema: %w", err)
	}
	if err := s.Validate(parsed); err != nil {
		return Request{}, &DescriptorError{Index: -1, Err: err}
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, &DescriptorError{Index: -1, Err: err}
	}
	for i, d := range req.Questions {
		if d.MinValue != nil && d.MaxValue != nil && *d.MinValue > *d.MaxValue {
			return Request{}, &DescriptorError{Index: i, Err: fmt.Errorf("minValue %d exceeds maxValue %d", *d.MinValue, *d.MaxValue)}
		}
	}
	return req, nil
}
