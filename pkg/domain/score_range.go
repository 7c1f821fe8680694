package domain

import (
	"encoding/json"
	"maps"
)

// ScoreRange maps an interval of accumulated points to result content.
// The engine stores and round-trips ranges; it never evaluates them. Keys
// other than the named fields are kept in Extra and written back unchanged.
type ScoreRange struct {
	ID          string  `json:"id,omitempty" mapstructure:"id"`
	Min         float64 `json:"min" mapstructure:"min"`
	Max         float64 `json:"max" mapstructure:"max"`
	Label       string  `json:"label" mapstructure:"label"`
	Title       string  `json:"title,omitempty" mapstructure:"title"`
	Description string  `json:"description,omitempty" mapstructure:"description"`
	ImageURL    string  `json:"imageUrl,omitempty" mapstructure:"imageUrl"`

	Extra map[string]any `json:"-" mapstructure:",remain"`
}

// scoreRangeFields has the fields of ScoreRange without its JSON methods.
type scoreRangeFields ScoreRange

var scoreRangeKeys = []string{"id", "min", "max", "label", "title", "description", "imageUrl"}

// Clone returns a copy that shares no Extra map with r.
func (r ScoreRange) Clone() ScoreRange {
	r.Extra = maps.Clone(r.Extra)
	return r
}

func (r ScoreRange) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(scoreRangeFields(r))
	if err != nil || len(r.Extra) == 0 {
		return data, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		if _, named := out[k]; !named {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

func (r *ScoreRange) UnmarshalJSON(data []byte) error {
	var fields scoreRangeFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range scoreRangeKeys {
		delete(all, k)
	}
	if len(all) > 0 {
		fields.Extra = all
	}
	*r = ScoreRange(fields)
	return nil
}
