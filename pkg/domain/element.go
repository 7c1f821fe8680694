package domain

import "slices"

// ElementType tags the closed set of element variants.
type ElementType string

// Passive content.
const (
	ElementText   ElementType = "text"
	ElementImage  ElementType = "image"
	ElementVideo  ElementType = "video"
	ElementAudio  ElementType = "audio"
	ElementScript ElementType = "script"
	ElementGame   ElementType = "game"
)

// Interactive and scoring variants.
const (
	ElementChoiceSingle   ElementType = "choice-single"
	ElementChoiceMultiple ElementType = "choice-multiple"
	ElementChoiceGrid     ElementType = "choice-grid"
	ElementRating         ElementType = "rating"
	ElementOpenText       ElementType = "open-text"
	ElementLeadCapture    ElementType = "lead-capture"
)

// ElementTypes lists every known element type in a stable order.
var ElementTypes = []ElementType{
	ElementText, ElementImage, ElementVideo, ElementAudio, ElementScript, ElementGame,
	ElementChoiceSingle, ElementChoiceMultiple, ElementChoiceGrid,
	ElementRating, ElementOpenText, ElementLeadCapture,
}

// Valid reports whether t is a known element type.
func (t ElementType) Valid() bool {
	return slices.Contains(ElementTypes, t)
}

// HasOptions reports whether elements of this type hold an ordered option list
// and therefore expose one outbound socket per option.
func (t ElementType) HasOptions() bool {
	switch t {
	case ElementChoiceSingle, ElementChoiceMultiple, ElementChoiceGrid:
		return true
	}
	return false
}

// Scoring reports whether elements of this type contribute points.
func (t ElementType) Scoring() bool {
	return t.HasOptions() || t == ElementRating || t == ElementOpenText
}

// Interactive reports whether elements of this type collect respondent input.
func (t ElementType) Interactive() bool {
	return t.Scoring() || t == ElementLeadCapture
}

// RatingKind selects the rating widget.
type RatingKind string

const (
	RatingNumeric RatingKind = "numeric"
	RatingStars   RatingKind = "stars"
	RatingSlider  RatingKind = "slider"
)

// RatingSettings configures a rating element. Its single implicit score is
// the selected value times ScoreMultiplier.
type RatingSettings struct {
	Kind            RatingKind `json:"ratingType"`
	Min             int        `json:"minValue"`
	Max             int        `json:"maxValue"`
	ScoreMultiplier float64    `json:"scoreMultiplier"`
}

// OpenTextSettings configures a free-text answer. Any non-empty answer earns Score.
type OpenTextSettings struct {
	Placeholder string `json:"placeholder,omitempty"`
	Multiline   bool   `json:"multiline,omitempty"`
	Score       int    `json:"score"`
}

// LeadField is one input of a lead-capture form.
type LeadField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	Required bool   `json:"required,omitempty"`
}

// LeadCaptureSettings configures a lead-capture form. It carries no score.
type LeadCaptureSettings struct {
	Fields []LeadField `json:"fields"`
}

// MediaSettings holds the source of image, video and audio elements.
type MediaSettings struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// GameSettings configures an embedded mini-game.
type GameSettings struct {
	Kind   string         `json:"kind"`
	Config map[string]any `json:"config,omitempty"`
}

// Element is a typed unit of content owned by exactly one composite node.
//
// Only the settings block matching Type is populated; the rest stay nil.
type Element struct {
	ID   string      `json:"id"`
	Type ElementType `json:"type"`

	// Question is the prompt of interactive elements.
	Question string `json:"question,omitempty"`
	// Content is the body of text and script elements.
	Content string `json:"content,omitempty"`

	// Options belong to choice elements. Order is the socket order.
	Options []Option `json:"options,omitempty"`
	// Rows are the row labels of a choice grid; Options are its columns.
	Rows []string `json:"rows,omitempty"`

	Rating      *RatingSettings      `json:"rating,omitempty"`
	OpenText    *OpenTextSettings    `json:"openText,omitempty"`
	LeadCapture *LeadCaptureSettings `json:"leadCapture,omitempty"`
	Media       *MediaSettings       `json:"media,omitempty"`
	Game        *GameSettings        `json:"game,omitempty"`
}

// HasOptions reports whether the element exposes per-option sockets.
func (e Element) HasOptions() bool { return e.Type.HasOptions() }

// IsScoring reports whether the element contributes points.
func (e Element) IsScoring() bool { return e.Type.Scoring() }

// IsInteractive reports whether the element collects respondent input.
func (e Element) IsInteractive() bool { return e.Type.Interactive() }

// IsLeadCapture reports whether the element is a lead-capture form.
func (e Element) IsLeadCapture() bool { return e.Type == ElementLeadCapture }

// Scores returns the points the element can award: one entry per option for
// choice elements, the multiplier for ratings and the flat score for open
// text. Non-scoring elements return nil.
func (e Element) Scores() []float64 {
	switch {
	case e.HasOptions():
		out := make([]float64, len(e.Options))
		for i, o := range e.Options {
			out[i] = float64(o.Score)
		}
		return out
	case e.Type == ElementRating:
		if e.Rating == nil {
			return []float64{0}
		}
		return []float64{e.Rating.ScoreMultiplier}
	case e.Type == ElementOpenText:
		if e.OpenText == nil {
			return []float64{0}
		}
		return []float64{float64(e.OpenText.Score)}
	}
	return nil
}

// AllScoresZero reports whether a scoring element awards nothing at all.
// A choice element without options counts as all-zero.
func (e Element) AllScoresZero() bool {
	if !e.IsScoring() {
		return false
	}
	for _, s := range e.Scores() {
		if s != 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	out := e
	out.Options = slices.Clone(e.Options)
	out.Rows = slices.Clone(e.Rows)
	if e.Rating != nil {
		r := *e.Rating
		out.Rating = &r
	}
	if e.OpenText != nil {
		o := *e.OpenText
		out.OpenText = &o
	}
	if e.LeadCapture != nil {
		l := LeadCaptureSettings{Fields: slices.Clone(e.LeadCapture.Fields)}
		out.LeadCapture = &l
	}
	if e.Media != nil {
		m := *e.Media
		out.Media = &m
	}
	if e.Game != nil {
		g := GameSettings{Kind: e.Game.Kind}
		if e.Game.Config != nil {
			g.Config = make(map[string]any, len(e.Game.Config))
			for k, v := range e.Game.Config {
				g.Config[k] = v
			}
		}
		out.Game = &g
	}
	return out
}
