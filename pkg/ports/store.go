package ports

import (
	"context"
	"encoding/json"
	"time"
)

// QuizRecord is the persisted shape of a quiz.
//
// CanvasData and ScoreRanges are kept raw: older writers stored them either as
// JSON-encoded strings or as plain structures, and both must load. Current
// writers store CanvasData as a string and ScoreRanges as an array.
type QuizRecord struct {
	ID          string          `json:"id"`
	CanvasData  json.RawMessage `json:"canvasData"`
	ScoreRanges json.RawMessage `json:"scoreRanges"`
	Settings    map[string]any  `json:"settings,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// QuizStore defines the interface for persisting quizzes.
type QuizStore interface {
	// Save persists the record under quizID, replacing any previous version.
	Save(ctx context.Context, quizID string, rec *QuizRecord) error

	// Load retrieves the record for quizID.
	// Returns domain.ErrQuizNotFound if the quiz does not exist.
	Load(ctx context.Context, quizID string) (*QuizRecord, error)

	// Delete removes the record. Deleting a missing quiz is not an error.
	Delete(ctx context.Context, quizID string) error

	// List returns the ids of every stored quiz.
	List(ctx context.Context) ([]string, error)
}
