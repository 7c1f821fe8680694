// Package postgres stores quizzes in a PostgreSQL table through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/ports"
	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS quizzes (
	id           TEXT PRIMARY KEY,
	canvas_data  JSONB NOT NULL,
	score_ranges JSONB NOT NULL,
	settings     JSONB,
	updated_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quizzes_updated_at ON quizzes(updated_at DESC);
`

// Store implements ports.QuizStore over a *sql.DB.
type Store struct {
	db *sql.DB
}

// Open connects to dsn, pings it and ensures the table exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	s, err := NewFromDB(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewFromDB wraps an existing handle and ensures the table exists.
func NewFromDB(ctx context.Context, db *sql.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create quizzes table: %w", err)
	}
	return &Store{db: db}, nil
}

// Save upserts the record.
func (s *Store) Save(ctx context.Context, quizID string, rec *ports.QuizRecord) error {
	if quizID == "" {
		return domain.ErrInvalidQuizID
	}
	settings, err := json.Marshal(rec.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}

	const q = `
		INSERT INTO quizzes (id, canvas_data, score_ranges, settings, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			canvas_data = EXCLUDED.canvas_data,
			score_ranges = EXCLUDED.score_ranges,
			settings = EXCLUDED.settings,
			updated_at = EXCLUDED.updated_at
	`
	_, err = s.db.ExecContext(ctx, q, quizID,
		jsonOrNull(rec.CanvasData), jsonOrNull(rec.ScoreRanges), settings, updated)
	if err != nil {
		return fmt.Errorf("failed to save quiz: %w", err)
	}
	return nil
}

// Load retrieves the record.
func (s *Store) Load(ctx context.Context, quizID string) (*ports.QuizRecord, error) {
	const q = `SELECT canvas_data, score_ranges, settings, updated_at FROM quizzes WHERE id = $1`

	var (
		canvas, ranges, settings []byte
		rec                      = ports.QuizRecord{ID: quizID}
	)
	err := s.db.QueryRowContext(ctx, q, quizID).Scan(&canvas, &ranges, &settings, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	rec.CanvasData = canvas
	rec.ScoreRanges = ranges
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &rec.Settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
		}
	}
	return &rec, nil
}

// Delete removes the row.
func (s *Store) Delete(ctx context.Context, quizID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = $1`, quizID)
	return err
}

// List returns ids, most recently updated first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM quizzes ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func jsonOrNull(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}
