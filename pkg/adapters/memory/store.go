package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/ports"
)

// Store implements ports.QuizStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*ports.QuizRecord
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*ports.QuizRecord),
	}
}

// Save persists a copy of the record.
func (s *Store) Save(ctx context.Context, quizID string, rec *ports.QuizRecord) error {
	cp := clone(rec)
	cp.ID = quizID

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[quizID] = cp
	return nil
}

// Load returns a copy so callers cannot reach stored bytes.
func (s *Store) Load(ctx context.Context, quizID string) (*ports.QuizRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[quizID]
	if !ok {
		return nil, domain.ErrQuizNotFound
	}
	return clone(rec), nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, quizID)
	return nil
}

// List returns stored quiz ids in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data)), nil
}

func clone(rec *ports.QuizRecord) *ports.QuizRecord {
	cp := *rec
	cp.CanvasData = slices.Clone(rec.CanvasData)
	cp.ScoreRanges = slices.Clone(rec.ScoreRanges)
	cp.Settings = maps.Clone(rec.Settings)
	return &cp
}
