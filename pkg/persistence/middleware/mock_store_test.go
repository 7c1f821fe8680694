package middleware_test

import (
	"context"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string]*ports.QuizRecord
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*ports.QuizRecord),
	}
}

func (s *MockStore) Save(ctx context.Context, quizID string, rec *ports.QuizRecord) error {
	s.data[quizID] = rec
	return nil
}

func (s *MockStore) Load(ctx context.Context, quizID string) (*ports.QuizRecord, error) {
	rec, ok := s.data[quizID]
	if !ok {
		return nil, domain.ErrQuizNotFound
	}
	return rec, nil
}

func (s *MockStore) Delete(ctx context.Context, quizID string) error {
	delete(s.data, quizID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.QuizStore = (*MockStore)(nil)
