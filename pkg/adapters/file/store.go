package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/ports"
)

const ext = ".json"

// Store implements ports.QuizStore using the local filesystem.
// Each quiz is one JSON file in BasePath.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".quizgraph/quizzes".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".quizgraph", "quizzes")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(quizID string) (string, error) {
	if quizID == "" || strings.ContainsAny(quizID, `/\`) || quizID == "." || quizID == ".." {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidQuizID, quizID)
	}
	return filepath.Join(s.BasePath, quizID+ext), nil
}

// Save writes the record atomically: temp file, fsync, rename.
func (s *Store) Save(ctx context.Context, quizID string, rec *ports.QuizRecord) error {
	destPath, err := s.path(quizID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure quiz directory: %w", err)
	}

	cp := *rec
	cp.ID = quizID
	data, err := json.MarshalIndent(&cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal quiz: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+quizID+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads the record for quizID.
func (s *Store) Load(ctx context.Context, quizID string) (*ports.QuizRecord, error) {
	p, err := s.path(quizID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to read quiz file: %w", err)
	}

	var rec ports.QuizRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quiz: %w", err)
	}
	return &rec, nil
}

// Delete removes the quiz file.
func (s *Store) Delete(ctx context.Context, quizID string) error {
	p, err := s.path(quizID)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete quiz file: %w", err)
	}
	return nil
}

// List returns the ids of every quiz file, skipping in-flight temp files.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	return ids, nil
}
