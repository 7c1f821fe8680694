package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunQuizStoreContract runs a suite of tests to verify that a QuizStore
// implementation adheres to the interface contract.
func RunQuizStoreContract(t *testing.T, store QuizStore) {
	ctx := context.Background()
	quizID := "contract-quiz-" + time.Now().Format("20060102150405")

	canvas, err := json.Marshal(`{"nodes":[{"id":"s","type":"start"}],"edges":[]}`)
	require.NoError(t, err)
	newRecord := func(id string) *QuizRecord {
		return &QuizRecord{
			ID:          id,
			CanvasData:  canvas,
			ScoreRanges: json.RawMessage(`[{"id":"r1","min":0,"max":10,"label":"Low"}]`),
			Settings:    map[string]any{"theme": "dark"},
			UpdatedAt:   time.Now().UTC().Truncate(time.Second),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		rec := newRecord(quizID)
		require.NoError(t, store.Save(ctx, quizID, rec), "Save should not return error")

		loaded, err := store.Load(ctx, quizID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, quizID, loaded.ID)
		assert.JSONEq(t, string(rec.CanvasData), string(loaded.CanvasData))
		assert.JSONEq(t, string(rec.ScoreRanges), string(loaded.ScoreRanges))
		assert.Equal(t, "dark", loaded.Settings["theme"])
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		rec := newRecord(quizID)
		rec.ScoreRanges = json.RawMessage(`[]`)
		require.NoError(t, store.Save(ctx, quizID, rec))

		loaded, err := store.Load(ctx, quizID)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(loaded.ScoreRanges))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+quizID)
		assert.ErrorIs(t, err, domain.ErrQuizNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, quizID, newRecord(quizID)))

		require.NoError(t, store.Delete(ctx, quizID), "Delete should not return error")

		_, err := store.Load(ctx, quizID)
		assert.ErrorIs(t, err, domain.ErrQuizNotFound, "Load after Delete should return ErrQuizNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := quizID + "-1"
		id2 := quizID + "-2"
		require.NoError(t, store.Save(ctx, id1, newRecord(id1)))
		require.NoError(t, store.Save(ctx, id2, newRecord(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
