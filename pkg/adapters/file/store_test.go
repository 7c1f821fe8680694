package file_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/quizgraph/pkg/adapters/file"
	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunQuizStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_WritesReadableJSON(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "quiz-1", &ports.QuizRecord{
		CanvasData:  json.RawMessage(`"{\"nodes\":[],\"edges\":[]}"`),
		ScoreRanges: json.RawMessage(`[]`),
	}))

	data, err := os.ReadFile(filepath.Join(dir, "quiz-1.json"))
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "quiz-1", raw["id"])
	assert.IsType(t, "", raw["canvasData"], "canvasData stays a string")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileStore_RejectsUnsafeIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "../escape", `a\b`, ".."} {
		err := store.Save(ctx, id, &ports.QuizRecord{})
		assert.ErrorIs(t, err, domain.ErrInvalidQuizID, id)
	}
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "absent"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
