package memory_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/quizgraph/pkg/adapters/memory"
	"github.com/aretw0/quizgraph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunQuizStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	rec := &ports.QuizRecord{
		CanvasData: json.RawMessage(`{"nodes":[]}`),
		Settings:   map[string]any{"theme": "dark"},
	}
	require.NoError(t, store.Save(ctx, "q", rec))

	rec.Settings["theme"] = "light"
	rec.CanvasData[2] = 'X'

	loaded, err := store.Load(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, "dark", loaded.Settings["theme"])
	assert.JSONEq(t, `{"nodes":[]}`, string(loaded.CanvasData))
}
