package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newTestClient(t)
	ports.RunQuizStoreContract(t, NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newTestClient(t)

	clock := time.Unix(1_700_000_000, 0)
	store := NewFromClient(client, WithTTL(time.Second))
	store.now = func() time.Time { return clock }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "quiz-ttl", &ports.QuizRecord{ScoreRanges: json.RawMessage(`[]`)}))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "quiz-ttl")

	mr.FastForward(2 * time.Second)
	clock = clock.Add(2 * time.Second)

	_, err = store.Load(ctx, "quiz-ttl")
	assert.ErrorIs(t, err, domain.ErrQuizNotFound)

	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids, "expired ids are pruned from the index")
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewFromClient(client, WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "my-quiz", &ports.QuizRecord{}))

	assert.True(t, mr.Exists("custom:app:quiz:my-quiz"))
	assert.True(t, mr.Exists("custom:app:index"))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"my-quiz"}, ids)
}
