package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/quizgraph/pkg/adapters/memory"
	"github.com/aretw0/quizgraph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("quiz-%d", i)
		_, _ = mgr.OpenOrCreate(ctx, id)
		_ = mgr.Delete(ctx, id)
	}

	assert.Empty(t, mgr.locks, "lock entries must be released")
	assert.Empty(t, mgr.editors)
}

type recordingLocker struct {
	keys     []string
	released int
	err      error
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.keys = append(l.keys, key)
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &recordingLocker{}
	mgr := NewManager(memory.NewStore(), WithLocker(locker), WithLockTTL(time.Second))
	ctx := context.Background()

	_, err := mgr.OpenOrCreate(ctx, "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"quiz-1"}, locker.keys)
	assert.Equal(t, 1, locker.released)

	locker.err = errors.New("redis down")
	_, err = mgr.Save(ctx, "quiz-1")
	assert.ErrorContains(t, err, "distributed lock")
}
