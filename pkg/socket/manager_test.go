package socket

import (
	"sync"
	"testing"
	"time"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	nodeID string
	phase  domain.SignalPhase
}

type recorder struct {
	mu      sync.Mutex
	signals []recorded
}

func (r *recorder) record(nodeID string, phase domain.SignalPhase, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, recorded{nodeID, phase})
}

func (r *recorder) snapshot() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.signals...)
}

func TestManager_DoubleSignal(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.record, WithDelay(10*time.Millisecond))
	node, _ := choiceNode(t, "q1")

	require.True(t, m.Observe(node))
	assert.Equal(t, []recorded{{"q1", domain.PhaseImmediate}}, rec.snapshot())

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, recorded{"q1", domain.PhaseDeferred}, rec.snapshot()[1])
	assert.Equal(t, 0, m.Pending())
}

func TestManager_UnchangedFingerprintIsSilent(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.record, WithDelay(time.Hour))
	node, _ := choiceNode(t, "q1")

	require.True(t, m.Observe(node))
	node.Elements[0].Question = "edited prompt"
	assert.False(t, m.Observe(node))
	assert.Len(t, rec.snapshot(), 1)
	m.Reset()
}

func TestManager_ForgetCancelsDeferred(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.record, WithDelay(20*time.Millisecond))
	node, _ := choiceNode(t, "q1")

	m.Observe(node)
	require.Equal(t, 1, m.Pending())
	m.Forget("q1")
	assert.Equal(t, 0, m.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []recorded{{"q1", domain.PhaseImmediate}}, rec.snapshot())

	_, ok := m.Fingerprint("q1")
	assert.False(t, ok)
}

func TestManager_NewerChangeSupersedesPending(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.record, WithDelay(20*time.Millisecond))
	node, _ := choiceNode(t, "q1")

	m.Observe(node)
	node.Elements[0].Options = node.Elements[0].Options[:1]
	m.Observe(node)
	assert.Equal(t, 1, m.Pending())

	require.Eventually(t, func() bool { return m.Pending() == 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	deferred := 0
	for _, s := range rec.snapshot() {
		if s.phase == domain.PhaseDeferred {
			deferred++
		}
	}
	assert.Equal(t, 1, deferred, "only the latest change gets its deferred signal")
}

func TestManager_TrackIsSilent(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.record, WithDelay(time.Millisecond))
	node, _ := choiceNode(t, "q1")

	m.Track(node)
	assert.False(t, m.Observe(node), "tracked fingerprint is already known")
	assert.Empty(t, rec.snapshot())
	assert.Zero(t, m.Pending())
}
