package socket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/quizgraph/internal/logging"
	"github.com/aretw0/quizgraph/pkg/domain"
)

// DefaultDelay is the wait before the deferred recompute signal.
const DefaultDelay = 50 * time.Millisecond

// SignalFunc receives recompute signals for a node.
type SignalFunc func(nodeID string, phase domain.SignalPhase, fingerprint string)

// Manager tracks node fingerprints and emits recompute signals.
//
// On every fingerprint change it signals immediately and once more after the
// configured delay, for hosts whose layout pass settles after the model
// update. Each node owns at most one pending deferred signal; a newer change
// supersedes it and Forget cancels it. Safe for concurrent use.
type Manager struct {
	signal SignalFunc
	delay  time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	prints  map[string]string
	pending map[string]pendingSignal
	seq     uint64
}

type pendingSignal struct {
	timer *time.Timer
	gen   uint64
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithDelay sets the deferred signal delay.
func WithDelay(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.delay = d
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager that delivers signals to fn.
func NewManager(fn SignalFunc, opts ...ManagerOption) *Manager {
	m := &Manager{
		signal:  fn,
		delay:   DefaultDelay,
		logger:  logging.NewNop(),
		prints:  make(map[string]string),
		pending: make(map[string]pendingSignal),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Observe records the node's current fingerprint. When it differs from the
// last one seen (or the node is new) it signals and reports true.
func (m *Manager) Observe(n domain.Node) bool {
	fp := Fingerprint(n)

	m.mu.Lock()
	if prev, seen := m.prints[n.ID]; seen && prev == fp {
		m.mu.Unlock()
		return false
	}
	m.prints[n.ID] = fp

	if p, ok := m.pending[n.ID]; ok {
		p.timer.Stop()
	}
	m.seq++
	gen := m.seq
	nodeID := n.ID
	m.pending[nodeID] = pendingSignal{
		gen:   gen,
		timer: time.AfterFunc(m.delay, func() { m.fireDeferred(nodeID, gen) }),
	}
	m.mu.Unlock()

	m.emit(nodeID, domain.PhaseImmediate, fp)
	return true
}

// Track records fingerprints without signalling. Use it for nodes the host
// renders from scratch, such as a freshly loaded graph.
func (m *Manager) Track(nodes ...domain.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range nodes {
		m.prints[n.ID] = Fingerprint(n)
	}
}

// Forget drops the node and cancels its pending deferred signal.
func (m *Manager) Forget(nodeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.pending[nodeID]; ok {
		p.timer.Stop()
		delete(m.pending, nodeID)
	}
	delete(m.prints, nodeID)
}

// Reset forgets every node.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, p := range m.pending {
		p.timer.Stop()
		delete(m.pending, id)
	}
	m.prints = make(map[string]string)
}

// Pending returns the number of deferred signals not yet delivered.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Fingerprint returns the last fingerprint observed for the node.
func (m *Manager) Fingerprint(nodeID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fp, ok := m.prints[nodeID]
	return fp, ok
}

func (m *Manager) fireDeferred(nodeID string, gen uint64) {
	m.mu.Lock()
	p, ok := m.pending[nodeID]
	if !ok || p.gen != gen {
		// Superseded by a newer change, or the node was removed.
		m.mu.Unlock()
		m.logger.Debug("Deferred socket signal dropped", "node_id", nodeID)
		return
	}
	delete(m.pending, nodeID)
	fp := m.prints[nodeID]
	m.mu.Unlock()

	m.emit(nodeID, domain.PhaseDeferred, fp)
}

func (m *Manager) emit(nodeID string, phase domain.SignalPhase, fp string) {
	if m.signal != nil {
		m.signal(nodeID, phase, fp)
	}
}
