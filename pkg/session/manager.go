package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/quizgraph/internal/logging"
	"github.com/aretw0/quizgraph/pkg/codec"
	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/editor"
	"github.com/aretw0/quizgraph/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns the live editors and their persistence.
// Per-quiz locks are reference counted so unused ones are collected.
type Manager struct {
	store ports.QuizStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	edMu    sync.Mutex
	editors map[string]*editor.Editor

	locker     ports.DistributedLocker
	lockTTL    time.Duration
	logger     *slog.Logger
	editorOpts []editor.Option
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager and the editors it opens.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEditorOptions are applied to every editor the Manager opens.
func WithEditorOptions(opts ...editor.Option) Option {
	return func(m *Manager) {
		m.editorOpts = append(m.editorOpts, opts...)
	}
}

// NewManager creates a Manager over store.
func NewManager(store ports.QuizStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		editors: make(map[string]*editor.Editor),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(quizID) after unlocking.
func (m *Manager) acquire(quizID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[quizID]
	if !exists {
		entry = &lockEntry{}
		m.locks[quizID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(quizID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[quizID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, quizID)
	}
}

// WithLock executes fn while holding the lock for the quiz.
func (m *Manager) WithLock(ctx context.Context, quizID string, fn func(context.Context) error) error {
	entry := m.acquire(quizID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(quizID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, quizID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"quiz_id", quizID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Open returns the live editor for quizID, loading it from the store on
// first use. Returns domain.ErrQuizNotFound for unknown quizzes.
func (m *Manager) Open(ctx context.Context, quizID string) (*editor.Editor, error) {
	var ed *editor.Editor
	err := m.WithLock(ctx, quizID, func(ctx context.Context) error {
		var err error
		ed, err = m.open(ctx, quizID)
		return err
	})
	return ed, err
}

// OpenOrCreate is Open, but an unknown quiz starts as an empty graph that
// is persisted immediately to reserve the id.
func (m *Manager) OpenOrCreate(ctx context.Context, quizID string) (*editor.Editor, error) {
	var ed *editor.Editor
	err := m.WithLock(ctx, quizID, func(ctx context.Context) error {
		var err error
		ed, err = m.open(ctx, quizID)
		if !errors.Is(err, domain.ErrQuizNotFound) {
			return err
		}
		ed = m.cache(quizID, domain.QuizGraph{}, nil)
		if _, err := m.save(ctx, ed); err != nil {
			m.evict(quizID)
			return fmt.Errorf("failed to initialize quiz: %w", err)
		}
		return nil
	})
	return ed, err
}

// Edit runs fn against the quiz's editor under the quiz lock.
func (m *Manager) Edit(ctx context.Context, quizID string, fn func(context.Context, *editor.Editor) error) error {
	return m.WithLock(ctx, quizID, func(ctx context.Context) error {
		ed, err := m.open(ctx, quizID)
		if err != nil {
			return err
		}
		return fn(ctx, ed)
	})
}

// Put replaces the quiz with the decoded record and persists it. A live
// editor keeps its subscribers and receives a graph_replaced event. When the
// store rejects the record the editor is dropped, so later reads fall back to
// the stored quiz.
func (m *Manager) Put(ctx context.Context, quizID string, rec *ports.QuizRecord) (*editor.Editor, error) {
	var ed *editor.Editor
	err := m.WithLock(ctx, quizID, func(ctx context.Context) error {
		g, warnings := codec.Decode(rec)
		m.logWarnings(quizID, warnings)

		m.edMu.Lock()
		live, ok := m.editors[quizID]
		m.edMu.Unlock()
		if ok {
			live.Replace(ctx, g)
			live.SetSettings(rec.Settings)
			ed = live
		} else {
			ed = m.cache(quizID, g, rec.Settings)
		}
		if _, err := m.save(ctx, ed); err != nil {
			m.evict(quizID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ed, nil
}

// Save persists the live editor and clears its dirty flag.
func (m *Manager) Save(ctx context.Context, quizID string) (*ports.QuizRecord, error) {
	var rec *ports.QuizRecord
	err := m.WithLock(ctx, quizID, func(ctx context.Context) error {
		ed, err := m.open(ctx, quizID)
		if err != nil {
			return err
		}
		rec, err = m.save(ctx, ed)
		return err
	})
	return rec, err
}

// Record returns the persisted shape of the quiz: the live editor's state
// when one is open, otherwise the stored record.
func (m *Manager) Record(ctx context.Context, quizID string) (*ports.QuizRecord, error) {
	m.edMu.Lock()
	ed, ok := m.editors[quizID]
	m.edMu.Unlock()
	if !ok {
		return m.store.Load(ctx, quizID)
	}
	g, settings, _ := ed.Snapshot()
	return codec.Encode(quizID, g, settings)
}

// Delete closes the editor and removes the quiz from the store.
func (m *Manager) Delete(ctx context.Context, quizID string) error {
	return m.WithLock(ctx, quizID, func(ctx context.Context) error {
		m.evict(quizID)
		return m.store.Delete(ctx, quizID)
	})
}

// Close evicts the editor without saving. Unsaved changes are lost.
func (m *Manager) Close(quizID string) {
	m.evict(quizID)
}

// CloseAll evicts every editor, logging the ones with unsaved changes.
func (m *Manager) CloseAll() {
	m.edMu.Lock()
	defer m.edMu.Unlock()
	for id, ed := range m.editors {
		if ed.Dirty() {
			m.logger.Warn("Closing quiz with unsaved changes", "quiz_id", id)
		}
		ed.Close()
		delete(m.editors, id)
	}
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying store.
func (m *Manager) Store() ports.QuizStore {
	return m.store
}

// open must run under the quiz lock.
func (m *Manager) open(ctx context.Context, quizID string) (*editor.Editor, error) {
	m.edMu.Lock()
	ed, ok := m.editors[quizID]
	m.edMu.Unlock()
	if ok {
		return ed, nil
	}

	rec, err := m.store.Load(ctx, quizID)
	if err != nil {
		if !errors.Is(err, domain.ErrQuizNotFound) {
			m.logger.Error("Failed to load quiz", "quiz_id", quizID, "err", err)
		}
		return nil, err
	}
	g, warnings := codec.Decode(rec)
	m.logWarnings(quizID, warnings)
	return m.cache(quizID, g, rec.Settings), nil
}

func (m *Manager) cache(quizID string, g domain.QuizGraph, settings map[string]any) *editor.Editor {
	opts := append([]editor.Option{
		editor.WithLogger(m.logger.With("quiz_id", quizID)),
		editor.WithSettings(settings),
	}, m.editorOpts...)
	ed := editor.New(quizID, g, opts...)

	m.edMu.Lock()
	defer m.edMu.Unlock()
	m.editors[quizID] = ed
	return ed
}

func (m *Manager) evict(quizID string) {
	m.edMu.Lock()
	defer m.edMu.Unlock()
	if ed, ok := m.editors[quizID]; ok {
		ed.Close()
		delete(m.editors, quizID)
	}
}

// save must run under the quiz lock.
func (m *Manager) save(ctx context.Context, ed *editor.Editor) (*ports.QuizRecord, error) {
	g, settings, _ := ed.Snapshot()
	rec, err := codec.Encode(ed.QuizID(), g, settings)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, ed.QuizID(), rec); err != nil {
		m.logger.Error("Failed to save quiz", "quiz_id", ed.QuizID(), "err", err)
		return nil, fmt.Errorf("failed to save quiz %s: %w", ed.QuizID(), err)
	}
	ed.MarkClean()
	return rec, nil
}

func (m *Manager) logWarnings(quizID string, warnings []*codec.FieldWarning) {
	for _, w := range warnings {
		m.logger.Warn("Malformed persisted field",
			"quiz_id", quizID,
			"field", w.Field,
			"err", w.Err,
		)
	}
}
