package editor

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/aretw0/quizgraph/internal/logging"
	"github.com/aretw0/quizgraph/pkg/diagnostics"
	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/mutate"
	"github.com/aretw0/quizgraph/pkg/ports"
	"github.com/aretw0/quizgraph/pkg/socket"
)

// Result describes an applied operation.
type Result struct {
	Op string `json:"op"`
	// Created is the id of the node, element, option or edge the operation made.
	Created string `json:"created,omitempty"`
	Dirty   bool   `json:"dirty"`
}

// Editor is the session-scoped owner of one QuizGraph. Safe for concurrent
// use; operations are applied one at a time.
type Editor struct {
	quizID   string
	ids      domain.IDGenerator
	notifier ports.ChangeNotifier
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	delay    time.Duration
	sockets  *socket.Manager

	mu       sync.Mutex
	graph    domain.QuizGraph
	settings map[string]any
	dirty    bool
}

// Option configures the Editor.
type Option func(*Editor)

// WithIDs sets the id generator. Defaults to domain.UUIDs().
func WithIDs(ids domain.IDGenerator) Option {
	return func(e *Editor) {
		e.ids = ids
	}
}

// WithNotifier sets the rendering collaborator.
func WithNotifier(n ports.ChangeNotifier) Option {
	return func(e *Editor) {
		e.notifier = n
	}
}

// WithHooks sets lifecycle hooks (metrics, tracing).
func WithHooks(h domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = h
	}
}

// WithLogger configures a logger for the Editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithSocketDelay sets the delay of the deferred socket recompute signal.
func WithSocketDelay(d time.Duration) Option {
	return func(e *Editor) {
		e.delay = d
	}
}

// WithSettings sets the quiz settings carried along with the graph.
func WithSettings(s map[string]any) Option {
	return func(e *Editor) {
		e.settings = maps.Clone(s)
	}
}

// New creates an Editor for quizID starting from g. The editor starts clean.
func New(quizID string, g domain.QuizGraph, opts ...Option) *Editor {
	e := &Editor{
		quizID: quizID,
		ids:    domain.UUIDs(),
		logger: logging.NewNop(),
		delay:  socket.DefaultDelay,
		graph:  g.Clone(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.settings == nil {
		e.settings = map[string]any{}
	}
	e.sockets = socket.NewManager(e.signal, socket.WithDelay(e.delay), socket.WithLogger(e.logger))
	e.sockets.Track(e.graph.Nodes...)
	return e
}

// QuizID returns the id of the quiz being edited.
func (e *Editor) QuizID() string { return e.quizID }

// Graph returns a copy of the current graph.
func (e *Editor) Graph() domain.QuizGraph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.Clone()
}

// Settings returns a copy of the quiz settings.
func (e *Editor) Settings() map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return maps.Clone(e.settings)
}

// SetSettings replaces the quiz settings and marks the editor dirty.
func (e *Editor) SetSettings(s map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = maps.Clone(s)
	if e.settings == nil {
		e.settings = map[string]any{}
	}
	e.dirty = true
}

// Dirty reports whether the graph changed since it was loaded or last saved.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// MarkClean clears the dirty flag after a successful save.
func (e *Editor) MarkClean() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dirty = false
}

// Snapshot returns the graph, settings and dirty flag read atomically.
func (e *Editor) Snapshot() (domain.QuizGraph, map[string]any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.Clone(), maps.Clone(e.settings), e.dirty
}

// Validate runs the structural validator over the current graph.
func (e *Editor) Validate(opts ...diagnostics.Option) diagnostics.Report {
	return diagnostics.Validate(e.Graph(), opts...)
}

// Replace swaps the whole graph, as after a reload or a generation run.
// Socket tracking restarts from the new graph.
func (e *Editor) Replace(ctx context.Context, g domain.QuizGraph) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.graph = g.Clone()
	e.dirty = true
	e.sockets.Reset()
	e.sockets.Track(e.graph.Nodes...)
	e.notify(ctx, domain.ChangeEvent{Type: domain.ChangeGraphReplaced})
}

// Close cancels pending socket signals. The editor must not be used afterwards.
func (e *Editor) Close() {
	e.sockets.Reset()
}

// PendingSignals returns the number of deferred socket signals not yet delivered.
func (e *Editor) PendingSignals() int {
	return e.sockets.Pending()
}

// apply runs one mutation. The graph is replaced only when fn succeeds.
func (e *Editor) apply(ctx context.Context, op string, fn func(domain.QuizGraph) (*mutate.Change, error)) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, err := fn(e.graph)
	if err != nil {
		e.logger.Warn("Mutation rejected", "quiz_id", e.quizID, "op", op, "err", err)
		e.mutated(ctx, op, err)
		return Result{Op: op, Dirty: e.dirty}, err
	}

	e.graph = c.Graph
	e.dirty = e.dirty || c.Dirty
	e.logger.Debug("Mutation applied", "quiz_id", e.quizID, "op", op, "created", c.Created)

	for _, id := range c.Removed {
		e.sockets.Forget(id)
	}
	for _, ev := range c.Events {
		e.notify(ctx, ev)
	}
	for _, id := range c.Layout {
		if n, ok := e.graph.Node(id); ok {
			e.sockets.Observe(n)
		}
	}

	e.mutated(ctx, op, nil)
	return Result{Op: op, Created: c.Created, Dirty: e.dirty}, nil
}

func (e *Editor) mutated(ctx context.Context, op string, err error) {
	if e.hooks.OnMutation == nil {
		return
	}
	e.hooks.OnMutation(ctx, &domain.MutationEvent{
		Timestamp: time.Now(),
		QuizID:    e.quizID,
		Op:        op,
		Err:       err,
	})
}

func (e *Editor) notify(ctx context.Context, ev domain.ChangeEvent) {
	ev.QuizID = e.quizID
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, ev); err != nil {
		e.logger.Warn("Change notification failed", "quiz_id", e.quizID, "type", ev.Type, "err", err)
	}
}

// signal is the socket manager callback. The deferred phase runs on a timer
// goroutine, so it must not take e.mu.
func (e *Editor) signal(nodeID string, phase domain.SignalPhase, fingerprint string) {
	ev := domain.ChangeEvent{
		Timestamp:   time.Now(),
		Type:        domain.ChangeSocketRecompute,
		NodeID:      nodeID,
		Phase:       phase,
		Fingerprint: fingerprint,
	}
	ctx := context.Background()
	if e.hooks.OnSignal != nil {
		e.hooks.OnSignal(ctx, &ev)
	}
	e.notify(ctx, ev)
}
