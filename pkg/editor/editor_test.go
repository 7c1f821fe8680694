package editor_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/quizgraph/pkg/diagnostics"
	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/editor"
	"github.com/aretw0/quizgraph/pkg/mutate"
	"github.com/aretw0/quizgraph/pkg/ports"
	"github.com/aretw0/quizgraph/pkg/socket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (l *eventLog) Notify(_ context.Context, e domain.ChangeEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) ofType(t domain.ChangeType) []domain.ChangeEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.ChangeEvent
	for _, e := range l.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

var _ ports.ChangeNotifier = (*eventLog)(nil)

func newEditor(t *testing.T, opts ...editor.Option) (*editor.Editor, *eventLog) {
	t.Helper()
	log := &eventLog{}
	g := domain.QuizGraph{Nodes: []domain.Node{
		{ID: "start", Kind: domain.KindStart},
		{ID: "q1", Kind: domain.KindComposite, Elements: []domain.Element{}},
		{ID: "end", Kind: domain.KindResult},
	}}
	base := []editor.Option{
		editor.WithIDs(domain.NewSequence()),
		editor.WithNotifier(log),
		editor.WithSocketDelay(5 * time.Millisecond),
	}
	ed := editor.New("quiz-1", g, append(base, opts...)...)
	t.Cleanup(ed.Close)
	return ed, log
}

func TestEditor_StartsClean(t *testing.T) {
	ed, log := newEditor(t)

	assert.False(t, ed.Dirty())
	assert.Equal(t, "quiz-1", ed.QuizID())
	assert.Empty(t, log.ofType(domain.ChangeSocketRecompute), "loading a graph sends no recompute signals")
}

func TestEditor_AddElementSignalsTwice(t *testing.T) {
	ed, log := newEditor(t)
	ctx := context.Background()

	res, err := ed.AddElement(ctx, "q1", domain.ElementChoiceSingle)
	require.NoError(t, err)
	assert.True(t, res.Dirty)
	assert.Equal(t, "el_1", res.Created)
	assert.True(t, ed.Dirty())

	updated := log.ofType(domain.ChangeNodeUpdated)
	require.Len(t, updated, 1)
	assert.Equal(t, "quiz-1", updated[0].QuizID)
	assert.Equal(t, "q1", updated[0].NodeID)

	require.Eventually(t, func() bool {
		return len(log.ofType(domain.ChangeSocketRecompute)) == 2
	}, time.Second, time.Millisecond)
	signals := log.ofType(domain.ChangeSocketRecompute)
	assert.Equal(t, domain.PhaseImmediate, signals[0].Phase)
	assert.Equal(t, domain.PhaseDeferred, signals[1].Phase)
	assert.Equal(t, signals[0].Fingerprint, signals[1].Fingerprint)
}

func TestEditor_FailedMutationLeavesGraph(t *testing.T) {
	ed, log := newEditor(t)
	before := ed.Graph()

	_, err := ed.RemoveNode(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrNodeNotFound)

	assert.Equal(t, before, ed.Graph())
	assert.False(t, ed.Dirty())
	assert.Empty(t, log.ofType(domain.ChangeNodeRemoved))
}

func TestEditor_RemoveNodeCancelsPendingSignal(t *testing.T) {
	ed, log := newEditor(t, editor.WithSocketDelay(time.Hour))
	ctx := context.Background()

	_, err := ed.AddElement(ctx, "q1", domain.ElementRating)
	require.NoError(t, err)
	assert.Equal(t, 1, ed.PendingSignals())

	_, err = ed.RemoveNode(ctx, "q1")
	require.NoError(t, err)
	assert.Zero(t, ed.PendingSignals())
	assert.Len(t, log.ofType(domain.ChangeSocketRecompute), 1, "only the immediate signal was sent")
}

func TestEditor_MoveDoesNotSignal(t *testing.T) {
	ed, log := newEditor(t)

	_, err := ed.MoveNode(context.Background(), "q1", domain.Position{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Empty(t, log.ofType(domain.ChangeSocketRecompute))
	assert.Zero(t, ed.PendingSignals())
}

func TestEditor_AuthoringSession(t *testing.T) {
	ed, _ := newEditor(t)
	ctx := context.Background()

	choice, err := ed.AddElement(ctx, "q1", domain.ElementChoiceSingle)
	require.NoError(t, err)
	_, err = ed.AddElement(ctx, "q1", domain.ElementLeadCapture)
	require.NoError(t, err)
	_, err = ed.Connect(ctx, "start", socket.Default, "q1")
	require.NoError(t, err)
	_, err = ed.Connect(ctx, "q1", socket.Option(choice.Created, 0), "end")
	require.NoError(t, err)
	_, err = ed.AddOption(ctx, choice.Created, mutate.AppendIndex, "Option D", 3)
	require.NoError(t, err)
	_, err = ed.SetScoreRanges(ctx, []domain.ScoreRange{{ID: "r", Min: 0, Max: 30, Label: "All"}})
	require.NoError(t, err)

	report := ed.Validate()
	assert.False(t, report.HasErrors())
	assert.Equal(t, 80, report.HealthScore)
	assert.Equal(t, diagnostics.SeverityInfo, report.Findings[len(report.Findings)-1].Severity)

	g := ed.Graph()
	_, el, ok := g.FindElement(choice.Created)
	require.True(t, ok)
	assert.Len(t, el.Options, 4)
	assert.Len(t, g.ScoreRanges, 1)

	ed.MarkClean()
	assert.False(t, ed.Dirty())
}

func TestEditor_Hooks(t *testing.T) {
	var mu sync.Mutex
	var ops []string
	var failed int
	var signals int
	hooks := domain.LifecycleHooks{
		OnMutation: func(_ context.Context, e *domain.MutationEvent) {
			mu.Lock()
			defer mu.Unlock()
			ops = append(ops, e.Op)
			if e.Err != nil {
				failed++
			}
		},
		OnSignal: func(context.Context, *domain.ChangeEvent) {
			mu.Lock()
			defer mu.Unlock()
			signals++
		},
	}
	ed, _ := newEditor(t, editor.WithHooks(hooks))
	ctx := context.Background()

	_, _ = ed.AddElement(ctx, "q1", domain.ElementText)
	_, _ = ed.Disconnect(ctx, "nope")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{mutate.OpAddElement, mutate.OpDisconnect}, ops)
	assert.Equal(t, 1, failed)
	assert.GreaterOrEqual(t, signals, 1)
}

func TestEditor_Replace(t *testing.T) {
	ed, log := newEditor(t)

	ed.Replace(context.Background(), domain.QuizGraph{Nodes: []domain.Node{{ID: "only", Kind: domain.KindStart}}})

	assert.True(t, ed.Dirty())
	assert.Len(t, ed.Graph().Nodes, 1)
	assert.Len(t, log.ofType(domain.ChangeGraphReplaced), 1)
}

func TestEditor_Settings(t *testing.T) {
	ed, _ := newEditor(t, editor.WithSettings(map[string]any{"theme": "dark"}))

	s := ed.Settings()
	s["theme"] = "light"
	assert.Equal(t, "dark", ed.Settings()["theme"], "Settings returns a copy")

	ed.SetSettings(map[string]any{"theme": "light"})
	assert.True(t, ed.Dirty())
	_, settings, dirty := ed.Snapshot()
	assert.Equal(t, "light", settings["theme"])
	assert.True(t, dirty)
}
