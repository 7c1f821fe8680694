package mutate

import (
	"testing"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/socket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture builds start -> q1 (choice-single with 3 options) -> end,
// with the last option of q1 wired to end.
func fixture(t *testing.T) (domain.QuizGraph, *domain.Sequence, string) {
	t.Helper()
	ids := domain.NewSequence()
	choice, err := domain.NewElement(ids, domain.ElementChoiceSingle)
	require.NoError(t, err)
	g := domain.QuizGraph{
		Nodes: []domain.Node{
			{ID: "start", Kind: domain.KindStart},
			{ID: "q1", Kind: domain.KindComposite, Elements: []domain.Element{choice}},
			{ID: "end", Kind: domain.KindResult},
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "start", Target: "q1"},
			{ID: "e2", Source: "q1", SourceSocket: socket.Option(choice.ID, 2), Target: "end"},
		},
	}
	return g, ids, choice.ID
}

func TestAddElement(t *testing.T) {
	g, ids, _ := fixture(t)

	c, err := AddElement(g, ids, "q1", domain.ElementRating)
	require.NoError(t, err)
	assert.True(t, c.Dirty)
	assert.Equal(t, []string{"q1"}, c.Layout)

	n, _ := c.Graph.Node("q1")
	require.Len(t, n.Elements, 2)
	assert.Equal(t, c.Created, n.Elements[1].ID)
	assert.Equal(t, domain.ElementRating, n.Elements[1].Type)

	orig, _ := g.Node("q1")
	assert.Len(t, orig.Elements, 1, "input graph must not change")

	_, err = AddElement(g, ids, "start", domain.ElementText)
	assert.ErrorIs(t, err, domain.ErrNotComposite)
	_, err = AddElement(g, ids, "nope", domain.ElementText)
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	_, err = AddElement(g, ids, "q1", "hologram")
	assert.ErrorIs(t, err, domain.ErrUnknownElementType)
}

func TestRemoveElement_LeavesEdgesDangling(t *testing.T) {
	g, _, elID := fixture(t)

	c, err := RemoveElement(g, "q1", elID)
	require.NoError(t, err)

	n, _ := c.Graph.Node("q1")
	assert.Empty(t, n.Elements)
	require.Len(t, c.Graph.Edges, 2, "edges are not repaired")
	dangling := socket.Dangling(c.Graph)
	require.Len(t, dangling, 1)
	assert.Equal(t, "e2", dangling[0].ID)

	_, err = RemoveElement(g, "q1", "missing")
	assert.ErrorIs(t, err, domain.ErrElementNotFound)
}

func TestReorderElements(t *testing.T) {
	ids := domain.NewSequence()
	g := domain.QuizGraph{Nodes: []domain.Node{{ID: "n", Kind: domain.KindComposite}}}
	var err error
	var c *Change
	for _, typ := range []domain.ElementType{domain.ElementText, domain.ElementChoiceSingle, domain.ElementRating} {
		c, err = AddElement(g, ids, "n", typ)
		require.NoError(t, err)
		g = c.Graph
	}
	before, _ := g.Node("n")
	choiceID := before.Elements[1].ID
	sockets := socket.Outbound(before)

	c, err = ReorderElements(g, "n", 0, 2)
	require.NoError(t, err)
	after, _ := c.Graph.Node("n")

	assert.Equal(t, []domain.ElementType{domain.ElementChoiceSingle, domain.ElementRating, domain.ElementText},
		[]domain.ElementType{after.Elements[0].Type, after.Elements[1].Type, after.Elements[2].Type})
	assert.Equal(t, choiceID, after.Elements[0].ID)
	assert.ElementsMatch(t, sockets, socket.Outbound(after), "reordering keeps every socket id")

	_, err = ReorderElements(g, "n", 0, 3)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	_, err = ReorderElements(g, "n", -1, 0)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
}

func TestUpdateElement(t *testing.T) {
	g, _, elID := fixture(t)
	q := "Pick one"

	c, err := UpdateElement(g, elID, ElementPatch{Question: &q})
	require.NoError(t, err)
	_, el, ok := c.Graph.FindElement(elID)
	require.True(t, ok)
	assert.Equal(t, "Pick one", el.Question)
	assert.Len(t, el.Options, 3)

	_, err = UpdateElement(g, elID, ElementPatch{Rows: []string{"r"}})
	assert.ErrorIs(t, err, domain.ErrNotChoice)
	_, err = UpdateElement(g, "ghost", ElementPatch{})
	assert.ErrorIs(t, err, domain.ErrElementNotFound)
}

func TestUpdateElement_SettingsMustMatchType(t *testing.T) {
	ids := domain.NewSequence()
	types := []domain.ElementType{
		domain.ElementRating, domain.ElementOpenText, domain.ElementLeadCapture,
		domain.ElementImage, domain.ElementAudio, domain.ElementGame, domain.ElementText,
	}
	byType := map[domain.ElementType]string{}
	var els []domain.Element
	for _, typ := range types {
		el, err := domain.NewElement(ids, typ)
		require.NoError(t, err)
		byType[typ] = el.ID
		els = append(els, el)
	}
	g := domain.QuizGraph{Nodes: []domain.Node{{ID: "q", Kind: domain.KindComposite, Elements: els}}}

	tests := []struct {
		name    string
		typ     domain.ElementType
		patch   ElementPatch
		wantErr bool
	}{
		{"rating on rating", domain.ElementRating, ElementPatch{Rating: &domain.RatingSettings{}}, false},
		{"rating on text", domain.ElementText, ElementPatch{Rating: &domain.RatingSettings{}}, true},
		{"openText on open-text", domain.ElementOpenText, ElementPatch{OpenText: &domain.OpenTextSettings{}}, false},
		{"openText on rating", domain.ElementRating, ElementPatch{OpenText: &domain.OpenTextSettings{}}, true},
		{"leadCapture on lead-capture", domain.ElementLeadCapture, ElementPatch{LeadCapture: &domain.LeadCaptureSettings{}}, false},
		{"leadCapture on open-text", domain.ElementOpenText, ElementPatch{LeadCapture: &domain.LeadCaptureSettings{}}, true},
		{"media on image", domain.ElementImage, ElementPatch{Media: &domain.MediaSettings{}}, false},
		{"media on audio", domain.ElementAudio, ElementPatch{Media: &domain.MediaSettings{}}, false},
		{"media on game", domain.ElementGame, ElementPatch{Media: &domain.MediaSettings{}}, true},
		{"game on game", domain.ElementGame, ElementPatch{Game: &domain.GameSettings{Kind: "memory"}}, false},
		{"game on image", domain.ElementImage, ElementPatch{Game: &domain.GameSettings{Kind: "memory"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := "changed"
			tt.patch.Question = &q
			c, err := UpdateElement(g, byType[tt.typ], tt.patch)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrSettingsMismatch)
			assert.Nil(t, c)
			_, el, ok := g.FindElement(byType[tt.typ])
			require.True(t, ok)
			assert.NotEqual(t, "changed", el.Question, "a rejected patch applies nothing")
		})
	}
}

func TestAddOption(t *testing.T) {
	g, ids, elID := fixture(t)

	c, err := AddOption(g, ids, elID, AppendIndex, "Option D", 1)
	require.NoError(t, err)
	_, el, _ := c.Graph.FindElement(elID)
	require.Len(t, el.Options, 4)
	assert.Equal(t, "Option D", el.Options[3].Label)
	assert.Equal(t, c.Created, el.Options[3].ID)
	assert.Empty(t, socket.Dangling(c.Graph), "appending never invalidates sockets")

	c, err = AddOption(g, ids, elID, 0, "First", 0)
	require.NoError(t, err)
	_, el, _ = c.Graph.FindElement(elID)
	assert.Equal(t, "First", el.Options[0].Label)

	_, err = AddOption(g, ids, elID, 9, "x", 0)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
}

func TestAddOption_NotChoice(t *testing.T) {
	g, ids, _ := fixture(t)
	c, err := AddElement(g, ids, "q1", domain.ElementText)
	require.NoError(t, err)

	_, err = AddOption(c.Graph, ids, c.Created, AppendIndex, "x", 0)
	assert.ErrorIs(t, err, domain.ErrNotChoice)
}

func TestRemoveOption_ShiftsPositionalSockets(t *testing.T) {
	g, ids, elID := fixture(t)
	// also wire option 1 so that the shift is observable
	c, err := Connect(g, ids, "q1", socket.Option(elID, 1), "end")
	require.NoError(t, err)
	g = c.Graph

	c, err = RemoveOption(g, elID, 0)
	require.NoError(t, err)
	_, el, _ := c.Graph.FindElement(elID)
	require.Len(t, el.Options, 2)
	assert.Equal(t, "Option B", el.Options[0].Label)

	// The edge formerly on option 1 ("Option B") now points at "Option C",
	// and the edge on index 2 no longer has a socket to hang from.
	dangling := socket.Dangling(c.Graph)
	require.Len(t, dangling, 1)
	assert.Equal(t, socket.Option(elID, 2), dangling[0].SourceSocket)

	_, err = RemoveOption(g, elID, 3)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
}

func TestUpdateOption(t *testing.T) {
	g, _, elID := fixture(t)
	score := 42
	label := "Gold"

	c, err := UpdateOption(g, elID, 1, OptionPatch{Label: &label, Score: &score})
	require.NoError(t, err)
	_, el, _ := c.Graph.FindElement(elID)
	assert.Equal(t, "Gold", el.Options[1].Label)
	assert.Equal(t, 42, el.Options[1].Score)

	_, err = UpdateOption(g, elID, -1, OptionPatch{})
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
}

func TestAddNode(t *testing.T) {
	g, ids, _ := fixture(t)

	c, err := AddNode(g, ids, domain.KindComposite, domain.Position{X: 10, Y: 20})
	require.NoError(t, err)
	n, ok := c.Graph.Node(c.Created)
	require.True(t, ok)
	assert.Equal(t, domain.Position{X: 10, Y: 20}, n.Position)
	assert.Len(t, c.Graph.Nodes, 4)

	_, err = AddNode(g, ids, "decision", domain.Position{})
	assert.ErrorIs(t, err, domain.ErrInvalidKind)
}

func TestRemoveNode_CascadesEdges(t *testing.T) {
	g, _, _ := fixture(t)

	c, err := RemoveNode(g, "q1")
	require.NoError(t, err)
	assert.False(t, c.Graph.HasNode("q1"))
	assert.Empty(t, c.Graph.Edges, "both edges touched q1")
	assert.Empty(t, c.Graph.MissingEndpoints())
	assert.Equal(t, []string{"q1"}, c.Removed)

	var removedEdges int
	for _, e := range c.Events {
		if e.Type == domain.ChangeEdgeRemoved {
			removedEdges++
		}
	}
	assert.Equal(t, 2, removedEdges)
	assert.Len(t, g.Edges, 2, "input graph must not change")

	_, err = RemoveNode(g, "ghost")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestMoveAndUpdateNode(t *testing.T) {
	g, _, _ := fixture(t)

	c, err := MoveNode(g, "end", domain.Position{X: 300})
	require.NoError(t, err)
	n, _ := c.Graph.Node("end")
	assert.Equal(t, 300.0, n.Position.X)

	label := "Your profile"
	c, err = UpdateNode(c.Graph, "end", NodePatch{Label: &label})
	require.NoError(t, err)
	n, _ = c.Graph.Node("end")
	assert.Equal(t, "Your profile", n.Label)

	_, err = MoveNode(g, "ghost", domain.Position{})
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestDuplicateNode(t *testing.T) {
	g, ids, elID := fixture(t)

	c, err := DuplicateNode(g, ids, "q1", domain.Position{X: 50, Y: 50})
	require.NoError(t, err)
	cp, ok := c.Graph.Node(c.Created)
	require.True(t, ok)
	require.Len(t, cp.Elements, 1)
	assert.NotEqual(t, elID, cp.Elements[0].ID)
	assert.Len(t, cp.Elements[0].Options, 3)
	assert.Empty(t, c.Graph.EdgesFrom(cp.ID))
	assert.Equal(t, domain.Position{X: 50, Y: 50}, cp.Position)
}

func TestConnect(t *testing.T) {
	g, ids, elID := fixture(t)

	c, err := Connect(g, ids, "q1", socket.Option(elID, 0), "q1")
	require.NoError(t, err, "self loops are allowed")
	assert.Len(t, c.Graph.Edges, 3)

	c, err = Connect(c.Graph, ids, "q1", socket.Option(elID, 0), "q1")
	require.NoError(t, err, "duplicates are allowed")
	assert.Len(t, c.Graph.Edges, 4)

	_, err = Connect(g, ids, "q1", socket.Default, "end")
	assert.ErrorIs(t, err, domain.ErrSocketNotFound, "choice nodes have no default socket")
	_, err = Connect(g, ids, "ghost", "", "end")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	_, err = Connect(g, ids, "start", "", "ghost")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	_, err = Connect(g, ids, "end", "", "start")
	assert.ErrorIs(t, err, domain.ErrSocketNotFound, "result nodes have no outbound socket")
}

func TestDisconnect(t *testing.T) {
	g, _, _ := fixture(t)

	c, err := Disconnect(g, "e1")
	require.NoError(t, err)
	_, ok := c.Graph.Edge("e1")
	assert.False(t, ok)

	_, err = Disconnect(g, "zzz")
	assert.ErrorIs(t, err, domain.ErrEdgeNotFound)
}

func TestSetScoreRanges(t *testing.T) {
	g, _, _ := fixture(t)
	ranges := []domain.ScoreRange{{ID: "r1", Min: 0, Max: 10, Label: "Low"}, {ID: "r2", Min: 5, Max: 20, Label: "Overlap"}}

	c, err := SetScoreRanges(g, ranges)
	require.NoError(t, err)
	assert.Equal(t, ranges, c.Graph.ScoreRanges, "overlaps are stored as given")

	c, err = SetScoreRanges(g, nil)
	require.NoError(t, err)
	assert.NotNil(t, c.Graph.ScoreRanges)
}
