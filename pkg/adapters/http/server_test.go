package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/quizgraph/internal/metrics"
	"github.com/aretw0/quizgraph/pkg/adapters/memory"
	"github.com/aretw0/quizgraph/pkg/diagnostics"
	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/editor"
	"github.com/aretw0/quizgraph/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quizBody = `{
	"canvasData": "{\"nodes\":[{\"id\":\"start\",\"type\":\"start\",\"position\":{\"x\":0,\"y\":0}},{\"id\":\"end\",\"type\":\"result\",\"position\":{\"x\":400,\"y\":0}}],\"edges\":[{\"id\":\"e1\",\"source\":\"start\",\"target\":\"end\"}]}",
	"scoreRanges": [],
	"settings": {"theme": "dark"}
}`

type fixture struct {
	handler http.Handler
	events  *memory.Broadcaster
	reg     *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	events := memory.NewBroadcaster(16)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	mgr := session.NewManager(memory.NewStore(), session.WithEditorOptions(
		editor.WithNotifier(events),
		editor.WithHooks(m.Hooks()),
		editor.WithIDs(domain.NewSequence()),
	))
	return &fixture{
		handler: NewHandler(mgr, WithEvents(events), WithMetrics(m, reg)),
		events:  events,
		reg:     reg,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func TestHealthAndInfo(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = f.do(t, "GET", "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "1.0.0", info["api_version"])
	assert.Equal(t, "quizgraph-http", info["app"])
}

func TestOpenAPIDocumentIsValid(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/quizzes/{id}/commands"))

	w := newFixture(t).do(t, "GET", "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
}

func TestQuizLifecycle(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/quizzes/q1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, "PUT", "/quizzes/q1", quizBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rec map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.IsType(t, "", rec["canvasData"], "canvasData is returned as a string")
	assert.IsType(t, []any{}, rec["scoreRanges"])

	w = f.do(t, "POST", "/quizzes/q1/commands", `{"op":"add_node","kind":"composite","position":{"x":200,"y":0}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res editor.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Dirty)
	assert.NotEmpty(t, res.Created)

	w = f.do(t, "POST", "/quizzes/q1/save", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, "GET", "/quizzes", "")
	assert.JSONEq(t, `["q1"]`, w.Body.String())

	w = f.do(t, "GET", "/quizzes/q1/graph", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph LR"))

	w = f.do(t, "DELETE", "/quizzes/q1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, "GET", "/quizzes/q1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplyCommand_Errors(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(t, "PUT", "/quizzes/q1", quizBody).Code)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"malformed", `{`, http.StatusBadRequest},
		{"unknown op", `{"op":"teleport"}`, http.StatusBadRequest},
		{"missing argument", `{"op":"remove_node"}`, http.StatusBadRequest},
		{"unknown node", `{"op":"remove_node","nodeId":"ghost"}`, http.StatusUnprocessableEntity},
		{"bad socket", `{"op":"connect","source":"start","sourceSocket":"x-option-0","target":"end"}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(t, "POST", "/quizzes/q1/commands", tc.body)
			assert.Equal(t, tc.code, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}

	w := f.do(t, "POST", "/quizzes/absent/commands", `{"op":"remove_node","nodeId":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDiagnostics(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(t, "PUT", "/quizzes/q1", quizBody).Code)

	w := f.do(t, "GET", "/quizzes/q1/diagnostics", "")
	require.Equal(t, http.StatusOK, w.Code)
	var report diagnostics.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	rules := make([]string, 0, len(report.Findings))
	for _, f := range report.Findings {
		rules = append(rules, f.Rule)
	}
	assert.Equal(t, []string{
		diagnostics.RuleSkeleton,
		diagnostics.RuleLeadCapture,
		diagnostics.RuleConnectivity,
		diagnostics.RuleIntegrations,
	}, rules, "no scoring element means no scoring finding")
	assert.True(t, report.HasErrors(), "no composite node means the skeleton is incomplete")

	families, err := f.reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, fam := range families {
		if fam.GetName() == "quizgraph_health_score" {
			found = true
			assert.Equal(t, uint64(1), fam.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}
	assert.True(t, found)
}

func TestGenerate(t *testing.T) {
	f := newFixture(t)
	body := `{"questions":[{"type":"choice-single","question":"Pick one","options":[{"label":"A","score":1},{"label":"B","score":3}]}],
		"scoreRanges":[{"id":"r1","min":0,"max":3,"label":"All"}]}`

	w := f.do(t, "POST", "/generate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out generated
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Len(t, out.Canvas.Nodes, 3)
	assert.Len(t, out.ScoreRanges, 1)
	assert.False(t, out.Diagnostics.HasErrors())

	w = f.do(t, "POST", "/generate", `{"questions":[{"question":"no type"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, "GET", "/metrics", "")
	assert.Contains(t, w.Body.String(), "quizgraph_generated_quizzes_total 1")
}

func TestSubscribeEvents(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(t, "PUT", "/quizzes/q1", quizBody).Code)

	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/quizzes/q1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	require.Eventually(t, func() bool { return f.events.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	post, err := http.Post(srv.URL+"/quizzes/q1/commands", "application/json",
		strings.NewReader(`{"op":"move_node","nodeId":"end","position":{"x":500,"y":10}}`))
	require.NoError(t, err)
	post.Body.Close()

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: node_updated") {
			break
		}
	}
	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, data, `"node_id":"end"`)
}

func TestSubscribeEvents_UnknownQuiz(t *testing.T) {
	w := newFixture(t).do(t, "GET", "/quizzes/ghost/events", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	w := newFixture(t).do(t, "OPTIONS", "/quizzes/q1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
