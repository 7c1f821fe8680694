package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/quizgraph"
	"github.com/aretw0/quizgraph/internal/logging"
	"github.com/aretw0/quizgraph/internal/metrics"
	"github.com/aretw0/quizgraph/internal/presentation/graph"
	"github.com/aretw0/quizgraph/pkg/adapters/memory"
	"github.com/aretw0/quizgraph/pkg/codec"
	"github.com/aretw0/quizgraph/pkg/command"
	"github.com/aretw0/quizgraph/pkg/diagnostics"
	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/editor"
	"github.com/aretw0/quizgraph/pkg/generate"
	"github.com/aretw0/quizgraph/pkg/ports"
	"github.com/aretw0/quizgraph/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBody caps request bodies.
const maxBody = 4 << 20

// Server exposes the session manager over HTTP.
type Server struct {
	Sessions  *session.Manager
	Events    *memory.Broadcaster
	Generator *generate.Generator

	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithEvents enables the SSE change stream. The same broadcaster must be
// installed as the editors' notifier.
func WithEvents(b *memory.Broadcaster) Option {
	return func(s *Server) {
		s.Events = b
	}
}

// WithGenerator overrides the default generator.
func WithGenerator(g *generate.Generator) Option {
	return func(s *Server) {
		s.Generator = g
	}
}

// WithMetrics records health scores and generation counts, and serves
// gatherer on /metrics.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithLogger configures request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions:  sessions,
		Generator: generate.New(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", s.GetSpec)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/quizzes", s.ListQuizzes)
	r.Route("/quizzes/{id}", func(r chi.Router) {
		r.Get("/", s.GetQuiz)
		r.Put("/", s.PutQuiz)
		r.Delete("/", s.DeleteQuiz)
		r.Post("/commands", s.ApplyCommand)
		r.Post("/save", s.SaveQuiz)
		r.Get("/diagnostics", s.GetDiagnostics)
		r.Get("/graph", s.GetGraph)
		r.Get("/events", s.SubscribeEvents)
	})
	r.Post("/generate", s.Generate)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := GetSwagger(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "quizgraph-http",
		"version":     strings.TrimSpace(quizgraph.Version),
		"api_version": apiVersion,
	})
}

// GetSpec handles GET /openapi.yaml.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	if _, err := GetSwagger(); err != nil {
		s.fail(w, r, fmt.Errorf("load OpenAPI document: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/yaml")
	_, _ = w.Write(rawSpec)
}

// ListQuizzes handles GET /quizzes.
func (s *Server) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetQuiz handles GET /quizzes/{id}.
func (s *Server) GetQuiz(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Sessions.Record(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// PutQuiz handles PUT /quizzes/{id}. canvasData and scoreRanges may each be
// a structure or a JSON string.
func (s *Server) PutQuiz(w http.ResponseWriter, r *http.Request) {
	var rec ports.QuizRecord
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&rec); err != nil {
		s.badRequest(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}
	id := chi.URLParam(r, "id")
	rec.ID = id

	if _, err := s.Sessions.Put(r.Context(), id, &rec); err != nil {
		s.fail(w, r, err)
		return
	}
	saved, err := s.Sessions.Record(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteQuiz handles DELETE /quizzes/{id}.
func (s *Server) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyCommand handles POST /quizzes/{id}/commands.
func (s *Server) ApplyCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	cmd, err := command.Decode(body)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	var res editor.Result
	err = s.Sessions.Edit(r.Context(), chi.URLParam(r, "id"), func(ctx context.Context, ed *editor.Editor) error {
		var err error
		res, err = command.Apply(ctx, ed, cmd)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SaveQuiz handles POST /quizzes/{id}/save.
func (s *Server) SaveQuiz(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Sessions.Save(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GetDiagnostics handles GET /quizzes/{id}/diagnostics. ?sockets=true adds
// the dangling-wire check.
func (s *Server) GetDiagnostics(w http.ResponseWriter, r *http.Request) {
	ed, err := s.Sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var opts []diagnostics.Option
	if on, _ := strconv.ParseBool(r.URL.Query().Get("sockets")); on {
		opts = append(opts, diagnostics.WithSocketCheck())
	}
	report := ed.Validate(opts...)
	if s.metrics != nil {
		s.metrics.ObserveReport(report)
	}
	writeJSON(w, http.StatusOK, report)
}

// GetGraph handles GET /quizzes/{id}/graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	ed, err := s.Sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	g := ed.Graph()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.GenerateMermaid(g, &graph.GraphOverlay{Orphans: graph.Orphans(g)}))
}

// SubscribeEvents handles GET /quizzes/{id}/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	if s.Events == nil {
		http.Error(w, "Change stream not enabled", http.StatusNotImplemented)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	quizID := chi.URLParam(r, "id")
	if _, err := s.Sessions.Open(r.Context(), quizID); err != nil {
		s.fail(w, r, err)
		return
	}

	ch, cancel := s.Events.Subscribe(quizID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE: subscribed", "quiz_id", quizID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "quiz_id", quizID)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}

type generated struct {
	Canvas      codec.Canvas        `json:"canvas"`
	ScoreRanges []domain.ScoreRange `json:"scoreRanges"`
	Diagnostics diagnostics.Report  `json:"diagnostics"`
}

// Generate handles POST /generate.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	req, err := generate.DecodeRequest(body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	g, err := s.Generator.Generate(req.Questions, req.ScoreRanges)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	report := diagnostics.Validate(g)
	if s.metrics != nil {
		s.metrics.Generated.Inc()
		s.metrics.ObserveReport(report)
	}
	writeJSON(w, http.StatusOK, generated{
		Canvas:      codec.Canvas{Nodes: g.Nodes, Edges: g.Edges},
		ScoreRanges: g.ScoreRanges,
		Diagnostics: report,
	})
}

// -- Helpers --

// statusFor maps domain and adapter errors to HTTP status codes.
func statusFor(err error) int {
	var descErr *generate.DescriptorError
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound
	case errors.As(err, &descErr),
		errors.Is(err, domain.ErrInvalidQuizID),
		errors.Is(err, command.ErrUnknownCommand),
		errors.Is(err, command.ErrInvalidCommand):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrElementNotFound),
		errors.Is(err, domain.ErrEdgeNotFound),
		errors.Is(err, domain.ErrIndexOutOfRange),
		errors.Is(err, domain.ErrNotChoice),
		errors.Is(err, domain.ErrNotComposite),
		errors.Is(err, domain.ErrSocketNotFound),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrUnknownElementType):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Warn("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("Invalid request", "method", r.Method, "path", r.URL.Path, "err", err)
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
