package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/quizgraph"
	"github.com/aretw0/quizgraph/internal/logging"
	"github.com/aretw0/quizgraph/pkg/codec"
	"github.com/aretw0/quizgraph/pkg/command"
	"github.com/aretw0/quizgraph/pkg/diagnostics"
	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/editor"
	"github.com/aretw0/quizgraph/pkg/generate"
	"github.com/aretw0/quizgraph/pkg/ports"
	"github.com/aretw0/quizgraph/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// GenerateResponse is the structured result of generate_quiz.
type GenerateResponse struct {
	QuizID      string              `json:"quiz_id,omitempty" jsonschema_description:"Id the quiz was stored under, if any"`
	Canvas      codec.Canvas        `json:"canvas" jsonschema_description:"Generated nodes and edges"`
	ScoreRanges []domain.ScoreRange `json:"scoreRanges"`
	Diagnostics diagnostics.Report  `json:"diagnostics" jsonschema_description:"Validation report of the generated graph"`
}

// CommandResponse is the structured result of apply_command.
type CommandResponse struct {
	editor.Result
	Saved bool `json:"saved" jsonschema_description:"Whether the quiz was persisted after the command"`
}

// Server exposes quiz authoring as MCP tools.
type Server struct {
	sessions  *session.Manager
	generator *generate.Generator
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGenerator overrides the default generator.
func WithGenerator(g *generate.Generator) Option {
	return func(s *Server) {
		s.generator = g
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		generator: generate.New(),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("quizgraph-mcp", strings.TrimSpace(quizgraph.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on port until ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("validate_quiz",
		mcp.WithDescription("Run the structural validator on a stored quiz or on an inline canvas."),
		mcp.WithString("quiz_id", mcp.Description("Id of a stored quiz")),
		mcp.WithString("canvas", mcp.Description("Quiz JSON (record or bare canvas) to validate instead of a stored quiz")),
		mcp.WithBoolean("sockets", mcp.Description("Also report edges whose option socket no longer exists")),
		mcp.WithOutputSchema[diagnostics.Report](),
	), mcp.NewStructuredToolHandler(s.handleValidate))

	s.mcpServer.AddTool(mcp.NewTool("generate_quiz",
		mcp.WithDescription("Build a linear quiz from question descriptors."),
		mcp.WithString("request", mcp.Required(), mcp.Description(`JSON {"questions":[...],"scoreRanges":[...]} or a bare array of questions`)),
		mcp.WithString("quiz_id", mcp.Description("Store the generated quiz under this id")),
		mcp.WithOutputSchema[GenerateResponse](),
	), mcp.NewStructuredToolHandler(s.handleGenerate))

	s.mcpServer.AddTool(mcp.NewTool("get_quiz",
		mcp.WithDescription("Get a quiz in its persisted shape."),
		mcp.WithString("quiz_id", mcp.Required(), mcp.Description("Quiz id")),
		mcp.WithOutputSchema[ports.QuizRecord](),
	), mcp.NewStructuredToolHandler(s.handleGetQuiz))

	s.mcpServer.AddTool(mcp.NewTool("apply_command",
		mcp.WithDescription("Apply one editing command ("+strings.Join(command.Ops(), ", ")+") to a quiz."),
		mcp.WithString("quiz_id", mcp.Required(), mcp.Description("Quiz id")),
		mcp.WithObject("command", mcp.Required(), mcp.Description(`Command object, e.g. {"op":"add_node","kind":"composite"}`)),
		mcp.WithBoolean("save", mcp.Description("Persist the quiz after applying")),
		mcp.WithOutputSchema[CommandResponse](),
	), mcp.NewStructuredToolHandler(s.handleApplyCommand))
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (diagnostics.Report, error) {
	var opts []diagnostics.Option
	if on, _ := args["sockets"].(bool); on {
		opts = append(opts, diagnostics.WithSocketCheck())
	}

	if canvas, ok := args["canvas"].(string); ok && canvas != "" {
		g, _, warnings, err := codec.Parse([]byte(canvas))
		if err != nil {
			return diagnostics.Report{}, err
		}
		for _, w := range warnings {
			s.logger.Warn("MCP validate: malformed field", "field", w.Field, "err", w.Err)
		}
		return diagnostics.Validate(g, opts...), nil
	}

	quizID, _ := args["quiz_id"].(string)
	if quizID == "" {
		return diagnostics.Report{}, errors.New("either quiz_id or canvas is required")
	}
	ed, err := s.sessions.Open(ctx, quizID)
	if err != nil {
		return diagnostics.Report{}, fmt.Errorf("open quiz: %w", err)
	}
	return ed.Validate(opts...), nil
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GenerateResponse, error) {
	raw, _ := args["request"].(string)
	req, err := generate.DecodeRequest([]byte(raw))
	if err != nil {
		return GenerateResponse{}, err
	}
	g, err := s.generator.Generate(req.Questions, req.ScoreRanges)
	if err != nil {
		return GenerateResponse{}, err
	}

	resp := GenerateResponse{
		Canvas:      codec.Canvas{Nodes: g.Nodes, Edges: g.Edges},
		ScoreRanges: g.ScoreRanges,
		Diagnostics: diagnostics.Validate(g),
	}
	if quizID, _ := args["quiz_id"].(string); quizID != "" {
		rec, err := codec.Encode(quizID, g, nil)
		if err != nil {
			return GenerateResponse{}, err
		}
		if _, err := s.sessions.Put(ctx, quizID, rec); err != nil {
			return GenerateResponse{}, fmt.Errorf("store generated quiz: %w", err)
		}
		resp.QuizID = quizID
	}
	return resp, nil
}

func (s *Server) handleGetQuiz(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ports.QuizRecord, error) {
	quizID, _ := args["quiz_id"].(string)
	rec, err := s.sessions.Record(ctx, quizID)
	if err != nil {
		return ports.QuizRecord{}, fmt.Errorf("get quiz failed: %w", err)
	}
	return *rec, nil
}

func (s *Server) handleApplyCommand(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CommandResponse, error) {
	quizID, _ := args["quiz_id"].(string)

	var cmd command.Command
	var err error
	switch v := args["command"].(type) {
	case map[string]interface{}:
		cmd, err = command.FromMap(v)
	case string:
		cmd, err = command.Decode([]byte(v))
	default:
		err = fmt.Errorf("%w: command must be an object", command.ErrInvalidCommand)
	}
	if err != nil {
		return CommandResponse{}, err
	}

	var res editor.Result
	err = s.sessions.Edit(ctx, quizID, func(ctx context.Context, ed *editor.Editor) error {
		var err error
		res, err = command.Apply(ctx, ed, cmd)
		return err
	})
	if err != nil {
		s.logger.Warn("MCP apply_command rejected", "quiz_id", quizID, "op", cmd.Op, "err", err)
		return CommandResponse{}, err
	}

	resp := CommandResponse{Result: res}
	if save, _ := args["save"].(bool); save {
		if _, err := s.sessions.Save(ctx, quizID); err != nil {
			return CommandResponse{}, err
		}
		resp.Saved = true
		resp.Dirty = false
	}
	return resp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("quizgraph://quizzes", "Stored quiz ids",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list quizzes: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "quizgraph://quizzes",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
