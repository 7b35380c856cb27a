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

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const catalogURI = "stepflow://catalog"

// GraphCreated is the structured result of create_graph.
type GraphCreated struct {
	GraphID string `json:"graph_id" jsonschema_description:"Identifier of the new graph"`
}

// RunState is the structured result of get_state.
type RunState struct {
	RunID string       `json:"run_id" jsonschema_description:"Identifier of the run"`
	State domain.State `json:"state" jsonschema_description:"Final state of the run"`
}

// Engine defines the operations the MCP server exposes.
type Engine interface {
	CreateGraph(ctx context.Context, startNode string, edges map[string]domain.Edge) (string, error)
	Graph(ctx context.Context, graphID string) (*domain.Graph, error)
	Run(ctx context.Context, graphID string, initial domain.State) (*domain.RunResult, error)
	State(ctx context.Context, runID string) (domain.State, error)
}

// Catalog lists what a graph can reference. *registry.Registry implements it.
type Catalog interface {
	NodeNames() []string
	ToolNames() []string
}

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	catalog   Catalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the MCP server.
type Option func(*Server)

// WithCatalog publishes the registered nodes and tools as a resource.
func WithCatalog(c Catalog) Option {
	return func(s *Server) {
		s.catalog = c
	}
}

// WithLogger sets the server logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("stepflow-mcp", strings.TrimSpace(stepflow.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.registerTools()
	if s.catalog != nil {
		s.registerResources()
	}
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and blocks until
// ctx is cancelled or the listener fails.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

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

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: create_graph
	createTool := mcp.NewTool("create_graph",
		mcp.WithDescription("Register a workflow graph. Nodes are referenced by name and resolved when the graph runs."),
		mcp.WithString("start_node", mcp.Required(), mcp.Description("Name of the first node")),
		mcp.WithString("edges", mcp.Description(`JSON object mapping node name to edge, e.g. {"a": {"next": "b"}}`)),
		mcp.WithOutputSchema[GraphCreated](),
	)
	s.mcpServer.AddTool(createTool, mcp.NewStructuredToolHandler(s.handleCreateGraph))

	// TOOL: run_graph
	runTool := mcp.NewTool("run_graph",
		mcp.WithDescription("Run a graph to completion and return the final state and execution log."),
		mcp.WithString("graph_id", mcp.Required(), mcp.Description("Graph identifier returned by create_graph")),
		mcp.WithString("initial_state", mcp.Description("JSON object with the initial state (optional)")),
		mcp.WithOutputSchema[domain.RunResult](),
	)
	s.mcpServer.AddTool(runTool, mcp.NewStructuredToolHandler(s.handleRunGraph))

	// TOOL: get_state
	stateTool := mcp.NewTool("get_state",
		mcp.WithDescription("Get the final state of a finished run."),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("Run identifier returned by run_graph")),
		mcp.WithOutputSchema[RunState](),
	)
	s.mcpServer.AddTool(stateTool, mcp.NewStructuredToolHandler(s.handleGetState))

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get a graph definition for introspection."),
		mcp.WithString("graph_id", mcp.Required(), mcp.Description("Graph identifier")),
	), s.handleGetGraph)
}

func (s *Server) handleCreateGraph(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GraphCreated, error) {
	startNode, _ := args["start_node"].(string)
	if startNode == "" {
		return GraphCreated{}, errors.New("start_node is required")
	}

	edges := map[string]domain.Edge{}
	if raw, ok := args["edges"].(string); ok && strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &edges); err != nil {
			return GraphCreated{}, fmt.Errorf("invalid edges: %w", err)
		}
	}

	graphID, err := s.engine.CreateGraph(ctx, startNode, edges)
	if err != nil {
		return GraphCreated{}, fmt.Errorf("create graph failed: %w", err)
	}
	return GraphCreated{GraphID: graphID}, nil
}

func (s *Server) handleRunGraph(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.RunResult, error) {
	graphID, _ := args["graph_id"].(string)

	initial := domain.NewState()
	if raw, ok := args["initial_state"].(string); ok && strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &initial); err != nil {
			return domain.RunResult{}, fmt.Errorf("invalid initial_state: %w", err)
		}
	}

	res, err := s.engine.Run(ctx, graphID, initial)
	if err != nil {
		if errors.Is(err, domain.ErrGraphNotFound) {
			return domain.RunResult{}, fmt.Errorf("unknown graph_id %q", graphID)
		}
		s.logger.Error("MCP RunGraph failed", "graph_id", graphID, "error", err)
		return domain.RunResult{}, fmt.Errorf("run failed: %w", err)
	}
	return *res, nil
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunState, error) {
	runID, _ := args["run_id"].(string)

	state, err := s.engine.State(ctx, runID)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			return RunState{}, fmt.Errorf("unknown run_id %q", runID)
		}
		return RunState{}, fmt.Errorf("get state failed: %w", err)
	}
	return RunState{RunID: runID, State: state}, nil
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	graphID, _ := request.GetArguments()["graph_id"].(string)

	graph, err := s.engine.Graph(ctx, graphID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get graph failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(graph)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: stepflow://catalog
	s.mcpServer.AddResource(mcp.NewResource(catalogURI, "Registered nodes and tools",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.catalogSnapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      catalogURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func (s *Server) catalogSnapshot() map[string][]string {
	return map[string][]string{
		"nodes": s.catalog.NodeNames(),
		"tools": s.catalog.ToolNames(),
	}
}
