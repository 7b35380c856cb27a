package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine is the subset of the workflow engine served over HTTP.
type Engine interface {
	CreateGraph(ctx context.Context, startNode string, edges map[string]domain.Edge) (string, error)
	Run(ctx context.Context, graphID string, initial domain.State) (*domain.RunResult, error)
	State(ctx context.Context, runID string) (domain.State, error)
}

// GraphCreateRequest is the body of POST /graph/create.
type GraphCreateRequest struct {
	StartNode string                 `json:"start_node"`
	Edges     map[string]domain.Edge `json:"edges"`
}

// GraphCreateResponse is the body returned by POST /graph/create.
type GraphCreateResponse struct {
	GraphID string `json:"graph_id"`
}

// GraphRunRequest is the body of POST /graph/run.
type GraphRunRequest struct {
	GraphID      string       `json:"graph_id"`
	InitialState domain.State `json:"initial_state"`
}

// RunStateResponse is the body returned by GET /graph/state/{run_id}.
type RunStateResponse struct {
	RunID string       `json:"run_id"`
	State domain.State `json:"state"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Server holds the handlers of the HTTP adapter.
type Server struct {
	Engine  Engine
	Streams *StreamManager

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the HTTP handler.
type Option func(*Server)

// WithMetrics exposes g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams serves GET /events from sm. The caller is responsible for
// wiring sm.Hooks() into the engine.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{Engine: engine}
	for _, opt := range opts {
		opt(server)
	}
	if server.logger == nil {
		server.logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Post("/graph/create", server.CreateGraph)
	r.Post("/graph/run", server.RunGraph)
	r.Get("/graph/state/{run_id}", server.GetRunState)

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	if server.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	}
	if server.Streams != nil {
		r.Get("/events", server.SubscribeEvents)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Stepflow API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// CreateGraph handles the POST /graph/create request.
func (s *Server) CreateGraph(w http.ResponseWriter, r *http.Request) {
	var body GraphCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("CreateGraph: Invalid request body", "error", err)
		return
	}

	graphID, err := s.Engine.CreateGraph(r.Context(), body.StartNode, body.Edges)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Create error: %v", err))
		s.logger.Error("CreateGraph failed", "error", err)
		return
	}

	s.logger.Debug("Graph created", "graph_id", graphID, "start_node", body.StartNode)
	writeJSON(w, s.logger, GraphCreateResponse{GraphID: graphID})
}

// RunGraph handles the POST /graph/run request.
func (s *Server) RunGraph(w http.ResponseWriter, r *http.Request) {
	var body GraphRunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("RunGraph: Invalid request body", "error", err)
		return
	}
	if body.InitialState == nil {
		body.InitialState = domain.NewState()
	}

	res, err := s.Engine.Run(r.Context(), body.GraphID, body.InitialState)
	if err != nil {
		if errors.Is(err, domain.ErrGraphNotFound) {
			writeError(w, http.StatusNotFound, "Unknown graph_id")
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Run error: %v", err))
		s.logger.Error("RunGraph failed", "graph_id", body.GraphID, "error", err)
		return
	}

	writeJSON(w, s.logger, res)
}

// GetRunState handles the GET /graph/state/{run_id} request.
func (s *Server) GetRunState(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "run_id")

	state, err := s.Engine.State(r.Context(), runID)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "Unknown run_id")
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("State error: %v", err))
		s.logger.Error("GetRunState failed", "run_id", runID, "error", err)
		return
	}

	writeJSON(w, s.logger, RunStateResponse{RunID: runID, State: state})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	} else if err != nil {
		s.logger.Error("Failed to load OpenAPI spec", "error", err)
	}

	writeJSON(w, s.logger, map[string]string{
		"app":         "stepflow-http",
		"version":     strings.TrimSpace(stepflow.Version),
		"api_version": apiVersion,
	})
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	graphID := r.URL.Query().Get("graph_id")
	if graphID == "" {
		writeError(w, http.StatusBadRequest, "Missing graph_id")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(graphID)
	defer cancel()

	s.logger.Info("SSE: Subscribing to graph events", "graph_id", graphID)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "graph_id", graphID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Detail: detail})
}
