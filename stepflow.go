package stepflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/stepflow/internal/logging"
	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/adapters/memory"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/ports"
	"github.com/aretw0/stepflow/pkg/registry"
)

// Engine is the high-level entry point for the stepflow library.
// It owns the tool/node registry and the graph and run stores, and wraps the
// internal runtime with a simplified API for consumers.
type Engine struct {
	runtime     *runtime.Engine
	registry    *registry.Registry
	graphs      ports.GraphStore
	runs        ports.RunStore
	evaluator   runtime.ConditionEvaluator
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	runtimeOpts []runtime.EngineOption
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
// Calling it more than once chains the hooks in order.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithConditionEvaluator sets a custom evaluator for conditional edges.
func WithConditionEvaluator(eval runtime.ConditionEvaluator) Option {
	return func(e *Engine) {
		e.evaluator = eval
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegistry injects a pre-populated registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithGraphStore sets where graph definitions are kept (default: memory).
func WithGraphStore(store ports.GraphStore) Option {
	return func(e *Engine) {
		e.graphs = store
	}
}

// WithRunStore sets where completed runs are kept (default: memory).
func WithRunStore(store ports.RunStore) Option {
	return func(e *Engine) {
		e.runs = store
	}
}

// WithMaxSteps bounds the number of node invocations per run (0 = unbounded, the default).
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithMaxSteps(n))
	}
}

// WithStrictGraphs rejects graphs referencing unregistered nodes at creation time.
func WithStrictGraphs(strict bool) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithStrictGraphs(strict))
	}
}

// New initializes a new stepflow Engine.
// Without options it uses an empty registry and in-memory stores.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.registry == nil {
		eng.registry = registry.NewRegistry()
	}
	if eng.graphs == nil || eng.runs == nil {
		store := memory.NewStore()
		if eng.graphs == nil {
			eng.graphs = store
		}
		if eng.runs == nil {
			eng.runs = store
		}
	}
	// Ensure logger is initialized (so we don't pass nil to runtime)
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithConditionEvaluator(eng.evaluator),
	}
	runtimeOpts = append(runtimeOpts, eng.runtimeOpts...)

	eng.runtime = runtime.NewEngine(eng.registry, eng.graphs, eng.runs, runtimeOpts...)
	return eng
}

// RegisterTool makes fn callable by nodes under name.
func (e *Engine) RegisterTool(name string, fn registry.ToolFunction) {
	e.registry.Register(name, fn)
}

// Tool returns a registered tool or an error wrapping domain.ErrToolNotFound.
func (e *Engine) Tool(name string) (registry.ToolFunction, error) {
	return e.registry.Tool(name)
}

// RegisterNode makes node available to graphs under name.
func (e *Engine) RegisterNode(name string, node registry.Node) {
	e.registry.RegisterNode(name, node)
}

// RegisterNodeFunc is a shorthand for RegisterNode(name, registry.NodeFunc(fn)).
func (e *Engine) RegisterNodeFunc(name string, fn func(context.Context, domain.State) (domain.State, error)) {
	e.registry.RegisterNode(name, registry.NodeFunc(fn))
}

// Registry returns the engine's registry.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// CreateGraph stores a new graph and returns its ID.
func (e *Engine) CreateGraph(ctx context.Context, startNode string, edges map[string]domain.Edge) (string, error) {
	return e.runtime.CreateGraph(ctx, startNode, edges)
}

// Graph returns a stored graph definition.
func (e *Engine) Graph(ctx context.Context, graphID string) (*domain.Graph, error) {
	return e.runtime.Graph(ctx, graphID)
}

// Run executes a graph against a copy of initial and records the result.
func (e *Engine) Run(ctx context.Context, graphID string, initial domain.State) (*domain.RunResult, error) {
	return e.runtime.Run(ctx, graphID, initial)
}

// State returns the final state of a completed run.
// Returns domain.ErrRunNotFound for IDs never produced by Run.
func (e *Engine) State(ctx context.Context, runID string) (domain.State, error) {
	return e.runtime.State(ctx, runID)
}

// LoadRun returns the full record of a completed run.
func (e *Engine) LoadRun(ctx context.Context, runID string) (*domain.Run, error) {
	return e.runtime.LoadRun(ctx, runID)
}

// Validate checks a graph definition against the registry without running it.
func (e *Engine) Validate(graph *domain.Graph) error {
	return e.runtime.Validate(graph)
}

// ValidateGraph loads a stored graph and validates it.
func (e *Engine) ValidateGraph(ctx context.Context, graphID string) error {
	graph, err := e.runtime.Graph(ctx, graphID)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	return e.runtime.Validate(graph)
}
