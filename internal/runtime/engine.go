package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/stepflow/internal/logging"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/ports"
	"github.com/aretw0/stepflow/pkg/registry"
	"github.com/google/uuid"
)

// NodeResolver looks up node implementations by name.
type NodeResolver interface {
	Node(name string) (registry.Node, error)
}

// NodeError reports a failure while executing a specific node.
type NodeError struct {
	Node string
	Step int
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q (step %d): %v", e.Node, e.Step, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// Engine is the core workflow runner.
// It walks a graph node by node on the caller's goroutine.
type Engine struct {
	nodes        NodeResolver
	graphs       ports.GraphStore
	runs         ports.RunStore
	evaluator    ConditionEvaluator
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	maxSteps     int
	strictGraphs bool
	newID        func() string
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithConditionEvaluator replaces the default condition evaluator.
func WithConditionEvaluator(eval ConditionEvaluator) EngineOption {
	return func(e *Engine) {
		if eval != nil {
			e.evaluator = eval
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxSteps bounds the number of node invocations per run.
// Zero (the default) means unbounded: cyclic graphs without an exit never terminate.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithStrictGraphs makes CreateGraph reject graphs that reference unregistered nodes.
// By default validation is deferred to execution.
func WithStrictGraphs(strict bool) EngineOption {
	return func(e *Engine) {
		e.strictGraphs = strict
	}
}

// WithIDGenerator overrides the generator used for graph and run IDs.
func WithIDGenerator(fn func() string) EngineOption {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// NewEngine creates a new engine with dependencies.
func NewEngine(nodes NodeResolver, graphs ports.GraphStore, runs ports.RunStore, opts ...EngineOption) *Engine {
	e := &Engine{
		nodes:     nodes,
		graphs:    graphs,
		runs:      runs,
		evaluator: Evaluate,
		logger:    logging.NewNop(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateGraph stores a new immutable graph and returns its generated ID.
func (e *Engine) CreateGraph(ctx context.Context, startNode string, edges map[string]domain.Edge) (string, error) {
	graph := &domain.Graph{
		ID:        e.newID(),
		StartNode: startNode,
		Edges:     make(map[string]domain.Edge, len(edges)),
	}
	for name, edge := range edges {
		graph.Edges[name] = edge
	}

	if e.strictGraphs {
		if err := e.Validate(graph); err != nil {
			return "", err
		}
	}

	if err := e.graphs.SaveGraph(ctx, graph); err != nil {
		return "", fmt.Errorf("failed to save graph: %w", err)
	}

	e.logger.Debug("graph created", "graph_id", graph.ID, "start_node", startNode, "edges", len(edges))
	return graph.ID, nil
}

// Graph returns the stored definition of a graph.
func (e *Engine) Graph(ctx context.Context, graphID string) (*domain.Graph, error) {
	return e.graphs.LoadGraph(ctx, graphID)
}

// Run executes the graph from its start node until no successor remains.
//
// The initial state is cloned so the caller's map is never mutated. Every node
// invocation appends a snapshot to the log. A failure at any point aborts the
// run and nothing is persisted.
func (e *Engine) Run(ctx context.Context, graphID string, initial domain.State) (*domain.RunResult, error) {
	started := time.Now()

	graph, err := e.graphs.LoadGraph(ctx, graphID)
	if err != nil {
		return nil, err
	}

	logger := e.logger.With("graph_id", graphID)
	logger.Debug("run started", "start_node", graph.StartNode)

	state := initial.Clone()
	var log []domain.LogEntry

	fail := func(err error) (*domain.RunResult, error) {
		logger.Debug("run failed", "steps", len(log), "err", err)
		e.emitRunFailed(ctx, graphID, len(log), started, err)
		return nil, err
	}

	current := graph.StartNode
	for current != "" {
		step := len(log) + 1

		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		if e.maxSteps > 0 && step > e.maxSteps {
			return fail(fmt.Errorf("%w: limit is %d, next node %q", domain.ErrMaxStepsExceeded, e.maxSteps, current))
		}

		node, err := e.nodes.Node(current)
		if err != nil {
			return fail(&NodeError{Node: current, Step: step, Err: err})
		}

		e.emitNodeEnter(ctx, graphID, current, step)

		next, err := node.Transform(ctx, state)
		if err != nil {
			return fail(&NodeError{Node: current, Step: step, Err: err})
		}
		if next == nil {
			next = domain.NewState()
		}
		state = next

		log = append(log, domain.LogEntry{Node: current, StateSnapshot: state.Clone()})
		e.emitNodeLeave(ctx, graphID, current, step)

		current, err = e.resolveNext(graph, current, state)
		if err != nil {
			return fail(&NodeError{Node: log[len(log)-1].Node, Step: step, Err: err})
		}
	}

	run := &domain.Run{
		ID:         e.newID(),
		GraphID:    graphID,
		FinalState: state,
		Log:        log,
	}
	if err := e.runs.SaveRun(ctx, run); err != nil {
		return fail(fmt.Errorf("failed to save run: %w", err))
	}

	logger.Info("run completed", "run_id", run.ID, "steps", len(log), "duration", time.Since(started))
	e.emitRunComplete(ctx, graphID, run.ID, len(log), started)

	return &domain.RunResult{
		RunID:      run.ID,
		FinalState: state,
		Log:        log,
	}, nil
}

// resolveNext returns the successor of current, or "" when the run terminates.
func (e *Engine) resolveNext(graph *domain.Graph, current string, state domain.State) (string, error) {
	edge, ok := graph.Edges[current]
	if !ok {
		return "", nil
	}

	if !edge.IsConditional() {
		return edge.Next, nil
	}

	cond, err := e.evaluator(state, edge)
	if err != nil {
		return "", fmt.Errorf("evaluate condition: %w", err)
	}
	if cond {
		return edge.IfTrue, nil
	}
	return edge.IfFalse, nil
}

// State returns the final state of a completed run.
func (e *Engine) State(ctx context.Context, runID string) (domain.State, error) {
	run, err := e.runs.LoadRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return run.FinalState, nil
}

// LoadRun returns the full record of a completed run, log included.
func (e *Engine) LoadRun(ctx context.Context, runID string) (*domain.Run, error) {
	return e.runs.LoadRun(ctx, runID)
}
