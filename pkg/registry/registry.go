package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/stepflow/pkg/domain"
)

// ToolFunction defines the signature for a tool implementation.
// It receives a context and a map of arguments, and returns a result or error.
type ToolFunction func(ctx context.Context, args map[string]any) (any, error)

// Node is a processing step of a graph.
// Transform receives the run's state and returns the state the run continues with.
// It may mutate the input in place or return an entirely new record.
type Node interface {
	Transform(ctx context.Context, state domain.State) (domain.State, error)
}

// NodeFunc adapts an ordinary function to the Node interface.
type NodeFunc func(ctx context.Context, state domain.State) (domain.State, error)

// Transform calls f(ctx, state).
func (f NodeFunc) Transform(ctx context.Context, state domain.State) (domain.State, error) {
	return f(ctx, state)
}

// Registry manages the available tools and nodes.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]ToolFunction
	nodes map[string]Node
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]ToolFunction),
		nodes: make(map[string]Node),
	}
}

// Register adds a tool to the registry.
// If a tool with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn ToolFunction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = fn
}

// Tool returns the tool registered under name.
func (r *Registry) Tool(name string) (ToolFunction, error) {
	r.mu.RLock()
	fn, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrToolNotFound, name)
	}
	return fn, nil
}

// Execute looks up a tool by name and executes it.
// Returns an error if the tool is not found.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	fn, err := r.Tool(name)
	if err != nil {
		return nil, err
	}
	return fn(ctx, args)
}

// RegisterNode adds a node to the registry, overwriting any node with the same name.
func (r *Registry) RegisterNode(name string, node Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[name] = node
}

// Node returns the node registered under name.
func (r *Registry) Node(name string) (Node, error) {
	r.mu.RLock()
	node, ok := r.nodes[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, name)
	}
	return node, nil
}

// HasNode reports whether name is registered.
func (r *Registry) HasNode(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.nodes[name]
	return ok
}

// NodeNames returns the registered node names in sorted order.
func (r *Registry) NodeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.nodes))
	for name := range r.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ToolNames returns the registered tool names in sorted order.
func (r *Registry) ToolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
