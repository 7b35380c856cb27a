package dsl

import "github.com/aretw0/stepflow/pkg/domain"

// Builder manages the graph construction.
type Builder struct {
	start string
	edges map[string]domain.Edge
	order []string
}

// New creates a new graph builder starting at start.
func New(start string) *Builder {
	return &Builder{
		start: start,
		edges: make(map[string]domain.Edge),
	}
}

// Node returns a builder for the outgoing edge of id.
func (b *Builder) Node(id string) *NodeBuilder {
	return &NodeBuilder{id: id, builder: b}
}

// Build returns the definition. The builder can keep being used afterwards.
func (b *Builder) Build() *Definition {
	def := &Definition{
		StartNode: b.start,
		Edges:     make(map[string]domain.Edge, len(b.edges)),
	}
	for k, v := range b.edges {
		def.Edges[k] = v
	}
	return def
}

func (b *Builder) set(id string, edge domain.Edge) {
	if _, ok := b.edges[id]; !ok {
		b.order = append(b.order, id)
	}
	b.edges[id] = edge
}

// NodeBuilder configures the edge leaving a single node.
type NodeBuilder struct {
	id      string
	builder *Builder
}

// Next sets an unconditional edge to target.
func (nb *NodeBuilder) Next(target string) *Builder {
	nb.builder.set(nb.id, domain.Edge{Next: target})
	return nb.builder
}

// Terminal marks the node as the end of the run by removing its edge.
func (nb *NodeBuilder) Terminal() *Builder {
	delete(nb.builder.edges, nb.id)
	return nb.builder
}

// When starts a conditional edge comparing state[key] against value.
func (nb *NodeBuilder) When(key string, op domain.Operator, value any) *ConditionBuilder {
	return &ConditionBuilder{
		node: nb,
		edge: domain.Edge{ConditionKey: key, ConditionOp: string(op), ConditionValue: value},
	}
}

// ConditionBuilder collects the branches of a conditional edge.
type ConditionBuilder struct {
	node *NodeBuilder
	edge domain.Edge
}

// Then sets the successor when the condition holds.
func (cb *ConditionBuilder) Then(target string) *ConditionBuilder {
	cb.edge.IfTrue = target
	cb.node.builder.set(cb.node.id, cb.edge)
	return cb
}

// Else sets the successor when the condition does not hold and returns the graph builder.
// An empty target terminates the run on that branch.
func (cb *ConditionBuilder) Else(target string) *Builder {
	cb.edge.IfFalse = target
	cb.node.builder.set(cb.node.id, cb.edge)
	return cb.node.builder
}
