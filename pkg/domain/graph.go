package domain

import "sort"

// Edge describes how the successor of a node is picked.
//
// When ConditionKey is set the edge is conditional: the value stored under
// ConditionKey is compared against ConditionValue with ConditionOp and the run
// continues at IfTrue or IfFalse. Otherwise the run continues at Next.
// An empty successor name terminates the run.
type Edge struct {
	Next string `json:"next,omitempty" yaml:"next,omitempty" mapstructure:"next"`

	ConditionKey   string `json:"condition_key,omitempty" yaml:"condition_key,omitempty" mapstructure:"condition_key"`
	ConditionOp    string `json:"condition_op,omitempty" yaml:"condition_op,omitempty" mapstructure:"condition_op"`
	ConditionValue any    `json:"condition_value,omitempty" yaml:"condition_value,omitempty" mapstructure:"condition_value"`
	IfTrue         string `json:"if_true,omitempty" yaml:"if_true,omitempty" mapstructure:"if_true"`
	IfFalse        string `json:"if_false,omitempty" yaml:"if_false,omitempty" mapstructure:"if_false"`
}

// IsConditional reports whether the edge routes on a state comparison.
func (e Edge) IsConditional() bool {
	return e.ConditionKey != ""
}

// Successors returns every node name the edge may lead to.
func (e Edge) Successors() []string {
	var out []string
	if e.IsConditional() {
		if e.IfTrue != "" {
			out = append(out, e.IfTrue)
		}
		if e.IfFalse != "" {
			out = append(out, e.IfFalse)
		}
		return out
	}
	if e.Next != "" {
		out = append(out, e.Next)
	}
	return out
}

// Graph is an immutable workflow definition.
type Graph struct {
	ID        string          `json:"id"`
	StartNode string          `json:"start_node"`
	Edges     map[string]Edge `json:"edges"`
}

// Clone returns a copy that does not share the edges map.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		ID:        g.ID,
		StartNode: g.StartNode,
		Edges:     make(map[string]Edge, len(g.Edges)),
	}
	for k, v := range g.Edges {
		out.Edges[k] = v
	}
	return out
}

// NodeNames returns every node name referenced by the graph, start node first
// and the rest in edge key order.
func (g *Graph) NodeNames() []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	add(g.StartNode)
	for _, from := range g.Sources() {
		add(from)
		for _, to := range g.Edges[from].Successors() {
			add(to)
		}
	}
	return out
}

// Sources returns the names of nodes that have an outgoing edge, sorted.
func (g *Graph) Sources() []string {
	out := make([]string, 0, len(g.Edges))
	for name := range g.Edges {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Operator is a comparison operator usable in a conditional edge.
type Operator string

const (
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
)

// Operators lists every supported operator.
var Operators = []Operator{OpGreater, OpLess, OpGreaterEqual, OpLessEqual, OpEqual, OpNotEqual}

// Valid reports whether op is one of the supported operators.
func (op Operator) Valid() bool {
	for _, known := range Operators {
		if op == known {
			return true
		}
	}
	return false
}
