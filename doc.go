/*
Package stepflow is a minimal workflow engine: a directed graph of named steps
("nodes") is walked from a start node, each node transforming a shared state
record, and the next node chosen either unconditionally or by comparing one
state key against a constant.

# Concept

Nodes are plain Go values implementing registry.Node. They are registered by
name, then referenced by graphs. A graph is a start node plus a map from node
name to its outgoing edge. Running a graph clones the caller's initial state,
invokes nodes in traversal order, snapshots the state after each one and stores
the final state and log under a fresh run ID.

The engine has no loop guard by default: a cycle without an exit runs forever.
Use WithMaxSteps to bound runs, and pass a cancellable context to stop them.

# Usage

	eng := stepflow.New()
	eng.RegisterNodeFunc("double", func(ctx context.Context, s domain.State) (domain.State, error) {
		n, _ := s["n"].(int)
		s["n"] = n * 2
		return s, nil
	})

	graphID, _ := eng.CreateGraph(ctx, "double", map[string]domain.Edge{
		"double": {ConditionKey: "n", ConditionOp: "<", ConditionValue: 100, IfTrue: "double"},
	})

	res, err := eng.Run(ctx, graphID, domain.State{"n": 3})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.FinalState["n"]) // 192
*/
package stepflow
