/*
Package dsl provides two ways to describe stepflow graphs without touching the
engine's storage: a fluent Go builder and YAML/JSON definition documents.

Example usage:

	def := dsl.New("split").
		Node("split").Next("summarize").
		Node("summarize").When("chunks", ">", 0).Then("merge").Else("").
		Build()

	graphID, err := engine.CreateGraph(ctx, def.StartNode, def.Edges)

The same graph as a document:

	start_node: split
	edges:
	  split:
	    next: summarize
	  summarize:
	    condition_key: chunks
	    condition_op: ">"
	    condition_value: 0
	    if_true: merge
	initial_state:
	  text: "..."
*/
package dsl
