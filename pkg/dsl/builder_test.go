package dsl

import (
	"testing"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	def := New("start").
		Node("start").Next("check").
		Node("check").When("count", domain.OpGreater, 5).Then("big").Else("small").
		Node("big").Next("end").
		Build()

	assert.Equal(t, "start", def.StartNode)
	assert.Equal(t, domain.Edge{Next: "check"}, def.Edges["start"])
	assert.Equal(t, domain.Edge{
		ConditionKey:   "count",
		ConditionOp:    ">",
		ConditionValue: 5,
		IfTrue:         "big",
		IfFalse:        "small",
	}, def.Edges["check"])
	assert.Equal(t, "end", def.Edges["big"].Next)
	_, hasSmall := def.Edges["small"]
	assert.False(t, hasSmall)
}

func TestBuilder_Terminal(t *testing.T) {
	b := New("a")
	b.Node("a").Next("b")
	b.Node("a").Terminal()

	def := b.Build()
	assert.Empty(t, def.Edges)
}

func TestBuilder_BuildIsSnapshot(t *testing.T) {
	b := New("a").Node("a").Next("b")
	first := b.Build()
	b.Node("a").Next("c")

	assert.Equal(t, "b", first.Edges["a"].Next)
	assert.Equal(t, "c", b.Build().Edges["a"].Next)
}

func TestBuilder_ThenOnly(t *testing.T) {
	b := New("loop")
	b.Node("loop").When("n", domain.OpLess, 3).Then("loop")

	edge := b.Build().Edges["loop"]
	assert.Equal(t, "loop", edge.IfTrue)
	assert.Empty(t, edge.IfFalse)
}
