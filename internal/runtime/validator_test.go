package runtime_test

import (
	"testing"

	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	engine, _, _ := newTestEngine()

	t.Run("Valid graph", func(t *testing.T) {
		graph := &domain.Graph{
			ID:        "ok",
			StartNode: "A",
			Edges: map[string]domain.Edge{
				"A": {ConditionKey: "n", ConditionOp: ">=", ConditionValue: 1, IfTrue: "B", IfFalse: "C"},
				"B": {Next: "D"},
			},
		}
		assert.NoError(t, engine.Validate(graph))
	})

	t.Run("Missing nodes and bad operator", func(t *testing.T) {
		graph := &domain.Graph{
			ID:        "bad",
			StartNode: "A",
			Edges: map[string]domain.Edge{
				"A": {ConditionKey: "n", ConditionOp: "~", IfTrue: "X", IfFalse: "B"},
				"B": {Next: "Y"},
			},
		}
		err := engine.Validate(graph)

		var verr *runtime.GraphValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"X", "Y"}, verr.MissingNodes)
		assert.Equal(t, map[string]string{"A": "~"}, verr.UnknownOperators)
		assert.Contains(t, err.Error(), "bad")
	})

	t.Run("Padded operator is unknown", func(t *testing.T) {
		graph := &domain.Graph{
			ID:        "padded",
			StartNode: "A",
			Edges: map[string]domain.Edge{
				"A": {ConditionKey: "n", ConditionOp: " > ", ConditionValue: 1, IfTrue: "B", IfFalse: "C"},
			},
		}
		var verr *runtime.GraphValidationError
		require.ErrorAs(t, engine.Validate(graph), &verr)
		assert.Equal(t, map[string]string{"A": " > "}, verr.UnknownOperators)

		got, err := runtime.Evaluate(domain.State{"n": 5}, graph.Edges["A"])
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("Empty start node", func(t *testing.T) {
		err := engine.Validate(&domain.Graph{ID: "empty"})
		var verr *runtime.GraphValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.MissingNodes, "<start>")
	})

	t.Run("Nil graph", func(t *testing.T) {
		assert.Error(t, engine.Validate(nil))
	})
}
