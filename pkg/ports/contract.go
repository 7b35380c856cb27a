package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunGraphStoreContract runs a suite of tests to verify that a GraphStore implementation
// adheres to the defined interface contract.
func RunGraphStoreContract(t *testing.T, store GraphStore) {
	ctx := context.Background()
	graphID := "contract-test-graph-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		graph := &domain.Graph{
			ID:        graphID,
			StartNode: "a",
			Edges: map[string]domain.Edge{
				"a": {Next: "b"},
				"b": {ConditionKey: "count", ConditionOp: ">", ConditionValue: 5, IfTrue: "c", IfFalse: "d"},
			},
		}

		err := store.SaveGraph(ctx, graph)
		require.NoError(t, err, "SaveGraph should not return error")

		loaded, err := store.LoadGraph(ctx, graphID)
		require.NoError(t, err, "LoadGraph should not return error")
		assert.Equal(t, graphID, loaded.ID)
		assert.Equal(t, "a", loaded.StartNode)
		assert.Equal(t, "b", loaded.Edges["a"].Next)

		cond := loaded.Edges["b"]
		assert.Equal(t, "count", cond.ConditionKey)
		assert.Equal(t, ">", cond.ConditionOp)
		assert.EqualValues(t, 5, cond.ConditionValue)
		assert.Equal(t, "c", cond.IfTrue)
		assert.Equal(t, "d", cond.IfFalse)
	})

	t.Run("Loaded graph is isolated", func(t *testing.T) {
		loaded, err := store.LoadGraph(ctx, graphID)
		require.NoError(t, err)
		loaded.Edges["a"] = domain.Edge{Next: "tampered"}

		again, err := store.LoadGraph(ctx, graphID)
		require.NoError(t, err)
		assert.Equal(t, "b", again.Edges["a"].Next)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.LoadGraph(ctx, "non-existent-"+graphID)
		assert.ErrorIs(t, err, domain.ErrGraphNotFound)
	})
}

// RunRunStoreContract runs a suite of tests to verify that a RunStore implementation
// adheres to the defined interface contract.
func RunRunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	newRun := func(id string) *domain.Run {
		return &domain.Run{
			ID:         id,
			GraphID:    "g1",
			FinalState: domain.State{"foo": "bar", "count": 42},
			Log: []domain.LogEntry{
				{Node: "a", StateSnapshot: domain.State{"foo": "bar"}},
				{Node: "b", StateSnapshot: domain.State{"foo": "bar", "count": 42}},
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.SaveRun(ctx, newRun(runID))
		require.NoError(t, err, "SaveRun should not return error")

		loaded, err := store.LoadRun(ctx, runID)
		require.NoError(t, err, "LoadRun should not return error")
		assert.Equal(t, runID, loaded.ID)
		assert.Equal(t, "g1", loaded.GraphID)
		assert.Equal(t, "bar", loaded.FinalState["foo"])
		// JSON backends decode numbers as float64.
		assert.EqualValues(t, 42, loaded.FinalState["count"])
		require.Len(t, loaded.Log, 2)
		assert.Equal(t, []string{"a", "b"}, loaded.Nodes())
	})

	t.Run("Repeated Load is stable", func(t *testing.T) {
		first, err := store.LoadRun(ctx, runID)
		require.NoError(t, err)
		first.FinalState["foo"] = "mutated"

		second, err := store.LoadRun(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, "bar", second.FinalState["foo"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.LoadRun(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		require.NoError(t, store.SaveRun(ctx, newRun(id1)))
		require.NoError(t, store.SaveRun(ctx, newRun(id2)))

		runs, err := store.ListRuns(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}
