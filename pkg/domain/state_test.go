package domain_test

import (
	"testing"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestState_Clone(t *testing.T) {
	original := domain.State{"a": 1, "nested": map[string]any{"x": 1}}
	clone := original.Clone()

	clone["a"] = 2
	clone["b"] = true
	assert.Equal(t, 1, original["a"])
	assert.NotContains(t, original, "b")

	// Shallow: nested containers are shared.
	clone["nested"].(map[string]any)["x"] = 2
	assert.Equal(t, 2, original["nested"].(map[string]any)["x"])
}

func TestState_Lookup(t *testing.T) {
	s := domain.State{"present": 0, "null": nil}

	v, ok := s.Lookup("present")
	assert.True(t, ok)
	assert.Equal(t, 0, v)

	_, ok = s.Lookup("null")
	assert.False(t, ok)

	_, ok = s.Lookup("absent")
	assert.False(t, ok)
}

func TestRun_Clone(t *testing.T) {
	run := &domain.Run{
		ID:         "r",
		FinalState: domain.State{"k": "v"},
		Log:        []domain.LogEntry{{Node: "a", StateSnapshot: domain.State{"k": "v"}}},
	}
	clone := run.Clone()
	clone.FinalState["k"] = "changed"
	clone.Log[0].StateSnapshot["k"] = "changed"

	assert.Equal(t, "v", run.FinalState["k"])
	assert.Equal(t, "v", run.Log[0].StateSnapshot["k"])
	assert.Equal(t, []string{"a"}, run.Nodes())
}
