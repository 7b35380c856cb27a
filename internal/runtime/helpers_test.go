package runtime_test

import (
	"context"
	"fmt"

	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/adapters/memory"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/registry"
)

// markNode records its own name under "visited" and returns the same state.
func markNode(name string) registry.Node {
	return registry.NodeFunc(func(ctx context.Context, s domain.State) (domain.State, error) {
		visited, _ := s["visited"].([]string)
		s["visited"] = append(append([]string{}, visited...), name)
		return s, nil
	})
}

func newTestEngine(opts ...runtime.EngineOption) (*runtime.Engine, *registry.Registry, *memory.Store) {
	reg := registry.NewRegistry()
	for _, name := range []string{"A", "B", "C", "D"} {
		reg.RegisterNode(name, markNode(name))
	}
	store := memory.NewStore()
	return runtime.NewEngine(reg, store, store, opts...), reg, store
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
