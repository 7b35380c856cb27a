package memory_test

import (
	"testing"

	"github.com/aretw0/stepflow/pkg/adapters/memory"
	"github.com/aretw0/stepflow/pkg/ports"
)

func TestMemoryStore_GraphContract(t *testing.T) {
	store := memory.NewStore()
	ports.RunGraphStoreContract(t, store)
}

func TestMemoryStore_RunContract(t *testing.T) {
	store := memory.NewStore()
	ports.RunRunStoreContract(t, store)
}
