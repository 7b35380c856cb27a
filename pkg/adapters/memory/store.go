package memory

import (
	"context"
	"sync"

	"github.com/aretw0/stepflow/pkg/domain"
)

// Store implements ports.GraphStore and ports.RunStore in memory.
// Safe for concurrent use. Entries live until the process exits.
type Store struct {
	graphs map[string]*domain.Graph
	runs   map[string]*domain.Run
	order  []string
	mu     sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		graphs: make(map[string]*domain.Graph),
		runs:   make(map[string]*domain.Run),
	}
}

// SaveGraph persists the graph in memory.
func (s *Store) SaveGraph(ctx context.Context, graph *domain.Graph) error {
	// Copy to ensure isolation, similar to serialization
	copied := graph.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[graph.ID] = copied
	return nil
}

// LoadGraph retrieves the graph from memory.
func (s *Store) LoadGraph(ctx context.Context, graphID string) (*domain.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	graph, ok := s.graphs[graphID]
	if !ok {
		return nil, domain.ErrGraphNotFound
	}
	return graph.Clone(), nil
}

// SaveRun persists the run in memory.
func (s *Store) SaveRun(ctx context.Context, run *domain.Run) error {
	copied := run.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; !exists {
		s.order = append(s.order, run.ID)
	}
	s.runs[run.ID] = copied
	return nil
}

// LoadRun retrieves the run from memory.
func (s *Store) LoadRun(ctx context.Context, runID string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}

	// Copy on read so caller can't mutate store state directly by pointer
	return run.Clone(), nil
}

// ListRuns returns stored run IDs in insertion order.
func (s *Store) ListRuns(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.order))
	copy(out, s.order)
	return out, nil
}
