package ports

import (
	"context"

	"github.com/aretw0/stepflow/pkg/domain"
)

// GraphStore defines the interface for persisting graph definitions.
// Graphs are written once and never updated.
type GraphStore interface {
	// SaveGraph persists the graph under graph.ID.
	SaveGraph(ctx context.Context, graph *domain.Graph) error

	// LoadGraph retrieves a graph by ID.
	// Returns domain.ErrGraphNotFound if the graph does not exist.
	LoadGraph(ctx context.Context, graphID string) (*domain.Graph, error)
}

// RunStore defines the interface for persisting completed runs.
type RunStore interface {
	// SaveRun persists the run under run.ID.
	SaveRun(ctx context.Context, run *domain.Run) error

	// LoadRun retrieves a run by ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	LoadRun(ctx context.Context, runID string) (*domain.Run, error)

	// ListRuns returns the IDs of stored runs.
	ListRuns(ctx context.Context) ([]string, error)
}
