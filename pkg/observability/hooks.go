package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/stepflow/pkg/domain"
)

// LoggingHooks logs node transitions at Debug, completed runs at Info and
// failed runs at Error.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node enter", "graph_id", e.GraphID, "node_id", e.NodeID, "step", e.Step)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node leave", "graph_id", e.GraphID, "node_id", e.NodeID, "step", e.Step)
		},
		OnRunComplete: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run complete",
				"graph_id", e.GraphID, "run_id", e.RunID, "steps", e.Steps, "duration", e.Duration)
		},
		OnRunFailed: func(ctx context.Context, e *domain.RunEvent) {
			logger.ErrorContext(ctx, "run failed",
				"graph_id", e.GraphID, "steps", e.Steps, "duration", e.Duration, "error", e.Err)
		},
	}
}
