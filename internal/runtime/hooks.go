package runtime

import (
	"context"
	"time"

	"github.com/aretw0/stepflow/pkg/domain"
)

func (e *Engine) emitNodeEnter(ctx context.Context, graphID, nodeID string, step int) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeEnter, GraphID: graphID},
		NodeID:    nodeID,
		Step:      step,
	})
}

func (e *Engine) emitNodeLeave(ctx context.Context, graphID, nodeID string, step int) {
	if e.hooks.OnNodeLeave == nil {
		return
	}
	e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeLeave, GraphID: graphID},
		NodeID:    nodeID,
		Step:      step,
	})
}

func (e *Engine) emitRunComplete(ctx context.Context, graphID, runID string, steps int, started time.Time) {
	if e.hooks.OnRunComplete == nil {
		return
	}
	e.hooks.OnRunComplete(ctx, &domain.RunEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunComplete, GraphID: graphID},
		RunID:     runID,
		Steps:     steps,
		Duration:  time.Since(started),
	})
}

func (e *Engine) emitRunFailed(ctx context.Context, graphID string, steps int, started time.Time, err error) {
	if e.hooks.OnRunFailed == nil {
		return
	}
	e.hooks.OnRunFailed(ctx, &domain.RunEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunFailed, GraphID: graphID},
		Steps:     steps,
		Duration:  time.Since(started),
		Err:       err,
	})
}
