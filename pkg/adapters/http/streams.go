package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/stepflow/pkg/domain"
)

// StreamManager fans engine events out to SSE subscribers, keyed by graph ID.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for graphID. The returned func
// unregisters and closes it.
func (sm *StreamManager) Subscribe(graphID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 16)
	if _, ok := sm.subscribers[graphID]; !ok {
		sm.subscribers[graphID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[graphID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[graphID]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, graphID)
			}
		}
	}
}

// Broadcast delivers msg to every subscriber of graphID without blocking.
func (sm *StreamManager) Broadcast(graphID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[graphID] {
		select {
		case ch <- msg:
		default:
			// Slow client
			sm.logger.Warn("SSE: Client buffer full, dropping message", "graph_id", graphID)
		}
	}
}

// Hooks returns lifecycle hooks that publish every engine event as JSON.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	node := func(ctx context.Context, e *domain.NodeEvent) { sm.publish(e.GraphID, e) }
	run := func(ctx context.Context, e *domain.RunEvent) { sm.publish(e.GraphID, runPayload(e)) }
	return domain.LifecycleHooks{
		OnNodeEnter:   node,
		OnNodeLeave:   node,
		OnRunComplete: run,
		OnRunFailed:   run,
	}
}

func (sm *StreamManager) publish(graphID string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		sm.logger.Error("SSE: encode event", "error", err)
		return
	}
	sm.Broadcast(graphID, string(data))
}

type runEventPayload struct {
	*domain.RunEvent
	Error string `json:"error,omitempty"`
}

func runPayload(e *domain.RunEvent) runEventPayload {
	p := runEventPayload{RunEvent: e}
	if e.Err != nil {
		p.Error = e.Err.Error()
	}
	return p
}
