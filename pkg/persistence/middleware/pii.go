package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/ports"
)

// Mask replaces the value of every redacted key.
const Mask = "***"

type piiMiddleware struct {
	next     ports.RunStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks values of keys matching the
// patterns, in the final state and in every log snapshot.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.RunStore) ports.RunStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) SaveRun(ctx context.Context, run *domain.Run) error {
	// Deep copy so the caller's run is left untouched.
	masked := &domain.Run{
		ID:         run.ID,
		GraphID:    run.GraphID,
		FinalState: deepCopyMap(run.FinalState),
		Log:        make([]domain.LogEntry, len(run.Log)),
	}
	maskMap(masked.FinalState, m.patterns)
	for i, entry := range run.Log {
		snap := deepCopyMap(entry.StateSnapshot)
		maskMap(snap, m.patterns)
		masked.Log[i] = domain.LogEntry{Node: entry.Node, StateSnapshot: snap}
	}

	return m.next.SaveRun(ctx, masked)
}

func (m *piiMiddleware) LoadRun(ctx context.Context, runID string) (*domain.Run, error) {
	return m.next.LoadRun(ctx, runID)
}

func (m *piiMiddleware) ListRuns(ctx context.Context) ([]string, error) {
	return m.next.ListRuns(ctx)
}

// Helpers

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch sub := v.(type) {
	case map[string]any:
		return deepCopyMap(sub)
	case domain.State:
		return deepCopyMap(sub)
	case []any:
		out := make([]any, len(sub))
		for i, item := range sub {
			out[i] = deepCopyValue(item)
		}
		return out
	}
	return v
}

// maskMap expects a tree produced by deepCopyMap: nested states are plain maps.
func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if matchesAny(k, patterns) {
			m[k] = Mask
			continue
		}
		maskValue(v, patterns)
	}
}

func maskValue(v any, patterns []*regexp.Regexp) {
	switch sub := v.(type) {
	case map[string]any:
		maskMap(sub, patterns)
	case []any:
		for _, item := range sub {
			maskValue(item, patterns)
		}
	}
}

func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
