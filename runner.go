package stepflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aretw0/stepflow/pkg/domain"
)

// Runner executes a graph and writes a report of the run to Output.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms the markdown report before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a new Runner writing to out.
func NewRunner(out io.Writer) *Runner {
	return &Runner{Output: out}
}

// Run executes graphID on engine and reports the result.
// Headless runners print the RunResult as indented JSON; otherwise a markdown
// report goes through Renderer (when set).
func (r *Runner) Run(ctx context.Context, engine *Engine, graphID string, initial domain.State) (*domain.RunResult, error) {
	if r.Output == nil {
		return nil, fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	res, err := engine.Run(ctx, graphID, initial)
	if err != nil {
		return nil, err
	}

	if r.Headless {
		enc := json.NewEncoder(r.Output)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return res, fmt.Errorf("encode result: %w", err)
		}
		return res, nil
	}

	output := Report(res)
	if r.Renderer != nil {
		if rendered, err := r.Renderer(output); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
	return res, nil
}

// Report formats a run result as markdown: one table row per node invocation
// listing the keys it added or changed, followed by the final state.
func Report(res *domain.RunResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Run %s\n\n", res.RunID)
	sb.WriteString("| Step | Node | Changed keys |\n")
	sb.WriteString("|---|---|---|\n")

	prev := domain.State{}
	for i, entry := range res.Log {
		changed := changedKeys(prev, entry.StateSnapshot)
		fmt.Fprintf(&sb, "| %d | %s | %s |\n", i+1, entry.Node, strings.Join(changed, ", "))
		prev = entry.StateSnapshot
	}

	sb.WriteString("\n## Final state\n\n```json\n")
	data, err := json.MarshalIndent(res.FinalState, "", "  ")
	if err != nil {
		data = []byte(fmt.Sprintf("%v", res.FinalState))
	}
	sb.Write(data)
	sb.WriteString("\n```\n")
	return sb.String()
}

func changedKeys(prev, next domain.State) []string {
	var keys []string
	for k, v := range next {
		old, ok := prev[k]
		if !ok || fmt.Sprintf("%v", old) != fmt.Sprintf("%v", v) {
			keys = append(keys, k)
		}
	}
	for k := range prev {
		if _, ok := next[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
