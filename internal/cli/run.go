package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/internal/presentation/graph"
	"github.com/aretw0/stepflow/internal/presentation/tui"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/dsl"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	GraphPath string
	State     string // Raw JSON object merged over the document's initial_state
	JSON      bool
	Pretty    bool
	Mermaid   bool
	Output    io.Writer
}

// Run loads a graph document, executes it once and reports the result.
func Run(ctx context.Context, engine *stepflow.Engine, opts RunOptions) (*domain.RunResult, error) {
	def, err := dsl.Load(opts.GraphPath)
	if err != nil {
		return nil, err
	}

	overrides, err := dsl.ParseState(opts.State)
	if err != nil {
		return nil, fmt.Errorf("error parsing --state: %w", err)
	}
	initial := def.InitialState.Clone()
	for k, v := range overrides {
		initial[k] = v
	}

	graphID, err := engine.CreateGraph(ctx, def.StartNode, def.Edges)
	if err != nil {
		return nil, err
	}

	runner := stepflow.NewRunner(opts.Output)
	runner.Headless = opts.JSON
	if opts.Pretty {
		runner.Renderer = tui.NewRenderer()
	}

	res, err := runner.Run(ctx, engine, graphID, initial)
	if err != nil {
		return nil, err
	}

	if opts.Mermaid && !opts.JSON {
		g, err := engine.Graph(ctx, graphID)
		if err != nil {
			return res, err
		}
		fmt.Fprintln(opts.Output)
		fmt.Fprint(opts.Output, graph.GenerateMermaid(g, graph.OverlayFromLog(res.Log)))
	}
	return res, nil
}

// GraphOptions contains the configuration for the graph command.
type GraphOptions struct {
	GraphPath string
	Check     bool
	Output    io.Writer
}

// Graph prints the Mermaid diagram of a graph document. With Check it first
// verifies that every referenced node is registered.
func Graph(engine *stepflow.Engine, opts GraphOptions) error {
	def, err := dsl.Load(opts.GraphPath)
	if err != nil {
		return err
	}

	g := &domain.Graph{
		ID:        strings.TrimSuffix(filepath.Base(opts.GraphPath), filepath.Ext(opts.GraphPath)),
		StartNode: def.StartNode,
		Edges:     def.Edges,
	}

	if opts.Check {
		if err := engine.Validate(g); err != nil {
			return err
		}
		fmt.Fprintln(opts.Output, tui.Success(fmt.Sprintf("%s: %d nodes, all registered", opts.GraphPath, len(g.NodeNames()))))
		return nil
	}

	fmt.Fprint(opts.Output, graph.GenerateMermaid(g, nil))
	return nil
}
