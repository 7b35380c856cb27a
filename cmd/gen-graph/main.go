// Command gen-graph writes the built-in workflow definitions as YAML documents
// that `stepflow run` and `stepflow graph` can load.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/stepflow/pkg/dsl"
	"github.com/aretw0/stepflow/pkg/workflows/summarize"
)

func main() {
	targetDir := "examples/summarize"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}

	if err := generate(targetDir); err != nil {
		fmt.Fprintf(os.Stderr, "gen-graph: %v\n", err)
		os.Exit(1)
	}
}

func generate(targetDir string) error {
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return err
	}

	docs := map[string]*dsl.Definition{
		"graph.yaml": summarize.Graph(),
	}
	for name, def := range docs {
		data, err := def.Marshal()
		if err != nil {
			return fmt.Errorf("marshal %s: %w", name, err)
		}
		path := filepath.Join(targetDir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}
