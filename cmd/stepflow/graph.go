package main

import (
	"github.com/aretw0/stepflow/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <graph.yaml>",
	Short: "Export or check a graph document",
	Long:  `Outputs a Mermaid diagram (graph TD) of the document, or with --check verifies that every node it references is registered.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		check, _ := cmd.Flags().GetBool("check")

		engine, closeStore, err := cli.NewEngine(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		return cli.Graph(engine, cli.GraphOptions{
			GraphPath: args[0],
			Check:     check,
			Output:    cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().Bool("check", false, "Validate the graph instead of printing it")
}
