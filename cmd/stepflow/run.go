package main

import (
	"os"

	"github.com/aretw0/stepflow/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <graph.yaml>",
	Short: "Run a graph document once",
	Long: `Loads a graph document, runs it with the built-in nodes and prints a report.
The --state JSON object is merged over the document's initial_state.
Markdown output is rendered for the terminal unless stdout is redirected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, _ := cmd.Flags().GetString("state")
		jsonMode, _ := cmd.Flags().GetBool("json")
		mermaid, _ := cmd.Flags().GetBool("mermaid")

		pretty := term.IsTerminal(int(os.Stdout.Fd()))
		if cmd.Flags().Changed("pretty") {
			pretty, _ = cmd.Flags().GetBool("pretty")
		}

		engine, closeStore, err := cli.NewEngine(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		_, err = cli.Run(cmd.Context(), engine, cli.RunOptions{
			GraphPath: args[0],
			State:     state,
			JSON:      jsonMode,
			Pretty:    pretty,
			Mermaid:   mermaid,
			Output:    cmd.OutOrStdout(),
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("state", "", "Initial state as a JSON object")
	runCmd.Flags().Bool("json", false, "Print the run result as JSON")
	runCmd.Flags().Bool("pretty", false, "Render the markdown report (default: when stdout is a terminal)")
	runCmd.Flags().Bool("mermaid", false, "Append a Mermaid diagram with the visited nodes highlighted")
}
