package main

import (
	"fmt"
	"os"

	"github.com/aretw0/quizgraph/internal/presentation/graph"
	"github.com/aretw0/quizgraph/pkg/codec"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export the quiz graph visualization",
	Long:  `Reads a quiz file and outputs a Mermaid diagram (graph LR) with one labelled edge per option socket. Orphan nodes are highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		g, _, _, err := codec.Parse(data)
		if err != nil {
			return err
		}
		overlay := &graph.GraphOverlay{Orphans: graph.Orphans(g)}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
