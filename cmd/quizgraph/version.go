package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/quizgraph"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of quizgraph",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "quizgraph version %s\n", strings.TrimSpace(quizgraph.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
