package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/quizgraph/internal/presentation/tui"
	"github.com/aretw0/quizgraph/pkg/codec"
	"github.com/aretw0/quizgraph/pkg/diagnostics"
	"github.com/spf13/cobra"
)

var errInvalidQuiz = errors.New("quiz has errors")

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a quiz file for structural problems",
	Long: `Runs the validator over a quiz file (a persisted record or a bare canvas)
and prints the findings with the health score. Exits non-zero when any
finding is an error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sockets, _ := cmd.Flags().GetBool("sockets")
		plain, _ := cmd.Flags().GetBool("plain")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		g, _, warnings, err := codec.Parse(data)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", w)
		}

		var opts []diagnostics.Option
		if sockets {
			opts = append(opts, diagnostics.WithSocketCheck())
		}
		report := diagnostics.Validate(g, opts...)

		md := tui.ReportMarkdown(args[0], report)
		if !plain {
			if out, err := tui.NewRenderer()(md); err == nil {
				md = out
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), md)

		if report.HasErrors() {
			return errInvalidQuiz
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("sockets", false, "Also report edges bound to sockets that no longer exist")
	validateCmd.Flags().Bool("plain", false, "Print raw markdown instead of rendering it")
}
