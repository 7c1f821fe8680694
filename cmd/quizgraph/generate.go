package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/quizgraph/pkg/codec"
	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/generate"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <descriptors.json>",
	Short: "Build a linear quiz from question descriptors",
	Long: `Reads question descriptors (a JSON array, or an object with "questions" and
"scoreRanges") and writes a quiz record wiring start, one node per question
and a result node in sequence.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rangesPath, _ := cmd.Flags().GetString("ranges")
		outPath, _ := cmd.Flags().GetString("output")
		quizID, _ := cmd.Flags().GetString("id")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		req, err := generate.DecodeRequest(data)
		if err != nil {
			return err
		}
		if rangesPath != "" {
			raw, err := os.ReadFile(rangesPath)
			if err != nil {
				return err
			}
			var ranges []domain.ScoreRange
			if err := json.Unmarshal(raw, &ranges); err != nil {
				return fmt.Errorf("parse score ranges: %w", err)
			}
			req.ScoreRanges = ranges
		}

		g, err := generate.New().Generate(req.Questions, req.ScoreRanges)
		if err != nil {
			return err
		}

		if quizID == "" {
			quizID = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		rec, err := codec.Encode(quizID, g, nil)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		out = append(out, '\n')

		if outPath == "" {
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		if err := os.WriteFile(outPath, out, 0644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Generated %d nodes into %s\n", len(g.Nodes), outPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().String("ranges", "", "JSON file with score ranges (overrides ranges in the descriptors file)")
	generateCmd.Flags().StringP("output", "o", "", "Write the quiz record to this file instead of stdout")
	generateCmd.Flags().String("id", "", "Quiz id of the record (defaults to the descriptors file name)")
}
