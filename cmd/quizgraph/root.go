package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/quizgraph/internal/config"
	"github.com/aretw0/quizgraph/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quizgraph",
	Short: "Quizgraph authors and validates branching quizzes",
	Long: `Quizgraph edits quiz graphs made of start, question and result nodes,
checks them for structural problems and serves them over HTTP or MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "quizgraph.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides the config")
}

// loadConfig reads the configuration named by --config and builds the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
