package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aretw0/quizgraph/internal/metrics"
	"github.com/aretw0/quizgraph/internal/presentation/tui"
	httpAdapter "github.com/aretw0/quizgraph/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the authoring HTTP server",
	Long:  `Serves the quiz authoring API (commands, diagnostics, change stream) over HTTP using the configured store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.HTTP.Port, _ = cmd.Flags().GetInt("port")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		b, err := openBackend(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer b.Close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(reg)

		sessions, err := b.sessions(cfg, logger, m)
		if err != nil {
			return err
		}
		defer sessions.CloseAll()

		handler := httpAdapter.NewHandler(sessions,
			httpAdapter.WithEvents(b.events),
			httpAdapter.WithMetrics(m, reg),
			httpAdapter.WithLogger(logger),
		)
		srv := &http.Server{
			Addr:              ":" + strconv.Itoa(cfg.HTTP.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			tui.PrintBanner(cmd.ErrOrStderr())
			logger.Info("Starting quizgraph server", "address", srv.Addr, "store", cfg.Store.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion. SSE streams
			// end when their request context is cancelled.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("Error killing server", "err", err)
				}
			}
			logger.Info("Quizgraph server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides http.port)")
}
