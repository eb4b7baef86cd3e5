package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vitacheck/engine/pkg/cache"
	"vitacheck/engine/pkg/cli"
	"vitacheck/engine/pkg/server"
)

var serveFlags struct {
	listenAddress string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serve starts the HTTP server, which exposes POST /v1/check over the
configured listen address and runs until it receives SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer logger.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}
	defer d.Close()

	sweeper := cache.NewSweeper(d.orchestrator.Pairs, cfg.Cache.SweepSchedule)
	if err := sweeper.Start(ctx); err != nil {
		logger.Warn("cache sweeper failed to start", "error", err)
	}
	defer sweeper.Stop()

	srv := server.NewServer(&cfg.Server, d.orchestrator, d.db, d.metrics)

	// Start is given a context that is never cancelled by this function;
	// shutdown is driven explicitly below so we can wait for it to finish
	// before the deferred store closes run.
	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting http server", "address", cfg.Server.ListenAddress)
		if err := srv.Start(context.Background()); err != nil {
			errChan <- err
		}
	}()

	sigChan := cli.WaitForShutdown()
	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	}
}
