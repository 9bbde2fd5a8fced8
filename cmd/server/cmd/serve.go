package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"eventregistration/config"
	"eventregistration/internal/app"
	"eventregistration/internal/metrics"
)

func newServeCommand() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and the background notification workers.

The server stops on SIGINT or SIGTERM, waiting up to SHUTDOWN_TIMEOUT for
in-flight requests and queued notifications.

Examples:
  # Start with configuration from the environment
  server serve

  # Start on a specific port with the sqlite store
  STORE_DRIVER=sqlite server serve --port 9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), port)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "server port (default: PORT or 8080)")
	return cmd
}

func runServer(parent context.Context, port int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if port != 0 {
		cfg.Port = strconv.Itoa(port)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)
	logger.Info("starting event registration server", "version", Version, "env", cfg.Environment)
	if cfg.GeneratedJWTSecret {
		logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}

	metrics.Init(Version)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
