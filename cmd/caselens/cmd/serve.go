package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/caselens/caselens/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes ingestion and search over HTTP:

  POST /ingest          ingest judgment text
  GET  /search          query the hybrid index
  GET  /cases           list stored cases
  GET  /cases/:title    fetch one structured judgment
  GET  /healthz         liveness and corpus stats`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			stack, err := openStack(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = stack.Close() }()

			srv := server.New(cfg, stack.engine, stack.pipeline, stack.docs, nil)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
}
