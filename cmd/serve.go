package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "backoffice/internal/http"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, cleanup, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if cfg.Seed.Path != "" {
				if _, err := a.seed(ctx, cfg.Seed.Path); err != nil {
					return err
				}
			}
			return serve(a)
		},
	}
}

func serve(a *app) error {
	ctx := context.Background()
	srv := httpapi.NewServer(a.services,
		httpapi.WithLogger(a.log),
		httpapi.WithMetrics(a.metrics),
		httpapi.WithRateLimit(a.cfg.Server.RateLimit.RPS, a.cfg.Server.RateLimit.Burst),
	)
	httpServer := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof(ctx, "HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	srv.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Errorf(ctx, "shutdown error: %v", err)
		return err
	}
	a.log.Infof(ctx, "HTTP server stopped")
	return nil
}
