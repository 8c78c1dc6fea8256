package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/lintdoc/internal/api"
)

func (c *cli) serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lint HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, out, err := c.load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			// The server logs JSON to stdout regardless of --format.
			e, err := newEnv(cfg, slog.New(slog.NewJSONHandler(c.stdout, nil)), out)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), e)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides config)")
	return cmd
}

func serve(ctx context.Context, e *env) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(e.linter, e.log, e.cfg.Server)
	httpServer := &http.Server{
		Addr:         ":" + e.cfg.Server.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		e.log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	e.log.Info("starting lintdoc", "port", e.cfg.Server.Port, "rules", len(e.linter.Rules()), "auth", e.cfg.Server.APIKey != "")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		e.log.Error("server error", "error", err)
		return exitCode(1)
	}
	return nil
}
