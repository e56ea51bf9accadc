package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/hubconn/internal/app"
	"github.com/ppiankov/hubconn/internal/logging"
	"github.com/ppiankov/hubconn/internal/server"
	"github.com/ppiankov/hubconn/internal/store"
	"github.com/ppiankov/hubconn/pkg/config"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	var configPath string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Long: `Start an HTTP server exposing POST /v1/analyze, /v1/compare and
/v1/flights. Settings come from hubconn-server.yaml (./ or /etc/hubconn/),
--config, and HUBCONN_* environment variables such as HUBCONN_PORT.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig(configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, noCache)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to server config file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable the result cache")

	return cmd
}

// runServe blocks until ctx is cancelled.
func runServe(ctx context.Context, cfg *config.ServerConfig, noCache bool) error {
	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

	opts := []server.Option{server.WithVersion(version)}
	if !noCache {
		path := cfg.CachePath
		if path == "" {
			var err error
			if path, err = app.DefaultCachePath(); err != nil {
				return fmt.Errorf("failed to resolve cache path: %w", err)
			}
		}

		cache, err := store.Open(ctx, path, cfg.CacheTTL)
		if err != nil {
			return err
		}
		defer func() {
			_ = cache.Close()
		}()
		if _, err := cache.Prune(ctx); err != nil {
			logger.Warn("cache prune failed", slog.String("error", err.Error()))
		}

		opts = append(opts, server.WithCache(cache))
		logger.Info("result cache enabled", slog.String("path", path))
	}

	return server.New(cfg, logger, opts...).Run(ctx)
}
