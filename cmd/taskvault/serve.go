// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

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

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/taskvault/taskvault/internal/auth"
	authpg "github.com/taskvault/taskvault/internal/auth/postgres"
	"github.com/taskvault/taskvault/internal/config"
	"github.com/taskvault/taskvault/internal/httpapi"
	"github.com/taskvault/taskvault/internal/logging"
	"github.com/taskvault/taskvault/internal/observability"
	"github.com/taskvault/taskvault/internal/store"
	"github.com/taskvault/taskvault/internal/todo"
	todopg "github.com/taskvault/taskvault/internal/todo/postgres"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand with all flags configured.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the TaskVault API server",
		Long: `Start the HTTP API server, serving user registration, login,
and todo management backed by PostgreSQL.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, cmd)
		},
	}

	// Flags mirror config keys; flag values override file and environment.
	cmd.Flags().String("http.addr", ":8080", "HTTP listen address")
	cmd.Flags().String("metrics.addr", "127.0.0.1:9100", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().String("log.format", "json", "log format (json or text)")
	cmd.Flags().String("log.level", "info", "log level (debug, info, warn, error)")

	return cmd
}

// runServe wires the storage, services, and servers together and blocks until
// shutdown.
func runServe(ctx context.Context, cfg *config.Config, cmd *cobra.Command) error {
	logger := logging.Setup("taskvault", version, cfg.Log.Format, parseLogLevel(cfg.Log.Level), nil)
	slog.SetDefault(logger)

	logger.Info("starting taskvault",
		"http_addr", cfg.HTTP.Addr,
		"metrics_addr", cfg.Metrics.Addr,
		"log_format", cfg.Log.Format,
	)

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("database connected")

	hasher := auth.NewArgon2idHasher(auth.HasherParams{
		Time:    cfg.Argon2.Time,
		Memory:  cfg.Argon2.MemoryK,
		Threads: cfg.Argon2.Threads,
	})
	issuer, err := auth.NewTokenIssuer([]byte(cfg.JWT.Secret), cfg.JWT.Algorithm)
	if err != nil {
		return err
	}

	authSvc, err := auth.NewServiceWithLogger(
		authpg.NewUserRepository(pool), hasher, issuer, cfg.JWT.TTL, logger,
	)
	if err != nil {
		return err
	}
	todoSvc, err := todo.NewServiceWithLogger(todopg.NewTodoRepository(pool), logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start observability server if configured
	var obsServer *observability.Server
	var metrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		obsServer = observability.NewServer(cfg.Metrics.Addr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(ctx, time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		if _, err := obsServer.Start(); err != nil {
			return err
		}
		metrics = obsServer.Metrics()
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	api := httpapi.NewServer(authSvc, todoSvc, logger, httpapi.Options{
		Metrics:     metrics,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErrChan := make(chan error, 1)
	go func() {
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			serveErrChan <- serveErr
		}
		close(serveErrChan)
	}()

	cmd.Println("TaskVault API server started")
	logger.Info("api server ready", "addr", cfg.HTTP.Addr)

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case serveErr := <-serveErrChan:
		if serveErr != nil {
			runErr = oops.Code("HTTP_SERVE_FAILED").Wrap(serveErr)
			logger.Error("api server error", "error", serveErr)
		}
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	// Graceful shutdown
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping api server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return runErr
}

// parseLogLevel maps a config string to a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
