// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/* serve_cmd.go - Daemon Mode
 *
 * Serve wires the full engine and runs it under a supervisor tree until
 * SIGINT or SIGTERM:
 *
 *  1. Configuration: Koanf layered load (defaults, file, environment)
 *  2. Store: DuckDB or SQLite connection, closed last on the way out
 *  3. Backup manager: catalog load, webhook notifier when configured
 *  4. Scheduler: interval or cron backups (when schedule.enabled)
 *  5. API server: chi router with auth, rate limiting and metrics
 *  6. Supervisor: suture tree restarting failed services with backoff
 *
 * Shutdown cancels the tree's context, which stops the scheduler and
 * drains the HTTP server within server.shutdown_timeout. Services that
 * fail to stop in time are reported before exit.
 */
//nolint:staticcheck // File documentation, not package doc

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tabularium/tabularium/internal/api"
	"github.com/tabularium/tabularium/internal/backup"
	"github.com/tabularium/tabularium/internal/logging"
	"github.com/tabularium/tabularium/internal/metrics"
	"github.com/tabularium/tabularium/internal/store"
	"github.com/tabularium/tabularium/internal/supervisor"
	"github.com/tabularium/tabularium/internal/supervisor/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler and admin API as a daemon",
	Long: `Serve runs Tabularium as a long-lived process: the backup scheduler
(when enabled) and the HTTP admin API, supervised as restartable
services. The process stops cleanly on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	initLogging(cfg)

	logging.Info().Str("version", version).Msg("Starting Tabularium")
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	logging.Info().
		Str("store_driver", cfg.Store.Driver).
		Str("store_path", cfg.Store.Path).
		Str("backup_dir", cfg.Backup.Dir).
		Str("addr", cfg.Server.Addr).
		Bool("schedule_enabled", cfg.Schedule.Enabled).
		Msg("Configuration loaded")

	st, err := store.Open(&cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	mgr, err := backup.NewManager(&cfg.Backup, st)
	if err != nil {
		return fmt.Errorf("failed to initialize backup manager: %w", err)
	}
	logging.Info().
		Str("dir", cfg.Backup.Dir).
		Str("encoding", cfg.Backup.EffectiveEncoding()).
		Int("retention_days", cfg.Backup.RetentionDays).
		Msg("Backup manager initialized")

	if cfg.Notify.WebhookURL != "" {
		mgr.SetNotifier(backup.NewNotifier(&cfg.Notify))
		logging.Info().Str("webhook_url", cfg.Notify.WebhookURL).Msg("Webhook notifications enabled")
	}

	if cfg.Server.AuthToken == "" {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: API authentication is DISABLED")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  Every endpoint, including restore and delete, is open to")
		logging.Warn().Msg("  anyone who can reach the listen address.")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  Set server.auth_token (TABULARIUM_SERVER_AUTH_TOKEN) before")
		logging.Warn().Msg("  exposing the API beyond localhost.")
		logging.Warn().Msg("============================================================")
	}
	if cfg.Server.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (server.rate_limit_disabled=true)")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}

	if cfg.Schedule.Enabled {
		sched, err := backup.NewScheduler(mgr, &cfg.Schedule)
		if err != nil {
			return fmt.Errorf("failed to create backup scheduler: %w", err)
		}
		tree.AddEngineService(services.NewSchedulerService(sched))
		logging.Info().
			Dur("interval", cfg.Schedule.Interval).
			Str("cron", cfg.Schedule.Cron).
			Bool("run_retention", cfg.Schedule.RunRetention).
			Msg("Backup scheduler added to supervisor tree")
	} else {
		logging.Info().Msg("Scheduled backups disabled (schedule.enabled=false)")
	}

	handler := api.NewHandler(mgr, st)
	router := api.NewRouter(handler, &cfg.Server)
	srv := api.NewServer(&cfg.Server, router.Setup())
	tree.AddAPIService(services.NewAPIServerService(srv, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", srv.Addr()).Msg("API server added to supervisor tree")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Tabularium stopped gracefully")
	return nil
}
