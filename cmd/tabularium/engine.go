// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/* engine.go - Shared Bootstrap for One-Shot Commands
 *
 * Every subcommand that touches the store or the backup directory goes
 * through openEngine: load configuration, initialize logging, open the
 * store, build the backup manager, attach the webhook notifier when one
 * is configured. Commands defer engine.Close and run the operation.
 */
//nolint:staticcheck // File documentation, not package doc

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tabularium/tabularium/internal/backup"
	"github.com/tabularium/tabularium/internal/config"
	"github.com/tabularium/tabularium/internal/logging"
	"github.com/tabularium/tabularium/internal/store"
)

// engine bundles the opened store and manager for one command invocation.
type engine struct {
	cfg     *config.Config
	store   store.Store
	manager *backup.Manager
}

// openEngine loads configuration and wires the backup manager. The caller
// owns the returned engine and must Close it.
func openEngine() (*engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	initLogging(cfg)

	st, err := store.Open(&cfg.Store)
	if err != nil {
		return nil, err
	}

	mgr, err := backup.NewManager(&cfg.Backup, st)
	if err != nil {
		st.Close() //nolint:errcheck // Best effort cleanup
		return nil, err
	}

	if cfg.Notify.WebhookURL != "" {
		mgr.SetNotifier(backup.NewNotifier(&cfg.Notify))
	}

	return &engine{cfg: cfg, store: st, manager: mgr}, nil
}

// Close releases the store connection.
func (e *engine) Close() {
	if err := e.store.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing store")
	}
}

// loadConfig honors the --config flag, falling back to auto-detection.
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load()
}

// initLogging configures the global logger from the loaded configuration.
func initLogging(cfg *config.Config) {
	logging.Init(logging.Config{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		Caller:         cfg.Logging.Caller,
		Timestamp:      true,
		FilePath:       cfg.Logging.File.Path,
		FileMaxSizeMB:  cfg.Logging.File.MaxSizeMB,
		FileMaxBackups: cfg.Logging.File.MaxBackups,
		FileMaxAgeDays: cfg.Logging.File.MaxAgeDays,
	})
}

// signalContext returns a context canceled on SIGINT or SIGTERM, so a
// long-running backup or restore stops cleanly between tables.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received interrupt, stopping after current table")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}
