// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

// Package main is the entry point for the tabularium command.
//
// Tabularium captures logical snapshots of a relational store (DuckDB or
// SQLite), keeps them in a managed backup directory with a JSON catalog,
// and restores them with per-table failure containment. The same engine
// backs every surface: one-shot CLI subcommands for scripted operation and
// a serve mode that runs the scheduler and admin API under a supervisor.
//
// # Command Surface
//
//	tabularium backup        Create a backup of the configured store
//	tabularium restore       Restore a backup into the configured store
//	tabularium list          List backups in the catalog
//	tabularium stats         Show aggregate backup statistics
//	tabularium delete        Delete a single backup
//	tabularium validate      Run integrity checks against a backup
//	tabularium test-restore  Rehearse a restore without touching the store
//	tabularium export        Copy a backup out of the managed directory
//	tabularium import        Bring an external snapshot into the catalog
//	tabularium cleanup       Apply the retention policy (--dry-run to preview)
//	tabularium serve         Run the scheduler and admin API as a daemon
//	tabularium version       Print version information
//
// All subcommands accept --config to name a config file explicitly and
// --json to emit machine-readable output on stdout. Logs always go to
// stderr, so --json output stays parseable in pipelines.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (TABULARIUM_* prefix)
//   - Config file (--config flag, or config.yaml auto-detection)
//   - Built-in defaults
//
// The minimum useful configuration names the store and the backup
// directory:
//
//	export TABULARIUM_STORE_DRIVER=duckdb
//	export TABULARIUM_STORE_PATH=/data/app.db
//	export TABULARIUM_BACKUP_DIR=/data/backups
//	tabularium backup
//
// # Exit Codes
//
// Commands exit 0 on success and 1 on operation failure. A backup or
// restore that fails on some tables but succeeds on others is a partial
// success: the per-table outcomes are printed and the command exits 0.
// The command fails only when the operation as a whole fails, for example
// when every table fails or the backup cannot be found.
//
// # Serve Mode
//
// The serve subcommand runs until SIGINT or SIGTERM, supervising the
// backup scheduler and the HTTP admin API as restartable services. See
// the serve command documentation for the shutdown sequence.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configFile string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "tabularium",
	Short: "Logical backup and restore for DuckDB and SQLite stores",
	Long: `Tabularium captures full logical snapshots of a relational store,
keeps them in a managed directory with a JSON catalog, and restores
them table by table. Snapshots are plain JSON (optionally gzip or
zstd compressed), portable between store engines.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra command registration
func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file (default: auto-detect config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON on stdout")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(testRestoreCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
