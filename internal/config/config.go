// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package config

import "time"

// Supported store drivers.
const (
	StoreDriverDuckDB = "duckdb"
	StoreDriverSQLite = "sqlite"
)

// Config holds all application configuration loaded from config files and
// environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via TABULARIUM_* variables
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from
// multiple goroutines.
type Config struct {
	Store    StoreConfig    `koanf:"store"`
	Backup   BackupConfig   `koanf:"backup"`
	Schedule ScheduleConfig `koanf:"schedule"`
	Server   ServerConfig   `koanf:"server"`
	Notify   NotifyConfig   `koanf:"notify"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// StoreConfig holds the relational store connection settings.
//
// Two drivers are supported: "duckdb" (the default, an embedded analytical
// store) and "sqlite" (CGo-free, useful for lightweight deployments and
// tests). Threads and MaxMemory tune the DuckDB engine and are ignored by
// SQLite.
//
// Environment Variables:
//   - TABULARIUM_STORE_DRIVER: duckdb or sqlite (default: duckdb)
//   - TABULARIUM_STORE_PATH: Database file path
//   - TABULARIUM_STORE_THREADS: Thread count, 0 = runtime.NumCPU()
//   - TABULARIUM_STORE_MAX_MEMORY: DuckDB memory limit (e.g. 2GB)
//   - TABULARIUM_STORE_QUERY_TIMEOUT: Per-statement timeout, 0 = unbounded
type StoreConfig struct {
	Driver       string        `koanf:"driver"`
	Path         string        `koanf:"path"`
	Threads      int           `koanf:"threads"`
	MaxMemory    string        `koanf:"max_memory"`
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// BackupConfig holds the managed backup directory settings and the backup
// policy: which tables to capture, how to encode snapshots on disk, and how
// long to keep them.
//
// Table Filtering:
// IncludeTables, when non-empty, is an allowlist; only listed tables are
// captured. ExcludeTables is subtracted afterwards, so a table listed in
// both is excluded. Filters apply to backup creation only; restore always
// replays every table a snapshot holds.
//
// Encoding:
// Snapshots are stored as JSON documents, optionally compressed. Encoding
// selects the on-disk form directly (json, json.gz, json.zst). Compress is
// the legacy shorthand: when Encoding is unset and Compress is true, json.gz
// is used.
//
// Retention:
// RetentionDays bounds the age of kept backups, measured from each backup's
// creation time. 0 disables retention entirely.
type BackupConfig struct {
	Dir           string   `koanf:"dir"`
	IncludeTables []string `koanf:"include_tables"`
	ExcludeTables []string `koanf:"exclude_tables"`
	Encoding      string   `koanf:"encoding"`
	Compress      bool     `koanf:"compress"`
	RetentionDays int      `koanf:"retention_days"`
}

// EffectiveEncoding resolves the configured snapshot encoding, applying the
// Compress shorthand when Encoding is unset.
func (c *BackupConfig) EffectiveEncoding() string {
	if c.Encoding != "" {
		return c.Encoding
	}
	if c.Compress {
		return "json.gz"
	}
	return "json"
}

// ScheduleConfig holds the scheduled backup settings for serve mode.
//
// When Cron is set it takes precedence over Interval and is parsed with the
// standard 5-field cron syntax plus descriptors (@daily, @every 6h). When
// only Interval is set, backups run at that fixed period.
//
// Environment Variables:
//   - TABULARIUM_SCHEDULE_ENABLED: Enable scheduled backups (default: false)
//   - TABULARIUM_SCHEDULE_INTERVAL: Fixed interval (default: 24h)
//   - TABULARIUM_SCHEDULE_CRON: Cron expression (overrides interval)
//   - TABULARIUM_SCHEDULE_RUN_RETENTION: Run retention after each backup (default: true)
type ScheduleConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Interval     time.Duration `koanf:"interval"`
	Cron         string        `koanf:"cron"`
	RunRetention bool          `koanf:"run_retention"`
}

// ServerConfig holds the HTTP API settings for serve mode.
//
// AuthToken, when set, requires every API request to carry it as a bearer
// token. An empty token disables authentication; the server logs a warning
// at startup in that case.
type ServerConfig struct {
	Addr              string        `koanf:"addr"`
	AuthToken         string        `koanf:"auth_token"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// NotifyConfig holds webhook notification settings. When WebhookURL is set,
// the engine POSTs a JSON summary after each backup, restore and retention
// run. Delivery is best-effort; failures are logged and never fail the
// operation that triggered them.
type NotifyConfig struct {
	WebhookURL string        `koanf:"webhook_url"`
	Timeout    time.Duration `koanf:"timeout"`
}

// LoggingConfig holds log level and output settings.
//
// Environment Variables:
//   - TABULARIUM_LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - TABULARIUM_LOG_FORMAT: json or console (default: json)
//   - TABULARIUM_LOG_CALLER: Include caller information (default: false)
type LoggingConfig struct {
	Level  string            `koanf:"level"`
	Format string            `koanf:"format"`
	Caller bool              `koanf:"caller"`
	File   LoggingFileConfig `koanf:"file"`
}

// LoggingFileConfig holds optional rotating file output settings. An empty
// Path keeps logging on stderr only.
type LoggingFileConfig struct {
	Path       string `koanf:"path"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}
