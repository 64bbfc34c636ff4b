// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
Package config provides centralized configuration management for Tabularium.

This package handles loading, validation, and parsing of configuration for
all application components. It ensures consistent configuration across the
CLI and the long-running server and provides sensible defaults for optional
settings.

# Configuration Sources

Configuration is loaded with Koanf v2 in three layers, later layers
overriding earlier ones:

 1. Defaults: Built-in sensible defaults for all optional settings
 2. Config File: Optional YAML config file (config.yaml)
 3. Environment Variables: Override any setting

# Configuration Structure

The package organizes configuration into logical groups:

  - StoreConfig: Relational store connection (driver, path, tuning)
  - BackupConfig: Managed backup directory, table filters, encoding, retention
  - ScheduleConfig: Periodic backup scheduling (interval or cron)
  - ServerConfig: HTTP API settings (address, auth token, rate limits)
  - NotifyConfig: Webhook notification on backup completion
  - LoggingConfig: Log levels, output formats, optional file rotation

# Environment Variables

All variables carry the TABULARIUM_ prefix:

Store (StoreConfig):
  - TABULARIUM_STORE_DRIVER: Store driver, duckdb or sqlite (default: duckdb)
  - TABULARIUM_STORE_PATH: Database file path (default: /data/tabularium.duckdb)
  - TABULARIUM_STORE_THREADS: Thread count, 0 = CPU count (default: 0)
  - TABULARIUM_STORE_MAX_MEMORY: Memory limit, DuckDB only (default: 2GB)
  - TABULARIUM_STORE_QUERY_TIMEOUT: Per-statement timeout, 0 = unbounded (default: 5m)

Backup (BackupConfig):
  - TABULARIUM_BACKUP_DIR: Managed backup directory (default: /data/backups)
  - TABULARIUM_BACKUP_INCLUDE_TABLES: Comma-separated table allowlist
  - TABULARIUM_BACKUP_EXCLUDE_TABLES: Comma-separated table denylist
  - TABULARIUM_BACKUP_ENCODING: Snapshot encoding, json, json.gz or json.zst
  - TABULARIUM_BACKUP_COMPRESS: Shorthand for encoding json.gz (default: false)
  - TABULARIUM_BACKUP_RETENTION_DAYS: Retention window in days (default: 30)

Schedule (ScheduleConfig):
  - TABULARIUM_SCHEDULE_ENABLED: Enable scheduled backups (default: false)
  - TABULARIUM_SCHEDULE_INTERVAL: Fixed interval between backups (default: 24h)
  - TABULARIUM_SCHEDULE_CRON: Cron expression, overrides interval when set
  - TABULARIUM_SCHEDULE_RUN_RETENTION: Run retention after each scheduled backup (default: true)

Server (ServerConfig):
  - TABULARIUM_SERVER_ADDR: Listen address (default: :7878)
  - TABULARIUM_SERVER_AUTH_TOKEN: Bearer token for API access (empty = no auth)
  - TABULARIUM_SERVER_RATE_LIMIT_REQUESTS: Requests per window (default: 100)
  - TABULARIUM_SERVER_RATE_LIMIT_WINDOW: Rate limit window (default: 1m)
  - TABULARIUM_SERVER_RATE_LIMIT_DISABLED: Disable rate limiting (default: false)
  - TABULARIUM_SERVER_CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - TABULARIUM_SERVER_SHUTDOWN_TIMEOUT: Graceful shutdown window (default: 30s)

Notify (NotifyConfig):
  - TABULARIUM_NOTIFY_WEBHOOK_URL: POST target for backup notifications
  - TABULARIUM_NOTIFY_TIMEOUT: Webhook request timeout (default: 10s)

Logging (LoggingConfig):
  - TABULARIUM_LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - TABULARIUM_LOG_FORMAT: json or console (default: json)
  - TABULARIUM_LOG_CALLER: Include caller file:line (default: false)
  - TABULARIUM_LOG_FILE_PATH: Rotating log file path (empty = stderr only)
  - TABULARIUM_LOG_FILE_MAX_SIZE_MB: Rotate after size in MB (default: 100)
  - TABULARIUM_LOG_FILE_MAX_BACKUPS: Rotated files to keep (default: 3)
  - TABULARIUM_LOG_FILE_MAX_AGE_DAYS: Rotated file age limit (default: 28)

# Usage Example

Basic configuration loading:

	import "github.com/tabularium/tabularium/internal/config"

	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Backups in %s, retention %d days\n", cfg.Backup.Dir, cfg.Backup.RetentionDays)

# Validation

Load() validates the merged configuration and refuses to start on:

  - Unknown store driver or empty store path
  - Unknown snapshot encoding
  - Retention days outside 0-3650 (0 disables retention)
  - Schedule enabled without interval or cron
  - Rate limit values outside sensible bounds
  - Malformed webhook URL

# Thread Safety

The Config struct is immutable after Load() returns, making it safe for
concurrent access from multiple goroutines without synchronization.
*/
package config
