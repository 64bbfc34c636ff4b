// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tabularium/config.yaml",
	"/etc/tabularium/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "TABULARIUM_CONFIG"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:       StoreDriverDuckDB,
			Path:         "/data/tabularium.duckdb",
			Threads:      0, // 0 = use runtime.NumCPU()
			MaxMemory:    "2GB",
			QueryTimeout: 5 * time.Minute,
		},
		Backup: BackupConfig{
			Dir:           "/data/backups",
			IncludeTables: []string{},
			ExcludeTables: []string{},
			Encoding:      "", // Resolved via EffectiveEncoding(): Compress shorthand or json
			Compress:      false,
			RetentionDays: 30,
		},
		Schedule: ScheduleConfig{
			Enabled:      false, // Scheduled backups are opt-in
			Interval:     24 * time.Hour,
			Cron:         "",
			RunRetention: true,
		},
		Server: ServerConfig{
			Addr:              ":7878",
			AuthToken:         "",
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			ShutdownTimeout:   30 * time.Second,
		},
		Notify: NotifyConfig{
			WebhookURL: "",
			Timeout:    10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
			File: LoggingFileConfig{
				Path:       "",
				MaxSizeMB:  100,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// The config file is searched in DefaultConfigPaths unless TABULARIUM_CONFIG
// points elsewhere.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile loads configuration like Load but reads the given config file
// instead of searching the default paths. An empty path skips the file layer.
func LoadFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// TABULARIUM_BACKUP_DIR -> backup.dir
	// TABULARIUM_STORE_QUERY_TIMEOUT -> store.query_timeout
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"backup.include_tables",
	"backup.exclude_tables",
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - TABULARIUM_STORE_PATH -> store.path
//   - TABULARIUM_BACKUP_RETENTION_DAYS -> backup.retention_days
//   - TABULARIUM_LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Store mappings
		"tabularium_store_driver":        "store.driver",
		"tabularium_store_path":          "store.path",
		"tabularium_store_threads":       "store.threads",
		"tabularium_store_max_memory":    "store.max_memory",
		"tabularium_store_query_timeout": "store.query_timeout",

		// Backup mappings
		"tabularium_backup_dir":            "backup.dir",
		"tabularium_backup_include_tables": "backup.include_tables",
		"tabularium_backup_exclude_tables": "backup.exclude_tables",
		"tabularium_backup_encoding":       "backup.encoding",
		"tabularium_backup_compress":       "backup.compress",
		"tabularium_backup_retention_days": "backup.retention_days",

		// Schedule mappings
		"tabularium_schedule_enabled":       "schedule.enabled",
		"tabularium_schedule_interval":      "schedule.interval",
		"tabularium_schedule_cron":          "schedule.cron",
		"tabularium_schedule_run_retention": "schedule.run_retention",

		// Server mappings
		"tabularium_server_addr":                "server.addr",
		"tabularium_server_auth_token":          "server.auth_token",
		"tabularium_server_rate_limit_requests": "server.rate_limit_requests",
		"tabularium_server_rate_limit_window":   "server.rate_limit_window",
		"tabularium_server_rate_limit_disabled": "server.rate_limit_disabled",
		"tabularium_server_cors_origins":        "server.cors_origins",
		"tabularium_server_shutdown_timeout":    "server.shutdown_timeout",

		// Notify mappings
		"tabularium_notify_webhook_url": "notify.webhook_url",
		"tabularium_notify_timeout":     "notify.timeout",

		// Logging mappings
		"tabularium_log_level":             "logging.level",
		"tabularium_log_format":            "logging.format",
		"tabularium_log_caller":            "logging.caller",
		"tabularium_log_file_path":         "logging.file.path",
		"tabularium_log_file_max_size_mb":  "logging.file.max_size_mb",
		"tabularium_log_file_max_backups":  "logging.file.max_backups",
		"tabularium_log_file_max_age_days": "logging.file.max_age_days",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
