// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/tabularium/tabularium/internal/snapshot"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateBackup(); err != nil {
		return err
	}

	if err := c.validateSchedule(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateNotify(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validStoreDrivers defines the allowed store drivers
var validStoreDrivers = map[string]bool{
	StoreDriverDuckDB: true,
	StoreDriverSQLite: true,
}

// validateStore validates store configuration
func (c *Config) validateStore() error {
	if !validStoreDrivers[c.Store.Driver] {
		return fmt.Errorf("TABULARIUM_STORE_DRIVER must be one of: duckdb, sqlite")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("TABULARIUM_STORE_PATH is required")
	}
	if c.Store.Threads < 0 {
		return fmt.Errorf("TABULARIUM_STORE_THREADS must be non-negative (0 = CPU count)")
	}
	if c.Store.QueryTimeout < 0 {
		return fmt.Errorf("TABULARIUM_STORE_QUERY_TIMEOUT must be non-negative (0 = unbounded)")
	}
	return nil
}

// Retention bounds in days. 0 disables retention entirely.
const (
	minRetentionDays = 0
	maxRetentionDays = 3650
)

// validateBackup validates backup configuration
func (c *Config) validateBackup() error {
	if err := c.validateBackupDir(); err != nil {
		return err
	}
	if err := c.validateBackupEncoding(); err != nil {
		return err
	}
	return c.validateRetentionDays()
}

// validateBackupDir validates the backup directory setting
func (c *Config) validateBackupDir() error {
	if c.Backup.Dir == "" {
		return fmt.Errorf("TABULARIUM_BACKUP_DIR is required")
	}
	return nil
}

// validateBackupEncoding validates the snapshot encoding setting
func (c *Config) validateBackupEncoding() error {
	if _, err := snapshot.ParseEncoding(c.Backup.EffectiveEncoding()); err != nil {
		return fmt.Errorf("TABULARIUM_BACKUP_ENCODING must be one of: json, json.gz, json.zst")
	}
	return nil
}

// validateRetentionDays validates the retention window setting
func (c *Config) validateRetentionDays() error {
	if c.Backup.RetentionDays < minRetentionDays || c.Backup.RetentionDays > maxRetentionDays {
		return fmt.Errorf("TABULARIUM_BACKUP_RETENTION_DAYS must be between %d and %d", minRetentionDays, maxRetentionDays)
	}
	return nil
}

// validateSchedule validates schedule configuration (only if enabled)
func (c *Config) validateSchedule() error {
	if !c.Schedule.Enabled {
		return nil
	}

	if c.Schedule.Cron != "" {
		return nil // Cron expression is parsed by the scheduler at startup
	}
	if c.Schedule.Interval <= 0 {
		return fmt.Errorf("TABULARIUM_SCHEDULE_INTERVAL or TABULARIUM_SCHEDULE_CRON is required when TABULARIUM_SCHEDULE_ENABLED=true")
	}
	if c.Schedule.Interval < time.Minute {
		return fmt.Errorf("TABULARIUM_SCHEDULE_INTERVAL must be at least 1m")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("TABULARIUM_SERVER_ADDR is required")
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("TABULARIUM_SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// validateRateLimits validates rate limiting configuration bounds.
// Ensures rate limit values are within sensible ranges to prevent
// misconfiguration that could lead to DoS or ineffective protection.
func (c *Config) validateRateLimits() error {
	if c.Server.RateLimitDisabled {
		return nil
	}

	if c.Server.RateLimitReqs < minRateLimitRequests || c.Server.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("TABULARIUM_SERVER_RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Server.RateLimitWindow < minRateLimitWindow || c.Server.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("TABULARIUM_SERVER_RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validateNotify validates webhook notification configuration (only if set)
func (c *Config) validateNotify() error {
	if c.Notify.WebhookURL == "" {
		return nil
	}

	if err := validateWebhookURL(c.Notify.WebhookURL); err != nil {
		return fmt.Errorf("TABULARIUM_NOTIFY_WEBHOOK_URL is invalid: %w", err)
	}
	if c.Notify.Timeout <= 0 {
		return fmt.Errorf("TABULARIUM_NOTIFY_TIMEOUT must be positive")
	}
	return nil
}

// validateWebhookURL validates that a webhook URL is properly formatted.
// Unlike base URLs, webhook endpoints may carry a path.
func validateWebhookURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("host is required")
	}

	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("TABULARIUM_LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("TABULARIUM_LOG_FORMAT must be one of: json, console")
	}
	if c.Logging.File.Path != "" {
		if c.Logging.File.MaxSizeMB <= 0 {
			return fmt.Errorf("TABULARIUM_LOG_FILE_MAX_SIZE_MB must be positive when TABULARIUM_LOG_FILE_PATH is set")
		}
		if c.Logging.File.MaxBackups < 0 || c.Logging.File.MaxAgeDays < 0 {
			return fmt.Errorf("TABULARIUM_LOG_FILE_MAX_BACKUPS and TABULARIUM_LOG_FILE_MAX_AGE_DAYS must be non-negative")
		}
	}
	return nil
}
