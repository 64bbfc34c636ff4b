// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Store query performance (DuckDB, SQLite)
// - Backup creation, size, and record throughput
// - Restore outcomes and per-table failures
// - Validation and test-restore results
// - Retention cleanup
// - API endpoint latency and throughput

var (
	// Store Metrics
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_query_duration_seconds",
			Help:    "Duration of store queries in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"operation", "table"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_query_errors_total",
			Help: "Total number of store query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	StoreConnectionPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_connection_pool_size",
			Help: "Current number of store connections in use",
		},
	)

	// Backup Metrics
	BackupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backup_duration_seconds",
			Help:    "Duration of backup creation in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600}, // Large stores can take minutes
		},
		[]string{"trigger"}, // "manual", "scheduled", "imported"
	)

	BackupsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backups_created_total",
			Help: "Total number of backups created",
		},
		[]string{"trigger"},
	)

	BackupErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backup_errors_total",
			Help: "Total number of backup creation errors",
		},
		[]string{"stage"}, // "enumerate", "capture", "encode", "catalog", "other"
	)

	BackupSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "backup_size_bytes",
			Help:    "Size of created backup files in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KiB to ~256MiB
		},
	)

	BackupRecordCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "backup_record_count",
			Help:    "Number of rows captured per backup",
			Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000, 10000000},
		},
	)

	BackupLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "backup_last_success_timestamp",
			Help: "Unix timestamp of last successful backup",
		},
	)

	// Catalog Metrics
	CatalogBackups = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_backups",
			Help: "Current number of backups in the catalog",
		},
	)

	CatalogStorageBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_storage_bytes",
			Help: "Total size of cataloged backup files in bytes",
		},
	)

	// Restore Metrics
	RestoreDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "restore_duration_seconds",
			Help:    "Duration of restore operations in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	RestoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restores_total",
			Help: "Total number of restore operations",
		},
		[]string{"result"}, // "completed", "partial", "failed", "canceled"
	)

	RestoreTablesRestored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restore_tables_restored_total",
			Help: "Total number of tables successfully restored",
		},
	)

	RestoreTableFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restore_table_failures_total",
			Help: "Total number of per-table restore failures",
		},
		[]string{"phase"}, // "clear", "insert"
	)

	RestoreRowsRestored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restore_rows_restored_total",
			Help: "Total number of rows successfully restored",
		},
	)

	// Validation Metrics
	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validations_total",
			Help: "Total number of backup validations",
		},
		[]string{"result"}, // "valid", "invalid"
	)

	ValidationIssues = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validation_issues_total",
			Help: "Total number of validation issues found",
		},
		[]string{"issue"}, // "file_missing", "file_empty", "size_mismatch", "checksum_mismatch", "stale_entry"
	)

	TestRestoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "test_restores_total",
			Help: "Total number of test restores (decode verification)",
		},
		[]string{"result"}, // "success", "failure"
	)

	// Retention Metrics
	RetentionRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_runs_total",
			Help: "Total number of retention cleanup runs",
		},
	)

	RetentionDeletedBackups = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_deleted_backups_total",
			Help: "Total number of backups deleted by retention cleanup",
		},
	)

	RetentionReclaimedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_reclaimed_bytes_total",
			Help: "Total bytes reclaimed by retention cleanup",
		},
	)

	RetentionLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "retention_last_run_timestamp",
			Help: "Unix timestamp of last retention cleanup run",
		},
	)

	// Transfer Metrics
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Total number of backup exports",
		},
		[]string{"result"}, // "success", "failure"
	)

	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imports_total",
			Help: "Total number of backup imports",
		},
		[]string{"result"},
	)

	// Scheduler Metrics
	ScheduledRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduled_runs_total",
			Help: "Total number of scheduled backup runs",
		},
		[]string{"result"}, // "success", "failure", "skipped"
	)

	SchedulerLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_last_run_timestamp",
			Help: "Unix timestamp of last scheduled run",
		},
	)

	// Webhook Metrics
	WebhookNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_notifications_total",
			Help: "Total number of webhook notifications sent",
		},
		[]string{"event", "result"}, // result: "success", "failure"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordStoreQuery records a store query metric
func RecordStoreQuery(operation, table string, duration time.Duration, err error) {
	StoreQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		StoreQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordBackup records a backup creation metric
func RecordBackup(trigger string, duration time.Duration, sizeBytes int64, recordCount int64, err error) {
	BackupDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	if err != nil {
		BackupErrors.WithLabelValues(categorizeBackupError(err)).Inc()
		return
	}
	BackupsCreated.WithLabelValues(trigger).Inc()
	BackupSizeBytes.Observe(float64(sizeBytes))
	BackupRecordCount.Observe(float64(recordCount))
	BackupLastSuccess.Set(float64(time.Now().Unix()))
}

// categorizeBackupError maps a backup error onto a coarse pipeline stage.
func categorizeBackupError(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "enumerate"):
		return "enumerate"
	case strings.Contains(msg, "capture"):
		return "capture"
	case strings.Contains(msg, "encode"), strings.Contains(msg, "write"):
		return "encode"
	case strings.Contains(msg, "catalog"), strings.Contains(msg, "metadata"):
		return "catalog"
	default:
		return "other"
	}
}

// RecordRestore records the outcome of a restore operation
func RecordRestore(duration time.Duration, result string) {
	RestoreDuration.Observe(duration.Seconds())
	RestoresTotal.WithLabelValues(result).Inc()
}

// RecordRestoredTable records a successfully restored table and its row count
func RecordRestoredTable(rows int64) {
	RestoreTablesRestored.Inc()
	RestoreRowsRestored.Add(float64(rows))
}

// RecordRestoreTableFailure records a per-table restore failure by phase
func RecordRestoreTableFailure(phase string) {
	RestoreTableFailures.WithLabelValues(phase).Inc()
}

// RecordValidation records a validation outcome
func RecordValidation(valid bool) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	ValidationsTotal.WithLabelValues(result).Inc()
}

// RecordValidationIssue records a single validation issue by kind
func RecordValidationIssue(issue string) {
	ValidationIssues.WithLabelValues(issue).Inc()
}

// RecordTestRestore records a test restore outcome
func RecordTestRestore(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	TestRestoresTotal.WithLabelValues(result).Inc()
}

// RecordRetentionRun records a retention cleanup run
func RecordRetentionRun(deleted int, reclaimedBytes int64) {
	RetentionRuns.Inc()
	RetentionDeletedBackups.Add(float64(deleted))
	RetentionReclaimedBytes.Add(float64(reclaimedBytes))
	RetentionLastRun.Set(float64(time.Now().Unix()))
}

// RecordExport records a backup export outcome
func RecordExport(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	ExportsTotal.WithLabelValues(result).Inc()
}

// RecordImport records a backup import outcome
func RecordImport(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	ImportsTotal.WithLabelValues(result).Inc()
}

// RecordScheduledRun records a scheduled backup run outcome
func RecordScheduledRun(result string) {
	ScheduledRuns.WithLabelValues(result).Inc()
	SchedulerLastRun.Set(float64(time.Now().Unix()))
}

// RecordWebhookNotification records a webhook delivery outcome
func RecordWebhookNotification(event string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	WebhookNotifications.WithLabelValues(event, result).Inc()
}

// UpdateCatalogGauges updates catalog gauges with current totals
func UpdateCatalogGauges(backupCount int, totalSizeBytes int64) {
	CatalogBackups.Set(float64(backupCount))
	CatalogStorageBytes.Set(float64(totalSizeBytes))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
