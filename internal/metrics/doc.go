// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for monitoring backup performance, restore outcomes,
validation health, and API throughput.

# Overview

The package provides metrics for:
  - Store query latency and errors (DuckDB, SQLite)
  - Backup creation duration, size, and record throughput
  - Restore outcomes, per-table failures, and row counts
  - Validation and test-restore results
  - Retention cleanup activity
  - Export/import transfers
  - Scheduler runs and webhook deliveries
  - HTTP API latency and throughput

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:7878/metrics

# Available Metrics

Store Metrics:
  - store_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - store_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type
  - store_connection_pool_size: Connections in use (gauge)

Backup Metrics:
  - backup_duration_seconds: Backup creation duration (histogram)
    Labels: trigger (manual, scheduled, imported)
    Buckets: 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600
  - backups_created_total: Backups created (counter)
    Labels: trigger
  - backup_errors_total: Backup creation failures (counter)
    Labels: stage (enumerate, capture, encode, catalog, other)
  - backup_size_bytes: Backup file sizes (histogram)
  - backup_record_count: Rows captured per backup (histogram)
  - backup_last_success_timestamp: Unix timestamp of last success (gauge)

Catalog Metrics:
  - catalog_backups: Backups currently cataloged (gauge)
  - catalog_storage_bytes: Total cataloged file size (gauge)

Restore Metrics:
  - restore_duration_seconds: Restore duration (histogram)
  - restores_total: Restore outcomes (counter)
    Labels: result (completed, partial, failed, canceled)
  - restore_tables_restored_total: Tables restored (counter)
  - restore_table_failures_total: Per-table failures (counter)
    Labels: phase (clear, insert)
  - restore_rows_restored_total: Rows restored (counter)

Validation Metrics:
  - validations_total: Validation outcomes (counter)
    Labels: result (valid, invalid)
  - validation_issues_total: Issues found (counter)
    Labels: issue (file_missing, file_empty, size_mismatch,
    checksum_mismatch, stale_entry)
  - test_restores_total: Test restore outcomes (counter)
    Labels: result

Retention Metrics:
  - retention_runs_total: Cleanup runs (counter)
  - retention_deleted_backups_total: Backups deleted (counter)
  - retention_reclaimed_bytes_total: Bytes reclaimed (counter)
  - retention_last_run_timestamp: Unix timestamp of last run (gauge)

Transfer Metrics:
  - exports_total / imports_total: Transfer outcomes (counter)
    Labels: result (success, failure)

Scheduler Metrics:
  - scheduled_runs_total: Scheduled run outcomes (counter)
    Labels: result (success, failure, skipped)
  - scheduler_last_run_timestamp: Unix timestamp of last run (gauge)

Webhook Metrics:
  - webhook_notifications_total: Delivery outcomes (counter)
    Labels: event, result

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

System Metrics:
  - app_info: Version and build info (gauge)
    Labels: version, go_version
  - app_uptime_seconds: Application uptime (gauge)

# Usage Example

Basic setup in main:

	import (
	    "github.com/tabularium/tabularium/internal/metrics"
	    "github.com/prometheus/client_golang/prometheus/promhttp"
	)

	func main() {
	    // Register metrics endpoint
	    http.Handle("/metrics", promhttp.Handler())

	    // Record metrics
	    metrics.RecordStoreQuery("read_table", "users", duration, nil)
	    metrics.RecordBackup("manual", duration, sizeBytes, recordCount, nil)
	    metrics.RecordRestore(duration, "completed")
	}

Recording API metrics from middleware:

	func MetricsMiddleware(next http.Handler) http.Handler {
	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	        start := time.Now()
	        metrics.TrackActiveRequest(true)
	        defer metrics.TrackActiveRequest(false)

	        rw := &statusRecorder{ResponseWriter: w, status: 200}
	        next.ServeHTTP(rw, r)

	        metrics.RecordAPIRequest(r.Method, r.URL.Path,
	            strconv.Itoa(rw.status), time.Since(start))
	    })
	}

# Grafana Dashboards

Useful starting queries:

	rate(backups_created_total[1h])
	histogram_quantile(0.95, rate(backup_duration_seconds_bucket[1h]))
	sum by (result) (rate(restores_total[1h]))
	catalog_storage_bytes

# Alerting

Suggested alert rules:

	time() - backup_last_success_timestamp > 172800   (no backup in 2 days)
	rate(restore_table_failures_total[1h]) > 0        (restores losing tables)
	rate(validation_issues_total[1h]) > 0             (catalog drift detected)

# Thread Safety

All metric recording functions are safe for concurrent use. The Prometheus
client library handles synchronization internally.
*/
package metrics
