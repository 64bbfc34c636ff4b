// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

// Package api implements the HTTP admin surface for the backup engine.
//
// All responses share one envelope: a status string, the operation's data
// payload, response metadata carrying the request ID and timestamp, and a
// structured error when the operation failed. Clients can branch on the
// machine-readable error code without parsing messages.
//
// # Routes
//
// Backup operations live under /api/v1/backups:
//
//	POST   /api/v1/backups                    create a backup
//	GET    /api/v1/backups                    list backups
//	GET    /api/v1/backups/stats              aggregate statistics
//	POST   /api/v1/backups/import             upload a snapshot file
//	POST   /api/v1/backups/cleanup            apply retention (dry_run supported)
//	GET    /api/v1/backups/{id}               fetch catalog metadata
//	DELETE /api/v1/backups/{id}               delete a backup
//	POST   /api/v1/backups/{id}/restore       restore into the database
//	GET    /api/v1/backups/{id}/validate      integrity check
//	POST   /api/v1/backups/{id}/test-restore  decode rehearsal, no writes
//	GET    /api/v1/backups/{id}/download      stream the snapshot file
//
// Health endpoints are unauthenticated so probes survive token rotation:
//
//	GET /api/v1/health/live
//	GET /api/v1/health/ready
//
// Prometheus metrics are served at /metrics.
//
// # Error Mapping
//
// Handlers translate backup engine errors through one taxonomy: unknown
// IDs become 404, a missing database connection becomes 503, imports of
// unparseable snapshots become 422, and everything else surfaces as a 500
// under the failing operation's error code. See errors.go.
//
// # Authentication
//
// When a bearer token is configured, every backup route requires it. The
// comparison is constant time. Without a configured token the API is
// open, which is only sensible on a loopback or otherwise private
// listener.
package api
