// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
handlers.go - HTTP Handler Core

Handler holds the dependencies of the admin API: the backup manager that
executes operations and a prober used by the readiness endpoint to check
that the database is reachable.

BackupManager is declared here, at the point of consumption, so handlers
can be tested against a lightweight mock instead of a live manager with a
real database behind it.
*/

//nolint:staticcheck // File documentation, not package doc
package api

import (
	"context"
	"io"
	"time"

	"github.com/tabularium/tabularium/internal/backup"
)

// BackupManager is the surface of the backup engine the API consumes.
// *backup.Manager satisfies it.
type BackupManager interface {
	CreateBackup(ctx context.Context, opts backup.CreateOptions) (*backup.Result, error)
	ListBackups(opts backup.ListOptions) ([]*backup.Metadata, error)
	GetBackup(id string) (*backup.Metadata, error)
	DeleteBackup(id string) error
	GetStats() *backup.Stats
	ValidateBackup(id string) (*backup.ValidationResult, error)
	TestRestore(id string) (*backup.TestRestoreResult, error)
	RestoreBackup(ctx context.Context, id string) (*backup.RestoreResult, error)
	DownloadBackup(id string) (io.ReadCloser, *backup.Metadata, error)
	ImportBackupFromReader(r io.Reader, filename string) (*backup.Metadata, error)
	CleanupExpired(ctx context.Context) (*backup.CleanupResult, error)
	GetRetentionPreview() *backup.RetentionPreview
}

// ReadinessProber reports whether the backing database is reachable.
type ReadinessProber interface {
	Ping(ctx context.Context) error
}

// Handler carries the dependencies shared by all API handlers.
type Handler struct {
	manager   BackupManager
	prober    ReadinessProber
	startTime time.Time
}

// NewHandler creates the API handler set. The prober may be nil, in which
// case readiness only reports process liveness.
func NewHandler(manager BackupManager, prober ReadinessProber) *Handler {
	return &Handler{
		manager:   manager,
		prober:    prober,
		startTime: time.Now(),
	}
}
