// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
manager.go - Core Backup Manager

The Manager orchestrates every engine operation against one managed backup
directory: snapshot capture, restore, validation, retention, import and
export. It owns the Metadata Index for that directory and consumes the
relational store through the four-primitive Store interface, so any engine
that can enumerate tables, read all rows, delete all rows and insert one
row can sit behind it.

Manager Responsibilities:
  - Table set resolution and per-table capture via the snapshot codec
  - Catalog registration and lookup
  - Destructive restore with per-table failure containment
  - Read-only validation and restore rehearsal
  - Age-based retention and snapshot transfer

Thread Safety:
Catalog state is guarded by the Index's RWMutex; the Manager itself holds
no other mutable state and is safe for concurrent use within one process.
Cross-process coordination is explicitly out of scope.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tabularium/tabularium/internal/config"
	"github.com/tabularium/tabularium/internal/metrics"
	"github.com/tabularium/tabularium/internal/snapshot"
)

// Store is the slice of the relational store the engine consumes. The four
// primitives carry no transaction and no foreign-key-aware ordering; the
// engine neither assumes nor requires either.
type Store interface {
	// Tables lists the base table names of the active schema.
	Tables(ctx context.Context) ([]string, error)
	// ReadTable reads every row of the named table.
	ReadTable(ctx context.Context, name string) ([]snapshot.Row, error)
	// ClearTable deletes every row of the named table.
	ClearTable(ctx context.Context, name string) error
	// InsertRow inserts one row using the row's own column list.
	InsertRow(ctx context.Context, name string, row snapshot.Row) error
}

// Manager drives backup and restore operations for one managed directory.
type Manager struct {
	cfg      *config.BackupConfig
	store    Store
	index    *Index
	encoding snapshot.Encoding

	notifier *Notifier

	onBackupComplete func(meta *Metadata)
	onRestoreStart   func(backupID string)
}

// NewManager builds a manager over cfg.Dir, creating the directory and
// loading (or reconstructing) its catalog. st may be nil for catalog-only
// use; capture and restore then fail with ErrNoStore.
func NewManager(cfg *config.BackupConfig, st Store) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("backup configuration is required")
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("backup directory is required")
	}

	enc, err := snapshot.ParseEncoding(cfg.EffectiveEncoding())
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create backup directory %s: %w", cfg.Dir, err)
	}

	idx, err := LoadIndex(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load backup catalog: %w", err)
	}

	m := &Manager{
		cfg:      cfg,
		store:    st,
		index:    idx,
		encoding: enc,
	}
	m.updateCatalogMetrics()
	return m, nil
}

// Index exposes the manager's catalog for read-side callers.
func (m *Manager) Index() *Index { return m.index }

// SetNotifier attaches an optional webhook notifier. A nil notifier
// disables notifications.
func (m *Manager) SetNotifier(n *Notifier) {
	m.notifier = n
}

// SetOnBackupComplete sets the callback invoked after each successful
// backup.
func (m *Manager) SetOnBackupComplete(fn func(meta *Metadata)) {
	m.onBackupComplete = fn
}

// SetOnRestoreStart sets the callback invoked before a restore begins
// mutating the store.
func (m *Manager) SetOnRestoreStart(fn func(backupID string)) {
	m.onRestoreStart = fn
}

// snapshotPath returns the absolute path of a record's snapshot file.
func (m *Manager) snapshotPath(meta *Metadata) string {
	return filepath.Join(m.cfg.Dir, meta.Filename)
}

// readSnapshot opens and fully decodes the snapshot behind a catalog
// record. Decode failures surface as *snapshot.DecodeError.
func (m *Manager) readSnapshot(meta *Metadata) (*snapshot.Snapshot, error) {
	path := m.snapshotPath(meta)
	f, err := os.Open(path) //nolint:gosec // G304: path is inside the managed backup directory
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Best effort cleanup

	return snapshot.Decode(f, snapshotEncoding(meta))
}

// snapshotEncoding resolves a record's on-disk encoding. The filename is
// authoritative; the catalog field covers hand-edited names.
func snapshotEncoding(meta *Metadata) snapshot.Encoding {
	if enc, ok := snapshot.EncodingForFilename(meta.Filename); ok {
		return enc
	}
	enc, err := snapshot.ParseEncoding(meta.Encoding)
	if err != nil {
		return snapshot.EncodingJSON
	}
	return enc
}

// updateCatalogMetrics refreshes the catalog gauges after a mutation.
func (m *Manager) updateCatalogMetrics() {
	metrics.UpdateCatalogGauges(m.index.Count(), m.index.TotalSize())
}

// notify delivers a webhook event when a notifier is attached.
func (m *Manager) notify(ctx context.Context, event NotifyEvent) {
	m.notifier.Notify(ctx, event)
}
