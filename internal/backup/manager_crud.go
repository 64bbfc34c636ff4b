// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
manager_crud.go - Backup Creation, Listing and Deletion

Backup Creation Process:
 1. Resolve the effective table set (include list or full enumeration,
    minus excludes)
 2. Read each table sequentially, one table's rows in memory at a time
 3. Encode the assembled snapshot and write it into the managed directory
 4. Checksum and stat the written file
 5. Register the Metadata record in the catalog

A table whose read fails is logged, reported in the result, and omitted
from both the snapshot and the record's table list; the backup as a whole
still succeeds. Only total failure (nothing resolvable, every table
failing, or the snapshot file not landing) reaches the error return.

The snapshot file is written before the catalog entry. A crash between the
two steps leaves an orphan file that only the directory-scan
reconstruction will find.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/tabularium/tabularium/internal/logging"
	"github.com/tabularium/tabularium/internal/metrics"
	"github.com/tabularium/tabularium/internal/snapshot"
)

// CreateBackup captures the resolved table set into a new snapshot file
// and registers it in the catalog. Cancellation is honored between tables,
// never mid-table.
func (m *Manager) CreateBackup(ctx context.Context, opts CreateOptions) (*Result, error) {
	if m.store == nil {
		return nil, ErrNoStore
	}

	start := time.Now()
	trigger := opts.Trigger
	if trigger == "" {
		trigger = TriggerManual
	}

	tables, err := m.resolveTables(ctx, opts)
	if err != nil {
		metrics.RecordBackup(string(trigger), time.Since(start), 0, 0, err)
		return nil, err
	}

	id := uuid.New().String()
	createdAt := start.UTC()
	snap := snapshot.New(id, createdAt)

	result := &Result{Tables: make([]TableResult, 0, len(tables))}
	captured := make([]string, 0, len(tables))
	var recordCount int64

	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("backup canceled: %w", err)
		}
		rows, err := m.store.ReadTable(ctx, table)
		if err != nil {
			logging.Warn().Err(err).Str("table", table).Str("backup_id", id).Msg("Table capture failed, skipping")
			metrics.BackupErrors.WithLabelValues("capture").Inc()
			result.Tables = append(result.Tables, TableResult{Table: table, Err: err.Error()})
			continue
		}
		snap.AddTable(table, rows)
		captured = append(captured, table)
		recordCount += int64(len(rows))
		result.Tables = append(result.Tables, TableResult{Table: table, Rows: int64(len(rows))})
	}

	if len(captured) == 0 {
		err := totalFailure("backup", result.Tables)
		metrics.RecordBackup(string(trigger), time.Since(start), 0, 0, err)
		m.notify(ctx, NotifyEvent{Event: EventBackupFailed, Detail: err.Error()})
		return result, err
	}

	filename := BackupFilename(id, createdAt, m.encoding)
	path := m.snapshotPath(&Metadata{Filename: filename})
	if err := m.writeSnapshot(path, snap); err != nil {
		metrics.RecordBackup(string(trigger), time.Since(start), 0, recordCount, err)
		m.notify(ctx, NotifyEvent{Event: EventBackupFailed, BackupID: id, Detail: err.Error()})
		return result, err
	}

	checksum, err := fileChecksum(path)
	if err != nil {
		err = fmt.Errorf("failed to checksum snapshot: %w", err)
		metrics.RecordBackup(string(trigger), time.Since(start), 0, recordCount, err)
		return result, err
	}

	meta := &Metadata{
		ID:          id,
		Filename:    filename,
		Size:        fileSize(path),
		CreatedAt:   createdAt,
		Tables:      captured,
		Compressed:  m.encoding.Compressed(),
		Encoding:    m.encoding.String(),
		Checksum:    checksum,
		RecordCount: recordCount,
		DurationMS:  time.Since(start).Milliseconds(),
		Trigger:     trigger,
		Notes:       opts.Notes,
	}

	if err := m.index.Put(meta); err != nil {
		// The snapshot file stays on disk; the scan reconstruction will
		// find it even though the catalog write failed.
		metrics.RecordBackup(string(trigger), time.Since(start), meta.Size, recordCount, err)
		return result, fmt.Errorf("failed to register backup in catalog: %w", err)
	}

	result.Meta = meta
	m.updateCatalogMetrics()
	metrics.RecordBackup(string(trigger), time.Since(start), meta.Size, recordCount, nil)

	logging.Info().
		Str("backup_id", id).
		Str("file", filename).
		Int64("size", meta.Size).
		Int("tables", len(captured)).
		Int("failed_tables", len(tables)-len(captured)).
		Int64("rows", recordCount).
		Msg("Backup created")

	if m.onBackupComplete != nil {
		m.onBackupComplete(meta)
	}
	m.notify(ctx, NotifyEvent{
		Event:    EventBackupCompleted,
		BackupID: id,
		Detail:   fmt.Sprintf("%d tables, %d rows, %d bytes", len(captured), recordCount, meta.Size),
	})

	return result, nil
}

// resolveTables builds the effective table set: the explicit include list
// if given, else the store's enumerated base tables; then minus the
// exclude set. Config-level filters apply when the options carry none.
func (m *Manager) resolveTables(ctx context.Context, opts CreateOptions) ([]string, error) {
	include := opts.IncludeTables
	if len(include) == 0 {
		include = m.cfg.IncludeTables
	}
	exclude := opts.ExcludeTables
	if len(exclude) == 0 {
		exclude = m.cfg.ExcludeTables
	}

	tables := include
	if len(tables) == 0 {
		enumerated, err := m.store.Tables(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate tables: %w", err)
		}
		tables = enumerated
	}

	if len(exclude) > 0 {
		skip := make(map[string]bool, len(exclude))
		for _, t := range exclude {
			skip[t] = true
		}
		filtered := make([]string, 0, len(tables))
		for _, t := range tables {
			if !skip[t] {
				filtered = append(filtered, t)
			}
		}
		tables = filtered
	}

	if len(tables) == 0 {
		return nil, ErrNoTables
	}
	return tables, nil
}

// writeSnapshot encodes the snapshot to its final path, removing the file
// again if the encode does not complete.
func (m *Manager) writeSnapshot(path string, snap *snapshot.Snapshot) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640) //nolint:gosec // G304: path is inside the managed backup directory
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}

	if err := snapshot.Encode(f, snap, m.encoding); err != nil {
		f.Close()       //nolint:errcheck // Best effort cleanup on error
		os.Remove(path) //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path) //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}
	return nil
}

// ListBackups returns catalog records newest first, filtered and
// paginated.
func (m *Manager) ListBackups(opts ListOptions) ([]*Metadata, error) {
	list := m.index.List()

	if opts.Trigger != "" {
		filtered := make([]*Metadata, 0, len(list))
		for _, b := range list {
			if b.Trigger == opts.Trigger {
				filtered = append(filtered, b)
			}
		}
		list = filtered
	}

	return applyPagination(list, opts.Offset, opts.Limit), nil
}

// applyPagination slices the list by offset and limit. A zero limit means
// no limit.
func applyPagination(list []*Metadata, offset, limit int) []*Metadata {
	if offset > 0 {
		if offset >= len(list) {
			return []*Metadata{}
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// GetBackup returns the catalog record for id.
func (m *Manager) GetBackup(id string) (*Metadata, error) {
	meta, ok := m.index.Get(id)
	if !ok {
		return nil, notFound(id)
	}
	return meta, nil
}

// DeleteBackup removes the snapshot file and its catalog entry. The file
// goes first: an entry pointing at a missing file is exactly what the
// validator detects, while a file without an entry is only discoverable by
// the scan reconstruction.
func (m *Manager) DeleteBackup(id string) error {
	meta, err := m.GetBackup(id)
	if err != nil {
		return err
	}

	path := m.snapshotPath(meta)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete backup file: %w", err)
	}
	if err := m.index.Remove(id); err != nil {
		return fmt.Errorf("failed to remove catalog entry: %w", err)
	}

	m.updateCatalogMetrics()
	logging.Info().Str("backup_id", id).Str("file", meta.Filename).Msg("Backup deleted")
	return nil
}
