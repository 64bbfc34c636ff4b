// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/tabularium/tabularium/internal/logging"
	"github.com/tabularium/tabularium/internal/metrics"
	"github.com/tabularium/tabularium/internal/snapshot"
)

// RestoreBackup replaces the live contents of every table in the snapshot
// with the snapshot's rows: each table is cleared, then its rows are
// inserted in snapshot order.
//
// The insert column list for a table is derived from the first row's key
// set. Later rows missing one of those columns get NULL for it; keys not
// present in the first row are dropped. Snapshots written by this package
// are homogeneous per table, so this only matters for hand-edited or
// foreign files.
//
// The restore is not transactional. A table that fails to clear is
// skipped with its previous contents intact; a table that fails mid-insert
// is left partially loaded. Per-table outcomes are reported in the result,
// and only the failure of every table turns into an error.
func (m *Manager) RestoreBackup(ctx context.Context, id string) (*RestoreResult, error) {
	if m.store == nil {
		return nil, ErrNoStore
	}

	meta, err := m.GetBackup(id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if m.onRestoreStart != nil {
		m.onRestoreStart(id)
	}

	snap, err := m.readSnapshot(meta)
	if err != nil {
		metrics.RecordRestore(time.Since(start), "failed")
		return nil, err
	}

	result := &RestoreResult{BackupID: id}
	for _, t := range snap.Tables() {
		if err := ctx.Err(); err != nil {
			result.DurationMS = time.Since(start).Milliseconds()
			metrics.RecordRestore(time.Since(start), "canceled")
			return result, fmt.Errorf("restore canceled: %w", err)
		}

		tr := m.restoreTable(ctx, t.Name, t.Rows)
		result.Tables = append(result.Tables, tr)
		if tr.OK() {
			result.RestoredTables = append(result.RestoredTables, t.Name)
			result.RowsRestored += tr.Rows
			metrics.RecordRestoredTable(tr.Rows)
		}
	}

	result.DurationMS = time.Since(start).Milliseconds()
	failed := len(result.Tables) - len(result.RestoredTables)
	result.Success = failed == 0

	if len(result.RestoredTables) == 0 && len(result.Tables) > 0 {
		err := totalFailure("restore", result.Tables)
		metrics.RecordRestore(time.Since(start), "failed")
		return result, err
	}

	outcome := "completed"
	if failed > 0 {
		outcome = "partial"
	}
	metrics.RecordRestore(time.Since(start), outcome)

	logging.Info().
		Str("backup_id", id).
		Int("tables", len(result.RestoredTables)).
		Int("failed_tables", failed).
		Int64("rows", result.RowsRestored).
		Str("outcome", outcome).
		Msg("Backup restored")

	m.notify(ctx, NotifyEvent{
		Event:    EventRestoreCompleted,
		BackupID: id,
		Detail:   fmt.Sprintf("%d of %d tables, %d rows", len(result.RestoredTables), len(result.Tables), result.RowsRestored),
	})

	return result, nil
}

// restoreTable clears one table and reloads it from the snapshot rows.
// Failures stay inside the returned TableResult.
func (m *Manager) restoreTable(ctx context.Context, table string, rows []snapshot.Row) TableResult {
	if err := m.store.ClearTable(ctx, table); err != nil {
		logging.Warn().Err(err).Str("table", table).Msg("Failed to clear table, skipping restore")
		metrics.RecordRestoreTableFailure("clear")
		return TableResult{Table: table, Err: fmt.Sprintf("clear: %v", err)}
	}

	if len(rows) == 0 {
		return TableResult{Table: table}
	}

	columns := rows[0].Columns()
	var inserted int64
	for _, row := range rows {
		if err := m.store.InsertRow(ctx, table, alignRow(row, columns)); err != nil {
			logging.Warn().Err(err).Str("table", table).Int64("inserted", inserted).Msg("Row insert failed, abandoning table")
			metrics.RecordRestoreTableFailure("insert")
			return TableResult{Table: table, Rows: inserted, Err: fmt.Sprintf("insert: %v", err)}
		}
		inserted++
	}
	return TableResult{Table: table, Rows: inserted}
}

// alignRow reshapes row onto the given column list: missing columns become
// NULL, extra keys are dropped. Rows already matching the list pass
// through unchanged.
func alignRow(row snapshot.Row, columns []string) snapshot.Row {
	if matchesColumns(row, columns) {
		return row
	}
	var aligned snapshot.Row
	for _, col := range columns {
		v, ok := row.Get(col)
		if !ok {
			v = snapshot.Null()
		}
		aligned.Set(col, v)
	}
	return aligned
}

// matchesColumns reports whether the row's key set is exactly the given
// column list.
func matchesColumns(row snapshot.Row, columns []string) bool {
	if row.Len() != len(columns) {
		return false
	}
	for _, col := range columns {
		if !row.Has(col) {
			return false
		}
	}
	return true
}
