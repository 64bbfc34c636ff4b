// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
manager_validation.go - Backup Integrity Checks

Two levels of checking, neither touching the live store:

ValidateBackup inspects the catalog record against the file system: the
file must exist, be non-empty, match the recorded size and checksum, and
the record must not have outlived the retention horizon. Every check runs;
the result carries the union of issues found.

TestRestore is a restore rehearsal: it decodes the full snapshot document
exactly as a real restore would, reporting per-table row counts and any
rows a restore would have to reshape. Decode failures are the rehearsal's
finding, not an operational error.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tabularium/tabularium/internal/logging"
	"github.com/tabularium/tabularium/internal/metrics"
	"github.com/tabularium/tabularium/internal/snapshot"
)

const (
	issueFileMissing = "file missing"
	issueFileEmpty   = "file empty"
)

// ValidateBackup checks one catalog record against the file on disk. All
// checks run; Issues is the union of what they found, empty when the
// backup is sound.
func (m *Manager) ValidateBackup(id string) (*ValidationResult, error) {
	meta, err := m.GetBackup(id)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{
		BackupID:  id,
		Issues:    []string{},
		CheckedAt: time.Now().UTC(),
	}

	path := m.snapshotPath(meta)
	fi, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		result.addIssue(issueFileMissing)
	case err != nil:
		result.addIssue(fmt.Sprintf("file unreadable: %v", err))
	case fi.Size() == 0:
		result.addIssue(issueFileEmpty)
	default:
		if meta.Size > 0 && fi.Size() != meta.Size {
			result.addIssue(fmt.Sprintf("size mismatch: catalog records %d bytes, file has %d", meta.Size, fi.Size()))
		}
		if meta.Checksum != "" {
			sum, err := fileChecksum(path)
			if err != nil {
				result.addIssue(fmt.Sprintf("file unreadable: %v", err))
			} else if sum != meta.Checksum {
				result.addIssue("checksum mismatch")
			}
		}
	}

	if issue := m.staleIssue(meta, time.Now()); issue != "" {
		result.addIssue(issue)
	}

	result.Valid = len(result.Issues) == 0
	metrics.RecordValidation(result.Valid)
	for _, issue := range result.Issues {
		metrics.RecordValidationIssue(issueLabel(issue))
	}

	if !result.Valid {
		logging.Warn().Str("backup_id", id).Strs("issues", result.Issues).Msg("Backup failed validation")
	}
	return result, nil
}

// staleIssue reports a catalog record that has outlived the retention
// horizon. Returns "" when retention is disabled or the record is inside
// the horizon.
func (m *Manager) staleIssue(meta *Metadata, now time.Time) string {
	if m.cfg.RetentionDays <= 0 {
		return ""
	}
	age := now.Sub(meta.CreatedAt)
	horizon := time.Duration(m.cfg.RetentionDays) * 24 * time.Hour
	if age <= horizon {
		return ""
	}
	return fmt.Sprintf("stale: %.0f days old exceeds the %d day retention horizon", age.Hours()/24, m.cfg.RetentionDays)
}

// issueLabel maps a validation issue string onto its metric label.
func issueLabel(issue string) string {
	switch {
	case issue == issueFileMissing:
		return "file_missing"
	case issue == issueFileEmpty:
		return "file_empty"
	case strings.HasPrefix(issue, "size mismatch"):
		return "size_mismatch"
	case issue == "checksum mismatch":
		return "checksum_mismatch"
	case strings.HasPrefix(issue, "stale"):
		return "stale_entry"
	default:
		return "other"
	}
}

// TestRestore rehearses a restore without touching the store: the snapshot
// is decoded in full, per-table row counts are collected, and rows a real
// restore would reshape are surfaced as warnings. A snapshot that fails to
// decode is a rehearsal finding, reported in the result with a nil error.
func (m *Manager) TestRestore(id string) (*TestRestoreResult, error) {
	meta, err := m.GetBackup(id)
	if err != nil {
		return nil, err
	}

	result := &TestRestoreResult{BackupID: id}
	snap, err := m.readSnapshot(meta)
	if err != nil {
		result.Error = err.Error()
		metrics.RecordTestRestore(false)
		logging.Warn().Err(err).Str("backup_id", id).Msg("Test restore failed to decode snapshot")
		return result, nil //nolint:nilerr // Decode failure is the rehearsal outcome, recorded in result
	}

	for _, t := range snap.Tables() {
		result.Tables = append(result.Tables, TableResult{Table: t.Name, Rows: int64(len(t.Rows))})
		if w := reshapeWarning(t); w != "" {
			result.Warnings = append(result.Warnings, w)
		}
	}
	result.Success = true
	metrics.RecordTestRestore(true)

	logging.Debug().
		Str("backup_id", id).
		Int("tables", len(result.Tables)).
		Int("warnings", len(result.Warnings)).
		Msg("Test restore passed")
	return result, nil
}

// reshapeWarning reports rows whose column set differs from the table's
// first row. A restore derives its insert columns from the first row, so
// these rows would be padded with NULLs or lose keys.
func reshapeWarning(t snapshot.Table) string {
	if len(t.Rows) == 0 {
		return ""
	}
	columns := t.Rows[0].Columns()
	mismatched := 0
	for _, row := range t.Rows[1:] {
		if !matchesColumns(row, columns) {
			mismatched++
		}
	}
	if mismatched == 0 {
		return ""
	}
	return fmt.Sprintf("table %q: %d of %d rows differ from the first row's column set and would be reshaped on restore", t.Name, mismatched, len(t.Rows))
}
