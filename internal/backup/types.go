// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package backup

import (
	"time"
)

// Trigger identifies what initiated a backup.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerScheduled Trigger = "scheduled"
	TriggerImported  Trigger = "imported"
)

// Metadata is one catalog record describing a snapshot on disk.
//
// The first six fields are the record's core: identity, location, size,
// age, the tables that actually made it into the snapshot, and the on-disk
// compression. The rest is descriptive bookkeeping the engine carries but
// never depends on. Records reconstructed from a directory scan have only
// the core fields; their table list is empty and their checksum blank.
type Metadata struct {
	// ID is the backup's opaque identifier, a full UUID, stable for the
	// snapshot's lifetime.
	ID string `json:"id"`

	// Filename is the snapshot file name relative to the managed backup
	// directory.
	Filename string `json:"filename"`

	// Size is the snapshot's byte length at creation time.
	Size int64 `json:"size"`

	// CreatedAt is the capture time. Retention age is measured from here,
	// never from file modification time, as long as this record exists.
	CreatedAt time.Time `json:"created_at"`

	// Tables lists the tables actually captured, in capture order. A table
	// that failed extraction is omitted here and from the snapshot; it never
	// fails the backup as a whole.
	Tables []string `json:"tables"`

	// Compressed reports whether the on-disk encoding compresses.
	Compressed bool `json:"compressed"`

	// Encoding is the on-disk form: json, json.gz or json.zst.
	Encoding string `json:"encoding"`

	// Checksum is the SHA-256 hex digest of the snapshot file.
	Checksum string `json:"checksum,omitempty"`

	// RecordCount is the total number of rows captured across all tables.
	RecordCount int64 `json:"record_count"`

	// DurationMS is the capture wall time in milliseconds.
	DurationMS int64 `json:"duration_ms"`

	// Trigger records what initiated the backup. Empty for records
	// reconstructed from a directory scan.
	Trigger Trigger `json:"trigger"`

	// Notes is free operator text.
	Notes string `json:"notes,omitempty"`
}

// clone returns a deep copy so catalog internals never alias caller state.
func (m *Metadata) clone() *Metadata {
	out := *m
	out.Tables = make([]string, len(m.Tables))
	copy(out.Tables, m.Tables)
	return &out
}

// CreateOptions control one backup run.
type CreateOptions struct {
	// IncludeTables, when non-empty, is the exact table set to capture.
	// Empty means every enumerated base table.
	IncludeTables []string

	// ExcludeTables is subtracted from the resolved set.
	ExcludeTables []string

	// Notes is recorded verbatim on the catalog record.
	Notes string

	// Trigger defaults to TriggerManual.
	Trigger Trigger
}

// ListOptions filter and paginate ListBackups. Zero values mean no filter,
// no limit.
type ListOptions struct {
	Trigger Trigger
	Limit   int
	Offset  int
}

// TableResult is the per-table outcome of a backup capture or restore pass.
type TableResult struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
	Err   string `json:"error,omitempty"`
}

// OK reports whether the table completed without error.
func (r TableResult) OK() bool { return r.Err == "" }

// Result is the outcome of one backup run: the catalog record plus the
// per-table report, failed tables included.
type Result struct {
	Meta   *Metadata     `json:"backup"`
	Tables []TableResult `json:"tables"`
}

// FailedTables returns the names of tables that failed extraction.
func (r *Result) FailedTables() []string {
	var failed []string
	for _, t := range r.Tables {
		if !t.OK() {
			failed = append(failed, t.Table)
		}
	}
	return failed
}

// RestoreResult is the outcome of one restore run. Tables carries every
// table the snapshot held, in snapshot order, with its individual outcome;
// RestoredTables repeats the names of the ones that succeeded. Success is
// true only when no table failed, so a partial restore reports false even
// though the run itself returned without error.
type RestoreResult struct {
	BackupID       string        `json:"backup_id"`
	RestoredTables []string      `json:"restored_tables"`
	RowsRestored   int64         `json:"rows_restored"`
	Tables         []TableResult `json:"tables"`
	Success        bool          `json:"success"`
	DurationMS     int64         `json:"duration_ms"`
}

// ValidationResult is the outcome of the read-only backup checks. Issues is
// the union of every failing check, never just the first.
type ValidationResult struct {
	BackupID  string    `json:"backup_id"`
	Valid     bool      `json:"valid"`
	Issues    []string  `json:"issues"`
	CheckedAt time.Time `json:"checked_at"`
}

func (r *ValidationResult) addIssue(issue string) {
	r.Issues = append(r.Issues, issue)
}

// TestRestoreResult is the outcome of a restore rehearsal: a full decode
// and structural pass over the snapshot with no store contact. Warnings
// flag shapes that restore would accept but alter, such as rows whose
// column set differs from their table's first row.
type TestRestoreResult struct {
	BackupID string        `json:"backup_id"`
	Success  bool          `json:"success"`
	Tables   []TableResult `json:"tables"`
	Warnings []string      `json:"warnings,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// CleanupResult is the outcome of one retention pass. Deletions are
// independent, so both lists can be non-empty after a single run.
type CleanupResult struct {
	DeletedCount   int      `json:"deleted_count"`
	Deleted        []string `json:"deleted"`
	Failed         []string `json:"failed,omitempty"`
	ReclaimedBytes int64    `json:"reclaimed_bytes"`
}

// RetentionPreview reports what a cleanup would do right now without doing
// it.
type RetentionPreview struct {
	WouldDelete []PreviewItem `json:"would_delete"`
	WouldKeep   []PreviewItem `json:"would_keep"`
	DeleteCount int           `json:"delete_count"`
	KeepCount   int           `json:"keep_count"`
	DeleteBytes int64         `json:"delete_bytes"`
}

// PreviewItem is one backup's line in a retention preview.
type PreviewItem struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	AgeDays   int       `json:"age_days"`
	Reason    string    `json:"reason"`
}

// Stats are aggregate catalog statistics, computed on demand.
type Stats struct {
	TotalCount      int             `json:"total_count"`
	TotalSizeBytes  int64           `json:"total_size_bytes"`
	AverageSize     int64           `json:"average_size_bytes"`
	TotalRecords    int64           `json:"total_records"`
	CountByTrigger  map[Trigger]int `json:"count_by_trigger"`
	CountByEncoding map[string]int  `json:"count_by_encoding"`
	OldestBackup    *time.Time      `json:"oldest_backup,omitempty"`
	NewestBackup    *time.Time      `json:"newest_backup,omitempty"`
	LastBackup      *Metadata       `json:"last_backup,omitempty"`
	RetentionDays   int             `json:"retention_days"`
	ExpiredCount    int             `json:"expired_count"`
}
