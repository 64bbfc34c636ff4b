// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
Package backup implements the backup and restore engine: creation,
cataloging, restore, validation, retention, transfer, scheduling and
webhook notification for logical snapshots of a relational store.

# Architecture

The Manager orchestrates everything. It owns a managed directory holding
one snapshot file per backup plus a metadata.json catalog, and consumes the
store through the small Store interface declared here (enumerate, read,
clear, insert). Supporting pieces:

  - Index: the metadata catalog, a JSON file rewritten on every change
  - Scheduler: periodic backups in serve mode (interval or cron)
  - Notifier: best-effort webhook delivery of operation events

# Snapshot Files

Snapshots are self-describing JSON documents (see the snapshot package),
optionally gzip or zstd framed, named

	backup-{uuid}-{YYYYMMDD-HHMMSS}.{json|json.gz|json.zst}

so identity and encoding survive without the catalog. When metadata.json is
missing or unreadable the catalog is reconstructed by scanning the
directory for conventional filenames; reconstructed records recover id,
encoding, size and file modification time, but not table lists, row counts
or triggers.

# Backup and Restore Semantics

Creation reads tables sequentially, one table's rows in memory at a time. A
table that fails to read is skipped and reported; the backup fails only
when every table does.

Restore replaces table contents: delete everything, then insert the
snapshot's rows. It is not transactional. Per-table failures leave that
table skipped (clear failed) or partially loaded (insert failed) and the
restore carries on; only all tables failing is an error. Insert columns
come from each table's first row. Cancellation is honored between tables,
never mid-table.

# Validation

ValidateBackup checks a catalog record against the file system (existence,
size, checksum, retention staleness) without reading row data. TestRestore
decodes the full snapshot as a real restore would, against nothing.
Imported files get only a header check at import time, so TestRestore is
the way to vet one before restoring it.

# Thread Safety

The catalog index is guarded by an RWMutex, safe for the serve-mode mix of
API handlers and scheduler. Operations themselves are designed for one
administrative actor at a time; nothing coordinates concurrent restores of
the same store. Cross-process exclusion on the managed directory is the
operator's responsibility.
*/
package backup
