// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tabularium/tabularium/internal/logging"
	"github.com/tabularium/tabularium/internal/metrics"
	"github.com/tabularium/tabularium/internal/snapshot"
)

// ExportBackup copies the snapshot file verbatim to destPath and returns
// the path written. When destPath is an existing directory, the file keeps
// its catalog filename inside it.
func (m *Manager) ExportBackup(id, destPath string) (string, error) {
	meta, err := m.GetBackup(id)
	if err != nil {
		return "", err
	}

	dest := destPath
	if fi, err := os.Stat(destPath); err == nil && fi.IsDir() {
		dest = filepath.Join(destPath, meta.Filename)
	}

	if err := copyFile(m.snapshotPath(meta), dest); err != nil {
		metrics.RecordExport(err)
		return "", fmt.Errorf("failed to export backup: %w", err)
	}

	metrics.RecordExport(nil)
	logging.Info().Str("backup_id", id).Str("dest", dest).Msg("Backup exported")
	return dest, nil
}

// ImportBackup brings an external snapshot file into the managed directory
// under a fresh identity. The document header must parse; row contents are
// deliberately not examined, so a row-level problem surfaces only at
// restore or test-restore time.
func (m *Manager) ImportBackup(path string) (*Metadata, error) {
	enc, ok := snapshot.EncodingForFilename(path)
	if !ok {
		return nil, fmt.Errorf("unrecognized snapshot extension on %s (want .json, .json.gz or .json.zst)", filepath.Base(path))
	}

	f, err := os.Open(path) //nolint:gosec // G304: import path is operator-supplied
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	return m.importStream(f, enc, filepath.Base(path))
}

// ImportBackupFromReader imports a snapshot from a stream. The filename
// only selects the encoding; the landed file gets a fresh catalog name.
func (m *Manager) ImportBackupFromReader(r io.Reader, filename string) (*Metadata, error) {
	enc, ok := snapshot.EncodingForFilename(filename)
	if !ok {
		return nil, fmt.Errorf("unrecognized snapshot extension on %s (want .json, .json.gz or .json.zst)", filename)
	}
	return m.importStream(r, enc, filename)
}

// importStream lands the stream in the managed directory, then peeks the
// landed file for its header. The stream cannot be re-read, so the bytes
// go to disk first and are removed again if the header does not parse.
func (m *Manager) importStream(r io.Reader, enc snapshot.Encoding, sourceName string) (*Metadata, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	filename := BackupFilename(id, now, enc)
	dest := filepath.Join(m.cfg.Dir, filename)

	size, err := saveReaderToFile(r, dest)
	if err != nil {
		metrics.RecordImport(err)
		return nil, err
	}

	hdr, err := peekSnapshotFile(dest, enc)
	if err != nil {
		os.Remove(dest) //nolint:errcheck // Best effort cleanup on error
		metrics.RecordImport(err)
		return nil, fmt.Errorf("import rejected: %w", err)
	}

	checksum, err := fileChecksum(dest)
	if err != nil {
		os.Remove(dest) //nolint:errcheck // Best effort cleanup on error
		metrics.RecordImport(err)
		return nil, fmt.Errorf("failed to checksum imported snapshot: %w", err)
	}

	meta := &Metadata{
		ID:         id,
		Filename:   filename,
		Size:       size,
		CreatedAt:  now,
		Tables:     hdr.Tables,
		Compressed: enc.Compressed(),
		Encoding:   enc.String(),
		Checksum:   checksum,
		Trigger:    TriggerImported,
		Notes:      fmt.Sprintf("Imported from %s", sourceName),
	}
	if err := m.index.Put(meta); err != nil {
		// The landed file stays; the scan reconstruction will find it.
		metrics.RecordImport(err)
		return nil, fmt.Errorf("failed to register import in catalog: %w", err)
	}

	m.updateCatalogMetrics()
	metrics.RecordImport(nil)

	logging.Info().
		Str("backup_id", id).
		Str("source", sourceName).
		Strs("tables", hdr.Tables).
		Int64("size", size).
		Msg("Backup imported")
	return meta, nil
}

// DownloadBackup opens the snapshot file for streaming. The caller closes
// the reader.
func (m *Manager) DownloadBackup(id string) (io.ReadCloser, *Metadata, error) {
	meta, err := m.GetBackup(id)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(m.snapshotPath(meta)) //nolint:gosec // G304: path is inside the managed backup directory
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open backup file: %w", err)
	}
	return f, meta, nil
}

// saveReaderToFile streams r into dest and returns the byte count. The
// landed file gets the same mode as a created snapshot; the partial file
// is removed on any failure.
func saveReaderToFile(r io.Reader, dest string) (int64, error) {
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640) //nolint:gosec // G304: dest is inside the managed backup directory
	if err != nil {
		return 0, fmt.Errorf("failed to create snapshot file: %w", err)
	}
	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()       //nolint:errcheck // Best effort cleanup on error
		os.Remove(dest) //nolint:errcheck // Best effort cleanup on error
		return 0, fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dest) //nolint:errcheck // Best effort cleanup on error
		return 0, fmt.Errorf("failed to close snapshot file: %w", err)
	}
	return n, nil
}

// peekSnapshotFile reads only the document header from a snapshot file.
func peekSnapshotFile(path string, enc snapshot.Encoding) (*snapshot.Header, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is inside the managed backup directory
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file
	return snapshot.Peek(f, enc)
}

// copyFile copies src to dest byte for byte, creating parent directories
// as needed.
func copyFile(src, dest string) error {
	in, err := os.Open(src) //nolint:gosec // G304: src is inside the managed backup directory
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer in.Close() //nolint:errcheck // Read-only file

	if dir := filepath.Dir(dest); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create destination directory: %w", err)
		}
	}

	out, err := os.Create(dest) //nolint:gosec // G304: destination is operator-supplied
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()     //nolint:errcheck // Best effort cleanup on error
		os.Remove(dest) //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("failed to copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close() //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("failed to sync destination file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}
	return nil
}
