// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
index.go - Metadata Index (catalog)

The catalog is a single metadata.json file in the managed backup directory
mapping backup id to its Metadata record. It is authoritative whenever it
parses; when it is missing or corrupt, the index reconstructs itself by
scanning the directory for files matching the snapshot naming convention:

	backup-<uuid>-<yyyymmdd-hhmmss>.<json|json.gz|json.zst>

Reconstructed records carry id, filename, size, creation time (file mtime)
and the compression inferred from the extension, but no table inventory.
That weakening is the documented cost of losing the catalog; the
reconstruction is persisted so subsequent loads are authoritative again.

Every mutation rewrites the whole catalog file, through a temp file renamed
into place. The RWMutex guards a single process only; two processes mutating
the same catalog concurrently can lose an update. The engine is built for one administrative process at a time and
does not paper over that with file locking.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tabularium/tabularium/internal/logging"
	"github.com/tabularium/tabularium/internal/snapshot"
)

// CatalogFilename is the catalog's name inside the managed directory.
const CatalogFilename = "metadata.json"

const filenameTimeLayout = "20060102-150405"

// backupFilePattern matches the snapshot naming convention: a full UUID,
// then a timestamp, then the encoding extension.
var backupFilePattern = regexp.MustCompile(
	`^backup-([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})-(\d{8}-\d{6})\.(json|json\.gz|json\.zst)$`)

// BackupFilename builds the conventional snapshot filename for an id,
// creation time and encoding.
func BackupFilename(id string, ts time.Time, enc snapshot.Encoding) string {
	return fmt.Sprintf("backup-%s-%s%s", id, ts.UTC().Format(filenameTimeLayout), enc.Ext())
}

// ParseBackupFilename extracts the id and encoding from a conventional
// snapshot filename. ok is false for anything outside the convention.
func ParseBackupFilename(name string) (id string, enc snapshot.Encoding, ok bool) {
	m := backupFilePattern.FindStringSubmatch(name)
	if m == nil {
		return "", snapshot.EncodingJSON, false
	}
	enc, _ = snapshot.EncodingForFilename(name)
	return m[1], enc, true
}

// catalogDoc is the on-disk form of the catalog.
type catalogDoc struct {
	Backups   []*Metadata `json:"backups"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Index is the persistent catalog of backups in one managed directory. It
// is an explicit object constructed once per process and safe for
// concurrent use within that process.
type Index struct {
	dir  string
	path string

	mu      sync.RWMutex
	entries []*Metadata
}

// LoadIndex opens the catalog for a managed directory. A missing catalog
// over an empty directory is a fresh install; a missing or unparseable
// catalog over existing snapshot files triggers a directory-scan
// reconstruction.
func LoadIndex(dir string) (*Index, error) {
	idx := &Index{dir: dir, path: filepath.Join(dir, CatalogFilename)}

	err := idx.load()
	if err == nil {
		return idx, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		logging.Debug().Str("catalog", idx.path).Msg("No catalog file, scanning directory")
	} else {
		logging.Warn().Err(err).Str("catalog", idx.path).Msg("Catalog unreadable, reconstructing from directory scan")
	}

	if err := idx.Rebuild(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Dir returns the managed directory this index covers.
func (idx *Index) Dir() string { return idx.dir }

// load reads and parses the catalog file, replacing the in-memory entries.
func (idx *Index) load() error {
	data, err := os.ReadFile(idx.path) //nolint:gosec // G304: path is inside the managed backup directory
	if err != nil {
		return err
	}

	var doc catalogDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse catalog: %w", err)
	}

	idx.mu.Lock()
	idx.entries = doc.Backups
	idx.mu.Unlock()
	return nil
}

// Rebuild replaces the in-memory catalog with records reconstructed from a
// directory scan and persists the result. On a fresh directory with no
// snapshot files and no catalog, nothing is written.
func (idx *Index) Rebuild() error {
	entries, err := scanDirectory(idx.dir)
	if err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries = entries

	if len(entries) == 0 && !fileExists(idx.path) {
		return nil
	}
	if err := idx.saveLocked(); err != nil {
		return fmt.Errorf("failed to persist reconstructed catalog: %w", err)
	}
	logging.Info().Int("backups", len(entries)).Str("dir", idx.dir).Msg("Catalog reconstructed from directory scan")
	return nil
}

// scanDirectory derives minimal records from the snapshot files present.
// Creation time comes from file metadata and the table inventory stays
// empty; both are all a filename can offer.
func scanDirectory(dir string) ([]*Metadata, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan backup directory: %w", err)
	}

	var entries []*Metadata
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		id, enc, ok := ParseBackupFilename(f.Name())
		if !ok {
			continue
		}
		info, err := f.Info()
		if err != nil {
			logging.Warn().Err(err).Str("file", f.Name()).Msg("Failed to stat snapshot file during scan")
			continue
		}
		entries = append(entries, &Metadata{
			ID:         id,
			Filename:   f.Name(),
			Size:       info.Size(),
			CreatedAt:  info.ModTime(),
			Tables:     []string{},
			Compressed: enc.Compressed(),
			Encoding:   enc.String(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// List returns catalog records newest first. The records are copies;
// mutating them does not touch the catalog.
func (idx *Index) List() []*Metadata {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]*Metadata, len(idx.entries))
	for i, m := range idx.entries {
		out[i] = m.clone()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Get returns a copy of the record for id and whether it exists.
func (idx *Index) Get(id string) (*Metadata, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	for _, m := range idx.entries {
		if m.ID == id {
			return m.clone(), true
		}
	}
	return nil, false
}

// Put inserts or replaces the record for meta.ID and rewrites the catalog
// file.
func (idx *Index) Put(meta *Metadata) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	stored := meta.clone()
	for i, m := range idx.entries {
		if m.ID == meta.ID {
			idx.entries[i] = stored
			return idx.saveLocked()
		}
	}
	idx.entries = append(idx.entries, stored)
	return idx.saveLocked()
}

// Remove deletes the record for id and rewrites the catalog file. Removing
// an absent id is a no-op.
func (idx *Index) Remove(id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for i, m := range idx.entries {
		if m.ID == id {
			idx.entries = append(idx.entries[:i], idx.entries[i+1:]...)
			return idx.saveLocked()
		}
	}
	return nil
}

// Count returns the number of catalog records.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// TotalSize returns the summed byte size of every catalog record.
func (idx *Index) TotalSize() int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var total int64
	for _, m := range idx.entries {
		total += m.Size
	}
	return total
}

// saveLocked rewrites the whole catalog through a temp file in the same
// directory renamed over the old one, so a torn write cannot leave a
// truncated catalog. Must be called with the write lock held.
func (idx *Index) saveLocked() error {
	doc := catalogDoc{Backups: idx.entries, UpdatedAt: time.Now().UTC()}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	tmp := idx.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := os.Rename(tmp, idx.path); err != nil {
		os.Remove(tmp) //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("failed to replace catalog: %w", err)
	}
	return nil
}
