// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
manager_helpers.go - Catalog Statistics and Shared File Helpers

GetStats aggregates the catalog on demand; nothing here touches snapshot
file contents. The file helpers at the bottom are shared by the catalog,
the backup pipeline, and validation.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"time"
)

// GetStats computes aggregate catalog statistics.
func (m *Manager) GetStats() *Stats {
	list := m.index.List()
	stats := &Stats{
		TotalCount:      len(list),
		CountByTrigger:  make(map[Trigger]int),
		CountByEncoding: make(map[string]int),
		RetentionDays:   m.cfg.RetentionDays,
	}

	now := time.Now()
	horizon := time.Duration(m.cfg.RetentionDays) * 24 * time.Hour

	for _, meta := range list {
		stats.TotalSizeBytes += meta.Size
		stats.TotalRecords += meta.RecordCount

		trigger := meta.Trigger
		if trigger == "" {
			// Scan-reconstructed records carry no trigger.
			trigger = "unknown"
		}
		stats.CountByTrigger[trigger]++
		stats.CountByEncoding[meta.Encoding]++

		created := meta.CreatedAt
		if stats.OldestBackup == nil || created.Before(*stats.OldestBackup) {
			t := created
			stats.OldestBackup = &t
		}
		if stats.NewestBackup == nil || created.After(*stats.NewestBackup) {
			t := created
			stats.NewestBackup = &t
		}
		if m.cfg.RetentionDays > 0 && now.Sub(created) > horizon {
			stats.ExpiredCount++
		}
	}

	if stats.TotalCount > 0 {
		stats.AverageSize = stats.TotalSizeBytes / int64(stats.TotalCount)
		stats.LastBackup = list[0]
	}
	return stats
}

// Helper functions

// fileExists reports whether path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// fileSize returns the file's size in bytes, 0 when it cannot be stated.
func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

// fileChecksum returns the hex SHA-256 of the file's contents.
func fileChecksum(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is inside the managed backup directory
	if err != nil {
		return "", err
	}
	defer f.Close() //nolint:errcheck // Read-only file

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
