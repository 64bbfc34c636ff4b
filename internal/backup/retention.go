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
)

// CleanupExpired deletes every backup strictly older than the retention
// horizon, measured from the record's creation time. A backup exactly at
// the horizon is kept. With retention disabled (RetentionDays <= 0)
// nothing is deleted.
//
// Deletions are independent: one backup failing to delete is recorded in
// Failed and the pass moves on.
func (m *Manager) CleanupExpired(ctx context.Context) (*CleanupResult, error) {
	result := &CleanupResult{Deleted: []string{}, Failed: []string{}}
	if m.cfg.RetentionDays <= 0 {
		return result, nil
	}

	expired := m.expiredBackups(time.Now())
	for _, meta := range expired {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("cleanup canceled: %w", err)
		}
		if err := m.DeleteBackup(meta.ID); err != nil {
			logging.Warn().Err(err).Str("backup_id", meta.ID).Msg("Failed to delete expired backup")
			result.Failed = append(result.Failed, meta.ID)
			continue
		}
		result.Deleted = append(result.Deleted, meta.ID)
		result.DeletedCount++
		result.ReclaimedBytes += meta.Size
	}

	metrics.RecordRetentionRun(result.DeletedCount, result.ReclaimedBytes)
	if result.DeletedCount > 0 || len(result.Failed) > 0 {
		logging.Info().
			Int("deleted", result.DeletedCount).
			Int("failed", len(result.Failed)).
			Int64("reclaimed_bytes", result.ReclaimedBytes).
			Int("retention_days", m.cfg.RetentionDays).
			Msg("Retention cleanup finished")
		m.notify(ctx, NotifyEvent{
			Event:  EventCleanupCompleted,
			Detail: fmt.Sprintf("%d backups deleted, %d bytes reclaimed", result.DeletedCount, result.ReclaimedBytes),
		})
	}
	return result, nil
}

// expiredBackups returns catalog records strictly older than the retention
// horizon at the given instant, newest first.
func (m *Manager) expiredBackups(now time.Time) []*Metadata {
	horizon := time.Duration(m.cfg.RetentionDays) * 24 * time.Hour
	var expired []*Metadata
	for _, meta := range m.index.List() {
		if now.Sub(meta.CreatedAt) > horizon {
			expired = append(expired, meta)
		}
	}
	return expired
}

// GetRetentionPreview reports what CleanupExpired would delete right now,
// deleting nothing.
func (m *Manager) GetRetentionPreview() *RetentionPreview {
	preview := &RetentionPreview{
		WouldDelete: []PreviewItem{},
		WouldKeep:   []PreviewItem{},
	}

	now := time.Now()
	retention := m.cfg.RetentionDays
	horizon := time.Duration(retention) * 24 * time.Hour

	for _, meta := range m.index.List() {
		age := now.Sub(meta.CreatedAt)
		item := PreviewItem{
			ID:        meta.ID,
			Filename:  meta.Filename,
			Size:      meta.Size,
			CreatedAt: meta.CreatedAt,
			AgeDays:   int(age.Hours() / 24),
		}
		if retention > 0 && age > horizon {
			item.Reason = fmt.Sprintf("older than %d day retention horizon", retention)
			preview.WouldDelete = append(preview.WouldDelete, item)
			preview.DeleteBytes += meta.Size
		} else {
			if retention > 0 {
				item.Reason = fmt.Sprintf("within %d day retention horizon", retention)
			} else {
				item.Reason = "retention disabled"
			}
			preview.WouldKeep = append(preview.WouldKeep, item)
		}
	}

	preview.DeleteCount = len(preview.WouldDelete)
	preview.KeepCount = len(preview.WouldKeep)
	return preview
}
