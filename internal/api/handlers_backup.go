// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
handlers_backup.go - Backup Operation Endpoints

One handler per backup operation. Handlers decode and validate input,
delegate to the manager, and translate the outcome through the shared
error taxonomy in errors.go. Business rules live in the backup package,
not here.
*/

//nolint:staticcheck // File documentation, not package doc
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/tabularium/tabularium/internal/backup"
)

// maxUploadBytes caps multipart import uploads at 500 MB.
const maxUploadBytes = 500 << 20

// CreateBackup handles POST /api/v1/backups. The body is optional; an
// empty body creates a full backup with default options.
func (h *Handler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	var req CreateBackupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	result, err := h.manager.CreateBackup(r.Context(), backup.CreateOptions{
		IncludeTables: req.IncludeTables,
		ExcludeTables: req.ExcludeTables,
		Notes:         req.Notes,
		Trigger:       backup.TriggerManual,
	})
	if err != nil {
		respondOperationError(w, r, "BACKUP_FAILED", err)
		return
	}

	respondSuccess(w, r, http.StatusCreated, result)
}

// ListBackups handles GET /api/v1/backups with optional trigger, limit
// and offset query parameters.
func (h *Handler) ListBackups(w http.ResponseWriter, r *http.Request) {
	req := ListBackupsRequest{
		Trigger: r.URL.Query().Get("trigger"),
		Limit:   getIntParam(r, "limit", 0),
		Offset:  getIntParam(r, "offset", 0),
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	backups, err := h.manager.ListBackups(backup.ListOptions{
		Trigger: backup.Trigger(req.Trigger),
		Limit:   req.Limit,
		Offset:  req.Offset,
	})
	if err != nil {
		respondOperationError(w, r, "LIST_FAILED", err)
		return
	}

	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"backups": backups,
		"count":   len(backups),
		"limit":   req.Limit,
		"offset":  req.Offset,
	})
}

// GetBackupStats handles GET /api/v1/backups/stats.
func (h *Handler) GetBackupStats(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, h.manager.GetStats())
}

// GetBackup handles GET /api/v1/backups/{id}.
func (h *Handler) GetBackup(w http.ResponseWriter, r *http.Request) {
	meta, err := h.manager.GetBackup(chi.URLParam(r, "id"))
	if err != nil {
		respondOperationError(w, r, "LOOKUP_FAILED", err)
		return
	}

	respondSuccess(w, r, http.StatusOK, meta)
}

// DeleteBackup handles DELETE /api/v1/backups/{id}.
func (h *Handler) DeleteBackup(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.DeleteBackup(chi.URLParam(r, "id")); err != nil {
		respondOperationError(w, r, "DELETE_FAILED", err)
		return
	}

	respondSuccess(w, r, http.StatusOK, map[string]string{
		"message": "Backup deleted successfully",
	})
}

// RestoreBackup handles POST /api/v1/backups/{id}/restore. A partial
// restore returns the result with a 500 status so callers cannot mistake
// it for a clean run.
func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	result, err := h.manager.RestoreBackup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondOperationError(w, r, "RESTORE_FAILED", err)
		return
	}

	statusCode := http.StatusOK
	if !result.Success {
		statusCode = http.StatusInternalServerError
	}
	respondSuccess(w, r, statusCode, result)
}

// ValidateBackup handles GET /api/v1/backups/{id}/validate.
func (h *Handler) ValidateBackup(w http.ResponseWriter, r *http.Request) {
	result, err := h.manager.ValidateBackup(chi.URLParam(r, "id"))
	if err != nil {
		respondOperationError(w, r, "VALIDATION_FAILED", err)
		return
	}

	respondSuccess(w, r, http.StatusOK, result)
}

// TestRestoreBackup handles POST /api/v1/backups/{id}/test-restore. The
// dry run always responds 200; a failed rehearsal is a finding, not an
// API error.
func (h *Handler) TestRestoreBackup(w http.ResponseWriter, r *http.Request) {
	result, err := h.manager.TestRestore(chi.URLParam(r, "id"))
	if err != nil {
		respondOperationError(w, r, "TEST_RESTORE_FAILED", err)
		return
	}

	respondSuccess(w, r, http.StatusOK, result)
}

// DownloadBackup handles GET /api/v1/backups/{id}/download, streaming the
// raw snapshot file.
func (h *Handler) DownloadBackup(w http.ResponseWriter, r *http.Request) {
	reader, meta, err := h.manager.DownloadBackup(chi.URLParam(r, "id"))
	if err != nil {
		respondOperationError(w, r, "DOWNLOAD_FAILED", err)
		return
	}
	defer reader.Close() //nolint:errcheck // Best effort cleanup

	w.Header().Set("Content-Type", contentTypeForEncoding(meta.Encoding))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.Filename))
	w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	w.Header().Set("X-Backup-ID", meta.ID)
	if meta.Checksum != "" {
		w.Header().Set("X-Backup-Checksum", meta.Checksum)
	}

	io.Copy(w, reader) //nolint:errcheck // Headers already sent, cannot switch to an error response
}

// ImportBackup handles POST /api/v1/backups/import. The snapshot file is
// uploaded as the multipart field "backup".
func (h *Handler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid multipart form", err)
		return
	}

	file, header, err := r.FormFile("backup")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Missing 'backup' file field", err)
		return
	}
	defer file.Close() //nolint:errcheck // Best effort cleanup

	meta, err := h.manager.ImportBackupFromReader(file, header.Filename)
	if err != nil {
		respondOperationError(w, r, "IMPORT_FAILED", err)
		return
	}

	respondSuccess(w, r, http.StatusCreated, meta)
}

// CleanupBackups handles POST /api/v1/backups/cleanup. With dry_run set,
// in the body or as a query parameter, it returns the retention preview
// without deleting anything.
func (h *Handler) CleanupBackups(w http.ResponseWriter, r *http.Request) {
	var req CleanupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body", err)
		return
	}

	if getBoolParam(r, "dry_run", req.DryRun) {
		respondSuccess(w, r, http.StatusOK, h.manager.GetRetentionPreview())
		return
	}

	result, err := h.manager.CleanupExpired(r.Context())
	if err != nil {
		respondOperationError(w, r, "CLEANUP_FAILED", err)
		return
	}

	respondSuccess(w, r, http.StatusOK, result)
}

// contentTypeForEncoding maps a snapshot encoding to the MIME type used
// when serving the file.
func contentTypeForEncoding(encoding string) string {
	switch encoding {
	case "json.gz":
		return "application/gzip"
	case "json.zst":
		return "application/zstd"
	default:
		return "application/json"
	}
}
