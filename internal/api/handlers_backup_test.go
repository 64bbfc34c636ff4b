// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tabularium/tabularium/internal/backup"
	"github.com/tabularium/tabularium/internal/snapshot"
)

func TestCreateBackupEndpoint(t *testing.T) {
	t.Parallel()

	var gotOpts backup.CreateOptions
	mgr := &mockBackupManager{
		createFunc: func(ctx context.Context, opts backup.CreateOptions) (*backup.Result, error) {
			gotOpts = opts
			return &backup.Result{
				Meta: &backup.Metadata{
					ID:          "b-1",
					Filename:    "backup-b-1-20260823-100000.json",
					Tables:      []string{"users"},
					RecordCount: 3,
				},
				Tables: []backup.TableResult{{Table: "users", Rows: 3}},
			}, nil
		},
	}
	router := newTestRouter(mgr, nil, nil)

	body := strings.NewReader(`{"include_tables":["users"],"notes":"pre-migration"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/backups", body)
	req.Header.Set("Content-Type", "application/json")
	rec := doRequest(t, router, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var data struct {
		Backup struct {
			ID string `json:"id"`
		} `json:"backup"`
		Tables []backup.TableResult `json:"tables"`
	}
	env := decodeData(t, rec, &data)

	if env.Status != "success" {
		t.Errorf("Expected envelope status success, got %q", env.Status)
	}
	if data.Backup.ID != "b-1" {
		t.Errorf("Expected backup ID b-1, got %q", data.Backup.ID)
	}
	if len(data.Tables) != 1 || data.Tables[0].Rows != 3 {
		t.Errorf("Unexpected table results: %+v", data.Tables)
	}

	if gotOpts.Trigger != backup.TriggerManual {
		t.Errorf("Expected manual trigger, got %q", gotOpts.Trigger)
	}
	if gotOpts.Notes != "pre-migration" {
		t.Errorf("Notes not forwarded: %q", gotOpts.Notes)
	}
	if len(gotOpts.IncludeTables) != 1 || gotOpts.IncludeTables[0] != "users" {
		t.Errorf("IncludeTables not forwarded: %v", gotOpts.IncludeTables)
	}
}

func TestCreateBackupEmptyBody(t *testing.T) {
	t.Parallel()

	mgr := &mockBackupManager{
		createFunc: func(ctx context.Context, opts backup.CreateOptions) (*backup.Result, error) {
			if len(opts.IncludeTables) != 0 || len(opts.ExcludeTables) != 0 {
				t.Errorf("Expected default options, got %+v", opts)
			}
			return &backup.Result{Meta: &backup.Metadata{ID: "b-2"}}, nil
		},
	}
	router := newTestRouter(mgr, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backups", nil)
	rec := doRequest(t, router, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201 for empty body, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestCreateBackupInvalidJSON(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockBackupManager{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backups", strings.NewReader("{not json"))
	rec := doRequest(t, router, req)

	wantErrorCode(t, rec, http.StatusBadRequest, ErrCodeBadRequest)
}

func TestCreateBackupValidationError(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockBackupManager{}, nil, nil)

	body := strings.NewReader(`{"include_tables":["users; DROP TABLE users"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/backups", body)
	rec := doRequest(t, router, req)

	wantErrorCode(t, rec, http.StatusBadRequest, ErrCodeValidationFailed)
}

func TestCreateBackupNoTables(t *testing.T) {
	t.Parallel()

	mgr := &mockBackupManager{
		createFunc: func(ctx context.Context, opts backup.CreateOptions) (*backup.Result, error) {
			return nil, backup.ErrNoTables
		},
	}
	router := newTestRouter(mgr, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backups", nil)
	rec := doRequest(t, router, req)

	wantErrorCode(t, rec, http.StatusBadRequest, ErrCodeBadRequest)
}

func TestCreateBackupFailure(t *testing.T) {
	t.Parallel()

	mgr := &mockBackupManager{
		createFunc: func(ctx context.Context, opts backup.CreateOptions) (*backup.Result, error) {
			return nil, fmt.Errorf("write snapshot: disk full")
		},
	}
	router := newTestRouter(mgr, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backups", nil)
	rec := doRequest(t, router, req)

	wantErrorCode(t, rec, http.StatusInternalServerError, "BACKUP_FAILED")
}

func TestListBackupsEndpoint(t *testing.T) {
	t.Parallel()

	var gotOpts backup.ListOptions
	mgr := &mockBackupManager{
		listFunc: func(opts backup.ListOptions) ([]*backup.Metadata, error) {
			gotOpts = opts
			return []*backup.Metadata{
				{ID: "b-1", Trigger: backup.TriggerManual},
				{ID: "b-2", Trigger: backup.TriggerManual},
			}, nil
		},
	}
	router := newTestRouter(mgr, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/backups?trigger=manual&limit=10&offset=5", nil)
	rec := doRequest(t, router, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var data struct {
		Backups []*backup.Metadata `json:"backups"`
		Count   int                `json:"count"`
		Limit   int                `json:"limit"`
		Offset  int                `json:"offset"`
	}
	decodeData(t, rec, &data)

	if data.Count != 2 || len(data.Backups) != 2 {
		t.Errorf("Expected 2 backups, got count=%d len=%d", data.Count, len(data.Backups))
	}
	if data.Limit != 10 || data.Offset != 5 {
		t.Errorf("Expected limit/offset echoed, got %d/%d", data.Limit, data.Offset)
	}

	want := backup.ListOptions{Trigger: backup.TriggerManual, Limit: 10, Offset: 5}
	if gotOpts != want {
		t.Errorf("Expected options %+v, got %+v", want, gotOpts)
	}
}

func TestListBackupsInvalidTrigger(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockBackupManager{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/backups?trigger=bogus", nil)
	rec := doRequest(t, router, req)

	wantErrorCode(t, rec, http.StatusBadRequest, ErrCodeValidationFailed)
}

func TestGetBackupEndpoint(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 8, 20, 3, 0, 0, 0, time.UTC)
	mgr := &mockBackupManager{
		getFunc: func(id string) (*backup.Metadata, error) {
			if id != "b-1" {
				t.Errorf("Expected lookup for b-1, got %q", id)
			}
			return &backup.Metadata{ID: "b-1", CreatedAt: created, Tables: []string{"users"}}, nil
		},
	}
	router := newTestRouter(mgr, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/backups/b-1", nil)
	rec := doRequest(t, router, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var meta backup.Metadata
	decodeData(t, rec, &meta)
	if meta.ID != "b-1" || !meta.CreatedAt.Equal(created) {
		t.Errorf("Unexpected metadata: %+v", meta)
	}
}

func TestGetBackupNotFound(t *testing.T) {
	t.Parallel()

	mgr := &mockBackupManager{
		getFunc: func(id string) (*backup.Metadata, error) {
			return nil, backup.ErrNotFound
		},
	}
	router := newTestRouter(mgr, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/backups/ghost", nil)
	rec := doRequest(t, router, req)

	wantErrorCode(t, rec, http.StatusNotFound, ErrCodeNotFound)
}

func TestDeleteBackupEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		deleted := ""
		mgr := &mockBackupManager{
			deleteFunc: func(id string) error {
				deleted = id
				return nil
			},
		}
		router := newTestRouter(mgr, nil, nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/backups/b-1", nil)
		rec := doRequest(t, router, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
		if deleted != "b-1" {
			t.Errorf("Expected delete of b-1, got %q", deleted)
		}

		var data struct {
			Message string `json:"message"`
		}
		decodeData(t, rec, &data)
		if data.Message != "Backup deleted successfully" {
			t.Errorf("Unexpected message: %q", data.Message)
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		mgr := &mockBackupManager{
			deleteFunc: func(id string) error {
				return backup.ErrNotFound
			},
		}
		router := newTestRouter(mgr, nil, nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/backups/ghost", nil)
		rec := doRequest(t, router, req)

		wantErrorCode(t, rec, http.StatusNotFound, ErrCodeNotFound)
	})
}

func TestBackupStatsEndpoint(t *testing.T) {
	t.Parallel()

	mgr := &mockBackupManager{
		statsFunc: func() *backup.Stats {
			return &backup.Stats{
				TotalCount:     3,
				TotalSizeBytes: 3072,
				AverageSize:    1024,
				RetentionDays:  30,
			}
		},
	}
	router := newTestRouter(mgr, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/backups/stats", nil)
	rec := doRequest(t, router, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var stats backup.Stats
	decodeData(t, rec, &stats)
	if stats.TotalCount != 3 || stats.TotalSizeBytes != 3072 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if stats.RetentionDays != 30 {
		t.Errorf("Expected retention days 30, got %d", stats.RetentionDays)
	}
}

func TestRestoreBackupEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("clean restore", func(t *testing.T) {
		t.Parallel()
		mgr := &mockBackupManager{
			restoreFunc: func(ctx context.Context, id string) (*backup.RestoreResult, error) {
				return &backup.RestoreResult{
					BackupID:       id,
					RestoredTables: []string{"users", "orders"},
					RowsRestored:   42,
					Success:        true,
				}, nil
			},
		}
		router := newTestRouter(mgr, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/backups/b-1/restore", nil)
		rec := doRequest(t, router, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}

		var result backup.RestoreResult
		decodeData(t, rec, &result)
		if !result.Success || result.RowsRestored != 42 {
			t.Errorf("Unexpected restore result: %+v", result)
		}
	})

	t.Run("partial restore returns 500", func(t *testing.T) {
		t.Parallel()
		mgr := &mockBackupManager{
			restoreFunc: func(ctx context.Context, id string) (*backup.RestoreResult, error) {
				return &backup.RestoreResult{
					BackupID:       id,
					RestoredTables: []string{"users"},
					Tables: []backup.TableResult{
						{Table: "users", Rows: 10},
						{Table: "orders", Err: "insert failed"},
					},
					Success: false,
				}, nil
			},
		}
		router := newTestRouter(mgr, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/backups/b-1/restore", nil)
		rec := doRequest(t, router, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("Expected status 500 for partial restore, got %d", rec.Code)
		}

		var result backup.RestoreResult
		env := decodeData(t, rec, &result)
		if env.Status != "success" {
			t.Errorf("Partial restore still carries the result payload, got envelope %q", env.Status)
		}
		if result.Success {
			t.Error("Expected success=false in partial result")
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		mgr := &mockBackupManager{
			restoreFunc: func(ctx context.Context, id string) (*backup.RestoreResult, error) {
				return nil, backup.ErrNotFound
			},
		}
		router := newTestRouter(mgr, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/backups/ghost/restore", nil)
		rec := doRequest(t, router, req)

		wantErrorCode(t, rec, http.StatusNotFound, ErrCodeNotFound)
	})
}

func TestValidateBackupEndpoint(t *testing.T) {
	t.Parallel()

	mgr := &mockBackupManager{
		validateFunc: func(id string) (*backup.ValidationResult, error) {
			return &backup.ValidationResult{
				BackupID: id,
				Valid:    false,
				Issues:   []string{"checksum mismatch"},
			}, nil
		},
	}
	router := newTestRouter(mgr, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/backups/b-1/validate", nil)
	rec := doRequest(t, router, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for validation findings, got %d", rec.Code)
	}

	var result backup.ValidationResult
	decodeData(t, rec, &result)
	if result.Valid {
		t.Error("Expected valid=false")
	}
	if len(result.Issues) != 1 || result.Issues[0] != "checksum mismatch" {
		t.Errorf("Unexpected issues: %v", result.Issues)
	}
}

func TestTestRestoreEndpoint(t *testing.T) {
	t.Parallel()

	mgr := &mockBackupManager{
		testRestoreFunc: func(id string) (*backup.TestRestoreResult, error) {
			return &backup.TestRestoreResult{
				BackupID: id,
				Success:  false,
				Error:    "decode rows: unexpected token",
			}, nil
		},
	}
	router := newTestRouter(mgr, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backups/b-1/test-restore", nil)
	rec := doRequest(t, router, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for rehearsal findings, got %d", rec.Code)
	}

	var result backup.TestRestoreResult
	decodeData(t, rec, &result)
	if result.Success {
		t.Error("Expected success=false")
	}
	if result.Error == "" {
		t.Error("Expected rehearsal error to be reported")
	}
}

func TestDownloadBackupEndpoint(t *testing.T) {
	t.Parallel()

	payload := `{"id":"b-1","timestamp":"2026-08-23T10:00:00Z","tables":{}}`
	mgr := &mockBackupManager{
		downloadFunc: func(id string) (io.ReadCloser, *backup.Metadata, error) {
			meta := &backup.Metadata{
				ID:       "b-1",
				Filename: "backup-b-1-20260823-100000.json",
				Size:     int64(len(payload)),
				Encoding: "json",
				Checksum: "sha256:abc123",
			}
			return io.NopCloser(strings.NewReader(payload)), meta, nil
		},
	}
	router := newTestRouter(mgr, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/backups/b-1/download", nil)
	rec := doRequest(t, router, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != payload {
		t.Error("Downloaded body does not match the snapshot payload")
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "backup-b-1-20260823-100000.json") {
		t.Errorf("Content-Disposition missing filename: %q", got)
	}
	if got := rec.Header().Get("Content-Length"); got != fmt.Sprint(len(payload)) {
		t.Errorf("Expected Content-Length %d, got %q", len(payload), got)
	}
	if got := rec.Header().Get("X-Backup-ID"); got != "b-1" {
		t.Errorf("Expected X-Backup-ID b-1, got %q", got)
	}
	if got := rec.Header().Get("X-Backup-Checksum"); got != "sha256:abc123" {
		t.Errorf("Expected checksum header, got %q", got)
	}
}

func TestDownloadBackupNotFound(t *testing.T) {
	t.Parallel()

	mgr := &mockBackupManager{
		downloadFunc: func(id string) (io.ReadCloser, *backup.Metadata, error) {
			return nil, nil, backup.ErrNotFound
		},
	}
	router := newTestRouter(mgr, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/backups/ghost/download", nil)
	rec := doRequest(t, router, req)

	wantErrorCode(t, rec, http.StatusNotFound, ErrCodeNotFound)
}

func TestContentTypeForEncoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		encoding string
		want     string
	}{
		{"json", "application/json"},
		{"json.gz", "application/gzip"},
		{"json.zst", "application/zstd"},
		{"", "application/json"},
	}

	for _, tt := range tests {
		if got := contentTypeForEncoding(tt.encoding); got != tt.want {
			t.Errorf("contentTypeForEncoding(%q) = %q, want %q", tt.encoding, got, tt.want)
		}
	}
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("Write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestImportBackupEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		doc := `{"id":"up","timestamp":"2026-08-23T10:00:00Z","tables":{"events":[]}}`

		mgr := &mockBackupManager{
			importFunc: func(r io.Reader, filename string) (*backup.Metadata, error) {
				if filename != "snapshot.json" {
					t.Errorf("Expected upload filename snapshot.json, got %q", filename)
				}
				uploaded, err := io.ReadAll(r)
				if err != nil {
					t.Fatalf("Read upload: %v", err)
				}
				if string(uploaded) != doc {
					t.Error("Uploaded bytes do not match the original document")
				}
				return &backup.Metadata{ID: "imported-1", Trigger: backup.TriggerImported}, nil
			},
		}
		router := newTestRouter(mgr, nil, nil)

		body, contentType := multipartBody(t, "backup", "snapshot.json", doc)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/backups/import", body)
		req.Header.Set("Content-Type", contentType)
		rec := doRequest(t, router, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d (body: %s)", rec.Code, rec.Body.String())
		}

		var meta backup.Metadata
		decodeData(t, rec, &meta)
		if meta.ID != "imported-1" || meta.Trigger != backup.TriggerImported {
			t.Errorf("Unexpected imported metadata: %+v", meta)
		}
	})

	t.Run("unparseable snapshot", func(t *testing.T) {
		t.Parallel()
		mgr := &mockBackupManager{
			importFunc: func(r io.Reader, filename string) (*backup.Metadata, error) {
				return nil, fmt.Errorf("import rejected: %w", &snapshot.DecodeError{Msg: "missing tables"})
			},
		}
		router := newTestRouter(mgr, nil, nil)

		body, contentType := multipartBody(t, "backup", "garbage.json", "not a snapshot")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/backups/import", body)
		req.Header.Set("Content-Type", contentType)
		rec := doRequest(t, router, req)

		wantErrorCode(t, rec, http.StatusUnprocessableEntity, ErrCodeInvalidSnapshot)
	})

	t.Run("missing file field", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(&mockBackupManager{}, nil, nil)

		body, contentType := multipartBody(t, "wrong_field", "snapshot.json", "{}")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/backups/import", body)
		req.Header.Set("Content-Type", contentType)
		rec := doRequest(t, router, req)

		wantErrorCode(t, rec, http.StatusBadRequest, ErrCodeBadRequest)
	})
}

func TestCleanupEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("deletes expired", func(t *testing.T) {
		t.Parallel()
		mgr := &mockBackupManager{
			cleanupFunc: func(ctx context.Context) (*backup.CleanupResult, error) {
				return &backup.CleanupResult{
					DeletedCount:   2,
					Deleted:        []string{"b-1", "b-2"},
					ReclaimedBytes: 2048,
				}, nil
			},
		}
		router := newTestRouter(mgr, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/backups/cleanup", nil)
		rec := doRequest(t, router, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}

		var result backup.CleanupResult
		decodeData(t, rec, &result)
		if result.DeletedCount != 2 || result.ReclaimedBytes != 2048 {
			t.Errorf("Unexpected cleanup result: %+v", result)
		}
	})

	t.Run("dry run via query", func(t *testing.T) {
		t.Parallel()
		mgr := &mockBackupManager{
			cleanupFunc: func(ctx context.Context) (*backup.CleanupResult, error) {
				t.Error("CleanupExpired must not run during a dry run")
				return nil, nil
			},
			previewFunc: func() *backup.RetentionPreview {
				return &backup.RetentionPreview{DeleteCount: 1, KeepCount: 4, DeleteBytes: 512}
			},
		}
		router := newTestRouter(mgr, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/backups/cleanup?dry_run=true", nil)
		rec := doRequest(t, router, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}

		var preview backup.RetentionPreview
		decodeData(t, rec, &preview)
		if preview.DeleteCount != 1 || preview.KeepCount != 4 {
			t.Errorf("Unexpected preview: %+v", preview)
		}
	})

	t.Run("dry run via body", func(t *testing.T) {
		t.Parallel()
		mgr := &mockBackupManager{
			cleanupFunc: func(ctx context.Context) (*backup.CleanupResult, error) {
				t.Error("CleanupExpired must not run during a dry run")
				return nil, nil
			},
			previewFunc: func() *backup.RetentionPreview {
				return &backup.RetentionPreview{DeleteCount: 3}
			},
		}
		router := newTestRouter(mgr, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/backups/cleanup", strings.NewReader(`{"dry_run":true}`))
		req.Header.Set("Content-Type", "application/json")
		rec := doRequest(t, router, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}

		var preview backup.RetentionPreview
		decodeData(t, rec, &preview)
		if preview.DeleteCount != 3 {
			t.Errorf("Unexpected preview: %+v", preview)
		}
	})
}

func TestNoStoreUnavailable(t *testing.T) {
	t.Parallel()

	mgr := &mockBackupManager{
		restoreFunc: func(ctx context.Context, id string) (*backup.RestoreResult, error) {
			return nil, backup.ErrNoStore
		},
	}
	router := newTestRouter(mgr, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backups/b-1/restore", nil)
	rec := doRequest(t, router, req)

	wantErrorCode(t, rec, http.StatusServiceUnavailable, ErrCodeServiceUnavailable)
}
