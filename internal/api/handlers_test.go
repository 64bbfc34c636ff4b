// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
handlers_test.go - Test Scaffolding

mockBackupManager implements BackupManager with overridable function
fields, so each test wires exactly the behavior it asserts and
everything else fails loudly. Requests run through the full router so
middleware ordering and route registration are exercised too.
*/

//nolint:staticcheck // File documentation, not package doc
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/tabularium/tabularium/internal/backup"
	"github.com/tabularium/tabularium/internal/config"
)

var errNotWired = errors.New("mock method not wired")

type mockBackupManager struct {
	createFunc      func(ctx context.Context, opts backup.CreateOptions) (*backup.Result, error)
	listFunc        func(opts backup.ListOptions) ([]*backup.Metadata, error)
	getFunc         func(id string) (*backup.Metadata, error)
	deleteFunc      func(id string) error
	statsFunc       func() *backup.Stats
	validateFunc    func(id string) (*backup.ValidationResult, error)
	testRestoreFunc func(id string) (*backup.TestRestoreResult, error)
	restoreFunc     func(ctx context.Context, id string) (*backup.RestoreResult, error)
	downloadFunc    func(id string) (io.ReadCloser, *backup.Metadata, error)
	importFunc      func(r io.Reader, filename string) (*backup.Metadata, error)
	cleanupFunc     func(ctx context.Context) (*backup.CleanupResult, error)
	previewFunc     func() *backup.RetentionPreview
}

func (m *mockBackupManager) CreateBackup(ctx context.Context, opts backup.CreateOptions) (*backup.Result, error) {
	if m.createFunc == nil {
		return nil, errNotWired
	}
	return m.createFunc(ctx, opts)
}

func (m *mockBackupManager) ListBackups(opts backup.ListOptions) ([]*backup.Metadata, error) {
	if m.listFunc == nil {
		return nil, errNotWired
	}
	return m.listFunc(opts)
}

func (m *mockBackupManager) GetBackup(id string) (*backup.Metadata, error) {
	if m.getFunc == nil {
		return nil, errNotWired
	}
	return m.getFunc(id)
}

func (m *mockBackupManager) DeleteBackup(id string) error {
	if m.deleteFunc == nil {
		return errNotWired
	}
	return m.deleteFunc(id)
}

func (m *mockBackupManager) GetStats() *backup.Stats {
	if m.statsFunc == nil {
		return &backup.Stats{}
	}
	return m.statsFunc()
}

func (m *mockBackupManager) ValidateBackup(id string) (*backup.ValidationResult, error) {
	if m.validateFunc == nil {
		return nil, errNotWired
	}
	return m.validateFunc(id)
}

func (m *mockBackupManager) TestRestore(id string) (*backup.TestRestoreResult, error) {
	if m.testRestoreFunc == nil {
		return nil, errNotWired
	}
	return m.testRestoreFunc(id)
}

func (m *mockBackupManager) RestoreBackup(ctx context.Context, id string) (*backup.RestoreResult, error) {
	if m.restoreFunc == nil {
		return nil, errNotWired
	}
	return m.restoreFunc(ctx, id)
}

func (m *mockBackupManager) DownloadBackup(id string) (io.ReadCloser, *backup.Metadata, error) {
	if m.downloadFunc == nil {
		return nil, nil, errNotWired
	}
	return m.downloadFunc(id)
}

func (m *mockBackupManager) ImportBackupFromReader(r io.Reader, filename string) (*backup.Metadata, error) {
	if m.importFunc == nil {
		return nil, errNotWired
	}
	return m.importFunc(r, filename)
}

func (m *mockBackupManager) CleanupExpired(ctx context.Context) (*backup.CleanupResult, error) {
	if m.cleanupFunc == nil {
		return nil, errNotWired
	}
	return m.cleanupFunc(ctx)
}

func (m *mockBackupManager) GetRetentionPreview() *backup.RetentionPreview {
	if m.previewFunc == nil {
		return &backup.RetentionPreview{}
	}
	return m.previewFunc()
}

type mockProber struct {
	pingErr error
}

func (p *mockProber) Ping(ctx context.Context) error {
	return p.pingErr
}

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Addr:              "127.0.0.1:0",
		RateLimitDisabled: true,
	}
}

// newTestRouter builds the full route tree around the mock. A nil cfg
// uses the permissive test config.
func newTestRouter(mgr BackupManager, prober ReadinessProber, cfg *config.ServerConfig) http.Handler {
	if cfg == nil {
		cfg = testServerConfig()
	}
	return NewRouter(NewHandler(mgr, prober), cfg).Setup()
}

// testEnvelope mirrors APIResponse with the data payload kept raw so
// tests can decode it into the expected concrete type.
type testEnvelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata Metadata        `json:"metadata"`
	Error    *APIError       `json:"error"`
}

func doRequest(t *testing.T, handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode envelope: %v (body: %s)", err, rec.Body.String())
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) testEnvelope {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if len(env.Data) == 0 {
		t.Fatalf("Envelope carries no data: %s", rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("Failed to decode data payload: %v", err)
	}
	return env
}

func wantErrorCode(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()
	if rec.Code != wantStatus {
		t.Fatalf("Expected status %d, got %d (body: %s)", wantStatus, rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Status != "error" {
		t.Errorf("Expected envelope status error, got %q", env.Status)
	}
	if env.Error == nil {
		t.Fatal("Expected an error payload")
	}
	if env.Error.Code != wantCode {
		t.Errorf("Expected error code %q, got %q", wantCode, env.Error.Code)
	}
}
