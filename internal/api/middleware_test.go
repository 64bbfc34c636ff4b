// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tabularium/tabularium/internal/backup"
)

func emptyListManager() *mockBackupManager {
	return &mockBackupManager{
		listFunc: func(opts backup.ListOptions) ([]*backup.Metadata, error) {
			return nil, nil
		},
	}
}

func TestAuthenticateMiddleware(t *testing.T) {
	t.Parallel()

	cfg := testServerConfig()
	cfg.AuthToken = "s3cret-token"
	router := newTestRouter(emptyListManager(), nil, cfg)

	t.Run("missing token rejected", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/backups", nil)
		rec := doRequest(t, router, req)

		wantErrorCode(t, rec, http.StatusUnauthorized, ErrCodeUnauthorized)
	})

	t.Run("wrong token rejected", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/backups", nil)
		req.Header.Set("Authorization", "Bearer wrong-token")
		rec := doRequest(t, router, req)

		wantErrorCode(t, rec, http.StatusUnauthorized, ErrCodeUnauthorized)
	})

	t.Run("valid token accepted", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/backups", nil)
		req.Header.Set("Authorization", "Bearer s3cret-token")
		rec := doRequest(t, router, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d (body: %s)", rec.Code, rec.Body.String())
		}
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/backups", nil)
		req.Header.Set("Authorization", "bearer s3cret-token")
		rec := doRequest(t, router, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200 for lowercase scheme, got %d", rec.Code)
		}
	})

	t.Run("health stays open", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
		rec := doRequest(t, router, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected unauthenticated health access, got %d", rec.Code)
		}
	})
}

func TestAuthenticateDisabledWithoutToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(emptyListManager(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/backups", nil)
	rec := doRequest(t, router, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected open access with no token configured, got %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"standard", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"empty header", "", ""},
		{"scheme only", "Bearer ", ""},
		{"wrong scheme", "Basic abc123", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := bearerToken(req); got != tt.want {
				t.Errorf("bearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPISecurityHeaders(t *testing.T) {
	t.Parallel()

	router := newTestRouter(emptyListManager(), nil, nil)

	t.Run("plain request", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
		rec := doRequest(t, router, req)

		if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
			t.Errorf("Expected nosniff, got %q", got)
		}
		if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
			t.Errorf("Expected DENY, got %q", got)
		}
		if got := rec.Header().Get("Referrer-Policy"); got != "strict-origin-when-cross-origin" {
			t.Errorf("Unexpected referrer policy: %q", got)
		}
		if rec.Header().Get("Strict-Transport-Security") != "" {
			t.Error("HSTS must not be set on plain HTTP")
		}
	})

	t.Run("forwarded https", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		rec := doRequest(t, router, req)

		if rec.Header().Get("Strict-Transport-Security") == "" {
			t.Error("Expected HSTS behind an https-terminating proxy")
		}
	})
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	router := newTestRouter(emptyListManager(), nil, nil)

	t.Run("generated when absent", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/backups", nil)
		rec := doRequest(t, router, req)

		requestID := rec.Header().Get("X-Request-ID")
		if requestID == "" {
			t.Fatal("Expected a generated X-Request-ID header")
		}

		env := decodeEnvelope(t, rec)
		if env.Metadata.RequestID != requestID {
			t.Errorf("Envelope request ID %q does not match header %q", env.Metadata.RequestID, requestID)
		}
	})

	t.Run("preserved from upstream", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/backups", nil)
		req.Header.Set("X-Request-ID", "upstream-req-42")
		rec := doRequest(t, router, req)

		if got := rec.Header().Get("X-Request-ID"); got != "upstream-req-42" {
			t.Errorf("Expected upstream request ID echoed, got %q", got)
		}

		env := decodeEnvelope(t, rec)
		if env.Metadata.RequestID != "upstream-req-42" {
			t.Errorf("Envelope request ID not propagated: %q", env.Metadata.RequestID)
		}
	})
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	cfg := testServerConfig()
	cfg.RateLimitDisabled = false
	cfg.RateLimitReqs = 2
	cfg.RateLimitWindow = time.Minute
	router := newTestRouter(emptyListManager(), nil, cfg)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/backups", nil)
		rec := doRequest(t, router, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("Request %d should pass, got %d", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/backups", nil)
	rec := doRequest(t, router, req)
	wantErrorCode(t, rec, http.StatusTooManyRequests, ErrCodeRateLimited)
}

func TestRateLimitDisabled(t *testing.T) {
	t.Parallel()

	cfg := testServerConfig()
	cfg.RateLimitDisabled = true
	cfg.RateLimitReqs = 1
	router := newTestRouter(emptyListManager(), nil, cfg)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/backups", nil)
		rec := doRequest(t, router, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("Request %d should pass with limiting disabled, got %d", i+1, rec.Code)
		}
	}
}

func TestChiMiddlewareAdapter(t *testing.T) {
	t.Parallel()

	var sawRequest bool
	mw := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sawRequest = true
			next(w, r)
		}
	}

	handler := chiMiddleware(mw)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !sawRequest {
		t.Error("Adapted middleware did not run")
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("Inner handler status lost: %d", rec.Code)
	}
}

func TestStatusResponseWriterDefault(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	ww := &statusResponseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	if _, err := ww.Write([]byte("ok")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if ww.statusCode != http.StatusOK {
		t.Errorf("Expected default 200, got %d", ww.statusCode)
	}

	ww.WriteHeader(http.StatusAccepted)
	if ww.statusCode != http.StatusAccepted {
		t.Errorf("Expected captured 202, got %d", ww.statusCode)
	}
}
