// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
middleware.go - Chi Middleware Factories

Production middleware for the admin API: CORS and rate limiting from the
chi ecosystem, request ID propagation wired into the logging context, API
security headers, optional static bearer token authentication, and a
request completion log line.

Authentication is deliberately minimal. The admin API is an operator
surface, not a multi-user product: one shared token, constant-time
comparison, nothing else.
*/

//nolint:staticcheck // File documentation, not package doc
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tabularium/tabularium/internal/config"
	"github.com/tabularium/tabularium/internal/logging"
	"github.com/tabularium/tabularium/internal/metrics"
	"github.com/tabularium/tabularium/internal/middleware"
)

// ChiMiddleware builds chi-compatible middleware from server config.
type ChiMiddleware struct {
	cfg  *config.ServerConfig
	cors func(http.Handler) http.Handler
}

// NewChiMiddleware creates the middleware factory. CORS origins default to
// "*"; the bearer token gates mutating access, and serve warns at startup
// when the API runs without one.
func NewChiMiddleware(cfg *config.ServerConfig) *ChiMiddleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         86400,
	})

	return &ChiMiddleware{cfg: cfg, cors: corsHandler}
}

// CORS returns the configured CORS middleware.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns an IP-keyed rate limiter using the configured request
// budget. A no-op middleware is returned when rate limiting is disabled.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	if m.cfg.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	reqs := m.cfg.RateLimitReqs
	if reqs <= 0 {
		reqs = 100
	}
	window := m.cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}

	return httprate.Limit(reqs, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimitExceeded),
	)
}

// RateLimitHealth returns a permissive limiter for health endpoints.
// Monitoring probes poll frequently; 1000/min allows that while still
// bounding abuse.
func (m *ChiMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	if m.cfg.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.Limit(1000, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimitExceeded),
	)
}

// rateLimitExceeded answers a throttled request with the standard envelope
// and counts the rejection.
func rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	metrics.APIRateLimitHits.WithLabelValues(middleware.NormalizeEndpoint(r.URL.Path)).Inc()
	respondError(w, r, http.StatusTooManyRequests, ErrCodeRateLimited, "Rate limit exceeded", nil)
}

// Authenticate returns a bearer token check. When no token is configured
// the API is open and the middleware passes everything through.
func (m *ChiMiddleware) Authenticate() func(http.Handler) http.Handler {
	token := m.cfg.AuthToken
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := bearerToken(r)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				logging.Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Msg("Rejected request with missing or invalid token")
				respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Missing or invalid bearer token", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}

// RequestIDWithLogging adds an X-Request-ID header and threads the ID
// through the logging context so every log line in the request's path can
// carry it.
func RequestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		chiRequestID := chimiddleware.RequestID(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = logging.GenerateRequestID()
				r.Header.Set("X-Request-ID", requestID)
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx := logging.ContextWithRequestID(r.Context(), requestID)
			ctx = logging.ContextWithNewCorrelationID(ctx)

			chiRequestID.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger logs one line per completed request with method, path,
// status and duration.
func RequestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r)

			logging.Ctx(r.Context()).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.statusCode).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("Request completed")
		})
	}
}

// APISecurityHeaders adds defensive headers to API responses.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to chi's
// func(http.Handler) http.Handler form, bridging the middleware package's
// handlers into r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// statusResponseWriter wraps http.ResponseWriter to capture the status code.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before delegating.
func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
