// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
router.go - Route Registration

Builds the chi router for the admin API. Health endpoints get a
permissive rate limit and no authentication so probes keep working when
the operator token rotates. Backup endpoints carry the full middleware
stack: rate limiting, security headers, Prometheus instrumentation and
bearer authentication.

Static segments are registered before the {id} subtree; chi gives them
priority, so /backups/stats never resolves as a backup ID lookup.
*/

//nolint:staticcheck // File documentation, not package doc
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tabularium/tabularium/internal/config"
	"github.com/tabularium/tabularium/internal/middleware"
)

// Router assembles the HTTP routing tree for the admin API.
type Router struct {
	handler *Handler
	chiMW   *ChiMiddleware
}

// NewRouter creates a router for the given handler set and server config.
func NewRouter(handler *Handler, cfg *config.ServerConfig) *Router {
	return &Router{
		handler: handler,
		chiMW:   NewChiMiddleware(cfg),
	}
}

// Setup builds the complete route tree and returns it as an http.Handler.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger())
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.chiMW.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(rt.chiMW.RateLimitHealth())
		r.Use(APISecurityHeaders())

		r.Get("/live", rt.handler.HealthLive)
		r.Get("/ready", rt.handler.HealthReady)
	})

	r.Route("/api/v1/backups", func(r chi.Router) {
		r.Use(rt.chiMW.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(rt.chiMW.Authenticate())
		r.Use(chiMiddleware(middleware.Compression))

		r.Post("/", rt.handler.CreateBackup)
		r.Get("/", rt.handler.ListBackups)
		r.Get("/stats", rt.handler.GetBackupStats)
		r.Post("/import", rt.handler.ImportBackup)
		r.Post("/cleanup", rt.handler.CleanupBackups)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", rt.handler.GetBackup)
			r.Delete("/", rt.handler.DeleteBackup)
			r.Post("/restore", rt.handler.RestoreBackup)
			r.Get("/validate", rt.handler.ValidateBackup)
			r.Post("/test-restore", rt.handler.TestRestoreBackup)
			r.Get("/download", rt.handler.DownloadBackup)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
