// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
handlers_health.go - Liveness and Readiness Endpoints

Liveness reports that the process is up. Readiness additionally pings the
backing database, so orchestrators stop routing to an instance whose
store has gone away.
*/

//nolint:staticcheck // File documentation, not package doc
package api

import (
	"net/http"
	"time"
)

// HealthLive handles GET /api/v1/health/live.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"alive":          true,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}

// HealthReady handles GET /api/v1/health/ready.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.prober != nil {
		if err := h.prober.Ping(r.Context()); err != nil {
			respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Database unreachable", err)
			return
		}
	}

	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"ready":          true,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}
