// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tabularium/tabularium/internal/metrics"
)

// PrometheusMetrics records request count, latency and the in-flight
// gauge for every API request.
func PrometheusMetrics(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()

		wrapper := &metricsResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next(wrapper, r)

		metrics.RecordAPIRequest(
			r.Method,
			NormalizeEndpoint(r.URL.Path),
			strconv.Itoa(wrapper.statusCode),
			time.Since(start),
		)
	}
}

// NormalizeEndpoint collapses backup IDs embedded in the path so the
// endpoint label stays low cardinality.
func NormalizeEndpoint(path string) string {
	segments := strings.Split(path, "/")
	changed := false
	for i, seg := range segments {
		if _, err := uuid.Parse(seg); err == nil {
			segments[i] = "{id}"
			changed = true
		}
	}
	if !changed {
		return path
	}
	return strings.Join(segments, "/")
}

// metricsResponseWriter wraps http.ResponseWriter to capture the status code.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before delegating.
func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
