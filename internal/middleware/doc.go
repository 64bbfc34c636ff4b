// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
Package middleware provides framework-agnostic HTTP middleware in
http.HandlerFunc form.

The api package bridges these into chi with a small adapter; keeping the
middleware chi-free means it also serves any plain net/http mux.

Key Components:

  - PrometheusMetrics: request count, latency histogram and in-flight
    gauge per endpoint. Backup IDs in the path are collapsed to "{id}"
    so the endpoint label stays low cardinality.
  - Compression: gzip response encoding for clients that accept it.
    Snapshot download paths are exempt because they declare an exact
    Content-Length and may already carry compressed payloads.

Usage:

	http.HandleFunc("/api/v1/backups",
	    middleware.PrometheusMetrics(
	        middleware.Compression(handler),
	    ),
	)

Thread Safety:

All middleware is safe for concurrent use. Compression pools gzip
writers with sync.Pool; Prometheus collectors are atomic.

See Also:

  - internal/api: router wiring and authentication middleware
  - internal/metrics: Prometheus metric definitions
*/
package middleware
