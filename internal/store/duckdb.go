// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tabularium/tabularium/internal/config"
)

// duckdbTablesQuery enumerates base tables of the main schema. Views and
// the system catalogs are excluded; ORDER BY keeps enumeration stable
// across runs.
const duckdbTablesQuery = `SELECT table_name FROM information_schema.tables
WHERE table_schema = 'main' AND table_type = 'BASE TABLE'
ORDER BY table_name`

// openDuckDB opens a DuckDB database file and configures the connection
// pool for it.
func openDuckDB(cfg *config.StoreConfig) (Store, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure parent directory exists for database file
	// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d", cfg.Path, numThreads)
	if cfg.MaxMemory != "" {
		connStr += "&max_memory=" + cfg.MaxMemory
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Connection pool settings:
	// - max_open: NumCPU() for parallelism
	// - max_idle: 2 for connection reuse
	// - max_lifetime: 1h to prevent stale connections
	// - max_idle_time: 5m for idle connection cleanup
	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := conn.PingContext(pingCtx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &sqlStore{
		db:           conn,
		driver:       config.StoreDriverDuckDB,
		tablesQuery:  duckdbTablesQuery,
		queryTimeout: cfg.QueryTimeout,
	}, nil
}
