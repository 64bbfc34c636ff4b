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
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tabularium/tabularium/internal/config"
)

// sqliteTablesQuery enumerates user tables from the sqlite_master catalog.
// Internal sqlite_* bookkeeping tables are never part of a backup.
const sqliteTablesQuery = `SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name`

// openSQLite opens a SQLite database file via the CGo-free modernc driver.
func openSQLite(cfg *config.StoreConfig) (Store, error) {
	if !strings.HasPrefix(cfg.Path, ":memory:") && !strings.Contains(cfg.Path, "mode=memory") {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	conn, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers anyway, and an in-memory database exists
	// per connection. A single pooled connection keeps both paths correct.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := conn.PingContext(pingCtx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &sqlStore{
		db:           conn,
		driver:       config.StoreDriverSQLite,
		tablesQuery:  sqliteTablesQuery,
		queryTimeout: cfg.QueryTimeout,
	}, nil
}
