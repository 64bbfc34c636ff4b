// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

// Package store is the engine's view of a relational store. The backup and
// restore paths need exactly four primitives (enumerate base tables, read
// all rows of a table, delete all rows of a table, insert one row) plus
// lifecycle. No transactions and no foreign-key-aware ordering are assumed.
//
// Two adapters ship: DuckDB (github.com/duckdb/duckdb-go/v2) and SQLite
// (modernc.org/sqlite). Both run through database/sql with shared row
// machinery; only the connection string and the table enumeration query
// differ.
package store

import (
	"context"
	"fmt"

	"github.com/tabularium/tabularium/internal/config"
	"github.com/tabularium/tabularium/internal/snapshot"
)

// Store is the set of primitives the engine requires from a relational
// store.
type Store interface {
	// Tables lists the base table names of the active schema.
	Tables(ctx context.Context) ([]string, error)

	// ReadTable reads every row of the named table in scan order.
	ReadTable(ctx context.Context, name string) ([]snapshot.Row, error)

	// ClearTable deletes every row of the named table.
	ClearTable(ctx context.Context, name string) error

	// InsertRow inserts one row using the row's own column list.
	InsertRow(ctx context.Context, name string, row snapshot.Row) error

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close() error
}

// Open connects the adapter selected by cfg.Driver.
func Open(cfg *config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.StoreDriverDuckDB:
		return openDuckDB(cfg)
	case config.StoreDriverSQLite:
		return openSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
