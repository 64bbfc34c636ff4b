// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/tabularium/tabularium/internal/metrics"
	"github.com/tabularium/tabularium/internal/snapshot"
)

// sqlStore implements Store over database/sql. The adapters differ only in
// the open path and the table enumeration query.
type sqlStore struct {
	db           *sql.DB
	driver       string
	tablesQuery  string
	queryTimeout time.Duration
}

// ensureContext caps a deadline-less context with the configured query
// timeout. A zero timeout leaves the context unbounded; full-table reads
// of large tables are normal here.
func (s *sqlStore) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, s.queryTimeout)
	}
	return ctx, func() {}
}

func (s *sqlStore) Tables(ctx context.Context) (names []string, err error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordStoreQuery("tables", "", time.Since(start), err) }()

	rows, err := s.db.QueryContext(ctx, s.tablesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return names, nil
}

func (s *sqlStore) ReadTable(ctx context.Context, name string) (out []snapshot.Row, err error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordStoreQuery("read_table", name, time.Since(start), err) }()

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(name)) //nolint:gosec // G202: identifier is quote-escaped
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", name, err)
	}
	defer closeQuietly(rows)

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
	}

	out = []snapshot.Row{}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", name, err)
		}
		var row snapshot.Row
		for i, col := range cols {
			v, err := convertColumn(values[i])
			if err != nil {
				return nil, fmt.Errorf("failed to capture %s.%s: %w", name, col, err)
			}
			row.Set(col, v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", name, err)
	}
	return out, nil
}

func (s *sqlStore) ClearTable(ctx context.Context, name string) error {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := s.db.ExecContext(ctx, "DELETE FROM "+quoteIdent(name)) //nolint:gosec // G202: identifier is quote-escaped
	metrics.RecordStoreQuery("clear_table", name, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to clear table %s: %w", name, err)
	}
	return nil
}

func (s *sqlStore) InsertRow(ctx context.Context, name string, row snapshot.Row) error {
	cols := row.Columns()
	if len(cols) == 0 {
		return fmt.Errorf("failed to insert into %s: row has no columns", name)
	}

	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	args := make([]any, len(cols))
	for i, col := range cols {
		v, _ := row.Get(col)
		args[i] = v.Native()
	}
	start := time.Now()
	_, err := s.db.ExecContext(ctx, buildInsert(name, cols), args...)
	metrics.RecordStoreQuery("insert_row", name, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", name, err)
	}
	return nil
}

func (s *sqlStore) Ping(ctx context.Context) error {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()
	err := s.db.PingContext(ctx)
	metrics.StoreConnectionPoolSize.Set(float64(s.db.Stats().InUse))
	return err
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

// buildInsert renders INSERT INTO "t" ("a","b") VALUES (?,?).
func buildInsert(table string, cols []string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quoteIdent(table))
	b.WriteString(" (")
	for i, col := range cols {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quoteIdent(col))
	}
	b.WriteString(") VALUES (")
	for i := range cols {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('?')
	}
	b.WriteByte(')')
	return b.String()
}

// quoteIdent double-quotes an identifier, escaping embedded quotes. Both
// supported engines accept the SQL standard form.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// convertColumn maps a driver value onto the snapshot value model. An
// unmappable value fails the read; the orchestrator then records the whole
// table as failed rather than silently altering the cell.
func convertColumn(v any) (snapshot.Value, error) {
	switch x := v.(type) {
	case nil:
		return snapshot.Null(), nil
	case bool:
		return snapshot.Bool(x), nil
	case int64:
		return snapshot.NumberInt(x), nil
	case int32:
		return snapshot.NumberInt(int64(x)), nil
	case int16:
		return snapshot.NumberInt(int64(x)), nil
	case int8:
		return snapshot.NumberInt(int64(x)), nil
	case int:
		return snapshot.NumberInt(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return snapshot.Number(json.Number(strconv.FormatUint(x, 10))), nil
		}
		return snapshot.NumberInt(int64(x)), nil
	case uint32:
		return snapshot.NumberInt(int64(x)), nil
	case uint16:
		return snapshot.NumberInt(int64(x)), nil
	case uint8:
		return snapshot.NumberInt(int64(x)), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return snapshot.Null(), fmt.Errorf("non-finite number %v has no portable form", x)
		}
		return snapshot.NumberFloat(x), nil
	case float32:
		return convertColumn(float64(x))
	case *big.Int:
		if x == nil {
			return snapshot.Null(), nil
		}
		return snapshot.Number(json.Number(x.String())), nil
	case []byte:
		if !utf8.Valid(x) {
			return snapshot.Null(), fmt.Errorf("%d-byte binary value is not valid UTF-8 and has no portable form", len(x))
		}
		return snapshot.Text(string(x)), nil
	case string:
		if !utf8.ValidString(x) {
			return snapshot.Null(), fmt.Errorf("%d-byte text value is not valid UTF-8 and has no portable form", len(x))
		}
		return snapshot.Text(x), nil
	case time.Time:
		return snapshot.Timestamp(x), nil
	default:
		return snapshot.Null(), fmt.Errorf("unsupported column type %T", v)
	}
}
