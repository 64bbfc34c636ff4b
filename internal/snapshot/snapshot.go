// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

// Package snapshot models the self-describing on-disk capture of a
// relational store and its codec.
//
// A Snapshot holds an ordered set of tables; each table holds an ordered
// sequence of rows; each row is an ordered mapping of column name to a
// closed scalar kind (null, bool, number, text, timestamp). The document
// form is plain JSON, optionally framed in gzip or zstd, readable without
// any external schema. That trades compactness for portability between
// store engines, deliberately.
package snapshot

import (
	"bytes"
	"time"

	"github.com/goccy/go-json"
)

// Row is an ordered mapping of column name to Value. Column order is the
// capture order; JSON marshaling preserves it.
//
// The zero Row is empty and ready to use.
type Row struct {
	cols []string
	vals map[string]Value
}

// Set adds a column or replaces an existing one, keeping first-set order.
func (r *Row) Set(col string, v Value) {
	if r.vals == nil {
		r.vals = make(map[string]Value)
	}
	if _, exists := r.vals[col]; !exists {
		r.cols = append(r.cols, col)
	}
	r.vals[col] = v
}

// Get returns the value for a column and whether the column is present.
func (r Row) Get(col string) (Value, bool) {
	v, ok := r.vals[col]
	return v, ok
}

// Has reports whether the column is present.
func (r Row) Has(col string) bool {
	_, ok := r.vals[col]
	return ok
}

// Columns returns the column names in capture order.
func (r Row) Columns() []string {
	out := make([]string, len(r.cols))
	copy(out, r.cols)
	return out
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.cols) }

// Equal reports column-for-column equality, order included.
func (r Row) Equal(o Row) bool {
	if len(r.cols) != len(o.cols) {
		return false
	}
	for i, col := range r.cols {
		if o.cols[i] != col {
			return false
		}
		if !r.vals[col].Equal(o.vals[col]) {
			return false
		}
	}
	return true
}

// MarshalJSON renders the row as a JSON object in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, col); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		b, err := r.vals[col].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Table is one captured table: its name and full row contents.
type Table struct {
	Name string
	Rows []Row
}

// Snapshot is the in-memory form of one backup artifact.
type Snapshot struct {
	// ID mirrors the owning backup record's identifier.
	ID string

	// Timestamp is the capture time, written as RFC 3339 text.
	Timestamp time.Time

	tables []Table
	byName map[string]int
}

// New returns an empty snapshot.
func New(id string, ts time.Time) *Snapshot {
	return &Snapshot{
		ID:        id,
		Timestamp: ts,
		byName:    make(map[string]int),
	}
}

// AddTable appends a table, or replaces its rows when the name is already
// present (position kept).
func (s *Snapshot) AddTable(name string, rows []Row) {
	if s.byName == nil {
		s.byName = make(map[string]int)
	}
	if i, ok := s.byName[name]; ok {
		s.tables[i].Rows = rows
		return
	}
	s.byName[name] = len(s.tables)
	s.tables = append(s.tables, Table{Name: name, Rows: rows})
}

// Tables returns the captured tables in capture order.
func (s *Snapshot) Tables() []Table {
	out := make([]Table, len(s.tables))
	copy(out, s.tables)
	return out
}

// TableNames returns table names in capture order.
func (s *Snapshot) TableNames() []string {
	out := make([]string, len(s.tables))
	for i, t := range s.tables {
		out[i] = t.Name
	}
	return out
}

// Rows returns the rows of a named table and whether the table is present.
func (s *Snapshot) Rows(name string) ([]Row, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.tables[i].Rows, true
}

// TableCount returns the number of captured tables.
func (s *Snapshot) TableCount() int { return len(s.tables) }

// RowCount returns the total number of rows across every table.
func (s *Snapshot) RowCount() int {
	n := 0
	for _, t := range s.tables {
		n += len(t.Rows)
	}
	return n
}

// Equal reports full structural equality: id, timestamp instant, table
// order, and every row.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.ID != o.ID || !s.Timestamp.Equal(o.Timestamp) {
		return false
	}
	if len(s.tables) != len(o.tables) {
		return false
	}
	for i, t := range s.tables {
		ot := o.tables[i]
		if t.Name != ot.Name || len(t.Rows) != len(ot.Rows) {
			return false
		}
		for j, row := range t.Rows {
			if !row.Equal(ot.Rows[j]) {
				return false
			}
		}
	}
	return true
}

// MarshalJSON renders the snapshot document: id, timestamp, then the
// tables object in capture order.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"id":`)
	if err := writeJSONString(&buf, s.ID); err != nil {
		return nil, err
	}
	buf.WriteString(`,"timestamp":`)
	if err := writeJSONString(&buf, s.Timestamp.UTC().Format(time.RFC3339Nano)); err != nil {
		return nil, err
	}
	buf.WriteString(`,"tables":{`)
	for i, t := range s.tables {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, t.Name); err != nil {
			return nil, err
		}
		buf.WriteString(`:[`)
		for j, row := range t.Rows {
			if j > 0 {
				buf.WriteByte(',')
			}
			b, err := row.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
