// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package snapshot

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DecodeError describes why a snapshot document failed to decode. Table and
// Column narrow the failure to the offending cell when known.
type DecodeError struct {
	Table  string
	Column string
	Msg    string
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("invalid snapshot")
	if e.Table != "" {
		b.WriteString(`: table "` + e.Table + `"`)
		if e.Column != "" {
			b.WriteString(`, column "` + e.Column + `"`)
		}
	}
	if e.Msg != "" {
		b.WriteString(": " + e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *DecodeError) Unwrap() error { return e.Err }

// Header is the shallow view Peek returns: identity and table names only.
// Timestamp is the raw text from the document, unparsed, since foreign
// snapshots may carry forms the full decoder rejects.
type Header struct {
	ID        string
	Timestamp string
	Tables    []string
}

// decodeDocument walks the full document with a token stream so table and
// column order survive (map-based unmarshaling would shuffle both).
func decodeDocument(r io.Reader) (*Snapshot, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectObjectOpen(dec); err != nil {
		return nil, err
	}

	snap := New("", time.Time{})
	sawTables := false
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		switch key {
		case "id":
			s, err := readStringValue(dec, "id")
			if err != nil {
				return nil, err
			}
			snap.ID = s
		case "timestamp":
			s, err := readStringValue(dec, "timestamp")
			if err != nil {
				return nil, err
			}
			ts, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, &DecodeError{Msg: "bad timestamp " + strconv.Quote(s), Err: err}
			}
			snap.Timestamp = ts
		case "tables":
			sawTables = true
			if err := decodeTables(dec, snap); err != nil {
				return nil, err
			}
		default:
			if err := skipValue(dec); err != nil {
				return nil, err
			}
		}
	}
	if err := finishDocument(dec); err != nil {
		return nil, err
	}
	if !sawTables {
		return nil, &DecodeError{Msg: "missing tables object"}
	}
	return snap, nil
}

// peekDocument reads identity and table names, skipping row contents
// entirely.
func peekDocument(r io.Reader) (*Header, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectObjectOpen(dec); err != nil {
		return nil, err
	}

	hdr := &Header{}
	sawTables := false
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		switch key {
		case "id":
			s, err := readStringValue(dec, "id")
			if err != nil {
				return nil, err
			}
			hdr.ID = s
		case "timestamp":
			s, err := readScalarText(dec, "timestamp")
			if err != nil {
				return nil, err
			}
			hdr.Timestamp = s
		case "tables":
			sawTables = true
			names, err := peekTableNames(dec)
			if err != nil {
				return nil, err
			}
			hdr.Tables = names
		default:
			if err := skipValue(dec); err != nil {
				return nil, err
			}
		}
	}
	if err := finishDocument(dec); err != nil {
		return nil, err
	}
	if !sawTables {
		return nil, &DecodeError{Msg: "missing tables object"}
	}
	return hdr, nil
}

func decodeTables(dec *json.Decoder, snap *Snapshot) error {
	tok, err := dec.Token()
	if err != nil {
		return malformed(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return &DecodeError{Msg: "tables must be an object"}
	}
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return err
		}
		if _, exists := snap.Rows(name); exists {
			return &DecodeError{Table: name, Msg: "duplicate table"}
		}
		rows, err := decodeRows(dec, name)
		if err != nil {
			return err
		}
		snap.AddTable(name, rows)
	}
	if _, err := dec.Token(); err != nil {
		return malformed(err)
	}
	return nil
}

func decodeRows(dec *json.Decoder, table string) ([]Row, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, malformed(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, &DecodeError{Table: table, Msg: "rows must be an array"}
	}
	rows := []Row{}
	for dec.More() {
		row, err := decodeRow(dec, table)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if _, err := dec.Token(); err != nil {
		return nil, malformed(err)
	}
	return rows, nil
}

func decodeRow(dec *json.Decoder, table string) (Row, error) {
	var row Row
	tok, err := dec.Token()
	if err != nil {
		return row, malformed(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return row, &DecodeError{Table: table, Msg: "row must be an object"}
	}
	for dec.More() {
		col, err := readKey(dec)
		if err != nil {
			return row, err
		}
		if row.Has(col) {
			return row, &DecodeError{Table: table, Column: col, Msg: "duplicate column"}
		}
		vtok, err := dec.Token()
		if err != nil {
			return row, malformed(err)
		}
		switch v := vtok.(type) {
		case nil:
			row.Set(col, Null())
		case bool:
			row.Set(col, Bool(v))
		case json.Number:
			row.Set(col, Number(v))
		case string:
			row.Set(col, textOrTimestamp(v))
		case json.Delim:
			return row, &DecodeError{Table: table, Column: col, Msg: "unsupported value kind (rows hold scalars only)"}
		default:
			return row, &DecodeError{Table: table, Column: col, Msg: "unsupported value kind"}
		}
	}
	if _, err := dec.Token(); err != nil {
		return row, malformed(err)
	}
	return row, nil
}

// peekTableNames collects the keys of the tables object and skips every
// value unexamined.
func peekTableNames(dec *json.Decoder) ([]string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, malformed(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, &DecodeError{Msg: "tables must be an object"}
	}
	names := []string{}
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if err := skipValue(dec); err != nil {
			return nil, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, malformed(err)
	}
	return names, nil
}

func expectObjectOpen(dec *json.Decoder) error {
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return &DecodeError{Msg: "empty document"}
	}
	if err != nil {
		return malformed(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return &DecodeError{Msg: "document root is not an object"}
	}
	return nil
}

// finishDocument consumes the closing brace and rejects trailing content.
func finishDocument(dec *json.Decoder) error {
	if _, err := dec.Token(); err != nil {
		return malformed(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &DecodeError{Msg: "trailing data after document"}
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", malformed(err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", &DecodeError{Msg: "object key is not a string"}
	}
	return s, nil
}

func readStringValue(dec *json.Decoder, field string) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", malformed(err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", &DecodeError{Msg: field + " must be a string"}
	}
	return s, nil
}

// readScalarText accepts any scalar and returns its text form. Peek uses it
// for fields where foreign documents are given latitude.
func readScalarText(dec *json.Decoder, field string) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", malformed(err)
	}
	switch v := tok.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	default:
		return "", &DecodeError{Msg: field + " must be a scalar"}
	}
}

// skipValue consumes one JSON value of any shape without interpreting it.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return malformed(err)
	}
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return malformed(err)
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

func malformed(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &DecodeError{Msg: "truncated document", Err: err}
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Msg: "malformed JSON", Err: err}
}
