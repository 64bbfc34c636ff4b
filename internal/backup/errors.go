// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package backup

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound reports an unknown backup id.
	ErrNotFound = errors.New("backup not found")

	// ErrNoTables reports that table resolution produced nothing to capture.
	ErrNoTables = errors.New("no tables to back up")

	// ErrNoStore reports an operation that needs the relational store on a
	// manager constructed without one.
	ErrNoStore = errors.New("no store attached")
)

// notFound wraps ErrNotFound with the offending id.
func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// TotalFailureError reports a backup or restore in which every table
// failed. Partial failures are data, carried in the operation result; only
// the total case becomes an error.
type TotalFailureError struct {
	Op     string
	Tables []TableResult
}

// Error implements the error interface.
func (e *TotalFailureError) Error() string {
	reasons := make([]string, 0, len(e.Tables))
	for _, t := range e.Tables {
		reasons = append(reasons, fmt.Sprintf("%s: %s", t.Table, t.Err))
	}
	return fmt.Sprintf("%s failed for all %d tables: %s", e.Op, len(e.Tables), strings.Join(reasons, "; "))
}

func totalFailure(op string, tables []TableResult) error {
	return &TotalFailureError{Op: op, Tables: tables}
}
