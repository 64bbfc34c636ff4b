// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package api

import (
	"errors"
	"net/http"

	"github.com/tabularium/tabularium/internal/backup"
	"github.com/tabularium/tabularium/internal/snapshot"
)

// respondOperationError maps engine errors onto HTTP status codes. The
// fallback code names the operation that failed, matching the catalog
// error taxonomy:
//
//	ErrNotFound           404  unknown backup id
//	ErrNoStore            503  manager running without a store
//	ErrNoTables           400  nothing resolved to back up
//	*snapshot.DecodeError 422  structurally invalid snapshot
//	everything else       500  under the operation's own code
func respondOperationError(w http.ResponseWriter, r *http.Request, code string, err error) {
	var decodeErr *snapshot.DecodeError
	switch {
	case errors.Is(err, backup.ErrNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, backup.ErrNoStore):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, err.Error(), err)
	case errors.Is(err, backup.ErrNoTables):
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
	case errors.As(err, &decodeErr):
		respondError(w, r, http.StatusUnprocessableEntity, ErrCodeInvalidSnapshot, err.Error(), err)
	default:
		respondError(w, r, http.StatusInternalServerError, code, err.Error(), err)
	}
}
