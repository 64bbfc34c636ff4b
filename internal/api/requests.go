// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

// Request bodies and query parameters with go-playground/validator tags.
// Validation runs before any engine call so malformed requests never reach
// the backup manager.

package api

import (
	"net/http"
	"strconv"

	"github.com/tabularium/tabularium/internal/validation"
)

// CreateBackupRequest is the request body for POST /backups.
//
// Fields:
//   - IncludeTables: exact table set to capture (optional, identifiers only)
//   - ExcludeTables: tables to subtract from the resolved set (optional)
//   - Notes: free operator text (max 500 characters)
type CreateBackupRequest struct {
	IncludeTables []string `json:"include_tables" validate:"omitempty,max=256,dive,tablename"`
	ExcludeTables []string `json:"exclude_tables" validate:"omitempty,max=256,dive,tablename"`
	Notes         string   `json:"notes" validate:"omitempty,max=500"`
}

// ListBackupsRequest is the validated query parameters for GET /backups.
//
// Fields:
//   - Trigger: filter by what initiated the backup
//   - Limit: page size (0 means unlimited)
//   - Offset: records to skip
type ListBackupsRequest struct {
	Trigger string `validate:"omitempty,oneof=manual scheduled imported"`
	Limit   int    `validate:"min=0,max=10000"`
	Offset  int    `validate:"min=0"`
}

// CleanupRequest is the request body for POST /backups/cleanup.
type CleanupRequest struct {
	DryRun bool `json:"dry_run"`
}

// validateRequest validates a struct and converts failures to the envelope
// error format. Returns nil when validation passes.
func validateRequest(v interface{}) *APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getBoolParam extracts a boolean query parameter. Missing or unparseable
// values fall back to the default.
func getBoolParam(r *http.Request, key string, defaultValue bool) bool {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}
