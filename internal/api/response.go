// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
response.go - Standardized API Response Envelope

Every endpoint answers with the same wrapper: a status string, the payload
under data, response metadata, and a structured error when status is
"error". Clients never have to guess which shape they got.
*/

//nolint:staticcheck // File documentation, not package doc
package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tabularium/tabularium/internal/logging"
)

// APIResponse is the wrapper for all JSON endpoints.
type APIResponse struct {
	// Status is "success" or "error".
	Status string `json:"status"`

	// Data is the response payload, null on error.
	Data interface{} `json:"data,omitempty"`

	// Metadata describes the response itself.
	Metadata Metadata `json:"metadata"`

	// Error carries error details, null on success.
	Error *APIError `json:"error,omitempty"`
}

// Metadata is response metadata attached to every envelope.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError is a machine-readable error body.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error codes shared across endpoints. Operation-specific codes such as
// BACKUP_FAILED live next to their handlers.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeValidationFailed   = "VALIDATION_ERROR"
	ErrCodeInvalidSnapshot    = "INVALID_SNAPSHOT"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// respondJSON writes an envelope with proper headers. The request supplies
// the tracing ID for the metadata block.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *APIResponse) {
	response.Metadata.Timestamp = time.Now().UTC()
	if response.Metadata.RequestID == "" {
		response.Metadata.RequestID = logging.RequestIDFromContext(r.Context())
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// respondSuccess writes a success envelope around data.
func respondSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	respondJSON(w, r, status, &APIResponse{
		Status: "success",
		Data:   data,
	})
}

// respondError writes an error envelope. A non-nil err is logged with the
// code; the message alone goes to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Err(err).
			Str("code", code).
			Str("path", r.URL.Path).
			Str("request_id", logging.RequestIDFromContext(r.Context())).
			Msg("API error")
	}

	respondJSON(w, r, status, &APIResponse{
		Status: "error",
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondValidationError writes a 400 with field-level details.
func respondValidationError(w http.ResponseWriter, r *http.Request, code, message string, details interface{}) {
	respondJSON(w, r, http.StatusBadRequest, &APIResponse{
		Status: "error",
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
