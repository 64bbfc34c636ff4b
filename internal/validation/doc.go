// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with custom validators and user-friendly error
// messages. It integrates with the application's API error format for consistent
// error responses.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Custom tablename validator for table filter fields
//   - Comprehensive error translation to human-readable messages
//   - APIError conversion matching the application's error format
//   - Future v11 compatibility with WithRequiredStructEnabled
//
// # Quick Start
//
//	type CreateBackupRequest struct {
//	    IncludeTables []string `validate:"omitempty,max=256,dive,tablename"`
//	    Notes         string   `validate:"omitempty,max=500"`
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    var req CreateBackupRequest
//	    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
//	        // handle decode error
//	    }
//
//	    if verr := validation.ValidateStruct(&req); verr != nil {
//	        apiErr := verr.ToAPIError()
//	        respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	        return
//	    }
//
//	    // proceed with valid request
//	}
//
// # Common Validation Tags
//
// String validations:
//   - required: Field must not be empty
//   - min=n: Minimum length n characters
//   - max=n: Maximum length n characters
//   - uuid4: Valid backup identifier
//   - url: Valid URL format
//
// Numeric validations:
//   - gte=n: Greater than or equal to n
//   - lte=n: Less than or equal to n
//   - gt=n: Greater than n
//   - lt=n: Less than n
//
// Enum validations:
//   - oneof=a b c: Must be one of the specified values
//
// Custom validations:
//   - tablename: Unquoted SQL identifier (letter or underscore, then
//     letters, digits, underscores; at most 128 characters)
//
// # Error Types
//
// ValidationError represents a single field validation failure:
//
//	type ValidationError struct {
//	    Field()   string      // Struct field name
//	    Tag()     string      // Validation tag that failed
//	    Param()   string      // Tag parameter (e.g., "100" for max=100)
//	    Value()   interface{} // Actual value that failed
//	    Error()   string      // Human-readable message
//	}
//
// RequestValidationError aggregates multiple field errors:
//
//	type RequestValidationError struct {
//	    Errors() []ValidationError
//	    Error()  string           // Combined message
//	    ToAPIError() *APIError    // Convert to API error format
//	}
//
// # API Error Integration
//
// The ToAPIError method produces errors matching the application format:
//
//	// Single field error
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "Notes must be at most 500 characters",
//	    "details": {"field": "Notes", "tag": "max", "value": "..."}
//	}
//
//	// Multiple field errors
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "Notes: must be at most 500 characters; Path: required",
//	    "details": {
//	        "fields": [
//	            {"field": "Notes", "tag": "max", "message": "..."},
//	            {"field": "Path", "tag": "required", "message": "..."}
//	        ]
//	    }
//	}
//
// # Error Message Translation
//
// Human-readable messages are generated for common validation tags:
//
//	required   -> "Path is required"
//	uuid4      -> "ID must be a valid backup ID"
//	tablename  -> "Tables must be a valid table name"
//	min=3      -> "Notes must be at least 3 characters"
//	max=500    -> "Notes must be at most 500 characters"
//	gte=0      -> "RetentionDays must be greater than or equal to 0"
//	lte=3650   -> "RetentionDays must be less than or equal to 3650"
//	oneof=a b  -> "Encoding must be one of: a b"
//
// # Struct Tag Examples
//
// API request validation:
//
//	type ListBackupsRequest struct {
//	    Trigger string `validate:"omitempty,oneof=manual scheduled imported"`
//	    Limit   int    `validate:"min=0,max=10000"`
//	    Offset  int    `validate:"min=0"`
//	}
//
// # Thread Safety
//
// The singleton validator is initialized once and safe for concurrent use:
//
//	validate := validation.GetValidator()  // Thread-safe
//	err := validation.ValidateStruct(&req) // Thread-safe
//
// # Performance
//
// The validator caches struct reflection information:
//   - First validation of a struct type: ~1ms (reflection + caching)
//   - Subsequent validations: ~10us (cached)
//   - Memory: ~500 bytes per cached struct type
//
// # See Also
//
//   - internal/api: Request handlers using validation
//   - github.com/go-playground/validator/v10: Underlying library
package validation
