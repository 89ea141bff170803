// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package models

// APIResponse is the envelope used by write endpoints and by every error.
// Read endpoints return the plain resource instead.
//
// Example create response:
//
//	{
//	  "status": "success",
//	  "message": "Book created successfully",
//	  "data": {"id": 1, "title": "1984", "publication_year": 1949, "author": 1}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "message": "Validation failed",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "details": {"publication_year": ["Publication year 2999 cannot be in the future (current year 2026)."]}
//	  }
//	}
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError contains error details for failed requests.
type APIError struct {
	Code    string              `json:"code"`
	Details map[string][]string `json:"details,omitempty"`
}

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
