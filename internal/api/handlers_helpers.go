// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/shelfwise/internal/validation"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// decodeJSON reads the request body into v. An empty body decodes to the
// zero value so that required-field checks report what is missing.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return fmt.Errorf("%w: %w", errInvalidJSON, err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %w", errInvalidJSON, err)
	}
	return nil
}

// decodeAndCheck decodes the body and runs the struct tags through the
// shared validator. It writes the error response and returns false when
// either step fails.
func decodeAndCheck(w http.ResponseWriter, r *http.Request, v interface{}) (validation.FieldErrors, bool) {
	rw := NewResponseWriter(w, r)
	if err := decodeJSON(w, r, v); err != nil {
		respondDecodeError(rw, err)
		return nil, false
	}
	fe := validation.FieldErrors{}
	if verr := validation.ValidateStruct(v); verr != nil {
		fe.Merge(verr.FieldErrors())
	}
	return fe, true
}

// idParam parses a positive integer path parameter.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, key string, fe validation.FieldErrors) *int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fe.Add(key, "Enter a whole number.")
		return nil
	}
	return &n
}

// queryID parses an optional positive id query parameter.
func queryID(r *http.Request, key string, fe validation.FieldErrors) *int64 {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		fe.Add(key, "Select a valid choice. That choice is not one of the available choices.")
		return nil
	}
	return &id
}

// isFullUpdate reports whether the request replaces every writable field.
func isFullUpdate(r *http.Request) bool {
	return r.Method == http.MethodPut
}
