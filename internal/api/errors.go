// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/validation"
)

var (
	// errInvalidJSON is returned by decodeJSON for bodies that do not parse.
	errInvalidJSON = errors.New("request body is not valid JSON")

	// errBodyTooLarge is returned by decodeJSON when the body exceeds maxBodyBytes.
	errBodyTooLarge = errors.New("request body too large")
)

// notFoundMsg is the detail text DRF returns for unknown ids.
const notFoundMsg = "No %s matches the given query."

func notFound(kind string) string {
	return fmt.Sprintf(notFoundMsg, kind)
}

// invalidPKMsg reports a foreign id that does not resolve.
func invalidPKMsg(id int64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

// respondStoreError maps a store error onto the response. kind names the
// record for the 404 text.
func respondStoreError(rw *ResponseWriter, err error, kind string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		rw.NotFound(notFound(kind))
	case errors.Is(err, database.ErrDuplicate):
		rw.Error(http.StatusBadRequest, ErrCodeValidationFailed, fmt.Sprintf("A %s with these values already exists.", kind))
	default:
		rw.InternalError(err)
	}
}

// respondDecodeError answers a body that could not be decoded.
func respondDecodeError(rw *ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		rw.Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large")
		return
	}
	rw.Error(http.StatusBadRequest, ErrCodeInvalidJSON, "Request body is not valid JSON")
}

// requireFields adds a required error for each missing field.
func requireFields(fe validation.FieldErrors, missing []string) {
	for _, field := range missing {
		fe.Add(field, validation.MsgRequired)
	}
}
