// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/shelfwise/internal/logging"
)

// AccessLog writes one structured line per request. 5xx responses log at
// error level, 4xx at warn and the rest at debug.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := newStatusWriter(w)

		next.ServeHTTP(sw, r)

		logger := logging.Ctx(r.Context())
		event := logger.Debug()
		switch {
		case sw.statusCode >= http.StatusInternalServerError:
			event = logger.Error()
		case sw.statusCode >= http.StatusBadRequest:
			event = logger.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", RoutePattern(r)).
			Int("status", sw.statusCode).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("Request completed")
	})
}
