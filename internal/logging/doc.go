// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package logging provides the process-wide zerolog logger for Shelfwise.
//
// Initialize once from main:
//
//	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
//
// then log with structured fields:
//
//	logging.Info().Str("addr", addr).Msg("listening")
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("lookup failed")
//
// Ctx adds the request_id set by the request ID middleware and the user_id
// set after authentication. AuditLogger records authentication and
// authorization events with tokens, passwords and e-mail addresses masked.
// SlogHandler bridges zerolog to log/slog for the supervisor tree.
//
// Environment variables (read by the config package):
//
//	LOG_LEVEL   trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  json, console (default: json)
//	LOG_CALLER  true, false (default: false)
package logging
