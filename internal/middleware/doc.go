// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package middleware provides the HTTP infrastructure middleware of the API.

Key Components:

  - RequestID: UUID request IDs in the X-Request-ID header and logging context
  - AccessLog: one zerolog line per request, levelled by status class
  - PrometheusMetrics: request count, latency and in-flight gauge keyed by
    chi route pattern
  - PerformanceMonitor: sliding window of recent requests with per-endpoint
    percentiles, shown on the admin dashboard

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perf.Middleware)

Authentication and authorization live in internal/auth and internal/authz.
*/
package middleware
