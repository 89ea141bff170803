// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shelfwise_db_query_duration_seconds",
			Help:    "Duration of SQL statements in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"driver", "operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_db_query_errors_total",
			Help: "Total number of failed SQL statements",
		},
		[]string{"driver", "operation", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shelfwise_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shelfwise_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_api_rate_limit_hits_total",
			Help: "Total number of requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)

	// Authentication Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_auth_attempts_total",
			Help: "Credential checks by method and outcome",
		},
		[]string{"method", "result"}, // method: token, jwt, basic, password
	)

	TokenOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_token_operations_total",
			Help: "API token store operations",
		},
		[]string{"backend", "operation", "result"},
	)

	// Validation Metrics
	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_validation_failures_total",
			Help: "Rejected fields by entity kind",
		},
		[]string{"kind", "field"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shelfwise_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version", "db_driver"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shelfwise_app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records one SQL statement.
func RecordDBQuery(driver, operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(driver, operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(driver, operation, classifyDBError(err)).Inc()
	}
}

// classifyDBError keeps the error_type label bounded.
func classifyDBError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate"):
		return "constraint"
	case strings.Contains(msg, "connection") || strings.Contains(msg, "closed"):
		return "connection"
	case strings.Contains(msg, "syntax") || strings.Contains(msg, "parser"):
		return "syntax"
	default:
		return "other"
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a request rejected by the named limiter.
func RecordRateLimitHit(limiter string) {
	APIRateLimitHits.WithLabelValues(limiter).Inc()
}

// RecordAuthAttempt counts a credential check.
func RecordAuthAttempt(method string, success bool) {
	AuthAttempts.WithLabelValues(method, resultLabel(success)).Inc()
}

// RecordTokenOperation counts a token store call.
func RecordTokenOperation(backend, operation string, err error) {
	TokenOperations.WithLabelValues(backend, operation, resultLabel(err == nil)).Inc()
}

// RecordValidationFailure counts one rejected field.
func RecordValidationFailure(kind, field string) {
	ValidationFailures.WithLabelValues(kind, field).Inc()
}

// SetAppInfo publishes build information.
func SetAppInfo(version, goVersion, driver string) {
	AppInfo.WithLabelValues(version, goVersion, driver).Set(1)
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
