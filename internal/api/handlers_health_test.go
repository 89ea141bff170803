// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"net/http"
	"testing"
)

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assertStatusCode(t, w, http.StatusOK)

	var status HealthStatus
	decodeBody(t, w, &status)
	if status.Status != "healthy" || !status.DatabaseConnected {
		t.Errorf("status = %+v, want healthy", status)
	}
	if status.DatabaseDriver != "duckdb" {
		t.Errorf("DatabaseDriver = %q, want duckdb", status.DatabaseDriver)
	}
	if status.TokenBackend != "database" {
		t.Errorf("TokenBackend = %q, want database", status.TokenBackend)
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	ts := newTestServer(t)
	if err := ts.db.Close(); err != nil {
		t.Fatal(err)
	}

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assertStatusCode(t, w, http.StatusServiceUnavailable)

	var status HealthStatus
	decodeBody(t, w, &status)
	if status.Status != "degraded" || status.DatabaseConnected {
		t.Errorf("status = %+v, want degraded", status)
	}
}

func TestNewHandler_RequiresDependencies(t *testing.T) {
	if _, err := NewHandler(HandlerDeps{}); err == nil {
		t.Error("NewHandler() with no dependencies should fail")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/api/v1/books/", "", nil)

	w := ts.do(t, http.MethodGet, "/metrics", "", nil)
	assertStatusCode(t, w, http.StatusOK)
}
