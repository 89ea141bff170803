// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("duckdb", "insert", "constraint"))

	RecordDBQuery("duckdb", "select", 2*time.Millisecond, nil)
	RecordDBQuery("duckdb", "insert", time.Millisecond, errors.New("Constraint Error: Duplicate key \"username: bob\""))

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("duckdb", "insert", "constraint"))
	if after != before+1 {
		t.Errorf("constraint errors = %v, want %v", after, before+1)
	}
}

func TestClassifyDBError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, "timeout"},
		{fmt.Errorf("query: %w", context.Canceled), "canceled"},
		{errors.New("UNIQUE constraint failed: tags.name"), "constraint"},
		{errors.New("sql: connection is already closed"), "connection"},
		{errors.New("Parser Error: syntax error at or near"), "syntax"},
		{errors.New("something else"), "other"},
	}
	for _, tt := range tests {
		if got := classifyDBError(tt.err); got != tt.want {
			t.Errorf("classifyDBError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestRecordAPIRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("GET", "/api/v1/books", "200")
	before := testutil.ToFloat64(counter)

	RecordAPIRequest("GET", "/api/v1/books", "200", 15*time.Millisecond)

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("api_requests_total = %v, want %v", got, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active after inc = %v", got)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active after dec = %v", got)
	}
}

func TestAuthAndTokenCounters(t *testing.T) {
	okBefore := testutil.ToFloat64(AuthAttempts.WithLabelValues("basic", "success"))
	failBefore := testutil.ToFloat64(AuthAttempts.WithLabelValues("basic", "failure"))
	RecordAuthAttempt("basic", true)
	RecordAuthAttempt("basic", false)
	if got := testutil.ToFloat64(AuthAttempts.WithLabelValues("basic", "success")); got != okBefore+1 {
		t.Errorf("success = %v", got)
	}
	if got := testutil.ToFloat64(AuthAttempts.WithLabelValues("basic", "failure")); got != failBefore+1 {
		t.Errorf("failure = %v", got)
	}

	tokBefore := testutil.ToFloat64(TokenOperations.WithLabelValues("badger", "lookup", "failure"))
	RecordTokenOperation("badger", "lookup", errors.New("not found"))
	if got := testutil.ToFloat64(TokenOperations.WithLabelValues("badger", "lookup", "failure")); got != tokBefore+1 {
		t.Errorf("token failures = %v", got)
	}
}

func TestRecordValidationFailure(t *testing.T) {
	c := ValidationFailures.WithLabelValues("book", "publication_year")
	before := testutil.ToFloat64(c)
	RecordValidationFailure("book", "publication_year")
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("validation failures = %v", got)
	}
}
