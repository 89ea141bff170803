// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/logging"
)

func TestRequestID_GeneratesNewID(t *testing.T) {
	var capturedID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	responseID := rec.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(responseID); err != nil {
		t.Errorf("X-Request-ID %q is not a UUID: %v", responseID, err)
	}
	if capturedID != responseID {
		t.Errorf("context ID = %q, header ID = %q", capturedID, responseID)
	}
}

func TestRequestID_PreservesUpstreamID(t *testing.T) {
	var capturedID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "proxy-abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if capturedID != "proxy-abc-123" || rec.Header().Get(RequestIDHeader) != "proxy-abc-123" {
		t.Errorf("upstream ID not preserved: ctx=%q header=%q", capturedID, rec.Header().Get(RequestIDHeader))
	}
}

func TestRequestID_RejectsOversizedID(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); len(got) > maxRequestIDLen {
		t.Errorf("oversized ID echoed back (%d bytes)", len(got))
	}
}

func newRouter(mw func(http.Handler) http.Handler, status int, delay time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/books/{id}", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.WriteHeader(status)
	})
	return r
}

func TestRoutePattern(t *testing.T) {
	var pattern string
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req)
			pattern = RoutePattern(req)
		})
	})
	r.Get("/books/{id}", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books/42", nil))
	if pattern != "/books/{id}" {
		t.Errorf("RoutePattern() = %q, want /books/{id}", pattern)
	}

	bare := httptest.NewRequest(http.MethodGet, "/books/42", nil)
	if got := RoutePattern(bare); got != "unmatched" {
		t.Errorf("RoutePattern(no chi context) = %q", got)
	}
}

func TestPrometheusMetrics_PassesThrough(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError} {
		rec := httptest.NewRecorder()
		newRouter(PrometheusMetrics, status, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books/1", nil))
		if rec.Code != status {
			t.Errorf("status = %d, want %d", rec.Code, status)
		}
	}
}

func TestAccessLog_LevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	previous, previousLevel := logging.Logger(), zerolog.GlobalLevel()
	logging.SetLogger(zerolog.New(&buf))
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		logging.SetLogger(previous)
		zerolog.SetGlobalLevel(previousLevel)
	})

	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "debug"},
		{http.StatusForbidden, "warn"},
		{http.StatusInternalServerError, "error"},
	}

	for _, tt := range tests {
		buf.Reset()
		newRouter(AccessLog, tt.status, 0).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books/9", nil))

		line := buf.String()
		if !strings.Contains(line, `"level":"`+tt.level+`"`) {
			t.Errorf("status %d logged %q, want level %s", tt.status, line, tt.level)
		}
		if !strings.Contains(line, `"route":"/books/{id}"`) {
			t.Errorf("route missing from %q", line)
		}
	}
}

func TestStatusWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := newStatusWriter(rec)

	_, _ = sw.Write([]byte("ok"))
	sw.WriteHeader(http.StatusTeapot)

	if sw.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want 200 after implicit header", sw.statusCode)
	}
}

func TestPerformanceMonitor_Stats(t *testing.T) {
	pm := NewPerformanceMonitor(10, time.Hour)

	for _, d := range []int64{10, 20, 30, 40} {
		pm.RecordRequest(&RequestMetrics{Route: "/books", Method: "GET", DurationMS: d, StatusCode: 200})
	}
	pm.RecordRequest(&RequestMetrics{Route: "/books", Method: "POST", DurationMS: 5, StatusCode: 500})

	stats := pm.GetStats()
	if len(stats) != 2 {
		t.Fatalf("len(stats) = %d, want 2", len(stats))
	}

	get := stats[0]
	if get.Endpoint != "GET /books" || get.RequestCount != 4 {
		t.Errorf("busiest = %+v", get)
	}
	if get.AvgDuration != 25 || get.P50Duration != 20 || get.MaxDuration != 40 {
		t.Errorf("durations = %+v", get)
	}
	if stats[1].ErrorCount != 1 {
		t.Errorf("POST error count = %d, want 1", stats[1].ErrorCount)
	}
}

func TestPerformanceMonitor_Window(t *testing.T) {
	pm := NewPerformanceMonitor(3, 0)

	for i := int64(1); i <= 5; i++ {
		pm.RecordRequest(&RequestMetrics{Route: "/feed", Method: "GET", DurationMS: i})
	}

	recent := pm.GetRecentMetrics(10)
	if len(recent) != 3 || recent[0].DurationMS != 3 || recent[2].DurationMS != 5 {
		t.Errorf("window = %+v", recent)
	}
	if pm.slowThreshold != DefaultSlowThreshold {
		t.Errorf("slowThreshold = %v", pm.slowThreshold)
	}
}

func TestPerformanceMonitor_Middleware(t *testing.T) {
	pm := NewPerformanceMonitor(10, time.Nanosecond)

	rec := httptest.NewRecorder()
	newRouter(pm.Middleware, http.StatusCreated, time.Millisecond).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books/3", nil))

	recent := pm.GetRecentMetrics(1)
	if len(recent) != 1 {
		t.Fatal("request not recorded")
	}
	if recent[0].Route != "/books/{id}" || recent[0].StatusCode != http.StatusCreated {
		t.Errorf("recorded = %+v", recent[0])
	}
}

func TestPercentile(t *testing.T) {
	if percentile(nil, 0.5) != 0 {
		t.Error("percentile(nil) != 0")
	}
	sorted := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := percentile(sorted, 0.95); got != 9 {
		t.Errorf("p95 = %d, want 9", got)
	}
}
