// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/shelfwise/internal/logging"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// healthCheckTimeout bounds the database ping.
const healthCheckTimeout = 2 * time.Second

// HealthStatus is the payload of /health.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseDriver    string  `json:"database_driver"`
	DatabaseConnected bool    `json:"database_connected"`
	TokenBackend      string  `json:"token_backend"`
	Uptime            float64 `json:"uptime_seconds"`
}

func (h *Handler) uptime() time.Duration {
	return time.Since(h.startTime)
}

// Health godoc
// @Summary Health check
// @Description Reports database connectivity. Answers 503 when the database cannot be reached.
// @Tags Core
// @Produce json
// @Success 200 {object} HealthStatus
// @Failure 503 {object} HealthStatus
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := &HealthStatus{
		Status:            "healthy",
		Version:           Version,
		DatabaseDriver:    h.config.Database.Driver,
		DatabaseConnected: true,
		TokenBackend:      h.config.Tokens.Backend,
		Uptime:            h.uptime().Seconds(),
	}

	code := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		logging.CtxErr(r.Context(), err).Msg("Health check: database ping failed")
		status.Status = "degraded"
		status.DatabaseConnected = false
		code = http.StatusServiceUnavailable
	}
	NewResponseWriter(w, r).writeJSON(code, status)
}
