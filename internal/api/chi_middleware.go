// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/metrics"
)

// ChiMiddlewareConfig holds configuration for Chi middleware factories.
type ChiMiddlewareConfig struct {
	// CORS configuration
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSExposedHeaders   []string
	CORSAllowCredentials bool
	CORSMaxAge           int // seconds

	// Rate limiting configuration
	RateLimitDisabled bool
	API               RateLimitConfig
	Auth              RateLimitConfig
}

// RateLimitConfig defines rate limit parameters for specific endpoints.
type RateLimitConfig struct {
	// Requests is the number of requests allowed in the window
	Requests int
	// Window is the time window for rate limiting
	Window time.Duration
}

// Default limits, used when the configuration leaves them at zero.
var (
	// DefaultRateLimitAPI is the default API rate limit
	DefaultRateLimitAPI = RateLimitConfig{Requests: 100, Window: time.Minute}

	// DefaultRateLimitAuth is strict limiting for the credential endpoints
	DefaultRateLimitAuth = RateLimitConfig{Requests: 5, Window: time.Minute}
)

// DefaultChiMiddlewareConfig returns a secure default configuration.
// CORS origins default to empty, requiring explicit configuration.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins:   []string{},
		CORSAllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		CORSExposedHeaders:   []string{"X-Request-ID"},
		CORSAllowCredentials: false,
		CORSMaxAge:           86400,

		API:  DefaultRateLimitAPI,
		Auth: DefaultRateLimitAuth,
	}
}

// NewChiMiddlewareFromConfig builds the middleware factory from the
// security section of the configuration.
func NewChiMiddlewareFromConfig(sec *config.SecurityConfig) *ChiMiddleware {
	cfg := DefaultChiMiddlewareConfig()
	cfg.CORSAllowedOrigins = sec.CORSOrigins
	cfg.RateLimitDisabled = sec.DisableRateLimits
	if sec.APIRateLimit > 0 && sec.APIRateWindow > 0 {
		cfg.API = RateLimitConfig{Requests: sec.APIRateLimit, Window: sec.APIRateWindow}
	}
	if sec.AuthRateLimit > 0 && sec.AuthRateWindow > 0 {
		cfg.Auth = RateLimitConfig{Requests: sec.AuthRateLimit, Window: sec.AuthRateWindow}
	}
	return NewChiMiddleware(cfg)
}

// ChiMiddleware provides Chi-compatible middleware factories.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates a new Chi middleware factory with the given configuration.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   config.CORSAllowedOrigins,
		AllowedMethods:   config.CORSAllowedMethods,
		AllowedHeaders:   config.CORSAllowedHeaders,
		ExposedHeaders:   config.CORSExposedHeaders,
		AllowCredentials: config.CORSAllowCredentials,
		MaxAge:           config.CORSMaxAge,
	})

	return &ChiMiddleware{
		config: config,
		cors:   corsHandler,
	}
}

// CORS returns a Chi-compatible CORS middleware using go-chi/cors.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimitAPI limits the data endpoints per client IP.
func (m *ChiMiddleware) RateLimitAPI() func(http.Handler) http.Handler {
	return m.rateLimit("api", m.config.API)
}

// RateLimitAuth returns a strict rate limiter for the credential endpoints.
// Prevents brute force attacks on /auth/token, /auth/login and /auth/register.
func (m *ChiMiddleware) RateLimitAuth() func(http.Handler) http.Handler {
	return m.rateLimit("auth", m.config.Auth)
}

func (m *ChiMiddleware) rateLimit(name string, limit RateLimitConfig) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled || limit.Requests <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		limit.Requests,
		limit.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RecordRateLimitHit(name)
			NewResponseWriter(w, r).Error(http.StatusTooManyRequests, ErrCodeTooManyRequests,
				"Request was throttled. Try again later.")
		}),
	)
}

// APISecurityHeaders returns a middleware that adds security headers to API responses.
//
// Headers added:
//   - X-Content-Type-Options: nosniff (prevents MIME type sniffing)
//   - X-Frame-Options: DENY (API responses are never framed)
//   - Cache-Control: no-store (responses may carry tokens or personal data)
//   - Referrer-Policy: no-referrer
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Cache-Control", "no-store")
			h.Set("Referrer-Policy", "no-referrer")
			next.ServeHTTP(w, r)
		})
	}
}
