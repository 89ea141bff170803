// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/tomtom215/shelfwise/internal/auth"
	"github.com/tomtom215/shelfwise/internal/authz"
	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/middleware"
	"github.com/tomtom215/shelfwise/internal/validation"
)

// feedSize is the number of posts and comments on the home feed.
const feedSize = 5

// AuthChallenge is the WWW-Authenticate value sent with every 401.
const AuthChallenge = `Token realm="api"`

// HandlerDeps holds everything the handlers need. All fields except Audit,
// PerfMon and Challenge are required. Challenge defaults to AuthChallenge.
type HandlerDeps struct {
	DB        *database.DB
	Validator *validation.Registry
	Decider   *authz.Decider
	Verifier  *auth.CredentialVerifier
	Tokens    *auth.TokenManager
	JWT       *auth.JWTManager
	Config    *config.Config
	Audit     *logging.AuditLogger
	PerfMon   *middleware.PerformanceMonitor
	Challenge string
}

// Handler contains dependencies for API handlers
type Handler struct {
	db        *database.DB
	validator *validation.Registry
	decider   *authz.Decider
	guard     *authz.Middleware
	verifier  *auth.CredentialVerifier
	tokens    *auth.TokenManager
	jwt       *auth.JWTManager
	config    *config.Config
	audit     *logging.AuditLogger
	perfMon   *middleware.PerformanceMonitor
	startTime time.Time
}

// NewHandler creates a new API handler.
//
// Example:
//
//	handler, err := api.NewHandler(api.HandlerDeps{DB: db, Validator: registry, ...})
//	router := api.NewRouter(handler, authMiddleware, api.NewChiMiddlewareFromConfig(&cfg.Security))
//	http.ListenAndServe(cfg.Server.Addr(), router.SetupChi())
func NewHandler(deps HandlerDeps) (*Handler, error) {
	switch {
	case deps.DB == nil:
		return nil, errors.New("database is required")
	case deps.Validator == nil:
		return nil, errors.New("validator registry is required")
	case deps.Decider == nil:
		return nil, errors.New("decider is required")
	case deps.Verifier == nil || deps.Tokens == nil || deps.JWT == nil:
		return nil, errors.New("credential verifier, token manager and JWT manager are required")
	case deps.Config == nil:
		return nil, errors.New("config is required")
	}

	audit := deps.Audit
	if audit == nil {
		audit = logging.NewAuditLogger()
	}
	perfMon := deps.PerfMon
	if perfMon == nil {
		perfMon = middleware.NewPerformanceMonitor(1000, middleware.DefaultSlowThreshold)
	}
	challenge := deps.Challenge
	if challenge == "" {
		challenge = AuthChallenge
	}

	return &Handler{
		db:        deps.DB,
		validator: deps.Validator,
		decider:   deps.Decider,
		guard:     authz.NewMiddleware(deps.Decider, WriteAuthError, challenge),
		verifier:  deps.Verifier,
		tokens:    deps.Tokens,
		jwt:       deps.JWT,
		config:    deps.Config,
		audit:     audit,
		perfMon:   perfMon,
		startTime: time.Now(),
	}, nil
}

// Guard returns the route-level authorization middleware.
func (h *Handler) Guard() *authz.Middleware {
	return h.guard
}

// PerfMon returns the performance monitor fed by the router.
func (h *Handler) PerfMon() *middleware.PerformanceMonitor {
	return h.perfMon
}

// authorize decides action on res for the request principal and writes the
// 401/403 response when it is not allowed.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, action authz.Action, res authz.Resource) bool {
	decision := h.decider.Decide(r.Context(), auth.PrincipalFromContext(r.Context()), action, res)
	if decision.Allowed() {
		return true
	}
	h.guard.Deny(w, r, decision)
	return false
}

// authenticateFirst runs the record-independent half of an owner-aware
// decision. Only DenyUnauthenticated stops the request here; ownership is
// decided by authorize once the record is loaded.
func (h *Handler) authenticateFirst(w http.ResponseWriter, r *http.Request, action authz.Action, kind string) bool {
	decision := h.decider.Decide(r.Context(), auth.PrincipalFromContext(r.Context()), action, authz.Kind(kind))
	if decision == authz.DenyUnauthenticated {
		h.guard.Deny(w, r, decision)
		return false
	}
	return true
}

// validate runs the registry for kind and appends its messages to fe.
// A field already reported as missing gets no further messages, and a
// message already present is not repeated. It reports false after writing
// a 500 when a rule could not run.
func (h *Handler) validate(w http.ResponseWriter, r *http.Request, kind validation.Kind, record any, fe validation.FieldErrors) bool {
	found, err := h.validator.Validate(r.Context(), kind, record)
	for field, msgs := range found {
		if slices.Contains(fe[field], validation.MsgRequired) {
			continue
		}
		for _, msg := range msgs {
			if !slices.Contains(fe[field], msg) {
				fe.Add(field, msg)
			}
		}
	}
	if err != nil {
		NewResponseWriter(w, r).InternalError(err)
		return false
	}
	return true
}
