// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package authz

import (
	"net/http"

	"github.com/tomtom215/shelfwise/internal/auth"
)

// Middleware guards routes whose decision does not depend on a loaded
// record: creates, collection reads and dashboards. Owner-scoped checks run
// inside handlers once the record is loaded.
type Middleware struct {
	decider   *Decider
	respond   auth.ErrorResponder
	challenge string
}

// NewMiddleware creates a new authorization middleware. respond defaults to
// http.Error. challenge is the WWW-Authenticate value sent with 401
// responses; it should match the authentication middleware's.
func NewMiddleware(decider *Decider, respond auth.ErrorResponder, challenge string) *Middleware {
	if respond == nil {
		respond = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{decider: decider, respond: respond, challenge: challenge}
}

// Require rejects the request unless the principal may perform action on
// kind.
func (m *Middleware) Require(kind string, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := auth.PrincipalFromContext(r.Context())
			decision := m.decider.Decide(r.Context(), principal, action, Kind(kind))
			if !decision.Allowed() {
				m.Deny(w, r, decision)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireForMethod guards a resource route with the action implied by the
// HTTP method.
func (m *Middleware) RequireForMethod(kind string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := auth.PrincipalFromContext(r.Context())
			decision := m.decider.Decide(r.Context(), principal, methodToAction(r.Method), Kind(kind))
			if !decision.Allowed() {
				m.Deny(w, r, decision)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Deny writes the error response for a non-Allow decision.
func (m *Middleware) Deny(w http.ResponseWriter, r *http.Request, d Decision) {
	switch d {
	case DenyUnauthenticated:
		if m.challenge != "" {
			w.Header().Set("WWW-Authenticate", m.challenge)
		}
		m.respond(w, r, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Authentication credentials were not provided.")
	default:
		m.respond(w, r, http.StatusForbidden, "PERMISSION_DENIED", "You do not have permission to perform this action.")
	}
}

// methodToAction maps HTTP methods to policy actions.
func methodToAction(method string) Action {
	switch method {
	case http.MethodPost:
		return ActionCreate
	case http.MethodPut, http.MethodPatch:
		return ActionUpdate
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionRead
	}
}
