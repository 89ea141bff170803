// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package auth

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/metrics"
)

type contextKey string

// PrincipalContextKey is the context key for the resolved Principal.
const PrincipalContextKey contextKey = "principal"

// ErrorResponder writes an authentication failure. The API package supplies
// one that renders its JSON error envelope.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// MiddlewareConfig holds configuration for Middleware.
type MiddlewareConfig struct {
	// Authenticator is the credential chain, usually a MultiAuthenticator.
	Authenticator Authenticator

	// Resolver loads the principal and its current role.
	Resolver *Resolver

	// Respond writes 401/503 responses. Defaults to http.Error.
	Respond ErrorResponder

	// Challenge is the WWW-Authenticate value sent with 401 responses.
	Challenge string

	// Audit receives rejected credential checks. Optional.
	Audit *logging.AuditLogger
}

// Middleware authenticates every request and stores the resolved principal
// in the request context. Requests without credentials proceed as the
// anonymous principal; requests with bad credentials are rejected with 401
// before any handler runs.
type Middleware struct {
	authenticator Authenticator
	resolver      *Resolver
	respond       ErrorResponder
	challenge     string
	audit         *logging.AuditLogger
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(cfg *MiddlewareConfig) (*Middleware, error) {
	if cfg.Authenticator == nil {
		return nil, errors.New("authenticator is required")
	}
	if cfg.Resolver == nil {
		return nil, errors.New("resolver is required")
	}

	respond := cfg.Respond
	if respond == nil {
		respond = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}

	return &Middleware{
		authenticator: cfg.Authenticator,
		resolver:      cfg.Resolver,
		respond:       respond,
		challenge:     cfg.Challenge,
		audit:         cfg.Audit,
	}, nil
}

// Authenticate is the chi-compatible middleware.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		subject, err := m.authenticator.Authenticate(ctx, r)
		if errors.Is(err, ErrNoCredentials) {
			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, Anonymous())))
			return
		}
		if err != nil {
			m.handleAuthError(w, r, "", err)
			return
		}

		principal, err := m.resolver.Resolve(ctx, subject)
		if err != nil {
			m.handleAuthError(w, r, string(subject.AuthMethod), err)
			return
		}
		metrics.RecordAuthAttempt(string(principal.Method), true)

		ctx = WithPrincipal(ctx, principal)
		ctx = logging.ContextWithUserID(ctx, principal.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// handleAuthError sends the appropriate HTTP error response for auth errors.
func (m *Middleware) handleAuthError(w http.ResponseWriter, r *http.Request, method string, err error) {
	if method == "" {
		method = "unknown"
	}

	if errors.Is(err, ErrAuthenticatorUnavailable) {
		logging.CtxErr(r.Context(), err).Msg("Authentication store unavailable")
		m.respond(w, r, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Authentication service unavailable")
		return
	}

	metrics.RecordAuthAttempt(method, false)
	if m.audit != nil {
		m.audit.LoginFailed(r.Context(), "", method, clientIP(r), err.Error())
	}
	if m.challenge != "" {
		w.Header().Set("WWW-Authenticate", m.challenge)
	}

	switch {
	case errors.Is(err, ErrExpiredCredentials):
		m.respond(w, r, http.StatusUnauthorized, "CREDENTIALS_EXPIRED", "Authentication credentials have expired.")
	default:
		m.respond(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid authentication credentials.")
	}
}

// WithPrincipal returns ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, p)
}

// PrincipalFromContext returns the request principal. It never returns nil:
// a context without one yields the anonymous principal.
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(PrincipalContextKey).(*Principal); ok && p != nil {
		return p
	}
	return Anonymous()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
