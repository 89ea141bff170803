// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package auth

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// AuthMode identifies how a request proved its identity.
type AuthMode string

const (
	// AuthModeToken is the opaque "Authorization: Token <key>" scheme.
	AuthModeToken AuthMode = "token"

	// AuthModeJWT uses HS256 bearer tokens issued by the login endpoint.
	AuthModeJWT AuthMode = "jwt"

	// AuthModeBasic uses HTTP Basic credentials checked against the user table.
	AuthModeBasic AuthMode = "basic"

	// AuthModeMulti tries every configured scheme in priority order.
	AuthModeMulti AuthMode = "multi"
)

// String returns the string representation of AuthMode.
func (m AuthMode) String() string {
	return string(m)
}

// Standard authentication errors
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates credentials have expired.
	ErrExpiredCredentials = errors.New("credentials expired")

	// ErrAuthenticatorUnavailable indicates the credential store could not be reached.
	ErrAuthenticatorUnavailable = errors.New("authenticator unavailable")
)

// Authenticator defines the interface for authentication providers.
type Authenticator interface {
	// Authenticate extracts and validates credentials from the request.
	// It returns ErrNoCredentials when the request carries none for this scheme.
	Authenticate(ctx context.Context, r *http.Request) (*AuthSubject, error)

	// Name returns the authenticator's name for logging.
	Name() string

	// Priority returns the authenticator's priority for multi-mode.
	// Lower values are tried first.
	Priority() int
}

// AuthSubject is the proven identity of a request, before the role lookup.
// It carries only what the credential itself asserts.
type AuthSubject struct {
	// UserID is the primary key of the user the credential belongs to.
	UserID int64 `json:"user_id"`

	// Username as asserted by the credential. The resolver reloads the
	// user, so a stale name here is harmless.
	Username string `json:"username"`

	// AuthMethod indicates how the subject was authenticated.
	AuthMethod AuthMode `json:"auth_method"`

	// ExpiresAt is when the credential stops being valid (zero = never).
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// IsExpired checks if the credential has expired.
func (s *AuthSubject) IsExpired() bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(s.ExpiresAt)
}
