// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package auth

import (
	"context"
	"net/http"
	"strings"
)

// BasicAuthenticator implements the Authenticator interface for HTTP Basic
// Authentication against the user table.
type BasicAuthenticator struct {
	verifier *CredentialVerifier
}

// NewBasicAuthenticator creates a new Basic authenticator.
func NewBasicAuthenticator(verifier *CredentialVerifier) *BasicAuthenticator {
	return &BasicAuthenticator{verifier: verifier}
}

// Authenticate extracts and validates Basic auth credentials from the request.
func (a *BasicAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*AuthSubject, error) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Basic ") {
		return nil, ErrNoCredentials
	}

	username, password, ok := r.BasicAuth()
	if !ok {
		return nil, ErrInvalidCredentials
	}

	u, err := a.verifier.Verify(ctx, username, password)
	if err != nil {
		return nil, err
	}

	return &AuthSubject{
		UserID:     u.ID,
		Username:   u.Username,
		AuthMethod: AuthModeBasic,
	}, nil
}

// Name returns the authenticator name.
func (a *BasicAuthenticator) Name() string {
	return string(AuthModeBasic)
}

// Priority returns the authenticator priority (lower = higher priority).
// Basic auth is tried last, after Token (10) and JWT (20).
func (a *BasicAuthenticator) Priority() int {
	return 25
}

// GetWWWAuthenticateHeader returns the WWW-Authenticate header value sent
// with 401 responses.
func (a *BasicAuthenticator) GetWWWAuthenticateHeader() string {
	return `Basic realm="Shelfwise", charset="UTF-8"`
}
