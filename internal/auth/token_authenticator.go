// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// TokenAuthenticator implements the Authenticator interface for the opaque
// "Authorization: Token <key>" scheme.
type TokenAuthenticator struct {
	tokens *TokenManager
}

// NewTokenAuthenticator creates a new token authenticator.
func NewTokenAuthenticator(tokens *TokenManager) *TokenAuthenticator {
	return &TokenAuthenticator{tokens: tokens}
}

// Authenticate resolves the presented key to its user.
func (a *TokenAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*AuthSubject, error) {
	key, ok := schemeCredential(r, "Token")
	if !ok {
		return nil, ErrNoCredentials
	}
	if key == "" {
		return nil, ErrInvalidCredentials
	}

	tok, err := a.tokens.Lookup(ctx, key)
	if errors.Is(err, ErrTokenNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticatorUnavailable, err)
	}

	return &AuthSubject{
		UserID:     tok.UserID,
		AuthMethod: AuthModeToken,
	}, nil
}

// Name returns the authenticator name.
func (a *TokenAuthenticator) Name() string {
	return string(AuthModeToken)
}

// Priority returns the authenticator priority (lower = higher priority).
func (a *TokenAuthenticator) Priority() int {
	return 10
}
