// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// JWTAuthenticator implements the Authenticator interface for bearer tokens.
type JWTAuthenticator struct {
	manager *JWTManager
}

// NewJWTAuthenticator creates a new JWT authenticator.
func NewJWTAuthenticator(manager *JWTManager) *JWTAuthenticator {
	return &JWTAuthenticator{manager: manager}
}

// Authenticate extracts and validates the JWT from the request.
func (a *JWTAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*AuthSubject, error) {
	tokenStr, ok := schemeCredential(r, "Bearer")
	if !ok {
		return nil, ErrNoCredentials
	}
	if tokenStr == "" {
		return nil, ErrInvalidCredentials
	}

	claims, err := a.manager.ValidateToken(tokenStr)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredCredentials
		}
		return nil, ErrInvalidCredentials
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	subject := &AuthSubject{
		UserID:     userID,
		Username:   claims.Username,
		AuthMethod: AuthModeJWT,
	}
	if claims.ExpiresAt != nil {
		subject.ExpiresAt = claims.ExpiresAt.Time
	}
	return subject, nil
}

// Name returns the authenticator name.
func (a *JWTAuthenticator) Name() string {
	return string(AuthModeJWT)
}

// Priority returns the authenticator priority (lower = higher priority).
// JWT has priority 20, between Token (10) and Basic (25).
func (a *JWTAuthenticator) Priority() int {
	return 20
}

// schemeCredential returns the credential following scheme in the
// Authorization header. ok is false when the header uses another scheme.
func schemeCredential(r *http.Request, scheme string) (credential string, ok bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !strings.EqualFold(parts[0], scheme) {
		return "", false
	}
	if len(parts) < 2 {
		return "", true
	}
	return strings.TrimSpace(parts[1]), true
}
