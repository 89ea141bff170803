// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/shelfwise/internal/config"
)

const testJWTSecret = "this_is_a_very_long_secret_key_for_testing_purposes_12345"

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()
	manager, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret: testJWTSecret,
		JWTTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return manager
}

func TestNewJWTManager(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.SecurityConfig
		wantErr bool
		wantTTL time.Duration
	}{
		{
			name:    "valid secret",
			cfg:     &config.SecurityConfig{JWTSecret: testJWTSecret, JWTTTL: 2 * time.Hour},
			wantTTL: 2 * time.Hour,
		},
		{
			name:    "zero ttl falls back to a day",
			cfg:     &config.SecurityConfig{JWTSecret: testJWTSecret},
			wantTTL: 24 * time.Hour,
		},
		{
			name:    "empty secret",
			cfg:     &config.SecurityConfig{JWTTTL: time.Hour},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, err := NewJWTManager(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("NewJWTManager() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewJWTManager() unexpected error = %v", err)
			}
			if manager.timeout != tt.wantTTL {
				t.Errorf("timeout = %v, want %v", manager.timeout, tt.wantTTL)
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager := newTestJWTManager(t)

	token, expiresAt, err := manager.GenerateToken(42, "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if until := time.Until(expiresAt); until < 59*time.Minute || until > time.Hour {
		t.Errorf("expiresAt = %v, want about an hour from now", expiresAt)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want alice", claims.Username)
	}
	id, err := claims.UserID()
	if err != nil || id != 42 {
		t.Errorf("UserID() = %d, %v; want 42", id, err)
	}
	if claims.ID == "" {
		t.Error("jti claim not set")
	}
	if claims.Issuer != jwtIssuer {
		t.Errorf("Issuer = %q, want %q", claims.Issuer, jwtIssuer)
	}
}

func TestGenerateToken_UniqueJTI(t *testing.T) {
	manager := newTestJWTManager(t)

	first, _, err := manager.GenerateToken(1, "alice")
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := manager.GenerateToken(1, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("two tokens issued in the same second are identical")
	}
}

func TestValidateToken_Invalid(t *testing.T) {
	manager := newTestJWTManager(t)

	tests := []struct {
		name  string
		token string
	}{
		{"invalid token format", "invalid.token.format"},
		{"empty token", ""},
		{"malformed token", "not_a_jwt_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := manager.ValidateToken(tt.token)
			if err == nil {
				t.Error("ValidateToken() expected error for invalid token, got nil")
			}
			if claims != nil {
				t.Error("ValidateToken() expected nil claims for invalid token")
			}
		})
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	manager1 := newTestJWTManager(t)
	manager2, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret: "second_secret_key_that_is_different_from_first_12345",
		JWTTTL:    time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}

	token, _, err := manager1.GenerateToken(1, "testuser")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := manager2.ValidateToken(token); err == nil {
		t.Error("ValidateToken() expected error when using wrong secret, got nil")
	}
}

func TestValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	manager := newTestJWTManager(t)

	claims := &Claims{
		Username: "mallory",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    jwtIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := manager.ValidateToken(unsigned); err == nil {
		t.Error("alg=none token accepted")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	manager := newTestJWTManager(t)
	manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := manager.GenerateToken(1, "alice")
	if err != nil {
		t.Fatal(err)
	}

	manager.now = time.Now
	_, err = manager.ValidateToken(token)
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("ValidateToken() error = %v, want ErrTokenExpired", err)
	}
}

func TestJWTAuthenticator_Authenticate(t *testing.T) {
	manager := newTestJWTManager(t)
	authenticator := NewJWTAuthenticator(manager)

	valid, _, err := manager.GenerateToken(7, "bob")
	if err != nil {
		t.Fatal(err)
	}

	manager.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	expired, _, err := manager.GenerateToken(7, "bob")
	if err != nil {
		t.Fatal(err)
	}
	manager.now = time.Now

	tests := []struct {
		name    string
		header  string
		wantErr error
		wantID  int64
	}{
		{"no header", "", ErrNoCredentials, 0},
		{"other scheme", "Token abc", ErrNoCredentials, 0},
		{"empty bearer", "Bearer ", ErrInvalidCredentials, 0},
		{"garbage", "Bearer not-a-jwt", ErrInvalidCredentials, 0},
		{"expired", "Bearer " + expired, ErrExpiredCredentials, 0},
		{"valid", "Bearer " + valid, nil, 7},
		{"case-insensitive scheme", "bearer " + valid, nil, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			subject, err := authenticator.Authenticate(context.Background(), req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error = %v", err)
			}
			if subject.UserID != tt.wantID || subject.AuthMethod != AuthModeJWT {
				t.Errorf("subject = %+v", subject)
			}
		})
	}
}
