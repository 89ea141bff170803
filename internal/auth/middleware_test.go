// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/shelfwise/internal/models"
)

// makeBasicAuthHeader creates a Basic Auth header value
func makeBasicAuthHeader(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

type middlewareFixture struct {
	mw      *Middleware
	users   *fakeUsers
	tokens  *TokenManager
	jwt     *JWTManager
	tokenOf map[int64]string
}

func newMiddlewareFixture(t *testing.T) *middlewareFixture {
	t.Helper()

	users := newFakeUsers(
		testUser(1, "alice", "alice-password", models.RoleLibrarian),
		testUser(2, "bob", "bob-password", ""),
	)
	verifier, err := NewCredentialVerifier(users, bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	tokens := NewTokenManager(newMemoryTokenStore(), "memory")
	jwtManager := newTestJWTManager(t)

	mw, err := NewMiddleware(&MiddlewareConfig{
		Authenticator: NewMultiAuthenticator(
			NewBasicAuthenticator(verifier),
			NewJWTAuthenticator(jwtManager),
			NewTokenAuthenticator(tokens),
		),
		Resolver:  NewResolver(users),
		Challenge: `Token realm="api"`,
	})
	if err != nil {
		t.Fatalf("NewMiddleware() error = %v", err)
	}

	f := &middlewareFixture{mw: mw, users: users, tokens: tokens, jwt: jwtManager, tokenOf: map[int64]string{}}
	for _, id := range []int64{1, 2} {
		tok, _, err := tokens.GetOrCreate(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}
		f.tokenOf[id] = tok.Key
	}
	return f
}

// serve runs a request through the middleware and returns the recorder and
// the principal the handler saw (nil if the handler did not run).
func (f *middlewareFixture) serve(header string) (*httptest.ResponseRecorder, *Principal) {
	var seen *Principal
	handler := f.mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func TestMiddleware_Authenticate(t *testing.T) {
	f := newMiddlewareFixture(t)

	bobJWT, _, err := f.jwt.GenerateToken(2, "bob")
	if err != nil {
		t.Fatal(err)
	}
	ghostJWT, _, err := f.jwt.GenerateToken(404, "ghost")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   int64
		wantRole   string
		wantMethod AuthMode
	}{
		{"no credentials is anonymous", "", http.StatusNoContent, 0, "", ""},
		{"token", "Token " + f.tokenOf[1], http.StatusNoContent, 1, models.RoleLibrarian, AuthModeToken},
		{"jwt", "Bearer " + bobJWT, http.StatusNoContent, 2, models.RoleMember, AuthModeJWT},
		{"basic", makeBasicAuthHeader("alice", "alice-password"), http.StatusNoContent, 1, models.RoleLibrarian, AuthModeBasic},
		{"unknown token", "Token ffffffffffffffffffffffffffffffffffffffff", http.StatusUnauthorized, 0, "", ""},
		{"bad password", makeBasicAuthHeader("alice", "nope"), http.StatusUnauthorized, 0, "", ""},
		{"garbage jwt", "Bearer abc.def.ghi", http.StatusUnauthorized, 0, "", ""},
		{"jwt for deleted user", "Bearer " + ghostJWT, http.StatusUnauthorized, 0, "", ""},
		{"unsupported scheme is anonymous", "Digest username=x", http.StatusNoContent, 0, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, principal := f.serve(tt.header)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusNoContent {
				if principal != nil {
					t.Error("handler ran for rejected credentials")
				}
				if got := rec.Header().Get("WWW-Authenticate"); got != `Token realm="api"` {
					t.Errorf("WWW-Authenticate = %q", got)
				}
				return
			}
			if principal.UserID != tt.wantUser || principal.Role != tt.wantRole || principal.Method != tt.wantMethod {
				t.Errorf("principal = %+v", principal)
			}
		})
	}
}

func TestMiddleware_ExpiredJWT(t *testing.T) {
	f := newMiddlewareFixture(t)
	f.jwt.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, _, err := f.jwt.GenerateToken(1, "alice")
	if err != nil {
		t.Fatal(err)
	}
	f.jwt.now = time.Now

	var code string
	f.mw.respond = func(w http.ResponseWriter, _ *http.Request, status int, c, msg string) {
		code = c
		http.Error(w, msg, status)
	}

	rec, _ := f.serve("Bearer " + expired)
	if rec.Code != http.StatusUnauthorized || code != "CREDENTIALS_EXPIRED" {
		t.Errorf("status = %d code = %q", rec.Code, code)
	}
}

func TestMiddleware_RoleChangeAppliesNextRequest(t *testing.T) {
	f := newMiddlewareFixture(t)

	_, before := f.serve("Token " + f.tokenOf[2])
	if before.IsAdmin() {
		t.Fatal("bob should start as a member")
	}

	f.users.setRole(2, models.RoleAdmin)

	_, after := f.serve("Token " + f.tokenOf[2])
	if after.Role != models.RoleAdmin || !after.IsAdmin() {
		t.Errorf("principal after role change = %+v", after)
	}
}

func TestMiddleware_StoreOutage(t *testing.T) {
	f := newMiddlewareFixture(t)
	f.users.err = errors.New("database is locked")

	rec, principal := f.serve("Token " + f.tokenOf[1])
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if principal != nil {
		t.Error("handler ran during store outage")
	}
}

func TestNewMiddleware_Validation(t *testing.T) {
	if _, err := NewMiddleware(&MiddlewareConfig{Resolver: NewResolver(newFakeUsers())}); err == nil {
		t.Error("missing authenticator accepted")
	}
	if _, err := NewMiddleware(&MiddlewareConfig{Authenticator: NewMultiAuthenticator()}); err == nil {
		t.Error("missing resolver accepted")
	}
}

func TestPrincipalFromContext(t *testing.T) {
	if p := PrincipalFromContext(context.Background()); p == nil || p.IsAuthenticated() {
		t.Errorf("empty context principal = %+v, want anonymous", p)
	}

	want := &Principal{UserID: 3, Role: models.RoleMember}
	if got := PrincipalFromContext(WithPrincipal(context.Background(), want)); got != want {
		t.Errorf("PrincipalFromContext() = %+v, want %+v", got, want)
	}
}
