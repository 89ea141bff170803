// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/shelfwise/internal/auth"
	"github.com/tomtom215/shelfwise/internal/authz"
	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/validation"
)

// testNow pins the clock of date-dependent rules.
var testNow = time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

const testPassword = "shelf-reading-lamp"

// DuckDB in-memory instances are opened one at a time.
var testDBMutex sync.Mutex

// testServer is the full HTTP stack over an in-memory database.
type testServer struct {
	db      *database.DB
	handler *Handler
	mux     http.Handler
	tokens  *auth.TokenManager
	jwt     *auth.JWTManager

	users   map[string]*models.User
	tokenOf map[string]string
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Environment: "test",
		},
		Database: config.DatabaseConfig{
			Driver:    config.DriverDuckDB,
			Path:      ":memory:",
			MaxMemory: "512MB",
			Threads:   2,
		},
		Tokens: config.TokenConfig{
			Backend: "database",
		},
		Security: config.SecurityConfig{
			JWTSecret:         "test-secret-that-is-long-enough-for-hs256",
			JWTTTL:            time.Hour,
			BasicAuthEnabled:  true,
			BcryptCost:        bcrypt.MinCost,
			DisableRateLimits: true,
		},
	}
}

// newTestServer builds the stack. mutate may adjust the configuration
// before anything is wired.
func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()

	cfg := testConfig()
	for _, fn := range mutate {
		fn(cfg)
	}

	testDBMutex.Lock()
	db, err := database.New(&cfg.Database)
	testDBMutex.Unlock()
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	enforcer, err := authz.NewEnforcer(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(enforcer.Close)

	verifier, err := auth.NewCredentialVerifier(db, cfg.Security.BcryptCost)
	if err != nil {
		t.Fatalf("NewCredentialVerifier() error = %v", err)
	}
	tokens := auth.NewTokenManager(auth.NewDatabaseTokenStore(db), cfg.Tokens.Backend)
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	handler, err := NewHandler(HandlerDeps{
		DB:        db,
		Validator: validation.NewDefaultRegistry(db, validation.WithClock(func() time.Time { return testNow })),
		Decider:   authz.NewDecider(enforcer, nil),
		Verifier:  verifier,
		Tokens:    tokens,
		JWT:       jwtManager,
		Config:    cfg,
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	authn, err := auth.NewMiddleware(&auth.MiddlewareConfig{
		Authenticator: auth.NewMultiAuthenticator(
			auth.NewTokenAuthenticator(tokens),
			auth.NewJWTAuthenticator(jwtManager),
			auth.NewBasicAuthenticator(verifier),
		),
		Resolver:  auth.NewResolver(db),
		Respond:   WriteAuthError,
		Challenge: AuthChallenge,
	})
	if err != nil {
		t.Fatalf("auth.NewMiddleware() error = %v", err)
	}

	router := NewRouter(handler, authn, NewChiMiddlewareFromConfig(&cfg.Security))
	return &testServer{
		db:      db,
		handler: handler,
		mux:     router.SetupChi(),
		tokens:  tokens,
		jwt:     jwtManager,
		users:   map[string]*models.User{},
		tokenOf: map[string]string{},
	}
}

// addUser stores a user with role and issues its API token.
func (ts *testServer) addUser(t *testing.T, username, role string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := ts.db.CreateUser(context.Background(), u, role); err != nil {
		t.Fatalf("CreateUser(%s) error = %v", username, err)
	}
	tok, _, err := ts.tokens.GetOrCreate(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetOrCreate(%s) error = %v", username, err)
	}
	ts.users[username] = u
	ts.tokenOf[username] = tok.Key
	return u
}

// addStandardUsers creates alice and bob (Members), libby (Librarian) and
// root (Admin).
func (ts *testServer) addStandardUsers(t *testing.T) {
	t.Helper()
	ts.addUser(t, "alice", models.RoleMember)
	ts.addUser(t, "bob", models.RoleMember)
	ts.addUser(t, "libby", models.RoleLibrarian)
	ts.addUser(t, "root", models.RoleAdmin)
}

// do sends a request as user ("" for anonymous). body is JSON-encoded
// unless it is nil.
func (ts *testServer) do(t *testing.T, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		key, ok := ts.tokenOf[user]
		if !ok {
			t.Fatalf("unknown test user %q", user)
		}
		req.Header.Set("Authorization", "Token "+key)
	}
	w := httptest.NewRecorder()
	ts.mux.ServeHTTP(w, req)
	return w
}

// seedAuthor stores an author directly.
func (ts *testServer) seedAuthor(t *testing.T, name string) *models.Author {
	t.Helper()
	a := &models.Author{Name: name}
	if err := ts.db.CreateAuthor(context.Background(), a); err != nil {
		t.Fatalf("CreateAuthor() error = %v", err)
	}
	return a
}

// seedBook stores a book owned by owner ("" for none).
func (ts *testServer) seedBook(t *testing.T, title string, year int, authorID int64, owner string) *models.Book {
	t.Helper()
	b := &models.Book{Title: title, PublicationYear: year, AuthorID: authorID}
	if owner != "" {
		id := ts.users[owner].ID
		b.Owner = &id
	}
	if err := ts.db.CreateBook(context.Background(), b); err != nil {
		t.Fatalf("CreateBook() error = %v", err)
	}
	return b
}

// assertStatusCode checks HTTP response status code
func assertStatusCode(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, want, w.Body.String())
	}
}

// decodeAPIResponse decodes the envelope.
func decodeAPIResponse(t *testing.T, w *httptest.ResponseRecorder) *models.APIResponse {
	t.Helper()
	var response models.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v; body: %s", err, w.Body.String())
	}
	return &response
}

// decodeBody decodes a plain (non-envelope) body into v.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode body: %v; body: %s", err, w.Body.String())
	}
}

// decodeData re-decodes the envelope data into v.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var env struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	decodeBody(t, w, &env)
	if env.Status != models.StatusSuccess {
		t.Fatalf("envelope status = %q, want success; body: %s", env.Status, w.Body.String())
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}

// assertErrorCode checks an error envelope's code.
func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, code string) *models.APIResponse {
	t.Helper()
	resp := decodeAPIResponse(t, w)
	if resp.Status != models.StatusError {
		t.Errorf("envelope status = %q, want error", resp.Status)
	}
	if resp.Error == nil || resp.Error.Code != code {
		t.Fatalf("error = %+v, want code %s", resp.Error, code)
	}
	return resp
}

// assertFieldError checks that field carries msg.
func assertFieldError(t *testing.T, resp *models.APIResponse, field, msg string) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("no error in response")
	}
	for _, got := range resp.Error.Details[field] {
		if got == msg {
			return
		}
	}
	t.Errorf("details[%s] = %v, want it to contain %q", field, resp.Error.Details[field], msg)
}
