// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package auth

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenKey(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key, err := GenerateTokenKey()
		require.NoError(t, err)
		require.Len(t, key, 40)
		_, err = hex.DecodeString(key)
		require.NoError(t, err, "key must be hex")
		require.False(t, seen[key], "duplicate key")
		seen[key] = true
	}
}

func TestTokenManager_GetOrCreate(t *testing.T) {
	m := NewTokenManager(newMemoryTokenStore(), "memory")
	ctx := context.Background()

	first, created, err := m.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, first.Key, 40)

	again, created, err := m.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.False(t, created, "second call returns the existing token")
	assert.Equal(t, first.Key, again.Key)

	other, _, err := m.GetOrCreate(ctx, 2)
	require.NoError(t, err)
	assert.NotEqual(t, first.Key, other.Key)
}

func TestTokenManager_GetOrCreateConcurrent(t *testing.T) {
	m := NewTokenManager(newMemoryTokenStore(), "memory")
	ctx := context.Background()

	const workers = 8
	keys := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, _, err := m.GetOrCreate(ctx, 1)
			if err == nil {
				keys[i] = tok.Key
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Equal(t, keys[0], keys[i], "every caller sees the single stored token")
	}
}

func TestTokenManager_LookupAndRevoke(t *testing.T) {
	m := NewTokenManager(newMemoryTokenStore(), "memory")
	ctx := context.Background()

	tok, _, err := m.GetOrCreate(ctx, 3)
	require.NoError(t, err)

	found, err := m.Lookup(ctx, tok.Key)
	require.NoError(t, err)
	assert.Equal(t, int64(3), found.UserID)

	require.NoError(t, m.Revoke(ctx, 3))
	_, err = m.Lookup(ctx, tok.Key)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	assert.NoError(t, m.Revoke(ctx, 3), "revoking twice is not an error")
}

func TestTokenManager_Rotate(t *testing.T) {
	m := NewTokenManager(newMemoryTokenStore(), "memory")
	ctx := context.Background()

	old, _, err := m.GetOrCreate(ctx, 4)
	require.NoError(t, err)

	fresh, err := m.Rotate(ctx, 4)
	require.NoError(t, err)
	assert.NotEqual(t, old.Key, fresh.Key)

	_, err = m.Lookup(ctx, old.Key)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenManager_StoreFailure(t *testing.T) {
	store := newMemoryTokenStore()
	store.err = errors.New("disk full")
	m := NewTokenManager(store, "memory")

	_, _, err := m.GetOrCreate(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestTokenAuthenticator_Authenticate(t *testing.T) {
	store := newMemoryTokenStore()
	m := NewTokenManager(store, "memory")
	tok, _, err := m.GetOrCreate(context.Background(), 11)
	require.NoError(t, err)

	authenticator := NewTokenAuthenticator(m)
	assert.Equal(t, "token", authenticator.Name())
	assert.Equal(t, 10, authenticator.Priority())

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"no header", "", ErrNoCredentials},
		{"bearer is another scheme", "Bearer " + tok.Key, ErrNoCredentials},
		{"missing key", "Token", ErrInvalidCredentials},
		{"unknown key", "Token 0000000000000000000000000000000000000000", ErrInvalidCredentials},
		{"valid", "Token " + tok.Key, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/my/books", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			subject, err := authenticator.Authenticate(context.Background(), req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(11), subject.UserID)
			assert.Equal(t, AuthModeToken, subject.AuthMethod)
		})
	}

	store.err = errors.New("io error")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token "+tok.Key)
	_, err = authenticator.Authenticate(context.Background(), req)
	assert.ErrorIs(t, err, ErrAuthenticatorUnavailable)
}
