// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// This file contains the opaque API token model.
package models

import "time"

// Token is the single opaque API token of a user. Clients send it as
// "Authorization: Token <key>".
type Token struct {
	Key     string    `json:"-"`
	UserID  int64     `json:"user_id"`
	Created time.Time `json:"created"`
}

// TokenResponse is returned by the token issuance endpoint.
type TokenResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// LoginResponse is returned by the JWT login endpoint.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}
