// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"errors"
	"net"
	"net/http"

	"github.com/tomtom215/shelfwise/internal/auth"
	"github.com/tomtom215/shelfwise/internal/authz"
	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/metrics"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/validation"
)

const msgBadCredentials = "Unable to log in with provided credentials."

// verifyCredentials decodes a CredentialsRequest and checks it. On failure
// it writes the response and returns nil. badStatus is the status used for
// wrong credentials: the token endpoint answers 400 like DRF's
// obtain_auth_token, the login endpoint 401.
func (h *Handler) verifyCredentials(w http.ResponseWriter, r *http.Request, method string, badStatus int) *models.User {
	rw := NewResponseWriter(w, r)

	var req models.CredentialsRequest
	fe, ok := decodeAndCheck(w, r, &req)
	if !ok {
		return nil
	}
	if len(fe) > 0 {
		rw.ValidationError(fe)
		return nil
	}

	u, err := h.verifier.Verify(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrAuthenticatorUnavailable) {
		logging.CtxErr(r.Context(), err).Msg("Credential store unavailable")
		rw.ServiceUnavailable("Authentication service unavailable")
		return nil
	}
	if err != nil {
		metrics.RecordAuthAttempt(method, false)
		h.audit.LoginFailed(r.Context(), req.Username, method, remoteIP(r), err.Error())
		if badStatus == http.StatusUnauthorized {
			rw.Error(http.StatusUnauthorized, ErrCodeInvalidCredentials, msgBadCredentials)
			return nil
		}
		rw.ErrorWithDetails(badStatus, ErrCodeValidationFailed, msgBadCredentials,
			map[string][]string{"non_field_errors": {msgBadCredentials}})
		return nil
	}

	metrics.RecordAuthAttempt(method, true)
	return u
}

// IssueToken godoc
// @Summary Exchange credentials for an API token
// @Description Returns the caller's single API token, creating it on first use. Send it as "Authorization: Token <key>".
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body models.CredentialsRequest true "Username and password"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} models.APIResponse
// @Router /auth/token [post]
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	u := h.verifyCredentials(w, r, string(auth.AuthModeToken), http.StatusBadRequest)
	if u == nil {
		return
	}

	tok, created, err := h.tokens.GetOrCreate(r.Context(), u.ID)
	if err != nil {
		NewResponseWriter(w, r).InternalError(err)
		return
	}
	h.audit.TokenIssued(r.Context(), u.ID, string(auth.AuthModeToken), created)

	NewResponseWriter(w, r).OK(&models.TokenResponse{
		Token:  tok.Key,
		UserID: u.ID,
		Email:  u.Email,
	})
}

// Login godoc
// @Summary Exchange credentials for a JWT
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body models.CredentialsRequest true "Username and password"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	u := h.verifyCredentials(w, r, string(auth.AuthModeJWT), http.StatusUnauthorized)
	if u == nil {
		return
	}

	token, expiresAt, err := h.jwt.GenerateToken(u.ID, u.Username)
	if err != nil {
		NewResponseWriter(w, r).InternalError(err)
		return
	}
	h.audit.LoginSucceeded(r.Context(), u.ID, u.Username, string(auth.AuthModeJWT), remoteIP(r))

	NewResponseWriter(w, r).OK(&models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Username:  u.Username,
		Role:      u.Role(),
	})
}

// Register godoc
// @Summary Sign up
// @Description Creates a user and its Member profile
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body models.RegisterRequest true "New account"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.RegisterRequest
	fe, ok := decodeAndCheck(w, r, &req)
	if !ok {
		return
	}

	account := &validation.Account{
		Username:      req.Username,
		Email:         req.Email,
		Password:      req.Password,
		EmailRequired: true,
	}
	if !h.validate(w, r, validation.KindUser, account, fe) {
		return
	}
	if len(fe) > 0 {
		rw.ValidationError(fe)
		return
	}

	hash, err := auth.HashPassword(account.Password, h.config.Security.BcryptCost)
	if err != nil {
		rw.InternalError(err)
		return
	}
	u := &models.User{
		Username:     account.Username,
		Email:        account.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := h.db.CreateUser(r.Context(), u, models.DefaultRole); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			rw.ValidationError(validation.FieldErrors{"username": {"A user with that username already exists."}})
			return
		}
		rw.InternalError(err)
		return
	}

	h.audit.UserRegistered(r.Context(), u.ID, u.Username)
	rw.Created("User registered successfully", u)
}

// Me godoc
// @Summary Current principal
// @Tags Auth
// @Produce json
// @Success 200 {object} auth.Principal
// @Failure 401 {object} models.APIResponse
// @Security TokenAuth
// @Router /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if !principal.IsAuthenticated() {
		h.guard.Deny(w, r, authz.DenyUnauthenticated)
		return
	}
	NewResponseWriter(w, r).OK(principal)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
