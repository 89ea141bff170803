// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/shelfwise/internal/auth"
	"github.com/tomtom215/shelfwise/internal/authz"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/validation"
)

// RoleChangeResponse is returned by the role endpoint.
type RoleChangeResponse struct {
	UserID       int64  `json:"user_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	PreviousRole string `json:"previous_role"`
}

// UserList godoc
// @Summary User directory
// @Description Admin-equivalent principals only
// @Tags Users
// @Produce json
// @Success 200 {array} models.User
// @Failure 401 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Security TokenAuth
// @Router /users [get]
func (h *Handler) UserList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	users, err := h.db.ListUsers(r.Context())
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.OK(users)
}

// UserGet returns a user with its profile. Callers may read themselves;
// admin-equivalent callers may read anyone.
func (h *Handler) UserGet(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.authenticateFirst(w, r, authz.ActionRead, authz.KindUser) {
		return
	}

	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("User"))
		return
	}
	u, err := h.db.GetUserByID(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "User")
		return
	}
	if !h.authorize(w, r, authz.ActionRead, authz.Owned(authz.KindUser, &u.ID)) {
		return
	}
	rw.OK(u)
}

// UserSetRole godoc
// @Summary Change a user's role
// @Description Takes effect on the user's next request
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User id"
// @Param role body models.RoleRequest true "Admin, Librarian or Member"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Security TokenAuth
// @Router /users/{id}/role [put]
func (h *Handler) UserSetRole(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	principal := auth.PrincipalFromContext(r.Context())

	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("User"))
		return
	}

	var req models.RoleRequest
	fe, ok := decodeAndCheck(w, r, &req)
	if !ok {
		return
	}
	profile := &models.Profile{UserID: id, Role: req.Role}
	if !h.validate(w, r, validation.KindProfile, profile, fe) {
		return
	}
	if len(fe) > 0 {
		rw.ValidationError(fe)
		return
	}

	u, err := h.db.GetUserByID(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "User")
		return
	}
	previous, err := h.db.SetUserRole(r.Context(), id, profile.Role)
	if err != nil {
		respondStoreError(rw, err, "User")
		return
	}

	h.audit.RoleChanged(r.Context(), principal.UserID, id, previous, profile.Role)
	rw.Updated("Role updated successfully", &RoleChangeResponse{
		UserID:       id,
		Username:     u.Username,
		Role:         profile.Role,
		PreviousRole: previous,
	})
}

// ProfileGet godoc
// @Summary Own user and profile
// @Tags Profile
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.APIResponse
// @Security TokenAuth
// @Router /profile [get]
func (h *Handler) ProfileGet(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	principal := auth.PrincipalFromContext(r.Context())
	if !h.authorize(w, r, authz.ActionRead, authz.Owned(authz.KindProfile, &principal.UserID)) {
		return
	}

	u, err := h.db.GetUserByID(r.Context(), principal.UserID)
	if err != nil {
		respondStoreError(rw, err, "User")
		return
	}
	rw.OK(u)
}

// ProfileUpdate handles PUT and PATCH on /profile. Every field is optional;
// the e-mail must stay unique across users.
func (h *Handler) ProfileUpdate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	principal := auth.PrincipalFromContext(r.Context())
	if !h.authorize(w, r, authz.ActionUpdate, authz.Owned(authz.KindProfile, &principal.UserID)) {
		return
	}

	u, err := h.db.GetUserByID(r.Context(), principal.UserID)
	if err != nil {
		respondStoreError(rw, err, "User")
		return
	}
	profile := u.Profile
	if profile == nil {
		profile = models.NewProfile(u.ID, models.DefaultRole)
	}

	var req models.ProfileRequest
	fe, ok := decodeAndCheck(w, r, &req)
	if !ok {
		return
	}
	applyProfileRequest(&req, u, profile, fe)

	account := &validation.Account{UserID: u.ID, Username: u.Username, Email: u.Email}
	if !h.validate(w, r, validation.KindUser, account, fe) {
		return
	}
	if !h.validate(w, r, validation.KindProfile, profile, fe) {
		return
	}
	if len(fe) > 0 {
		rw.ValidationError(fe)
		return
	}
	u.Email = account.Email

	if err := h.db.UpdateAccount(r.Context(), u, profile); err != nil {
		respondStoreError(rw, err, "User")
		return
	}
	u.Profile = profile

	logging.Ctx(r.Context()).Debug().Int64("user_id", u.ID).Msg("Profile updated")
	rw.Updated("Profile updated successfully", u)
}

// MsgInvalidDate is reported for a birth date that is not YYYY-MM-DD.
const MsgInvalidDate = "Enter a valid date."

// applyProfileRequest copies the present fields. An empty birth date clears
// it; one that does not parse is reported in fe and left unchanged.
func applyProfileRequest(req *models.ProfileRequest, u *models.User, p *models.Profile, fe validation.FieldErrors) {
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.Location != nil {
		p.Location = *req.Location
	}
	if req.BirthDate != nil {
		raw := strings.TrimSpace(*req.BirthDate)
		if raw == "" {
			p.BirthDate = nil
			return
		}
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			fe.Add("birth_date", MsgInvalidDate)
			return
		}
		p.BirthDate = &d
	}
}
