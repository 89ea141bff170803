// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shelfwise/internal/auth"
	"github.com/tomtom215/shelfwise/internal/authz"
	"github.com/tomtom215/shelfwise/internal/middleware"
	"github.com/tomtom215/shelfwise/internal/models"
)

// AdminDashboard is the payload of /dashboards/admin.
type AdminDashboard struct {
	Role      string                     `json:"role"`
	Username  string                     `json:"username"`
	Users     *models.RoleStats          `json:"users"`
	Endpoints []middleware.EndpointStats `json:"endpoints"`
	Uptime    float64                    `json:"uptime_seconds"`
}

// LibrarianDashboard is the payload of /dashboards/librarian.
type LibrarianDashboard struct {
	Role      string           `json:"role"`
	Username  string           `json:"username"`
	Libraries []models.Library `json:"libraries"`
}

// MemberDashboard is the payload of /dashboards/member.
type MemberDashboard struct {
	Role     string        `json:"role"`
	Username string        `json:"username"`
	Books    []models.Book `json:"books"`
	Posts    []models.Post `json:"posts"`
}

// Dashboard godoc
// @Summary Role dashboard
// @Description Reachable only when the caller's role is exactly the one named; the staff flag alone does not open the admin dashboard
// @Tags Dashboards
// @Produce json
// @Param role path string true "admin, librarian or member"
// @Success 200 {object} AdminDashboard
// @Failure 401 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Security TokenAuth
// @Router /dashboards/{role} [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	kind, ok := authz.DashboardKind(chi.URLParam(r, "role"))
	if !ok {
		rw.NotFound(notFound("Dashboard"))
		return
	}
	if !h.authorize(w, r, authz.ActionView, authz.Kind(kind)) {
		return
	}

	principal := auth.PrincipalFromContext(r.Context())
	switch kind {
	case authz.KindAdminDashboard:
		stats, err := h.db.GetRoleStats(r.Context())
		if err != nil {
			rw.InternalError(err)
			return
		}
		rw.OK(&AdminDashboard{
			Role:      principal.Role,
			Username:  principal.Username,
			Users:     stats,
			Endpoints: h.perfMon.GetStats(),
			Uptime:    h.uptime().Seconds(),
		})

	case authz.KindLibrarianDash:
		libraries, err := h.db.ListLibraries(r.Context())
		if err != nil {
			rw.InternalError(err)
			return
		}
		rw.OK(&LibrarianDashboard{Role: principal.Role, Username: principal.Username, Libraries: libraries})

	default:
		userID := principal.UserID
		books, err := h.db.ListBooks(r.Context(), models.BookFilter{OwnerID: &userID})
		if err != nil {
			rw.InternalError(err)
			return
		}
		posts, err := h.db.ListPosts(r.Context(), models.PostFilter{AuthorID: &userID})
		if err != nil {
			rw.InternalError(err)
			return
		}
		rw.OK(&MemberDashboard{Role: principal.Role, Username: principal.Username, Books: books, Posts: posts})
	}
}
