// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package authz

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/shelfwise/internal/auth"
	"github.com/tomtom215/shelfwise/internal/logging"
)

// Decision is the three-valued result of an access check.
type Decision int

const (
	// Allow permits the operation.
	Allow Decision = iota
	// DenyUnauthenticated rejects an anonymous caller (401).
	DenyUnauthenticated
	// DenyForbidden rejects an authenticated caller (403).
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	case DenyForbidden:
		return "deny_forbidden"
	default:
		return "unknown"
	}
}

// Allowed reports whether d is Allow.
func (d Decision) Allowed() bool {
	return d == Allow
}

// Status maps the decision to an HTTP status code.
func (d Decision) Status() int {
	switch d {
	case Allow:
		return http.StatusOK
	case DenyUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusForbidden
	}
}

// Action is an operation on a resource kind.
type Action string

// Actions understood by the policy.
const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionView   Action = "view"
)

// Resource kinds understood by the policy.
const (
	KindBook           = "book"
	KindOwnedBook      = "owned_book"
	KindAuthor         = "author"
	KindLibrary        = "library"
	KindLibrarian      = "librarian"
	KindPost           = "post"
	KindComment        = "comment"
	KindTag            = "tag"
	KindUser           = "user"
	KindProfile        = "profile"
	KindAdminDashboard = "dashboard:admin"
	KindLibrarianDash  = "dashboard:librarian"
	KindMemberDash     = "dashboard:member"
)

// Policy subjects computed from a principal.
const (
	SubjectAnonymous     = "anonymous"
	SubjectAuthenticated = "authenticated"
	SubjectStaff         = "staff"
	SubjectOwner         = "owner"
)

// Resource identifies what an action targets. OwnerID is nil for
// collections and for records without an owner.
type Resource struct {
	Kind    string
	OwnerID *int64
}

// Kind returns a Resource without an owner.
func Kind(kind string) Resource {
	return Resource{Kind: kind}
}

// Owned returns a Resource owned by ownerID. A nil ownerID means unowned.
func Owned(kind string, ownerID *int64) Resource {
	return Resource{Kind: kind, OwnerID: ownerID}
}

// Decider answers access questions for a principal.
type Decider struct {
	enforcer *Enforcer
	audit    *logging.AuditLogger
}

// NewDecider creates a decider over enforcer. audit may be nil.
func NewDecider(enforcer *Enforcer, audit *logging.AuditLogger) *Decider {
	return &Decider{enforcer: enforcer, audit: audit}
}

// Subjects returns the policy subjects p holds for res.
func Subjects(p *auth.Principal, res Resource) []string {
	if !p.IsAuthenticated() {
		return []string{SubjectAnonymous}
	}

	subjects := make([]string, 0, 4)
	subjects = append(subjects, SubjectAuthenticated)
	if p.Role != "" {
		subjects = append(subjects, p.Role)
	}
	if p.IsAdmin() {
		subjects = append(subjects, SubjectStaff)
	}
	if p.Owns(res.OwnerID) {
		subjects = append(subjects, SubjectOwner)
	}
	return subjects
}

// Decide evaluates action on res for p. Authentication is checked before
// role and ownership: an anonymous caller that is not allowed always gets
// DenyUnauthenticated, even when an ownership check would also fail.
//
// An enforcement error fails closed with the denial the caller would get
// for a missing permission.
func (d *Decider) Decide(ctx context.Context, p *auth.Principal, action Action, res Resource) Decision {
	start := time.Now()
	if p == nil {
		p = auth.Anonymous()
	}

	allowed, err := d.enforcer.EnforceAny(Subjects(p, res), res.Kind, string(action))
	if err != nil {
		logging.CtxErr(ctx, err).
			Str("kind", res.Kind).
			Str("action", string(action)).
			Msg("Authorization check failed")
		allowed = false
	}

	var decision Decision
	switch {
	case allowed:
		decision = Allow
	case !p.IsAuthenticated():
		decision = DenyUnauthenticated
	default:
		decision = DenyForbidden
	}

	RecordAuthzDecision(p.Role, res.Kind, string(action), decision, time.Since(start))
	logging.Ctx(ctx).Debug().
		Int64("user_id", p.UserID).
		Str("role", p.Role).
		Str("kind", res.Kind).
		Str("action", string(action)).
		Str("decision", decision.String()).
		Msg("Authorization decision")

	if decision == DenyForbidden && d.audit != nil {
		d.audit.AccessDenied(ctx, p.UserID, string(action), res.Kind, "insufficient permissions")
	}
	return decision
}

// DashboardKind maps a dashboard path segment to its resource kind.
func DashboardKind(role string) (string, bool) {
	switch role {
	case "admin":
		return KindAdminDashboard, true
	case "librarian":
		return KindLibrarianDash, true
	case "member":
		return KindMemberDash, true
	default:
		return "", false
	}
}
