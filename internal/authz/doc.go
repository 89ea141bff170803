// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package authz decides whether a principal may perform an action on a
// resource.
//
// # Overview
//
// Every access question has one of three answers:
//
//   - Allow
//   - DenyUnauthenticated (401): the caller is anonymous
//   - DenyForbidden (403): the caller is known but lacks the role or ownership
//
// The authentication check always comes first, so an anonymous write to a
// record the caller could never own is still a 401.
//
//	Request -> auth.Middleware -> Principal -> Decider -> Casbin policy
//	                                              |
//	                                        Subjects(p, res)
//
// # Subjects
//
// A principal is turned into the policy subjects it holds for a resource:
//
//	anonymous      no credentials
//	authenticated  any signed-in user (inherits anonymous via g)
//	<Role>         Admin, Librarian or Member from the profile
//	staff          IsStaff, IsSuperuser or the Admin role
//	owner          the resource's OwnerID equals the principal's id
//
// # RBAC Model
//
//	[request_definition]
//	r = sub, obj, act
//
//	[policy_definition]
//	p = sub, obj, act
//
//	[role_definition]
//	g = _, _
//
//	[policy_effect]
//	e = some(where (p.eft == allow))
//
//	[matchers]
//	m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && (r.act == p.act || p.act == "*")
//
// Objects are resource kinds (book, post, dashboard:librarian, ...), not
// URL paths. See policy.csv for the full table. Posts and comments have no
// staff rule: only their author may change them. Dashboards are granted to
// the exact role, so an Admin does not see the Librarian dashboard.
//
// # Usage
//
//	enforcer, err := authz.NewEnforcer(ctx, authz.EnforcerConfigFrom(&cfg.Security.Casbin))
//	if err != nil {
//	    return err
//	}
//	defer enforcer.Close()
//
//	decider := authz.NewDecider(enforcer, audit)
//	d := decider.Decide(ctx, principal, authz.ActionUpdate, authz.Owned(authz.KindBook, book.OwnerID()))
//	if !d.Allowed() {
//	    w.WriteHeader(d.Status())
//	}
//
// Routes that need no record use the middleware:
//
//	guard := authz.NewMiddleware(decider, respond, `Token realm="api"`)
//	r.With(guard.Require(authz.KindLibrary, authz.ActionCreate)).Post("/libraries", h.CreateLibrary)
//
// # Caching
//
// Enforcer caches (subject, object, action) lookups for CacheTTL. Subjects
// are never user ids, so a role change needs no invalidation: the next
// request resolves a different subject set. The cache is cleared when rules
// are added, removed or reloaded.
//
// # Thread Safety
//
// Casbin's SyncedEnforcer and the RWMutex-guarded cache make every type in
// this package safe for concurrent use.
package authz
