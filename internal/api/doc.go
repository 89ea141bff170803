// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package api provides the HTTP handlers and chi router of Shelfwise.

Handler methods are split across files by resource:

  - handlers.go: Handler struct, constructor and the shared authorize helpers
  - handlers_helpers.go: request decoding, path and query parsing
  - handlers_books.go: /books and the owner-scoped /my/books
  - handlers_authors.go: /authors and /authors/{id}/books
  - handlers_libraries.go: /libraries, shelves and librarians
  - handlers_auth.go: /auth/token, /auth/login, /auth/register, /auth/me
  - handlers_users.go: /users, /users/{id}/role and /profile
  - handlers_blog.go: /posts, /comments, /tags and /feed
  - handlers_dashboards.go: /dashboards/{role}
  - handlers_health.go: /health

Response Format:

Reads return the plain resource or list. Creates and updates return the
envelope

	{"status": "success", "message": "Book created successfully", "data": {...}}

and every error returns

	{"status": "error", "message": "...", "error": {"code": "...", "details": {"field": ["..."]}}}

Authorization Order:

Handlers ask the authz.Decider before touching the store, so an anonymous
write is answered with 401 even when the id does not exist. When the
decision depends on who owns the record, the record is loaded first and
the owner-aware decision follows, which makes a missing id a 404 for
authenticated callers.

Routes whose decision never depends on a record (creates, user directory,
dashboards) are guarded in the router with authz.Middleware.Require.
*/
package api
