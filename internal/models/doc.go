// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package models defines the data structures shared by the store, the
authorization layer and the HTTP handlers.

Key Components:

  - Catalog: Author, Book (catalog.go)
  - Libraries: Library, Librarian (library.go)
  - Identity: User, Profile and the Admin/Librarian/Member roles (rbac.go)
  - Blog: Post, Comment, Tag (blog.go)
  - API tokens: Token (token.go)
  - Transport: APIResponse envelope and request payloads (api_responses.go, requests.go)

Models carry json tags only. Column mapping lives in internal/database and
field rules live in internal/validation.
*/
package models
