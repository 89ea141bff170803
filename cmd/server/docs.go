// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package main provides the Shelfwise HTTP server
//
// @title Shelfwise API
// @version 1.0
// @description Book catalog, libraries with librarians, role-based dashboards and a small blog.
// @description
// @description ## Authentication
// @description
// @description Exchange a username and password for an API token at `/api/v1/auth/token`
// @description and send it as `Authorization: Token <key>`. `/api/v1/auth/login` issues a
// @description JWT for `Authorization: Bearer <jwt>`. HTTP Basic is accepted when enabled.
// @description
// @description Reads are public. Requests without credentials that need them answer 401;
// @description authenticated requests that are not allowed answer 403.
// @description
// @description ## Error Responses
// @description
// @description ```json
// @description {
// @description   "status": "error",
// @description   "message": "Validation failed",
// @description   "error": {
// @description     "code": "VALIDATION_ERROR",
// @description     "details": {"publication_year": ["Publication year 2030 cannot be in the future (current year 2026)."]}
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/shelfwise/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization
// @description API token: "Token <key>" from /auth/token, or "Bearer <jwt>" from /auth/login.
//
// @tag.name Core
// @tag.description Health and metrics
//
// @tag.name Auth
// @tag.description Tokens, login, registration and the current principal
//
// @tag.name Books
// @tag.description Book catalog and per-user book ownership
//
// @tag.name My Books
// @tag.description The caller's own books
//
// @tag.name Authors
// @tag.description Authors and their books
//
// @tag.name Libraries
// @tag.description Libraries, shelves and librarians
//
// @tag.name Users
// @tag.description Users, roles and profiles
//
// @tag.name Profile
// @tag.description The caller's profile
//
// @tag.name Dashboards
// @tag.description Role-specific dashboards
//
// @tag.name Blog
// @tag.description Posts, comments, tags and the home feed
package main
