// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/shelfwise/internal/auth"
	"github.com/tomtom215/shelfwise/internal/authz"
	"github.com/tomtom215/shelfwise/internal/middleware"
)

// Router sets up HTTP routes using Chi router.
type Router struct {
	handler       *Handler
	authn         *auth.Middleware
	chiMiddleware *ChiMiddleware
	swagger       bool
}

// NewRouter creates a router. chiMw may be nil for the defaults.
func NewRouter(handler *Handler, authn *auth.Middleware, chiMw *ChiMiddleware) *Router {
	if chiMw == nil {
		chiMw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		authn:         authn,
		chiMiddleware: chiMw,
		swagger:       handler.config.Server.SwaggerEnabled,
	}
}

// SetupChi builds the chi handler tree.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	guard := h.Guard()

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method \""+r.Method+"\" not allowed.")
	})

	// ========================
	// Observability
	// ========================
	r.With(APISecurityHeaders()).Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	if router.swagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
			httpSwagger.DeepLinking(true),
			httpSwagger.DocExpansion("list"),
			httpSwagger.DomID("swagger-ui"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chimiddleware.Compress(5))
		r.Use(middleware.PrometheusMetrics)
		r.Use(h.PerfMon().Middleware)
		r.Use(router.authn.Authenticate)

		// ========================
		// Credentials
		// ========================
		r.Route("/auth", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimitAuth()).Post("/token", h.IssueToken)
			r.With(router.chiMiddleware.RateLimitAuth()).Post("/login", h.Login)
			r.With(router.chiMiddleware.RateLimitAuth()).Post("/register", h.Register)
			r.Get("/me", h.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitAPI())

			// ========================
			// Catalog
			// ========================
			r.Route("/books", func(r chi.Router) {
				r.Get("/", h.BookList)
				r.With(guard.Require(authz.KindBook, authz.ActionCreate)).Post("/", h.BookCreate)
				r.Get("/{id}", h.BookGet)
				r.Put("/{id}", h.BookUpdate)
				r.Patch("/{id}", h.BookUpdate)
				r.Delete("/{id}", h.BookDelete)
			})

			r.Route("/authors", func(r chi.Router) {
				r.Get("/", h.AuthorList)
				r.With(guard.Require(authz.KindAuthor, authz.ActionCreate)).Post("/", h.AuthorCreate)
				r.Get("/{id}", h.AuthorGet)
				r.Put("/{id}", h.AuthorUpdate)
				r.Patch("/{id}", h.AuthorUpdate)
				r.Delete("/{id}", h.AuthorDelete)
				r.Get("/{id}/books", h.AuthorBooks)
			})

			r.Route("/my/books", func(r chi.Router) {
				r.With(guard.Require(authz.KindOwnedBook, authz.ActionRead)).Get("/", h.MyBookList)
				r.With(guard.Require(authz.KindOwnedBook, authz.ActionCreate)).Post("/", h.MyBookCreate)
				r.Get("/{id}", h.MyBookGet)
				r.Put("/{id}", h.MyBookUpdate)
				r.Patch("/{id}", h.MyBookUpdate)
				r.Delete("/{id}", h.MyBookDelete)
			})

			// ========================
			// Libraries
			// ========================
			r.Route("/libraries", func(r chi.Router) {
				r.Get("/", h.LibraryList)
				r.With(guard.Require(authz.KindLibrary, authz.ActionCreate)).Post("/", h.LibraryCreate)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.LibraryGet)
					r.Get("/books", h.LibraryBooks)
					r.Get("/librarian", h.LibrarianGet)

					r.Group(func(r chi.Router) {
						r.Use(guard.RequireForMethod(authz.KindLibrary))
						r.Put("/", h.LibraryUpdate)
						r.Patch("/", h.LibraryUpdate)
						r.Delete("/", h.LibraryDelete)
					})
					r.With(guard.Require(authz.KindLibrary, authz.ActionUpdate)).Put("/books/{bookID}", h.LibraryAddBook)
					r.With(guard.Require(authz.KindLibrary, authz.ActionUpdate)).Delete("/books/{bookID}", h.LibraryRemoveBook)
					r.With(guard.Require(authz.KindLibrarian, authz.ActionUpdate)).Put("/librarian", h.LibrarianAssign)
				})
			})

			// ========================
			// Users and profiles
			// ========================
			r.Route("/users", func(r chi.Router) {
				r.With(guard.Require(authz.KindUser, authz.ActionRead)).Get("/", h.UserList)
				r.Get("/{id}", h.UserGet)
				r.With(guard.Require(authz.KindUser, authz.ActionUpdate)).Put("/{id}/role", h.UserSetRole)
			})

			r.Get("/profile", h.ProfileGet)
			r.Put("/profile", h.ProfileUpdate)
			r.Patch("/profile", h.ProfileUpdate)

			r.Get("/dashboards/{role}", h.Dashboard)

			// ========================
			// Blog
			// ========================
			r.Route("/posts", func(r chi.Router) {
				r.Get("/", h.PostList)
				r.With(guard.Require(authz.KindPost, authz.ActionCreate)).Post("/", h.PostCreate)
				r.Get("/{id}", h.PostGet)
				r.Put("/{id}", h.PostUpdate)
				r.Patch("/{id}", h.PostUpdate)
				r.Delete("/{id}", h.PostDelete)
				r.Get("/{id}/comments", h.PostComments)
				r.With(guard.Require(authz.KindComment, authz.ActionCreate)).Post("/{id}/comments", h.CommentCreate)
			})

			r.Route("/comments", func(r chi.Router) {
				r.Get("/{id}", h.CommentGet)
				r.Put("/{id}", h.CommentUpdate)
				r.Patch("/{id}", h.CommentUpdate)
				r.Delete("/{id}", h.CommentDelete)
			})

			r.Get("/tags", h.TagList)
			r.Get("/tags/{name}/posts", h.TagPosts)
			r.Get("/feed", h.Feed)
		})
	})

	return r
}
