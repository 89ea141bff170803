// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shelfwise/internal/auth"
	"github.com/tomtom215/shelfwise/internal/authz"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/validation"
)

// PostList godoc
// @Summary List posts, newest first
// @Tags Blog
// @Produce json
// @Param tag query string false "Tag name, case-insensitive"
// @Param search query string false "Search title, content and tags"
// @Param author query int false "Author user id"
// @Success 200 {array} models.Post
// @Router /posts [get]
func (h *Handler) PostList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	fe := validation.FieldErrors{}
	q := r.URL.Query()
	f := models.PostFilter{
		Tag:      strings.TrimSpace(q.Get("tag")),
		Search:   strings.TrimSpace(q.Get("search")),
		AuthorID: queryID(r, "author", fe),
	}
	if len(fe) > 0 {
		rw.ValidationError(fe)
		return
	}

	posts, err := h.db.ListPosts(r.Context(), f)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.OK(posts)
}

// PostGet returns one post with its tags.
func (h *Handler) PostGet(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Post"))
		return
	}
	post, err := h.db.GetPost(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Post")
		return
	}
	rw.OK(post)
}

// PostCreate godoc
// @Summary Publish a post
// @Tags Blog
// @Accept json
// @Produce json
// @Param post body models.PostRequest true "Post"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Security TokenAuth
// @Router /posts [post]
func (h *Handler) PostCreate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	principal := auth.PrincipalFromContext(r.Context())

	var req models.PostRequest
	fe, ok := decodeAndCheck(w, r, &req)
	if !ok {
		return
	}
	requireFields(fe, req.Missing())

	post := &models.Post{AuthorID: principal.UserID, AuthorUsername: principal.Username}
	req.ApplyTo(post)
	if !h.validate(w, r, validation.KindPost, post, fe) {
		return
	}
	if len(fe) > 0 {
		rw.ValidationError(fe)
		return
	}

	if err := h.db.CreatePost(r.Context(), post); err != nil {
		rw.InternalError(err)
		return
	}
	rw.Created("Post created successfully", post)
}

// PostUpdate handles PUT and PATCH on /posts/{id}. Only the author may edit.
func (h *Handler) PostUpdate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.authenticateFirst(w, r, authz.ActionUpdate, authz.KindPost) {
		return
	}

	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Post"))
		return
	}
	post, err := h.db.GetPost(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Post")
		return
	}
	if !h.authorize(w, r, authz.ActionUpdate, authz.Owned(authz.KindPost, post.OwnerID())) {
		return
	}

	var req models.PostRequest
	fe, ok := decodeAndCheck(w, r, &req)
	if !ok {
		return
	}
	if isFullUpdate(r) {
		requireFields(fe, req.Missing())
	}
	// Tags are only replaced when sent.
	post.Tags = nil
	req.ApplyTo(post)
	if !h.validate(w, r, validation.KindPost, post, fe) {
		return
	}
	if len(fe) > 0 {
		rw.ValidationError(fe)
		return
	}

	if err := h.db.UpdatePost(r.Context(), post); err != nil {
		respondStoreError(rw, err, "Post")
		return
	}
	updated, err := h.db.GetPost(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Post")
		return
	}
	rw.Updated("Post updated successfully", updated)
}

// PostDelete removes a post with its comments. Only the author may delete.
func (h *Handler) PostDelete(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.authenticateFirst(w, r, authz.ActionDelete, authz.KindPost) {
		return
	}

	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Post"))
		return
	}
	post, err := h.db.GetPost(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Post")
		return
	}
	if !h.authorize(w, r, authz.ActionDelete, authz.Owned(authz.KindPost, post.OwnerID())) {
		return
	}
	if err := h.db.DeletePost(r.Context(), id); err != nil {
		respondStoreError(rw, err, "Post")
		return
	}
	rw.NoContent()
}

// PostComments lists a post's comments, newest first.
func (h *Handler) PostComments(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Post"))
		return
	}
	if _, err := h.db.GetPost(r.Context(), id); err != nil {
		respondStoreError(rw, err, "Post")
		return
	}
	comments, err := h.db.ListComments(r.Context(), id, 0)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.OK(comments)
}

// CommentCreate godoc
// @Summary Comment on a post
// @Tags Blog
// @Accept json
// @Produce json
// @Param id path int true "Post id"
// @Param comment body models.CommentRequest true "Comment"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Security TokenAuth
// @Router /posts/{id}/comments [post]
func (h *Handler) CommentCreate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	principal := auth.PrincipalFromContext(r.Context())

	postID, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Post"))
		return
	}

	var req models.CommentRequest
	fe, ok := decodeAndCheck(w, r, &req)
	if !ok {
		return
	}
	comment := &models.Comment{PostID: postID, AuthorID: principal.UserID, AuthorUsername: principal.Username}
	if req.Content == nil {
		fe.Add("content", validation.MsgRequired)
	} else {
		comment.Content = *req.Content
		if !h.validate(w, r, validation.KindComment, comment, fe) {
			return
		}
	}
	if len(fe) > 0 {
		rw.ValidationError(fe)
		return
	}

	if err := h.db.CreateComment(r.Context(), comment); err != nil {
		respondStoreError(rw, err, "Post")
		return
	}
	rw.Created("Comment created successfully", comment)
}

// CommentGet returns one comment.
func (h *Handler) CommentGet(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Comment"))
		return
	}
	comment, err := h.db.GetComment(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Comment")
		return
	}
	rw.OK(comment)
}

// loadOwnComment runs the two-phase check for a comment write.
func (h *Handler) loadOwnComment(w http.ResponseWriter, r *http.Request, action authz.Action) *models.Comment {
	rw := NewResponseWriter(w, r)
	if !h.authenticateFirst(w, r, action, authz.KindComment) {
		return nil
	}
	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Comment"))
		return nil
	}
	comment, err := h.db.GetComment(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Comment")
		return nil
	}
	if !h.authorize(w, r, action, authz.Owned(authz.KindComment, comment.OwnerID())) {
		return nil
	}
	return comment
}

// CommentUpdate handles PUT and PATCH on /comments/{id}.
func (h *Handler) CommentUpdate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	comment := h.loadOwnComment(w, r, authz.ActionUpdate)
	if comment == nil {
		return
	}

	var req models.CommentRequest
	fe, ok := decodeAndCheck(w, r, &req)
	if !ok {
		return
	}
	if req.Content == nil && isFullUpdate(r) {
		fe.Add("content", validation.MsgRequired)
	}
	if req.Content != nil {
		comment.Content = *req.Content
	}
	if !h.validate(w, r, validation.KindComment, comment, fe) {
		return
	}
	if len(fe) > 0 {
		rw.ValidationError(fe)
		return
	}

	if err := h.db.UpdateComment(r.Context(), comment); err != nil {
		respondStoreError(rw, err, "Comment")
		return
	}
	rw.Updated("Comment updated successfully", comment)
}

// CommentDelete removes a comment. Only its author may delete it.
func (h *Handler) CommentDelete(w http.ResponseWriter, r *http.Request) {
	comment := h.loadOwnComment(w, r, authz.ActionDelete)
	if comment == nil {
		return
	}
	rw := NewResponseWriter(w, r)
	if err := h.db.DeleteComment(r.Context(), comment.ID); err != nil {
		respondStoreError(rw, err, "Comment")
		return
	}
	rw.NoContent()
}

// TagList godoc
// @Summary List tags with post counts
// @Tags Blog
// @Produce json
// @Success 200 {array} models.Tag
// @Router /tags [get]
func (h *Handler) TagList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	tags, err := h.db.ListTags(r.Context())
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.OK(tags)
}

// TagPosts lists the posts carrying a tag.
func (h *Handler) TagPosts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	tag, err := h.db.GetTagByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondStoreError(rw, err, "Tag")
		return
	}
	posts, err := h.db.ListPosts(r.Context(), models.PostFilter{Tag: tag.Name})
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.OK(posts)
}

// Feed godoc
// @Summary Home feed
// @Description The latest five posts and the latest five comments
// @Tags Blog
// @Produce json
// @Success 200 {object} models.Feed
// @Router /feed [get]
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	feed, err := h.db.GetFeed(r.Context(), feedSize)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.OK(feed)
}
