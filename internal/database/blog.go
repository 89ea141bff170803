// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
blog.go - Posts and Tags

Key Operations:
  - CreatePost / UpdatePost: tags are resolved by name and created on demand
  - ListPosts: newest first, optional tag, author and free-text filters
  - DeletePost: removes comments and tag links with the post
  - ListTags / GetTagByName: tag directory with post counts

Tag links are reconciled by difference so an unchanged tag keeps its row.
*/

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/shelfwise/internal/models"
)

const postSelect = `SELECT p.id, p.title, p.content, p.published_date, p.author_id, COALESCE(u.username, '')
	FROM posts p LEFT JOIN users u ON u.id = p.author_id`

func scanPostRow(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Post, error) {
	p := &models.Post{}
	if err := scanner.Scan(&p.ID, &p.Title, &p.Content, &p.PublishedDate, &p.AuthorID, &p.AuthorUsername); err != nil {
		return nil, err
	}
	p.Tags = []string{}
	return p, nil
}

// CreatePost inserts p with published_date set to now and links its tags.
func (db *DB) CreatePost(ctx context.Context, p *models.Post) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	p.Tags = normalizeTags(p.Tags)

	db.idMu.Lock()
	defer db.idMu.Unlock()

	published := db.now()
	err := db.withTx(ctx, func(r runner) error {
		id, err := allocateID(ctx, r, "posts")
		if err != nil {
			return err
		}
		if _, err := r.exec(ctx,
			`INSERT INTO posts (id, title, content, published_date, author_id) VALUES (?, ?, ?, ?, ?)`,
			id, p.Title, p.Content, published, p.AuthorID); err != nil {
			return fmt.Errorf("failed to insert post: %w", err)
		}
		if err := syncPostTags(ctx, r, id, p.Tags); err != nil {
			return err
		}
		p.ID = id
		return nil
	})
	if err != nil {
		return err
	}
	p.PublishedDate = published
	if p.AuthorUsername == "" {
		if u, err := db.GetUserByID(ctx, p.AuthorID); err == nil {
			p.AuthorUsername = u.Username
		}
	}
	return nil
}

// GetPost returns the post with its tags, or ErrNotFound.
func (db *DB) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	p, err := scanPostRow(db.run().queryRow(ctx, postSelect+` WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	posts := []models.Post{*p}
	if err := db.attachTags(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// ListPosts returns posts newest first.
func (db *DB) ListPosts(ctx context.Context, f models.PostFilter) ([]models.Post, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	w := &whereBuilder{}
	if f.AuthorID != nil {
		w.add("p.author_id = ?", *f.AuthorID)
	}
	if tag := strings.TrimSpace(f.Tag); tag != "" {
		w.add(`EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = p.id AND LOWER(t.name) = LOWER(?))`, tag)
	}
	for _, term := range searchTerms(f.Search) {
		pattern := containsPattern(term)
		w.add(`(`+likeClause("p.title")+` OR `+likeClause("p.content")+` OR EXISTS (
			SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = p.id AND `+likeClause("t.name")+`))`,
			pattern, pattern, pattern)
	}

	query := postSelect + w.sql() + ` ORDER BY p.published_date DESC, p.id DESC`
	args := w.args
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := db.run().query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	posts := make([]models.Post, 0)
	for rows.Next() {
		p, err := scanPostRow(rows)
		if err != nil {
			closeQuietly(rows)
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		closeQuietly(rows)
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	closeQuietly(rows)

	if err := db.attachTags(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// attachTags loads tag names for all posts in one query.
func (db *DB) attachTags(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]int64, len(posts))
	index := make(map[int64]int, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		index[posts[i].ID] = i
	}

	rows, err := db.run().query(ctx,
		`SELECT pt.post_id, t.name FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (`+placeholders(len(ids))+`) ORDER BY t.name`,
		int64Args(ids)...)
	if err != nil {
		return fmt.Errorf("failed to load post tags: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var postID int64
		var name string
		if err := rows.Scan(&postID, &name); err != nil {
			return fmt.Errorf("failed to scan post tag: %w", err)
		}
		i := index[postID]
		posts[i].Tags = append(posts[i].Tags, name)
	}
	return rows.Err()
}

// UpdatePost writes title and content. Tags are replaced only when p.Tags
// is non-nil.
func (db *DB) UpdatePost(ctx context.Context, p *models.Post) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if p.Tags != nil {
		p.Tags = normalizeTags(p.Tags)
		db.idMu.Lock()
		defer db.idMu.Unlock()
	}

	return db.withTx(ctx, func(r runner) error {
		if err := r.execAffecting(ctx, `UPDATE posts SET title = ?, content = ? WHERE id = ?`,
			p.Title, p.Content, p.ID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return err
			}
			return fmt.Errorf("failed to update post %d: %w", p.ID, err)
		}
		if p.Tags == nil {
			return nil
		}
		return syncPostTags(ctx, r, p.ID, p.Tags)
	})
}

// DeletePost removes the post with its comments and tag links. Tags
// themselves are kept.
func (db *DB) DeletePost(ctx context.Context, id int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(r runner) error {
		if _, err := r.exec(ctx, `DELETE FROM comments WHERE post_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete comments of post %d: %w", id, err)
		}
		if _, err := r.exec(ctx, `DELETE FROM post_tags WHERE post_id = ?`, id); err != nil {
			return fmt.Errorf("failed to unlink tags of post %d: %w", id, err)
		}
		if err := r.execAffecting(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return err
			}
			return fmt.Errorf("failed to delete post %d: %w", id, err)
		}
		return nil
	})
}

// syncPostTags makes the post's tag links equal names. Missing tags are
// created; the caller holds db.idMu.
func syncPostTags(ctx context.Context, r runner, postID int64, names []string) error {
	want := make(map[int64]bool, len(names))
	for _, name := range names {
		tagID, err := getOrCreateTag(ctx, r, name)
		if err != nil {
			return err
		}
		want[tagID] = true
	}

	rows, err := r.query(ctx, `SELECT tag_id FROM post_tags WHERE post_id = ?`, postID)
	if err != nil {
		return fmt.Errorf("failed to read post tags: %w", err)
	}
	have := make(map[int64]bool)
	for rows.Next() {
		var tagID int64
		if err := rows.Scan(&tagID); err != nil {
			closeQuietly(rows)
			return fmt.Errorf("failed to scan post tag: %w", err)
		}
		have[tagID] = true
	}
	if err := rows.Err(); err != nil {
		closeQuietly(rows)
		return fmt.Errorf("failed to iterate post tags: %w", err)
	}
	closeQuietly(rows)

	for tagID := range want {
		if have[tagID] {
			continue
		}
		if _, err := r.exec(ctx, `INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)`, postID, tagID); err != nil {
			return fmt.Errorf("failed to link tag %d: %w", tagID, err)
		}
	}
	for tagID := range have {
		if want[tagID] {
			continue
		}
		if _, err := r.exec(ctx, `DELETE FROM post_tags WHERE post_id = ? AND tag_id = ?`, postID, tagID); err != nil {
			return fmt.Errorf("failed to unlink tag %d: %w", tagID, err)
		}
	}
	return nil
}

func getOrCreateTag(ctx context.Context, r runner, name string) (int64, error) {
	var id int64
	err := r.queryRow(ctx, `SELECT id FROM tags WHERE LOWER(name) = LOWER(?)`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up tag %q: %w", name, err)
	}
	id, err = allocateID(ctx, r, "tags")
	if err != nil {
		return 0, err
	}
	if _, err := r.exec(ctx, `INSERT INTO tags (id, name) VALUES (?, ?)`, id, name); err != nil {
		if isUniqueConstraintError(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("failed to create tag %q: %w", name, err)
	}
	return id, nil
}

// normalizeTags trims and lowercases names, drops blanks and removes
// duplicates.
func normalizeTags(names []string) []string {
	if names == nil {
		return nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ListTags returns every tag with the number of posts carrying it.
func (db *DB) ListTags(ctx context.Context) ([]models.Tag, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.run().query(ctx, `SELECT t.id, t.name, COUNT(pt.post_id)
		FROM tags t LEFT JOIN post_tags pt ON pt.tag_id = t.id
		GROUP BY t.id, t.name ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer closeQuietly(rows)

	tags := make([]models.Tag, 0)
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.PostCount); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}

// GetTagByName looks a tag up case-insensitively.
func (db *DB) GetTagByName(ctx context.Context, name string) (*models.Tag, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	t := &models.Tag{}
	err := db.run().queryRow(ctx, `SELECT t.id, t.name, COUNT(pt.post_id)
		FROM tags t LEFT JOIN post_tags pt ON pt.tag_id = t.id
		WHERE LOWER(t.name) = LOWER(?) GROUP BY t.id, t.name`, strings.TrimSpace(name)).
		Scan(&t.ID, &t.Name, &t.PostCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag %q: %w", name, err)
	}
	return t, nil
}
