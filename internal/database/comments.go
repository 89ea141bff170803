// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/shelfwise/internal/models"
)

const commentSelect = `SELECT c.id, c.post_id, c.author_id, COALESCE(u.username, ''), c.content, c.created_at, c.updated_at
	FROM comments c LEFT JOIN users u ON u.id = c.author_id`

func scanCommentRow(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Comment, error) {
	c := &models.Comment{}
	if err := scanner.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorUsername, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateComment attaches c to its post. ErrNotFound when the post is gone.
func (db *DB) CreateComment(ctx context.Context, c *models.Comment) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.idMu.Lock()
	defer db.idMu.Unlock()

	now := db.now()
	err := db.withTx(ctx, func(r runner) error {
		ok, err := r.exists(ctx, `SELECT 1 FROM posts WHERE id = ?`, c.PostID)
		if err != nil {
			return fmt.Errorf("failed to check post %d: %w", c.PostID, err)
		}
		if !ok {
			return ErrNotFound
		}
		id, err := allocateID(ctx, r, "comments")
		if err != nil {
			return err
		}
		if _, err := r.exec(ctx,
			`INSERT INTO comments (id, post_id, author_id, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			id, c.PostID, c.AuthorID, c.Content, now, now); err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		}
		c.ID = id
		return nil
	})
	if err != nil {
		return err
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// GetComment returns one comment, or ErrNotFound.
func (db *DB) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	c, err := scanCommentRow(db.run().queryRow(ctx, commentSelect+` WHERE c.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment %d: %w", id, err)
	}
	return c, nil
}

// ListComments returns a post's comments, newest first. A zero postID lists
// across all posts; limit <= 0 means no limit.
func (db *DB) ListComments(ctx context.Context, postID int64, limit int) ([]models.Comment, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	w := &whereBuilder{}
	if postID != 0 {
		w.add("c.post_id = ?", postID)
	}
	query := commentSelect + w.sql() + ` ORDER BY c.created_at DESC, c.id DESC`
	args := w.args
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.run().query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer closeQuietly(rows)

	comments := make([]models.Comment, 0)
	for rows.Next() {
		c, err := scanCommentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}

// UpdateComment rewrites the content and bumps updated_at.
func (db *DB) UpdateComment(ctx context.Context, c *models.Comment) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := db.now()
	err := db.run().execAffecting(ctx, `UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`,
		c.Content, now, c.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update comment %d: %w", c.ID, err)
	}
	c.UpdatedAt = now
	return nil
}

// DeleteComment removes one comment.
func (db *DB) DeleteComment(ctx context.Context, id int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	err := db.run().execAffecting(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete comment %d: %w", id, err)
	}
	return err
}

// GetFeed returns the latest posts and comments for the home page.
func (db *DB) GetFeed(ctx context.Context, limit int) (*models.Feed, error) {
	posts, err := db.ListPosts(ctx, models.PostFilter{Limit: limit})
	if err != nil {
		return nil, err
	}
	comments, err := db.ListComments(ctx, 0, limit)
	if err != nil {
		return nil, err
	}
	return &models.Feed{Posts: posts, Comments: comments}, nil
}
