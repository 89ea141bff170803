// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package models

import "time"

// Post is a blog entry. PublishedDate is set once, at creation.
type Post struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	PublishedDate  time.Time `json:"published_date"`
	AuthorID       int64     `json:"author"`
	AuthorUsername string    `json:"author_username,omitempty"`
	Tags           []string  `json:"tags"`
}

// OwnerID returns the post author.
func (p *Post) OwnerID() *int64 { return &p.AuthorID }

// Comment belongs to a post. Content is never empty after trimming.
type Comment struct {
	ID             int64     `json:"id"`
	PostID         int64     `json:"post"`
	AuthorID       int64     `json:"author"`
	AuthorUsername string    `json:"author_username,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OwnerID returns the comment author.
func (c *Comment) OwnerID() *int64 { return &c.AuthorID }

// Tag labels posts.
type Tag struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	PostCount int    `json:"post_count"`
}

// PostFilter holds the list filters of the post endpoint.
type PostFilter struct {
	Tag      string
	Search   string
	AuthorID *int64
	Limit    int
}

// Feed is the home page payload: the latest posts and comments.
type Feed struct {
	Posts    []Post    `json:"posts"`
	Comments []Comment `json:"comments"`
}
