// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"toolshed/internal/model"
)

const postColumns = "id, title, slug, excerpt, content, featured_image, tags, published, date_posted"

func scanPost(row interface{ Scan(...any) error }) (model.BlogPost, error) {
	var p model.BlogPost
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content,
		&p.FeaturedImage, &p.Tags, &p.Published, &p.DatePosted)
	return p, err
}

// CreatePostParams holds the fields for CreatePost.
type CreatePostParams struct {
	Title         string
	Slug          string
	Excerpt       sql.NullString
	Content       string
	FeaturedImage sql.NullString
	Tags          sql.NullString
	Published     bool
	DatePosted    time.Time
}

// CreatePost inserts a new blog post and returns the stored row.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (model.BlogPost, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO blog_posts (title, slug, excerpt, content, featured_image, tags, published, date_posted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+postColumns,
		arg.Title, arg.Slug, arg.Excerpt, arg.Content,
		arg.FeaturedImage, arg.Tags, arg.Published, arg.DatePosted)
	return scanPost(row)
}

// GetPost returns the blog post with the given id.
func (q *Queries) GetPost(ctx context.Context, id int64) (model.BlogPost, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE id = ?`, id)
	return scanPost(row)
}

// GetPublishedPostBySlug returns the published blog post with the given slug.
func (q *Queries) GetPublishedPostBySlug(ctx context.Context, slug string) (model.BlogPost, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM blog_posts WHERE slug = ? AND published = 1`, slug)
	return scanPost(row)
}

// UpdatePostParams holds the full row for UpdatePost.
type UpdatePostParams struct {
	ID            int64
	Title         string
	Slug          string
	Excerpt       sql.NullString
	Content       string
	FeaturedImage sql.NullString
	Tags          sql.NullString
	Published     bool
}

// UpdatePost overwrites a blog post row and returns the stored result.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) (model.BlogPost, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE blog_posts
		SET title = ?, slug = ?, excerpt = ?, content = ?, featured_image = ?, tags = ?, published = ?
		WHERE id = ?
		RETURNING `+postColumns,
		arg.Title, arg.Slug, arg.Excerpt, arg.Content,
		arg.FeaturedImage, arg.Tags, arg.Published, arg.ID)
	return scanPost(row)
}

// DeletePost removes a blog post row. Returns the number of rows deleted.
func (q *Queries) DeletePost(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PostFilter narrows CountPosts and ListPosts. PublishedOnly limits the
// result to published posts; Search matches title, excerpt and tags.
type PostFilter struct {
	PublishedOnly bool
	Search        string
}

func (f PostFilter) where() (string, []any) {
	clause := ""
	var args []any
	if f.PublishedOnly {
		clause += " AND published = 1"
	}
	if f.Search != "" {
		clause += ` AND (title LIKE ? ESCAPE '\' OR excerpt LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\')`
		p := likePattern(f.Search)
		args = append(args, p, p, p)
	}
	return clause, args
}

// CountPosts returns the number of blog posts matching the filter.
func (q *Queries) CountPosts(ctx context.Context, f PostFilter) (int64, error) {
	clause, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_posts WHERE 1=1`+clause, args...).Scan(&n)
	return n, err
}

// ListPosts returns blog posts matching the filter, newest first.
func (q *Queries) ListPosts(ctx context.Context, f PostFilter, limit, offset int64) ([]model.BlogPost, error) {
	clause, args := f.where()
	args = append(args, limit, offset)
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM blog_posts WHERE 1=1`+clause+`
		ORDER BY date_posted DESC, id DESC
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
