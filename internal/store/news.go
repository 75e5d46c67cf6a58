// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"toolshed/internal/model"
)

const newsColumns = "id, title, slug, excerpt, content, image_url, category, date_posted"

func scanNews(row interface{ Scan(...any) error }) (model.News, error) {
	var n model.News
	err := row.Scan(&n.ID, &n.Title, &n.Slug, &n.Excerpt, &n.Content,
		&n.ImageURL, &n.Category, &n.DatePosted)
	return n, err
}

// CreateNewsParams holds the fields for CreateNews.
type CreateNewsParams struct {
	Title      string
	Slug       string
	Excerpt    sql.NullString
	Content    string
	ImageURL   sql.NullString
	Category   string
	DatePosted time.Time
}

// CreateNews inserts a news item and returns the stored row.
func (q *Queries) CreateNews(ctx context.Context, arg CreateNewsParams) (model.News, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO news (title, slug, excerpt, content, image_url, category, date_posted)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+newsColumns,
		arg.Title, arg.Slug, arg.Excerpt, arg.Content, arg.ImageURL, arg.Category, arg.DatePosted)
	return scanNews(row)
}

// GetNews returns the news item with the given id.
func (q *Queries) GetNews(ctx context.Context, id int64) (model.News, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+newsColumns+` FROM news WHERE id = ?`, id)
	return scanNews(row)
}

// GetNewsBySlug returns the news item with the given slug.
func (q *Queries) GetNewsBySlug(ctx context.Context, slug string) (model.News, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+newsColumns+` FROM news WHERE slug = ?`, slug)
	return scanNews(row)
}

// NewsSlugExists reports whether a slug is taken, optionally excluding one id.
func (q *Queries) NewsSlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM news WHERE slug = ? AND id != ?`, slug, excludeID).Scan(&n)
	return n > 0, err
}

// UpdateNewsParams holds the full row for UpdateNews.
type UpdateNewsParams struct {
	ID       int64
	Title    string
	Slug     string
	Excerpt  sql.NullString
	Content  string
	ImageURL sql.NullString
	Category string
}

// UpdateNews overwrites a news row and returns the stored result.
func (q *Queries) UpdateNews(ctx context.Context, arg UpdateNewsParams) (model.News, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE news
		SET title = ?, slug = ?, excerpt = ?, content = ?, image_url = ?, category = ?
		WHERE id = ?
		RETURNING `+newsColumns,
		arg.Title, arg.Slug, arg.Excerpt, arg.Content, arg.ImageURL, arg.Category, arg.ID)
	return scanNews(row)
}

// DeleteNews removes a news row. Returns the number of rows deleted.
func (q *Queries) DeleteNews(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM news WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// NewsFilter narrows CountNews and ListNews.
type NewsFilter struct {
	Category string
	Search   string
}

func (f NewsFilter) where() (string, []any) {
	clause := ""
	var args []any
	if f.Category != "" {
		clause += " AND category = ?"
		args = append(args, f.Category)
	}
	if f.Search != "" {
		clause += ` AND (title LIKE ? ESCAPE '\' OR excerpt LIKE ? ESCAPE '\')`
		p := likePattern(f.Search)
		args = append(args, p, p)
	}
	return clause, args
}

// CountNews returns the number of news items matching the filter.
func (q *Queries) CountNews(ctx context.Context, f NewsFilter) (int64, error) {
	clause, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news WHERE 1=1`+clause, args...).Scan(&n)
	return n, err
}

// ListNews returns news items matching the filter, newest first.
func (q *Queries) ListNews(ctx context.Context, f NewsFilter, limit, offset int64) ([]model.News, error) {
	clause, args := f.where()
	args = append(args, limit, offset)
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+newsColumns+` FROM news WHERE 1=1`+clause+`
		ORDER BY date_posted DESC, id DESC
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.News
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}
