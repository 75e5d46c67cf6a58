// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"toolshed/internal/model"
)

const toolColumns = "id, title, description, category, language, code, github_url, image_url, date_posted"

func scanTool(row interface{ Scan(...any) error }) (model.Tool, error) {
	var t model.Tool
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Category,
		&t.Language, &t.Code, &t.GithubURL, &t.ImageURL, &t.DatePosted)
	return t, err
}

// CreateToolParams holds the fields for CreateTool.
type CreateToolParams struct {
	Title       string
	Description string
	Category    string
	Language    sql.NullString
	Code        sql.NullString
	GithubURL   sql.NullString
	ImageURL    sql.NullString
	DatePosted  time.Time
}

// CreateTool inserts a new tool and returns the stored row.
func (q *Queries) CreateTool(ctx context.Context, arg CreateToolParams) (model.Tool, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO tools (title, description, category, language, code, github_url, image_url, date_posted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+toolColumns,
		arg.Title, arg.Description, arg.Category, arg.Language,
		arg.Code, arg.GithubURL, arg.ImageURL, arg.DatePosted)
	return scanTool(row)
}

// GetTool returns the tool with the given id.
func (q *Queries) GetTool(ctx context.Context, id int64) (model.Tool, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+toolColumns+` FROM tools WHERE id = ?`, id)
	return scanTool(row)
}

// UpdateToolParams holds the full row for UpdateTool. Partial-update merging
// happens in the service layer, which reads the row first.
type UpdateToolParams struct {
	ID          int64
	Title       string
	Description string
	Category    string
	Language    sql.NullString
	Code        sql.NullString
	GithubURL   sql.NullString
	ImageURL    sql.NullString
}

// UpdateTool overwrites a tool row and returns the stored result.
func (q *Queries) UpdateTool(ctx context.Context, arg UpdateToolParams) (model.Tool, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE tools
		SET title = ?, description = ?, category = ?, language = ?, code = ?, github_url = ?, image_url = ?
		WHERE id = ?
		RETURNING `+toolColumns,
		arg.Title, arg.Description, arg.Category, arg.Language,
		arg.Code, arg.GithubURL, arg.ImageURL, arg.ID)
	return scanTool(row)
}

// DeleteTool removes a tool row. Returns the number of rows deleted.
func (q *Queries) DeleteTool(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM tools WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ToolFilter narrows CountTools and ListTools. Zero values mean "no filter".
type ToolFilter struct {
	Category string
	Search   string
}

func (f ToolFilter) where() (string, []any) {
	clause := ""
	var args []any
	if f.Category != "" {
		clause += " AND category = ?"
		args = append(args, f.Category)
	}
	if f.Search != "" {
		clause += ` AND (title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR language LIKE ? ESCAPE '\')`
		p := likePattern(f.Search)
		args = append(args, p, p, p)
	}
	return clause, args
}

// CountTools returns the number of tools matching the filter.
func (q *Queries) CountTools(ctx context.Context, f ToolFilter) (int64, error) {
	clause, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tools WHERE 1=1`+clause, args...).Scan(&n)
	return n, err
}

// ListTools returns tools matching the filter, newest first.
func (q *Queries) ListTools(ctx context.Context, f ToolFilter, limit, offset int64) ([]model.Tool, error) {
	clause, args := f.where()
	args = append(args, limit, offset)
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+toolColumns+` FROM tools WHERE 1=1`+clause+`
		ORDER BY date_posted DESC, id DESC
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tools []model.Tool
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, rows.Err()
}
