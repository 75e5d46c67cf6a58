// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"toolshed/internal/model"
)

const galleryColumns = "id, filename, stored_ref, file_type, description, size, upload_date"

func scanGalleryFile(row interface{ Scan(...any) error }) (model.GalleryFile, error) {
	var g model.GalleryFile
	err := row.Scan(&g.ID, &g.Filename, &g.StoredRef, &g.FileType,
		&g.Description, &g.Size, &g.UploadDate)
	return g, err
}

// CreateGalleryFileParams holds the fields for CreateGalleryFile.
type CreateGalleryFileParams struct {
	Filename    string
	StoredRef   string
	FileType    string
	Description sql.NullString
	Size        int64
	UploadDate  time.Time
}

// CreateGalleryFile inserts a gallery file record and returns the stored row.
func (q *Queries) CreateGalleryFile(ctx context.Context, arg CreateGalleryFileParams) (model.GalleryFile, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO gallery_files (filename, stored_ref, file_type, description, size, upload_date)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+galleryColumns,
		arg.Filename, arg.StoredRef, arg.FileType, arg.Description, arg.Size, arg.UploadDate)
	return scanGalleryFile(row)
}

// GetGalleryFile returns the gallery file with the given id.
func (q *Queries) GetGalleryFile(ctx context.Context, id int64) (model.GalleryFile, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+galleryColumns+` FROM gallery_files WHERE id = ?`, id)
	return scanGalleryFile(row)
}

// UpdateGalleryFileParams holds the mutable fields for UpdateGalleryFile.
// Filename, stored reference and size are fixed at upload time.
type UpdateGalleryFileParams struct {
	ID          int64
	FileType    string
	Description sql.NullString
}

// UpdateGalleryFile overwrites the mutable gallery columns and returns the row.
func (q *Queries) UpdateGalleryFile(ctx context.Context, arg UpdateGalleryFileParams) (model.GalleryFile, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE gallery_files SET file_type = ?, description = ? WHERE id = ?
		RETURNING `+galleryColumns,
		arg.FileType, arg.Description, arg.ID)
	return scanGalleryFile(row)
}

// DeleteGalleryFile removes a gallery file row. Returns the number of rows deleted.
func (q *Queries) DeleteGalleryFile(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM gallery_files WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GalleryFilter narrows CountGalleryFiles and ListGalleryFiles.
type GalleryFilter struct {
	FileType string
	Search   string
}

func (f GalleryFilter) where() (string, []any) {
	clause := ""
	var args []any
	if f.FileType != "" {
		clause += " AND file_type = ?"
		args = append(args, f.FileType)
	}
	if f.Search != "" {
		clause += ` AND (filename LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`
		p := likePattern(f.Search)
		args = append(args, p, p)
	}
	return clause, args
}

// CountGalleryFiles returns the number of gallery files matching the filter.
func (q *Queries) CountGalleryFiles(ctx context.Context, f GalleryFilter) (int64, error) {
	clause, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gallery_files WHERE 1=1`+clause, args...).Scan(&n)
	return n, err
}

// ListGalleryFiles returns gallery files matching the filter, newest first.
func (q *Queries) ListGalleryFiles(ctx context.Context, f GalleryFilter, limit, offset int64) ([]model.GalleryFile, error) {
	clause, args := f.where()
	args = append(args, limit, offset)
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+galleryColumns+` FROM gallery_files WHERE 1=1`+clause+`
		ORDER BY upload_date DESC, id DESC
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []model.GalleryFile
	for rows.Next() {
		g, err := scanGalleryFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, g)
	}
	return files, rows.Err()
}
