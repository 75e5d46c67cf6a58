// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"toolshed/internal/media"
	"toolshed/internal/model"
	"toolshed/internal/store"
)

// GalleryUpload holds the fields for uploading a gallery file.
type GalleryUpload struct {
	Filename    string
	FileType    string
	Description string
}

// GalleryPatch holds partial updates for a gallery file record.
type GalleryPatch struct {
	FileType    *string
	Description *string
}

// GalleryService is the content repository for gallery files.
type GalleryService struct {
	queries *store.Queries
	gateway media.Gateway
}

// NewGalleryService creates a new GalleryService.
func NewGalleryService(db *sql.DB, gateway media.Gateway) *GalleryService {
	return &GalleryService{queries: store.New(db), gateway: gateway}
}

// Upload stores the file through the media gateway and records it. The stored
// reference, not the client name, is the unique key. If the database insert
// fails the stored file is released again so no orphan blob remains.
func (s *GalleryService) Upload(ctx context.Context, src io.Reader, up GalleryUpload) (model.GalleryFile, error) {
	v := validation{}
	if strings.TrimSpace(up.Filename) == "" {
		v["file"] = "a file is required"
	}
	if !model.ValidFileType(up.FileType) {
		v["file_type"] = "unknown file type"
	}
	if err := v.err(); err != nil {
		return model.GalleryFile{}, err
	}

	stored, err := s.gateway.Store(ctx, src, up.Filename, media.GalleryPolicy())
	if err != nil {
		return model.GalleryFile{}, err
	}

	file, err := s.queries.CreateGalleryFile(ctx, store.CreateGalleryFileParams{
		Filename:    up.Filename,
		StoredRef:   stored.Ref,
		FileType:    up.FileType,
		Description: nullString(up.Description),
		Size:        stored.Size,
		UploadDate:  time.Now(),
	})
	if err != nil {
		s.gateway.Release(ctx, stored.Ref)
		return model.GalleryFile{}, fmt.Errorf("recording gallery file: %w", err)
	}
	return file, nil
}

// Update applies a partial update to the mutable record fields.
func (s *GalleryService) Update(ctx context.Context, id int64, patch GalleryPatch) (model.GalleryFile, error) {
	file, err := s.Get(ctx, id)
	if err != nil {
		return model.GalleryFile{}, err
	}

	v := validation{}
	if patch.FileType != nil {
		if !model.ValidFileType(*patch.FileType) {
			v["file_type"] = "unknown file type"
		} else {
			file.FileType = *patch.FileType
		}
	}
	if patch.Description != nil {
		file.Description = nullString(*patch.Description)
	}
	if err := v.err(); err != nil {
		return model.GalleryFile{}, err
	}

	updated, err := s.queries.UpdateGalleryFile(ctx, store.UpdateGalleryFileParams{
		ID:          file.ID,
		FileType:    file.FileType,
		Description: file.Description,
	})
	if err != nil {
		return model.GalleryFile{}, fmt.Errorf("updating gallery file: %w", err)
	}
	return updated, nil
}

// Delete removes the record and releases the stored file. A failed release
// is logged by the gateway, never fatal to the delete.
func (s *GalleryService) Delete(ctx context.Context, id int64) error {
	file, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.queries.DeleteGalleryFile(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting gallery file: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.gateway.Release(ctx, file.StoredRef)
	return nil
}

// Get returns the gallery file with the given id, or ErrNotFound.
func (s *GalleryService) Get(ctx context.Context, id int64) (model.GalleryFile, error) {
	file, err := s.queries.GetGalleryFile(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.GalleryFile{}, ErrNotFound
	}
	return file, err
}

// List returns one page of gallery files matching the filter, newest first.
func (s *GalleryService) List(ctx context.Context, filter store.GalleryFilter, page ListPage) (ListResult[model.GalleryFile], error) {
	page = page.normalize()
	total, err := s.queries.CountGalleryFiles(ctx, filter)
	if err != nil {
		return ListResult[model.GalleryFile]{}, fmt.Errorf("counting gallery files: %w", err)
	}
	limit, offset := page.limitOffset()
	items, err := s.queries.ListGalleryFiles(ctx, filter, limit, offset)
	if err != nil {
		return ListResult[model.GalleryFile]{}, fmt.Errorf("listing gallery files: %w", err)
	}
	return newListResult(items, total, page.PageSize), nil
}

// Count returns the total number of gallery files.
func (s *GalleryService) Count(ctx context.Context) (int64, error) {
	return s.queries.CountGalleryFiles(ctx, store.GalleryFilter{})
}
