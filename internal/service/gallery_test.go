// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"toolshed/internal/media"
	"toolshed/internal/model"
	"toolshed/internal/store"
	"toolshed/internal/testutil"
)

func TestGalleryUpload(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	gw := &fakeGateway{}
	svc := NewGalleryService(db, gw)
	ctx := context.Background()

	file, err := svc.Upload(ctx, strings.NewReader("print('hi')"), GalleryUpload{
		Filename:    "exploit.py",
		FileType:    model.FileTypeCode,
		Description: "PoC script",
	})
	require.NoError(t, err)
	require.Equal(t, "exploit.py", file.Filename)
	require.Equal(t, "ref-1", file.StoredRef)
	require.EqualValues(t, len("print('hi')"), file.Size)
	require.Equal(t, "PoC script", file.Description.String)
}

func TestGalleryUploadRejections(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	gw := &fakeGateway{}
	svc := NewGalleryService(db, gw)
	ctx := context.Background()

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := svc.Upload(ctx, strings.NewReader("MZ"), GalleryUpload{
			Filename: "malware.exe",
			FileType: model.FileTypeCode,
		})
		require.ErrorIs(t, err, media.ErrUnsupportedType)
		require.Empty(t, gw.stored)
	})

	t.Run("unknown file type", func(t *testing.T) {
		_, err := svc.Upload(ctx, strings.NewReader("x"), GalleryUpload{
			Filename: "notes.txt",
			FileType: "document",
		})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Contains(t, vErr.Fields, "file_type")
		// Validation failed before touching the gateway.
		require.Empty(t, gw.stored)
	})
}

func TestGalleryUpdate(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	svc := NewGalleryService(db, &fakeGateway{})
	ctx := context.Background()

	file, err := svc.Upload(ctx, strings.NewReader("x"), GalleryUpload{
		Filename: "shot.png",
		FileType: model.FileTypeImage,
	})
	require.NoError(t, err)

	// Only file_type and description are mutable; identity fields stay put.
	updated, err := svc.Update(ctx, file.ID, GalleryPatch{
		Description: strPtr("Login page screenshot"),
	})
	require.NoError(t, err)
	require.Equal(t, "Login page screenshot", updated.Description.String)
	require.Equal(t, file.Filename, updated.Filename)
	require.Equal(t, file.StoredRef, updated.StoredRef)
	require.Equal(t, file.FileType, updated.FileType)

	t.Run("bad file type", func(t *testing.T) {
		_, err := svc.Update(ctx, file.ID, GalleryPatch{FileType: strPtr("document")})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
	})
}

func TestGalleryDeleteReleasesStoredFile(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	gw := &fakeGateway{}
	svc := NewGalleryService(db, gw)
	ctx := context.Background()

	file, err := svc.Upload(ctx, strings.NewReader("x"), GalleryUpload{
		Filename: "demo.mp4",
		FileType: model.FileTypeVideo,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, file.ID))
	require.Equal(t, []string{file.StoredRef}, gw.released)

	require.ErrorIs(t, svc.Delete(ctx, file.ID), ErrNotFound)
}

func TestGalleryListFilter(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	svc := NewGalleryService(db, &fakeGateway{})
	ctx := context.Background()

	uploads := []GalleryUpload{
		{Filename: "recon.png", FileType: model.FileTypeImage},
		{Filename: "walkthrough.mp4", FileType: model.FileTypeVideo},
		{Filename: "scanner.go", FileType: model.FileTypeCode, Description: "port scanner"},
	}
	for _, up := range uploads {
		_, err := svc.Upload(ctx, strings.NewReader("x"), up)
		require.NoError(t, err)
	}

	t.Run("by type", func(t *testing.T) {
		result, err := svc.List(ctx, store.GalleryFilter{FileType: model.FileTypeVideo}, ListPage{})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		require.Equal(t, "walkthrough.mp4", result.Items[0].Filename)
	})

	t.Run("search filename and description", func(t *testing.T) {
		result, err := svc.List(ctx, store.GalleryFilter{Search: "scanner"}, ListPage{})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		require.Equal(t, "scanner.go", result.Items[0].Filename)
	})
}
