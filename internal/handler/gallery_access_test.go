// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"toolshed/internal/media"
	"toolshed/internal/middleware"
	"toolshed/internal/model"
	"toolshed/internal/render"
	"toolshed/internal/service"
	"toolshed/internal/session"
	"toolshed/internal/testutil"
	"toolshed/web"
)

// galleryFixture wires a frontend handler the way main does: a public images
// store served under /uploads and a separate gallery store that only the
// gated route can reach.
type galleryFixture struct {
	handler *FrontendHandler
	router  chi.Router
	file    model.GalleryFile
}

const galleryFileBody = "secret member notes"

func idString(id int64) string { return strconv.FormatInt(id, 10) }

func newGalleryFixture(t *testing.T) *galleryFixture {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	uploadsDir := t.TempDir()
	images, err := media.NewLocalStore(uploadsDir, "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore(uploads): %v", err)
	}
	galleryFiles, err := media.NewLocalStore(t.TempDir(), "/gallery/file")
	if err != nil {
		t.Fatalf("NewLocalStore(gallery): %v", err)
	}

	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("locating templates: %v", err)
	}
	renderer, err := render.New(templates)
	if err != nil {
		t.Fatalf("parsing templates: %v", err)
	}

	sm := session.New(db, true)
	fh := NewFrontendHandler(db, images, galleryFiles, renderer, sm)

	svc := service.NewGalleryService(db, galleryFiles)
	file, err := svc.Upload(context.Background(), strings.NewReader(galleryFileBody), service.GalleryUpload{
		Filename: "notes.txt",
		FileType: model.FileTypeCode,
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.LoadUser(sm, db))
	r.Get("/gallery", fh.Gallery)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/gallery/file/{id}", fh.GalleryFile)
	})
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(uploadsDir))))

	return &galleryFixture{handler: fh, router: r, file: file}
}

func (f *galleryFixture) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGalleryListingIsPublic(t *testing.T) {
	f := newGalleryFixture(t)

	rec := f.get("/gallery")
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous /gallery = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "notes.txt") {
		t.Error("listing does not show the uploaded file")
	}
}

func TestGalleryFileRequiresAuth(t *testing.T) {
	f := newGalleryFixture(t)

	rec := f.get("/gallery/file/" + idString(f.file.ID))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Errorf("anonymous file fetch = %d -> %q, want 303 -> /login",
			rec.Code, rec.Header().Get("Location"))
	}
	if strings.Contains(rec.Body.String(), galleryFileBody) {
		t.Error("file bytes leaked to an anonymous request")
	}
}

func TestGalleryFileNotUnderPublicUploads(t *testing.T) {
	f := newGalleryFixture(t)

	// The stored reference must not be fetchable through the public file
	// server, with or without a session.
	rec := f.get("/uploads/" + f.file.StoredRef)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /uploads/%s = %d, want 404", f.file.StoredRef, rec.Code)
	}
}

func TestGalleryFileDelivery(t *testing.T) {
	f := newGalleryFixture(t)

	// A signed-in member goes through the gated route and gets the bytes.
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), middleware.ContextKeyUser,
				model.User{ID: 7, Username: "member", Role: model.RoleUser})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Use(middleware.RequireAuth)
	r.Get("/gallery/file/{id}", f.handler.GalleryFile)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gallery/file/"+idString(f.file.ID), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated file fetch = %d, want 200", rec.Code)
	}
	if rec.Body.String() != galleryFileBody {
		t.Errorf("body = %q, want the stored file content", rec.Body.String())
	}
}
