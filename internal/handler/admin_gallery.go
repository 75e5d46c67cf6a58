// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"toolshed/internal/media"
	"toolshed/internal/model"
	"toolshed/internal/render"
	"toolshed/internal/service"
	"toolshed/internal/store"
)

// GalleryAdminHandler handles the admin gallery routes.
type GalleryAdminHandler struct {
	gallery        *service.GalleryService
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewGalleryAdminHandler creates a new GalleryAdminHandler.
func NewGalleryAdminHandler(db *sql.DB, gateway *media.LocalStore, renderer *render.Renderer, sm *scs.SessionManager) *GalleryAdminHandler {
	return &GalleryAdminHandler{
		gallery:        service.NewGalleryService(db, gateway),
		renderer:       renderer,
		sessionManager: sm,
	}
}

func (h *GalleryAdminHandler) base(r *http.Request, title string) BaseData {
	data := BaseData{Title: title, User: currentUser(r)}
	data.Flash, data.FlashType = popFlash(r, h.sessionManager)
	return data
}

// List displays a paginated gallery listing for admins.
func (h *GalleryAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	result, err := h.gallery.List(r.Context(),
		store.GalleryFilter{FileType: r.URL.Query().Get("type")},
		service.ListPage{Page: page, PageSize: adminPageSize})
	if err != nil {
		slog.Error("failed to list gallery", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, "admin/gallery_list", struct {
		BaseData
		Files      []model.GalleryFile
		FileTypes  []string
		Pagination Pagination
	}{
		h.base(r, "Manage gallery"),
		result.Items,
		model.GalleryFileTypes,
		BuildPagination(page, result.PageCount, result.TotalCount, "/admin/gallery", r.URL.Query()),
	})
}

// UploadForm renders the upload page.
func (h *GalleryAdminHandler) UploadForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "admin/upload_form", struct {
		BaseData
		FileTypes []string
		Errors    map[string]string
	}{h.base(r, "Upload file"), model.GalleryFileTypes, nil})
}

// Upload handles the upload form submission.
func (h *GalleryAdminHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(media.GalleryPolicy().MaxBytes); err != nil {
		flashError(w, r, h.sessionManager, "/admin/gallery/upload", "Invalid form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		flashError(w, r, h.sessionManager, "/admin/gallery/upload", "A file is required.")
		return
	}
	defer file.Close()

	_, err = h.gallery.Upload(r.Context(), file, service.GalleryUpload{
		Filename:    header.Filename,
		FileType:    r.FormValue("file_type"),
		Description: r.FormValue("description"),
	})
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			h.renderer.Render(w, "admin/upload_form", struct {
				BaseData
				FileTypes []string
				Errors    map[string]string
			}{h.base(r, "Upload file"), model.GalleryFileTypes, vErr.Fields})
		case errors.Is(err, media.ErrUnsupportedType), errors.Is(err, media.ErrFileTooLarge):
			flashError(w, r, h.sessionManager, "/admin/gallery/upload", uploadErrorMessage(err))
		default:
			slog.Error("failed to upload gallery file", "error", err)
			flashError(w, r, h.sessionManager, "/admin/gallery/upload", "Something went wrong, please try again")
		}
		return
	}

	flashSuccess(w, r, h.sessionManager, "/admin/gallery", "File uploaded successfully.")
}

// Edit renders the gallery record form pre-filled for editing.
func (h *GalleryAdminHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	file, err := h.gallery.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}

	h.renderer.Render(w, "admin/gallery_form", struct {
		BaseData
		File      model.GalleryFile
		FileTypes []string
	}{h.base(r, "Edit file"), file, model.GalleryFileTypes})
}

// Update applies the record edit form (type and description only).
func (h *GalleryAdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.sessionManager, "/admin/gallery", "Invalid form data")
		return
	}

	_, err := h.gallery.Update(r.Context(), id, service.GalleryPatch{
		FileType:    optional(r, "file_type"),
		Description: optional(r, "description"),
	})
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrNotFound):
			http.NotFound(w, r)
		case errors.As(err, &vErr):
			flashError(w, r, h.sessionManager, "/admin/gallery", vErr.Error())
		default:
			slog.Error("failed to update gallery file", "error", err)
			flashError(w, r, h.sessionManager, "/admin/gallery", "Something went wrong, please try again")
		}
		return
	}

	flashSuccess(w, r, h.sessionManager, "/admin/gallery", "File updated.")
}

// Delete removes a gallery record and releases its stored file.
func (h *GalleryAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := h.gallery.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to delete gallery file", "error", err)
		flashError(w, r, h.sessionManager, "/admin/gallery", "Something went wrong, please try again")
		return
	}

	flashSuccess(w, r, h.sessionManager, "/admin/gallery", "File deleted.")
}
