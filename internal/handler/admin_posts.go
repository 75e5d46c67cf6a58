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

// PostsAdminHandler handles the admin blog CRUD routes, including the
// featured-image and inline-image uploads.
type PostsAdminHandler struct {
	posts          *service.PostService
	store          *media.LocalStore
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewPostsAdminHandler creates a new PostsAdminHandler.
func NewPostsAdminHandler(db *sql.DB, gateway *media.LocalStore, renderer *render.Renderer, sm *scs.SessionManager) *PostsAdminHandler {
	return &PostsAdminHandler{
		posts:          service.NewPostService(db, gateway),
		store:          gateway,
		renderer:       renderer,
		sessionManager: sm,
	}
}

func (h *PostsAdminHandler) base(r *http.Request, title string) BaseData {
	data := BaseData{Title: title, User: currentUser(r)}
	data.Flash, data.FlashType = popFlash(r, h.sessionManager)
	return data
}

// postFormData is the template payload for the blog post form.
type postFormData struct {
	BaseData
	Post   *model.BlogPost
	Errors map[string]string
}

// List displays a paginated post listing for admins, drafts included.
func (h *PostsAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	result, err := h.posts.List(r.Context(),
		store.PostFilter{Search: r.URL.Query().Get("q")},
		service.ListPage{Page: page, PageSize: adminPageSize})
	if err != nil {
		slog.Error("failed to list posts", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, "admin/posts_list", struct {
		BaseData
		Posts      []model.BlogPost
		Pagination Pagination
	}{
		h.base(r, "Manage blog"),
		result.Items,
		BuildPagination(page, result.PageCount, result.TotalCount, "/admin/blog", r.URL.Query()),
	})
}

// New renders the empty post form.
func (h *PostsAdminHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "admin/post_form", postFormData{BaseData: h.base(r, "Add blog post")})
}

// featuredImage stores an uploaded featured image, if the form carries one.
// Returns the stored reference or "" when the field is empty.
func (h *PostsAdminHandler) featuredImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("featured_image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	stored, err := h.store.Store(r.Context(), file, header.Filename, media.ImagePolicy())
	if err != nil {
		return "", err
	}
	return stored.Ref, nil
}

// Create handles the new-post form submission.
func (h *PostsAdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(media.ImagePolicy().MaxBytes); err != nil {
		flashError(w, r, h.sessionManager, "/admin/blog/new", "Invalid form data")
		return
	}

	ref, err := h.featuredImage(r)
	if err != nil {
		flashError(w, r, h.sessionManager, "/admin/blog/new", uploadErrorMessage(err))
		return
	}

	_, err = h.posts.Create(r.Context(), service.PostInput{
		Title:         r.FormValue("title"),
		Slug:          r.FormValue("slug"),
		Excerpt:       r.FormValue("excerpt"),
		Content:       r.FormValue("content"),
		FeaturedImage: ref,
		Tags:          r.FormValue("tags"),
		Published:     r.FormValue("published") == "on",
	})
	if err != nil {
		// Don't leave the stored image orphaned when the insert failed.
		if ref != "" {
			h.store.Release(r.Context(), ref)
		}
		var vErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrDuplicateSlug):
			h.renderer.Render(w, "admin/post_form", postFormData{
				BaseData: h.base(r, "Add blog post"),
				Errors:   map[string]string{"slug": "slug already in use"},
			})
		case errors.As(err, &vErr):
			h.renderer.Render(w, "admin/post_form", postFormData{
				BaseData: h.base(r, "Add blog post"),
				Errors:   vErr.Fields,
			})
		default:
			slog.Error("failed to create post", "error", err)
			flashError(w, r, h.sessionManager, "/admin/blog", "Something went wrong, please try again")
		}
		return
	}

	flashSuccess(w, r, h.sessionManager, "/admin/blog", "Blog post added.")
}

// Edit renders the post form pre-filled for editing.
func (h *PostsAdminHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}

	h.renderer.Render(w, "admin/post_form", postFormData{
		BaseData: h.base(r, "Edit blog post"),
		Post:     &post,
	})
}

// Update applies the edit form. Only submitted fields are touched; a newly
// uploaded featured image replaces (and releases) the previous one.
func (h *PostsAdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseMultipartForm(media.ImagePolicy().MaxBytes); err != nil {
		flashError(w, r, h.sessionManager, "/admin/blog", "Invalid form data")
		return
	}

	patch := service.PostPatch{
		Title:   optional(r, "title"),
		Slug:    optional(r, "slug"),
		Excerpt: optional(r, "excerpt"),
		Content: optional(r, "content"),
		Tags:    optional(r, "tags"),
	}
	// Checkboxes are absent from the form when unchecked, so the form carries
	// a marker field to distinguish "unchecked" from "not submitted".
	if r.Form.Has("published_submitted") {
		published := r.FormValue("published") == "on"
		patch.Published = &published
	}

	prev, err := h.posts.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}

	ref, err := h.featuredImage(r)
	if err != nil {
		flashError(w, r, h.sessionManager, "/admin/blog", uploadErrorMessage(err))
		return
	}
	if ref != "" {
		patch.FeaturedImage = &ref
	}

	_, err = h.posts.Update(r.Context(), id, patch)
	if err != nil {
		if ref != "" {
			h.store.Release(r.Context(), ref)
		}
		var vErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrNotFound):
			http.NotFound(w, r)
		case errors.Is(err, service.ErrDuplicateSlug):
			flashError(w, r, h.sessionManager, "/admin/blog", "That slug is already in use.")
		case errors.As(err, &vErr):
			flashError(w, r, h.sessionManager, "/admin/blog", vErr.Error())
		default:
			slog.Error("failed to update post", "error", err)
			flashError(w, r, h.sessionManager, "/admin/blog", "Something went wrong, please try again")
		}
		return
	}

	// Release the replaced image after the row points at the new one.
	if ref != "" && prev.FeaturedImage.Valid && prev.FeaturedImage.String != "" {
		h.store.Release(r.Context(), prev.FeaturedImage.String)
	}

	flashSuccess(w, r, h.sessionManager, "/admin/blog", "Blog post updated.")
}

// Delete removes a post and its featured image.
func (h *PostsAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := h.posts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to delete post", "error", err)
		flashError(w, r, h.sessionManager, "/admin/blog", "Something went wrong, please try again")
		return
	}

	flashSuccess(w, r, h.sessionManager, "/admin/blog", "Blog post deleted.")
}

// UploadInlineImage stores an editor-inserted image and returns its URL as
// JSON, matching what the markdown editor widget expects.
func (h *PostsAdminHandler) UploadInlineImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(media.ImagePolicy().MaxBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form data"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no file"})
		return
	}
	defer file.Close()

	stored, err := h.store.Store(r.Context(), file, header.Filename, media.ImagePolicy())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": uploadErrorMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"location": h.store.Resolve(stored.Ref)})
}

// uploadErrorMessage maps media gateway failures to user-facing messages.
func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, media.ErrUnsupportedType):
		return "That file type is not allowed."
	case errors.Is(err, media.ErrFileTooLarge):
		return "That file is too large."
	default:
		slog.Error("upload failed", "error", err)
		return "Upload failed, please try again."
	}
}
