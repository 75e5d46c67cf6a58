// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"toolshed/internal/model"
	"toolshed/internal/render"
	"toolshed/internal/service"
	"toolshed/internal/store"
)

// NewsAdminHandler handles the admin news CRUD routes.
type NewsAdminHandler struct {
	news           *service.NewsService
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewNewsAdminHandler creates a new NewsAdminHandler.
func NewNewsAdminHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *NewsAdminHandler {
	return &NewsAdminHandler{
		news:           service.NewNewsService(db),
		renderer:       renderer,
		sessionManager: sm,
	}
}

func (h *NewsAdminHandler) base(r *http.Request, title string) BaseData {
	data := BaseData{Title: title, User: currentUser(r)}
	data.Flash, data.FlashType = popFlash(r, h.sessionManager)
	return data
}

// newsFormData is the template payload for the news form. There is no slug
// field: the slug is derived from the title.
type newsFormData struct {
	BaseData
	Item   *model.News
	Errors map[string]string
}

// List displays a paginated news listing for admins.
func (h *NewsAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	result, err := h.news.List(r.Context(),
		store.NewsFilter{Search: r.URL.Query().Get("q")},
		service.ListPage{Page: page, PageSize: adminPageSize})
	if err != nil {
		slog.Error("failed to list news", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, "admin/news_list", struct {
		BaseData
		Items      []model.News
		Pagination Pagination
	}{
		h.base(r, "Manage news"),
		result.Items,
		BuildPagination(page, result.PageCount, result.TotalCount, "/admin/news", r.URL.Query()),
	})
}

// New renders the empty news form.
func (h *NewsAdminHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "admin/news_form", newsFormData{BaseData: h.base(r, "Add news")})
}

// Create handles the new-news form submission.
func (h *NewsAdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.sessionManager, "/admin/news/new", "Invalid form data")
		return
	}

	_, err := h.news.Create(r.Context(), service.NewsInput{
		Title:    r.FormValue("title"),
		Excerpt:  r.FormValue("excerpt"),
		Content:  r.FormValue("content"),
		ImageURL: r.FormValue("image_url"),
		Category: r.FormValue("category"),
	})
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			h.renderer.Render(w, "admin/news_form", newsFormData{
				BaseData: h.base(r, "Add news"),
				Errors:   vErr.Fields,
			})
			return
		}
		slog.Error("failed to create news", "error", err)
		flashError(w, r, h.sessionManager, "/admin/news", "Something went wrong, please try again")
		return
	}

	flashSuccess(w, r, h.sessionManager, "/admin/news", "News item added.")
}

// Edit renders the news form pre-filled for editing.
func (h *NewsAdminHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	item, err := h.news.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}

	h.renderer.Render(w, "admin/news_form", newsFormData{
		BaseData: h.base(r, "Edit news"),
		Item:     &item,
	})
}

// Update applies the edit form. The slug stays stable across edits.
func (h *NewsAdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.sessionManager, "/admin/news", "Invalid form data")
		return
	}

	_, err := h.news.Update(r.Context(), id, service.NewsPatch{
		Title:    optional(r, "title"),
		Excerpt:  optional(r, "excerpt"),
		Content:  optional(r, "content"),
		ImageURL: optional(r, "image_url"),
		Category: optional(r, "category"),
	})
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrNotFound):
			http.NotFound(w, r)
		case errors.As(err, &vErr):
			flashError(w, r, h.sessionManager, "/admin/news", vErr.Error())
		default:
			slog.Error("failed to update news", "error", err)
			flashError(w, r, h.sessionManager, "/admin/news", "Something went wrong, please try again")
		}
		return
	}

	flashSuccess(w, r, h.sessionManager, "/admin/news", "News item updated.")
}

// Delete removes a news item.
func (h *NewsAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := h.news.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to delete news", "error", err)
		flashError(w, r, h.sessionManager, "/admin/news", "Something went wrong, please try again")
		return
	}

	flashSuccess(w, r, h.sessionManager, "/admin/news", "News item deleted.")
}
