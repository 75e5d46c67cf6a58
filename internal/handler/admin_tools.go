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

// adminPageSize is the number of rows per page on admin listings.
const adminPageSize = 20

// ToolsAdminHandler handles the admin tool CRUD routes.
type ToolsAdminHandler struct {
	tools          *service.ToolService
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewToolsAdminHandler creates a new ToolsAdminHandler.
func NewToolsAdminHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *ToolsAdminHandler {
	return &ToolsAdminHandler{
		tools:          service.NewToolService(db),
		renderer:       renderer,
		sessionManager: sm,
	}
}

func (h *ToolsAdminHandler) base(r *http.Request, title string) BaseData {
	data := BaseData{Title: title, User: currentUser(r)}
	data.Flash, data.FlashType = popFlash(r, h.sessionManager)
	return data
}

// toolFormData is the template payload for the tool form.
type toolFormData struct {
	BaseData
	Tool       *model.Tool
	Categories []string
	Errors     map[string]string
}

// List displays a paginated tool listing for admins.
func (h *ToolsAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	result, err := h.tools.List(r.Context(),
		store.ToolFilter{Search: r.URL.Query().Get("q")},
		service.ListPage{Page: page, PageSize: adminPageSize})
	if err != nil {
		slog.Error("failed to list tools", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, "admin/tools_list", struct {
		BaseData
		Tools      []model.Tool
		Pagination Pagination
	}{
		h.base(r, "Manage tools"),
		result.Items,
		BuildPagination(page, result.PageCount, result.TotalCount, "/admin/tools", r.URL.Query()),
	})
}

// New renders the empty tool form.
func (h *ToolsAdminHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "admin/tool_form", toolFormData{
		BaseData:   h.base(r, "Add tool"),
		Categories: model.ToolCategories,
	})
}

// Create handles the new-tool form submission.
func (h *ToolsAdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.sessionManager, "/admin/tools/new", "Invalid form data")
		return
	}

	_, err := h.tools.Create(r.Context(), service.ToolInput{
		Title:          r.FormValue("title"),
		Description:    r.FormValue("description"),
		Category:       r.FormValue("category"),
		CustomCategory: r.FormValue("custom_category"),
		Language:       r.FormValue("language"),
		Code:           r.FormValue("code"),
		GithubURL:      r.FormValue("github_url"),
		ImageURL:       r.FormValue("image_url"),
	})
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			h.renderer.Render(w, "admin/tool_form", toolFormData{
				BaseData:   h.base(r, "Add tool"),
				Categories: model.ToolCategories,
				Errors:     vErr.Fields,
			})
			return
		}
		slog.Error("failed to create tool", "error", err)
		flashError(w, r, h.sessionManager, "/admin/tools", "Something went wrong, please try again")
		return
	}

	flashSuccess(w, r, h.sessionManager, "/admin/tools", "Tool added.")
}

// Edit renders the tool form pre-filled for editing.
func (h *ToolsAdminHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	tool, err := h.tools.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}

	h.renderer.Render(w, "admin/tool_form", toolFormData{
		BaseData:   h.base(r, "Edit tool"),
		Tool:       &tool,
		Categories: model.ToolCategories,
	})
}

// Update applies the edit form. Only submitted fields are touched.
func (h *ToolsAdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.sessionManager, "/admin/tools", "Invalid form data")
		return
	}

	_, err := h.tools.Update(r.Context(), id, service.ToolPatch{
		Title:          optional(r, "title"),
		Description:    optional(r, "description"),
		Category:       optional(r, "category"),
		CustomCategory: optional(r, "custom_category"),
		Language:       optional(r, "language"),
		Code:           optional(r, "code"),
		GithubURL:      optional(r, "github_url"),
		ImageURL:       optional(r, "image_url"),
	})
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrNotFound):
			http.NotFound(w, r)
		case errors.As(err, &vErr):
			flashError(w, r, h.sessionManager, "/admin/tools", vErr.Error())
		default:
			slog.Error("failed to update tool", "error", err)
			flashError(w, r, h.sessionManager, "/admin/tools", "Something went wrong, please try again")
		}
		return
	}

	flashSuccess(w, r, h.sessionManager, "/admin/tools", "Tool updated.")
}

// Delete removes a tool.
func (h *ToolsAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := h.tools.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to delete tool", "error", err)
		flashError(w, r, h.sessionManager, "/admin/tools", "Something went wrong, please try again")
		return
	}

	flashSuccess(w, r, h.sessionManager, "/admin/tools", "Tool deleted.")
}
