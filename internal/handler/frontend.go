// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"toolshed/internal/media"
	"toolshed/internal/model"
	"toolshed/internal/render"
	"toolshed/internal/service"
	"toolshed/internal/store"
)

// Items shown per page on the public listings.
const publicPageSize = 10

// FrontendHandler serves the public site. Blog and news images come from the
// public images store; gallery files sit in a separate store that is only
// reachable through the authenticated GalleryFile route.
type FrontendHandler struct {
	tools          *service.ToolService
	posts          *service.PostService
	news           *service.NewsService
	gallery        *service.GalleryService
	images         *media.LocalStore
	galleryFiles   *media.LocalStore
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(db *sql.DB, images, galleryFiles *media.LocalStore, renderer *render.Renderer, sm *scs.SessionManager) *FrontendHandler {
	return &FrontendHandler{
		tools:          service.NewToolService(db),
		posts:          service.NewPostService(db, images),
		news:           service.NewNewsService(db),
		gallery:        service.NewGalleryService(db, galleryFiles),
		images:         images,
		galleryFiles:   galleryFiles,
		renderer:       renderer,
		sessionManager: sm,
	}
}

func (h *FrontendHandler) base(r *http.Request, title string) BaseData {
	data := BaseData{Title: title, User: currentUser(r)}
	data.Flash, data.FlashType = popFlash(r, h.sessionManager)
	return data
}

// Home renders the landing page with content counts.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	toolCount, err := h.tools.Count(r.Context())
	if err != nil {
		slog.Error("failed to count tools", "error", err)
	}
	fileCount, err := h.gallery.Count(r.Context())
	if err != nil {
		slog.Error("failed to count gallery files", "error", err)
	}
	blogCount, err := h.posts.CountPublished(r.Context())
	if err != nil {
		slog.Error("failed to count posts", "error", err)
	}

	h.renderer.Render(w, "home", struct {
		BaseData
		ToolCount int64
		FileCount int64
		BlogCount int64
	}{h.base(r, "Home"), toolCount, fileCount, blogCount})
}

// Tools renders the tools directory with category filter, search and
// pagination.
func (h *FrontendHandler) Tools(w http.ResponseWriter, r *http.Request) {
	filter := store.ToolFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("q"),
	}
	page := pageParam(r)

	result, err := h.tools.List(r.Context(), filter, service.ListPage{Page: page, PageSize: publicPageSize})
	if err != nil {
		slog.Error("failed to list tools", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, "tools", struct {
		BaseData
		Tools      []model.Tool
		Categories []string
		Category   string
		Search     string
		Pagination Pagination
	}{
		h.base(r, "Tools"),
		result.Items,
		model.ToolCategories,
		filter.Category,
		filter.Search,
		BuildPagination(page, result.PageCount, result.TotalCount, "/tools", r.URL.Query()),
	})
}

// Blog renders the published blog post listing.
func (h *FrontendHandler) Blog(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	result, err := h.posts.List(r.Context(),
		store.PostFilter{PublishedOnly: true, Search: r.URL.Query().Get("q")},
		service.ListPage{Page: page, PageSize: publicPageSize})
	if err != nil {
		slog.Error("failed to list posts", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Thumbnail variants for posts with a featured image, keyed by post id.
	thumbs := make(map[int64]string, len(result.Items))
	for _, p := range result.Items {
		if p.FeaturedImage.Valid && p.FeaturedImage.String != "" {
			thumbs[p.ID] = h.images.ResolveThumb(p.FeaturedImage.String)
		}
	}

	h.renderer.Render(w, "blog/list", struct {
		BaseData
		Posts      []model.BlogPost
		Thumbs     map[int64]string
		Pagination Pagination
	}{
		h.base(r, "Blog"),
		result.Items,
		thumbs,
		BuildPagination(page, result.PageCount, result.TotalCount, "/blog", r.URL.Query()),
	})
}

// BlogPost renders a single published post by slug.
func (h *FrontendHandler) BlogPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetPublishedBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to load post", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	featured := ""
	if post.FeaturedImage.Valid {
		featured = h.images.Resolve(post.FeaturedImage.String)
	}

	h.renderer.Render(w, "blog/post", struct {
		BaseData
		Post             model.BlogPost
		FeaturedImageURL string
	}{h.base(r, post.Title), post, featured})
}

// News renders the news listing with category filter.
func (h *FrontendHandler) News(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	filter := store.NewsFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("q"),
	}

	result, err := h.news.List(r.Context(), filter, service.ListPage{Page: page, PageSize: publicPageSize})
	if err != nil {
		slog.Error("failed to list news", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, "news/list", struct {
		BaseData
		Items      []model.News
		Category   string
		Pagination Pagination
	}{
		h.base(r, "News"),
		result.Items,
		filter.Category,
		BuildPagination(page, result.PageCount, result.TotalCount, "/news", r.URL.Query()),
	})
}

// NewsItem renders a single news item by slug.
func (h *FrontendHandler) NewsItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.news.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to load news item", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, "news/item", struct {
		BaseData
		Item model.News
	}{h.base(r, item.Title), item})
}

// Gallery renders the gallery listing with file-type filter.
func (h *FrontendHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	filter := store.GalleryFilter{
		FileType: r.URL.Query().Get("type"),
		Search:   r.URL.Query().Get("q"),
	}

	result, err := h.gallery.List(r.Context(), filter, service.ListPage{Page: page, PageSize: publicPageSize})
	if err != nil {
		slog.Error("failed to list gallery", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, "gallery/list", struct {
		BaseData
		Files      []model.GalleryFile
		FileTypes  []string
		FileType   string
		Pagination Pagination
	}{
		h.base(r, "Gallery"),
		result.Items,
		model.GalleryFileTypes,
		filter.FileType,
		BuildPagination(page, result.PageCount, result.TotalCount, "/gallery", r.URL.Query()),
	})
}

// GalleryFile serves a stored gallery file. The route sits behind
// RequireAuth: raw-file retrieval needs an authenticated principal, and this
// handler is the only path to the gallery store's bytes.
func (h *FrontendHandler) GalleryFile(w http.ResponseWriter, r *http.Request) {
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

	path, ok := h.galleryFiles.Path(file.StoredRef)
	if !ok {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}
