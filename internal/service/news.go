// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"toolshed/internal/model"
	"toolshed/internal/store"
	"toolshed/internal/util"
)

// newsSlugAttempts bounds the create retry loop when racing on derived slugs.
const newsSlugAttempts = 5

// NewsInput holds the fields for creating a news item. There is no slug
// field: news slugs are always derived from the title.
type NewsInput struct {
	Title    string
	Excerpt  string
	Content  string
	ImageURL string
	Category string
}

// NewsPatch holds partial updates for a news item. Nil fields keep prior
// values. The slug stays stable across edits.
type NewsPatch struct {
	Title    *string
	Excerpt  *string
	Content  *string
	ImageURL *string
	Category *string
}

// NewsService is the content repository for news items.
type NewsService struct {
	queries *store.Queries
}

// NewNewsService creates a new NewsService.
func NewNewsService(db *sql.DB) *NewsService {
	return &NewsService{queries: store.New(db)}
}

// Create validates the input, derives a unique slug from the title and
// inserts the item. Two concurrent creates with the same title both succeed
// with distinct slugs: the unique index arbitrates and the loser reallocates.
func (s *NewsService) Create(ctx context.Context, in NewsInput) (model.News, error) {
	v := validation{}
	if strings.TrimSpace(in.Title) == "" {
		v["title"] = "title is required"
	}
	if strings.TrimSpace(in.Content) == "" {
		v["content"] = "content is required"
	}
	if strings.TrimSpace(in.Category) == "" {
		v["category"] = "category is required"
	}
	if err := v.err(); err != nil {
		return model.News{}, err
	}

	title := strings.TrimSpace(in.Title)
	var lastErr error
	for range newsSlugAttempts {
		slug, err := util.AllocateSlug(title, func(candidate string) (bool, error) {
			return s.queries.NewsSlugExists(ctx, candidate, 0)
		})
		if err != nil {
			return model.News{}, err
		}

		item, err := s.queries.CreateNews(ctx, store.CreateNewsParams{
			Title:      title,
			Slug:       slug,
			Excerpt:    nullString(in.Excerpt),
			Content:    in.Content,
			ImageURL:   nullString(in.ImageURL),
			Category:   in.Category,
			DatePosted: time.Now(),
		})
		if store.IsUniqueViolation(err, "news.slug") {
			lastErr = err
			continue
		}
		if err != nil {
			return model.News{}, fmt.Errorf("creating news: %w", err)
		}
		return item, nil
	}
	return model.News{}, fmt.Errorf("allocating news slug: %w", lastErr)
}

// Update applies a partial update.
func (s *NewsService) Update(ctx context.Context, id int64, patch NewsPatch) (model.News, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return model.News{}, err
	}

	v := validation{}
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			v["title"] = "title is required"
		} else {
			item.Title = strings.TrimSpace(*patch.Title)
		}
	}
	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			v["content"] = "content is required"
		} else {
			item.Content = *patch.Content
		}
	}
	if patch.Category != nil {
		if strings.TrimSpace(*patch.Category) == "" {
			v["category"] = "category is required"
		} else {
			item.Category = *patch.Category
		}
	}
	if patch.Excerpt != nil {
		item.Excerpt = nullString(*patch.Excerpt)
	}
	if patch.ImageURL != nil {
		item.ImageURL = nullString(*patch.ImageURL)
	}
	if err := v.err(); err != nil {
		return model.News{}, err
	}

	updated, err := s.queries.UpdateNews(ctx, store.UpdateNewsParams{
		ID:       item.ID,
		Title:    item.Title,
		Slug:     item.Slug,
		Excerpt:  item.Excerpt,
		Content:  item.Content,
		ImageURL: item.ImageURL,
		Category: item.Category,
	})
	if err != nil {
		return model.News{}, fmt.Errorf("updating news: %w", err)
	}
	return updated, nil
}

// Delete removes a news item. Fails with ErrNotFound for unknown ids.
func (s *NewsService) Delete(ctx context.Context, id int64) error {
	n, err := s.queries.DeleteNews(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting news: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns the news item with the given id, or ErrNotFound.
func (s *NewsService) Get(ctx context.Context, id int64) (model.News, error) {
	item, err := s.queries.GetNews(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.News{}, ErrNotFound
	}
	return item, err
}

// GetBySlug returns the news item with the given slug, or ErrNotFound.
func (s *NewsService) GetBySlug(ctx context.Context, slug string) (model.News, error) {
	item, err := s.queries.GetNewsBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return model.News{}, ErrNotFound
	}
	return item, err
}

// List returns one page of news items matching the filter, newest first.
func (s *NewsService) List(ctx context.Context, filter store.NewsFilter, page ListPage) (ListResult[model.News], error) {
	page = page.normalize()
	total, err := s.queries.CountNews(ctx, filter)
	if err != nil {
		return ListResult[model.News]{}, fmt.Errorf("counting news: %w", err)
	}
	limit, offset := page.limitOffset()
	items, err := s.queries.ListNews(ctx, filter, limit, offset)
	if err != nil {
		return ListResult[model.News]{}, fmt.Errorf("listing news: %w", err)
	}
	return newListResult(items, total, page.PageSize), nil
}
