// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"toolshed/internal/model"
	"toolshed/internal/store"
)

// ToolInput holds the fields for creating a tool.
type ToolInput struct {
	Title       string
	Description string
	// Category is one of model.ToolCategories. When it is the "Other"
	// sentinel, CustomCategory supplies the stored value.
	Category       string
	CustomCategory string
	Language       string
	Code           string
	GithubURL      string
	ImageURL       string
}

// ToolPatch holds partial updates for a tool. Nil fields keep prior values.
type ToolPatch struct {
	Title          *string
	Description    *string
	Category       *string
	CustomCategory *string
	Language       *string
	Code           *string
	GithubURL      *string
	ImageURL       *string
}

// ToolService is the content repository for tools.
type ToolService struct {
	queries *store.Queries
}

// NewToolService creates a new ToolService.
func NewToolService(db *sql.DB) *ToolService {
	return &ToolService{queries: store.New(db)}
}

// resolveCategory applies the "Other" free-text override.
func resolveCategory(category, custom string, v validation) string {
	switch category {
	case model.CategoryNetworkSecurity, model.CategoryWebSecurity, model.CategoryPasswordSecurity:
		return category
	case model.CategoryOther:
		custom = strings.TrimSpace(custom)
		if custom == "" {
			v["category"] = "custom category text is required"
			return ""
		}
		return custom
	default:
		v["category"] = "unknown category"
		return ""
	}
}

// Create validates the input and inserts a new tool.
func (s *ToolService) Create(ctx context.Context, in ToolInput) (model.Tool, error) {
	v := validation{}
	if strings.TrimSpace(in.Title) == "" {
		v["title"] = "title is required"
	}
	if strings.TrimSpace(in.Description) == "" {
		v["description"] = "description is required"
	}
	category := resolveCategory(in.Category, in.CustomCategory, v)
	if in.GithubURL != "" {
		if u, err := url.Parse(in.GithubURL); err != nil || u.Scheme == "" || u.Host == "" {
			v["github_url"] = "must be a valid URL"
		}
	}
	if err := v.err(); err != nil {
		return model.Tool{}, err
	}

	tool, err := s.queries.CreateTool(ctx, store.CreateToolParams{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    category,
		Language:    nullString(in.Language),
		Code:        nullString(in.Code),
		GithubURL:   nullString(in.GithubURL),
		ImageURL:    nullString(in.ImageURL),
		DatePosted:  time.Now(),
	})
	if err != nil {
		return model.Tool{}, fmt.Errorf("creating tool: %w", err)
	}
	return tool, nil
}

// Update applies a partial update. Omitted fields retain prior values.
func (s *ToolService) Update(ctx context.Context, id int64, patch ToolPatch) (model.Tool, error) {
	tool, err := s.Get(ctx, id)
	if err != nil {
		return model.Tool{}, err
	}

	v := validation{}
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			v["title"] = "title is required"
		} else {
			tool.Title = strings.TrimSpace(*patch.Title)
		}
	}
	if patch.Description != nil {
		if strings.TrimSpace(*patch.Description) == "" {
			v["description"] = "description is required"
		} else {
			tool.Description = *patch.Description
		}
	}
	if patch.Category != nil {
		custom := ""
		if patch.CustomCategory != nil {
			custom = *patch.CustomCategory
		}
		if c := resolveCategory(*patch.Category, custom, v); c != "" {
			tool.Category = c
		}
	}
	if patch.Language != nil {
		tool.Language = nullString(*patch.Language)
	}
	if patch.Code != nil {
		tool.Code = nullString(*patch.Code)
	}
	if patch.GithubURL != nil {
		if *patch.GithubURL != "" {
			if u, err := url.Parse(*patch.GithubURL); err != nil || u.Scheme == "" || u.Host == "" {
				v["github_url"] = "must be a valid URL"
			}
		}
		tool.GithubURL = nullString(*patch.GithubURL)
	}
	if patch.ImageURL != nil {
		tool.ImageURL = nullString(*patch.ImageURL)
	}
	if err := v.err(); err != nil {
		return model.Tool{}, err
	}

	updated, err := s.queries.UpdateTool(ctx, store.UpdateToolParams{
		ID:          tool.ID,
		Title:       tool.Title,
		Description: tool.Description,
		Category:    tool.Category,
		Language:    tool.Language,
		Code:        tool.Code,
		GithubURL:   tool.GithubURL,
		ImageURL:    tool.ImageURL,
	})
	if err != nil {
		return model.Tool{}, fmt.Errorf("updating tool: %w", err)
	}
	return updated, nil
}

// Delete removes a tool. Fails with ErrNotFound for unknown ids.
func (s *ToolService) Delete(ctx context.Context, id int64) error {
	n, err := s.queries.DeleteTool(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting tool: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns the tool with the given id, or ErrNotFound.
func (s *ToolService) Get(ctx context.Context, id int64) (model.Tool, error) {
	tool, err := s.queries.GetTool(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tool{}, ErrNotFound
	}
	return tool, err
}

// List returns one page of tools matching the filter, newest first.
func (s *ToolService) List(ctx context.Context, filter store.ToolFilter, page ListPage) (ListResult[model.Tool], error) {
	page = page.normalize()
	total, err := s.queries.CountTools(ctx, filter)
	if err != nil {
		return ListResult[model.Tool]{}, fmt.Errorf("counting tools: %w", err)
	}
	limit, offset := page.limitOffset()
	items, err := s.queries.ListTools(ctx, filter, limit, offset)
	if err != nil {
		return ListResult[model.Tool]{}, fmt.Errorf("listing tools: %w", err)
	}
	return newListResult(items, total, page.PageSize), nil
}

// Count returns the total number of tools.
func (s *ToolService) Count(ctx context.Context) (int64, error) {
	return s.queries.CountTools(ctx, store.ToolFilter{})
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
