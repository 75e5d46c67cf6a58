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

	"toolshed/internal/media"
	"toolshed/internal/model"
	"toolshed/internal/store"
	"toolshed/internal/util"
)

// PostInput holds the fields for creating a blog post. The slug is
// author-supplied; uniqueness is enforced at write time.
type PostInput struct {
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	FeaturedImage string
	Tags          string
	Published     bool
}

// PostPatch holds partial updates for a blog post. Nil fields keep prior values.
type PostPatch struct {
	Title         *string
	Slug          *string
	Excerpt       *string
	Content       *string
	FeaturedImage *string
	Tags          *string
	Published     *bool
}

// PostService is the content repository for blog posts.
type PostService struct {
	queries *store.Queries
	gateway media.Gateway
}

// NewPostService creates a new PostService.
func NewPostService(db *sql.DB, gateway media.Gateway) *PostService {
	return &PostService{queries: store.New(db), gateway: gateway}
}

// Create validates the input and inserts a new post. A taken slug fails with
// ErrDuplicateSlug; the unique index is the authority, not the pre-check.
func (s *PostService) Create(ctx context.Context, in PostInput) (model.BlogPost, error) {
	v := validation{}
	if strings.TrimSpace(in.Title) == "" {
		v["title"] = "title is required"
	}
	if strings.TrimSpace(in.Content) == "" {
		v["content"] = "content is required"
	}
	if !util.IsValidSlug(in.Slug) {
		v["slug"] = "must contain only lowercase letters, digits and hyphens"
	}
	if err := v.err(); err != nil {
		return model.BlogPost{}, err
	}

	post, err := s.queries.CreatePost(ctx, store.CreatePostParams{
		Title:         strings.TrimSpace(in.Title),
		Slug:          in.Slug,
		Excerpt:       nullString(in.Excerpt),
		Content:       in.Content,
		FeaturedImage: nullString(in.FeaturedImage),
		Tags:          nullString(in.Tags),
		Published:     in.Published,
		DatePosted:    time.Now(),
	})
	if store.IsUniqueViolation(err, "blog_posts.slug") {
		return model.BlogPost{}, ErrDuplicateSlug
	}
	if err != nil {
		return model.BlogPost{}, fmt.Errorf("creating post: %w", err)
	}
	return post, nil
}

// Update applies a partial update. The slug stays stable unless explicitly
// supplied; a new slug must be free.
func (s *PostService) Update(ctx context.Context, id int64, patch PostPatch) (model.BlogPost, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return model.BlogPost{}, err
	}

	v := validation{}
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			v["title"] = "title is required"
		} else {
			post.Title = strings.TrimSpace(*patch.Title)
		}
	}
	if patch.Slug != nil && *patch.Slug != post.Slug {
		if !util.IsValidSlug(*patch.Slug) {
			v["slug"] = "must contain only lowercase letters, digits and hyphens"
		} else {
			post.Slug = *patch.Slug
		}
	}
	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			v["content"] = "content is required"
		} else {
			post.Content = *patch.Content
		}
	}
	if patch.Excerpt != nil {
		post.Excerpt = nullString(*patch.Excerpt)
	}
	if patch.FeaturedImage != nil {
		post.FeaturedImage = nullString(*patch.FeaturedImage)
	}
	if patch.Tags != nil {
		post.Tags = nullString(*patch.Tags)
	}
	if patch.Published != nil {
		post.Published = *patch.Published
	}
	if err := v.err(); err != nil {
		return model.BlogPost{}, err
	}

	updated, err := s.queries.UpdatePost(ctx, store.UpdatePostParams{
		ID:            post.ID,
		Title:         post.Title,
		Slug:          post.Slug,
		Excerpt:       post.Excerpt,
		Content:       post.Content,
		FeaturedImage: post.FeaturedImage,
		Tags:          post.Tags,
		Published:     post.Published,
	})
	if store.IsUniqueViolation(err, "blog_posts.slug") {
		return model.BlogPost{}, ErrDuplicateSlug
	}
	if err != nil {
		return model.BlogPost{}, fmt.Errorf("updating post: %w", err)
	}
	return updated, nil
}

// Delete removes a post and releases its featured image, if any. A failed
// release is logged by the gateway, never fatal to the delete.
func (s *PostService) Delete(ctx context.Context, id int64) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.queries.DeletePost(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if post.FeaturedImage.Valid && post.FeaturedImage.String != "" {
		s.gateway.Release(ctx, post.FeaturedImage.String)
	}
	return nil
}

// Get returns the post with the given id, or ErrNotFound.
func (s *PostService) Get(ctx context.Context, id int64) (model.BlogPost, error) {
	post, err := s.queries.GetPost(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BlogPost{}, ErrNotFound
	}
	return post, err
}

// GetPublishedBySlug returns the published post with the given slug, or
// ErrNotFound. Drafts are invisible on the public site.
func (s *PostService) GetPublishedBySlug(ctx context.Context, slug string) (model.BlogPost, error) {
	post, err := s.queries.GetPublishedPostBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BlogPost{}, ErrNotFound
	}
	return post, err
}

// List returns one page of posts matching the filter, newest first.
func (s *PostService) List(ctx context.Context, filter store.PostFilter, page ListPage) (ListResult[model.BlogPost], error) {
	page = page.normalize()
	total, err := s.queries.CountPosts(ctx, filter)
	if err != nil {
		return ListResult[model.BlogPost]{}, fmt.Errorf("counting posts: %w", err)
	}
	limit, offset := page.limitOffset()
	items, err := s.queries.ListPosts(ctx, filter, limit, offset)
	if err != nil {
		return ListResult[model.BlogPost]{}, fmt.Errorf("listing posts: %w", err)
	}
	return newListResult(items, total, page.PageSize), nil
}

// CountPublished returns the number of published posts.
func (s *PostService) CountPublished(ctx context.Context) (int64, error) {
	return s.queries.CountPosts(ctx, store.PostFilter{PublishedOnly: true})
}
