// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"toolshed/internal/model"
	"toolshed/internal/store"
	"toolshed/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestToolCreate(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	svc := NewToolService(db)
	ctx := context.Background()

	tool, err := svc.Create(ctx, ToolInput{
		Title:       "nmap cheatsheet",
		Description: "Common nmap scan invocations.",
		Category:    model.CategoryNetworkSecurity,
		Language:    "bash",
	})
	require.NoError(t, err)
	require.Equal(t, model.CategoryNetworkSecurity, tool.Category)
	require.Equal(t, "bash", tool.Language.String)
	require.False(t, tool.Code.Valid)
}

func TestToolCreateCategoryResolution(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	svc := NewToolService(db)
	ctx := context.Background()

	t.Run("other with custom text stores the text", func(t *testing.T) {
		tool, err := svc.Create(ctx, ToolInput{
			Title:          "binwalk notes",
			Description:    "Firmware analysis notes.",
			Category:       model.CategoryOther,
			CustomCategory: "Forensics",
		})
		require.NoError(t, err)
		require.Equal(t, "Forensics", tool.Category)
	})

	t.Run("other without custom text fails", func(t *testing.T) {
		_, err := svc.Create(ctx, ToolInput{
			Title:       "x",
			Description: "y",
			Category:    model.CategoryOther,
		})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Contains(t, vErr.Fields, "category")
	})

	t.Run("unknown category fails", func(t *testing.T) {
		_, err := svc.Create(ctx, ToolInput{
			Title:       "x",
			Description: "y",
			Category:    "Made Up",
		})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
	})
}

func TestToolUpdatePartial(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	svc := NewToolService(db)
	ctx := context.Background()

	tool, err := svc.Create(ctx, ToolInput{
		Title:       "hydra usage",
		Description: "Password spraying with hydra.",
		Category:    model.CategoryPasswordSecurity,
		Language:    "bash",
		GithubURL:   "https://github.com/vanhauser-thc/thc-hydra",
	})
	require.NoError(t, err)

	// Patch only the title: everything else must survive untouched.
	updated, err := svc.Update(ctx, tool.ID, ToolPatch{Title: strPtr("THC Hydra usage")})
	require.NoError(t, err)
	require.Equal(t, "THC Hydra usage", updated.Title)
	require.Equal(t, tool.Description, updated.Description)
	require.Equal(t, tool.Category, updated.Category)
	require.Equal(t, tool.Language, updated.Language)
	require.Equal(t, tool.GithubURL, updated.GithubURL)

	// An explicit empty string clears an optional field.
	updated, err = svc.Update(ctx, tool.ID, ToolPatch{Language: strPtr("")})
	require.NoError(t, err)
	require.False(t, updated.Language.Valid)

	t.Run("invalid github url", func(t *testing.T) {
		_, err := svc.Update(ctx, tool.ID, ToolPatch{GithubURL: strPtr("not a url")})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Contains(t, vErr.Fields, "github_url")
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Update(ctx, 99999, ToolPatch{Title: strPtr("x")})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestToolDelete(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	svc := NewToolService(db)
	ctx := context.Background()

	tool, err := svc.Create(ctx, ToolInput{
		Title:       "gobuster",
		Description: "Directory brute forcing.",
		Category:    model.CategoryWebSecurity,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, tool.ID))
	require.ErrorIs(t, svc.Delete(ctx, tool.ID), ErrNotFound)

	_, err = svc.Get(ctx, tool.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestToolListPagination(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	svc := NewToolService(db)
	ctx := context.Background()

	for i := range 25 {
		_, err := svc.Create(ctx, ToolInput{
			Title:       fmt.Sprintf("tool %02d", i),
			Description: "d",
			Category:    model.CategoryWebSecurity,
		})
		require.NoError(t, err)
	}

	page1, err := svc.List(ctx, store.ToolFilter{}, ListPage{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page1.Items, 10)
	require.EqualValues(t, 25, page1.TotalCount)
	require.Equal(t, 3, page1.PageCount)

	page3, err := svc.List(ctx, store.ToolFilter{}, ListPage{Page: 3, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page3.Items, 5)

	// Out of range is an empty page, not an error. Totals are still reported.
	page4, err := svc.List(ctx, store.ToolFilter{}, ListPage{Page: 4, PageSize: 10})
	require.NoError(t, err)
	require.Empty(t, page4.Items)
	require.EqualValues(t, 25, page4.TotalCount)
}

func TestToolListFilter(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	svc := NewToolService(db)
	ctx := context.Background()

	seed := []ToolInput{
		{Title: "sqlmap", Description: "SQL injection automation", Category: model.CategoryWebSecurity, Language: "python"},
		{Title: "wireshark filters", Description: "Capture filter cookbook", Category: model.CategoryNetworkSecurity},
		{Title: "hashcat modes", Description: "GPU password cracking", Category: model.CategoryPasswordSecurity},
	}
	for _, in := range seed {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	t.Run("by category", func(t *testing.T) {
		result, err := svc.List(ctx, store.ToolFilter{Category: model.CategoryWebSecurity}, ListPage{})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		require.Equal(t, "sqlmap", result.Items[0].Title)
	})

	t.Run("search matches title and description", func(t *testing.T) {
		result, err := svc.List(ctx, store.ToolFilter{Search: "password"}, ListPage{})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		require.Equal(t, "hashcat modes", result.Items[0].Title)
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		result, err := svc.List(ctx, store.ToolFilter{Search: "SQLMAP"}, ListPage{})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
	})

	t.Run("no matches", func(t *testing.T) {
		result, err := svc.List(ctx, store.ToolFilter{Search: "no-such-tool"}, ListPage{})
		require.NoError(t, err)
		require.Empty(t, result.Items)
		require.EqualValues(t, 0, result.TotalCount)
	})
}
