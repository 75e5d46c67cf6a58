// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/url"
)

// Pagination holds pagination data for templates.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int64
	HasPrev     bool
	HasNext     bool
	PrevPage    int
	NextPage    int
	BaseURL     string
	QueryString string
}

// BuildPagination creates pagination data for templates. baseURL is the path
// without query string; queryParams are the current parameters to preserve
// across page links (filters, search terms).
func BuildPagination(currentPage, totalPages int, totalItems int64, baseURL string, queryParams url.Values) Pagination {
	if totalPages < 1 {
		totalPages = 1
	}

	p := Pagination{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		HasPrev:     currentPage > 1,
		HasNext:     currentPage < totalPages,
		PrevPage:    currentPage - 1,
		NextPage:    currentPage + 1,
		BaseURL:     baseURL,
	}

	if queryParams != nil {
		params := make(url.Values)
		for k, v := range queryParams {
			if k != "page" && len(v) > 0 && v[0] != "" {
				params[k] = v
			}
		}
		if len(params) > 0 {
			p.QueryString = params.Encode()
		}
	}

	return p
}

// PageURL returns the URL for a specific page number.
func (p Pagination) PageURL(page int) string {
	if p.QueryString != "" {
		return fmt.Sprintf("%s?%s&page=%d", p.BaseURL, p.QueryString, page)
	}
	return fmt.Sprintf("%s?page=%d", p.BaseURL, page)
}

// PrevURL returns the URL for the previous page.
func (p Pagination) PrevURL() string { return p.PageURL(p.PrevPage) }

// NextURL returns the URL for the next page.
func (p Pagination) NextURL() string { return p.PageURL(p.NextPage) }

// ShouldShow returns true if pagination should be displayed.
func (p Pagination) ShouldShow() bool { return p.TotalPages > 1 }
