// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

// DefaultPageSize is used when a list request does not specify one.
const DefaultPageSize = 10

// ListPage identifies one page of a list request. Pages are 1-indexed.
type ListPage struct {
	Page     int
	PageSize int
}

// normalize clamps page and page size to sane values.
func (p ListPage) normalize() ListPage {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// limitOffset converts the page to SQL limit/offset values.
func (p ListPage) limitOffset() (int64, int64) {
	return int64(p.PageSize), int64((p.Page - 1) * p.PageSize)
}

// ListResult is one page of items plus totals. An out-of-range page yields an
// empty Items slice with accurate TotalCount and PageCount, not an error.
type ListResult[T any] struct {
	Items      []T
	TotalCount int64
	PageCount  int
}

func newListResult[T any](items []T, total int64, pageSize int) ListResult[T] {
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return ListResult[T]{Items: items, TotalCount: total, PageCount: pages}
}
