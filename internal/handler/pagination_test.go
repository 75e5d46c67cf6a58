// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/url"
	"testing"
)

func TestBuildPagination(t *testing.T) {
	p := BuildPagination(2, 5, 42, "/tools", nil)

	if !p.HasPrev || !p.HasNext {
		t.Errorf("page 2 of 5 should have prev and next: %+v", p)
	}
	if p.PrevURL() != "/tools?page=1" {
		t.Errorf("PrevURL = %q", p.PrevURL())
	}
	if p.NextURL() != "/tools?page=3" {
		t.Errorf("NextURL = %q", p.NextURL())
	}
	if !p.ShouldShow() {
		t.Error("multi-page listing should show pagination")
	}
}

func TestBuildPaginationPreservesFilters(t *testing.T) {
	params := url.Values{}
	params.Set("category", "Web Security")
	params.Set("q", "sql")
	params.Set("page", "2") // must not be carried into links

	p := BuildPagination(2, 3, 25, "/tools", params)

	next := p.NextURL()
	u, err := url.Parse(next)
	if err != nil {
		t.Fatalf("parsing %q: %v", next, err)
	}
	q := u.Query()
	if q.Get("category") != "Web Security" || q.Get("q") != "sql" {
		t.Errorf("filters lost in %q", next)
	}
	if q.Get("page") != "3" {
		t.Errorf("page = %q in %q, want 3", q.Get("page"), next)
	}
}

func TestBuildPaginationEdges(t *testing.T) {
	t.Run("single page hides controls", func(t *testing.T) {
		p := BuildPagination(1, 1, 3, "/news", nil)
		if p.ShouldShow() || p.HasPrev || p.HasNext {
			t.Errorf("single page: %+v", p)
		}
	})

	t.Run("zero pages clamps to one", func(t *testing.T) {
		p := BuildPagination(1, 0, 0, "/news", nil)
		if p.TotalPages != 1 {
			t.Errorf("TotalPages = %d, want 1", p.TotalPages)
		}
	})

	t.Run("empty filter values are dropped", func(t *testing.T) {
		params := url.Values{}
		params.Set("q", "")
		p := BuildPagination(1, 2, 12, "/blog", params)
		if p.QueryString != "" {
			t.Errorf("QueryString = %q, want empty", p.QueryString)
		}
	})
}
