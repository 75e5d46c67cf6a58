// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	fsys := fstest.MapFS{
		"layouts/base.html": {Data: []byte(
			`<html><title>{{.Title}}</title><body>{{template "content" .}}</body></html>`)},
		"pages/greeting.html": {Data: []byte(
			`{{define "content"}}<p>Hello {{.Name}}</p>{{end}}`)},
		"pages/sub/nested.html": {Data: []byte(
			`{{define "content"}}<p>nested</p>{{end}}`)},
	}
	r, err := New(fsys)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestRender(t *testing.T) {
	r := testRenderer(t)

	rec := httptest.NewRecorder()
	r.Render(rec, "greeting", struct {
		Title string
		Name  string
	}{"Greetings", "World"})

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<p>Hello World</p>") {
		t.Errorf("body = %q", body)
	}
	if !strings.Contains(body, "<title>Greetings</title>") {
		t.Errorf("layout not applied: %q", body)
	}
}

func TestRenderNestedName(t *testing.T) {
	r := testRenderer(t)

	rec := httptest.NewRecorder()
	r.Render(rec, "sub/nested", struct{ Title string }{"N"})
	if !strings.Contains(rec.Body.String(), "nested") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := testRenderer(t)

	rec := httptest.NewRecorder()
	r.Render(rec, "no-such-page", nil)
	if rec.Code != 500 {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestMarkdown(t *testing.T) {
	r := testRenderer(t)

	t.Run("renders markdown", func(t *testing.T) {
		out := string(r.Markdown("# Heading\n\nSome **bold** text."))
		if !strings.Contains(out, "<h1>") || !strings.Contains(out, "<strong>bold</strong>") {
			t.Errorf("out = %q", out)
		}
	})

	t.Run("strips script tags", func(t *testing.T) {
		out := string(r.Markdown("hello <script>alert(1)</script> world"))
		if strings.Contains(out, "<script>") {
			t.Errorf("script survived sanitization: %q", out)
		}
	})

	t.Run("gfm tables", func(t *testing.T) {
		out := string(r.Markdown("| a | b |\n|---|---|\n| 1 | 2 |"))
		if !strings.Contains(out, "<table>") {
			t.Errorf("table not rendered: %q", out)
		}
	})
}
