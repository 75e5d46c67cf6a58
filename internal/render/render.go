// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render wraps html/template parsing and execution. Handlers hand it
// a view name and data; nothing else in the application formats HTML.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer holds the parsed template set.
type Renderer struct {
	templates map[string]*template.Template
	markdown  goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// New parses all templates from the filesystem. Every page template is
// combined with the base layout; template names are paths relative to the
// templates root without the .html suffix (e.g. "blog/post").
func New(templatesFS fs.FS) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
		sanitizer: bluemonday.UGCPolicy(),
	}

	const baseLayout = "layouts/base.html"

	pages, err := fs.Glob(templatesFS, "pages/*/*.html")
	if err != nil {
		return nil, fmt.Errorf("globbing templates: %w", err)
	}
	topPages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("globbing templates: %w", err)
	}
	pages = append(pages, topPages...)

	for _, tmplPath := range pages {
		name := strings.TrimPrefix(tmplPath, "pages/")
		name = strings.TrimSuffix(name, ".html")

		tmpl, err := template.New(path.Base(baseLayout)).
			Funcs(r.funcs()).
			ParseFS(templatesFS, baseLayout, tmplPath)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}

	return r, nil
}

// Render executes the named template into the response. Execution happens
// into a buffer first so a template error yields a clean 500 instead of a
// half-written page.
func (r *Renderer) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := r.templates[name]
	if !ok {
		slog.Error("unknown template", "name", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Error("template execution failed", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// Markdown renders markdown source to sanitized HTML.
func (r *Renderer) Markdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(source), &buf); err != nil {
		slog.Warn("markdown rendering failed", "error", err)
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(r.sanitizer.SanitizeBytes(buf.Bytes()))
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"markdown": r.Markdown,
		"dateFormat": func(t time.Time, layout string) string {
			return t.Format(layout)
		},
		"truncate": func(s string, max int) string {
			if len(s) <= max {
				return s
			}
			return s[:max] + "…"
		},
	}
}
