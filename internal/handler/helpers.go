// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"toolshed/internal/middleware"
	"toolshed/internal/model"
	"toolshed/internal/service"
)

// BaseData carries the fields every page template expects.
type BaseData struct {
	Title     string
	User      *model.User
	Flash     string
	FlashType string
}

// pageParam reads the 1-indexed "page" query parameter, defaulting to 1.
func pageParam(r *http.Request) int {
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		return p
	}
	return 1
}

// idParam reads a chi URL parameter as an int64 id.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// currentUser is a shorthand for the middleware context lookup.
func currentUser(r *http.Request) *model.User {
	return middleware.GetUser(r)
}

// serviceError translates a repository failure into an HTTP response for
// flows that do not redirect. Validation errors and uniqueness conflicts are
// handled at their call sites; this covers the generic cases.
func serviceError(w http.ResponseWriter, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		http.NotFound(w, nil)
	case errors.As(err, &vErr):
		http.Error(w, vErr.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// optional returns a pointer to the form value when the field was submitted,
// nil when absent. Distinguishes "clear this field" from "leave unchanged"
// for partial updates.
func optional(r *http.Request, field string) *string {
	if _, ok := r.Form[field]; !ok {
		return nil
	}
	v := r.FormValue(field)
	return &v
}
