// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the content lifecycle: per-kind repositories
// with create/update/delete/list semantics, identity management, and the
// rules tying uploaded media to content rows.
package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Failure kinds surfaced to handlers. Every one maps to a request-scoped,
// user-facing outcome; none are fatal.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateSlug      = errors.New("slug already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongOldPassword   = errors.New("old password does not match")
)

// ValidationError reports field-level input problems.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, f := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// validation collects field errors and returns nil when there are none.
type validation map[string]string

func (v validation) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}
