// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package media abstracts "store a user-supplied file, get back a reference"
// so the storage backend (local disk, remote object store) is swappable
// without touching content logic.
package media

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// Upload failure kinds.
var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
)

// StoredFile is the result of a successful upload. Ref is an opaque storage
// reference, never derived from the client-supplied name.
type StoredFile struct {
	Ref  string
	Size int64
}

// Gateway stores, releases and resolves media attachments.
type Gateway interface {
	// Store persists src under a collision-free reference. The policy bounds
	// the accepted extensions and size for the calling site.
	Store(ctx context.Context, src io.Reader, originalName string, policy Policy) (StoredFile, error)

	// Release deletes the stored file, best effort. It never returns an
	// error: a dangling blob is not a correctness violation, so backend
	// failures are logged and swallowed.
	Release(ctx context.Context, ref string)

	// Resolve produces a fetchable URL or path for the reference.
	Resolve(ref string) string
}

// Policy bounds what a call site accepts.
type Policy struct {
	// Extensions is the lowercase extension allow-list, without dots.
	Extensions []string
	// MaxBytes caps the upload size.
	MaxBytes int64
}

// Allows reports whether the policy accepts a file with the given name.
func (p Policy) Allows(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, allowed := range p.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ImagePolicy accepts inline and featured images.
func ImagePolicy() Policy {
	return Policy{
		Extensions: []string{"png", "jpg", "jpeg", "gif", "webp"},
		MaxBytes:   10 * 1024 * 1024,
	}
}

// GalleryPolicy accepts the broader set of gallery uploads: images, short
// videos and code/text files.
func GalleryPolicy() Policy {
	return Policy{
		Extensions: []string{
			"png", "jpg", "jpeg", "gif", "webp",
			"mp4", "webm", "mov",
			"py", "go", "js", "c", "cpp", "sh", "rb", "txt", "md", "zip",
		},
		MaxBytes: 50 * 1024 * 1024,
	}
}
