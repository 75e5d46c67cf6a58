// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return s
}

func TestLocalStoreRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	stored, err := s.Store(ctx, strings.NewReader("package main"), "scanner.go", GalleryPolicy())
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if stored.Size != int64(len("package main")) {
		t.Errorf("Size = %d, want %d", stored.Size, len("package main"))
	}
	if !strings.HasSuffix(stored.Ref, ".go") {
		t.Errorf("ref %q does not keep the extension", stored.Ref)
	}
	if strings.Contains(stored.Ref, "scanner") {
		t.Errorf("ref %q leaks the client-supplied name", stored.Ref)
	}

	path, ok := s.Path(stored.Ref)
	if !ok {
		t.Fatalf("Path(%q) not ok", stored.Ref)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != "package main" {
		t.Errorf("stored content = %q", data)
	}

	if url := s.Resolve(stored.Ref); url != "/uploads/"+stored.Ref {
		t.Errorf("Resolve = %q", url)
	}

	s.Release(ctx, stored.Ref)
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("file still exists after release: %v", err)
	}
	// Releasing again is a no-op.
	s.Release(ctx, stored.Ref)
}

func TestLocalStoreResolveThumb(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	// Without a thumbnail on disk the original URL comes back.
	if got := s.ResolveThumb("a.png"); got != "/uploads/a.png" {
		t.Errorf("ResolveThumb without variant = %q", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "a_thumb.png"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := s.ResolveThumb("a.png"); got != "/uploads/a_thumb.png" {
		t.Errorf("ResolveThumb with variant = %q", got)
	}
}

func TestLocalStoreRejectsExtension(t *testing.T) {
	s := testStore(t)

	_, err := s.Store(context.Background(), strings.NewReader("MZ"), "payload.exe", GalleryPolicy())
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("got %v, want ErrUnsupportedType", err)
	}
}

func TestLocalStoreRejectsOversize(t *testing.T) {
	s := testStore(t)
	policy := Policy{Extensions: []string{"txt"}, MaxBytes: 8}

	_, err := s.Store(context.Background(), strings.NewReader("123456789"), "big.txt", policy)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("got %v, want ErrFileTooLarge", err)
	}

	// Exactly at the cap is fine.
	stored, err := s.Store(context.Background(), strings.NewReader("12345678"), "ok.txt", policy)
	if err != nil {
		t.Fatalf("Store at cap: %v", err)
	}
	if stored.Size != 8 {
		t.Errorf("Size = %d, want 8", stored.Size)
	}
}

func TestLocalStorePathTraversal(t *testing.T) {
	s := testStore(t)

	for _, ref := range []string{"", "../secret", "a/b.png", "..", "/etc/passwd"} {
		if _, ok := s.Path(ref); ok {
			t.Errorf("Path(%q) accepted a non-bare reference", ref)
		}
	}

	// Release must refuse the same references without touching the fs.
	outside := filepath.Join(t.TempDir(), "keep.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	s.Release(context.Background(), "../"+filepath.Base(outside))
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("release followed a traversal reference: %v", err)
	}
}

func TestPolicyAllows(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		file    string
		allowed bool
	}{
		{"image policy png", ImagePolicy(), "shot.png", true},
		{"image policy uppercase", ImagePolicy(), "SHOT.PNG", true},
		{"image policy rejects script", ImagePolicy(), "x.py", false},
		{"image policy no extension", ImagePolicy(), "README", false},
		{"gallery policy video", GalleryPolicy(), "demo.mp4", true},
		{"gallery policy code", GalleryPolicy(), "tool.py", true},
		{"gallery policy rejects binary", GalleryPolicy(), "setup.exe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Allows(tt.file); got != tt.allowed {
				t.Errorf("Allows(%q) = %v, want %v", tt.file, got, tt.allowed)
			}
		})
	}
}
