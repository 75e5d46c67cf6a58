// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// ThumbWidth is the bounding width for generated image thumbnails.
const ThumbWidth = 400

// LocalStore is a Gateway backed by a directory on disk, served under a
// public base URL (e.g. /uploads).
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates a LocalStore rooted at dir. The directory is created
// if missing.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Store implements Gateway. The reference is a fresh UUID with the original
// extension appended; the client-supplied name never reaches the filesystem.
func (s *LocalStore) Store(ctx context.Context, src io.Reader, originalName string, policy Policy) (StoredFile, error) {
	if !policy.Allows(originalName) {
		return StoredFile{}, fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(originalName))
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	ref := uuid.New().String() + ext

	dst, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return StoredFile{}, fmt.Errorf("creating file: %w", err)
	}

	// Copy with a one-byte allowance over the cap so overruns are detectable.
	n, err := io.Copy(dst, io.LimitReader(src, policy.MaxBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, ref))
		return StoredFile{}, fmt.Errorf("writing file: %w", err)
	}
	if n > policy.MaxBytes {
		_ = os.Remove(filepath.Join(s.dir, ref))
		return StoredFile{}, fmt.Errorf("%w: limit %d bytes", ErrFileTooLarge, policy.MaxBytes)
	}

	if err := ctx.Err(); err != nil {
		_ = os.Remove(filepath.Join(s.dir, ref))
		return StoredFile{}, err
	}

	if isImageExt(ext) {
		s.createThumbnail(ref)
	}

	return StoredFile{Ref: ref, Size: n}, nil
}

// Release implements Gateway.
func (s *LocalStore) Release(_ context.Context, ref string) {
	// Refuse anything that is not a bare generated filename.
	if ref == "" || ref != filepath.Base(ref) {
		slog.Warn("refusing to release suspicious media reference", "ref", ref)
		return
	}
	if err := os.Remove(filepath.Join(s.dir, ref)); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to release media file", "ref", ref, "error", err)
	}
	if err := os.Remove(filepath.Join(s.dir, thumbName(ref))); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to release media thumbnail", "ref", ref, "error", err)
	}
}

// Resolve implements Gateway.
func (s *LocalStore) Resolve(ref string) string {
	return s.baseURL + "/" + ref
}

// ResolveThumb returns the thumbnail URL for an image reference. Callers fall
// back to Resolve when no thumbnail exists.
func (s *LocalStore) ResolveThumb(ref string) string {
	thumb := thumbName(ref)
	if _, err := os.Stat(filepath.Join(s.dir, thumb)); err != nil {
		return s.Resolve(ref)
	}
	return s.baseURL + "/" + thumb
}

// Path returns the on-disk path for a reference, for serving raw files.
// Returns false when the reference escapes the store directory.
func (s *LocalStore) Path(ref string) (string, bool) {
	if ref == "" || ref != filepath.Base(ref) {
		return "", false
	}
	return filepath.Join(s.dir, ref), true
}

// createThumbnail writes a resized variant alongside the original. Failure is
// non-fatal: the original is already stored.
func (s *LocalStore) createThumbnail(ref string) {
	srcPath := filepath.Join(s.dir, ref)
	img, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		slog.Warn("failed to decode image for thumbnail", "ref", ref, "error", err)
		return
	}
	thumb := imaging.Resize(img, ThumbWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(s.dir, thumbName(ref))); err != nil {
		slog.Warn("failed to save thumbnail", "ref", ref, "error", err)
	}
}

func thumbName(ref string) string {
	ext := path.Ext(ref)
	return strings.TrimSuffix(ref, ext) + "_thumb" + ext
}

func isImageExt(ext string) bool {
	switch strings.TrimPrefix(ext, ".") {
	case "png", "jpg", "jpeg", "gif", "webp":
		return true
	}
	return false
}
