// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"io"

	"toolshed/internal/media"
)

// fakeGateway records stores and releases in memory.
type fakeGateway struct {
	seq      int
	stored   []string
	released []string
	storeErr error
}

func (g *fakeGateway) Store(_ context.Context, src io.Reader, originalName string, policy media.Policy) (media.StoredFile, error) {
	if g.storeErr != nil {
		return media.StoredFile{}, g.storeErr
	}
	if !policy.Allows(originalName) {
		return media.StoredFile{}, media.ErrUnsupportedType
	}
	n, err := io.Copy(io.Discard, src)
	if err != nil {
		return media.StoredFile{}, err
	}
	g.seq++
	ref := fmt.Sprintf("ref-%d", g.seq)
	g.stored = append(g.stored, ref)
	return media.StoredFile{Ref: ref, Size: n}, nil
}

func (g *fakeGateway) Release(_ context.Context, ref string) {
	g.released = append(g.released, ref)
}

func (g *fakeGateway) Resolve(ref string) string {
	return "/uploads/" + ref
}
