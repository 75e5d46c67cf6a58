// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package policy is the access-control gate for content operations. Reads
// are public, gallery raw-file retrieval needs any authenticated principal,
// and every mutation needs the admin role.
package policy

import (
	"errors"

	"toolshed/internal/model"
)

// Access denial kinds.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")
)

// Action is the access tier an operation requires.
type Action int

// Access tiers.
const (
	// PublicRead covers all content listing and retrieval.
	PublicRead Action = iota
	// AuthenticatedRead covers previously-uploaded gallery file retrieval.
	AuthenticatedRead
	// AdminWrite covers every mutating content operation.
	AdminWrite
)

// Authorize checks whether the principal may perform the action. A nil
// principal is an unauthenticated request.
func Authorize(principal *model.User, action Action) error {
	switch action {
	case PublicRead:
		return nil
	case AuthenticatedRead:
		if principal == nil {
			return ErrUnauthenticated
		}
		return nil
	case AdminWrite:
		if principal == nil {
			return ErrUnauthenticated
		}
		if principal.Role != model.RoleAdmin {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}
