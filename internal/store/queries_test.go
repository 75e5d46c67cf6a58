// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	uniqueErr := errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)")

	tests := []struct {
		name   string
		err    error
		column string
		want   bool
	}{
		{"nil error", nil, "", false},
		{"unrelated error", errors.New("disk I/O error"), "", false},
		{"any column", uniqueErr, "", true},
		{"matching column", uniqueErr, "users.username", true},
		{"other column", uniqueErr, "users.email", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err, tt.column); got != tt.want {
				t.Errorf("IsUniqueViolation(%v, %q) = %v, want %v", tt.err, tt.column, got, tt.want)
			}
		})
	}
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"nmap", "%nmap%"},
		{"50%", `%50\%%`},
		{"under_score", `%under\_score%`},
		{`back\slash`, `%back\\slash%`},
		{"", "%%"},
	}

	for _, tt := range tests {
		if got := likePattern(tt.term); got != tt.want {
			t.Errorf("likePattern(%q) = %q, want %q", tt.term, got, tt.want)
		}
	}
}
