// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"

	"filippo.io/csrf/gorilla"
)

// CSRF returns a middleware providing cross-site request forgery protection
// for form routes. It uses Fetch metadata headers rather than cookies.
func CSRF(authKey []byte, isDev bool) func(http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	}

	if isDev {
		// The csrf library expects host-only values, not full URLs.
		opts = append(opts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"127.0.0.1:8080",
		}))
	}

	return csrf.Protect(authKey, opts...)
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	slog.Warn("CSRF validation failed",
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
	)
	http.Error(w, "Forbidden - CSRF validation failed", http.StatusForbidden)
}
