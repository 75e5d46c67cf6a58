// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"toolshed/internal/model"
	"toolshed/internal/policy"
	"toolshed/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser holds the authenticated *model.User for a request.
const ContextKeyUser ContextKey = "user"

// SessionKeyUserID is the session key for the authenticated user id.
const SessionKeyUserID = "user_id"

// LoadUser loads the current user into the request context when the session
// carries a user id. It never redirects: absence of a principal is fine for
// public routes.
func LoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				// Stale session - drop it and continue unauthenticated.
				_ = sm.Destroy(r.Context())
				next.ServeHTTP(w, r)
				return
			}
			if !user.Role.Valid() {
				// Roles are a closed set; a row outside it never becomes
				// a principal.
				_ = sm.Destroy(r.Context())
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth gates routes at the authenticated-read tier. Unauthenticated
// requests are redirected to the login form.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := policy.Authorize(GetUser(r), policy.AuthenticatedRead); err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin gates routes at the admin-write tier. Unauthenticated
// requests go to login; authenticated non-admins get a plain denial.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := policy.Authorize(GetUser(r), policy.AdminWrite)
		switch {
		case errors.Is(err, policy.ErrUnauthenticated):
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		case errors.Is(err, policy.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}
