// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"toolshed/internal/model"
	"toolshed/internal/session"
	"toolshed/internal/store"
	"toolshed/internal/testutil"
)

func requestAs(user *model.User) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/gallery", nil)
	if user != nil {
		r = r.WithContext(context.WithValue(r.Context(), ContextKeyUser, *user))
	}
	return r
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), &called
}

func TestRequireAuth(t *testing.T) {
	t.Run("anonymous redirects to login", func(t *testing.T) {
		next, called := okHandler()
		rec := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rec, requestAs(nil))

		if *called {
			t.Error("handler ran for anonymous request")
		}
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
			t.Errorf("got %d -> %q", rec.Code, rec.Header().Get("Location"))
		}
	})

	t.Run("any authenticated user passes", func(t *testing.T) {
		next, called := okHandler()
		rec := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rec, requestAs(&model.User{Role: model.RoleUser}))

		if !*called {
			t.Error("handler did not run for authenticated user")
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Run("anonymous redirects to login", func(t *testing.T) {
		next, called := okHandler()
		rec := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rec, requestAs(nil))

		if *called {
			t.Error("handler ran for anonymous request")
		}
		if rec.Code != http.StatusSeeOther {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("non-admin gets forbidden", func(t *testing.T) {
		next, called := okHandler()
		rec := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rec, requestAs(&model.User{Role: model.RoleUser}))

		if *called {
			t.Error("handler ran for non-admin")
		}
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("admin passes", func(t *testing.T) {
		next, called := okHandler()
		rec := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rec, requestAs(&model.User{Role: model.RoleAdmin}))

		if !*called {
			t.Error("handler did not run for admin")
		}
	})
}

// signIn runs one request that stores the user id in a fresh session and
// returns the issued cookie.
func signIn(t *testing.T, sm *scs.SessionManager, id int64) *http.Cookie {
	t.Helper()

	h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), SessionKeyUserID, id)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie issued")
	}
	return cookies[0]
}

func TestLoadUser(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	queries := store.New(db)
	ctx := context.Background()

	member, err := queries.CreateUser(ctx, store.CreateUserParams{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "x",
		Role:         model.RoleUser,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	// A row with a role outside the closed set, as a mangled database would
	// produce it.
	rogue, err := queries.CreateUser(ctx, store.CreateUserParams{
		Username:     "mallory",
		Email:        "mallory@example.com",
		PasswordHash: "x",
		Role:         model.Role("superuser"),
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	sm := session.New(db, true)
	var got *model.User
	chain := sm.LoadAndSave(LoadUser(sm, db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUser(r)
	})))

	load := func(cookie *http.Cookie) {
		got = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		chain.ServeHTTP(httptest.NewRecorder(), req)
	}

	t.Run("known user becomes the principal", func(t *testing.T) {
		load(signIn(t, sm, member.ID))
		if got == nil || got.Username != "alice" {
			t.Errorf("GetUser = %+v, want alice", got)
		}
	})

	t.Run("unknown role stays anonymous", func(t *testing.T) {
		load(signIn(t, sm, rogue.ID))
		if got != nil {
			t.Errorf("GetUser = %+v, want nil", got)
		}
	})

	t.Run("stale session stays anonymous", func(t *testing.T) {
		load(signIn(t, sm, member.ID+rogue.ID+100))
		if got != nil {
			t.Errorf("GetUser = %+v, want nil", got)
		}
	})
}

func TestGetUser(t *testing.T) {
	if GetUser(requestAs(nil)) != nil {
		t.Error("GetUser on anonymous request should be nil")
	}

	user := GetUser(requestAs(&model.User{Username: "alice"}))
	if user == nil || user.Username != "alice" {
		t.Errorf("GetUser = %+v", user)
	}
}
