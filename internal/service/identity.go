// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"toolshed/internal/auth"
	"toolshed/internal/model"
	"toolshed/internal/store"
)

// Registration constraints.
const (
	UsernameMinLen = 3
	UsernameMaxLen = 80
	PasswordMinLen = 6
)

// IdentityService manages user accounts and credentials.
type IdentityService struct {
	queries *store.Queries
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(db *sql.DB) *IdentityService {
	return &IdentityService{queries: store.New(db)}
}

// Register creates a new account with role user. Fails with a
// ValidationError for bad input and ErrDuplicateUsername/ErrDuplicateEmail
// for uniqueness conflicts.
func (s *IdentityService) Register(ctx context.Context, username, email, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	v := validation{}
	if len(username) < UsernameMinLen || len(username) > UsernameMaxLen {
		v["username"] = fmt.Sprintf("must be %d-%d characters", UsernameMinLen, UsernameMaxLen)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		v["email"] = "must be a valid email address"
	}
	if len(password) < PasswordMinLen {
		v["password"] = fmt.Sprintf("must be at least %d characters", PasswordMinLen)
	}
	if err := v.err(); err != nil {
		return model.User{}, err
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleUser,
		CreatedAt:    time.Now(),
	})
	switch {
	case store.IsUniqueViolation(err, "users.username"):
		return model.User{}, ErrDuplicateUsername
	case store.IsUniqueViolation(err, "users.email"):
		return model.User{}, ErrDuplicateEmail
	case err != nil:
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// Authenticate verifies a username/password pair. Unknown usernames and
// wrong passwords both fail with ErrInvalidCredentials so callers cannot
// enumerate accounts.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	user, err := s.queries.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Burn a hash verification anyway to keep timing comparable.
			_, _ = auth.CheckPassword(password, decoyHash)
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return model.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// decoyHash is verified against when the username is unknown, so both
// failure paths cost one argon2id verification.
var decoyHash = func() string {
	h, err := auth.HashPassword("decoy")
	if err != nil {
		panic(err)
	}
	return h
}()

// ChangePassword replaces the user's password after verifying the old one.
func (s *IdentityService) ChangePassword(ctx context.Context, user *model.User, oldPassword, newPassword string) error {
	ok, err := auth.CheckPassword(oldPassword, user.PasswordHash)
	if err != nil || !ok {
		return ErrWrongOldPassword
	}
	return s.SetPassword(ctx, user, newPassword)
}

// SetPassword replaces the user's password without an old-password check.
// Used by the reset flow, where possession of a valid token is the proof.
func (s *IdentityService) SetPassword(ctx context.Context, user *model.User, newPassword string) error {
	if len(newPassword) < PasswordMinLen {
		return validation{"password": fmt.Sprintf("must be at least %d characters", PasswordMinLen)}.err()
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.queries.UpdateUserPassword(ctx, user.ID, passwordHash); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	user.PasswordHash = passwordHash
	return nil
}

// GetByID returns the user with the given id, or ErrNotFound.
func (s *IdentityService) GetByID(ctx context.Context, id int64) (model.User, error) {
	user, err := s.queries.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return user, err
}

// GetByEmail returns the user with the given email, or ErrNotFound.
func (s *IdentityService) GetByEmail(ctx context.Context, email string) (model.User, error) {
	user, err := s.queries.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return user, err
}
