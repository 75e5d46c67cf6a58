// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"toolshed/internal/auth"
	"toolshed/internal/model"
)

// AdminBootstrap configures the auto-provisioned admin account.
type AdminBootstrap struct {
	Username string
	Email    string
	// Password may be empty, in which case a random one is generated and
	// logged once at startup.
	Password string
}

// EnsureAdmin guarantees that an admin account exists. It is idempotent and
// safe to run from several instances at once: the count and insert share one
// transaction, and the users.username unique index serializes concurrent
// bootstrap attempts, so a constraint violation here means another instance
// won the race and is not an error.
func EnsureAdmin(ctx context.Context, db *sql.DB, bootstrap AdminBootstrap) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting bootstrap transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	queries := New(db).WithTx(tx)

	n, err := queries.CountUsersByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("counting admin users: %w", err)
	}
	if n > 0 {
		return nil
	}

	password := bootstrap.Password
	generated := false
	if password == "" {
		password, err = randomPassword()
		if err != nil {
			return fmt.Errorf("generating admin password: %w", err)
		}
		generated = true
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Username:     bootstrap.Username,
		Email:        bootstrap.Email,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now(),
	})
	switch {
	case err == nil:
	case IsUniqueViolation(err, "users.username") || IsUniqueViolation(err, "users.email"):
		slog.Info("admin user created by another instance, skipping bootstrap")
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return nil
	default:
		return fmt.Errorf("creating admin user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing admin bootstrap: %w", err)
	}

	if generated {
		slog.Info("created admin user with generated password",
			"id", user.ID,
			"username", user.Username,
			"password", password,
		)
	} else {
		slog.Info("created admin user", "id", user.ID, "username", user.Username)
	}

	return nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
