// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Setenv("TOOLSHED_SECRET", strings.Repeat("s", MinSecretLength))
	t.Setenv("TOOLSHED_SERVER_PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServerAddr() != "localhost:9000" {
		t.Errorf("ServerAddr = %q", cfg.ServerAddr())
	}
	if !cfg.IsDevelopment() {
		t.Error("default env should be development")
	}
	if cfg.MailEnabled() {
		t.Error("mail should be disabled without SMTP config")
	}
	if cfg.GalleryDir == cfg.UploadsDir {
		t.Error("gallery dir must be separate from the public uploads dir")
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("TOOLSHED_SECRET", "too-short")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestMailEnabled(t *testing.T) {
	t.Setenv("TOOLSHED_SECRET", strings.Repeat("s", MinSecretLength))
	t.Setenv("TOOLSHED_SMTP_HOST", "smtp.example.com")
	t.Setenv("TOOLSHED_SMTP_SENDER", "noreply@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.MailEnabled() {
		t.Error("mail should be enabled with host and sender set")
	}
}
