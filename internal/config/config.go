// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// MinSecretLength is the minimum required length for the signing secret.
const MinSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"TOOLSHED_DB_PATH" envDefault:"./data/toolshed.db"`
	Secret     string `env:"TOOLSHED_SECRET,required"`
	ServerHost string `env:"TOOLSHED_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"TOOLSHED_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"TOOLSHED_ENV" envDefault:"development"`
	LogLevel   string `env:"TOOLSHED_LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"TOOLSHED_UPLOADS_DIR" envDefault:"./uploads"`
	// GalleryDir must not live under UploadsDir: gallery files are delivered
	// through the authenticated gallery route, never the public file server.
	GalleryDir string `env:"TOOLSHED_GALLERY_DIR" envDefault:"./data/gallery"`
	BaseURL    string `env:"TOOLSHED_BASE_URL" envDefault:"http://localhost:8080"`

	// Bootstrap admin identity. The password may be left empty; a random one
	// is then generated and logged once at first startup.
	AdminUsername string `env:"TOOLSHED_ADMIN_USERNAME" envDefault:"admin"`
	AdminEmail    string `env:"TOOLSHED_ADMIN_EMAIL" envDefault:"admin@localhost"`
	AdminPassword string `env:"TOOLSHED_ADMIN_PASSWORD"`

	// SMTP configuration. Mail is disabled when the host is empty.
	SMTPHost    string        `env:"TOOLSHED_SMTP_HOST"`
	SMTPPort    int           `env:"TOOLSHED_SMTP_PORT" envDefault:"587"`
	SMTPUser    string        `env:"TOOLSHED_SMTP_USERNAME"`
	SMTPPass    string        `env:"TOOLSHED_SMTP_PASSWORD"`
	SMTPSender  string        `env:"TOOLSHED_SMTP_SENDER"`
	MailTimeout time.Duration `env:"TOOLSHED_MAIL_TIMEOUT" envDefault:"10s"`
	ContactAddr string        `env:"TOOLSHED_CONTACT_ADDR"` // where contact-form mail goes

	UploadTimeout time.Duration `env:"TOOLSHED_UPLOAD_TIMEOUT" envDefault:"30s"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MailEnabled returns true if SMTP delivery is configured.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPSender != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// The secret signs sessions, CSRF tokens and reset tokens.
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("TOOLSHED_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSecretLength, len(cfg.Secret))
	}

	return cfg, nil
}
