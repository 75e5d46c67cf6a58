// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mailer sends plain-text email over SMTP. Delivery failure is a
// degradation, not a request failure: callers decide whether to surface it.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"
)

// Delivery failure kinds.
var (
	ErrDelivery        = errors.New("mail delivery failed")
	ErrUpstreamTimeout = errors.New("mail server timed out")
)

// Mailer delivers a message to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPConfig holds the SMTP server configuration.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	Timeout  time.Duration
}

// SMTPMailer sends mail through a configured SMTP relay.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTP creates an SMTPMailer.
func NewSMTP(cfg SMTPConfig) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPMailer{cfg: cfg}
}

// Send delivers the message. The SMTP exchange is bounded by the configured
// timeout; a hung relay fails with ErrUpstreamTimeout rather than blocking
// the request.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.cfg.Sender,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var a smtp.Auth
	if m.cfg.Username != "" {
		a = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, a, m.cfg.Sender, []string{to}, []byte(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDelivery, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, ctx.Err())
	}
}

// LogMailer logs messages instead of delivering them. Used in development
// when no SMTP relay is configured.
type LogMailer struct{}

// Send implements Mailer.
func (LogMailer) Send(_ context.Context, to, subject, _ string) error {
	slog.Info("mail delivery skipped (no SMTP configured)", "to", to, "subject", subject)
	return nil
}
