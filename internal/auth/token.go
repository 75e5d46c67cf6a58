// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ResetTokenMaxAge is the validity window for password-reset tokens.
const ResetTokenMaxAge = time.Hour

// Reset token failure kinds. Expired tokens prompt the user to request a new
// link; invalid ones get a generic rejection.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenService issues and verifies password-reset tokens. Tokens are never
// stored: validity is purely the HMAC signature plus the embedded timestamp.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a TokenService signing with the given secret.
func NewTokenService(secret []byte) *TokenService {
	return &TokenService{secret: secret, now: time.Now}
}

// IssueResetToken returns an opaque reset token binding the email to the
// current timestamp. The same email, timestamp and secret always produce the
// same token.
func (s *TokenService) IssueResetToken(email string) string {
	payload := fmt.Sprintf("%s|%d", email, s.now().Unix())
	sig := s.sign(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(payload)) + "." + sig
}

// VerifyResetToken validates a token and returns the email it was issued for.
// Returns ErrTokenExpired when the token is older than maxAge and
// ErrTokenInvalid for anything malformed or tampered with.
func (s *TokenService) VerifyResetToken(token string, maxAge time.Duration) (string, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok {
		return "", ErrTokenInvalid
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrTokenInvalid
	}
	payload := string(raw)

	if !hmac.Equal([]byte(s.sign(payload)), []byte(sig)) {
		return "", ErrTokenInvalid
	}

	email, tsStr, ok := strings.Cut(payload, "|")
	if !ok || email == "" {
		return "", ErrTokenInvalid
	}

	ts, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return "", ErrTokenInvalid
	}

	issued := time.Unix(ts, 0)
	if s.now().Sub(issued) > maxAge {
		return "", ErrTokenExpired
	}

	return email, nil
}

func (s *TokenService) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
