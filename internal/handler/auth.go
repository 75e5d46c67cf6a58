// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"toolshed/internal/auth"
	"toolshed/internal/mailer"
	"toolshed/internal/middleware"
	"toolshed/internal/render"
	"toolshed/internal/service"
)

// AuthHandler handles registration, login and the password flows.
type AuthHandler struct {
	identity       *service.IdentityService
	tokens         *auth.TokenService
	mailer         mailer.Mailer
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	baseURL        string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, tokens *auth.TokenService, m mailer.Mailer, renderer *render.Renderer, sm *scs.SessionManager, baseURL string) *AuthHandler {
	return &AuthHandler{
		identity:       service.NewIdentityService(db),
		tokens:         tokens,
		mailer:         m,
		renderer:       renderer,
		sessionManager: sm,
		baseURL:        baseURL,
	}
}

// authData is the template payload for the auth pages.
type authData struct {
	BaseData
	Errors map[string]string
	Values map[string]string
	Token  string
}

func (h *AuthHandler) authPage(r *http.Request, title string) authData {
	data := authData{BaseData: BaseData{Title: title, User: currentUser(r)}}
	data.Flash, data.FlashType = popFlash(r, h.sessionManager)
	return data
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "auth/register", h.authPage(r, "Register"))
}

// Register handles the registration form submission.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.sessionManager, "/register", "Invalid form data")
		return
	}

	username := r.FormValue("username")
	email := r.FormValue("email")
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	if password != confirm {
		h.registerFailed(w, r, username, email, map[string]string{"confirm_password": "passwords do not match"})
		return
	}

	_, err := h.identity.Register(r.Context(), username, email, password)
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrDuplicateUsername):
			h.registerFailed(w, r, username, email, map[string]string{"username": "username already taken"})
		case errors.Is(err, service.ErrDuplicateEmail):
			h.registerFailed(w, r, username, email, map[string]string{"email": "email already registered"})
		case errors.As(err, &vErr):
			h.registerFailed(w, r, username, email, vErr.Fields)
		default:
			slog.Error("registration failed", "error", err)
			flashError(w, r, h.sessionManager, "/register", "Something went wrong, please try again")
		}
		return
	}

	flashSuccess(w, r, h.sessionManager, "/login", "Registration successful! Please log in.")
}

func (h *AuthHandler) registerFailed(w http.ResponseWriter, r *http.Request, username, email string, fieldErrors map[string]string) {
	data := h.authPage(r, "Register")
	data.Errors = fieldErrors
	data.Values = map[string]string{"username": username, "email": email}
	h.renderer.Render(w, "auth/register", data)
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if currentUser(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, "auth/login", h.authPage(r, "Log in"))
}

// Login handles the login form submission. Unknown usernames and wrong
// passwords produce the same message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.sessionManager, "/login", "Invalid form data")
		return
	}

	user, err := h.identity.Authenticate(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			flashError(w, r, h.sessionManager, "/login", "Invalid credentials.")
			return
		}
		slog.Error("login failed", "error", err)
		flashError(w, r, h.sessionManager, "/login", "Something went wrong, please try again")
		return
	}

	// Rotate the session token on privilege change.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		slog.Error("session renewal failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	flashSuccess(w, r, h.sessionManager, "/", "Logged in successfully.")
}

// Logout destroys the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ChangePasswordForm renders the password change page.
func (h *AuthHandler) ChangePasswordForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "auth/change_password", h.authPage(r, "Change password"))
}

// ChangePassword handles the password change form submission.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.sessionManager, "/account/password", "Invalid form data")
		return
	}

	newPassword := r.FormValue("new_password")
	if newPassword != r.FormValue("confirm_new_password") {
		flashError(w, r, h.sessionManager, "/account/password", "New passwords do not match.")
		return
	}

	err := h.identity.ChangePassword(r.Context(), user, r.FormValue("old_password"), newPassword)
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrWrongOldPassword):
			flashError(w, r, h.sessionManager, "/account/password", "Old password does not match.")
		case errors.As(err, &vErr):
			flashError(w, r, h.sessionManager, "/account/password", vErr.Error())
		default:
			slog.Error("password change failed", "error", err)
			flashError(w, r, h.sessionManager, "/account/password", "Something went wrong, please try again")
		}
		return
	}

	flashSuccess(w, r, h.sessionManager, "/", "Password changed.")
}

// ForgotPasswordForm renders the forgot-password page.
func (h *AuthHandler) ForgotPasswordForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "auth/forgot_password", h.authPage(r, "Forgot password"))
}

// ForgotPassword issues a reset token and mails the link. The response is
// the same whether or not the email exists, and a delivery failure is only
// logged, so the form cannot be used to enumerate accounts.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.sessionManager, "/forgot-password", "Invalid form data")
		return
	}

	email := r.FormValue("email")
	if user, err := h.identity.GetByEmail(r.Context(), email); err == nil {
		token := h.tokens.IssueResetToken(user.Email)
		link := fmt.Sprintf("%s/reset-password/%s", h.baseURL, token)
		body := fmt.Sprintf("Hello %s,\n\n"+
			"A password reset was requested for your account. Follow this link within one hour to choose a new password:\n\n%s\n\n"+
			"If you did not request this, you can ignore this message.\n", user.Username, link)
		if err := h.mailer.Send(r.Context(), user.Email, "Password reset", body); err != nil {
			slog.Warn("reset mail delivery failed", "error", err)
		}
	} else if !errors.Is(err, service.ErrNotFound) {
		slog.Error("reset lookup failed", "error", err)
	}

	flashSuccess(w, r, h.sessionManager, "/login", "If that email is registered, a reset link has been sent.")
}

// ResetPasswordForm renders the reset page after validating the token.
func (h *AuthHandler) ResetPasswordForm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if _, err := h.tokens.VerifyResetToken(token, auth.ResetTokenMaxAge); err != nil {
		h.rejectToken(w, r, err)
		return
	}

	data := h.authPage(r, "Reset password")
	data.Token = token
	h.renderer.Render(w, "auth/reset_password", data)
}

// ResetPassword sets a new password for the email bound to a valid token.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	email, err := h.tokens.VerifyResetToken(token, auth.ResetTokenMaxAge)
	if err != nil {
		h.rejectToken(w, r, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.sessionManager, "/reset-password/"+token, "Invalid form data")
		return
	}

	password := r.FormValue("password")
	if password != r.FormValue("confirm_password") {
		flashError(w, r, h.sessionManager, "/reset-password/"+token, "Passwords do not match.")
		return
	}

	user, err := h.identity.GetByEmail(r.Context(), email)
	if err != nil {
		flashError(w, r, h.sessionManager, "/forgot-password", "That account no longer exists.")
		return
	}

	if err := h.identity.SetPassword(r.Context(), &user, password); err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			flashError(w, r, h.sessionManager, "/reset-password/"+token, vErr.Error())
			return
		}
		slog.Error("password reset failed", "error", err)
		flashError(w, r, h.sessionManager, "/reset-password/"+token, "Something went wrong, please try again")
		return
	}

	flashSuccess(w, r, h.sessionManager, "/login", "Password updated. Please log in.")
}

// rejectToken maps the two token failure kinds to their user guidance:
// expired prompts a re-request, anything else gets a generic rejection.
func (h *AuthHandler) rejectToken(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, auth.ErrTokenExpired) {
		flashError(w, r, h.sessionManager, "/forgot-password", "That reset link has expired. Please request a new one.")
		return
	}
	flashError(w, r, h.sessionManager, "/forgot-password", "Invalid reset link.")
}
