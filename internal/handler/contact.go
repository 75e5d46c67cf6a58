// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/alexedwards/scs/v2"

	"toolshed/internal/mailer"
	"toolshed/internal/render"
)

// ContactHandler serves the contact form.
type ContactHandler struct {
	mailer         mailer.Mailer
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	contactAddr    string
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(m mailer.Mailer, renderer *render.Renderer, sm *scs.SessionManager, contactAddr string) *ContactHandler {
	return &ContactHandler{mailer: m, renderer: renderer, sessionManager: sm, contactAddr: contactAddr}
}

// Form renders the contact page.
func (h *ContactHandler) Form(w http.ResponseWriter, r *http.Request) {
	data := BaseData{Title: "Contact", User: currentUser(r)}
	data.Flash, data.FlashType = popFlash(r, h.sessionManager)
	h.renderer.Render(w, "contact", data)
}

// Submit delivers a contact message. Unlike the reset flow, a delivery
// failure here does surface to the user.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.sessionManager, "/contact", "Invalid form data")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	from := strings.TrimSpace(r.FormValue("email"))
	subject := strings.TrimSpace(r.FormValue("subject"))
	message := strings.TrimSpace(r.FormValue("message"))

	if name == "" || subject == "" || message == "" {
		flashError(w, r, h.sessionManager, "/contact", "All fields are required.")
		return
	}
	if _, err := mail.ParseAddress(from); err != nil {
		flashError(w, r, h.sessionManager, "/contact", "Please supply a valid email address.")
		return
	}

	body := fmt.Sprintf("From: %s <%s>\n\n%s\n", name, from, message)
	if err := h.mailer.Send(r.Context(), h.contactAddr, "[contact] "+subject, body); err != nil {
		slog.Warn("contact mail delivery failed", "error", err)
		flashError(w, r, h.sessionManager, "/contact", "Your message could not be sent. Please try again later.")
		return
	}

	flashSuccess(w, r, h.sessionManager, "/contact", "Thanks! Your message has been sent.")
}
