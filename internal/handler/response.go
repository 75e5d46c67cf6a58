// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler contains the HTTP route handlers: public pages, auth
// flows, and the admin content management surface.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
)

// Session keys for flash messages.
const (
	sessionKeyFlash     = "flash"
	sessionKeyFlashType = "flash_type"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, sm *scs.SessionManager, url, message, messageType string) {
	sm.Put(r.Context(), sessionKeyFlash, message)
	sm.Put(r.Context(), sessionKeyFlashType, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, sm *scs.SessionManager, url, message string) {
	flashAndRedirect(w, r, sm, url, message, "error")
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, sm *scs.SessionManager, url, message string) {
	flashAndRedirect(w, r, sm, url, message, "success")
}

// popFlash returns and clears the pending flash message, if any.
func popFlash(r *http.Request, sm *scs.SessionManager) (message, messageType string) {
	message = sm.PopString(r.Context(), sessionKeyFlash)
	if message == "" {
		return "", ""
	}
	messageType = sm.PopString(r.Context(), sessionKeyFlashType)
	if messageType == "" {
		messageType = "info"
	}
	return message, messageType
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}
