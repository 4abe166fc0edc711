// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pace-commit/commit-site/internal/contact"
	"github.com/pace-commit/commit-site/internal/middleware"
	"github.com/pace-commit/commit-site/internal/model"
	"github.com/pace-commit/commit-site/internal/service"
)

// SubmissionsHandler manages contact submissions in the admin panel.
type SubmissionsHandler struct {
	contacts     *contact.Service
	eventService *service.EventService
}

// NewSubmissionsHandler creates a new SubmissionsHandler.
func NewSubmissionsHandler(contacts *contact.Service, events *service.EventService) *SubmissionsHandler {
	return &SubmissionsHandler{contacts: contacts, eventService: events}
}

// List handles GET /admin/api/submissions, newest first.
func (h *SubmissionsHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.contacts.List(r.Context())
	if err != nil {
		slog.Error("failed to list submissions", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Error loading submissions")
		return
	}

	unread, err := h.contacts.UnreadCount(r.Context())
	if err != nil {
		slog.Error("failed to count unread submissions", "error", err)
	}

	writeJSONSuccess(w, map[string]any{
		"submissions": subs,
		"unread":      unread,
	})
}

type setReadRequest struct {
	IsRead bool `json:"is_read"`
}

// SetRead handles POST /admin/api/submissions/{id}/read.
func (h *SubmissionsHandler) SetRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setReadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.contacts.SetRead(r.Context(), id, req.IsRead); err != nil {
		h.writeError(w, "update", id, err)
		return
	}

	writeJSONSuccess(w, map[string]any{"id": id, "is_read": req.IsRead})
}

// Delete handles DELETE /admin/api/submissions/{id}.
func (h *SubmissionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.contacts.Delete(r.Context(), id); err != nil {
		h.writeError(w, "delete", id, err)
		return
	}

	if h.eventService != nil {
		_ = h.eventService.LogContactEvent(r.Context(), model.EventLevelInfo, "Contact submission deleted",
			middleware.GetUserID(r), middleware.ClientIP(r), middleware.GetRequestURL(r), map[string]any{"submission_id": id})
	}

	writeJSONSuccess(w, nil)
}

func (h *SubmissionsHandler) writeError(w http.ResponseWriter, op, id string, err error) {
	if errors.Is(err, contact.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "Submission not found")
		return
	}
	slog.Error("failed to "+op+" submission", "submission_id", id, "error", err)
	writeJSONError(w, http.StatusInternalServerError, "Error updating submission")
}
