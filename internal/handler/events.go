// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/pace-commit/commit-site/internal/service"
)

// EventsHandler serves the event log to the admin panel.
type EventsHandler struct {
	eventService *service.EventService
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(events *service.EventService) *EventsHandler {
	return &EventsHandler{eventService: events}
}

// List handles GET /admin/api/events?limit=&offset=.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.eventService.ListEvents(r.Context(), queryInt64(r, "limit", 0), queryInt64(r, "offset", 0))
	if err != nil {
		slog.Error("failed to list events", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Error loading events")
		return
	}
	writeJSON(w, http.StatusOK, page)
}
