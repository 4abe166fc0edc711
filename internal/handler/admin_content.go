// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pace-commit/commit-site/internal/content"
	"github.com/pace-commit/commit-site/internal/middleware"
	"github.com/pace-commit/commit-site/internal/model"
	"github.com/pace-commit/commit-site/internal/service"
)

// AdminContentHandler serves the content editor of the admin panel.
type AdminContentHandler struct {
	accessor     *content.Accessor
	resolver     *content.Resolver
	writer       *content.Writer
	eventService *service.EventService
}

// NewAdminContentHandler creates a new AdminContentHandler.
func NewAdminContentHandler(accessor *content.Accessor, resolver *content.Resolver, writer *content.Writer, events *service.EventService) *AdminContentHandler {
	return &AdminContentHandler{
		accessor:     accessor,
		resolver:     resolver,
		writer:       writer,
		eventService: events,
	}
}

// adminContentResponse is the editor's initial load.
type adminContentResponse struct {
	Content content.AllMap      `json:"content"`
	Entries []content.Entry     `json:"entries"`
	Form    content.EditorState `json:"form"`
}

// Get handles GET /admin/api/content: the raw stored rows plus the form
// state with defaults applied.
func (h *AdminContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	entries := h.accessor.Entries(r.Context())

	all := content.AllMap{}
	for _, e := range entries {
		if all[e.Section] == nil {
			all[e.Section] = content.Map{}
		}
		all[e.Section][e.Key] = e.Content
	}

	writeJSON(w, http.StatusOK, adminContentResponse{
		Content: all,
		Entries: entries,
		Form:    h.resolver.EditorState(all),
	})
}

// SaveTab handles PUT /admin/api/content/{tab}. All rows of the tab are
// written concurrently; the response reports success only if every write
// succeeded.
func (h *AdminContentHandler) SaveTab(w http.ResponseWriter, r *http.Request) {
	tab := chi.URLParam(r, "tab")

	var form content.TabForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Error saving: "+err.Error())
		return
	}

	changes, err := content.TabChanges(tab, form)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, content.ErrUnknownTab) {
			status = http.StatusNotFound
		}
		writeJSONError(w, status, "Error saving: "+err.Error())
		return
	}

	userID := middleware.GetUserID(r)
	if err := h.writer.Save(r.Context(), userID, changes); err != nil {
		slog.Error("content save failed", "category", "content", "tab", tab, "user_id", userID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Error saving: "+err.Error())
		return
	}

	if h.eventService != nil {
		_ = h.eventService.LogContentEvent(r.Context(), model.EventLevelInfo, "Content saved", userID, middleware.GetRequestURL(r),
			map[string]any{"tab": tab, "rows": len(changes)})
	}

	writeJSONSuccess(w, map[string]any{"message": "Saved"})
}
