// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pace-commit/commit-site/internal/content"
)

// ContentHandler serves the resolved site content to the public pages.
type ContentHandler struct {
	accessor *content.Accessor
	resolver *content.Resolver
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(accessor *content.Accessor, resolver *content.Resolver) *ContentHandler {
	return &ContentHandler{accessor: accessor, resolver: resolver}
}

// Section handles GET /api/content/{section}. Stored values override the
// compiled-in defaults; a store failure serves the defaults.
func (h *ContentHandler) Section(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "section")

	section, ok := content.ViewSection(view)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Unknown section")
		return
	}

	resolved, err := h.resolver.Resolve(view, h.accessor.Section(r.Context(), section))
	if err != nil {
		if errors.Is(err, content.ErrUnknownView) {
			writeJSONError(w, http.StatusNotFound, "Unknown section")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "Error loading content")
		return
	}

	writeJSON(w, http.StatusOK, resolved)
}

// All handles GET /api/content and returns every view in one document.
func (h *ContentHandler) All(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.resolver.ResolveAll(h.accessor.All(r.Context())))
}
