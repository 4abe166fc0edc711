// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pace-commit/commit-site/internal/contact"
	"github.com/pace-commit/commit-site/internal/middleware"
	"github.com/pace-commit/commit-site/internal/model"
	"github.com/pace-commit/commit-site/internal/service"
)

// ContactHandler handles the public contact form endpoint.
type ContactHandler struct {
	contacts     *contact.Service
	eventService *service.EventService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contacts *contact.Service, events *service.EventService) *ContactHandler {
	return &ContactHandler{contacts: contacts, eventService: events}
}

// Submit handles POST /functions/send-contact-email. Every failure is
// reported as 500 with the {success:false,error} envelope except the
// throttle, which answers 429.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req contact.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ip := middleware.ClientIP(r)
	sub, err := h.contacts.Submit(r.Context(), req, contact.Meta{
		IP:        ip,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, contact.ErrTooManyRequests):
			writeJSONError(w, http.StatusTooManyRequests, err.Error())
		case contact.IsValidation(err):
			slog.Debug("contact submission rejected", "ip", ip, "error", err)
			writeJSONError(w, http.StatusInternalServerError, err.Error())
		default:
			slog.Error("error in send-contact-email", "category", "contact", "ip", ip, "error", err)
			writeJSONError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if h.eventService != nil {
		_ = h.eventService.LogContactEvent(r.Context(), model.EventLevelInfo, "Contact submission received", 0, ip, middleware.GetRequestURL(r),
			map[string]any{"submission_id": sub.ID, "country": sub.Country})
	}

	writeJSONSuccess(w, nil)
}
