// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pace-commit/commit-site/internal/middleware"
	"github.com/pace-commit/commit-site/internal/model"
	"github.com/pace-commit/commit-site/internal/scheduler"
	"github.com/pace-commit/commit-site/internal/service"
)

// SchedulerHandler exposes the maintenance jobs to admins.
type SchedulerHandler struct {
	scheduler    *scheduler.Scheduler
	eventService *service.EventService
}

// NewSchedulerHandler creates a new SchedulerHandler.
func NewSchedulerHandler(s *scheduler.Scheduler, events *service.EventService) *SchedulerHandler {
	return &SchedulerHandler{scheduler: s, eventService: events}
}

// SchedulerJobView is one job as returned by the admin API.
type SchedulerJobView struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Schedule    string     `json:"schedule"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	NextRun     *time.Time `json:"next_run,omitempty"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// List handles GET /admin/api/scheduler.
func (h *SchedulerHandler) List(w http.ResponseWriter, _ *http.Request) {
	jobs := h.scheduler.List()
	views := make([]SchedulerJobView, len(jobs))
	for i, j := range jobs {
		views[i] = SchedulerJobView{
			Name:        j.Name,
			Description: j.Description,
			Schedule:    j.Schedule,
			LastRun:     optionalTime(j.LastRun),
			LastError:   j.LastError,
			NextRun:     optionalTime(j.NextRun),
		}
	}
	writeJSONSuccess(w, map[string]any{"jobs": views})
}

// TriggerNow handles POST /admin/api/scheduler/{name}/run.
func (h *SchedulerHandler) TriggerNow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	userID := middleware.GetUserID(r)

	err := h.scheduler.Trigger(r.Context(), name)
	if errors.Is(err, scheduler.ErrUnknownJob) {
		writeJSONError(w, http.StatusNotFound, "Unknown job")
		return
	}

	if h.eventService != nil {
		level, message := model.EventLevelInfo, "Job manually triggered: "+name
		meta := map[string]any{"name": name}
		if err != nil {
			level = model.EventLevelError
			meta["error"] = err.Error()
		}
		_ = h.eventService.LogSchedulerEvent(r.Context(), level, message, userID,
			middleware.ClientIP(r), middleware.GetRequestURL(r), meta)
	}

	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Job failed: "+err.Error())
		return
	}

	slog.Info("scheduler job triggered", "name", name, "triggered_by", userID)
	writeJSONSuccess(w, map[string]any{"message": "Job completed"})
}
