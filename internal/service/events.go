// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the audit trail shared by handlers and jobs.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pace-commit/commit-site/internal/model"
	"github.com/pace-commit/commit-site/internal/store"
)

// EventService records and reads event log entries.
type EventService struct {
	queries *store.Queries
	now     func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// EventInput is one entry to record. UserID zero means no user.
type EventInput struct {
	Level      string
	Category   string
	Message    string
	UserID     int64
	IPAddress  string
	RequestURL string
	Metadata   map[string]any
}

// LogEvent creates a new event log entry.
func (s *EventService) LogEvent(ctx context.Context, in EventInput) error {
	if !model.IsEventLevel(in.Level) {
		in.Level = model.EventLevelInfo
	}
	if in.Category == "" {
		in.Category = model.EventCategorySystem
	}

	metadataJSON := "{}"
	if len(in.Metadata) > 0 {
		if b, err := json.Marshal(in.Metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:      in.Level,
		Category:   in.Category,
		Message:    in.Message,
		UserID:     sql.NullInt64{Int64: in.UserID, Valid: in.UserID != 0},
		Metadata:   metadataJSON,
		IpAddress:  in.IPAddress,
		RequestUrl: in.RequestURL,
		CreatedAt:  s.now(),
	})
	if err != nil {
		slog.Error("failed to log event", "error", err, "message", in.Message)
		return fmt.Errorf("logging event: %w", err)
	}
	return nil
}

// LogAuthEvent logs an authentication-related event.
func (s *EventService) LogAuthEvent(ctx context.Context, level, message string, userID int64, ipAddress, requestURL string, metadata map[string]any) error {
	return s.LogEvent(ctx, EventInput{
		Level:      level,
		Category:   model.EventCategoryAuth,
		Message:    message,
		UserID:     userID,
		IPAddress:  ipAddress,
		RequestURL: requestURL,
		Metadata:   metadata,
	})
}

// LogContentEvent logs a site content change.
func (s *EventService) LogContentEvent(ctx context.Context, level, message string, userID int64, requestURL string, metadata map[string]any) error {
	return s.LogEvent(ctx, EventInput{
		Level:      level,
		Category:   model.EventCategoryContent,
		Message:    message,
		UserID:     userID,
		RequestURL: requestURL,
		Metadata:   metadata,
	})
}

// LogContactEvent logs a contact submission event.
func (s *EventService) LogContactEvent(ctx context.Context, level, message string, userID int64, ipAddress, requestURL string, metadata map[string]any) error {
	return s.LogEvent(ctx, EventInput{
		Level:      level,
		Category:   model.EventCategoryContact,
		Message:    message,
		UserID:     userID,
		IPAddress:  ipAddress,
		RequestURL: requestURL,
		Metadata:   metadata,
	})
}

// LogSchedulerEvent logs a manual scheduler action.
func (s *EventService) LogSchedulerEvent(ctx context.Context, level, message string, userID int64, ipAddress, requestURL string, metadata map[string]any) error {
	return s.LogEvent(ctx, EventInput{
		Level:      level,
		Category:   model.EventCategoryScheduler,
		Message:    message,
		UserID:     userID,
		IPAddress:  ipAddress,
		RequestURL: requestURL,
		Metadata:   metadata,
	})
}

// EventView is an event log entry as returned by the admin API.
type EventView struct {
	ID         int64           `json:"id"`
	Level      string          `json:"level"`
	Category   string          `json:"category"`
	Message    string          `json:"message"`
	UserID     *int64          `json:"user_id,omitempty"`
	Metadata   json.RawMessage `json:"metadata"`
	IPAddress  string          `json:"ip_address,omitempty"`
	RequestURL string          `json:"request_url,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func toEventView(e store.Event) EventView {
	v := EventView{
		ID:         e.ID,
		Level:      e.Level,
		Category:   e.Category,
		Message:    e.Message,
		Metadata:   json.RawMessage(e.Metadata),
		IPAddress:  e.IpAddress,
		RequestURL: e.RequestUrl,
		CreatedAt:  e.CreatedAt,
	}
	if e.UserID.Valid {
		id := e.UserID.Int64
		v.UserID = &id
	}
	if !json.Valid(v.Metadata) {
		v.Metadata = json.RawMessage("{}")
	}
	return v
}

// EventPage is one page of the event log, newest first.
type EventPage struct {
	Events []EventView `json:"events"`
	Total  int64         `json:"total"`
	Limit  int64         `json:"limit"`
	Offset int64         `json:"offset"`
}

// ListEvents returns a page of recent events. Limit is clamped to 1..200.
func (s *EventService) ListEvents(ctx context.Context, limit, offset int64) (EventPage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	events, err := s.queries.ListEvents(ctx, store.ListEventsParams{Limit: limit, Offset: offset})
	if err != nil {
		return EventPage{}, fmt.Errorf("listing events: %w", err)
	}
	total, err := s.queries.CountEvents(ctx)
	if err != nil {
		return EventPage{}, fmt.Errorf("counting events: %w", err)
	}
	views := make([]EventView, len(events))
	for i, e := range events {
		views[i] = toEventView(e)
	}
	return EventPage{Events: views, Total: total, Limit: limit, Offset: offset}, nil
}

// DeleteOldEvents removes events older than the given age and returns how
// many were deleted.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.queries.DeleteEventsBefore(ctx, s.now().Add(-olderThan))
}
