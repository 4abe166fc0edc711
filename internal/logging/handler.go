// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that mirrors warnings and errors
// into the event log so they show up in the admin panel.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/pace-commit/commit-site/internal/model"
	"github.com/pace-commit/commit-site/internal/store"
)

// Attribute keys with special meaning to the event log.
const (
	AttrCategory   = "category"
	AttrUserID     = "user_id"
	AttrIP         = "ip"
	AttrRequestURL = "url"
)

// EventLogHandler is a slog.Handler that wraps another handler and also
// writes records at or above its level to the events table.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
	attrs   []slog.Attr
	group   string
}

// NewEventLogHandler creates a handler that mirrors WARN and above.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a handler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeToEventLog(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.inner = h.inner.WithAttrs(attrs)
	c.attrs = append(append([]slog.Attr{}, h.attrs...), h.qualify(attrs)...)
	return &c
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.inner = h.inner.WithGroup(name)
	if h.group != "" {
		c.group = h.group + "." + name
	} else {
		c.group = name
	}
	return &c
}

func (h *EventLogHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.group + "." + a.Key, Value: a.Value}
	}
	return out
}

// writeToEventLog writes a record to the events table. A background context
// is used so the entry survives request cancellation.
func (h *EventLogHandler) writeToEventLog(r slog.Record) {
	params := store.CreateEventParams{
		Level:     slogLevelToEventLevel(r.Level),
		Message:   r.Message,
		CreatedAt: r.Time.UTC(),
	}

	metadata := make(map[string]any)
	collect := func(a slog.Attr) {
		switch a.Key {
		case AttrCategory:
			params.Category = a.Value.String()
		case AttrUserID:
			if a.Value.Kind() == slog.KindInt64 {
				params.UserID = sql.NullInt64{Int64: a.Value.Int64(), Valid: a.Value.Int64() != 0}
			}
		case AttrIP:
			params.IpAddress = a.Value.String()
		case AttrRequestURL:
			params.RequestUrl = a.Value.String()
		default:
			metadata[a.Key] = a.Value.Resolve().String()
		}
	}

	for _, a := range h.attrs {
		collect(a)
	}
	var recAttrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		recAttrs = append(recAttrs, a)
		return true
	})
	for _, a := range h.qualify(recAttrs) {
		collect(a)
	}

	if params.Category == "" {
		params.Category = inferCategory(r.Message)
	}

	params.Metadata = "{}"
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			params.Metadata = string(b)
		}
	}

	_, _ = h.queries.CreateEvent(context.Background(), params)
}

func slogLevelToEventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// inferCategory guesses a category from the message when none was given.
func inferCategory(msg string) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") ||
		strings.Contains(msg, "session") || strings.Contains(msg, "role"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "content"):
		return model.EventCategoryContent
	case strings.Contains(msg, "contact") || strings.Contains(msg, "submission") ||
		strings.Contains(msg, "email"):
		return model.EventCategoryContact
	case strings.Contains(msg, "csrf") || strings.Contains(msg, "rate limit"):
		return model.EventCategorySecurity
	case strings.Contains(msg, "scheduler") || strings.Contains(msg, "scheduled job"):
		return model.EventCategoryScheduler
	case strings.Contains(msg, "cache") || strings.Contains(msg, "redis"):
		return model.EventCategoryCache
	default:
		return model.EventCategorySystem
	}
}
