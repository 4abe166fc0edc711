package logging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/pace-commit/commit-site/internal/model"
	"github.com/pace-commit/commit-site/internal/store"
	"github.com/pace-commit/commit-site/internal/testutil"
)

func newTestLogger(t *testing.T) (*slog.Logger, *store.Queries) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewEventLogHandler(inner, db)), store.New(db)
}

func listEvents(t *testing.T, q *store.Queries) []store.Event {
	t.Helper()
	events, err := q.ListEvents(context.Background(), store.ListEventsParams{Limit: 100})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	return events
}

func TestEventLogHandler_OnlyWarnAndAbove(t *testing.T) {
	logger, q := newTestLogger(t)

	logger.Debug("debug message")
	logger.Info("info message")
	if n := len(listEvents(t, q)); n != 0 {
		t.Fatalf("events after debug/info = %d, want 0", n)
	}

	logger.Warn("warn message")
	logger.Error("error message")

	events := listEvents(t, q)
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	levels := map[string]bool{}
	for _, e := range events {
		levels[e.Level] = true
	}
	if !levels[model.EventLevelWarning] || !levels[model.EventLevelError] {
		t.Errorf("levels = %v", levels)
	}
}

func TestEventLogHandler_SpecialAttrs(t *testing.T) {
	logger, q := newTestLogger(t)

	logger.Warn("save failed",
		AttrCategory, model.EventCategoryContent,
		AttrIP, "10.0.0.9",
		AttrRequestURL, "/admin/api/content/about",
		"section", "about",
	)

	e := listEvents(t, q)[0]
	if e.Category != model.EventCategoryContent {
		t.Errorf("Category = %q", e.Category)
	}
	if e.IpAddress != "10.0.0.9" || e.RequestUrl != "/admin/api/content/about" {
		t.Errorf("ip/url = %q/%q", e.IpAddress, e.RequestUrl)
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil {
		t.Fatalf("metadata not JSON: %v (%s)", err, e.Metadata)
	}
	if meta["section"] != "about" {
		t.Errorf("metadata = %v", meta)
	}
	if _, ok := meta[AttrCategory]; ok {
		t.Error("category should not be repeated in metadata")
	}
}

func TestEventLogHandler_WithAttrsAndGroup(t *testing.T) {
	logger, q := newTestLogger(t)

	logger.With("component", "mailer").WithGroup("resend").Warn("email send failed", "status", 502)

	e := listEvents(t, q)[0]
	if e.Category != model.EventCategoryContact {
		t.Errorf("inferred Category = %q, want contact", e.Category)
	}

	var meta map[string]string
	_ = json.Unmarshal([]byte(e.Metadata), &meta)
	if meta["component"] != "mailer" || meta["resend.status"] != "502" {
		t.Errorf("metadata = %v", meta)
	}
}

func TestEventLogHandler_Escaping(t *testing.T) {
	logger, q := newTestLogger(t)

	logger.Warn("odd", "value", "quote\" backslash\\ newline\n")

	e := listEvents(t, q)[0]
	if !json.Valid([]byte(e.Metadata)) {
		t.Errorf("metadata is not valid JSON: %s", e.Metadata)
	}
}

func TestInferCategory(t *testing.T) {
	tests := map[string]string{
		"Failed login attempt":        model.EventCategoryAuth,
		"role lookup failed":          model.EventCategoryAuth,
		"failed to load site content": model.EventCategoryContent,
		"contact submission stored":   model.EventCategoryContact,
		"CSRF check failed":           model.EventCategorySecurity,
		"redis unavailable":           model.EventCategoryCache,
		"scheduled job failed":        model.EventCategoryScheduler,
		"server started":              model.EventCategorySystem,
	}
	for msg, want := range tests {
		if got := inferCategory(msg); got != want {
			t.Errorf("inferCategory(%q) = %q, want %q", msg, got, want)
		}
	}
}
