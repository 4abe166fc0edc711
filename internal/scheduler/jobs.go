// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// EventPruner deletes events older than a given age.
type EventPruner interface {
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Reloader re-reads a file-backed resource.
type Reloader interface {
	Reload() error
}

// EventRetentionJob prunes the event log once a day.
func EventRetentionJob(events EventPruner, retention time.Duration, logger *slog.Logger) Job {
	return Job{
		Name:        "event-retention",
		Description: "Delete event log entries past the retention period",
		Schedule:    "15 3 * * *",
		Run: func(ctx context.Context) error {
			n, err := events.DeleteOldEvents(ctx, retention)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("pruned event log", "deleted", n, "retention", retention)
			}
			return nil
		},
	}
}

// GeoIPReloadJob picks up a replaced GeoIP database file.
func GeoIPReloadJob(r Reloader) Job {
	return Job{
		Name:        "geoip-reload",
		Description: "Reload the GeoIP database when the file changes",
		Schedule:    "@hourly",
		Run: func(context.Context) error {
			return r.Reload()
		},
	}
}
