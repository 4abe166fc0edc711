// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pace-commit/commit-site/internal/store"
)

// Repository is the storage contract for site content. *store.Queries
// satisfies it.
type Repository interface {
	ListSiteContentBySection(ctx context.Context, section string) ([]store.SiteContent, error)
	ListSiteContent(ctx context.Context) ([]store.SiteContent, error)
	UpsertSiteContent(ctx context.Context, arg store.UpsertSiteContentParams) (store.SiteContent, error)
}

var _ Repository = (*store.Queries)(nil)

// Accessor reads site content. Every call hits the repository; failures are
// logged and reported as empty results so callers fall back to defaults.
type Accessor struct {
	repo   Repository
	logger *slog.Logger
}

// NewAccessor creates an Accessor. A nil logger falls back to slog.Default.
func NewAccessor(repo Repository, logger *slog.Logger) *Accessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Accessor{repo: repo, logger: logger}
}

// Section returns the payloads of one section keyed by content key. An
// unknown section yields an empty map.
func (a *Accessor) Section(ctx context.Context, section string) Map {
	m := Map{}
	if !IsSection(section) {
		return m
	}
	rows, err := a.repo.ListSiteContentBySection(ctx, section)
	if err != nil {
		a.logger.Warn("failed to load site content",
			"category", "content", "section", section, "error", err)
		return m
	}
	for _, row := range rows {
		m[row.Key] = json.RawMessage(row.Content)
	}
	return m
}

// All returns every stored payload keyed by section then key.
func (a *Accessor) All(ctx context.Context) AllMap {
	all := AllMap{}
	for _, e := range a.Entries(ctx) {
		if all[e.Section] == nil {
			all[e.Section] = Map{}
		}
		all[e.Section][e.Key] = e.Content
	}
	return all
}

// Entries returns every stored row with its update time.
func (a *Accessor) Entries(ctx context.Context) []Entry {
	rows, err := a.repo.ListSiteContent(ctx)
	if err != nil {
		a.logger.Warn("failed to load site content", "category", "content", "error", err)
		return []Entry{}
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{
			Section:   row.Section,
			Key:       row.Key,
			Content:   json.RawMessage(row.Content),
			UpdatedAt: row.UpdatedAt,
		})
	}
	return entries
}
