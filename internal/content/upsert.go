// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/pace-commit/commit-site/internal/store"
)

// maxConcurrentUpserts bounds the writes one Save issues at a time.
const maxConcurrentUpserts = 4

// Change is one (section, key) write within a save.
type Change struct {
	Section string
	Key     string
	Value   any
}

// Writer persists site content.
type Writer struct {
	repo Repository
	now  func() time.Time
}

// NewWriter creates a Writer.
func NewWriter(repo Repository) *Writer {
	return &Writer{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Upsert writes value under (section, key), replacing any existing row, and
// records userID as the editor. A zero userID stores no editor. The value
// must have the payload shape of the key.
func (w *Writer) Upsert(ctx context.Context, section, key string, value any, userID int64) error {
	v, err := checkValue(section, key, value)
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", section, key, err)
	}

	_, err = w.repo.UpsertSiteContent(ctx, store.UpsertSiteContentParams{
		Section:   section,
		Key:       key,
		Content:   string(data),
		UpdatedAt: w.now(),
		UpdatedBy: sql.NullInt64{Int64: userID, Valid: userID != 0},
	})
	if err != nil {
		return fmt.Errorf("upserting %s/%s: %w", section, key, err)
	}
	return nil
}

// Save issues every change as its own upsert, concurrently, and waits for
// all of them. A failed upsert does not stop its siblings and successful
// writes are kept. The returned error combines every failure.
func (w *Writer) Save(ctx context.Context, userID int64, changes []Change) error {
	errs := make([]error, len(changes))

	var g errgroup.Group
	g.SetLimit(maxConcurrentUpserts)
	for i, c := range changes {
		g.Go(func() error {
			errs[i] = w.Upsert(ctx, c.Section, c.Key, c.Value, userID)
			return nil
		})
	}
	_ = g.Wait()

	return multierr.Combine(errs...)
}

// TabForm is the admin form payload for one save tab. Only the fields of
// the saved tab are read.
type TabForm struct {
	About    *CompanyInfo `json:"about,omitempty"`
	Values   []Item       `json:"values,omitempty"`
	Services []Item       `json:"services,omitempty"`
	Contact  *ContactInfo `json:"contact,omitempty"`
}

// Admin save tabs.
const (
	TabAbout    = "about"
	TabServices = "services"
	TabContact  = "contact"
)

// TabChanges maps an admin tab save onto the content rows it writes.
func TabChanges(tab string, f TabForm) ([]Change, error) {
	switch tab {
	case TabAbout:
		if f.About == nil || f.Values == nil {
			return nil, fmt.Errorf("%w: about tab needs about and values", ErrInvalidValue)
		}
		return []Change{
			{Section: SectionAbout, Key: KeyCompanyInfo, Value: *f.About},
			{Section: SectionAbout, Key: KeyValues, Value: f.Values},
		}, nil
	case TabServices:
		if f.Services == nil {
			return nil, fmt.Errorf("%w: services tab needs services", ErrInvalidValue)
		}
		return []Change{{Section: SectionServices, Key: KeyList, Value: f.Services}}, nil
	case TabContact:
		if f.Contact == nil {
			return nil, fmt.Errorf("%w: contact tab needs contact", ErrInvalidValue)
		}
		return []Change{{Section: SectionContact, Key: KeyInfo, Value: *f.Contact}}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTab, tab)
}
