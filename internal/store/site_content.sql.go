// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const siteContentColumns = `id, section, "key", content, updated_at, updated_by`

func scanSiteContent(row interface{ Scan(...any) error }) (SiteContent, error) {
	var c SiteContent
	err := row.Scan(
		&c.ID,
		&c.Section,
		&c.Key,
		&c.Content,
		&c.UpdatedAt,
		&c.UpdatedBy,
	)
	return c, err
}

func (q *Queries) querySiteContent(ctx context.Context, query string, args ...any) ([]SiteContent, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []SiteContent
	for rows.Next() {
		c, err := scanSiteContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listSiteContentBySection = `-- name: ListSiteContentBySection :many
SELECT ` + siteContentColumns + ` FROM site_content WHERE section = ? ORDER BY "key"`

func (q *Queries) ListSiteContentBySection(ctx context.Context, section string) ([]SiteContent, error) {
	return q.querySiteContent(ctx, listSiteContentBySection, section)
}

const listSiteContent = `-- name: ListSiteContent :many
SELECT ` + siteContentColumns + ` FROM site_content ORDER BY section, "key"`

func (q *Queries) ListSiteContent(ctx context.Context) ([]SiteContent, error) {
	return q.querySiteContent(ctx, listSiteContent)
}

const upsertSiteContent = `-- name: UpsertSiteContent :one
INSERT INTO site_content (section, "key", content, updated_at, updated_by)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (section, "key") DO UPDATE SET
    content = excluded.content,
    updated_at = excluded.updated_at,
    updated_by = excluded.updated_by
RETURNING ` + siteContentColumns

// UpsertSiteContentParams holds the fields for UpsertSiteContent.
type UpsertSiteContentParams struct {
	Section   string
	Key       string
	Content   string
	UpdatedAt time.Time
	UpdatedBy sql.NullInt64
}

func (q *Queries) UpsertSiteContent(ctx context.Context, arg UpsertSiteContentParams) (SiteContent, error) {
	row := q.db.QueryRowContext(ctx, upsertSiteContent,
		arg.Section,
		arg.Key,
		arg.Content,
		arg.UpdatedAt,
		arg.UpdatedBy,
	)
	return scanSiteContent(row)
}
