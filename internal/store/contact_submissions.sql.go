// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const contactSubmissionColumns = `id, first_name, last_name, email, phone, subject, message, is_read, ip_address, country, user_agent, created_at`

func scanContactSubmission(row interface{ Scan(...any) error }) (ContactSubmission, error) {
	var s ContactSubmission
	err := row.Scan(
		&s.ID,
		&s.FirstName,
		&s.LastName,
		&s.Email,
		&s.Phone,
		&s.Subject,
		&s.Message,
		&s.IsRead,
		&s.IpAddress,
		&s.Country,
		&s.UserAgent,
		&s.CreatedAt,
	)
	return s, err
}

const createContactSubmission = `-- name: CreateContactSubmission :one
INSERT INTO contact_submissions (
    id, first_name, last_name, email, phone, subject, message, is_read, ip_address, country, user_agent, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)
RETURNING ` + contactSubmissionColumns

// CreateContactSubmissionParams holds the fields for CreateContactSubmission.
type CreateContactSubmissionParams struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Subject   string
	Message   string
	IpAddress string
	Country   string
	UserAgent string
	CreatedAt time.Time
}

func (q *Queries) CreateContactSubmission(ctx context.Context, arg CreateContactSubmissionParams) (ContactSubmission, error) {
	row := q.db.QueryRowContext(ctx, createContactSubmission,
		arg.ID,
		arg.FirstName,
		arg.LastName,
		arg.Email,
		arg.Phone,
		arg.Subject,
		arg.Message,
		arg.IpAddress,
		arg.Country,
		arg.UserAgent,
		arg.CreatedAt,
	)
	return scanContactSubmission(row)
}

const getContactSubmission = `-- name: GetContactSubmission :one
SELECT ` + contactSubmissionColumns + ` FROM contact_submissions WHERE id = ?`

func (q *Queries) GetContactSubmission(ctx context.Context, id string) (ContactSubmission, error) {
	return scanContactSubmission(q.db.QueryRowContext(ctx, getContactSubmission, id))
}

const listContactSubmissions = `-- name: ListContactSubmissions :many
SELECT ` + contactSubmissionColumns + ` FROM contact_submissions
ORDER BY created_at DESC, id DESC`

func (q *Queries) ListContactSubmissions(ctx context.Context) ([]ContactSubmission, error) {
	rows, err := q.db.QueryContext(ctx, listContactSubmissions)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ContactSubmission
	for rows.Next() {
		s, err := scanContactSubmission(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setContactSubmissionRead = `-- name: SetContactSubmissionRead :execrows
UPDATE contact_submissions SET is_read = ? WHERE id = ?`

// SetContactSubmissionReadParams holds the fields for SetContactSubmissionRead.
type SetContactSubmissionReadParams struct {
	IsRead bool
	ID     string
}

func (q *Queries) SetContactSubmissionRead(ctx context.Context, arg SetContactSubmissionReadParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setContactSubmissionRead, arg.IsRead, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteContactSubmission = `-- name: DeleteContactSubmission :execrows
DELETE FROM contact_submissions WHERE id = ?`

func (q *Queries) DeleteContactSubmission(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteContactSubmission, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countContactSubmissions = `-- name: CountContactSubmissions :one
SELECT COUNT(*) FROM contact_submissions`

func (q *Queries) CountContactSubmissions(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countContactSubmissions).Scan(&count)
	return count, err
}

const countUnreadContactSubmissions = `-- name: CountUnreadContactSubmissions :one
SELECT COUNT(*) FROM contact_submissions WHERE is_read = 0`

func (q *Queries) CountUnreadContactSubmissions(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUnreadContactSubmissions).Scan(&count)
	return count, err
}
