// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const addUserRole = `-- name: AddUserRole :exec
INSERT INTO user_roles (user_id, role, created_at)
VALUES (?, ?, ?)
ON CONFLICT (user_id, role) DO NOTHING`

// AddUserRoleParams holds the fields for AddUserRole.
type AddUserRoleParams struct {
	UserID    int64
	Role      string
	CreatedAt time.Time
}

func (q *Queries) AddUserRole(ctx context.Context, arg AddUserRoleParams) error {
	_, err := q.db.ExecContext(ctx, addUserRole, arg.UserID, arg.Role, arg.CreatedAt)
	return err
}

const listUserRoles = `-- name: ListUserRoles :many
SELECT role FROM user_roles WHERE user_id = ? ORDER BY role`

func (q *Queries) ListUserRoles(ctx context.Context, userID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listUserRoles, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		items = append(items, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const removeUserRole = `-- name: RemoveUserRole :exec
DELETE FROM user_roles WHERE user_id = ? AND role = ?`

// RemoveUserRoleParams holds the fields for RemoveUserRole.
type RemoveUserRoleParams struct {
	UserID int64
	Role   string
}

func (q *Queries) RemoveUserRole(ctx context.Context, arg RemoveUserRoleParams) error {
	_, err := q.db.ExecContext(ctx, removeUserRole, arg.UserID, arg.Role)
	return err
}
