// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/pace-commit/commit-site/internal/auth"
)

// LookupUser loads the identity behind a session. It lets *Queries serve
// as the user source of auth.Resolver.
func (q *Queries) LookupUser(ctx context.Context, id int64) (auth.Identity, error) {
	u, err := q.GetUserByID(ctx, id)
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.Identity{ID: u.ID, Email: u.Email, Name: u.Name}, nil
}

var (
	_ auth.UserLookup = (*Queries)(nil)
	_ auth.RoleLookup = (*Queries)(nil)
)
