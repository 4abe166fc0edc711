// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
)

// RoleAdmin is the role that grants access to the admin area.
const RoleAdmin = "admin"

// State is the resolved admin session state.
type State int

// Session states. The zero value is StateLoading so an unresolved session
// never looks authenticated.
const (
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
	StateAdmin
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the state by name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// User is the identity attached to a resolved session.
type User struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// Session is the outcome of resolving an auth event.
type Session struct {
	State State `json:"state"`
	User  *User `json:"user,omitempty"`
}

// IsAdmin reports whether the session grants admin access.
func (s Session) IsAdmin() bool {
	return s.State == StateAdmin && s.User != nil && s.User.IsAdmin
}

// EventKind names the identity-provider events the resolver reacts to.
type EventKind int

const (
	SessionRestored EventKind = iota + 1
	SignedIn
	SignedOut
)

// Event is an identity change. UserID is zero when no session is present.
type Event struct {
	Kind   EventKind
	UserID int64
}

// Identity is the subset of a stored user the resolver needs.
type Identity struct {
	ID    int64
	Email string
	Name  string
}

// UserLookup loads the identity behind a session.
type UserLookup interface {
	LookupUser(ctx context.Context, id int64) (Identity, error)
}

// RoleLookup lists the roles granted to a user.
type RoleLookup interface {
	ListUserRoles(ctx context.Context, userID int64) ([]string, error)
}

// Resolver turns auth events into sessions with the admin flag derived from
// the user's role rows.
type Resolver struct {
	users  UserLookup
	roles  RoleLookup
	logger *slog.Logger
}

// NewResolver creates a Resolver. A nil logger falls back to slog.Default.
func NewResolver(users UserLookup, roles RoleLookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{users: users, roles: roles, logger: logger}
}

// Handle resolves one event. Sign-out and missing sessions are
// unauthenticated; otherwise the user and its roles are looked up. A failed
// role lookup yields a non-admin session.
func (r *Resolver) Handle(ctx context.Context, ev Event) Session {
	if ev.Kind == SignedOut || ev.UserID == 0 {
		return Session{State: StateUnauthenticated}
	}

	ident, err := r.users.LookupUser(ctx, ev.UserID)
	if err != nil {
		r.logger.Warn("session user lookup failed", "user_id", ev.UserID, "error", err)
		return Session{State: StateUnauthenticated}
	}

	user := &User{ID: ident.ID, Email: ident.Email, Name: ident.Name}
	user.IsAdmin = r.checkAdmin(ctx, ident.ID)

	if user.IsAdmin {
		return Session{State: StateAdmin, User: user}
	}
	return Session{State: StateAuthenticated, User: user}
}

func (r *Resolver) checkAdmin(ctx context.Context, userID int64) bool {
	roles, err := r.roles.ListUserRoles(ctx, userID)
	if err != nil {
		r.logger.Warn("role lookup failed, treating user as non-admin", "user_id", userID, "error", err)
		return false
	}
	return slices.Contains(roles, RoleAdmin)
}
