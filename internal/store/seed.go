// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pace-commit/commit-site/internal/auth"
)

// Default admin credentials, used when no explicit credentials are configured.
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Administrator"
)

// RoleAdmin is the role name that grants access to the admin area.
const RoleAdmin = auth.RoleAdmin

// SeedConfig controls initial data creation.
type SeedConfig struct {
	Enabled       bool
	AdminEmail    string
	AdminPassword string
}

// Seed creates the first admin account and its admin role row.
// It is a no-op when seeding is disabled or the account already exists.
func Seed(ctx context.Context, db *sql.DB, cfg SeedConfig) error {
	if !cfg.Enabled {
		slog.Debug("database seeding disabled")
		return nil
	}

	email := cfg.AdminEmail
	if email == "" {
		email = DefaultAdminEmail
	}
	password := cfg.AdminPassword
	if password == "" {
		password = DefaultAdminPassword
	}

	queries := New(db)

	_, err := queries.GetUserByEmail(ctx, email)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := queries.WithTx(tx)
	now := time.Now().UTC()
	user, err := qtx.CreateUser(ctx, CreateUserParams{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         DefaultAdminName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	if err := qtx.AddUserRole(ctx, AddUserRoleParams{
		UserID:    user.ID,
		Role:      RoleAdmin,
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("assigning admin role: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}

	attrs := []any{"id", user.ID, "email", user.Email}
	if cfg.AdminPassword == "" {
		attrs = append(attrs, "password", DefaultAdminPassword)
	}
	slog.Info("created default admin user", attrs...)

	return nil
}
