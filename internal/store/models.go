// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

// User is an account that can sign in to the admin area.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  sql.NullTime
}

// UserRole assigns a role name to a user.
type UserRole struct {
	UserID    int64
	Role      string
	CreatedAt time.Time
}

// SiteContent is one (section, key) content row. Content holds raw JSON.
type SiteContent struct {
	ID        int64
	Section   string
	Key       string
	Content   string
	UpdatedAt time.Time
	UpdatedBy sql.NullInt64
}

// ContactSubmission is a message left by a visitor through the contact form.
type ContactSubmission struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Subject   string
	Message   string
	IsRead    bool
	IpAddress string
	Country   string
	UserAgent string
	CreatedAt time.Time
}

// Event is an event log entry.
type Event struct {
	ID         int64
	Level      string
	Category   string
	Message    string
	UserID     sql.NullInt64
	Metadata   string
	IpAddress  string
	RequestUrl string
	CreatedAt  time.Time
}
