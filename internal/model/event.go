// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model holds the shared vocabulary of the event log.
package model

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth      = "auth"
	EventCategoryContent   = "content"
	EventCategoryContact   = "contact"
	EventCategorySecurity  = "security"
	EventCategorySystem    = "system"
	EventCategoryCache     = "cache"
	EventCategoryScheduler = "scheduler"
)

// IsEventLevel reports whether s is a known event level.
func IsEventLevel(s string) bool {
	switch s {
	case EventLevelInfo, EventLevelWarning, EventLevelError:
		return true
	}
	return false
}
