// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/pace-commit/commit-site/internal/auth"
	"github.com/pace-commit/commit-site/internal/model"
	"github.com/pace-commit/commit-site/internal/service"
	"github.com/pace-commit/commit-site/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeySession     ContextKey = "session"
	ContextKeyRequestPath ContextKey = "request_path"
)

// LoginPath is where unauthenticated browser navigations are sent.
const LoginPath = "/admin/login"

// SessionResolver turns a session event into a resolved session.
type SessionResolver interface {
	Handle(ctx context.Context, ev auth.Event) auth.Session
}

// LoadSession resolves the signed-in user's session and role for every
// request and stores the result in the context. A session whose user no
// longer exists is destroyed.
func LoadSession(sm *scs.SessionManager, resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := session.UserID(r.Context(), sm)

			sess := resolver.Handle(r.Context(), auth.Event{Kind: auth.SessionRestored, UserID: userID})
			if userID != 0 && sess.State == auth.StateUnauthenticated {
				_ = sm.Destroy(r.Context())
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess auth.Session) context.Context {
	return context.WithValue(ctx, ContextKeySession, sess)
}

// GetSession returns the session resolved for the request. A request that
// has not been through LoadSession reports the loading state.
func GetSession(r *http.Request) auth.Session {
	sess, ok := r.Context().Value(ContextKeySession).(auth.Session)
	if !ok {
		return auth.Session{State: auth.StateLoading}
	}
	return sess
}

// GetUserID returns the current user's ID from context, or 0 if not found.
func GetUserID(r *http.Request) int64 {
	if u := GetSession(r).User; u != nil {
		return u.ID
	}
	return 0
}

// RequireAdmin creates middleware that only lets admin sessions through.
// While the session is still loading it answers 503 with Retry-After so the
// client can try again. Other sessions are sent to the login page (browser
// navigations) or get a JSON 401/403.
func RequireAdmin(events *service.EventService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSession(r)

			switch sess.State {
			case auth.StateAdmin:
				next.ServeHTTP(w, r)
				return
			case auth.StateLoading:
				w.Header().Set("Retry-After", "1")
				writeJSONError(w, http.StatusServiceUnavailable, "Loading")
				return
			case auth.StateAuthenticated:
				userID := GetUserID(r)
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", userID,
					"remote_addr", r.RemoteAddr,
				)
				if events != nil {
					_ = events.LogEvent(r.Context(), service.EventInput{
						Level:      model.EventLevelWarning,
						Category:   model.EventCategorySecurity,
						Message:    "Access denied: admin role required",
						UserID:     userID,
						IPAddress:  ClientIP(r),
						RequestURL: GetRequestURL(r),
						Metadata:   map[string]any{"method": r.Method},
					})
				}
				if wantsHTML(r) {
					http.Redirect(w, r, LoginPath, http.StatusSeeOther)
					return
				}
				writeJSONError(w, http.StatusForbidden, "Forbidden")
				return
			}

			if wantsHTML(r) {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		})
	}
}

// wantsHTML reports whether the request is a browser page navigation.
func wantsHTML(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	if mode := r.Header.Get("Sec-Fetch-Mode"); mode != "" {
		return mode == "navigate"
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// RequestPath creates middleware that stores the request path in the context.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}

// GetRequestURL returns the path recorded by RequestPath, falling back to
// the current URL path.
func GetRequestURL(r *http.Request) string {
	if path := GetRequestPath(r.Context()); path != "" {
		return path
	}
	return r.URL.Path
}

// writeJSONError writes the {success:false,error} envelope used across the API.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}
