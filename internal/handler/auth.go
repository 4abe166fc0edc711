// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/pace-commit/commit-site/internal/auth"
	"github.com/pace-commit/commit-site/internal/middleware"
	"github.com/pace-commit/commit-site/internal/model"
	"github.com/pace-commit/commit-site/internal/service"
	"github.com/pace-commit/commit-site/internal/session"
	"github.com/pace-commit/commit-site/internal/store"
)

// Sign-in failure messages shown to the user.
const (
	msgInvalidCredentials = "Invalid email or password"
	msgCredentialsMissing = "Email and password are required"
)

// AuthHandler handles admin sign-in and sign-out.
type AuthHandler struct {
	queries         *store.Queries
	sessionManager  *scs.SessionManager
	resolver        *auth.Resolver
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, sm *scs.SessionManager, resolver *auth.Resolver, events *service.EventService, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		sessionManager:  sm,
		resolver:        resolver,
		eventService:    events,
		loginProtection: lp,
	}
}

// logAuth records an auth event when an event service is configured.
func (h *AuthHandler) logAuth(r *http.Request, level, message string, userID int64, meta map[string]any) {
	if h.eventService == nil {
		return
	}
	_ = h.eventService.LogAuthEvent(r.Context(), level, message, userID,
		middleware.ClientIP(r), middleware.GetRequestURL(r), meta)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// readLogin accepts a JSON body or a classic form post.
func readLogin(w http.ResponseWriter, r *http.Request) (loginRequest, error) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decodeJSON(w, r, &req); err != nil {
			return req, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")
	}
	req.Email = strings.TrimSpace(req.Email)
	return req, nil
}

// Login handles POST /admin/login. Failures are answered inline with the
// {success:false,error} envelope; success returns the resolved session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := readLogin(w, r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, msgCredentialsMissing)
		return
	}

	meta := map[string]any{"email": req.Email}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(req.Email); locked {
			h.logAuth(r, model.EventLevelWarning, "Login attempt on locked account", 0, meta)
			writeJSONError(w, http.StatusTooManyRequests,
				fmt.Sprintf("Account temporarily locked. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Debug("login attempt for non-existent user", "email", req.Email)
			h.logAuth(r, model.EventLevelWarning, "Login failed: user not found", 0, meta)
		} else {
			slog.Error("database error during login", "error", err)
		}
		// Count unknown accounts too so responses do not reveal which exist.
		h.failLogin(w, r, req.Email, 0)
		return
	}

	valid, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err, "user_id", user.ID)
	}
	if !valid {
		h.logAuth(r, model.EventLevelWarning, "Login failed: invalid password", user.ID, meta)
		h.failLogin(w, r, req.Email, user.ID)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(req.Email)
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				UpdatedAt:    time.Now().UTC(),
				ID:           user.ID,
			}); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
			}
		}
	}

	if err := h.queries.UpdateUserLastLogin(r.Context(), store.UpdateUserLastLoginParams{
		LastLoginAt: sql.NullTime{Time: time.Now().UTC(), Valid: true},
		ID:          user.ID,
	}); err != nil {
		slog.Error("failed to update last login time", "error", err, "user_id", user.ID)
	}

	if err := session.SignIn(r.Context(), h.sessionManager, user.ID); err != nil {
		slog.Error("session renewal error", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Could not start session")
		return
	}

	sess := h.resolver.Handle(r.Context(), auth.Event{Kind: auth.SignedIn, UserID: user.ID})

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email, "state", sess.State.String())
	h.logAuth(r, model.EventLevelInfo, "User logged in", user.ID, meta)

	writeJSONSuccess(w, map[string]any{"session": sess})
}

// failLogin records a failed attempt and answers with the matching message.
func (h *AuthHandler) failLogin(w http.ResponseWriter, r *http.Request, email string, userID int64) {
	if h.loginProtection != nil {
		if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
			h.logAuth(r, model.EventLevelWarning, "Account locked due to failed attempts", userID,
				map[string]any{"email": email, "duration": lockDuration.String()})
			writeJSONError(w, http.StatusTooManyRequests,
				fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(lockDuration)))
			return
		}
		if remaining := h.loginProtection.GetRemainingAttempts(email); remaining <= 3 && remaining > 0 {
			writeJSONError(w, http.StatusUnauthorized,
				fmt.Sprintf("%s. %d attempts remaining.", msgInvalidCredentials, remaining))
			return
		}
	}
	writeJSONError(w, http.StatusUnauthorized, msgInvalidCredentials)
}

// Logout handles POST /admin/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context(), h.sessionManager)

	if userID > 0 {
		h.logAuth(r, model.EventLevelInfo, "User logged out", userID, nil)
	}

	if err := session.SignOut(r.Context(), h.sessionManager); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "user_id", userID)
	writeJSONSuccess(w, map[string]any{
		"session": h.resolver.Handle(r.Context(), auth.Event{Kind: auth.SignedOut}),
	})
}

// Me handles GET /admin/api/me and returns the session resolved for the
// request.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.GetSession(r))
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
