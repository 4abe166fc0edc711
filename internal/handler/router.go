// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pace-commit/commit-site/internal/auth"
	"github.com/pace-commit/commit-site/internal/cache"
	"github.com/pace-commit/commit-site/internal/contact"
	"github.com/pace-commit/commit-site/internal/content"
	"github.com/pace-commit/commit-site/internal/middleware"
	"github.com/pace-commit/commit-site/internal/scheduler"
	"github.com/pace-commit/commit-site/internal/service"
	"github.com/pace-commit/commit-site/internal/version"
)

// RouterConfig carries everything the HTTP routes depend on.
type RouterConfig struct {
	DB             *sql.DB
	SessionManager *scs.SessionManager
	Sessions       *auth.Resolver

	Accessor *content.Accessor
	Resolver *content.Resolver
	Writer   *content.Writer

	Contacts     *contact.Service
	EventService *service.EventService
	Scheduler    *scheduler.Scheduler

	// Counters backs the contact throttle; it is pinged by /health.
	Counters cache.Cache

	LoginProtection *middleware.LoginProtection
	PublicLimiter   *middleware.RateLimiter

	CORSOrigins   []string
	SessionSecret []byte
	IsDevelopment bool
	DataDir       string
	Version       version.Info
}

// NewRouter builds the application's routes.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(middleware.RequestPath)
	r.Use(chimw.Recoverer)
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)))
	r.Use(middleware.Timeout(middleware.DefaultTimeout))
	r.Use(chimw.Compress(5))

	sm := cfg.SessionManager
	loadSession := middleware.LoadSession(sm, cfg.Sessions)

	healthHandler := NewHealthHandler(cfg.DB, cfg.Counters, cfg.DataDir, cfg.Version)
	contentHandler := NewContentHandler(cfg.Accessor, cfg.Resolver)
	contactHandler := NewContactHandler(cfg.Contacts, cfg.EventService)
	authHandler := NewAuthHandler(cfg.DB, sm, cfg.Sessions, cfg.EventService, cfg.LoginProtection)
	adminContentHandler := NewAdminContentHandler(cfg.Accessor, cfg.Resolver, cfg.Writer, cfg.EventService)
	submissionsHandler := NewSubmissionsHandler(cfg.Contacts, cfg.EventService)
	eventsHandler := NewEventsHandler(cfg.EventService)

	r.Group(func(r chi.Router) {
		r.Use(sm.LoadAndSave, loadSession)
		r.Get("/health", healthHandler.Health)
	})
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORSOrigins))
		r.Get("/content", contentHandler.All)
		r.Get("/content/{section}", contentHandler.Section)
	})

	r.Route("/functions", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORSOrigins))
		if cfg.PublicLimiter != nil {
			r.Use(cfg.PublicLimiter.Middleware())
		}
		r.Post("/send-contact-email", contactHandler.Submit)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(sm.LoadAndSave)
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(cfg.SessionSecret, cfg.IsDevelopment, cfg.CORSOrigins)))
		r.Use(loadSession)

		if cfg.LoginProtection != nil {
			r.With(cfg.LoginProtection.Middleware()).Post("/login", authHandler.Login)
		} else {
			r.Post("/login", authHandler.Login)
		}
		r.Post("/logout", authHandler.Logout)
		r.Get("/api/me", authHandler.Me)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(cfg.EventService))

			r.Get("/api/content", adminContentHandler.Get)
			r.Put("/api/content/{tab}", adminContentHandler.SaveTab)

			r.Get("/api/submissions", submissionsHandler.List)
			r.Post("/api/submissions/{id}/read", submissionsHandler.SetRead)
			r.Delete("/api/submissions/{id}", submissionsHandler.Delete)

			r.Get("/api/events", eventsHandler.List)

			if cfg.Scheduler != nil {
				schedulerHandler := NewSchedulerHandler(cfg.Scheduler, cfg.EventService)
				r.Get("/api/scheduler", schedulerHandler.List)
				r.Post("/api/scheduler/{name}/run", schedulerHandler.TriggerNow)
			}
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
