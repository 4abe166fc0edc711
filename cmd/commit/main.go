// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pace-commit/commit-site/internal/auth"
	"github.com/pace-commit/commit-site/internal/cache"
	"github.com/pace-commit/commit-site/internal/captcha"
	"github.com/pace-commit/commit-site/internal/config"
	"github.com/pace-commit/commit-site/internal/contact"
	"github.com/pace-commit/commit-site/internal/content"
	"github.com/pace-commit/commit-site/internal/geoip"
	"github.com/pace-commit/commit-site/internal/handler"
	"github.com/pace-commit/commit-site/internal/logging"
	"github.com/pace-commit/commit-site/internal/middleware"
	"github.com/pace-commit/commit-site/internal/notify"
	"github.com/pace-commit/commit-site/internal/scheduler"
	"github.com/pace-commit/commit-site/internal/service"
	"github.com/pace-commit/commit-site/internal/session"
	"github.com/pace-commit/commit-site/internal/store"
	"github.com/pace-commit/commit-site/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "commit-site - CommIT Enterprise site backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COMMIT_SESSION_SECRET     Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COMMIT_DB_PATH            SQLite database path (default: ./data/commit.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COMMIT_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COMMIT_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COMMIT_RESEND_API_KEY     Resend API key for contact notifications\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COMMIT_NOTIFY_TO          Comma-separated notification recipients\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COMMIT_CORS_ORIGINS       Allowed origins for the public API (default: *)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COMMIT_REDIS_URL          Redis URL for shared throttle counters (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COMMIT_HCAPTCHA_SECRET_KEY  hCaptcha secret for the contact form (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COMMIT_GEOIP_DB_PATH      GeoLite2-Country database path (optional)\n")
	}

	flag.Parse()

	info := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Mirror WARN and ERROR logs into the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := store.Seed(ctx, db, store.SeedConfig{
		Enabled:       cfg.DoSeed,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	queries := store.New(db)
	sessionManager := session.New(db, cfg.IsDevelopment())
	eventService := service.NewEventService(db)

	counters := cache.New(cache.Config{
		RedisURL: cfg.RedisURL,
		Prefix:   cfg.CachePrefix,
	})
	defer func() { _ = counters.Close() }()

	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("geoip database not loaded", "path", cfg.GeoIPDBPath, "error", err)
	}
	defer func() { _ = geo.Close() }()

	var mailer notify.Mailer
	if cfg.EmailEnabled() {
		resend, err := notify.NewResend(notify.Config{
			APIKey:     cfg.ResendAPIKey,
			BaseURL:    cfg.ResendBaseURL,
			RetryCount: 2,
		})
		if err != nil {
			return fmt.Errorf("configuring e-mail: %w", err)
		}
		mailer = resend
	} else {
		slog.Warn("COMMIT_RESEND_API_KEY not set, contact submissions will fail")
	}

	contactOpts := []contact.Option{
		contact.WithLogger(logger),
		contact.WithThrottle(counters),
	}
	if cfg.GeoIPEnabled() {
		contactOpts = append(contactOpts, contact.WithCountryLookup(geo))
	}
	if cfg.HCaptchaEnabled() {
		contactOpts = append(contactOpts, contact.WithCaptcha(captcha.NewVerifier(cfg.HCaptchaSecretKey, "")))
	}
	contacts := contact.NewService(queries, mailer, contact.Config{
		From:       cfg.NotifyFrom,
		To:         cfg.NotifyTo,
		RateLimit:  cfg.ContactRateLimit,
		RateWindow: cfg.ContactRateWindow,
	}, contactOpts...)

	done := make(chan struct{})
	defer close(done)

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	loginProtection.Start(done)

	sched := scheduler.New(logger)
	if retention := cfg.EventRetention(); retention > 0 {
		if err := sched.Add(scheduler.EventRetentionJob(eventService, retention, logger)); err != nil {
			return fmt.Errorf("scheduling event retention: %w", err)
		}
	}
	if cfg.GeoIPEnabled() {
		if err := sched.Add(scheduler.GeoIPReloadJob(geo)); err != nil {
			return fmt.Errorf("scheduling geoip reload: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	router := handler.NewRouter(handler.RouterConfig{
		DB:              db,
		SessionManager:  sessionManager,
		Sessions:        auth.NewResolver(queries, queries, logger),
		Accessor:        content.NewAccessor(queries, logger),
		Resolver:        content.NewResolver(content.DefaultContent(), logger),
		Writer:          content.NewWriter(queries),
		Contacts:        contacts,
		EventService:    eventService,
		Scheduler:       sched,
		Counters:        counters,
		LoginProtection: loginProtection,
		PublicLimiter:   middleware.NewRateLimiter(1, 10),
		CORSOrigins:     cfg.CORSOrigins,
		SessionSecret:   []byte(cfg.SessionSecret),
		IsDevelopment:   cfg.IsDevelopment(),
		DataDir:         dataDir,
		Version:         info,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
