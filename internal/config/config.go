// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"COMMIT_DB_PATH" envDefault:"./data/commit.db"`
	SessionSecret string `env:"COMMIT_SESSION_SECRET,required"`
	ServerHost    string `env:"COMMIT_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"COMMIT_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"COMMIT_ENV" envDefault:"development"`
	LogLevel      string `env:"COMMIT_LOG_LEVEL" envDefault:"info"`

	// Cache configuration
	RedisURL    string `env:"COMMIT_REDIS_URL"` // Optional Redis URL for shared throttle counters
	CachePrefix string `env:"COMMIT_CACHE_PREFIX" envDefault:"commit:"`

	// Notification e-mail
	ResendAPIKey  string   `env:"COMMIT_RESEND_API_KEY"`
	ResendBaseURL string   `env:"COMMIT_RESEND_BASE_URL" envDefault:"https://api.resend.com"`
	NotifyFrom    string   `env:"COMMIT_NOTIFY_FROM" envDefault:"CommIT Contact <onboarding@resend.dev>"`
	NotifyTo      []string `env:"COMMIT_NOTIFY_TO" envSeparator:"," envDefault:"scattred@pace-commit.com"`

	// Public contact endpoint
	CORSOrigins       []string      `env:"COMMIT_CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	HCaptchaSecretKey string        `env:"COMMIT_HCAPTCHA_SECRET_KEY"`
	ContactRateLimit  int           `env:"COMMIT_CONTACT_RATE_LIMIT" envDefault:"5"` // per IP per window, 0 disables
	ContactRateWindow time.Duration `env:"COMMIT_CONTACT_RATE_WINDOW" envDefault:"1h"`

	// GeoIP configuration
	GeoIPDBPath string `env:"COMMIT_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Event log
	EventRetentionDays int `env:"COMMIT_EVENT_RETENTION_DAYS" envDefault:"90"` // 0 keeps events forever

	// Seeding configuration
	DoSeed        bool   `env:"COMMIT_DO_SEED" envDefault:"false"`
	AdminEmail    string `env:"COMMIT_ADMIN_EMAIL"`
	AdminPassword string `env:"COMMIT_ADMIN_PASSWORD"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// HCaptchaEnabled returns true if hCaptcha verification is configured.
func (c Config) HCaptchaEnabled() bool {
	return c.HCaptchaSecretKey != ""
}

// GeoIPEnabled returns true if a GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// EmailEnabled returns true if the notification e-mail API key is set.
func (c Config) EmailEnabled() bool {
	return c.ResendAPIKey != ""
}

// EventRetention returns how long event log entries are kept, or 0 to keep
// them forever.
func (c Config) EventRetention() time.Duration {
	if c.EventRetentionDays <= 0 {
		return 0
	}
	return time.Duration(c.EventRetentionDays) * 24 * time.Hour
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("COMMIT_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("COMMIT_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("COMMIT_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.ContactRateLimit < 0 {
		return nil, fmt.Errorf("COMMIT_CONTACT_RATE_LIMIT must not be negative, got %d", cfg.ContactRateLimit)
	}

	cfg.NotifyTo = trimAll(cfg.NotifyTo)
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)

	return cfg, nil
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
