// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package contact stores contact form submissions and notifies the office
// by e-mail.
package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"

	"github.com/pace-commit/commit-site/internal/cache"
	"github.com/pace-commit/commit-site/internal/geoip"
	"github.com/pace-commit/commit-site/internal/notify"
	"github.com/pace-commit/commit-site/internal/store"
)

// Errors returned by Service.
var (
	ErrNotFound        = errors.New("submission not found")
	ErrTooManyRequests = errors.New("too many submissions, please try again later")
	ErrSaveFailed      = errors.New("Failed to save contact submission")
	ErrCaptcha         = errors.New("Captcha verification failed")
)

// Store is the persistence contract of the service. *store.Queries
// satisfies it.
type Store interface {
	CreateContactSubmission(ctx context.Context, arg store.CreateContactSubmissionParams) (store.ContactSubmission, error)
	ListContactSubmissions(ctx context.Context) ([]store.ContactSubmission, error)
	SetContactSubmissionRead(ctx context.Context, arg store.SetContactSubmissionReadParams) (int64, error)
	DeleteContactSubmission(ctx context.Context, id string) (int64, error)
	CountUnreadContactSubmissions(ctx context.Context) (int64, error)
}

var _ Store = (*store.Queries)(nil)

// CountryLookup resolves an IP to an ISO country code.
type CountryLookup interface {
	Country(ip string) string
}

// CaptchaVerifier checks a captcha token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// Meta describes the client that sent a submission.
type Meta struct {
	IP        string
	UserAgent string
}

// Config holds the service settings.
type Config struct {
	// From and To address the notification e-mail.
	From string
	To   []string

	// RateLimit is the number of submissions one IP may send per
	// RateWindow. Zero disables the throttle.
	RateLimit  int
	RateWindow time.Duration
}

// Service handles contact submissions.
type Service struct {
	store    Store
	mailer   notify.Mailer
	geo      CountryLookup
	captcha  CaptchaVerifier
	throttle cache.Cache
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// Option customises a Service.
type Option func(*Service)

// WithCountryLookup sets the GeoIP lookup.
func WithCountryLookup(g CountryLookup) Option {
	return func(s *Service) { s.geo = g }
}

// WithCaptcha sets the captcha verifier.
func WithCaptcha(v CaptchaVerifier) Option {
	return func(s *Service) { s.captcha = v }
}

// WithThrottle sets the counter store used for per-IP throttling.
func WithThrottle(c cache.Cache) Option {
	return func(s *Service) { s.throttle = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service. A nil mailer makes every submission fail
// with notify.ErrNotConfigured, matching a deployment without an API key.
func NewService(st Store, mailer notify.Mailer, cfg Config, opts ...Option) *Service {
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = time.Hour
	}
	s := &Service{
		store:  st,
		mailer: mailer,
		cfg:    cfg,
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates req, stores it and sends the notification e-mail. The
// stored row is kept when the e-mail fails; the error is still returned.
func (s *Service) Submit(ctx context.Context, req Request, meta Meta) (store.ContactSubmission, error) {
	if s.mailer == nil {
		return store.ContactSubmission{}, notify.ErrNotConfigured
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return store.ContactSubmission{}, err
	}

	if err := s.checkThrottle(ctx, meta.IP); err != nil {
		return store.ContactSubmission{}, err
	}

	if s.captcha != nil {
		if err := s.captcha.Verify(ctx, req.CaptchaToken, meta.IP); err != nil {
			s.logger.Warn("contact captcha rejected", "ip", meta.IP, "error", err)
			return store.ContactSubmission{}, ErrCaptcha
		}
	}

	country := ""
	if s.geo != nil {
		country = s.geo.Country(meta.IP)
	}

	sub, err := s.store.CreateContactSubmission(ctx, store.CreateContactSubmissionParams{
		ID:        s.newID(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Subject:   req.Subject,
		Message:   req.Message,
		IpAddress: meta.IP,
		Country:   country,
		UserAgent: meta.UserAgent,
		CreatedAt: s.now(),
	})
	if err != nil {
		s.logger.Error("database insert error", "category", "contact", "error", err)
		return store.ContactSubmission{}, ErrSaveFailed
	}

	msg, err := notify.ContactMessage(s.cfg.From, s.cfg.To, notify.Contact{
		FirstName: sub.FirstName,
		LastName:  sub.LastName,
		Email:     sub.Email,
		Phone:     sub.Phone,
		Subject:   sub.Subject,
		Message:   sub.Message,
		Country:   geoip.CountryName(country),
		Client:    ClientSummary(meta.UserAgent),
	})
	if err != nil {
		return sub, err
	}

	id, err := s.mailer.Send(ctx, msg)
	if err != nil {
		s.logger.Error("contact email send failed", "submission_id", sub.ID, "error", err)
		return sub, fmt.Errorf("failed to send notification email: %w", err)
	}

	s.logger.Info("contact email sent", "submission_id", sub.ID, "email_id", id)
	return sub, nil
}

func (s *Service) checkThrottle(ctx context.Context, ip string) error {
	if s.throttle == nil || s.cfg.RateLimit <= 0 || ip == "" {
		return nil
	}

	n, err := s.throttle.Incr(ctx, "contact:"+ip, s.cfg.RateWindow)
	if err != nil {
		// Fail open when the counter store is down.
		s.logger.Warn("contact throttle unavailable", "category", "cache", "error", err)
		return nil
	}
	if n > int64(s.cfg.RateLimit) {
		s.logger.Warn("contact rate limit exceeded", "ip", ip, "count", n)
		return ErrTooManyRequests
	}
	return nil
}

// Submission is a stored submission as shown in the admin panel.
type Submission struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read"`
	IPAddress   string    `json:"ip_address,omitempty"`
	Country     string    `json:"country,omitempty"`
	CountryName string    `json:"country_name,omitempty"`
	Client      string    `json:"client,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toSubmission(s store.ContactSubmission) Submission {
	v := Submission{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Phone:     s.Phone,
		Subject:   s.Subject,
		Message:   s.Message,
		IsRead:    s.IsRead,
		IPAddress: s.IpAddress,
		Country:   s.Country,
		Client:    ClientSummary(s.UserAgent),
		CreatedAt: s.CreatedAt,
	}
	if s.Country != "" {
		v.CountryName = geoip.CountryName(s.Country)
	}
	return v
}

// List returns every submission, newest first.
func (s *Service) List(ctx context.Context) ([]Submission, error) {
	rows, err := s.store.ListContactSubmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	out := make([]Submission, len(rows))
	for i, r := range rows {
		out[i] = toSubmission(r)
	}
	return out, nil
}

// UnreadCount returns the number of unread submissions.
func (s *Service) UnreadCount(ctx context.Context) (int64, error) {
	return s.store.CountUnreadContactSubmissions(ctx)
}

// SetRead sets the read flag of a submission.
func (s *Service) SetRead(ctx context.Context, id string, read bool) error {
	n, err := s.store.SetContactSubmissionRead(ctx, store.SetContactSubmissionReadParams{IsRead: read, ID: id})
	if err != nil {
		return fmt.Errorf("updating submission: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a submission.
func (s *Service) Delete(ctx context.Context, id string) error {
	n, err := s.store.DeleteContactSubmission(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting submission: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ClientSummary renders a user agent as "Browser on OS (device)".
func ClientSummary(uaString string) string {
	if uaString == "" {
		return ""
	}
	ua := useragent.Parse(uaString)

	browser := ua.Name
	if browser == "" {
		browser = "Unknown"
	}
	os := ua.OS
	if os == "" {
		os = "Unknown"
	}

	device := "desktop"
	switch {
	case ua.Bot:
		device = "bot"
	case ua.Mobile:
		device = "mobile"
	case ua.Tablet:
		device = "tablet"
	}
	return fmt.Sprintf("%s on %s (%s)", browser, os, device)
}
