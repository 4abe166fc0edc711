// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notify sends transactional e-mail through the Resend HTTP API.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the Resend API endpoint.
const DefaultBaseURL = "https://api.resend.com"

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("RESEND_API_KEY is not configured")

// Message is one outgoing e-mail.
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// Mailer sends e-mail.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Config configures the Resend client.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

// sendResponse is the success body of POST /emails.
type sendResponse struct {
	ID string `json:"id"`
}

// apiError is the error body returned by Resend.
type apiError struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// Resend is a Mailer backed by the Resend API.
type Resend struct {
	client *resty.Client
}

// NewResend creates a Resend mailer. It returns ErrNotConfigured when the
// API key is empty.
func NewResend(cfg Config) (*Resend, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Resend{client: client}, nil
}

// Send delivers msg and returns the provider's message id.
func (r *Resend) Send(ctx context.Context, msg Message) (string, error) {
	var (
		result sendResponse
		apiErr apiError
	)
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(msg).
		SetResult(&result).
		SetError(&apiErr).
		Post("/emails")
	if err != nil {
		return "", fmt.Errorf("sending email: %w", err)
	}

	if resp.IsError() {
		if apiErr.Message != "" {
			return "", fmt.Errorf("email API error: %s (status %d)", apiErr.Message, resp.StatusCode())
		}
		return "", fmt.Errorf("email API error: status %d", resp.StatusCode())
	}

	return result.ID, nil
}

var _ Mailer = (*Resend)(nil)
