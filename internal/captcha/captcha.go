// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package captcha verifies hCaptcha tokens submitted with public forms.
package captcha

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultVerifyURL is the hCaptcha verification endpoint.
	DefaultVerifyURL = "https://api.hcaptcha.com/siteverify"
	verifyTimeout    = 10 * time.Second
)

// Errors reported by Verify.
var (
	ErrMissingToken = errors.New("please complete the captcha")
	ErrRejected     = errors.New("captcha verification failed")
)

// verifyResponse represents the hCaptcha API response.
type verifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// Verifier checks captcha tokens. A Verifier without a secret key accepts
// every request.
type Verifier struct {
	secret    string
	verifyURL string
	client    *resty.Client
}

// NewVerifier creates a Verifier. An empty verifyURL uses DefaultVerifyURL.
func NewVerifier(secret, verifyURL string) *Verifier {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	return &Verifier{
		secret:    secret,
		verifyURL: verifyURL,
		client: resty.New().
			SetTimeout(verifyTimeout).
			SetHeader("Accept", "application/json"),
	}
}

// Enabled reports whether tokens are checked.
func (v *Verifier) Enabled() bool {
	return v != nil && v.secret != ""
}

// Verify checks token for the client at remoteIP. It returns nil when
// verification is disabled.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) error {
	if !v.Enabled() {
		return nil
	}
	if token == "" {
		return ErrMissingToken
	}

	form := map[string]string{
		"secret":   v.secret,
		"response": token,
	}
	if remoteIP != "" {
		form["remoteip"] = remoteIP
	}

	var result verifyResponse
	resp, err := v.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&result).
		Post(v.verifyURL)
	if err != nil {
		return fmt.Errorf("captcha verification request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("captcha verification request failed: status %d", resp.StatusCode())
	}

	if !result.Success {
		return fmt.Errorf("%w: %v", ErrRejected, result.ErrorCodes)
	}
	return nil
}
