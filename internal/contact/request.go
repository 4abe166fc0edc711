// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package contact

import (
	"errors"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/pace-commit/commit-site/internal/validate"
)

// Request is the body of a contact form submission.
type Request struct {
	FirstName    string `json:"first_name" validate:"required,max=100"`
	LastName     string `json:"last_name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email,max=254"`
	Phone        string `json:"phone" validate:"omitempty,max=50"`
	Subject      string `json:"subject" validate:"max=200"`
	Message      string `json:"message" validate:"required,max=5000"`
	CaptchaToken string `json:"captcha_token,omitempty"`
}

// requiredFields are reported together when any of them is missing.
var requiredFields = []string{"first_name", "last_name", "email", "message"}

// ValidationError describes why a request was rejected. Its message is
// safe to show to the visitor.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var textPolicy = bluemonday.StrictPolicy()

// cleanText strips markup and surrounding whitespace from visitor input.
func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// Normalize trims and strips markup from every field.
func (r *Request) Normalize() {
	r.FirstName = cleanText(r.FirstName)
	r.LastName = cleanText(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = cleanText(r.Phone)
	r.Subject = cleanText(r.Subject)
	r.Message = cleanText(r.Message)
	r.CaptchaToken = strings.TrimSpace(r.CaptchaToken)
}

// Validate checks a normalized request.
func (r *Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var fe validate.Errors
	if !errors.As(err, &fe) {
		return err
	}

	for _, f := range requiredFields {
		if fe.Has(f, "required") {
			return &ValidationError{
				Message: "Missing required fields: " + strings.Join(requiredFields, ", "),
				Fields:  fe.Fields(),
			}
		}
	}
	if fe.Has("email", "email") {
		return &ValidationError{Message: "Invalid email address", Fields: []string{"email"}}
	}
	return &ValidationError{
		Message: "Field too long: " + strings.Join(fe.Fields(), ", "),
		Fields:  fe.Fields(),
	}
}
