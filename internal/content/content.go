// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content reads, overlays and writes the editable site content.
//
// Content rows are addressed by (section, key) and hold a JSON payload whose
// shape depends on the key. Reads never fail: missing or malformed rows fall
// back to the compiled-in defaults field by field. Writes always report
// their errors.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pace-commit/commit-site/internal/validate"
)

// Sections.
const (
	SectionAbout    = "about"
	SectionServices = "services"
	SectionContact  = "contact"
)

// Keys.
const (
	KeyCompanyInfo = "company_info"
	KeyValues      = "values"
	KeyList        = "list"
	KeyInfo        = "info"
)

// Errors returned by the write path.
var (
	ErrUnknownKey   = errors.New("unknown content key")
	ErrInvalidValue = errors.New("invalid content value")
	ErrUnknownTab   = errors.New("unknown content tab")
)

// Kind is the payload shape stored under a key.
type Kind int

const (
	KindUnknown Kind = iota
	KindCompanyInfo
	KindItems
	KindContactInfo
)

// keyKinds lists every known (section, key) pair and its payload shape.
var keyKinds = map[string]map[string]Kind{
	SectionAbout: {
		KeyCompanyInfo: KindCompanyInfo,
		KeyValues:      KindItems,
	},
	SectionServices: {
		KeyList: KindItems,
	},
	SectionContact: {
		KeyInfo: KindContactInfo,
	},
}

// KindOf returns the payload shape of (section, key), or KindUnknown.
func KindOf(section, key string) Kind {
	return keyKinds[section][key]
}

// IsSection reports whether section is a known namespace.
func IsSection(section string) bool {
	_, ok := keyKinds[section]
	return ok
}

// CompanyInfo is the about/company_info payload.
type CompanyInfo struct {
	Overview string `json:"overview"`
	Mission  string `json:"mission"`
	Vision   string `json:"vision"`
}

// Item is one entry of the about/values and services/list payloads.
type Item struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ContactInfo is the contact/info payload.
type ContactInfo struct {
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Map holds the raw payloads of one section keyed by content key.
type Map map[string]json.RawMessage

// AllMap holds every section's Map keyed by section.
type AllMap map[string]Map

// Entry is a stored row as returned to the admin panel.
type Entry struct {
	Section   string          `json:"section"`
	Key       string          `json:"key"`
	Content   json.RawMessage `json:"content"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// decodeCompanyInfo narrows a raw payload to CompanyInfo. It fails for
// anything that is not a JSON object.
func decodeCompanyInfo(raw json.RawMessage) (CompanyInfo, error) {
	var v CompanyInfo
	if err := json.Unmarshal(raw, &v); err != nil {
		return CompanyInfo{}, err
	}
	return v, nil
}

func decodeItems(raw json.RawMessage) ([]Item, error) {
	var v []Item
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errors.New("payload is not a list")
	}
	return v, nil
}

func decodeContactInfo(raw json.RawMessage) (ContactInfo, error) {
	var v ContactInfo
	if err := json.Unmarshal(raw, &v); err != nil {
		return ContactInfo{}, err
	}
	return v, nil
}

// checkValue validates that value has the payload shape of (section, key).
// Typed values and raw JSON are both accepted.
func checkValue(section, key string, value any) (any, error) {
	kind := KindOf(section, key)
	if kind == KindUnknown {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownKey, section, key)
	}

	if raw, ok := asRaw(value); ok {
		var err error
		switch kind {
		case KindCompanyInfo:
			value, err = decodeCompanyInfo(raw)
		case KindItems:
			value, err = decodeItems(raw)
		case KindContactInfo:
			value, err = decodeContactInfo(raw)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %v", ErrInvalidValue, section, key, err)
		}
	}

	switch v := value.(type) {
	case CompanyInfo:
		if kind == KindCompanyInfo {
			return v, nil
		}
	case *CompanyInfo:
		if kind == KindCompanyInfo && v != nil {
			return *v, nil
		}
	case []Item:
		if kind == KindItems {
			return v, checkItems(section, key, v)
		}
	case ContactInfo:
		if kind == KindContactInfo {
			return v, wrapInvalid(section, key, validate.Struct(v))
		}
	case *ContactInfo:
		if kind == KindContactInfo && v != nil {
			return *v, wrapInvalid(section, key, validate.Struct(v))
		}
	}

	return nil, fmt.Errorf("%w: %s/%s: unexpected %T", ErrInvalidValue, section, key, value)
}

func checkItems(section, key string, items []Item) error {
	if items == nil {
		return fmt.Errorf("%w: %s/%s: list is nil", ErrInvalidValue, section, key)
	}
	seen := make(map[string]bool, len(items))
	for i := range items {
		if err := validate.Struct(items[i]); err != nil {
			return fmt.Errorf("%w: %s/%s[%d]: %v", ErrInvalidValue, section, key, i, err)
		}
		if seen[items[i].ID] {
			return fmt.Errorf("%w: %s/%s: duplicate id %q", ErrInvalidValue, section, key, items[i].ID)
		}
		seen[items[i].ID] = true
	}
	return nil
}

func wrapInvalid(section, key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s/%s: %v", ErrInvalidValue, section, key, err)
}

func asRaw(value any) (json.RawMessage, bool) {
	switch v := value.(type) {
	case json.RawMessage:
		return v, true
	case []byte:
		return json.RawMessage(v), true
	}
	return nil, false
}
