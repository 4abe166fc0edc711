// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"encoding/json"
	"errors"
	"log/slog"
)

// ErrUnknownView is returned by Resolve for a view name it does not serve.
var ErrUnknownView = errors.New("unknown content view")

// Public view names. ViewValues reads the about section.
const (
	ViewAbout    = "about"
	ViewServices = "services"
	ViewValues   = "values"
	ViewContact  = "contact"
)

// ViewSection returns the stored section a public view is built from.
func ViewSection(view string) (string, bool) {
	switch view {
	case ViewAbout, ViewValues:
		return SectionAbout, true
	case ViewServices:
		return SectionServices, true
	case ViewContact:
		return SectionContact, true
	}
	return "", false
}

// Text returns dynamic when it is non-empty, otherwise fallback.
func Text(dynamic, fallback string) string {
	if dynamic != "" {
		return dynamic
	}
	return fallback
}

// Items overlays dynamic items onto static ones by id. The result has the
// static order and membership; a matching dynamic item replaces title and
// description where it has non-empty values. Dynamic items with ids unknown
// to static are dropped.
func Items(static, dynamic []Item) []Item {
	byID := make(map[string]Item, len(dynamic))
	for _, d := range dynamic {
		if _, dup := byID[d.ID]; !dup {
			byID[d.ID] = d
		}
	}

	out := make([]Item, len(static))
	for i, s := range static {
		out[i] = s
		if d, ok := byID[s.ID]; ok {
			out[i].Title = Text(d.Title, s.Title)
			out[i].Description = Text(d.Description, s.Description)
		}
	}
	return out
}

// About is the merged about view.
type About struct {
	Company
	Values []Item `json:"values"`
}

// Site is every merged view in one document.
type Site struct {
	About    About       `json:"about"`
	Services []Item      `json:"services"`
	Values   []Item      `json:"values"`
	Contact  ContactInfo `json:"contact"`
}

// Resolver merges stored payloads over the defaults.
type Resolver struct {
	defaults Defaults
	logger   *slog.Logger
}

// NewResolver creates a Resolver over d. A nil logger falls back to
// slog.Default.
func NewResolver(d Defaults, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{defaults: d.clone(), logger: logger}
}

// Defaults returns a copy of the resolver's defaults.
func (r *Resolver) Defaults() Defaults {
	return r.defaults.clone()
}

// ResolveCompany merges about/company_info over the default company profile.
func (r *Resolver) ResolveCompany(m Map) Company {
	c := r.defaults.Company
	if info, ok := payload(r, m, SectionAbout, KeyCompanyInfo, decodeCompanyInfo); ok {
		c.Overview = Text(info.Overview, c.Overview)
		c.Mission = Text(info.Mission, c.Mission)
		c.Vision = Text(info.Vision, c.Vision)
	}
	return c
}

// ResolveValues merges about/values over the default values.
func (r *Resolver) ResolveValues(m Map) []Item {
	dyn, _ := payload(r, m, SectionAbout, KeyValues, decodeItems)
	return Items(r.defaults.Values, dyn)
}

// ResolveServices merges services/list over the default services.
func (r *Resolver) ResolveServices(m Map) []Item {
	dyn, _ := payload(r, m, SectionServices, KeyList, decodeItems)
	return Items(r.defaults.Services, dyn)
}

// ResolveContact merges contact/info over the default contact details.
func (r *Resolver) ResolveContact(m Map) ContactInfo {
	c := r.defaults.Contact
	if info, ok := payload(r, m, SectionContact, KeyInfo, decodeContactInfo); ok {
		c.Email = Text(info.Email, c.Email)
		c.Phone = Text(info.Phone, c.Phone)
		c.Address = Text(info.Address, c.Address)
	}
	return c
}

// ResolveAbout builds the about view from the about section map.
func (r *Resolver) ResolveAbout(m Map) About {
	return About{Company: r.ResolveCompany(m), Values: r.ResolveValues(m)}
}

// Resolve builds the named public view from the map of its section
// (see ViewSection).
func (r *Resolver) Resolve(view string, m Map) (any, error) {
	switch view {
	case ViewAbout:
		return r.ResolveAbout(m), nil
	case ViewValues:
		return r.ResolveValues(m), nil
	case ViewServices:
		return r.ResolveServices(m), nil
	case ViewContact:
		return r.ResolveContact(m), nil
	}
	return nil, ErrUnknownView
}

// ResolveAll builds every view from a read of all sections.
func (r *Resolver) ResolveAll(all AllMap) Site {
	about := all[SectionAbout]
	return Site{
		About:    r.ResolveAbout(about),
		Services: r.ResolveServices(all[SectionServices]),
		Values:   r.ResolveValues(about),
		Contact:  r.ResolveContact(all[SectionContact]),
	}
}

// EditorState is the admin form state: the defaults with stored payloads
// applied. Stored lists replace the default lists wholesale so the editor
// shows exactly what was saved.
type EditorState struct {
	About    CompanyInfo `json:"about"`
	Values   []Item      `json:"values"`
	Services []Item      `json:"services"`
	Contact  ContactInfo `json:"contact"`
}

// EditorState builds the admin form state from a read of all sections.
func (r *Resolver) EditorState(all AllMap) EditorState {
	company := r.ResolveCompany(all[SectionAbout])
	st := EditorState{
		About:    CompanyInfo{Overview: company.Overview, Mission: company.Mission, Vision: company.Vision},
		Values:   r.defaults.clone().Values,
		Services: r.defaults.clone().Services,
		Contact:  r.ResolveContact(all[SectionContact]),
	}
	if v, ok := payload(r, all[SectionAbout], SectionAbout, KeyValues, decodeItems); ok {
		st.Values = v
	}
	if v, ok := payload(r, all[SectionServices], SectionServices, KeyList, decodeItems); ok {
		st.Services = v
	}
	return st
}

// payload decodes m[key]. Absent keys and payloads of the wrong shape
// report false; the latter are logged.
func payload[T any](r *Resolver, m Map, section, key string, decode func(json.RawMessage) (T, error)) (T, bool) {
	var zero T
	raw, ok := m[key]
	if !ok || len(raw) == 0 {
		return zero, false
	}
	v, err := decode(raw)
	if err != nil {
		r.logger.Warn("ignoring malformed site content",
			"category", "content", "section", section, "key", key, "error", err)
		return zero, false
	}
	return v, true
}
