// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import "slices"

// Company holds the static company profile. Name and tagline are not
// editable; the other fields are the defaults for about/company_info.
type Company struct {
	Name     string `json:"name"`
	Tagline  string `json:"tagline"`
	Overview string `json:"overview"`
	Mission  string `json:"mission"`
	Vision   string `json:"vision"`
}

// Defaults is the compiled-in content every read falls back to.
type Defaults struct {
	Company  Company
	Services []Item
	Values   []Item
	Contact  ContactInfo
}

var defaults = Defaults{
	Company: Company{
		Name:     "CommIT Enterprise",
		Tagline:  "Empowering Institutions Through Technology",
		Overview: "CommIT Enterprise is a Gambian-based ICT and project consulting firm providing technology-driven solutions, infrastructure support, and advisory services to public and private sector clients. The enterprise focuses on delivering practical, scalable, and sustainable solutions aligned with national development priorities.",
		Mission:  "To empower institutions and businesses through reliable technology solutions and professional project advisory services that drive efficiency and sustainable growth.",
		Vision:   "To be a trusted ICT and project consulting partner contributing to digital transformation and infrastructure development in The Gambia and the sub-region.",
	},
	Services: []Item{
		{ID: "ict", Title: "ICT & Telecommunications", Description: "Supply and installation of fiber optic cables, networking equipment, and related telecom infrastructure."},
		{ID: "consulting", Title: "Project Consulting & Advisory", Description: "Project structuring, feasibility support, and implementation advisory, including BOT, PPP, and public-sector projects."},
		{ID: "procurement", Title: "Technology Procurement", Description: "Sourcing and delivery of ICT hardware, systems, and specialized equipment for government agencies and private organizations."},
		{ID: "engagement", Title: "Public–Private Engagement", Description: "Preparation of MoUs, contracts, and partnership frameworks for government and institutional collaborations."},
	},
	Values: []Item{
		{ID: "integrity", Title: "Integrity", Description: "We uphold the highest standards of honesty in all our actions."},
		{ID: "professionalism", Title: "Professionalism", Description: "Delivering excellence with expert knowledge and discipline."},
		{ID: "innovation", Title: "Innovation", Description: "Constantly seeking new ways to solve complex problems."},
		{ID: "accountability", Title: "Accountability", Description: "Taking full responsibility for our decisions and outcomes."},
		{ID: "partnership", Title: "Partnership", Description: "Building strong, lasting relationships for mutual success."},
	},
	Contact: ContactInfo{
		Email:   "scattred@pace-commit.com",
		Phone:   "+220 212 1289",
		Address: "Salagi, 97XP + 24H, Sukuta WCR, The Gambia",
	},
}

// DefaultContent returns a copy of the compiled-in defaults. Callers may
// modify the copy freely.
func DefaultContent() Defaults {
	return defaults.clone()
}

func (d Defaults) clone() Defaults {
	d.Services = slices.Clone(d.Services)
	d.Values = slices.Clone(d.Values)
	return d
}
