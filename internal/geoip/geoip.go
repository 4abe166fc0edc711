// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geoip resolves client IPs to ISO country codes using a MaxMind
// GeoLite2-Country database. Without a database it degrades to reporting
// only local addresses.
package geoip

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"
)

// CodeLocal is reported for loopback and private addresses.
const CodeLocal = "LOCAL"

// Lookup handles IP to country lookup. The zero value is usable and
// disabled.
type Lookup struct {
	mu        sync.RWMutex
	db        *maxminddb.Reader
	dbPath    string
	dbModTime time.Time
}

// geoRecord matches the GeoLite2-Country database structure.
type geoRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// Open creates a Lookup backed by the database at dbPath. An empty path
// returns a disabled Lookup. A missing or unreadable database returns the
// disabled Lookup together with the error, so callers can log and carry on.
func Open(dbPath string) (*Lookup, error) {
	g := &Lookup{dbPath: dbPath}
	if dbPath == "" {
		return g, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g, g.load()
}

// load opens the database if it is new or changed since the last load.
// Caller must hold g.mu.
func (g *Lookup) load() error {
	info, err := os.Stat(g.dbPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("GeoIP database not found: %s", g.dbPath)
		}
		return fmt.Errorf("GeoIP database stat error: %w", err)
	}

	if g.db != nil && info.ModTime().Equal(g.dbModTime) {
		return nil
	}

	db, err := maxminddb.Open(g.dbPath)
	if err != nil {
		return fmt.Errorf("opening GeoIP database: %w", err)
	}

	if g.db != nil {
		_ = g.db.Close()
	}
	g.db = db
	g.dbModTime = info.ModTime()
	return nil
}

// Reload re-opens the database when the file has changed on disk. A failed
// reload keeps the previously loaded database.
func (g *Lookup) Reload() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dbPath == "" {
		return nil
	}
	return g.load()
}

// Country returns the 2-letter ISO country code for ip, CodeLocal for
// loopback and private addresses, and "" when unknown.
func (g *Lookup) Country(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast() {
		return CodeLocal
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.db == nil {
		return ""
	}

	var record geoRecord
	if err := g.db.Lookup(parsed, &record); err != nil {
		return ""
	}
	return record.Country.ISOCode
}

// Enabled reports whether a database is loaded.
func (g *Lookup) Enabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.db != nil
}

// Close closes the database.
func (g *Lookup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.db == nil {
		return nil
	}
	err := g.db.Close()
	g.db = nil
	return err
}

var countryNames = map[string]string{
	CodeLocal: "Local Network",
	"GM":      "The Gambia",
	"SN":      "Senegal",
	"GN":      "Guinea",
	"GW":      "Guinea-Bissau",
	"ML":      "Mali",
	"MR":      "Mauritania",
	"SL":      "Sierra Leone",
	"LR":      "Liberia",
	"CI":      "Côte d'Ivoire",
	"GH":      "Ghana",
	"NG":      "Nigeria",
	"CV":      "Cabo Verde",
	"MA":      "Morocco",
	"ZA":      "South Africa",
	"KE":      "Kenya",
	"GB":      "United Kingdom",
	"US":      "United States",
	"FR":      "France",
	"DE":      "Germany",
	"ES":      "Spain",
	"NL":      "Netherlands",
	"SE":      "Sweden",
	"CN":      "China",
	"IN":      "India",
	"AE":      "United Arab Emirates",
}

// CountryName returns a display name for a country code, the code itself
// when it is not in the table, or "Unknown" for "".
func CountryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	if code == "" {
		return "Unknown"
	}
	return code
}
