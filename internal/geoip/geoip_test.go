package geoip

import (
	"path/filepath"
	"testing"
)

func TestCountry_WithoutDatabase(t *testing.T) {
	g, err := Open("")
	if err != nil {
		t.Fatalf("Open(\"\") error: %v", err)
	}
	defer func() { _ = g.Close() }()

	tests := []struct {
		ip   string
		want string
	}{
		{"127.0.0.1", CodeLocal},
		{"::1", CodeLocal},
		{"10.1.2.3", CodeLocal},
		{"192.168.0.10", CodeLocal},
		{"fe80::1", CodeLocal},
		{"196.46.233.10", ""},
		{"not-an-ip", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := g.Country(tt.ip); got != tt.want {
			t.Errorf("Country(%q) = %q, want %q", tt.ip, got, tt.want)
		}
	}

	if g.Enabled() {
		t.Error("Enabled() = true without a database")
	}
}

func TestOpen_MissingDatabase(t *testing.T) {
	g, err := Open(filepath.Join(t.TempDir(), "missing.mmdb"))
	if err == nil {
		t.Fatal("expected error for missing database")
	}
	if g == nil || g.Enabled() {
		t.Fatal("Open should return a disabled Lookup on error")
	}
	if got := g.Country("8.8.8.8"); got != "" {
		t.Errorf("Country = %q, want empty", got)
	}
	if err := g.Reload(); err == nil {
		t.Error("Reload should keep failing while the file is missing")
	}
}

func TestZeroValueLookup(t *testing.T) {
	var g Lookup
	if got := g.Country("127.0.0.1"); got != CodeLocal {
		t.Errorf("Country = %q, want LOCAL", got)
	}
	if err := g.Reload(); err != nil {
		t.Errorf("Reload on zero value: %v", err)
	}
}

func TestCountryName(t *testing.T) {
	if got := CountryName("GM"); got != "The Gambia" {
		t.Errorf("CountryName(GM) = %q", got)
	}
	if got := CountryName("ZZ"); got != "ZZ" {
		t.Errorf("CountryName(ZZ) = %q", got)
	}
	if got := CountryName(""); got != "Unknown" {
		t.Errorf("CountryName(\"\") = %q", got)
	}
}
