package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiter_PerIP(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	h := rl.Middleware()(okHandler)

	send := func(addr, method string) int {
		req := httptest.NewRequest(method, "/functions/send-contact-email", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := send("198.51.100.1:1000", http.MethodPost); got != http.StatusOK {
		t.Fatalf("first request = %d, want 200", got)
	}
	if got := send("198.51.100.1:1001", http.MethodPost); got != http.StatusTooManyRequests {
		t.Errorf("second request = %d, want 429", got)
	}
	if got := send("198.51.100.2:1000", http.MethodPost); got != http.StatusOK {
		t.Errorf("other IP = %d, want 200", got)
	}
	if got := send("198.51.100.1:1002", http.MethodOptions); got != http.StatusOK {
		t.Errorf("preflight = %d, want 200", got)
	}
}

func TestLimiterCacheClearIfExceeds(t *testing.T) {
	lc := newLimiterCache[string](1, 1)
	lc.get("a")
	lc.get("b")

	if lc.clearIfExceeds(5) {
		t.Error("should not clear under the limit")
	}
	if !lc.clearIfExceeds(1) {
		t.Error("should clear over the limit")
	}
	if len(lc.limiters) != 0 {
		t.Errorf("len = %d, want 0", len(lc.limiters))
	}
}

func TestClientIP(t *testing.T) {
	tests := map[string]string{
		"203.0.113.5:443": "203.0.113.5",
		"[2001:db8::1]:80": "2001:db8::1",
		"203.0.113.9":      "203.0.113.9",
	}
	for addr, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		if got := ClientIP(req); got != want {
			t.Errorf("ClientIP(%q) = %q, want %q", addr, got, want)
		}
	}
}
