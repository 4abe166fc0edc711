package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pace-commit/commit-site/internal/auth"
	"github.com/pace-commit/commit-site/internal/service"
	"github.com/pace-commit/commit-site/internal/session"
	"github.com/pace-commit/commit-site/internal/store"
	"github.com/pace-commit/commit-site/internal/testutil"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

func adminSession() auth.Session {
	return auth.Session{State: auth.StateAdmin, User: &auth.User{ID: 1, Email: "admin@example.com", IsAdmin: true}}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name         string
		sess         *auth.Session
		accept       string
		wantStatus   int
		wantLocation string
	}{
		{name: "admin passes", sess: ptr(adminSession()), wantStatus: http.StatusOK},
		{name: "no session loaded is loading", wantStatus: http.StatusServiceUnavailable},
		{name: "loading", sess: &auth.Session{State: auth.StateLoading}, wantStatus: http.StatusServiceUnavailable},
		{name: "unauthenticated api call", sess: &auth.Session{State: auth.StateUnauthenticated}, wantStatus: http.StatusUnauthorized},
		{
			name:         "unauthenticated browser navigation",
			sess:         &auth.Session{State: auth.StateUnauthenticated},
			accept:       "text/html,application/xhtml+xml",
			wantStatus:   http.StatusSeeOther,
			wantLocation: LoginPath,
		},
		{
			name:       "signed in without admin role",
			sess:       &auth.Session{State: auth.StateAuthenticated, User: &auth.User{ID: 7}},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/api/content", nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			if tt.sess != nil {
				req = req.WithContext(WithSession(req.Context(), *tt.sess))
			}
			rec := httptest.NewRecorder()

			RequireAdmin(nil)(okHandler).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantLocation != "" && rec.Header().Get("Location") != tt.wantLocation {
				t.Errorf("Location = %q, want %q", rec.Header().Get("Location"), tt.wantLocation)
			}
		})
	}
}

func TestRequireAdmin_LoadingSetsRetryAfter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/api/me", nil)
	rec := httptest.NewRecorder()

	RequireAdmin(nil)(okHandler).ServeHTTP(rec, req)

	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header while loading")
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
}

func TestRequireAdmin_LogsDeniedAccess(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	events := service.NewEventService(db)

	req := httptest.NewRequest(http.MethodPut, "/admin/api/content/about", nil)
	req = req.WithContext(WithSession(req.Context(), auth.Session{State: auth.StateAuthenticated, User: &auth.User{ID: 3}}))
	rec := httptest.NewRecorder()

	RequireAdmin(events)(okHandler).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	page, err := events.ListEvents(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if page.Total != 1 || page.Events[0].Category != "security" {
		t.Errorf("events = %+v, want one security event", page.Events)
	}
}

func TestLoadSession(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	admin := testutil.CreateUser(t, db, "admin@example.com", "secret", store.RoleAdmin)
	editor := testutil.CreateUser(t, db, "editor@example.com", "secret")

	sm := session.New(db, true)
	q := store.New(db)
	resolver := auth.NewResolver(q, q, testutil.TestLoggerSilent())

	login := func(userID int64) *http.Cookie {
		h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := session.SignIn(r.Context(), sm, userID); err != nil {
				t.Fatalf("SignIn: %v", err)
			}
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/login", nil))
		for _, c := range rec.Result().Cookies() {
			if c.Name == sm.Cookie.Name {
				return c
			}
		}
		t.Fatal("no session cookie")
		return nil
	}

	resolve := func(cookie *http.Cookie) auth.Session {
		var got auth.Session
		h := sm.LoadAndSave(LoadSession(sm, resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = GetSession(r)
		})))
		req := httptest.NewRequest(http.MethodGet, "/admin/api/me", nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)
		return got
	}

	if s := resolve(nil); s.State != auth.StateUnauthenticated {
		t.Errorf("anonymous state = %v, want unauthenticated", s.State)
	}
	if s := resolve(login(admin.ID)); s.State != auth.StateAdmin || !s.IsAdmin() {
		t.Errorf("admin state = %v, want admin", s.State)
	}
	if s := resolve(login(editor.ID)); s.State != auth.StateAuthenticated || s.IsAdmin() {
		t.Errorf("editor state = %v, want authenticated", s.State)
	}
	if s := resolve(login(9999)); s.State != auth.StateUnauthenticated {
		t.Errorf("deleted user state = %v, want unauthenticated", s.State)
	}
}

func TestWantsHTML(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	if !wantsHTML(req) {
		t.Error("navigate mode should want HTML")
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/api/me", nil)
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Accept", "text/html")
	if wantsHTML(req) {
		t.Error("fetch calls should not want HTML")
	}

	req = httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("Accept", "text/html")
	if wantsHTML(req) {
		t.Error("POST should never redirect")
	}
}

func TestRequestPath(t *testing.T) {
	var got string
	h := RequestPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestPath(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/content/about", nil))
	if got != "/api/content/about" {
		t.Errorf("GetRequestPath = %q", got)
	}
	if GetRequestPath(context.Background()) != "" {
		t.Error("expected empty path without middleware")
	}
}

func TestGetRequestURL(t *testing.T) {
	var got string
	h := RequestPath(StripTrailingSlash(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestURL(r)
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/admin/login", nil))
	if got != "/admin/login" {
		t.Errorf("GetRequestURL = %q, want /admin/login", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/api/events", nil)
	if got := GetRequestURL(req); got != "/admin/api/events" {
		t.Errorf("GetRequestURL without middleware = %q", got)
	}
}

func ptr[T any](v T) *T { return &v }
