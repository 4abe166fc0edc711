package contact

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pace-commit/commit-site/internal/cache"
	"github.com/pace-commit/commit-site/internal/notify"
	"github.com/pace-commit/commit-site/internal/store"
	"github.com/pace-commit/commit-site/internal/testutil"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg notify.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "email-1", nil
}

type fakeGeo map[string]string

func (g fakeGeo) Country(ip string) string { return g[ip] }

type fakeCaptcha struct{ err error }

func (c fakeCaptcha) Verify(context.Context, string, string) error { return c.err }

func validRequest() Request {
	return Request{
		FirstName: "Awa",
		LastName:  "Jallow",
		Email:     "awa@example.com",
		Phone:     "+220 555 0101",
		Subject:   "Fiber quote",
		Message:   "We need 2km of fiber.",
	}
}

func newTestService(t *testing.T, mailer notify.Mailer, cfg Config, opts ...Option) (*Service, *store.Queries) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	q := store.New(db)
	if cfg.From == "" {
		cfg.From = "CommIT Contact <onboarding@resend.dev>"
		cfg.To = []string{"office@example.com"}
	}
	opts = append([]Option{WithLogger(testutil.TestLoggerSilent())}, opts...)
	return NewService(q, mailer, cfg, opts...), q
}

func countRows(t *testing.T, q *store.Queries) int64 {
	t.Helper()
	n, err := q.CountContactSubmissions(context.Background())
	require.NoError(t, err)
	return n
}

func TestSubmit_Success(t *testing.T) {
	mailer := &fakeMailer{}
	svc, q := newTestService(t, mailer, Config{}, WithCountryLookup(fakeGeo{"196.46.1.1": "GM"}))

	sub, err := svc.Submit(context.Background(), validRequest(), Meta{IP: "196.46.1.1", UserAgent: chromeUA})
	require.NoError(t, err)

	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "GM", sub.Country)
	assert.False(t, sub.IsRead)
	assert.EqualValues(t, 1, countRows(t, q))

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "New Contact: Fiber quote - from Awa Jallow", msg.Subject)
	assert.Equal(t, []string{"office@example.com"}, msg.To)
	assert.Contains(t, msg.HTML, "The Gambia")
	assert.Contains(t, msg.HTML, "Chrome on Windows (desktop)")
}

func TestSubmit_MissingMessage(t *testing.T) {
	mailer := &fakeMailer{}
	svc, q := newTestService(t, mailer, Config{})

	req := validRequest()
	req.Message = "   "

	_, err := svc.Submit(context.Background(), req, Meta{IP: "1.2.3.4"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "Missing required fields: first_name, last_name, email, message", err.Error())

	assert.Zero(t, countRows(t, q))
	assert.Empty(t, mailer.sent)
}

func TestSubmit_InvalidEmail(t *testing.T) {
	svc, q := newTestService(t, &fakeMailer{}, Config{})

	req := validRequest()
	req.Email = "not-an-email"

	_, err := svc.Submit(context.Background(), req, Meta{})
	require.Error(t, err)
	assert.Equal(t, "Invalid email address", err.Error())
	assert.Zero(t, countRows(t, q))
}

func TestSubmit_SubjectOptional(t *testing.T) {
	svc, _ := newTestService(t, &fakeMailer{}, Config{})

	req := validRequest()
	req.Subject = ""
	req.Phone = ""

	sub, err := svc.Submit(context.Background(), req, Meta{})
	require.NoError(t, err)
	assert.Empty(t, sub.Subject)
}

func TestSubmit_NoMailerConfigured(t *testing.T) {
	svc, q := newTestService(t, nil, Config{})

	_, err := svc.Submit(context.Background(), validRequest(), Meta{})
	assert.ErrorIs(t, err, notify.ErrNotConfigured)
	assert.Zero(t, countRows(t, q))
}

func TestSubmit_EmailFailureKeepsRow(t *testing.T) {
	svc, q := newTestService(t, &fakeMailer{err: errors.New("status 502")}, Config{})

	sub, err := svc.Submit(context.Background(), validRequest(), Meta{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send notification email")
	assert.NotEmpty(t, sub.ID)
	assert.EqualValues(t, 1, countRows(t, q))
}

func TestSubmit_Throttle(t *testing.T) {
	throttle := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = throttle.Close() }()

	svc, q := newTestService(t, &fakeMailer{}, Config{RateLimit: 2, RateWindow: time.Hour}, WithThrottle(throttle))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Submit(ctx, validRequest(), Meta{IP: "5.5.5.5"})
		require.NoError(t, err)
	}
	_, err := svc.Submit(ctx, validRequest(), Meta{IP: "5.5.5.5"})
	assert.ErrorIs(t, err, ErrTooManyRequests)

	_, err = svc.Submit(ctx, validRequest(), Meta{IP: "6.6.6.6"})
	assert.NoError(t, err)

	assert.EqualValues(t, 3, countRows(t, q))
}

func TestSubmit_CaptchaRejected(t *testing.T) {
	svc, q := newTestService(t, &fakeMailer{}, Config{}, WithCaptcha(fakeCaptcha{err: errors.New("bad token")}))

	_, err := svc.Submit(context.Background(), validRequest(), Meta{IP: "1.1.1.1"})
	assert.ErrorIs(t, err, ErrCaptcha)
	assert.Zero(t, countRows(t, q))
}

func TestSubmit_StripsMarkup(t *testing.T) {
	svc, _ := newTestService(t, &fakeMailer{}, Config{})

	req := validRequest()
	req.FirstName = "  <b>Awa</b> "
	req.Message = "Cables & switches <script>alert(1)</script>"

	sub, err := svc.Submit(context.Background(), req, Meta{})
	require.NoError(t, err)
	assert.Equal(t, "Awa", sub.FirstName)
	assert.Equal(t, "Cables & switches", sub.Message)
}

func TestAdminOperations(t *testing.T) {
	svc, _ := newTestService(t, &fakeMailer{}, Config{})
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ids := []string{"first", "second"}
	for i, id := range ids {
		svc.newID = func() string { return id }
		svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		_, err := svc.Submit(ctx, validRequest(), Meta{UserAgent: chromeUA})
		require.NoError(t, err)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].ID)
	assert.Equal(t, "Chrome on Windows (desktop)", list[0].Client)

	unread, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	require.NoError(t, svc.SetRead(ctx, "first", true))
	unread, _ = svc.UnreadCount(ctx)
	assert.EqualValues(t, 1, unread)
	require.NoError(t, svc.SetRead(ctx, "first", false))

	assert.ErrorIs(t, svc.SetRead(ctx, "missing", true), ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "first"))
	assert.ErrorIs(t, svc.Delete(ctx, "first"), ErrNotFound)

	list, _ = svc.List(ctx)
	assert.Len(t, list, 1)
}

func TestClientSummary(t *testing.T) {
	assert.Equal(t, "", ClientSummary(""))
	assert.Equal(t, "Chrome on Windows (desktop)", ClientSummary(chromeUA))
}
