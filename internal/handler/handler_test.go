package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/happeningnu/happening/internal/auth"
	"github.com/happeningnu/happening/internal/metrics"
	"github.com/happeningnu/happening/internal/middleware"
	"github.com/happeningnu/happening/internal/model"
	"github.com/happeningnu/happening/internal/service"
	"github.com/happeningnu/happening/internal/testutil/memstore"
	"github.com/happeningnu/happening/internal/validation"
	"github.com/happeningnu/happening/internal/view"
)

var fastParams = auth.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32}

// testApp is the full page stack over in-memory stores, without CSRF.
type testApp struct {
	t       *testing.T
	server  *httptest.Server
	client  *http.Client
	store   *memstore.Store
	flashes *memstore.Flashes
	metrics *metrics.InMemoryRecorder
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWith(t, nil)
}

// newTestAppWith builds the app; events overrides the event service when set.
func newTestAppWith(t *testing.T, events Events) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memstore.New()
	flashes := memstore.NewFlashes()
	rec := metrics.NewInMemory()

	views, err := view.New()
	if err != nil {
		t.Fatalf("view.New failed: %v", err)
	}

	accounts := service.NewAccountService(store, store, auth.NewHasher(fastParams), time.Hour, rec, logger)
	if events == nil {
		events = service.NewEventService(store, rec, logger)
	}

	cookie := middleware.SessionCookie{Name: middleware.DefaultSessionCookieName}
	base := New(views, flashes, logger)
	routes := &Routes{
		Base:     base,
		Accounts: NewAccountHandler(base, accounts, cookie),
		Events:   NewEventHandler(base, events),
		Health:   NewHealthHandler(nil, nil),
		Metrics:  NewMetricsHandler(rec),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	routes.Mount(r, middleware.Session(middleware.SessionConfig{
		Logger:   logger,
		Sessions: accounts,
		Cookie:   cookie,
	}))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}

	return &testApp{
		t:      t,
		server: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		store:   store,
		flashes: flashes,
		metrics: rec,
	}
}

type response struct {
	status   int
	location string
	body     string
}

func (a *testApp) do(req *http.Request) response {
	a.t.Helper()
	resp, err := a.client.Do(req)
	if err != nil {
		a.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		a.t.Fatalf("read body: %v", err)
	}
	return response{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body)}
}

func (a *testApp) get(path string) response {
	a.t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.server.URL+path, nil)
	if err != nil {
		a.t.Fatal(err)
	}
	return a.do(req)
}

func (a *testApp) post(path string, form url.Values) response {
	a.t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		a.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

// postFollow posts form, asserts a 303 to wantLocation and returns the page
// found there.
func (a *testApp) postFollow(path string, form url.Values, wantLocation string) response {
	a.t.Helper()
	resp := a.post(path, form)
	a.expectRedirect(resp, wantLocation)
	return a.get(wantLocation)
}

func (a *testApp) expectRedirect(resp response, location string) {
	a.t.Helper()
	if resp.status != http.StatusSeeOther {
		a.t.Fatalf("status = %d, want 303 (body: %s)", resp.status, resp.body)
	}
	if resp.location != location {
		a.t.Fatalf("Location = %q, want %q", resp.location, location)
	}
}

func (a *testApp) sessionToken() string {
	u, _ := url.Parse(a.server.URL)
	for _, c := range a.client.Jar.Cookies(u) {
		if c.Name == middleware.DefaultSessionCookieName {
			return c.Value
		}
	}
	return ""
}

func signupForm(email, username, password string) url.Values {
	return url.Values{
		"email":            {email},
		"username":         {username},
		"password":         {password},
		"confirm_password": {password},
	}
}

func loginForm(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}}
}

func eventForm(title string) url.Values {
	return url.Values{
		"title":    {title},
		"url":      {"https://example.com"},
		"location": {"Lund"},
		"date":     {"2025-06-01"},
		"category": {"Social"},
	}
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q\n%s", want, body)
		}
	}
}

func assertNotContains(t *testing.T, body string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(body, u) {
			t.Errorf("body should not contain %q\n%s", u, body)
		}
	}
}

func TestHandler_NotFound(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	resp := app.get("/nonexistent")

	if resp.status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.status)
	}
	assertContains(t, resp.body, "Page not found.", "<title>"+view.TitleError+"</title>")
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	resp := app.post("/user_events", nil)

	if resp.status != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.status)
	}
	assertContains(t, resp.body, "Method not allowed.")
}

func TestHandler_AnonymousVisitorGetsSessionCookie(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	resp := app.get("/")

	if resp.status != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.status)
	}
	if !auth.ValidTokenFormat(app.sessionToken()) {
		t.Errorf("anonymous visitor should hold a session token, got %q", app.sessionToken())
	}
	assertContains(t, resp.body, "<title>Happening nu</title>", "No events yet.", `href="/login"`)
}

func TestHandler_FlashShownOnce(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.get("/")

	if err := app.flashes.PushFlash(context.Background(), app.sessionToken(), model.Info("hello there")); err != nil {
		t.Fatal(err)
	}

	assertContains(t, app.get("/").body, "hello there")
	assertNotContains(t, app.get("/").body, "hello there")
}

func TestHandler_ServerErrorPage(t *testing.T) {
	t.Parallel()

	app := newTestAppWith(t, failingEvents{err: errors.New("connection reset")})
	resp := app.get("/")

	if resp.status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.status)
	}
	assertContains(t, resp.body, "Something went wrong")
	assertNotContains(t, resp.body, "connection reset")
}

// failingEvents fails every operation.
type failingEvents struct {
	err error
}

func (f failingEvents) ListAll(context.Context) ([]*model.EventListing, error) {
	return nil, f.err
}

func (f failingEvents) ListByOwner(context.Context, int64) ([]*model.EventListing, error) {
	return nil, f.err
}

func (f failingEvents) Create(context.Context, int64, validation.NewEventForm) (*model.Event, error) {
	return nil, f.err
}

func (f failingEvents) Delete(context.Context, int64, int64) error {
	return f.err
}

func (f failingEvents) ToggleAttendance(context.Context, int64, int64) (int64, error) {
	return 0, f.err
}
