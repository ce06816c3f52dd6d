package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/retailer-dashboard/internal/domain"
	"github.com/spec-kit/retailer-dashboard/internal/events"
	"github.com/spec-kit/retailer-dashboard/internal/observability"
	"github.com/spec-kit/retailer-dashboard/internal/session"
)

type gateFixture struct {
	app     *fiber.App
	metrics *observability.Metrics
	denied  []events.Event
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	f := &gateFixture{metrics: observability.NewMetrics()}

	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventAccessDenied, func(_ context.Context, e events.Event) error {
		f.denied = append(f.denied, e)
		return nil
	})

	cookies := session.NewCookieStore(session.CookieOptions{})
	gate := NewGate(NewPolicy(), cookies, nil, f.metrics, dispatcher)

	app := fiber.New()
	app.Use(gate.Handle)
	app.Post("/api/auth/login", func(c *fiber.Ctx) error {
		session.FromCtx(c, cookies).Replace(domain.Session{
			AccessToken:  "access",
			RefreshToken: "refresh",
			Role:         domain.RoleRetailer,
			Email:        "a@b.com",
			Name:         "Asha",
		}, true)
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/*", func(c *fiber.Ctx) error {
		return c.SendString("page")
	})
	f.app = app
	return f
}

func (f *gateFixture) get(t *testing.T, path string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func retailerCookies(role string) []*http.Cookie {
	return []*http.Cookie{
		{Name: session.CookieAccessToken, Value: "access"},
		{Name: session.CookieRefreshToken, Value: "refresh"},
		{Name: session.CookieUserRole, Value: role},
		{Name: session.CookieUserEmail, Value: "a%40b.com"},
		{Name: session.CookieUserName, Value: "Asha"},
	}
}

func assertSecurityHeaders(t *testing.T, resp *http.Response) {
	t.Helper()
	for name, value := range SecurityHeaders {
		assert.Equal(t, value, resp.Header.Get(name), name)
	}
}

func TestGateAllowsRoleScopedSubPath(t *testing.T) {
	f := newGateFixture(t)

	resp := f.get(t, "/products/42", retailerCookies("retailer")...)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assertSecurityHeaders(t, resp)
	assert.Equal(t, int64(1), f.metrics.Snapshot().GateDecisions["allow"])
}

func TestGateForbidsBoundaryMismatchAndClearsSession(t *testing.T) {
	f := newGateFixture(t)

	resp := f.get(t, "/products-export", retailerCookies("retailer")...)

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/signin", resp.Header.Get("Location"))
	assertClearedSession(t, resp)
	require.Len(t, f.denied, 1)
	payload, ok := f.denied[0].Payload.(events.AccessDeniedPayload)
	require.True(t, ok)
	assert.Equal(t, "/products-export", payload.Path)
	assert.Equal(t, "unknown_protected", payload.RouteClass)
}

func TestGateForbidsUnsupportedRole(t *testing.T) {
	f := newGateFixture(t)

	for _, path := range []string{"/dashboard", "/profile", "/orders/3"} {
		resp := f.get(t, path, retailerCookies("staff")...)
		assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode, path)
		assert.Equal(t, "/signin", resp.Header.Get("Location"), path)
		assertClearedSession(t, resp)
	}
	assert.Len(t, f.denied, 3)
}

func assertClearedSession(t *testing.T, resp *http.Response) {
	t.Helper()
	cleared := map[string]*http.Cookie{}
	for _, c := range resp.Cookies() {
		cleared[c.Name] = c
	}
	for _, name := range session.SessionCookies {
		c, ok := cleared[name]
		if assert.True(t, ok, "cookie %s not cleared", name) {
			assert.Empty(t, c.Value)
			assert.Equal(t, "/", c.Path)
			assert.True(t, c.Expires.Before(time.Now()), name)
		}
	}
}

func TestGateRedirectsAnonymousToSignIn(t *testing.T) {
	f := newGateFixture(t)

	resp := f.get(t, "/reports")

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/signin?redirect=%2Freports", resp.Header.Get("Location"))
	assert.Empty(t, resp.Cookies())
}

func TestGateRedirectsAuthenticatedAwayFromSignIn(t *testing.T) {
	f := newGateFixture(t)

	resp := f.get(t, "/signin", retailerCookies("retailer")...)

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestGateBypassSkipsHeaders(t *testing.T) {
	f := newGateFixture(t)

	resp := f.get(t, "/assets/logo.png")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("X-Frame-Options"))
}

func TestGatePublicPageGetsHeaders(t *testing.T) {
	f := newGateFixture(t)

	resp := f.get(t, "/terms")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assertSecurityHeaders(t, resp)
}

func TestLoginRoundTripThroughGate(t *testing.T) {
	f := newGateFixture(t)

	resp, err := f.app.Test(httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	written := resp.Cookies()
	require.Len(t, written, len(session.SessionCookies))
	for _, c := range written {
		assert.Equal(t, 2592000, c.MaxAge, c.Name)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite, c.Name)
	}

	next := f.get(t, "/dashboard", written...)
	assert.Equal(t, http.StatusOK, next.StatusCode)

	back := f.get(t, "/signin", written...)
	assert.Equal(t, "/dashboard", back.Header.Get("Location"))
}

func TestApplySecurityHeadersIsIdempotent(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		ApplySecurityHeaders(c)
		ApplySecurityHeaders(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	for name, value := range SecurityHeaders {
		assert.Equal(t, []string{value}, resp.Header.Values(name))
	}
}

func TestRequireSession(t *testing.T) {
	cookies := session.NewCookieStore(session.CookieOptions{})
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(fiber.StatusUnauthorized)
		},
	})
	app.Get("/api/profile", RequireSession(cookies), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	for _, c := range retailerCookies("retailer") {
		req.AddCookie(c)
	}
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
