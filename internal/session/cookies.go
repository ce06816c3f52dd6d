package session

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/retailer-dashboard/internal/domain"
)

// Session cookie names. They are always written and deleted together.
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
	CookieUserRole     = "userRole"
	CookieUserEmail    = "userEmail"
	CookieUserName     = "userName"
)

// Pending setup cookie names, written after OTP verification of a new signup.
const (
	CookieSetupAccessToken  = "setupAccessToken"
	CookieSetupRefreshToken = "setupRefreshToken"
	CookieSetupUserEmail    = "setupUserEmail"
	CookieSetupUserName     = "setupUserName"
)

// SessionCookies lists the five session cookie names.
var SessionCookies = []string{
	CookieAccessToken,
	CookieRefreshToken,
	CookieUserRole,
	CookieUserEmail,
	CookieUserName,
}

var setupCookies = []string{
	CookieSetupAccessToken,
	CookieSetupRefreshToken,
	CookieSetupUserEmail,
	CookieSetupUserName,
}

// expired is the Expires value used to delete a cookie.
var expired = time.Unix(0, 0).UTC()

// CookieOptions controls cookie attributes.
type CookieOptions struct {
	// RememberMaxAge is the max-age in seconds applied when "remember me" is selected.
	RememberMaxAge int
	// Secure marks cookies Secure (production only).
	Secure bool
}

// CookieStore reads and writes the session cookie schema on fiber requests.
// Cookies are scoped to path "/" with SameSite=Strict. Without remember-me they are session cookies.
type CookieStore struct {
	opts CookieOptions
}

// NewCookieStore builds a store, defaulting the remember-me lifetime to 30 days.
func NewCookieStore(opts CookieOptions) *CookieStore {
	if opts.RememberMaxAge <= 0 {
		opts.RememberMaxAge = 2592000
	}
	return &CookieStore{opts: opts}
}

// Load returns the session held in cookies. Partial sessions are reported as absent.
func (s *CookieStore) Load(c *fiber.Ctx) (domain.Session, bool) {
	sess := domain.Session{
		AccessToken:  s.read(c, CookieAccessToken),
		RefreshToken: s.read(c, CookieRefreshToken),
		Role:         domain.Role(s.read(c, CookieUserRole)),
		Email:        s.read(c, CookieUserEmail),
		Name:         s.read(c, CookieUserName),
	}
	if !sess.Complete() {
		return domain.Session{}, false
	}
	return sess, true
}

// Credentials returns the raw access token and role cookies used by the access gate.
func (s *CookieStore) Credentials(c *fiber.Ctx) (accessToken string, role string) {
	return s.read(c, CookieAccessToken), s.read(c, CookieUserRole)
}

// AccessToken returns the access token cookie, or "" when absent.
func (s *CookieStore) AccessToken(c *fiber.Ctx) string {
	return s.read(c, CookieAccessToken)
}

// Write stores all five session cookies. remember selects the persistent max-age.
func (s *CookieStore) Write(c *fiber.Ctx, sess domain.Session, remember bool) {
	maxAge := 0
	if remember {
		maxAge = s.opts.RememberMaxAge
	}
	s.write(c, CookieAccessToken, sess.AccessToken, maxAge)
	s.write(c, CookieRefreshToken, sess.RefreshToken, maxAge)
	s.write(c, CookieUserRole, string(sess.Role), maxAge)
	s.write(c, CookieUserEmail, sess.Email, maxAge)
	s.write(c, CookieUserName, sess.Name, maxAge)
}

// Clear deletes all five session cookies.
func (s *CookieStore) Clear(c *fiber.Ctx) {
	for _, name := range SessionCookies {
		s.delete(c, name)
	}
}

// LoadPending returns the pending setup tokens, if any.
func (s *CookieStore) LoadPending(c *fiber.Ctx) (domain.PendingSetup, bool) {
	pending := domain.PendingSetup{
		AccessToken:  s.read(c, CookieSetupAccessToken),
		RefreshToken: s.read(c, CookieSetupRefreshToken),
		Email:        s.read(c, CookieSetupUserEmail),
		Name:         s.read(c, CookieSetupUserName),
	}
	return pending, pending.Valid()
}

// WritePending stores pending setup tokens as session cookies.
func (s *CookieStore) WritePending(c *fiber.Ctx, pending domain.PendingSetup) {
	s.write(c, CookieSetupAccessToken, pending.AccessToken, 0)
	s.write(c, CookieSetupRefreshToken, pending.RefreshToken, 0)
	s.write(c, CookieSetupUserEmail, pending.Email, 0)
	s.write(c, CookieSetupUserName, pending.Name, 0)
}

// ClearPending deletes the pending setup cookies.
func (s *CookieStore) ClearPending(c *fiber.Ctx) {
	for _, name := range setupCookies {
		s.delete(c, name)
	}
}

func (s *CookieStore) read(c *fiber.Ctx, name string) string {
	raw := c.Cookies(name)
	if raw == "" {
		return ""
	}
	val, err := url.PathUnescape(raw)
	if err != nil {
		return ""
	}
	return val
}

func (s *CookieStore) write(c *fiber.Ctx, name, value string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:        name,
		Value:       encodeValue(value),
		Path:        "/",
		MaxAge:      maxAge,
		Secure:      s.opts.Secure,
		SameSite:    fiber.CookieSameSiteStrictMode,
		SessionOnly: maxAge == 0,
	})
}

// encodeValue percent-encodes like encodeURIComponent, so a space is %20 and a
// literal "+" survives a read.
func encodeValue(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

func (s *CookieStore) delete(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  expired,
		Secure:   s.opts.Secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
