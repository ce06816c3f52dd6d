package session

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/retailer-dashboard/internal/domain"
)

const contextKey = "session_context"

// Context is the session bound to a single request. It is bootstrapped from cookies
// and is the only handle through which consumers read or replace the session.
type Context struct {
	c       *fiber.Ctx
	cookies *CookieStore
	memory  *MemoryStore
	cleared bool
}

// NewContext bootstraps a request session from cookies.
func NewContext(c *fiber.Ctx, cookies *CookieStore) *Context {
	sc := &Context{c: c, cookies: cookies, memory: NewMemoryStore()}
	if sess, ok := cookies.Load(c); ok {
		sc.memory.Set(sess)
	}
	return sc
}

// Middleware attaches a Context to every request.
func Middleware(cookies *CookieStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(contextKey, NewContext(c, cookies))
		return c.Next()
	}
}

// FromCtx returns the request session, creating one if the middleware did not run.
func FromCtx(c *fiber.Ctx, cookies *CookieStore) *Context {
	if sc, ok := c.Locals(contextKey).(*Context); ok {
		return sc
	}
	sc := NewContext(c, cookies)
	c.Locals(contextKey, sc)
	return sc
}

// AccessToken resolves the bearer token: memory first, then the cookie.
func (s *Context) AccessToken() string {
	if sess, ok := s.memory.Get(); ok {
		return sess.AccessToken
	}
	if s.cleared {
		return ""
	}
	return s.cookies.AccessToken(s.c)
}

// Session returns the current session, if complete.
func (s *Context) Session() (domain.Session, bool) {
	return s.memory.Get()
}

// Authenticated reports whether a complete session is present.
func (s *Context) Authenticated() bool {
	_, ok := s.memory.Get()
	return ok
}

// Replace writes a whole new session to memory and cookies.
func (s *Context) Replace(sess domain.Session, remember bool) {
	s.memory.Set(sess)
	s.cleared = false
	s.cookies.Write(s.c, sess, remember)
}

// Mirror replaces only the in-memory record, leaving cookies untouched. The
// memory store lives for one request, so the change is not seen by later ones.
func (s *Context) Mirror(sess domain.Session) {
	s.memory.Set(sess)
}

// Clear destroys the session in memory and deletes all session cookies.
func (s *Context) Clear() {
	s.memory.Clear()
	s.cleared = true
	s.cookies.Clear(s.c)
}

// Pending returns pending setup tokens.
func (s *Context) Pending() (domain.PendingSetup, bool) {
	return s.cookies.LoadPending(s.c)
}

// StorePending records pending setup tokens.
func (s *Context) StorePending(p domain.PendingSetup) {
	s.cookies.WritePending(s.c, p)
}

// ClearPending removes pending setup tokens.
func (s *Context) ClearPending() {
	s.cookies.ClearPending(s.c)
}
