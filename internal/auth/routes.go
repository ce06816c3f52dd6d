package auth

import (
	"path"
	"strings"

	"github.com/spec-kit/retailer-dashboard/internal/domain"
)

var (
	publicRoutes = []string{
		"/",
		"/signin",
		"/signup",
		"/forgot-password",
		"/reset-password",
		"/verify-email",
		"/verify-otp",
		"/reset-success",
		"/success",
		"/terms",
		"/privacy-policy",
		"/about-us",
	}

	// authRoutes redirect authenticated users to their landing path.
	authRoutes = []string{
		"/signin",
		"/signup",
		"/forgot-password",
		"/reset-password",
	}

	universalProtectedRoutes = []string{
		"/notifications",
		"/settings",
		"/profile",
		"/privacy-policy",
		"/terms",
		"/about-us",
	}

	bypassPrefixes = []string{"/_next/", "/api/", "/static/"}
	bypassExact    = []string{"/favicon.ico", "/manifest.json", "/sw.js", "/~offline", "/health/live", "/health/ready"}
)

// MatchesRoute reports whether p equals a route or sits below it on a "/" boundary,
// so "/products/42" matches "/products" but "/products-export" does not.
func MatchesRoute(p string, routes []string) bool {
	for _, route := range routes {
		if p == route || strings.HasPrefix(p, route+"/") {
			return true
		}
	}
	return false
}

// Bypass decides which paths skip the gate.
type Bypass struct {
	extensions map[string]struct{}
}

// NewBypass builds the bypass matcher. With no extensions, any path containing a dot
// is treated as a static asset; otherwise only the listed extensions are.
func NewBypass(extensions []string) *Bypass {
	b := &Bypass{}
	if len(extensions) == 0 {
		return b
	}
	b.extensions = make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		b.extensions[ext] = struct{}{}
	}
	return b
}

// Match reports whether p bypasses the gate.
func (b *Bypass) Match(p string) bool {
	for _, prefix := range bypassPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	for _, exact := range bypassExact {
		if p == exact {
			return true
		}
	}
	return b.staticAsset(p)
}

func (b *Bypass) staticAsset(p string) bool {
	if b == nil || b.extensions == nil {
		return strings.Contains(p, ".")
	}
	_, ok := b.extensions[strings.ToLower(path.Ext(p))]
	return ok
}

// Classify maps a path to its route class. Public entries win over universal-protected ones.
func Classify(p string, bypass *Bypass) domain.RouteClass {
	switch {
	case bypass.Match(p):
		return domain.RouteBypass
	case MatchesRoute(p, authRoutes):
		return domain.RouteAuthOnly
	case MatchesRoute(p, publicRoutes):
		return domain.RoutePublic
	case MatchesRoute(p, universalProtectedRoutes):
		return domain.RouteUniversalProtected
	}
	for _, role := range Roles {
		if rules, ok := Lookup(role); ok && MatchesRoute(p, rules.AllowedPrefixes) {
			return domain.RouteRoleScoped
		}
	}
	return domain.RouteUnknownProtected
}
