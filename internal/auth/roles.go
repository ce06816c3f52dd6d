package auth

import "github.com/spec-kit/retailer-dashboard/internal/domain"

// fallbackDefaultPath is used when a role has no rules of its own.
const fallbackDefaultPath = "/dashboard"

// Roles lists every role with access rules.
var Roles = []domain.Role{domain.RoleRetailer}

// RoleRules describes where a role may go and where it lands after sign-in.
type RoleRules struct {
	AllowedPrefixes []string
	DefaultPath     string
}

// Lookup returns the access rules of a role. Adding a role is a new case here.
func Lookup(role domain.Role) (RoleRules, bool) {
	switch role {
	case domain.RoleRetailer:
		return RoleRules{
			AllowedPrefixes: []string{"/dashboard", "/orders", "/payments", "/products", "/stock"},
			DefaultPath:     "/dashboard",
		}, true
	default:
		return RoleRules{}, false
	}
}

// DefaultPath returns the landing path for a role.
func DefaultPath(role domain.Role) string {
	if rules, ok := Lookup(role); ok {
		return rules.DefaultPath
	}
	return fallbackDefaultPath
}

// Supported reports whether the dashboard admits the role.
func Supported(role domain.Role) bool {
	return role == domain.RoleRetailer
}

// HasRoleAccess reports whether role may open path: the role must be supported and the
// path must be universal-protected or inside the role's prefixes.
func HasRoleAccess(path string, role domain.Role) bool {
	if !Supported(role) {
		return false
	}
	if MatchesRoute(path, universalProtectedRoutes) {
		return true
	}
	rules, ok := Lookup(role)
	return ok && MatchesRoute(path, rules.AllowedPrefixes)
}
