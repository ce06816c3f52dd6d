package domain

// RouteClass is the access classification of a request path.
type RouteClass int

const (
	// RouteBypass paths skip the access gate entirely (assets, api passthrough).
	RouteBypass RouteClass = iota
	// RouteAuthOnly paths are public but redirect authenticated users away.
	RouteAuthOnly
	// RoutePublic paths are served to everyone.
	RoutePublic
	// RouteUniversalProtected paths are open to any authenticated retailer.
	RouteUniversalProtected
	// RouteRoleScoped paths belong to a role's allowed prefixes.
	RouteRoleScoped
	// RouteUnknownProtected paths match no table and are treated as protected.
	RouteUnknownProtected
)

func (c RouteClass) String() string {
	switch c {
	case RouteBypass:
		return "bypass"
	case RouteAuthOnly:
		return "auth_only"
	case RoutePublic:
		return "public"
	case RouteUniversalProtected:
		return "universal_protected"
	case RouteRoleScoped:
		return "role_scoped"
	case RouteUnknownProtected:
		return "unknown_protected"
	default:
		return "unknown"
	}
}

// Public reports whether the class is served without authentication.
func (c RouteClass) Public() bool {
	return c == RouteAuthOnly || c == RoutePublic
}
