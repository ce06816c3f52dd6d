package auth

import (
	"net/url"
	"time"

	"github.com/spec-kit/retailer-dashboard/internal/domain"
)

// SignInPath is where unauthenticated and forbidden requests are sent.
const SignInPath = "/signin"

// DecisionKind is the outcome of evaluating a request.
type DecisionKind int

const (
	DecisionBypass DecisionKind = iota
	DecisionAllow
	DecisionRedirectDefault
	DecisionRedirectSignIn
	DecisionForbidden
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionBypass:
		return "bypass"
	case DecisionAllow:
		return "allow"
	case DecisionRedirectDefault:
		return "redirect_default"
	case DecisionRedirectSignIn:
		return "redirect_signin"
	case DecisionForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decision tells the gate what to do with a request.
type Decision struct {
	Kind     DecisionKind
	Class    domain.RouteClass
	Location string
}

// Credentials are the cookie values the gate looks at.
type Credentials struct {
	AccessToken string
	Role        string
}

// Policy evaluates requests against the static route tables.
type Policy struct {
	bypass              *Bypass
	rejectExpiredTokens bool
	now                 func() time.Time
}

// PolicyOption customizes a Policy.
type PolicyOption func(*Policy)

// WithStaticExtensions replaces the dot heuristic with an extension allowlist.
func WithStaticExtensions(exts []string) PolicyOption {
	return func(p *Policy) {
		p.bypass = NewBypass(exts)
	}
}

// WithExpiredTokenRejection treats JWT-shaped tokens past their expiry as absent.
func WithExpiredTokenRejection(enabled bool) PolicyOption {
	return func(p *Policy) {
		p.rejectExpiredTokens = enabled
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) PolicyOption {
	return func(p *Policy) {
		p.now = now
	}
}

// NewPolicy builds a Policy.
func NewPolicy(opts ...PolicyOption) *Policy {
	p := &Policy{bypass: NewBypass(nil), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Authenticated reports whether creds carry a valid-looking token.
func (p *Policy) Authenticated(creds Credentials) bool {
	if creds.AccessToken == "" {
		return false
	}
	if !p.rejectExpiredTokens {
		return true
	}
	info, err := InspectToken(creds.AccessToken)
	if err != nil {
		return false
	}
	return !info.Expired(p.now())
}

// Evaluate decides how to handle a request for path p. It never fails: missing or
// malformed credentials end in a redirect.
func (p *Policy) Evaluate(path string, creds Credentials) Decision {
	class := Classify(path, p.bypass)
	if class == domain.RouteBypass {
		return Decision{Kind: DecisionBypass, Class: class}
	}

	authenticated := p.Authenticated(creds)
	role := domain.Role(creds.Role)

	if class.Public() {
		if authenticated && (class == domain.RouteAuthOnly || path == "/") {
			if role == "" {
				role = domain.RoleRetailer
			}
			return Decision{Kind: DecisionRedirectDefault, Class: class, Location: DefaultPath(role)}
		}
		return Decision{Kind: DecisionAllow, Class: class}
	}

	if !authenticated {
		return Decision{Kind: DecisionRedirectSignIn, Class: class, Location: SignInRedirect(path)}
	}

	if !Supported(role) || !HasRoleAccess(path, role) {
		return Decision{Kind: DecisionForbidden, Class: class, Location: SignInPath}
	}

	return Decision{Kind: DecisionAllow, Class: class}
}

// SignInRedirect builds the sign-in URL carrying the originally requested path.
func SignInRedirect(path string) string {
	q := url.Values{}
	q.Set("redirect", path)
	return SignInPath + "?" + q.Encode()
}
