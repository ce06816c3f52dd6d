package auth

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/retailer-dashboard/internal/events"
	"github.com/spec-kit/retailer-dashboard/internal/observability"
	"github.com/spec-kit/retailer-dashboard/internal/session"
	apperrors "github.com/spec-kit/retailer-dashboard/pkg/util/errorutil"
)

// SecurityHeaders are attached to every response the gate lets through.
var SecurityHeaders = map[string]string{
	"X-Frame-Options":        "DENY",
	"X-Content-Type-Options": "nosniff",
	"X-XSS-Protection":       "1; mode=block",
	"Referrer-Policy":        "strict-origin-when-cross-origin",
}

// Gate intercepts navigation requests and allows, redirects or denies them.
type Gate struct {
	policy     *Policy
	cookies    *session.CookieStore
	logger     *zap.Logger
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
}

// NewGate constructs the access gate middleware.
func NewGate(policy *Policy, cookies *session.CookieStore, logger *zap.Logger, metrics *observability.Metrics, dispatcher events.Dispatcher) *Gate {
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{policy: policy, cookies: cookies, logger: logger, metrics: metrics, dispatcher: dispatcher}
}

// Handle applies the policy decision to the request.
func (g *Gate) Handle(c *fiber.Ctx) error {
	path := c.Path()
	token, role := g.cookies.Credentials(c)
	decision := g.policy.Evaluate(path, Credentials{AccessToken: token, Role: role})

	g.metrics.RecordGateDecision(decision.Kind.String())
	if decision.Kind != DecisionBypass {
		g.logger.Debug("access gate",
			zap.String("path", path),
			zap.String("decision", decision.Kind.String()),
			zap.String("route_class", decision.Class.String()),
			zap.Bool("has_token", token != ""),
			zap.String("role", role),
		)
	}

	switch decision.Kind {
	case DecisionBypass:
		return c.Next()
	case DecisionAllow:
		ApplySecurityHeaders(c)
		return c.Next()
	case DecisionRedirectDefault, DecisionRedirectSignIn:
		return c.Redirect(decision.Location, fiber.StatusTemporaryRedirect)
	case DecisionForbidden:
		g.cookies.Clear(c)
		g.logger.Warn("access forbidden, session cleared",
			zap.String("path", path),
			zap.String("role", role),
		)
		payload := events.AccessDeniedPayload{
			Path:       path,
			Role:       role,
			RouteClass: decision.Class.String(),
			RequestID:  observability.RequestID(c),
			RemoteIP:   c.IP(),
			UserAgent:  c.Get(fiber.HeaderUserAgent),
		}
		if err := g.dispatcher.Publish(c.UserContext(), events.New(events.EventAccessDenied, payload)); err != nil {
			g.logger.Warn("access denied event handlers failed", zap.Error(err))
		}
		return c.Redirect(decision.Location, fiber.StatusTemporaryRedirect)
	default:
		return c.Redirect(SignInPath, fiber.StatusTemporaryRedirect)
	}
}

// ApplySecurityHeaders sets the fixed security headers. Repeating it leaves the same values.
func ApplySecurityHeaders(c *fiber.Ctx) {
	for name, value := range SecurityHeaders {
		c.Set(name, value)
	}
}

// RequireSession guards api routes that need a complete session.
func RequireSession(cookies *session.CookieStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !session.FromCtx(c, cookies).Authenticated() {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
