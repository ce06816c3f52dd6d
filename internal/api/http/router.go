package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/retailer-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/retailer-dashboard/internal/auth"
	"github.com/spec-kit/retailer-dashboard/internal/session"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Pages    *handlers.PagesHandler
	Auth     *handlers.AuthHandler
	Profile  *handlers.ProfileHandler
	Products *handlers.ProductsHandler
	Gate     *auth.Gate
	Cookies  *session.CookieStore
}

// RegisterRoutes wires HTTP routes. Every request gets a session context and passes
// the access gate; the gate itself lets health and /api/ paths through.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(session.Middleware(cfg.Cookies))
	app.Use(cfg.Gate.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/api/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/verify-otp", cfg.Auth.VerifyOTP)
	authGroup.Post("/resend-otp", cfg.Auth.ResendOTP)
	authGroup.Post("/forgot-password", cfg.Auth.ForgotPassword)
	authGroup.Post("/reset-password", cfg.Auth.ResetPassword)
	authGroup.Post("/profile-setup", cfg.Auth.ProfileSetup)
	authGroup.Post("/logout", cfg.Auth.Logout)

	requireSession := auth.RequireSession(cfg.Cookies)

	profile := app.Group("/api/profile", requireSession)
	profile.Get("/", cfg.Profile.Get)
	profile.Patch("/", cfg.Profile.Update)

	products := app.Group("/api/products", requireSession)
	products.Get("/", cfg.Products.List)
	products.Post("/", cfg.Products.Create)
	products.Get("/:id", cfg.Products.Get)
	products.Patch("/:id", cfg.Products.Update)
	products.Delete("/:id", cfg.Products.Delete)

	registerPages(app, cfg.Pages)
}

func registerPages(app *fiber.App, pages *handlers.PagesHandler) {
	for path, name := range map[string]string{
		"/":                "home",
		"/signup":          "signup",
		"/forgot-password": "forgot-password",
		"/reset-password":  "reset-password",
		"/verify-email":    "verify-email",
		"/reset-success":   "reset-success",
		"/success":         "success",
		"/terms":           "terms",
		"/privacy-policy":  "privacy-policy",
		"/about-us":        "about-us",
		"/orders":          "orders",
		"/payments":        "payments",
		"/stock":           "stock",
		"/settings":        "settings",
		"/notifications":   "notifications",
	} {
		app.Get(path, pages.Static(name))
	}

	app.Get("/signin", pages.SignIn)
	app.Get("/verify-otp", pages.VerifyOTP)
	app.Get("/profile-setup", pages.ProfileSetup)
	app.Get("/dashboard", pages.Dashboard)
	app.Get("/orders/:id", pages.Order)
	app.Get("/products", pages.Products)
	app.Get("/products/:id", pages.Product)
	app.Get("/profile", pages.Profile)
}
