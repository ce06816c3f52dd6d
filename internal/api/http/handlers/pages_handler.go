package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/retailer-dashboard/internal/api/dto"
	"github.com/spec-kit/retailer-dashboard/internal/service"
	"github.com/spec-kit/retailer-dashboard/internal/session"
)

// PagesHandler renders the view model of each dashboard page. The access gate has
// already decided whether the request may see the page.
type PagesHandler struct {
	profiles *service.ProfileService
	products *service.ProductService
	cookies  *session.CookieStore
}

// NewPagesHandler constructs handler.
func NewPagesHandler(profiles *service.ProfileService, products *service.ProductService, cookies *session.CookieStore) *PagesHandler {
	return &PagesHandler{profiles: profiles, products: products, cookies: cookies}
}

// Static serves a page without data.
func (h *PagesHandler) Static(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(dto.PageResponse{Page: name})
	}
}

// SignIn carries the post-login redirect target.
func (h *PagesHandler) SignIn(c *fiber.Ctx) error {
	return c.JSON(dto.PageResponse{Page: "signin", Data: fiber.Map{"redirect": c.Query("redirect")}})
}

// VerifyOTP carries the flow the code belongs to.
func (h *PagesHandler) VerifyOTP(c *fiber.Ctx) error {
	flow := c.Query("flow")
	if flow != service.FlowReset {
		flow = service.FlowSignup
	}
	return c.JSON(dto.PageResponse{Page: "verify-otp", Data: fiber.Map{"flow": flow}})
}

// ProfileSetup reports whether verification left setup tokens behind.
func (h *PagesHandler) ProfileSetup(c *fiber.Ctx) error {
	pending, ok := session.FromCtx(c, h.cookies).Pending()
	return c.JSON(dto.PageResponse{Page: "profile-setup", Data: fiber.Map{
		"verified": ok,
		"email":    pending.Email,
	}})
}

// Dashboard greets the signed-in retailer.
func (h *PagesHandler) Dashboard(c *fiber.Ctx) error {
	record, _ := session.FromCtx(c, h.cookies).Session()
	return c.JSON(dto.PageResponse{Page: "dashboard", Data: fiber.Map{
		"name":  record.Name,
		"email": record.Email,
		"role":  record.Role,
	}})
}

// Order carries the order id from the path.
func (h *PagesHandler) Order(c *fiber.Ctx) error {
	return c.JSON(dto.PageResponse{Page: "order", Data: fiber.Map{"id": c.Params("id")}})
}

// Products renders one page of the catalog.
func (h *PagesHandler) Products(c *fiber.Ctx) error {
	req := parsePageQuery(c)
	page, err := h.products.List(c.UserContext(), session.FromCtx(c, h.cookies), req)
	if err != nil {
		return err
	}
	return c.JSON(dto.PageResponse{Page: "products", Data: fiber.Map{
		"products":   page.Products,
		"totalCount": page.TotalCount,
		"page":       req.Page,
		"limit":      req.Limit,
	}})
}

// Product renders a product detail page.
func (h *PagesHandler) Product(c *fiber.Ctx) error {
	product, err := h.products.Get(c.UserContext(), session.FromCtx(c, h.cookies), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.PageResponse{Page: "product", Data: product})
}

// Profile renders the profile page.
func (h *PagesHandler) Profile(c *fiber.Ctx) error {
	profile, err := h.profiles.Get(c.UserContext(), session.FromCtx(c, h.cookies))
	if err != nil {
		return err
	}
	return c.JSON(dto.PageResponse{Page: "profile", Data: profile})
}
