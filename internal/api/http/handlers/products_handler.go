package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/retailer-dashboard/internal/api/dto"
	"github.com/spec-kit/retailer-dashboard/internal/apiclient"
	"github.com/spec-kit/retailer-dashboard/internal/domain"
	"github.com/spec-kit/retailer-dashboard/internal/service"
	"github.com/spec-kit/retailer-dashboard/internal/session"
	apperrors "github.com/spec-kit/retailer-dashboard/pkg/util/errorutil"
)

// ProductsHandler exposes catalog management.
type ProductsHandler struct {
	products *service.ProductService
	cookies  *session.CookieStore
}

// NewProductsHandler constructs handler.
func NewProductsHandler(products *service.ProductService, cookies *session.CookieStore) *ProductsHandler {
	return &ProductsHandler{products: products, cookies: cookies}
}

// List GET /api/products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	page, err := h.products.List(c.UserContext(), session.FromCtx(c, h.cookies), parsePageQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": page})
}

// Get GET /api/products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	product, err := h.products.Get(c.UserContext(), session.FromCtx(c, h.cookies), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": product})
}

// Create POST /api/products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	input, closeImage, err := parseProductForm(c)
	if err != nil {
		return err
	}
	defer closeImage()

	product, err := h.products.Create(c.UserContext(), session.FromCtx(c, h.cookies), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ActionResponse{Data: product, Message: "Product created successfully"})
}

// Update PATCH /api/products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	input, closeImage, err := parseProductForm(c)
	if err != nil {
		return err
	}
	defer closeImage()

	product, err := h.products.Update(c.UserContext(), session.FromCtx(c, h.cookies), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.ActionResponse{Data: product, Message: "Product updated successfully"})
}

// Delete DELETE /api/products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	if err := h.products.Delete(c.UserContext(), session.FromCtx(c, h.cookies), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.ActionResponse{Message: "Product deleted successfully"})
}

func parsePageQuery(c *fiber.Ctx) domain.PageRequest {
	var q dto.PageQuery
	_ = c.QueryParser(&q)
	if q.Page <= 0 {
		q.Page = apiclient.DefaultPage
	}
	if q.Limit <= 0 {
		q.Limit = apiclient.DefaultLimit
	}
	return domain.PageRequest{Page: q.Page, Limit: q.Limit}
}

func parseProductForm(c *fiber.Ctx) (domain.ProductInput, func(), error) {
	var req dto.ProductForm
	if err := c.BodyParser(&req); err != nil {
		return domain.ProductInput{}, func() {}, apperrors.NewValidationError("invalid payload", nil)
	}
	image, closeImage, err := formUpload(c, "image")
	if err != nil {
		return domain.ProductInput{}, closeImage, err
	}
	return domain.ProductInput{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		MarketPrice: strings.TrimSpace(req.MarketPrice),
		Quantity:    req.Quantity,
		Image:       image,
	}, closeImage, nil
}
