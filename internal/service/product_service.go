package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/spec-kit/retailer-dashboard/internal/apiclient"
	"github.com/spec-kit/retailer-dashboard/internal/domain"
	"github.com/spec-kit/retailer-dashboard/pkg/util/errorutil"
)

// ProductService manages the retailer catalog.
type ProductService struct {
	api *apiclient.Client
}

// NewProductService builds the service.
func NewProductService(api *apiclient.Client) *ProductService {
	return &ProductService{api: api}
}

// List returns a page of products.
func (s *ProductService) List(ctx context.Context, tokens apiclient.TokenSource, page domain.PageRequest) (domain.ProductPage, error) {
	return s.api.WithTokens(tokens).ListProducts(ctx, page)
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, tokens apiclient.TokenSource, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, errorutil.NewValidationError("product id is required", nil)
	}
	return s.api.WithTokens(tokens).GetProduct(ctx, id)
}

// Create adds a product.
func (s *ProductService) Create(ctx context.Context, tokens apiclient.TokenSource, in domain.ProductInput) (domain.Product, error) {
	if err := validateProduct(in); err != nil {
		return domain.Product{}, err
	}
	return s.api.WithTokens(tokens).CreateProduct(ctx, in)
}

// Update replaces a product's fields.
func (s *ProductService) Update(ctx context.Context, tokens apiclient.TokenSource, id string, in domain.ProductInput) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, errorutil.NewValidationError("product id is required", nil)
	}
	if err := validateProduct(in); err != nil {
		return domain.Product{}, err
	}
	return s.api.WithTokens(tokens).UpdateProduct(ctx, id, in)
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, tokens apiclient.TokenSource, id string) error {
	if strings.TrimSpace(id) == "" {
		return errorutil.NewValidationError("product id is required", nil)
	}
	return s.api.WithTokens(tokens).DeleteProduct(ctx, id)
}

func validateProduct(in domain.ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return errorutil.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	if price, err := strconv.ParseFloat(strings.TrimSpace(in.MarketPrice), 64); err != nil || price < 0 {
		return errorutil.NewValidationError("market price must be a non-negative number", map[string]any{"field": "market_price"})
	}
	if in.Quantity < 0 {
		return errorutil.NewValidationError("quantity cannot be negative", map[string]any{"field": "quantity"})
	}
	if in.Image != nil {
		return ValidateImage(in.Image)
	}
	return nil
}
