package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spec-kit/retailer-dashboard/internal/cache"
	"github.com/spec-kit/retailer-dashboard/internal/domain"
)

// Listing defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 12
)

// Currency is the display currency of product prices.
const Currency = "₹"

// flexString decodes a JSON string, number or null into its text.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

func (f flexString) float() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(f)), 64)
	if err != nil {
		return 0
	}
	return v
}

// productRecord is a product as the upstream API returns it.
type productRecord struct {
	ID            flexString `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	ImageURL      string     `json:"image_url"`
	MarketPrice   flexString `json:"market_price"`
	Quantity      int        `json:"quantity"`
	StockStatus   string     `json:"stock_status"`
	RetailerName  string     `json:"retailer_name"`
	AverageRating flexString `json:"average_rating"`
	TotalReviews  int        `json:"total_reviews"`
	CreatedAt     string     `json:"created_at"`
	UpdatedAt     string     `json:"updated_at"`
}

type productList struct {
	Products   []productRecord `json:"products"`
	TotalCount int             `json:"total_count"`
}

// toProduct maps an upstream record to the dashboard shape.
func (c *Client) toProduct(r productRecord) domain.Product {
	return domain.Product{
		ID:               string(r.ID),
		Title:            r.Name,
		Price:            r.MarketPrice.float(),
		Currency:         Currency,
		Image:            c.imageURL(r.ImageURL),
		Stock:            r.Quantity,
		Rating:           r.AverageRating.float(),
		ReviewsCount:     r.TotalReviews,
		Description:      r.Description,
		AvailableProduct: r.Quantity,
	}
}

// imageURL makes relative media paths absolute against the media base.
func (c *Client) imageURL(p string) string {
	p = strings.TrimSpace(p)
	switch {
	case p == "":
		return ""
	case strings.HasPrefix(p, "http://"), strings.HasPrefix(p, "https://"), strings.HasPrefix(p, "data:"):
		return p
	default:
		return c.mediaBase + ensureLeadingSlash(p)
	}
}

// ListProducts returns one page of the retailer's products.
func (s *Session) ListProducts(ctx context.Context, page domain.PageRequest) (domain.ProductPage, error) {
	if page.Page <= 0 {
		page.Page = DefaultPage
	}
	if page.Limit <= 0 {
		page.Limit = DefaultLimit
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page.Page))
	query.Set("limit", strconv.Itoa(page.Limit))

	return cache.Fetch(ctx, s.client.cache, s.scope(), cache.Query[domain.ProductPage]{
		Endpoint: "listProducts",
		Args:     query.Encode(),
		Fetch: func(ctx context.Context) (domain.ProductPage, error) {
			var list productList
			if _, err := s.decode(ctx, request{op: "listProducts", method: http.MethodGet, path: "/retailer/products/", query: query}, &list, true); err != nil {
				return domain.ProductPage{}, err
			}
			out := domain.ProductPage{Products: make([]domain.Product, 0, len(list.Products)), TotalCount: list.TotalCount}
			for _, r := range list.Products {
				out.Products = append(out.Products, s.client.toProduct(r))
			}
			return out, nil
		},
		Provides: func(p domain.ProductPage) []cache.Tag {
			tags := make([]cache.Tag, 0, len(p.Products)+1)
			for _, product := range p.Products {
				tags = append(tags, cache.ResourceTag(TagProduct, product.ID))
			}
			return append(tags, cache.ListTag(TagProduct))
		},
	})
}

// GetProduct returns a single product.
func (s *Session) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return cache.Fetch(ctx, s.client.cache, s.scope(), cache.Query[domain.Product]{
		Endpoint: "getProduct",
		Args:     id,
		Fetch: func(ctx context.Context) (domain.Product, error) {
			var r productRecord
			if _, err := s.decode(ctx, request{op: "getProduct", method: http.MethodGet, path: productPath(id)}, &r, true); err != nil {
				return domain.Product{}, err
			}
			return s.client.toProduct(r), nil
		},
		Provides: func(domain.Product) []cache.Tag {
			return []cache.Tag{cache.ResourceTag(TagProduct, id)}
		},
	})
}

// CreateProduct adds a product.
func (s *Session) CreateProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	var r productRecord
	env, err := s.decode(ctx, request{op: "createProduct", method: http.MethodPost, path: "/retailer/products/create/", form: productForm(in)}, &r, false)
	if err != nil {
		return domain.Product{}, err
	}
	s.invalidate(ctx, "createProduct", cache.ListTag(TagProduct))
	if !env.hasData() {
		return domain.Product{}, nil
	}
	return s.client.toProduct(r), nil
}

// UpdateProduct replaces the fields of product id.
func (s *Session) UpdateProduct(ctx context.Context, id string, in domain.ProductInput) (domain.Product, error) {
	var r productRecord
	env, err := s.decode(ctx, request{op: "updateProduct", method: http.MethodPatch, path: productPath(id), form: productForm(in)}, &r, false)
	if err != nil {
		return domain.Product{}, err
	}
	s.invalidate(ctx, "updateProduct", cache.ResourceTag(TagProduct, id), cache.ListTag(TagProduct))
	if !env.hasData() {
		return domain.Product{}, nil
	}
	return s.client.toProduct(r), nil
}

// DeleteProduct removes product id.
func (s *Session) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.do(ctx, request{op: "deleteProduct", method: http.MethodDelete, path: productPath(id)}); err != nil {
		return err
	}
	s.invalidate(ctx, "deleteProduct", cache.ResourceTag(TagProduct, id), cache.ListTag(TagProduct))
	return nil
}

func productPath(id string) string {
	return "/retailer/products/" + url.PathEscape(id) + "/"
}

func productForm(in domain.ProductInput) *form {
	return newForm().
		set("name", in.Name).
		set("description", in.Description).
		set("market_price", in.MarketPrice).
		set("quantity", strconv.Itoa(in.Quantity)).
		file("image", in.Image)
}
