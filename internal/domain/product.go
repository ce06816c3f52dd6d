package domain

// Product is the dashboard representation of a retailer product.
type Product struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Price            float64 `json:"price"`
	Currency         string  `json:"currency"`
	Image            string  `json:"image"`
	Stock            int     `json:"stock"`
	Rating           float64 `json:"rating"`
	ReviewsCount     int     `json:"reviewsCount"`
	Description      string  `json:"description,omitempty"`
	Category         string  `json:"category,omitempty"`
	AvailableProduct int     `json:"availableProduct"`
}

// ProductPage is one page of the product listing.
type ProductPage struct {
	Products   []Product `json:"products"`
	TotalCount int       `json:"totalCount"`
}

// ProductInput carries the fields of a product create or update.
type ProductInput struct {
	Name        string
	Description string
	MarketPrice string
	Quantity    int
	Image       *Upload
}

// PageRequest selects a page of a listing.
type PageRequest struct {
	Page  int
	Limit int
}
