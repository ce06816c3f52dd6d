package dto

// ProductForm is the create/update product form.
type ProductForm struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
	MarketPrice string `json:"market_price" form:"market_price"`
	Quantity    int    `json:"quantity" form:"quantity"`
}

// PageQuery selects a listing page.
type PageQuery struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}
