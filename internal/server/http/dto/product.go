package dto

import "github.com/polkiloo/storefront/internal/domain/model"

// ProductsResponse is a catalog listing.
type ProductsResponse struct {
	Success  bool            `json:"success"`
	Data     []model.Product `json:"data"`
	Cached   bool            `json:"cached"`
	Count    int             `json:"count"`
	Category string          `json:"category,omitempty"`
	Query    string          `json:"query,omitempty"`
}

// ProductResponse is a single product.
type ProductResponse struct {
	Success bool           `json:"success"`
	Data    *model.Product `json:"data"`
	Cached  bool           `json:"cached"`
}
