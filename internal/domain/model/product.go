package model

import "github.com/shopspring/decimal"

// ProductImage is a catalog image reference.
type ProductImage struct {
	Src        string  `json:"src"`
	VariantIDs []int64 `json:"variant_ids,omitempty"`
	Position   string  `json:"position,omitempty"`
	IsDefault  bool    `json:"is_default,omitempty"`
}

// ProductVariant is a purchasable variant with its price in minor units.
type ProductVariant struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	SKU         string `json:"sku,omitempty"`
	Price       int64  `json:"price"`
	IsEnabled   bool   `json:"is_enabled"`
	IsAvailable bool   `json:"is_available"`
}

// Product is the storefront view of a catalog entry. It is cached as JSON.
type Product struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Images      []ProductImage   `json:"images"`
	Variants    []ProductVariant `json:"variants"`
	Tags        []string         `json:"tags"`
	Price       decimal.Decimal  `json:"price"`
	Category    string           `json:"category"`
	Featured    bool             `json:"featured"`
	Visible     bool             `json:"visible"`
	CreatedAt   string           `json:"createdAt,omitempty"`
}
