package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

// CartItemRequest is a line sent by the client.
type CartItemRequest struct {
	ProductID    FlexibleID       `json:"productId"`
	ProductIDAlt FlexibleID       `json:"product_id"`
	VariantID    FlexibleID       `json:"variantId"`
	VariantIDAlt FlexibleID       `json:"variant_id"`
	Title        string           `json:"title"`
	Variant      string           `json:"variant"`
	Image        string           `json:"image"`
	Price        *decimal.Decimal `json:"price"`
	Quantity     int              `json:"quantity"`
}

// Input converts the request into a cart line.
func (r CartItemRequest) Input() usecase.CartLineInput {
	return usecase.CartLineInput{
		ProductID:    firstOf(r.ProductID.String(), r.ProductIDAlt.String()),
		VariantID:    firstOf(r.VariantID.String(), r.VariantIDAlt.String()),
		Title:        r.Title,
		VariantLabel: r.Variant,
		Image:        r.Image,
		Price:        r.Price,
		Quantity:     r.Quantity,
	}
}

// UpdateQuantityRequest replaces a line quantity.
type UpdateQuantityRequest struct {
	VariantID FlexibleID `json:"variantId"`
	Quantity  *int       `json:"quantity"`
}

// SyncCartRequest carries a client held cart.
type SyncCartRequest struct {
	Items []CartItemRequest `json:"items"`
}

// Inputs converts every line.
func (r SyncCartRequest) Inputs() []usecase.CartLineInput {
	out := make([]usecase.CartLineInput, 0, len(r.Items))
	for _, item := range r.Items {
		out = append(out, item.Input())
	}
	return out
}

// MergeCartRequest attributes the session to a customer.
type MergeCartRequest struct {
	Email string `json:"email"`
}

// CartItem is a line in a cart response.
type CartItem struct {
	ProductID string    `json:"productId"`
	VariantID string    `json:"variantId,omitempty"`
	Title     string    `json:"title"`
	Variant   string    `json:"variant,omitempty"`
	Image     string    `json:"image,omitempty"`
	Price     Amount    `json:"price"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// CartResponse describes a cart session.
type CartResponse struct {
	SessionID     string     `json:"session_id"`
	CustomerEmail string     `json:"customer_email,omitempty"`
	Items         []CartItem `json:"items"`
	ItemCount     int        `json:"item_count"`
	Subtotal      Amount     `json:"subtotal"`
	ExpiresAt     time.Time  `json:"expires_at"`
}

// NewCartResponse converts a cart session.
func NewCartResponse(cart *model.CartSession) CartResponse {
	items := make([]CartItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, CartItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Title:     line.Title,
			Variant:   line.VariantLabel,
			Image:     line.Image,
			Price:     Amount(line.Price),
			Quantity:  line.Quantity,
			AddedAt:   line.AddedAt,
		})
	}
	return CartResponse{
		SessionID:     cart.ID,
		CustomerEmail: cart.CustomerEmail,
		Items:         items,
		ItemCount:     cart.ItemCount(),
		Subtotal:      Amount(cart.Subtotal()),
		ExpiresAt:     cart.ExpiresAt,
	}
}
