package handlers

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

// CartFacade describes session cart operations required by handlers.
type CartFacade interface {
	Cart(ctx context.Context, sessionID string) (*model.CartSession, error)
	AddCartItem(ctx context.Context, sessionID string, in usecase.CartLineInput) (*model.CartSession, error)
	UpdateCartItem(ctx context.Context, sessionID string, key model.LineKey, quantity int) (*model.CartSession, error)
	RemoveCartItem(ctx context.Context, sessionID string, key model.LineKey) (*model.CartSession, error)
	ClearCart(ctx context.Context, sessionID string) (*model.CartSession, error)
	SyncCart(ctx context.Context, sessionID string, lines []usecase.CartLineInput) (*model.CartSession, error)
	MergeCart(ctx context.Context, sessionID, email string) (*model.CartSession, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	SubmitOrder(ctx context.Context, in usecase.SubmitOrderInput) (*usecase.SubmitResult, error)
	LookupOrder(ctx context.Context, identifier string) (*usecase.OrderLookup, error)
	CustomerOrders(ctx context.Context, email string, page, limit int) (*model.OrderList, error)
	ListOrders(ctx context.Context, filter model.OrderFilter) (*model.OrderList, error)
	QuoteShipping(ctx context.Context, in usecase.ShippingQuoteInput) (model.ShippingQuote, error)
	RetryProduction(ctx context.Context, orderID int64) (*model.Order, error)
}

// WebhookFacade applies verified provider notifications.
type WebhookFacade interface {
	ApplyPaymentEvent(ctx context.Context, evt model.PaymentEvent) (model.ReconcileOutcome, error)
	ApplyFulfillmentEvent(ctx context.Context, evt model.FulfillmentEvent) (model.ReconcileOutcome, error)
}

// CatalogFacade serves the product catalog.
type CatalogFacade interface {
	Products(ctx context.Context) ([]model.Product, bool, error)
	Product(ctx context.Context, id string) (*model.Product, bool, error)
	ProductsByCategory(ctx context.Context, category string) ([]model.Product, error)
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)
	InvalidateProducts(ctx context.Context) error
}

// BlogFacade serves and edits blog posts.
type BlogFacade interface {
	BlogPosts(ctx context.Context, page, limit int, category string) (*model.BlogList, error)
	BlogPost(ctx context.Context, identifier string) (*model.BlogPost, error)
	BlogCategories(ctx context.Context) ([]string, error)
	CreateBlogPost(ctx context.Context, in usecase.BlogPostInput) (*model.BlogPost, error)
	UpdateBlogPost(ctx context.Context, id string, update model.BlogPostUpdate) (*model.BlogPost, error)
	DeleteBlogPost(ctx context.Context, id string) error
}

// HealthFacade reports backing store reachability.
type HealthFacade interface {
	Ping(ctx context.Context) error
}

// StoreFacade aggregates the full set of operations used across handlers.
type StoreFacade interface {
	CartFacade
	OrderFacade
	WebhookFacade
	CatalogFacade
	BlogFacade
	HealthFacade
}
