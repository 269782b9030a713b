package usecase

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// FulfillmentGateway is the subset of the print provider API used for orders.
type FulfillmentGateway interface {
	CreateOrder(ctx context.Context, req model.RemoteOrderRequest) (*model.RemoteOrder, error)
	SendToProduction(ctx context.Context, remoteOrderID string) error
	ShippingQuote(ctx context.Context, req model.ShippingQuoteRequest) (model.ShippingQuote, error)
	GetOrder(ctx context.Context, remoteOrderID string) (*model.RemoteOrder, error)
}

// ProductSource lists the upstream catalog.
type ProductSource interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
}
