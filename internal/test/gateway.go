package test

import (
	"context"
	"sync"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// GatewayStub fakes the fulfillment service. Unset functions succeed with
// canned data. Calls are recorded and safe for concurrent use.
type GatewayStub struct {
	CreateOrderFn      func(context.Context, model.RemoteOrderRequest) (*model.RemoteOrder, error)
	SendToProductionFn func(context.Context, string) error
	ShippingQuoteFn    func(context.Context, model.ShippingQuoteRequest) (model.ShippingQuote, error)
	GetOrderFn         func(context.Context, string) (*model.RemoteOrder, error)
	ListProductsFn     func(context.Context) ([]model.Product, error)
	GetProductFn       func(context.Context, string) (*model.Product, error)

	mu          sync.Mutex
	created     []model.RemoteOrderRequest
	productions []string
	listCalls   int
}

func (g *GatewayStub) CreateOrder(ctx context.Context, req model.RemoteOrderRequest) (*model.RemoteOrder, error) {
	g.mu.Lock()
	g.created = append(g.created, req)
	g.mu.Unlock()
	if g.CreateOrderFn != nil {
		return g.CreateOrderFn(ctx, req)
	}
	return &model.RemoteOrder{ID: "remote-" + req.ExternalID, ExternalID: req.ExternalID, Status: "on-hold"}, nil
}

func (g *GatewayStub) SendToProduction(ctx context.Context, remoteOrderID string) error {
	g.mu.Lock()
	g.productions = append(g.productions, remoteOrderID)
	g.mu.Unlock()
	if g.SendToProductionFn != nil {
		return g.SendToProductionFn(ctx, remoteOrderID)
	}
	return nil
}

func (g *GatewayStub) ShippingQuote(ctx context.Context, req model.ShippingQuoteRequest) (model.ShippingQuote, error) {
	if g.ShippingQuoteFn != nil {
		return g.ShippingQuoteFn(ctx, req)
	}
	return model.ShippingQuote{"standard": 499}, nil
}

func (g *GatewayStub) GetOrder(ctx context.Context, remoteOrderID string) (*model.RemoteOrder, error) {
	if g.GetOrderFn != nil {
		return g.GetOrderFn(ctx, remoteOrderID)
	}
	return nil, &domainErrors.GatewayError{StatusCode: 404, Message: "not found"}
}

func (g *GatewayStub) ListProducts(ctx context.Context) ([]model.Product, error) {
	g.mu.Lock()
	g.listCalls++
	g.mu.Unlock()
	if g.ListProductsFn != nil {
		return g.ListProductsFn(ctx)
	}
	return nil, nil
}

func (g *GatewayStub) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	if g.GetProductFn != nil {
		return g.GetProductFn(ctx, productID)
	}
	return nil, &domainErrors.GatewayError{StatusCode: 404, Message: "not found"}
}

// Created returns every create order request seen so far.
func (g *GatewayStub) Created() []model.RemoteOrderRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]model.RemoteOrderRequest(nil), g.created...)
}

// Productions returns the remote ids production was requested for.
func (g *GatewayStub) Productions() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.productions...)
}

// ListCalls reports how often the catalog was listed.
func (g *GatewayStub) ListCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.listCalls
}
