package cache

import (
	"context"
	"errors"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// ProductCache stores transformed catalog entries.
type ProductCache interface {
	GetProducts(ctx context.Context) ([]model.Product, error)
	SetProducts(ctx context.Context, products []model.Product) error
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	SetProduct(ctx context.Context, product *model.Product) error
	Invalidate(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")

// NopCache never stores anything. It is used when no cache is configured.
type NopCache struct{}

func (NopCache) GetProducts(context.Context) ([]model.Product, error) { return nil, ErrCacheMiss }

func (NopCache) SetProducts(context.Context, []model.Product) error { return nil }

func (NopCache) GetProduct(context.Context, string) (*model.Product, error) { return nil, ErrCacheMiss }

func (NopCache) SetProduct(context.Context, *model.Product) error { return nil }

func (NopCache) Invalidate(context.Context) error { return nil }
