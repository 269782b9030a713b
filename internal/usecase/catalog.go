package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/polkiloo/storefront/internal/cache"
	"github.com/polkiloo/storefront/internal/config"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const defaultProductCategory = "general-sarcasm"

var categoryByTag = map[string]string{
	"dog":     "dog-lovers",
	"cat":     "cat-lovers",
	"pet":     "pet-lovers",
	"work":    "work-office",
	"office":  "work-office",
	"coffee":  "coffee-lovers",
	"general": defaultProductCategory,
}

// CatalogUseCase is a read-through cache over the upstream catalog. A mock
// product file, when configured, takes precedence over the upstream.
type CatalogUseCase struct {
	source   ProductSource
	cache    cache.ProductCache
	mockFile string
	logger   *slog.Logger
	sfg      singleflight.Group
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(source ProductSource, productCache cache.ProductCache, cfg *config.Config, logger *slog.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		source:   source,
		cache:    productCache,
		mockFile: cfg.MockProductsFile,
		logger:   logger,
	}
}

// Products returns the visible catalog and whether it came from the cache.
func (u *CatalogUseCase) Products(ctx context.Context) ([]model.Product, bool, error) {
	products, err := u.cache.GetProducts(ctx)
	if err == nil {
		return products, true, nil
	}
	u.logCacheError("products", err)

	v, err, _ := u.sfg.Do("products", func() (interface{}, error) {
		products, err := u.loadProducts(ctx)
		if err != nil {
			return nil, err
		}
		if err := u.cache.SetProducts(ctx, products); err != nil {
			u.logger.Warn("cache products failed", slog.String("error", err.Error()))
		}
		return products, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]model.Product), false, nil
}

// Product returns one product and whether it came from the cache.
func (u *CatalogUseCase) Product(ctx context.Context, id string) (*model.Product, bool, error) {
	product, err := u.cache.GetProduct(ctx, id)
	if err == nil {
		return product, true, nil
	}
	u.logCacheError("product", err)

	v, err, _ := u.sfg.Do("product:"+id, func() (interface{}, error) {
		product, err := u.loadProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := u.cache.SetProduct(ctx, product); err != nil {
			u.logger.Warn("cache product failed", slog.String("product_id", id), slog.String("error", err.Error()))
		}
		return product, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*model.Product), false, nil
}

// ByCategory filters the catalog by derived category.
func (u *CatalogUseCase) ByCategory(ctx context.Context, category string) ([]model.Product, error) {
	products, _, err := u.Products(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]model.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Search matches the query against title, description and tags ignoring case.
func (u *CatalogUseCase) Search(ctx context.Context, query string) ([]model.Product, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		verr := &domainErrors.ValidationError{}
		verr.Add("q", "is required")
		return nil, verr
	}

	products, _, err := u.Products(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]model.Product, 0)
	for _, p := range products {
		if matchesQuery(p, query) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// Invalidate drops every cached product.
func (u *CatalogUseCase) Invalidate(ctx context.Context) error {
	return u.cache.Invalidate(ctx)
}

func (u *CatalogUseCase) loadProducts(ctx context.Context) ([]model.Product, error) {
	if mock := u.mockProducts(); len(mock) > 0 {
		return mock, nil
	}

	upstream, err := u.source.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list upstream products: %w", err)
	}
	products := make([]model.Product, 0, len(upstream))
	for _, p := range upstream {
		if !p.Visible {
			continue
		}
		products = append(products, transformProduct(p))
	}
	return products, nil
}

func (u *CatalogUseCase) loadProduct(ctx context.Context, id string) (*model.Product, error) {
	for _, p := range u.mockProducts() {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}

	upstream, err := u.source.GetProduct(ctx, id)
	if err != nil {
		var gwErr *domainErrors.GatewayError
		if errors.As(err, &gwErr) && gwErr.NotFound() {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get upstream product: %w", err)
	}
	product := transformProduct(*upstream)
	return &product, nil
}

// mockProducts reads the mock file on every call so it can be edited live.
// A missing or broken file means no mock data.
func (u *CatalogUseCase) mockProducts() []model.Product {
	if u.mockFile == "" {
		return nil
	}
	data, err := os.ReadFile(u.mockFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			u.logger.Warn("read mock products failed", slog.String("path", u.mockFile), slog.String("error", err.Error()))
		}
		return nil
	}
	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		u.logger.Warn("decode mock products failed", slog.String("path", u.mockFile), slog.String("error", err.Error()))
		return nil
	}
	return products
}

func (u *CatalogUseCase) logCacheError(key string, err error) {
	if !errors.Is(err, cache.ErrCacheMiss) {
		u.logger.Warn("product cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// transformProduct derives storefront fields from an upstream product.
func transformProduct(p model.Product) model.Product {
	if p.Images == nil {
		p.Images = []model.ProductImage{}
	}
	if p.Variants == nil {
		p.Variants = []model.ProductVariant{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.Price = lowestPrice(p.Variants)
	p.Category = categoryFor(p.Tags)
	p.Featured = hasTag(p.Tags, "featured")
	p.Visible = true
	return p
}

func lowestPrice(variants []model.ProductVariant) decimal.Decimal {
	if len(variants) == 0 {
		return decimal.Zero
	}
	lowest := variants[0].Price
	for _, v := range variants[1:] {
		if v.Price < lowest {
			lowest = v.Price
		}
	}
	return decimal.New(lowest, -2)
}

func categoryFor(tags []string) string {
	for _, tag := range tags {
		if category, ok := categoryByTag[strings.ToLower(tag)]; ok {
			return category
		}
	}
	return defaultProductCategory
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if strings.EqualFold(tag, want) {
			return true
		}
	}
	return false
}

func matchesQuery(p model.Product, query string) bool {
	if strings.Contains(strings.ToLower(p.Title), query) || strings.Contains(strings.ToLower(p.Description), query) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}
