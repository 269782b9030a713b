package app

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

// HealthChecker reports whether the backing database is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// FacadeParams lists the use cases behind StoreFacade.
type FacadeParams struct {
	fx.In

	Carts      *usecase.CartUseCase
	Orders     *usecase.OrderUseCase
	Production *usecase.ProductionUseCase
	Reconciler *usecase.ReconcilerUseCase
	Catalog    *usecase.CatalogUseCase
	Blog       *usecase.BlogUseCase
	Health     HealthChecker
}

// StoreFacade exposes the use cases to HTTP handlers and background workers.
type StoreFacade struct {
	carts      *usecase.CartUseCase
	orders     *usecase.OrderUseCase
	production *usecase.ProductionUseCase
	reconciler *usecase.ReconcilerUseCase
	catalog    *usecase.CatalogUseCase
	blog       *usecase.BlogUseCase
	health     HealthChecker
}

func NewStoreFacade(p FacadeParams) *StoreFacade {
	return &StoreFacade{
		carts:      p.Carts,
		orders:     p.Orders,
		production: p.Production,
		reconciler: p.Reconciler,
		catalog:    p.Catalog,
		blog:       p.Blog,
		health:     p.Health,
	}
}

func (f *StoreFacade) Cart(ctx context.Context, sessionID string) (*model.CartSession, error) {
	return f.carts.Session(ctx, sessionID)
}

func (f *StoreFacade) AddCartItem(ctx context.Context, sessionID string, in usecase.CartLineInput) (*model.CartSession, error) {
	return f.carts.AddItem(ctx, sessionID, in)
}

func (f *StoreFacade) UpdateCartItem(ctx context.Context, sessionID string, key model.LineKey, quantity int) (*model.CartSession, error) {
	return f.carts.UpdateQuantity(ctx, sessionID, key, quantity)
}

func (f *StoreFacade) RemoveCartItem(ctx context.Context, sessionID string, key model.LineKey) (*model.CartSession, error) {
	return f.carts.RemoveItem(ctx, sessionID, key)
}

func (f *StoreFacade) ClearCart(ctx context.Context, sessionID string) (*model.CartSession, error) {
	return f.carts.Clear(ctx, sessionID)
}

func (f *StoreFacade) SyncCart(ctx context.Context, sessionID string, lines []usecase.CartLineInput) (*model.CartSession, error) {
	return f.carts.Sync(ctx, sessionID, lines)
}

func (f *StoreFacade) MergeCart(ctx context.Context, sessionID, email string) (*model.CartSession, error) {
	return f.carts.Merge(ctx, sessionID, email)
}

func (f *StoreFacade) SweepExpiredCarts(ctx context.Context) (int64, error) {
	return f.carts.SweepExpired(ctx)
}

func (f *StoreFacade) SubmitOrder(ctx context.Context, in usecase.SubmitOrderInput) (*usecase.SubmitResult, error) {
	return f.orders.Submit(ctx, in)
}

func (f *StoreFacade) LookupOrder(ctx context.Context, identifier string) (*usecase.OrderLookup, error) {
	return f.orders.Lookup(ctx, identifier)
}

func (f *StoreFacade) CustomerOrders(ctx context.Context, email string, page, limit int) (*model.OrderList, error) {
	return f.orders.ListByCustomer(ctx, email, page, limit)
}

func (f *StoreFacade) ListOrders(ctx context.Context, filter model.OrderFilter) (*model.OrderList, error) {
	return f.orders.List(ctx, filter)
}

func (f *StoreFacade) QuoteShipping(ctx context.Context, in usecase.ShippingQuoteInput) (model.ShippingQuote, error) {
	return f.orders.ShippingQuote(ctx, in)
}

func (f *StoreFacade) RetryProduction(ctx context.Context, orderID int64) (*model.Order, error) {
	return f.production.Retry(ctx, orderID)
}

func (f *StoreFacade) DueProductionTasks(ctx context.Context, limit int, lease time.Duration) ([]model.ProductionTask, error) {
	return f.production.DueTasks(ctx, limit, lease)
}

func (f *StoreFacade) DispatchProduction(ctx context.Context, task model.ProductionTask) error {
	return f.production.RunTask(ctx, task)
}

func (f *StoreFacade) RescheduleProduction(ctx context.Context, task model.ProductionTask, attempts int, next time.Time, cause error) error {
	return f.production.RetryLater(ctx, task, attempts, next, cause)
}

func (f *StoreFacade) ParkProduction(ctx context.Context, task model.ProductionTask, attempts int, cause error) error {
	return f.production.Park(ctx, task, attempts, cause)
}

func (f *StoreFacade) ApplyPaymentEvent(ctx context.Context, evt model.PaymentEvent) (model.ReconcileOutcome, error) {
	return f.reconciler.ApplyPayment(ctx, evt)
}

func (f *StoreFacade) ApplyFulfillmentEvent(ctx context.Context, evt model.FulfillmentEvent) (model.ReconcileOutcome, error) {
	return f.reconciler.ApplyFulfillment(ctx, evt)
}

func (f *StoreFacade) Products(ctx context.Context) ([]model.Product, bool, error) {
	return f.catalog.Products(ctx)
}

func (f *StoreFacade) Product(ctx context.Context, id string) (*model.Product, bool, error) {
	return f.catalog.Product(ctx, id)
}

func (f *StoreFacade) ProductsByCategory(ctx context.Context, category string) ([]model.Product, error) {
	return f.catalog.ByCategory(ctx, category)
}

func (f *StoreFacade) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	return f.catalog.Search(ctx, query)
}

func (f *StoreFacade) InvalidateProducts(ctx context.Context) error {
	return f.catalog.Invalidate(ctx)
}

func (f *StoreFacade) BlogPosts(ctx context.Context, page, limit int, category string) (*model.BlogList, error) {
	return f.blog.List(ctx, page, limit, category)
}

func (f *StoreFacade) BlogPost(ctx context.Context, identifier string) (*model.BlogPost, error) {
	return f.blog.Get(ctx, identifier)
}

func (f *StoreFacade) BlogCategories(ctx context.Context) ([]string, error) {
	return f.blog.Categories(ctx)
}

func (f *StoreFacade) CreateBlogPost(ctx context.Context, in usecase.BlogPostInput) (*model.BlogPost, error) {
	return f.blog.Create(ctx, in)
}

func (f *StoreFacade) UpdateBlogPost(ctx context.Context, id string, update model.BlogPostUpdate) (*model.BlogPost, error) {
	return f.blog.Update(ctx, id, update)
}

func (f *StoreFacade) DeleteBlogPost(ctx context.Context, id string) error {
	return f.blog.Delete(ctx, id)
}

// Ping succeeds when no health checker is wired.
func (f *StoreFacade) Ping(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}
