package handlers

import (
	"context"
	"errors"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

var errUnexpectedCall = errors.New("unexpected call")

// storeStub implements StoreFacade; unset hooks fail the call.
type storeStub struct {
	cartFn       func(context.Context, string) (*model.CartSession, error)
	addFn        func(context.Context, string, usecase.CartLineInput) (*model.CartSession, error)
	updateFn     func(context.Context, string, model.LineKey, int) (*model.CartSession, error)
	removeFn     func(context.Context, string, model.LineKey) (*model.CartSession, error)
	clearFn      func(context.Context, string) (*model.CartSession, error)
	syncFn       func(context.Context, string, []usecase.CartLineInput) (*model.CartSession, error)
	mergeFn      func(context.Context, string, string) (*model.CartSession, error)
	submitFn     func(context.Context, usecase.SubmitOrderInput) (*usecase.SubmitResult, error)
	lookupFn     func(context.Context, string) (*usecase.OrderLookup, error)
	customerFn   func(context.Context, string, int, int) (*model.OrderList, error)
	listOrdersFn func(context.Context, model.OrderFilter) (*model.OrderList, error)
	quoteFn      func(context.Context, usecase.ShippingQuoteInput) (model.ShippingQuote, error)
	retryFn      func(context.Context, int64) (*model.Order, error)
	paymentFn    func(context.Context, model.PaymentEvent) (model.ReconcileOutcome, error)
	fulfillFn    func(context.Context, model.FulfillmentEvent) (model.ReconcileOutcome, error)
	productsFn   func(context.Context) ([]model.Product, bool, error)
	productFn    func(context.Context, string) (*model.Product, bool, error)
	categoryFn   func(context.Context, string) ([]model.Product, error)
	searchFn     func(context.Context, string) ([]model.Product, error)
	invalidateFn func(context.Context) error
	postsFn      func(context.Context, int, int, string) (*model.BlogList, error)
	postFn       func(context.Context, string) (*model.BlogPost, error)
	categoriesFn func(context.Context) ([]string, error)
	createPostFn func(context.Context, usecase.BlogPostInput) (*model.BlogPost, error)
	updatePostFn func(context.Context, string, model.BlogPostUpdate) (*model.BlogPost, error)
	deletePostFn func(context.Context, string) error
	pingFn       func(context.Context) error
}

func (s storeStub) Cart(ctx context.Context, sid string) (*model.CartSession, error) {
	if s.cartFn == nil {
		return nil, errUnexpectedCall
	}
	return s.cartFn(ctx, sid)
}

func (s storeStub) AddCartItem(ctx context.Context, sid string, in usecase.CartLineInput) (*model.CartSession, error) {
	if s.addFn == nil {
		return nil, errUnexpectedCall
	}
	return s.addFn(ctx, sid, in)
}

func (s storeStub) UpdateCartItem(ctx context.Context, sid string, key model.LineKey, qty int) (*model.CartSession, error) {
	if s.updateFn == nil {
		return nil, errUnexpectedCall
	}
	return s.updateFn(ctx, sid, key, qty)
}

func (s storeStub) RemoveCartItem(ctx context.Context, sid string, key model.LineKey) (*model.CartSession, error) {
	if s.removeFn == nil {
		return nil, errUnexpectedCall
	}
	return s.removeFn(ctx, sid, key)
}

func (s storeStub) ClearCart(ctx context.Context, sid string) (*model.CartSession, error) {
	if s.clearFn == nil {
		return nil, errUnexpectedCall
	}
	return s.clearFn(ctx, sid)
}

func (s storeStub) SyncCart(ctx context.Context, sid string, lines []usecase.CartLineInput) (*model.CartSession, error) {
	if s.syncFn == nil {
		return nil, errUnexpectedCall
	}
	return s.syncFn(ctx, sid, lines)
}

func (s storeStub) MergeCart(ctx context.Context, sid, email string) (*model.CartSession, error) {
	if s.mergeFn == nil {
		return nil, errUnexpectedCall
	}
	return s.mergeFn(ctx, sid, email)
}

func (s storeStub) SubmitOrder(ctx context.Context, in usecase.SubmitOrderInput) (*usecase.SubmitResult, error) {
	if s.submitFn == nil {
		return nil, errUnexpectedCall
	}
	return s.submitFn(ctx, in)
}

func (s storeStub) LookupOrder(ctx context.Context, id string) (*usecase.OrderLookup, error) {
	if s.lookupFn == nil {
		return nil, errUnexpectedCall
	}
	return s.lookupFn(ctx, id)
}

func (s storeStub) CustomerOrders(ctx context.Context, email string, page, limit int) (*model.OrderList, error) {
	if s.customerFn == nil {
		return nil, errUnexpectedCall
	}
	return s.customerFn(ctx, email, page, limit)
}

func (s storeStub) ListOrders(ctx context.Context, filter model.OrderFilter) (*model.OrderList, error) {
	if s.listOrdersFn == nil {
		return nil, errUnexpectedCall
	}
	return s.listOrdersFn(ctx, filter)
}

func (s storeStub) QuoteShipping(ctx context.Context, in usecase.ShippingQuoteInput) (model.ShippingQuote, error) {
	if s.quoteFn == nil {
		return nil, errUnexpectedCall
	}
	return s.quoteFn(ctx, in)
}

func (s storeStub) RetryProduction(ctx context.Context, id int64) (*model.Order, error) {
	if s.retryFn == nil {
		return nil, errUnexpectedCall
	}
	return s.retryFn(ctx, id)
}

func (s storeStub) ApplyPaymentEvent(ctx context.Context, evt model.PaymentEvent) (model.ReconcileOutcome, error) {
	if s.paymentFn == nil {
		return "", errUnexpectedCall
	}
	return s.paymentFn(ctx, evt)
}

func (s storeStub) ApplyFulfillmentEvent(ctx context.Context, evt model.FulfillmentEvent) (model.ReconcileOutcome, error) {
	if s.fulfillFn == nil {
		return "", errUnexpectedCall
	}
	return s.fulfillFn(ctx, evt)
}

func (s storeStub) Products(ctx context.Context) ([]model.Product, bool, error) {
	if s.productsFn == nil {
		return nil, false, errUnexpectedCall
	}
	return s.productsFn(ctx)
}

func (s storeStub) Product(ctx context.Context, id string) (*model.Product, bool, error) {
	if s.productFn == nil {
		return nil, false, errUnexpectedCall
	}
	return s.productFn(ctx, id)
}

func (s storeStub) ProductsByCategory(ctx context.Context, category string) ([]model.Product, error) {
	if s.categoryFn == nil {
		return nil, errUnexpectedCall
	}
	return s.categoryFn(ctx, category)
}

func (s storeStub) SearchProducts(ctx context.Context, q string) ([]model.Product, error) {
	if s.searchFn == nil {
		return nil, errUnexpectedCall
	}
	return s.searchFn(ctx, q)
}

func (s storeStub) InvalidateProducts(ctx context.Context) error {
	if s.invalidateFn == nil {
		return errUnexpectedCall
	}
	return s.invalidateFn(ctx)
}

func (s storeStub) BlogPosts(ctx context.Context, page, limit int, category string) (*model.BlogList, error) {
	if s.postsFn == nil {
		return nil, errUnexpectedCall
	}
	return s.postsFn(ctx, page, limit, category)
}

func (s storeStub) BlogPost(ctx context.Context, identifier string) (*model.BlogPost, error) {
	if s.postFn == nil {
		return nil, errUnexpectedCall
	}
	return s.postFn(ctx, identifier)
}

func (s storeStub) BlogCategories(ctx context.Context) ([]string, error) {
	if s.categoriesFn == nil {
		return nil, errUnexpectedCall
	}
	return s.categoriesFn(ctx)
}

func (s storeStub) CreateBlogPost(ctx context.Context, in usecase.BlogPostInput) (*model.BlogPost, error) {
	if s.createPostFn == nil {
		return nil, errUnexpectedCall
	}
	return s.createPostFn(ctx, in)
}

func (s storeStub) UpdateBlogPost(ctx context.Context, id string, update model.BlogPostUpdate) (*model.BlogPost, error) {
	if s.updatePostFn == nil {
		return nil, errUnexpectedCall
	}
	return s.updatePostFn(ctx, id, update)
}

func (s storeStub) DeleteBlogPost(ctx context.Context, id string) error {
	if s.deletePostFn == nil {
		return errUnexpectedCall
	}
	return s.deletePostFn(ctx, id)
}

func (s storeStub) Ping(ctx context.Context) error {
	if s.pingFn == nil {
		return nil
	}
	return s.pingFn(ctx)
}

var _ StoreFacade = storeStub{}
