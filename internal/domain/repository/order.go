package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order model.NewOrder) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.Order, error)
	ListByCustomerEmail(ctx context.Context, email string, page, limit int) (*model.OrderList, error)
	List(ctx context.Context, filter model.OrderFilter) (*model.OrderList, error)
	// UpdateStatus moves the order forward to status. It reports false when
	// the stored status is already at or past status.
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (bool, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status model.PaymentStatus, paymentIntentID string) error
	UpdateTracking(ctx context.Context, id int64, trackingNumber, trackingURL string) error
	// UpdateByExternalID applies update. A status in update only replaces a
	// lower ranked stored status.
	UpdateByExternalID(ctx context.Context, externalID string, update model.OrderUpdate) (*model.Order, error)
}
