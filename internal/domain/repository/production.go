package repository

import (
	"context"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// ProductionTaskRepository stores queued send-to-production requests. At most
// one task exists per order.
type ProductionTaskRepository interface {
	Enqueue(ctx context.Context, orderID int64, externalOrderID string, runAt time.Time) error
	ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]model.ProductionTask, error)
	Complete(ctx context.Context, orderID int64) error
	Reschedule(ctx context.Context, taskID int64, attempts int, next time.Time, lastErr string) error
	Park(ctx context.Context, taskID int64, attempts int, lastErr string) error
}
