package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// ProductionUseCase starts production of placed orders and owns the retry
// queue for attempts that failed.
type ProductionUseCase struct {
	orders  repository.OrderRepository
	tasks   repository.ProductionTaskRepository
	gateway FulfillmentGateway
	logger  *slog.Logger
	now     func() time.Time
}

// NewProductionUseCase constructs ProductionUseCase.
func NewProductionUseCase(orders repository.OrderRepository, tasks repository.ProductionTaskRepository, gateway FulfillmentGateway, logger *slog.Logger) *ProductionUseCase {
	return &ProductionUseCase{
		orders:  orders,
		tasks:   tasks,
		gateway: gateway,
		logger:  logger,
		now:     time.Now,
	}
}

// DispatchOrQueue requests production once. On failure the order is queued
// for the dispatcher and true is returned. It returns false when the send
// succeeded or when no retry could be queued.
func (u *ProductionUseCase) DispatchOrQueue(ctx context.Context, order *model.Order) bool {
	if err := u.send(ctx, order.ExternalOrderID); err != nil {
		u.logger.Warn("send to production failed, queued for retry",
			slog.Int64("order_id", order.ID),
			slog.String("external_id", order.ExternalOrderID),
			slog.String("error", err.Error()),
		)
		if err := u.Enqueue(ctx, order); err != nil {
			u.logger.Error("enqueue production task failed",
				slog.Int64("order_id", order.ID),
				slog.String("error", err.Error()),
			)
			return false
		}
		return true
	}
	u.advance(ctx, order)
	return false
}

// Enqueue schedules a production attempt for the order. It is a no-op when a
// live task already exists.
func (u *ProductionUseCase) Enqueue(ctx context.Context, order *model.Order) error {
	if order.ExternalOrderID == "" {
		return fmt.Errorf("order %d has no external id", order.ID)
	}
	return u.tasks.Enqueue(ctx, order.ID, order.ExternalOrderID, u.now())
}

// Retry is the manual trigger for one order. A failed attempt leaves a queued
// task behind.
func (u *ProductionUseCase) Retry(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ExternalOrderID == "" {
		verr := &domainErrors.ValidationError{}
		verr.Add("externalOrderId", "order was never created remotely")
		return nil, verr
	}

	if err := u.send(ctx, order.ExternalOrderID); err != nil {
		if qErr := u.Enqueue(ctx, order); qErr != nil {
			u.logger.Error("enqueue production task failed", slog.Int64("order_id", order.ID), slog.String("error", qErr.Error()))
		}
		return nil, err
	}
	if err := u.tasks.Complete(ctx, order.ID); err != nil {
		u.logger.Warn("complete production task failed", slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
	}
	u.advance(ctx, order)
	return order, nil
}

// DueTasks claims queued tasks whose attempt time has come. Claimed tasks are
// hidden from other pollers for lease.
func (u *ProductionUseCase) DueTasks(ctx context.Context, limit int, lease time.Duration) ([]model.ProductionTask, error) {
	return u.tasks.ClaimDue(ctx, u.now(), limit, lease)
}

// RunTask performs one queued attempt. Only the gateway failure is returned;
// bookkeeping failures after a successful send are logged.
func (u *ProductionUseCase) RunTask(ctx context.Context, task model.ProductionTask) error {
	if err := u.send(ctx, task.ExternalOrderID); err != nil {
		return err
	}
	if err := u.tasks.Complete(ctx, task.OrderID); err != nil {
		u.logger.Error("complete production task failed", slog.Int64("order_id", task.OrderID), slog.String("error", err.Error()))
	}
	order, err := u.orders.GetByID(ctx, task.OrderID)
	if err != nil {
		u.logger.Error("load order after production failed", slog.Int64("order_id", task.OrderID), slog.String("error", err.Error()))
		return nil
	}
	u.advance(ctx, order)
	return nil
}

// RetryLater records a failed attempt and the time of the next one.
func (u *ProductionUseCase) RetryLater(ctx context.Context, task model.ProductionTask, attempts int, next time.Time, cause error) error {
	return u.tasks.Reschedule(ctx, task.ID, attempts, next, cause.Error())
}

// Park stops retrying a task.
func (u *ProductionUseCase) Park(ctx context.Context, task model.ProductionTask, attempts int, cause error) error {
	return u.tasks.Park(ctx, task.ID, attempts, cause.Error())
}

func (u *ProductionUseCase) send(ctx context.Context, externalOrderID string) error {
	if err := u.gateway.SendToProduction(ctx, externalOrderID); err != nil {
		return fmt.Errorf("send to production: %w", err)
	}
	return nil
}

// advance moves a pending order to processing. Later states are kept.
func (u *ProductionUseCase) advance(ctx context.Context, order *model.Order) {
	if !order.Status.Advances(model.OrderStatusProcessing) {
		return
	}
	moved, err := u.orders.UpdateStatus(ctx, order.ID, model.OrderStatusProcessing)
	if err != nil {
		u.logger.Error("advance order to processing failed",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	if !moved {
		// A webhook moved the order on since it was read.
		if current, err := u.orders.GetByID(ctx, order.ID); err == nil {
			order.Status = current.Status
		}
		return
	}
	order.Status = model.OrderStatusProcessing
}
