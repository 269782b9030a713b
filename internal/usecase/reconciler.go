package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// ReconcilerUseCase applies payment and fulfillment webhooks to orders.
// Events may be replayed or arrive out of order; state only moves forward.
type ReconcilerUseCase struct {
	orders     repository.OrderRepository
	production *ProductionUseCase
	logger     *slog.Logger
}

// NewReconcilerUseCase constructs ReconcilerUseCase.
func NewReconcilerUseCase(orders repository.OrderRepository, production *ProductionUseCase, logger *slog.Logger) *ReconcilerUseCase {
	return &ReconcilerUseCase{orders: orders, production: production, logger: logger}
}

// ApplyPayment records a payment outcome. A failure never overwrites a
// confirmed payment. A paid order still pending is queued for production.
func (u *ReconcilerUseCase) ApplyPayment(ctx context.Context, evt model.PaymentEvent) (model.ReconcileOutcome, error) {
	var target model.PaymentStatus
	switch evt.Type {
	case model.PaymentEventSucceeded:
		target = model.PaymentStatusPaid
	case model.PaymentEventFailed:
		target = model.PaymentStatusFailed
	default:
		u.logger.Info("payment event ignored", slog.String("event", evt.Type), slog.String("event_id", evt.ID))
		return model.OutcomeIgnored, nil
	}

	if evt.OrderID <= 0 {
		u.logger.Warn("payment event without order", slog.String("event", evt.Type), slog.String("event_id", evt.ID))
		return model.OutcomeUnknownOrder, nil
	}
	order, err := u.orders.GetByID(ctx, evt.OrderID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		u.logger.Warn("payment event for unknown order", slog.String("event", evt.Type), slog.Int64("order_id", evt.OrderID))
		return model.OutcomeUnknownOrder, nil
	}
	if err != nil {
		return "", fmt.Errorf("load order %d: %w", evt.OrderID, err)
	}

	outcome := model.OutcomeApplied
	switch {
	case order.PaymentStatus == model.PaymentStatusPaid && target == model.PaymentStatusFailed:
		return model.OutcomeIgnored, nil
	case order.PaymentStatus == target && (evt.PaymentIntentID == "" || evt.PaymentIntentID == order.PaymentIntentID):
		outcome = model.OutcomeUnchanged
	default:
		if err := u.orders.UpdatePaymentStatus(ctx, order.ID, target, evt.PaymentIntentID); err != nil {
			return "", fmt.Errorf("update payment status: %w", err)
		}
		order.PaymentStatus = target
	}

	if target == model.PaymentStatusPaid && order.Status == model.OrderStatusPending && order.ExternalOrderID != "" {
		if err := u.production.Enqueue(ctx, order); err != nil {
			u.logger.Error("enqueue production after payment failed",
				slog.Int64("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return outcome, nil
}

// ApplyFulfillment records fulfillment progress. Status never moves back;
// tracking data from a late shipment event is still recorded.
func (u *ReconcilerUseCase) ApplyFulfillment(ctx context.Context, evt model.FulfillmentEvent) (model.ReconcileOutcome, error) {
	var target model.OrderStatus
	switch evt.Type {
	case model.FulfillmentEventSentToProduction:
		target = model.OrderStatusProcessing
	case model.FulfillmentEventShipmentCreated:
		target = model.OrderStatusShipped
	case model.FulfillmentEventShipmentDelivered:
		target = model.OrderStatusDelivered
	default:
		u.logger.Info("fulfillment event ignored", slog.String("event", evt.Type), slog.String("external_id", evt.ExternalOrderID))
		return model.OutcomeIgnored, nil
	}

	if evt.ExternalOrderID == "" {
		u.logger.Warn("fulfillment event without order", slog.String("event", evt.Type))
		return model.OutcomeUnknownOrder, nil
	}
	order, err := u.orders.GetByExternalID(ctx, evt.ExternalOrderID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		u.logger.Warn("fulfillment event for unknown order", slog.String("event", evt.Type), slog.String("external_id", evt.ExternalOrderID))
		return model.OutcomeUnknownOrder, nil
	}
	if err != nil {
		return "", fmt.Errorf("load order %s: %w", evt.ExternalOrderID, err)
	}

	var update model.OrderUpdate
	if order.Status.Advances(target) {
		update.Status = &target
	}
	if target == model.OrderStatusShipped {
		if evt.TrackingNumber != "" && evt.TrackingNumber != order.TrackingNumber {
			update.TrackingNumber = &evt.TrackingNumber
		}
		if evt.TrackingURL != "" && evt.TrackingURL != order.TrackingURL {
			update.TrackingURL = &evt.TrackingURL
		}
	}
	if update.Empty() {
		return model.OutcomeUnchanged, nil
	}

	if _, err := u.orders.UpdateByExternalID(ctx, evt.ExternalOrderID, update); err != nil {
		return "", fmt.Errorf("update order %s: %w", evt.ExternalOrderID, err)
	}
	return model.OutcomeApplied, nil
}
