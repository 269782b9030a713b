package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

func TestRunTaskCompletesAndAdvances(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	order := f.orders.Put(model.Order{ExternalOrderID: "ext-7", Status: model.OrderStatusPending, PaymentStatus: model.PaymentStatusPaid})
	if err := f.production.Enqueue(ctx, &order); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	tasks, err := f.production.DueTasks(ctx, 10, time.Minute)
	if err != nil || len(tasks) != 1 {
		t.Fatalf("expected one due task, got %v err=%v", tasks, err)
	}
	if again, _ := f.production.DueTasks(ctx, 10, time.Minute); len(again) != 0 {
		t.Fatal("claimed task must be leased")
	}

	if err := f.production.RunTask(ctx, tasks[0]); err != nil {
		t.Fatalf("run: %v", err)
	}
	task, _ := f.tasks.Task(order.ID)
	if task.Status != model.ProductionTaskDone {
		t.Fatalf("expected done task, got %s", task.Status)
	}
	stored, _ := f.orders.GetByID(ctx, order.ID)
	if stored.Status != model.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", stored.Status)
	}
}

func TestRunTaskFailureKeepsTaskQueued(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	f.gateway.SendToProductionFn = func(context.Context, string) error {
		return &domainErrors.GatewayError{StatusCode: 500, Message: "boom"}
	}
	order := f.orders.Put(model.Order{ExternalOrderID: "ext-8", Status: model.OrderStatusPending})
	if err := f.production.Enqueue(ctx, &order); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	tasks, _ := f.production.DueTasks(ctx, 1, time.Minute)

	err := f.production.RunTask(ctx, tasks[0])
	var gwErr *domainErrors.GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected gateway error, got %v", err)
	}

	next := time.Now().Add(time.Hour)
	if err := f.production.RetryLater(ctx, tasks[0], 1, next, err); err != nil {
		t.Fatalf("retry later: %v", err)
	}
	task, _ := f.tasks.Task(order.ID)
	if task.Status != model.ProductionTaskQueued || task.Attempts != 1 || !task.NextAttemptAt.Equal(next) || task.LastError == "" {
		t.Fatalf("unexpected task %+v", task)
	}

	if err := f.production.Park(ctx, task, 5, err); err != nil {
		t.Fatalf("park: %v", err)
	}
	task, _ = f.tasks.Task(order.ID)
	if task.Status != model.ProductionTaskParked {
		t.Fatalf("expected parked task, got %s", task.Status)
	}
}

func TestRunTaskKeepsLaterStatus(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	order := f.orders.Put(model.Order{ExternalOrderID: "ext-9", Status: model.OrderStatusShipped})

	err := f.production.RunTask(ctx, model.ProductionTask{OrderID: order.ID, ExternalOrderID: "ext-9"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	stored, _ := f.orders.GetByID(ctx, order.ID)
	if stored.Status != model.OrderStatusShipped {
		t.Fatalf("status moved backwards to %s", stored.Status)
	}
}

func TestDispatchKeepsShipmentRecordedAfterRead(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	order := f.orders.Put(model.Order{ExternalOrderID: "ext-11", Status: model.OrderStatusPending})
	// The shipment webhook lands after the order was read.
	shipped := model.OrderStatusShipped
	if _, err := f.orders.UpdateByExternalID(ctx, "ext-11", model.OrderUpdate{Status: &shipped}); err != nil {
		t.Fatalf("ship: %v", err)
	}

	if queued := f.production.DispatchOrQueue(ctx, &order); queued {
		t.Fatal("successful send must not queue")
	}
	stored, _ := f.orders.GetByID(ctx, order.ID)
	if stored.Status != model.OrderStatusShipped {
		t.Fatalf("status moved backwards to %s", stored.Status)
	}
	if order.Status != model.OrderStatusShipped {
		t.Fatalf("expected refreshed status, got %s", order.Status)
	}
}

func TestEnqueueRequiresExternalID(t *testing.T) {
	f := newOrderFixture()
	if err := f.production.Enqueue(context.Background(), &model.Order{ID: 3}); err == nil {
		t.Fatal("expected error for order without external id")
	}
}

func TestRetry(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	order := f.orders.Put(model.Order{ExternalOrderID: "ext-10", Status: model.OrderStatusPending})
	local := f.orders.Put(model.Order{Status: model.OrderStatusPending})

	if _, err := f.production.Retry(ctx, local.ID); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.production.Retry(ctx, 999); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	f.gateway.SendToProductionFn = func(context.Context, string) error {
		return &domainErrors.GatewayError{Timeout: true, Message: "slow"}
	}
	if _, err := f.production.Retry(ctx, order.ID); err == nil {
		t.Fatal("expected failure")
	}
	task, ok := f.tasks.Task(order.ID)
	if !ok || task.Status != model.ProductionTaskQueued {
		t.Fatalf("failed retry should leave a queued task, got %+v", task)
	}

	f.gateway.SendToProductionFn = nil
	updated, err := f.production.Retry(ctx, order.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if updated.Status != model.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", updated.Status)
	}
	task, _ = f.tasks.Task(order.ID)
	if task.Status != model.ProductionTaskDone {
		t.Fatalf("expected task done, got %s", task.Status)
	}
}
