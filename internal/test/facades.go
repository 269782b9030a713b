package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// RescheduleCall stores information about RescheduleProduction invocations.
type RescheduleCall struct {
	Task     model.ProductionTask
	Attempts int
	Next     time.Time
	Cause    error
}

// ParkCall stores information about ParkProduction invocations.
type ParkCall struct {
	Task     model.ProductionTask
	Attempts int
	Cause    error
}

// ProductionFacadeStub mimics the production queue seen by the dispatcher.
type ProductionFacadeStub struct {
	Batches    [][]model.ProductionTask
	DueFn      func(context.Context, int, time.Duration) ([]model.ProductionTask, error)
	DispatchFn func(context.Context, model.ProductionTask) error

	Dispatched  []model.ProductionTask
	Rescheduled []RescheduleCall
	Parked      []ParkCall
	Leases      []time.Duration

	mu       sync.Mutex
	dueCalls int32
}

// Lock exposes internal mutex for external synchronization.
func (s *ProductionFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *ProductionFacadeStub) Unlock() { s.mu.Unlock() }

// DueProductionTasks returns batches from configured queue.
func (s *ProductionFacadeStub) DueProductionTasks(ctx context.Context, limit int, lease time.Duration) ([]model.ProductionTask, error) {
	s.mu.Lock()
	s.Leases = append(s.Leases, lease)
	s.mu.Unlock()
	if s.DueFn != nil {
		return s.DueFn(ctx, limit, lease)
	}
	call := atomic.AddInt32(&s.dueCalls, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	return nil, nil
}

// DispatchProduction records the attempt and delegates to DispatchFn.
func (s *ProductionFacadeStub) DispatchProduction(ctx context.Context, task model.ProductionTask) error {
	s.mu.Lock()
	s.Dispatched = append(s.Dispatched, task)
	s.mu.Unlock()
	if s.DispatchFn != nil {
		return s.DispatchFn(ctx, task)
	}
	return nil
}

// RescheduleProduction records the retry.
func (s *ProductionFacadeStub) RescheduleProduction(ctx context.Context, task model.ProductionTask, attempts int, next time.Time, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rescheduled = append(s.Rescheduled, RescheduleCall{Task: task, Attempts: attempts, Next: next, Cause: cause})
	return nil
}

// ParkProduction records the parked task.
func (s *ProductionFacadeStub) ParkProduction(ctx context.Context, task model.ProductionTask, attempts int, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Parked = append(s.Parked, ParkCall{Task: task, Attempts: attempts, Cause: cause})
	return nil
}

// CartSweepFacadeStub counts sweeps.
type CartSweepFacadeStub struct {
	Removed int64
	Err     error

	calls int32
}

// SweepExpiredCarts returns the configured result.
func (s *CartSweepFacadeStub) SweepExpiredCarts(ctx context.Context) (int64, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.Removed, s.Err
}

// Calls reports how many sweeps ran.
func (s *CartSweepFacadeStub) Calls() int {
	return int(atomic.LoadInt32(&s.calls))
}
