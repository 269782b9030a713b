package worker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const (
	claimLease = time.Minute
	maxBackoff = 30 * time.Minute
)

// ProductionFacade exposes the production queue operations the dispatcher needs.
type ProductionFacade interface {
	DueProductionTasks(ctx context.Context, limit int, lease time.Duration) ([]model.ProductionTask, error)
	DispatchProduction(ctx context.Context, task model.ProductionTask) error
	RescheduleProduction(ctx context.Context, task model.ProductionTask, attempts int, next time.Time, cause error) error
	ParkProduction(ctx context.Context, task model.ProductionTask, attempts int, cause error) error
}

// ProductionDispatcher drains the production retry queue with a pool of workers.
type ProductionDispatcher struct {
	facade       ProductionFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	maxAttempts  int
	logger       *slog.Logger
	now          func() time.Time

	jobs   chan model.ProductionTask
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewProductionDispatcher constructs the dispatcher worker pool.
func NewProductionDispatcher(facade ProductionFacade, pollInterval time.Duration, batchSize, workers, maxAttempts int, logger *slog.Logger) *ProductionDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &ProductionDispatcher{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		maxAttempts:  maxAttempts,
		logger:       logger,
		now:          time.Now,
		jobs:         make(chan model.ProductionTask, batchSize*workers),
	}
}

// Start launches background processing.
func (d *ProductionDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx)
	}

	d.wg.Add(1)
	go d.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (d *ProductionDispatcher) Stop() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *ProductionDispatcher) dispatch(ctx context.Context) {
	defer d.wg.Done()
	defer close(d.jobs)
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.fetchAndDispatch(ctx)
		}
	}
}

func (d *ProductionDispatcher) fetchAndDispatch(ctx context.Context) {
	tasks, err := d.facade.DueProductionTasks(ctx, d.batchSize, claimLease)
	if err != nil {
		d.logger.Error("fetch production tasks failed", slog.String("error", err.Error()))
		return
	}
	for _, task := range tasks {
		select {
		case <-ctx.Done():
			return
		case d.jobs <- task:
		}
	}
}

func (d *ProductionDispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-d.jobs:
			if !ok {
				return
			}
			d.handleTask(ctx, task)
		}
	}
}

func (d *ProductionDispatcher) handleTask(ctx context.Context, task model.ProductionTask) {
	err := d.facade.DispatchProduction(ctx, task)
	if err == nil {
		d.logger.Info("order sent to production",
			slog.Int64("order_id", task.OrderID),
			slog.String("external_id", task.ExternalOrderID),
			slog.Int("attempts", task.Attempts+1),
		)
		return
	}
	if ctx.Err() != nil {
		return
	}

	attempts := task.Attempts + 1
	if attempts >= d.maxAttempts || permanent(err) {
		d.logger.Error("production task parked",
			slog.Int64("order_id", task.OrderID),
			slog.String("external_id", task.ExternalOrderID),
			slog.Int("attempts", attempts),
			slog.String("error", err.Error()),
		)
		if perr := d.facade.ParkProduction(ctx, task, attempts, err); perr != nil {
			d.logger.Error("park production task failed", slog.Int64("order_id", task.OrderID), slog.String("error", perr.Error()))
		}
		return
	}

	delay := d.backoff(attempts, err)
	d.logger.Warn("production attempt failed",
		slog.Int64("order_id", task.OrderID),
		slog.String("external_id", task.ExternalOrderID),
		slog.Int("attempts", attempts),
		slog.Duration("retry_in", delay),
		slog.String("error", err.Error()),
	)
	if rerr := d.facade.RescheduleProduction(ctx, task, attempts, d.now().Add(delay), err); rerr != nil {
		d.logger.Error("reschedule production task failed", slog.Int64("order_id", task.OrderID), slog.String("error", rerr.Error()))
	}
}

// backoff doubles the poll interval per attempt. An upstream Retry-After
// longer than that wins.
func (d *ProductionDispatcher) backoff(attempts int, err error) time.Duration {
	delay := d.pollInterval
	for i := 1; i < attempts && delay < maxBackoff; i++ {
		delay *= 2
	}
	if delay > maxBackoff {
		delay = maxBackoff
	}
	var gwErr *domainErrors.GatewayError
	if errors.As(err, &gwErr) && gwErr.RetryAfter > delay {
		delay = gwErr.RetryAfter
	}
	return delay
}

// permanent reports upstream rejections that will not succeed on retry.
func permanent(err error) bool {
	var gwErr *domainErrors.GatewayError
	if !errors.As(err, &gwErr) || gwErr.Timeout {
		return false
	}
	switch gwErr.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return gwErr.StatusCode >= 400 && gwErr.StatusCode < 500
}
