package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// CartFacade removes lapsed cart sessions.
type CartFacade interface {
	SweepExpiredCarts(ctx context.Context) (int64, error)
}

// CartSweeper periodically deletes expired cart sessions.
type CartSweeper struct {
	facade   CartFacade
	interval time.Duration
	logger   *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewCartSweeper constructs CartSweeper.
func NewCartSweeper(facade CartFacade, interval time.Duration, logger *slog.Logger) *CartSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CartSweeper{facade: facade, interval: interval, logger: logger}
}

// Start launches the sweep loop.
func (s *CartSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(runCtx)
}

// Stop waits for the loop to exit.
func (s *CartSweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *CartSweeper) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *CartSweeper) sweep(ctx context.Context) {
	n, err := s.facade.SweepExpiredCarts(ctx)
	if err != nil {
		s.logger.Error("sweep expired carts failed", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		s.logger.Info("expired carts removed", slog.Int64("count", n))
	}
}
