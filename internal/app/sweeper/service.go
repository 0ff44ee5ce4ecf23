package sweeper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/adapter/metrics"
	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

var (
	ErrAlreadyRunning = errors.New("sweeper is already running")
	ErrNotRunning     = errors.New("sweeper is not running")
)

// OrderCanceller is the slice of the order service the sweeper needs: expired
// orders go through the exact same cancellation path as a customer cancel.
type OrderCanceller interface {
	CancelExpired(ctx context.Context, id string) (*domain.Order, error)
}

// Service periodically cancels pending orders whose payment window elapsed.
// One sweeper instance runs per process; Start and Stop are explicit
// lifecycle operations.
type Service struct {
	orders   interfaces.OrderRepository
	orderSvc OrderCanceller
	logger   logger.Logger
	interval time.Duration

	// now is swapped out in tests.
	now func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	last    *interfaces.SweepSummary
}

func NewService(orders interfaces.OrderRepository, orderSvc OrderCanceller, logger logger.Logger, interval time.Duration) *Service {
	return &Service{
		orders:   orders,
		orderSvc: orderSvc,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// Start launches the sweep loop. The first sweep runs immediately.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.loop(loopCtx)

	s.logger.Info("sweeper_started", "Expiry sweeper started", "", map[string]interface{}{
		"interval": s.interval.String(),
	})
	return nil
}

func (s *Service) loop(ctx context.Context) {
	defer close(s.done)

	s.runSweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *Service) runSweep(ctx context.Context) {
	summary := s.Sweep(ctx)

	s.mu.Lock()
	s.last = &summary
	s.mu.Unlock()
}

// Sweep performs one pass: query stale orders, cancel each independently.
// One order's failure never aborts the rest of the pass.
func (s *Service) Sweep(ctx context.Context) interfaces.SweepSummary {
	summary := interfaces.SweepSummary{StartedAt: s.now()}

	stale, err := s.orders.FindStale(ctx, s.now())
	if err != nil {
		s.logger.Error("sweep_query_failed", "Failed to query stale orders", "", nil, err)
		return summary
	}
	summary.Found = len(stale)

	for _, order := range stale {
		_, err := s.orderSvc.CancelExpired(ctx, order.ID)
		switch {
		case err == nil:
			summary.Cancelled++

		case isAlreadyHandled(err):
			// Someone else (a customer cancel or payment) won the
			// race between the query and this cancel. Expected.
			summary.Skipped++

		default:
			summary.Failed++
			metrics.SweepFailures.Inc()
			s.logger.Error("sweep_cancel_failed", "Failed to cancel stale order", "", map[string]interface{}{
				"order_id": order.ID,
			}, err)
		}
	}

	metrics.SweepTicks.Inc()
	s.logger.Info("sweep_completed", "Expiry sweep completed", "", map[string]interface{}{
		"found":     summary.Found,
		"cancelled": summary.Cancelled,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
	})
	return summary
}

// isAlreadyHandled recognizes races that another actor already resolved.
func isAlreadyHandled(err error) bool {
	var terminal *domain.AlreadyTerminalError
	var invalid *domain.InvalidTransitionError
	return errors.As(err, &terminal) ||
		errors.As(err, &invalid) ||
		errors.Is(err, domain.ErrOrderNotFound)
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("sweeper_stopped", "Expiry sweeper stopped", "", nil)
	return nil
}

func (s *Service) Status() interfaces.SweeperStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return interfaces.SweeperStatus{
		Running:   s.running,
		Interval:  s.interval,
		LastSweep: s.last,
	}
}
