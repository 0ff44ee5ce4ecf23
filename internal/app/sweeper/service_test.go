package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

type nopLogger struct{}

func (nopLogger) Info(action, message, requestID string, details map[string]interface{})  {}
func (nopLogger) Debug(action, message, requestID string, details map[string]interface{}) {}
func (nopLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
}

// staleRepo serves a fixed stale set; nothing else is used by the sweeper.
type staleRepo struct {
	interfaces.OrderRepository
	stale []*domain.Order
	err   error
}

func (r *staleRepo) FindStale(ctx context.Context, now time.Time) ([]*domain.Order, error) {
	return r.stale, r.err
}

// scriptedCanceller returns a per-order result and records the call order.
type scriptedCanceller struct {
	results map[string]error
	calls   []string
}

func (c *scriptedCanceller) CancelExpired(ctx context.Context, id string) (*domain.Order, error) {
	c.calls = append(c.calls, id)
	if err := c.results[id]; err != nil {
		return nil, err
	}
	return &domain.Order{ID: id, Status: domain.StatusCancelled}, nil
}

func staleOrders(ids ...string) []*domain.Order {
	out := make([]*domain.Order, len(ids))
	for i, id := range ids {
		out[i] = &domain.Order{ID: id, Status: domain.StatusPending}
	}
	return out
}

func TestSweep_CancelsEveryStaleOrder(t *testing.T) {
	canceller := &scriptedCanceller{results: map[string]error{}}
	s := NewService(&staleRepo{stale: staleOrders("o1", "o2", "o3")}, canceller, nopLogger{}, time.Minute)

	summary := s.Sweep(context.Background())

	if summary.Found != 3 || summary.Cancelled != 3 {
		t.Errorf("Expected 3 found and cancelled, got %+v", summary)
	}
	if len(canceller.calls) != 3 {
		t.Errorf("Expected 3 cancel calls, got %d", len(canceller.calls))
	}
}

func TestSweep_SkipsOrdersAnotherActorHandled(t *testing.T) {
	canceller := &scriptedCanceller{results: map[string]error{
		"gone":     domain.ErrOrderNotFound,
		"terminal": &domain.AlreadyTerminalError{Status: domain.StatusCancelled},
		"paid":     &domain.InvalidTransitionError{Current: domain.StatusPaid, Target: domain.StatusCancelled},
	}}
	s := NewService(&staleRepo{stale: staleOrders("gone", "terminal", "paid", "o4")}, canceller, nopLogger{}, time.Minute)

	summary := s.Sweep(context.Background())

	if summary.Found != 4 {
		t.Errorf("Expected 4 found, got %d", summary.Found)
	}
	if summary.Skipped != 3 {
		t.Errorf("Expected 3 skipped, got %d", summary.Skipped)
	}
	if summary.Cancelled != 1 {
		t.Errorf("Expected 1 cancelled, got %d", summary.Cancelled)
	}
	if summary.Failed != 0 {
		t.Errorf("Expected no failures, got %d", summary.Failed)
	}
}

func TestSweep_OneFailureDoesNotAbortThePass(t *testing.T) {
	canceller := &scriptedCanceller{results: map[string]error{
		"bad": errors.New("connection reset"),
	}}
	s := NewService(&staleRepo{stale: staleOrders("bad", "o2")}, canceller, nopLogger{}, time.Minute)

	summary := s.Sweep(context.Background())

	if summary.Failed != 1 || summary.Cancelled != 1 {
		t.Errorf("Expected 1 failed and 1 cancelled, got %+v", summary)
	}
	if len(canceller.calls) != 2 {
		t.Errorf("Expected both orders attempted, got %d calls", len(canceller.calls))
	}
}

func TestSweep_QueryFailureReturnsEmptySummary(t *testing.T) {
	canceller := &scriptedCanceller{results: map[string]error{}}
	s := NewService(&staleRepo{err: errors.New("db down")}, canceller, nopLogger{}, time.Minute)

	summary := s.Sweep(context.Background())

	if summary.Found != 0 || summary.Cancelled != 0 {
		t.Errorf("Expected empty summary, got %+v", summary)
	}
	if len(canceller.calls) != 0 {
		t.Errorf("Expected no cancel calls, got %d", len(canceller.calls))
	}
}

func TestStartStop_Lifecycle(t *testing.T) {
	canceller := &scriptedCanceller{results: map[string]error{}}
	s := NewService(&staleRepo{}, canceller, nopLogger{}, time.Hour)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Expected start to succeed, got: %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Expected ErrAlreadyRunning, got: %v", err)
	}

	status := s.Status()
	if !status.Running {
		t.Error("Expected status running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Expected stop to succeed, got: %v", err)
	}
	if err := s.Stop(ctx); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Expected ErrNotRunning, got: %v", err)
	}

	if s.Status().Running {
		t.Error("Expected status stopped")
	}
}

func TestStart_RunsAnImmediateSweep(t *testing.T) {
	canceller := &scriptedCanceller{results: map[string]error{}}
	s := NewService(&staleRepo{stale: staleOrders("o1")}, canceller, nopLogger{}, time.Hour)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Expected start to succeed, got: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		if last := s.Status().LastSweep; last != nil {
			if last.Cancelled != 1 {
				t.Errorf("Expected 1 cancelled in first sweep, got %+v", last)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for the first sweep")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Expected stop to succeed, got: %v", err)
	}
}
