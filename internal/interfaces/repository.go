package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/canteen/internal/domain"
)

// MenuRepository owns the menu catalog and the stock ledger. Reserve and
// Release run inside a caller-supplied transaction and take a row-level
// exclusive lock on the item, so concurrent reservations for the same item
// serialize and quantity can never go negative.
type MenuRepository interface {
	Create(ctx context.Context, item *domain.MenuItem) error
	FindByID(ctx context.Context, id string) (*domain.MenuItem, error)
	ListAll(ctx context.Context) ([]*domain.MenuItem, error)
	ListAvailable(ctx context.Context) ([]*domain.MenuItem, error)
	Update(ctx context.Context, item *domain.MenuItem) error
	SetStock(ctx context.Context, id string, quantity int) (*domain.MenuItem, error)
	Delete(ctx context.Context, id string) error

	// Reserve decrements the item's quantity by the given amount, failing
	// with domain.InsufficientStockError when the quantity would go
	// negative. No mutation happens on failure.
	Reserve(ctx context.Context, tx Tx, id string, quantity int) (*domain.MenuItem, error)
	// Release increments the item's quantity and marks it available again.
	Release(ctx context.Context, tx Tx, id string, quantity int) (*domain.MenuItem, error)
}

// OrderRepository owns order aggregates and enforces the status machine.
type OrderRepository interface {
	Insert(ctx context.Context, tx Tx, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)

	// LockByID loads the aggregate under a row-level exclusive lock, so a
	// cancellation's terminal-status check, stock release and transition
	// all observe one consistent order state.
	LockByID(ctx context.Context, tx Tx, id string) (*domain.Order, error)

	// Transition atomically moves the order to the target status and sets
	// the status timestamp. It fails with domain.ErrOrderNotFound,
	// domain.AlreadyTerminalError or domain.InvalidTransitionError without
	// mutating anything.
	Transition(ctx context.Context, tx Tx, id string, target domain.Status) (*domain.Order, error)

	// FindStale returns pending orders whose payment deadline elapsed.
	FindStale(ctx context.Context, now time.Time) ([]*domain.Order, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ListAll(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}
