package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/canteen/internal/domain"
)

// Команды для сервисов
type CreateOrderCommand struct {
	UserID string
	Items  []CreateOrderItemCommand
}

type CreateOrderItemCommand struct {
	MenuItemID string
	Quantity   int
}

type CreateMenuItemCommand struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
}

type UpdateMenuItemCommand struct {
	Name        *string
	Description *string
	Price       *float64
}

type CreateUserCommand struct {
	Name  string
	Email string
	Phone string
}

type UpdateUserCommand struct {
	Name  *string
	Email *string
	Phone *string
}

// OrderService is the reservation coordinator: the only writer that touches
// both the stock ledger and the order store, always inside one transaction.
type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
	CancelOrder(ctx context.Context, id string) (*domain.Order, error)
	CompletePayment(ctx context.Context, id string) (*domain.Order, error)
	CompletePickup(ctx context.Context, id string) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	GetOrderStatus(ctx context.Context, id string) (domain.Status, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error)
}

type MenuService interface {
	CreateItem(ctx context.Context, cmd CreateMenuItemCommand) (*domain.MenuItem, error)
	GetItem(ctx context.Context, id string) (*domain.MenuItem, error)
	ListItems(ctx context.Context) ([]*domain.MenuItem, error)
	ListAvailableItems(ctx context.Context) ([]*domain.MenuItem, error)
	UpdateItem(ctx context.Context, id string, cmd UpdateMenuItemCommand) (*domain.MenuItem, error)
	SetStock(ctx context.Context, id string, quantity int) (*domain.MenuItem, error)
	DeleteItem(ctx context.Context, id string) error
}

type UserService interface {
	Register(ctx context.Context, cmd CreateUserCommand) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, id string, cmd UpdateUserCommand) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// SweepSummary reports one pass of the expiry sweeper.
type SweepSummary struct {
	StartedAt time.Time `json:"started_at"`
	Found     int       `json:"found"`
	Cancelled int       `json:"cancelled"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
}

// SweeperStatus describes the sweeper's lifecycle state.
type SweeperStatus struct {
	Running   bool          `json:"running"`
	Interval  time.Duration `json:"-"`
	LastSweep *SweepSummary `json:"last_sweep,omitempty"`
}

type SweeperService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Status() SweeperStatus
}
