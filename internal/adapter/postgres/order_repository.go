package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"

	"github.com/jackc/pgx/v5"
)

type orderRepository struct {
	db interfaces.DB
}

func NewOrderRepository(db interfaces.DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

// queryer is satisfied by both the pool and a transaction, so aggregate
// loading works inside and outside a unit of work.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (interfaces.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) interfaces.Row
}

const orderColumns = `id, user_id, status, total_amount, created_at, auto_cancel_at,
	payment_completed_at, pickup_completed_at, cancelled_at`

// statusTimestamp names the write-once column set alongside each transition.
var statusTimestamp = map[domain.Status]string{
	domain.StatusPaid:      "payment_completed_at",
	domain.StatusCompleted: "pickup_completed_at",
	domain.StatusCancelled: "cancelled_at",
}

func (r *orderRepository) Insert(ctx context.Context, tx interfaces.Tx, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, user_id, status, total_amount, created_at, auto_cancel_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.Exec(ctx, query,
		order.ID, order.UserID, order.Status, order.TotalAmount, order.CreatedAt, order.AutoCancelAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, line := range order.Lines {
		lineQuery := `
			INSERT INTO order_lines (id, order_id, menu_item_id, menu_item_name, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err := tx.Exec(ctx, lineQuery,
			line.ID, line.OrderID, line.MenuItemID, line.MenuItemName, line.Quantity, line.Price,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order line: %w", err)
		}
	}

	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.findByID(ctx, r.db, id, "")
}

// LockByID loads the aggregate with the orders row locked for the rest of the
// transaction.
func (r *orderRepository) LockByID(ctx context.Context, tx interfaces.Tx, id string) (*domain.Order, error) {
	return r.findByID(ctx, tx, id, " FOR UPDATE")
}

func (r *orderRepository) findByID(ctx context.Context, q queryer, id, suffix string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1` + suffix

	order, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, q, order); err != nil {
		return nil, err
	}
	return order, nil
}

func scanOrder(row interfaces.Row) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID, &order.UserID, &order.Status, &order.TotalAmount,
		&order.CreatedAt, &order.AutoCancelAt,
		&order.PaymentCompletedAt, &order.PickupCompletedAt, &order.CancelledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) loadLines(ctx context.Context, q queryer, order *domain.Order) error {
	query := `
		SELECT id, order_id, menu_item_id, menu_item_name, quantity, price
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := q.Query(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.ID, &line.OrderID, &line.MenuItemID, &line.MenuItemName, &line.Quantity, &line.Price,
		); err != nil {
			return fmt.Errorf("failed to scan order line: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	return rows.Err()
}

func (r *orderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return r.listWhere(ctx, ``)
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return r.listWhere(ctx, ` WHERE user_id = $1`, userID)
}

func (r *orderRepository) listWhere(ctx context.Context, where string, args ...any) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders` + where + ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}

	for _, order := range orders {
		if err := r.loadLines(ctx, r.db, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func collectOrders(rows interfaces.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID, &order.UserID, &order.Status, &order.TotalAmount,
			&order.CreatedAt, &order.AutoCancelAt,
			&order.PaymentCompletedAt, &order.PickupCompletedAt, &order.CancelledAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, &order)
	}
	return orders, rows.Err()
}

// Transition moves the order to the target status and stamps the matching
// timestamp column in one guarded UPDATE. The status read and the write
// happen under the same row lock, so a racing transition observes either the
// old or the new status, never a half-applied one.
func (r *orderRepository) Transition(ctx context.Context, tx interfaces.Tx, id string, target domain.Status) (*domain.Order, error) {
	var current domain.Status
	err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	if !current.CanTransitionTo(target) {
		if target == domain.StatusCancelled && current.IsTerminal() {
			return nil, &domain.AlreadyTerminalError{Status: current}
		}
		return nil, &domain.InvalidTransitionError{Current: current, Target: target}
	}

	column := statusTimestamp[target]
	query := fmt.Sprintf(
		`UPDATE orders SET status = $1, %s = $2 WHERE id = $3 AND status = $4`, column)
	ct, err := tx.Exec(ctx, query, target, time.Now(), id, current)
	if err != nil {
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}
	if ct.RowsAffected() != 1 {
		return nil, fmt.Errorf("order %s changed status concurrently", id)
	}

	return r.findByID(ctx, tx, id, "")
}

func (r *orderRepository) FindStale(ctx context.Context, now time.Time) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE status = $1 AND auto_cancel_at <= $2
		ORDER BY auto_cancel_at`

	rows, err := r.db.Query(ctx, query, domain.StatusPending, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}

	for _, order := range orders {
		if err := r.loadLines(ctx, r.db, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}
