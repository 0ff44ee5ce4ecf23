package order

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/adapter/metrics"
	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

// Service coordinates reservations: it is the only writer that touches both
// the stock ledger and the order store, and it always does so inside a single
// transaction so a failure partway leaves stock and orders untouched.
type Service struct {
	db            interfaces.DB
	orders        interfaces.OrderRepository
	menu          interfaces.MenuRepository
	users         interfaces.UserRepository
	publisher     interfaces.MessagePublisher
	cache         interfaces.StatusCache
	logger        logger.Logger
	paymentWindow time.Duration

	// now is swapped out in tests.
	now func() time.Time
}

func NewService(
	db interfaces.DB,
	orders interfaces.OrderRepository,
	menu interfaces.MenuRepository,
	users interfaces.UserRepository,
	publisher interfaces.MessagePublisher,
	cache interfaces.StatusCache,
	logger logger.Logger,
	paymentWindow time.Duration,
) *Service {
	return &Service{
		db:            db,
		orders:        orders,
		menu:          menu,
		users:         users,
		publisher:     publisher,
		cache:         cache,
		logger:        logger,
		paymentWindow: paymentWindow,
		now:           time.Now,
	}
}

// CreateOrder reserves stock for every requested item and inserts the order
// in one unit of work. Locks are acquired in ascending menu item id order, so
// two orders touching the same items in different request order cannot
// deadlock each other.
func (s *Service) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (*domain.Order, error) {
	if len(cmd.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	for _, item := range cmd.Items {
		if item.Quantity <= 0 {
			return nil, &domain.InvalidQuantityError{MenuItemID: item.MenuItemID, Quantity: item.Quantity}
		}
	}

	if _, err := s.users.FindByID(ctx, cmd.UserID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Canonical lock order.
	toReserve := make([]interfaces.CreateOrderItemCommand, len(cmd.Items))
	copy(toReserve, cmd.Items)
	sort.Slice(toReserve, func(i, j int) bool { return toReserve[i].MenuItemID < toReserve[j].MenuItemID })

	reserved := make(map[string]*domain.MenuItem, len(toReserve))
	for _, item := range toReserve {
		menuItem, err := s.menu.Reserve(ctx, tx, item.MenuItemID, item.Quantity)
		if err != nil {
			var stockErr *domain.InsufficientStockError
			if errors.As(err, &stockErr) {
				metrics.StockRejections.Inc()
			}
			// Rollback via defer undoes every prior reservation.
			return nil, err
		}
		reserved[item.MenuItemID] = menuItem
	}

	// Line snapshots keep the caller-supplied order; name and price are
	// frozen from the locked rows.
	lines := make([]domain.OrderLine, len(cmd.Items))
	for i, item := range cmd.Items {
		menuItem := reserved[item.MenuItemID]
		lines[i] = domain.OrderLine{
			MenuItemID:   menuItem.ID,
			MenuItemName: menuItem.Name,
			Quantity:     item.Quantity,
			Price:        menuItem.Price,
		}
	}

	order, err := domain.NewOrder(cmd.UserID, lines, s.now(), s.paymentWindow)
	if err != nil {
		return nil, err
	}

	if err := s.orders.Insert(ctx, tx, order); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	s.logger.Debug("order_created", "Order created with stock reserved", "", map[string]interface{}{
		"order_id":       order.ID,
		"total_amount":   order.TotalAmount,
		"auto_cancel_at": order.AutoCancelAt,
	})
	s.notifyStatus(ctx, order, "", "customer")

	return order, nil
}

// CancelOrder is the customer-initiated cancellation path.
func (s *Service) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.cancel(ctx, id, "customer", false)
}

// CancelExpired is the sweeper's entry into the same cancellation path. It
// only proceeds while the order is still pending: if a payment slipped in
// between the stale query and this call, the payment wins.
func (s *Service) CancelExpired(ctx context.Context, id string) (*domain.Order, error) {
	return s.cancel(ctx, id, "expiry-sweeper", true)
}

// cancel releases every line's stock and flips the status to cancelled in one
// transaction. The terminal-status check happens under the order's row lock,
// which is what makes a cancel racing another cancel (or a payment) release
// stock at most once.
func (s *Service) cancel(ctx context.Context, id, initiator string, requirePending bool) (*domain.Order, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	order, err := s.orders.LockByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, &domain.AlreadyTerminalError{Status: order.Status}
	}
	if requirePending && order.Status != domain.StatusPending {
		return nil, &domain.InvalidTransitionError{Current: order.Status, Target: domain.StatusCancelled}
	}

	lines := make([]domain.OrderLine, len(order.Lines))
	copy(lines, order.Lines)
	sort.Slice(lines, func(i, j int) bool { return lines[i].MenuItemID < lines[j].MenuItemID })

	for _, line := range lines {
		if _, err := s.menu.Release(ctx, tx, line.MenuItemID, line.Quantity); err != nil {
			// A menu item deleted while the order was pending must not
			// block the cancellation.
			if errors.Is(err, domain.ErrMenuItemNotFound) {
				s.logger.Debug("release_skipped", "Menu item deleted, skipping stock release", "", map[string]interface{}{
					"order_id":     id,
					"menu_item_id": line.MenuItemID,
				})
				continue
			}
			return nil, err
		}
	}

	oldStatus := order.Status
	cancelled, err := s.orders.Transition(ctx, tx, id, domain.StatusCancelled)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.OrdersCancelled.WithLabelValues(initiator).Inc()
	s.logger.Info("order_cancelled", "Order cancelled, stock restored", "", map[string]interface{}{
		"order_id":  id,
		"initiator": initiator,
	})
	s.notifyStatus(ctx, cancelled, oldStatus, initiator)

	return cancelled, nil
}

// CompletePayment moves a pending order to paid.
func (s *Service) CompletePayment(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.transition(ctx, id, domain.StatusPaid, "customer")
	if err != nil {
		return nil, err
	}
	metrics.PaymentsCompleted.Inc()
	return order, nil
}

// CompletePickup moves a paid order to completed, consuming the reservation.
func (s *Service) CompletePickup(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.transition(ctx, id, domain.StatusCompleted, "customer")
	if err != nil {
		return nil, err
	}
	metrics.PickupsCompleted.Inc()
	return order, nil
}

func (s *Service) transition(ctx context.Context, id string, target domain.Status, changedBy string) (*domain.Order, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	order, err := s.orders.Transition(ctx, tx, id, target)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Debug("order_transitioned", "Order status updated", "", map[string]interface{}{
		"order_id": id,
		"status":   target,
	})
	s.notifyStatus(ctx, order, "", changedBy)

	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// GetOrderStatus serves status polling from the cache, falling back to the
// store on a miss.
func (s *Service) GetOrderStatus(ctx context.Context, id string) (domain.Status, error) {
	if status, err := s.cache.GetStatus(ctx, id); err == nil {
		return status, nil
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.cache.SetStatus(ctx, id, order.Status); err != nil {
		s.logger.Debug("status_cache_failed", "Failed to cache order status", "", map[string]interface{}{"order_id": id})
	}
	return order.Status, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.ListAll(ctx)
}

func (s *Service) ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// notifyStatus updates the status cache and broadcasts the change. Both are
// best-effort: the transaction has already committed.
func (s *Service) notifyStatus(ctx context.Context, order *domain.Order, old domain.Status, changedBy string) {
	if err := s.cache.SetStatus(ctx, order.ID, order.Status); err != nil {
		s.logger.Debug("status_cache_failed", "Failed to cache order status", "", map[string]interface{}{"order_id": order.ID})
	}

	msg := interfaces.OrderStatusMessage{
		OrderID:     order.ID,
		UserID:      order.UserID,
		OldStatus:   old,
		NewStatus:   order.Status,
		TotalAmount: order.TotalAmount,
		ChangedBy:   changedBy,
		Timestamp:   s.now(),
	}
	if err := s.publisher.PublishOrderStatus(ctx, msg); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish order status", "", map[string]interface{}{
			"order_id": order.ID,
		}, err)
	}
}
