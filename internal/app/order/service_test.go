package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

type fixture struct {
	service   *Service
	menu      *fakeMenuRepo
	orders    *fakeOrderRepo
	users     *fakeUserRepo
	publisher *recordingPublisher
	cache     *memCache
}

func newFixture(items ...*domain.MenuItem) *fixture {
	f := &fixture{
		menu:      newFakeMenuRepo(items...),
		orders:    newFakeOrderRepo(),
		users:     newFakeUserRepo(&domain.User{ID: "user-1", Name: "Aizhan", Email: "aizhan@example.com"}),
		publisher: &recordingPublisher{},
		cache:     newMemCache(),
	}
	f.service = NewService(memDB{}, f.orders, f.menu, f.users, f.publisher, f.cache, nopLogger{}, 15*time.Minute)
	return f
}

func menuItem(id, name string, price float64, quantity int) *domain.MenuItem {
	return &domain.MenuItem{
		ID:          id,
		Name:        name,
		Price:       price,
		Quantity:    quantity,
		IsAvailable: quantity > 0,
	}
}

func TestCreateOrder_ReservesStockAndComputesTotal(t *testing.T) {
	f := newFixture(
		menuItem("item-1", "Plov", 120.0, 10),
		menuItem("item-2", "Lagman", 80.0, 5),
	)
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	f.service.now = func() time.Time { return start }

	order, err := f.service.CreateOrder(context.Background(), interfaces.CreateOrderCommand{
		UserID: "user-1",
		Items: []interfaces.CreateOrderItemCommand{
			{MenuItemID: "item-1", Quantity: 2},
			{MenuItemID: "item-2", Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if order.TotalAmount != 320.0 {
		t.Errorf("Expected total 320.0, got %f", order.TotalAmount)
	}
	if order.Status != domain.StatusPending {
		t.Errorf("Expected status pending, got %s", order.Status)
	}
	if want := start.Add(15 * time.Minute); !order.AutoCancelAt.Equal(want) {
		t.Errorf("Expected auto cancel at %v, got %v", want, order.AutoCancelAt)
	}
	if f.menu.stock("item-1") != 8 {
		t.Errorf("Expected item-1 stock 8, got %d", f.menu.stock("item-1"))
	}
	if f.menu.stock("item-2") != 4 {
		t.Errorf("Expected item-2 stock 4, got %d", f.menu.stock("item-2"))
	}

	stored, err := f.orders.FindByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Expected order to be stored, got: %v", err)
	}
	if len(stored.Lines) != 2 {
		t.Errorf("Expected 2 order lines, got %d", len(stored.Lines))
	}
	if stored.Lines[0].MenuItemName != "Plov" {
		t.Errorf("Expected name snapshot Plov, got %s", stored.Lines[0].MenuItemName)
	}
}

func TestCreateOrder_InsufficientStockLeavesEverythingUntouched(t *testing.T) {
	f := newFixture(
		menuItem("item-1", "Plov", 120.0, 10),
		menuItem("item-2", "Lagman", 80.0, 2),
	)

	_, err := f.service.CreateOrder(context.Background(), interfaces.CreateOrderCommand{
		UserID: "user-1",
		Items: []interfaces.CreateOrderItemCommand{
			{MenuItemID: "item-1", Quantity: 2},
			{MenuItemID: "item-2", Quantity: 3},
		},
	})

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("Expected InsufficientStockError, got: %v", err)
	}
	if stockErr.MenuItemID != "item-2" || stockErr.Requested != 3 || stockErr.Available != 2 {
		t.Errorf("Unexpected error details: %+v", stockErr)
	}

	// The reservation for item-1 must have been rolled back.
	if f.menu.stock("item-1") != 10 {
		t.Errorf("Expected item-1 stock 10 after rollback, got %d", f.menu.stock("item-1"))
	}
	orders, _ := f.orders.ListAll(context.Background())
	if len(orders) != 0 {
		t.Errorf("Expected no stored orders, got %d", len(orders))
	}
}

func TestCreateOrder_RejectsEmptyAndInvalidInput(t *testing.T) {
	f := newFixture(menuItem("item-1", "Plov", 120.0, 10))

	_, err := f.service.CreateOrder(context.Background(), interfaces.CreateOrderCommand{UserID: "user-1"})
	if !errors.Is(err, domain.ErrEmptyOrder) {
		t.Errorf("Expected ErrEmptyOrder, got: %v", err)
	}

	_, err = f.service.CreateOrder(context.Background(), interfaces.CreateOrderCommand{
		UserID: "user-1",
		Items:  []interfaces.CreateOrderItemCommand{{MenuItemID: "item-1", Quantity: -1}},
	})
	var invalidQty *domain.InvalidQuantityError
	if !errors.As(err, &invalidQty) {
		t.Errorf("Expected InvalidQuantityError, got: %v", err)
	}

	if f.menu.stock("item-1") != 10 {
		t.Errorf("Expected stock untouched, got %d", f.menu.stock("item-1"))
	}
}

func TestCreateOrder_UnknownUser(t *testing.T) {
	f := newFixture(menuItem("item-1", "Plov", 120.0, 10))

	_, err := f.service.CreateOrder(context.Background(), interfaces.CreateOrderCommand{
		UserID: "ghost",
		Items:  []interfaces.CreateOrderItemCommand{{MenuItemID: "item-1", Quantity: 1}},
	})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

func TestCreateOrder_LastUnitsThenCancelRestores(t *testing.T) {
	f := newFixture(menuItem("item-1", "Plov", 120.0, 5))

	first := mustCreate(t, f, "item-1", 5)
	if f.menu.stock("item-1") != 0 {
		t.Fatalf("Expected stock 0 after depleting order, got %d", f.menu.stock("item-1"))
	}

	_, err := f.service.CreateOrder(context.Background(), interfaces.CreateOrderCommand{
		UserID: "user-1",
		Items:  []interfaces.CreateOrderItemCommand{{MenuItemID: "item-1", Quantity: 1}},
	})
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("Expected InsufficientStockError for depleted item, got: %v", err)
	}

	if _, err := f.service.CancelOrder(context.Background(), first.ID); err != nil {
		t.Fatalf("Expected cancel to succeed, got: %v", err)
	}
	if f.menu.stock("item-1") != 5 {
		t.Errorf("Expected stock restored to 5, got %d", f.menu.stock("item-1"))
	}
}

func TestCancelOrder_RestoresStock(t *testing.T) {
	f := newFixture(
		menuItem("item-1", "Plov", 120.0, 10),
		menuItem("item-2", "Lagman", 80.0, 5),
	)
	order := mustCreate(t, f, "item-1", 2, "item-2", 1)

	cancelled, err := f.service.CancelOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("Expected status cancelled, got %s", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Error("Expected cancelled_at to be set")
	}
	if f.menu.stock("item-1") != 10 || f.menu.stock("item-2") != 5 {
		t.Errorf("Expected stock restored, got item-1=%d item-2=%d",
			f.menu.stock("item-1"), f.menu.stock("item-2"))
	}
}

func TestCancelOrder_SecondCancelDoesNotReleaseTwice(t *testing.T) {
	f := newFixture(menuItem("item-1", "Plov", 120.0, 10))
	order := mustCreate(t, f, "item-1", 2)

	if _, err := f.service.CancelOrder(context.Background(), order.ID); err != nil {
		t.Fatalf("Expected first cancel to succeed, got: %v", err)
	}

	_, err := f.service.CancelOrder(context.Background(), order.ID)
	var terminal *domain.AlreadyTerminalError
	if !errors.As(err, &terminal) {
		t.Fatalf("Expected AlreadyTerminalError, got: %v", err)
	}

	if f.menu.stock("item-1") != 10 {
		t.Errorf("Expected stock released exactly once, got %d", f.menu.stock("item-1"))
	}
}

func TestCancelOrder_DeletedMenuItemDoesNotBlockCancellation(t *testing.T) {
	f := newFixture(
		menuItem("item-1", "Plov", 120.0, 10),
		menuItem("item-2", "Lagman", 80.0, 5),
	)
	order := mustCreate(t, f, "item-1", 2, "item-2", 1)

	if err := f.menu.Delete(context.Background(), "item-1"); err != nil {
		t.Fatalf("Failed to delete menu item: %v", err)
	}

	cancelled, err := f.service.CancelOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Expected cancel to succeed, got: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("Expected status cancelled, got %s", cancelled.Status)
	}
	if f.menu.stock("item-2") != 5 {
		t.Errorf("Expected surviving item's stock restored, got %d", f.menu.stock("item-2"))
	}
}

func TestCompletePayment_ThenPickup(t *testing.T) {
	f := newFixture(menuItem("item-1", "Plov", 120.0, 10))
	order := mustCreate(t, f, "item-1", 2)

	paid, err := f.service.CompletePayment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Expected payment to succeed, got: %v", err)
	}
	if paid.Status != domain.StatusPaid || paid.PaymentCompletedAt == nil {
		t.Errorf("Expected paid order with timestamp, got %s", paid.Status)
	}

	completed, err := f.service.CompletePickup(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Expected pickup to succeed, got: %v", err)
	}
	if completed.Status != domain.StatusCompleted || completed.PickupCompletedAt == nil {
		t.Errorf("Expected completed order with timestamp, got %s", completed.Status)
	}

	// A completed pickup consumes the reservation: stock stays decremented.
	if f.menu.stock("item-1") != 8 {
		t.Errorf("Expected stock to stay at 8, got %d", f.menu.stock("item-1"))
	}
}

func TestCompletePickup_RequiresPayment(t *testing.T) {
	f := newFixture(menuItem("item-1", "Plov", 120.0, 10))
	order := mustCreate(t, f, "item-1", 1)

	_, err := f.service.CompletePickup(context.Background(), order.ID)
	var invalid *domain.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected InvalidTransitionError, got: %v", err)
	}
	if err.Error() != "payment must be completed before pickup" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestCompletePayment_OnCancelledOrder(t *testing.T) {
	f := newFixture(menuItem("item-1", "Plov", 120.0, 10))
	order := mustCreate(t, f, "item-1", 1)

	if _, err := f.service.CancelOrder(context.Background(), order.ID); err != nil {
		t.Fatalf("Expected cancel to succeed, got: %v", err)
	}

	_, err := f.service.CompletePayment(context.Background(), order.ID)
	var invalid *domain.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected InvalidTransitionError, got: %v", err)
	}
}

func TestCancelExpired_PaidOrderIsLeftAlone(t *testing.T) {
	f := newFixture(menuItem("item-1", "Plov", 120.0, 10))
	order := mustCreate(t, f, "item-1", 2)

	if _, err := f.service.CompletePayment(context.Background(), order.ID); err != nil {
		t.Fatalf("Expected payment to succeed, got: %v", err)
	}

	// Payment slipped in between the stale query and the sweeper's cancel.
	_, err := f.service.CancelExpired(context.Background(), order.ID)
	var invalid *domain.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected InvalidTransitionError, got: %v", err)
	}

	if f.menu.stock("item-1") != 8 {
		t.Errorf("Expected stock untouched for paid order, got %d", f.menu.stock("item-1"))
	}
	got, _ := f.orders.FindByID(context.Background(), order.ID)
	if got.Status != domain.StatusPaid {
		t.Errorf("Expected order to stay paid, got %s", got.Status)
	}
}

func TestCancelExpired_PendingOrderIsCancelled(t *testing.T) {
	f := newFixture(menuItem("item-1", "Plov", 120.0, 10))
	order := mustCreate(t, f, "item-1", 2)

	cancelled, err := f.service.CancelExpired(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("Expected status cancelled, got %s", cancelled.Status)
	}
	if f.menu.stock("item-1") != 10 {
		t.Errorf("Expected stock restored, got %d", f.menu.stock("item-1"))
	}

	last := f.publisher.messages[len(f.publisher.messages)-1]
	if last.ChangedBy != "expiry-sweeper" {
		t.Errorf("Expected change attributed to expiry-sweeper, got %s", last.ChangedBy)
	}
}

func TestGetOrderStatus_UsesCache(t *testing.T) {
	f := newFixture(menuItem("item-1", "Plov", 120.0, 10))
	order := mustCreate(t, f, "item-1", 1)

	status, err := f.service.GetOrderStatus(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if status != domain.StatusPending {
		t.Errorf("Expected pending, got %s", status)
	}

	// Drop the backing order; the cached entry must still answer.
	delete(f.orders.orders, order.ID)

	status, err = f.service.GetOrderStatus(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Expected cache hit, got: %v", err)
	}
	if status != domain.StatusPending {
		t.Errorf("Expected pending from cache, got %s", status)
	}
}

func TestStatusChanges_ArePublished(t *testing.T) {
	f := newFixture(menuItem("item-1", "Plov", 120.0, 10))
	order := mustCreate(t, f, "item-1", 1)

	if _, err := f.service.CompletePayment(context.Background(), order.ID); err != nil {
		t.Fatalf("Expected payment to succeed, got: %v", err)
	}

	if len(f.publisher.messages) != 2 {
		t.Fatalf("Expected 2 published messages, got %d", len(f.publisher.messages))
	}
	created, paid := f.publisher.messages[0], f.publisher.messages[1]
	if created.NewStatus != domain.StatusPending || created.OrderID != order.ID {
		t.Errorf("Unexpected creation event: %+v", created)
	}
	if paid.NewStatus != domain.StatusPaid {
		t.Errorf("Unexpected payment event: %+v", paid)
	}
}

func mustCreate(t *testing.T, f *fixture, pairs ...any) *domain.Order {
	t.Helper()

	var items []interfaces.CreateOrderItemCommand
	for i := 0; i < len(pairs); i += 2 {
		items = append(items, interfaces.CreateOrderItemCommand{
			MenuItemID: pairs[i].(string),
			Quantity:   pairs[i+1].(int),
		})
	}

	order, err := f.service.CreateOrder(context.Background(), interfaces.CreateOrderCommand{
		UserID: "user-1",
		Items:  items,
	})
	if err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}
	return order
}
