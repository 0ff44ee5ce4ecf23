package order

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

// The fakes below back the service tests with the same transactional
// contract the postgres adapter provides: mutations register undo funcs on
// the transaction, and Rollback unwinds them unless Commit ran first.

type nopLogger struct{}

func (nopLogger) Info(action, message, requestID string, details map[string]interface{})  {}
func (nopLogger) Debug(action, message, requestID string, details map[string]interface{}) {}
func (nopLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
}

type memDB struct{}

func (memDB) Query(ctx context.Context, sql string, args ...any) (interfaces.Rows, error) {
	return nil, errors.New("not implemented")
}
func (memDB) QueryRow(ctx context.Context, sql string, args ...any) interfaces.Row { return nil }
func (memDB) Exec(ctx context.Context, sql string, args ...any) (interfaces.CommandTag, error) {
	return nil, errors.New("not implemented")
}
func (memDB) Begin(ctx context.Context) (interfaces.Tx, error) { return &memTx{}, nil }
func (memDB) Close()                                           {}

type memTx struct {
	committed bool
	undo      []func()
}

func (t *memTx) Query(ctx context.Context, sql string, args ...any) (interfaces.Rows, error) {
	return nil, errors.New("not implemented")
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) interfaces.Row { return nil }
func (t *memTx) Exec(ctx context.Context, sql string, args ...any) (interfaces.CommandTag, error) {
	return nil, errors.New("not implemented")
}

func (t *memTx) Commit(ctx context.Context) error {
	t.committed = true
	t.undo = nil
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.committed {
		return nil
	}
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.committed = true
	return nil
}

func onRollback(tx interfaces.Tx, undo func()) {
	tx.(*memTx).undo = append(tx.(*memTx).undo, undo)
}

type fakeMenuRepo struct {
	items map[string]*domain.MenuItem
}

func newFakeMenuRepo(items ...*domain.MenuItem) *fakeMenuRepo {
	r := &fakeMenuRepo{items: make(map[string]*domain.MenuItem)}
	for _, item := range items {
		r.items[item.ID] = item
	}
	return r
}

func (r *fakeMenuRepo) Create(ctx context.Context, item *domain.MenuItem) error {
	r.items[item.ID] = item
	return nil
}

func (r *fakeMenuRepo) FindByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, domain.ErrMenuItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *fakeMenuRepo) ListAll(ctx context.Context) ([]*domain.MenuItem, error) {
	return r.list(func(*domain.MenuItem) bool { return true }), nil
}

func (r *fakeMenuRepo) ListAvailable(ctx context.Context) ([]*domain.MenuItem, error) {
	return r.list(func(m *domain.MenuItem) bool { return m.IsAvailable }), nil
}

func (r *fakeMenuRepo) list(keep func(*domain.MenuItem) bool) []*domain.MenuItem {
	var out []*domain.MenuItem
	for _, item := range r.items {
		if keep(item) {
			copied := *item
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeMenuRepo) Update(ctx context.Context, item *domain.MenuItem) error {
	if _, ok := r.items[item.ID]; !ok {
		return domain.ErrMenuItemNotFound
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeMenuRepo) SetStock(ctx context.Context, id string, quantity int) (*domain.MenuItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, domain.ErrMenuItemNotFound
	}
	item.Quantity = quantity
	item.RecalcAvailability()
	copied := *item
	return &copied, nil
}

func (r *fakeMenuRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return domain.ErrMenuItemNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeMenuRepo) Reserve(ctx context.Context, tx interfaces.Tx, id string, quantity int) (*domain.MenuItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, domain.ErrMenuItemNotFound
	}
	if !item.IsAvailable || item.Quantity < quantity {
		return nil, &domain.InsufficientStockError{
			MenuItemID: id,
			Name:       item.Name,
			Requested:  quantity,
			Available:  item.Quantity,
		}
	}

	prev := *item
	item.Quantity -= quantity
	item.RecalcAvailability()
	onRollback(tx, func() { *item = prev })

	copied := *item
	return &copied, nil
}

func (r *fakeMenuRepo) Release(ctx context.Context, tx interfaces.Tx, id string, quantity int) (*domain.MenuItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, domain.ErrMenuItemNotFound
	}

	prev := *item
	item.Quantity += quantity
	item.IsAvailable = true
	onRollback(tx, func() { *item = prev })

	copied := *item
	return &copied, nil
}

func (r *fakeMenuRepo) stock(id string) int {
	return r.items[id].Quantity
}

type fakeOrderRepo struct {
	orders map[string]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func cloneOrder(order *domain.Order) *domain.Order {
	copied := *order
	copied.Lines = make([]domain.OrderLine, len(order.Lines))
	copy(copied.Lines, order.Lines)
	return &copied
}

func (r *fakeOrderRepo) Insert(ctx context.Context, tx interfaces.Tx, order *domain.Order) error {
	r.orders[order.ID] = cloneOrder(order)
	onRollback(tx, func() { delete(r.orders, order.ID) })
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (r *fakeOrderRepo) ListAll(ctx context.Context) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range r.orders {
		out = append(out, cloneOrder(order))
	}
	return out, nil
}

func (r *fakeOrderRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			out = append(out, cloneOrder(order))
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) LockByID(ctx context.Context, tx interfaces.Tx, id string) (*domain.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeOrderRepo) Transition(ctx context.Context, tx interfaces.Tx, id string, target domain.Status) (*domain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	if !order.Status.CanTransitionTo(target) {
		if target == domain.StatusCancelled && order.Status.IsTerminal() {
			return nil, &domain.AlreadyTerminalError{Status: order.Status}
		}
		return nil, &domain.InvalidTransitionError{Current: order.Status, Target: target}
	}

	prev := *order
	now := time.Now()
	order.Status = target
	switch target {
	case domain.StatusPaid:
		order.PaymentCompletedAt = &now
	case domain.StatusCompleted:
		order.PickupCompletedAt = &now
	case domain.StatusCancelled:
		order.CancelledAt = &now
	}
	onRollback(tx, func() {
		lines := order.Lines
		*order = prev
		order.Lines = lines
	})

	return cloneOrder(order), nil
}

func (r *fakeOrderRepo) FindStale(ctx context.Context, now time.Time) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range r.orders {
		if order.Status == domain.StatusPending && !order.AutoCancelAt.After(now) {
			out = append(out, cloneOrder(order))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AutoCancelAt.Before(out[j].AutoCancelAt) })
	return out, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, user := range users {
		r.users[user.ID] = user
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) ListAll(ctx context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type recordingPublisher struct {
	messages []interfaces.OrderStatusMessage
}

func (p *recordingPublisher) PublishOrderStatus(ctx context.Context, msg interfaces.OrderStatusMessage) error {
	p.messages = append(p.messages, msg)
	return nil
}

type memCache struct {
	statuses map[string]domain.Status
}

func newMemCache() *memCache {
	return &memCache{statuses: make(map[string]domain.Status)}
}

func (c *memCache) SetStatus(ctx context.Context, orderID string, status domain.Status) error {
	c.statuses[orderID] = status
	return nil
}

func (c *memCache) GetStatus(ctx context.Context, orderID string) (domain.Status, error) {
	status, ok := c.statuses[orderID]
	if !ok {
		return "", interfaces.ErrCacheMiss
	}
	return status, nil
}
