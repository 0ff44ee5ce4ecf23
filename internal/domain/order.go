package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is the aggregate root for a placed order. Line snapshots and the
// total are written once at creation and never change afterwards; only the
// status and its companion timestamps are mutable.
type Order struct {
	ID                 string
	UserID             string
	Lines              []OrderLine
	TotalAmount        float64
	Status             Status
	CreatedAt          time.Time
	AutoCancelAt       time.Time
	PaymentCompletedAt *time.Time
	PickupCompletedAt  *time.Time
	CancelledAt        *time.Time
}

// OrderLine is one (menu item, quantity, captured price) entry. The name and
// price are frozen copies taken from the menu item when the order was placed,
// so later catalog edits never change what the customer was charged.
type OrderLine struct {
	ID           string
	OrderID      string
	MenuItemID   string
	MenuItemName string
	Quantity     int
	Price        float64
}

// Subtotal returns price × quantity for this line.
func (l OrderLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// NewOrder assembles a pending order from captured line snapshots. The
// payment deadline is fixed here and never extended.
func NewOrder(userID string, lines []OrderLine, now time.Time, paymentWindow time.Duration) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	orderID := uuid.NewString()

	var total float64
	for i := range lines {
		if lines[i].Quantity < 1 {
			return nil, &InvalidQuantityError{MenuItemID: lines[i].MenuItemID, Quantity: lines[i].Quantity}
		}
		if lines[i].ID == "" {
			lines[i].ID = uuid.NewString()
		}
		lines[i].OrderID = orderID
		total += lines[i].Subtotal()
	}

	return &Order{
		ID:           orderID,
		UserID:       userID,
		Lines:        lines,
		TotalAmount:  total,
		Status:       StatusPending,
		CreatedAt:    now,
		AutoCancelAt: now.Add(paymentWindow),
	}, nil
}

// CanTransitionTo checks if the order can transition to the new status.
func (o *Order) CanTransitionTo(target Status) bool {
	return o.Status.CanTransitionTo(target)
}
