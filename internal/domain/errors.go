package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrEmptyOrder       = errors.New("order must contain at least one item")
	ErrDuplicateEmail   = errors.New("a user with this email already exists")
)

// InvalidQuantityError is returned when a requested line quantity is zero or
// negative.
type InvalidQuantityError struct {
	MenuItemID string
	Quantity   int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for menu item %s", e.Quantity, e.MenuItemID)
}

// InsufficientStockError is returned by a reserve attempt that would drive an
// item's quantity below zero. It names the offending item and what was left.
type InsufficientStockError struct {
	MenuItemID string
	Name       string
	Requested  int
	Available  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.Name, e.Requested, e.Available)
}

// InvalidTransitionError is returned when the order's current status is not a
// legal predecessor of the requested status.
type InvalidTransitionError struct {
	Current Status
	Target  Status
}

func (e *InvalidTransitionError) Error() string {
	switch e.Target {
	case StatusPaid:
		return fmt.Sprintf("cannot complete payment: order status is %s", e.Current)
	case StatusCompleted:
		return "payment must be completed before pickup"
	default:
		return fmt.Sprintf("cannot transition order from %s to %s", e.Current, e.Target)
	}
}

// AlreadyTerminalError is returned when a cancellation targets an order that
// already reached completed or cancelled.
type AlreadyTerminalError struct {
	Status Status
}

func (e *AlreadyTerminalError) Error() string {
	return fmt.Sprintf("cannot cancel order: order is already %s", e.Status)
}
