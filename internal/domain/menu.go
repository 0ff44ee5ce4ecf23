package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MenuItem represents a catalog entry with its available stock. Quantity is
// only ever mutated through the stock ledger operations of the menu
// repository; IsAvailable is derived from quantity > 0.
type MenuItem struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Quantity    int
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewMenuItem creates a catalog entry with business rules applied.
func NewMenuItem(name, description string, price float64, quantity int) (*MenuItem, error) {
	if name == "" {
		return nil, errors.New("menu item name is required")
	}
	if price < 0 {
		return nil, errors.New("menu item price cannot be negative")
	}
	if quantity < 0 {
		return nil, errors.New("menu item quantity cannot be negative")
	}

	now := time.Now()
	return &MenuItem{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Price:       price,
		Quantity:    quantity,
		IsAvailable: quantity > 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// RecalcAvailability re-derives the availability flag from the quantity.
func (m *MenuItem) RecalcAvailability() {
	m.IsAvailable = m.Quantity > 0
}
