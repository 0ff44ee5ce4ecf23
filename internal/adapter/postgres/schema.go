package postgres

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		phone VARCHAR(20),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
		quantity INT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		total_amount DOUBLE PRECISION NOT NULL CHECK (total_amount >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		auto_cancel_at TIMESTAMPTZ NOT NULL,
		payment_completed_at TIMESTAMPTZ,
		pickup_completed_at TIMESTAMPTZ,
		cancelled_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS order_lines (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		menu_item_id UUID NOT NULL,
		menu_item_name VARCHAR(255) NOT NULL,
		quantity INT NOT NULL CHECK (quantity >= 1),
		price DOUBLE PRECISION NOT NULL CHECK (price >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)`,
	// The sweeper query filters on both columns.
	`CREATE INDEX IF NOT EXISTS idx_orders_stale ON orders (status, auto_cancel_at)`,
	`CREATE INDEX IF NOT EXISTS idx_order_lines_order_id ON order_lines (order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_menu_items_available ON menu_items (is_available)`,
}

// CreateTables bootstraps the schema. Safe to run on every startup.
func CreateTables(ctx context.Context, db interfaces.DB) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range schemaStatements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return tx.Commit(ctx)
}
