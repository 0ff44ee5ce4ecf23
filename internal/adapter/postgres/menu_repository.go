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

type menuRepository struct {
	db interfaces.DB
}

func NewMenuRepository(db interfaces.DB) interfaces.MenuRepository {
	return &menuRepository{db: db}
}

const menuItemColumns = `id, name, description, price, quantity, is_available, created_at, updated_at`

func scanMenuItem(row interfaces.Row) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := row.Scan(
		&item.ID, &item.Name, &item.Description, &item.Price,
		&item.Quantity, &item.IsAvailable, &item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMenuItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan menu item: %w", err)
	}
	return &item, nil
}

func (r *menuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	query := `
		INSERT INTO menu_items (id, name, description, price, quantity, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		item.ID, item.Name, item.Description, item.Price,
		item.Quantity, item.IsAvailable, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert menu item: %w", err)
	}
	return nil
}

func (r *menuRepository) FindByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = $1`
	return scanMenuItem(r.db.QueryRow(ctx, query, id))
}

func (r *menuRepository) ListAll(ctx context.Context) ([]*domain.MenuItem, error) {
	return r.list(ctx, `SELECT `+menuItemColumns+` FROM menu_items ORDER BY name`)
}

func (r *menuRepository) ListAvailable(ctx context.Context) ([]*domain.MenuItem, error) {
	return r.list(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE is_available = TRUE ORDER BY name`)
}

func (r *menuRepository) list(ctx context.Context, query string) ([]*domain.MenuItem, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()

	var items []*domain.MenuItem
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Description, &item.Price,
			&item.Quantity, &item.IsAvailable, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (r *menuRepository) Update(ctx context.Context, item *domain.MenuItem) error {
	query := `
		UPDATE menu_items
		SET name = $1, description = $2, price = $3, updated_at = $4
		WHERE id = $5
	`
	ct, err := r.db.Exec(ctx, query, item.Name, item.Description, item.Price, time.Now(), item.ID)
	if err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrMenuItemNotFound
	}
	return nil
}

func (r *menuRepository) SetStock(ctx context.Context, id string, quantity int) (*domain.MenuItem, error) {
	query := `
		UPDATE menu_items
		SET quantity = $2, is_available = ($2 > 0), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + menuItemColumns
	return scanMenuItem(r.db.QueryRow(ctx, query, id, quantity))
}

func (r *menuRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrMenuItemNotFound
	}
	return nil
}

// Reserve takes the item's row lock, checks the remaining quantity and
// decrements it. The lock serializes concurrent reservations for the same
// item: two callers racing for the last unit cannot both succeed.
func (r *menuRepository) Reserve(ctx context.Context, tx interfaces.Tx, id string, quantity int) (*domain.MenuItem, error) {
	locked, err := scanMenuItem(tx.QueryRow(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}

	if !locked.IsAvailable || locked.Quantity < quantity {
		return nil, &domain.InsufficientStockError{
			MenuItemID: locked.ID,
			Name:       locked.Name,
			Requested:  quantity,
			Available:  locked.Quantity,
		}
	}

	query := `
		UPDATE menu_items
		SET quantity = quantity - $2, is_available = (quantity - $2 > 0), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + menuItemColumns
	return scanMenuItem(tx.QueryRow(ctx, query, id, quantity))
}

// Release puts reserved stock back. The single UPDATE takes the row lock, so
// it follows the same exclusion discipline as Reserve.
func (r *menuRepository) Release(ctx context.Context, tx interfaces.Tx, id string, quantity int) (*domain.MenuItem, error) {
	query := `
		UPDATE menu_items
		SET quantity = quantity + $2, is_available = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + menuItemColumns
	return scanMenuItem(tx.QueryRow(ctx, query, id, quantity))
}
