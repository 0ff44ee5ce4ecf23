package menu

import (
	"context"
	"errors"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

// Service owns the menu catalog. Stock writes outside order flow (restock,
// manual correction) go through the repository's row-lock discipline, the
// same one order reservations use.
type Service struct {
	repo   interfaces.MenuRepository
	logger logger.Logger
}

func NewService(repo interfaces.MenuRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateItem(ctx context.Context, cmd interfaces.CreateMenuItemCommand) (*domain.MenuItem, error) {
	item, err := domain.NewMenuItem(cmd.Name, cmd.Description, cmd.Price, cmd.Quantity)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Debug("menu_item_created", "Menu item created", "", map[string]interface{}{
		"menu_item_id": item.ID,
		"name":         item.Name,
	})
	return item, nil
}

func (s *Service) GetItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) ListItems(ctx context.Context) ([]*domain.MenuItem, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) ListAvailableItems(ctx context.Context) ([]*domain.MenuItem, error) {
	return s.repo.ListAvailable(ctx)
}

// UpdateItem edits name, description or price. Existing orders keep their
// captured snapshots, so price edits never change an already-placed order.
func (s *Service) UpdateItem(ctx context.Context, id string, cmd interfaces.UpdateMenuItemCommand) (*domain.MenuItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		item.Name = *cmd.Name
	}
	if cmd.Description != nil {
		item.Description = *cmd.Description
	}
	if cmd.Price != nil {
		if *cmd.Price < 0 {
			return nil, errors.New("menu item price cannot be negative")
		}
		item.Price = *cmd.Price
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) SetStock(ctx context.Context, id string, quantity int) (*domain.MenuItem, error) {
	if quantity < 0 {
		return nil, &domain.InvalidQuantityError{MenuItemID: id, Quantity: quantity}
	}

	item, err := s.repo.SetStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock_updated", "Menu item stock set", "", map[string]interface{}{
		"menu_item_id": id,
		"quantity":     quantity,
	})
	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
