package http

import (
	"time"

	"github.com/YelzhanWeb/canteen/internal/domain"
)

type OrderResponse struct {
	ID                 string              `json:"id"`
	UserID             string              `json:"user_id"`
	Status             string              `json:"status"`
	Items              []OrderLineResponse `json:"items"`
	TotalAmount        float64             `json:"total_amount"`
	CreatedAt          time.Time           `json:"created_at"`
	AutoCancelAt       time.Time           `json:"auto_cancel_at"`
	PaymentCompletedAt *time.Time          `json:"payment_completed_at,omitempty"`
	PickupCompletedAt  *time.Time          `json:"pickup_completed_at,omitempty"`
	CancelledAt        *time.Time          `json:"cancelled_at,omitempty"`
}

type OrderLineResponse struct {
	MenuItemID   string  `json:"menu_item_id"`
	MenuItemName string  `json:"menu_item_name"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
}

func toOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderLineResponse, len(order.Lines))
	for i, line := range order.Lines {
		items[i] = OrderLineResponse{
			MenuItemID:   line.MenuItemID,
			MenuItemName: line.MenuItemName,
			Quantity:     line.Quantity,
			Price:        line.Price,
		}
	}
	return OrderResponse{
		ID:                 order.ID,
		UserID:             order.UserID,
		Status:             string(order.Status),
		Items:              items,
		TotalAmount:        order.TotalAmount,
		CreatedAt:          order.CreatedAt,
		AutoCancelAt:       order.AutoCancelAt,
		PaymentCompletedAt: order.PaymentCompletedAt,
		PickupCompletedAt:  order.PickupCompletedAt,
		CancelledAt:        order.CancelledAt,
	}
}

func toOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, order := range orders {
		out[i] = toOrderResponse(order)
	}
	return out
}

type MenuItemResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toMenuItemResponse(item *domain.MenuItem) MenuItemResponse {
	return MenuItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Quantity:    item.Quantity,
		IsAvailable: item.IsAvailable,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func toMenuItemResponses(items []*domain.MenuItem) []MenuItemResponse {
	out := make([]MenuItemResponse, len(items))
	for i, item := range items {
		out[i] = toMenuItemResponse(item)
	}
	return out
}

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
	}
}

func toUserResponses(users []*domain.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, user := range users {
		out[i] = toUserResponse(user)
	}
	return out
}
