package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/canteen/internal/domain"
)

// Сообщения RabbitMQ
type OrderStatusMessage struct {
	OrderID     string        `json:"order_id"`
	UserID      string        `json:"user_id"`
	OldStatus   domain.Status `json:"old_status,omitempty"`
	NewStatus   domain.Status `json:"new_status"`
	TotalAmount float64       `json:"total_amount"`
	ChangedBy   string        `json:"changed_by"`
	Timestamp   time.Time     `json:"timestamp"`
}

// Интерфейсы Messaging (Adapter/RabbitMQ)
type MessagePublisher interface {
	PublishOrderStatus(ctx context.Context, msg OrderStatusMessage) error
}

type MessageConsumer interface {
	ConsumeOrderStatus(ctx context.Context, handler OrderStatusHandler) error
}

type OrderStatusHandler func(ctx context.Context, body []byte) error
