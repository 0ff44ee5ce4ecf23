package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

// NotificationHandler consumes order status events and surfaces them to the
// operator log. A real installation would fan these out to SMS or push.
type NotificationHandler struct {
	logger logger.Logger
}

func NewNotificationHandler(logger logger.Logger) *NotificationHandler {
	return &NotificationHandler{logger: logger}
}

func (h *NotificationHandler) HandleNotification(ctx context.Context, body []byte) error {
	var msg interfaces.OrderStatusMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("notification_decode_failed", "Failed to decode order status message", "", nil, err)
		return err
	}

	h.logger.Info("order_status_changed",
		fmt.Sprintf("Order %s is now %s", msg.OrderID, msg.NewStatus), "",
		map[string]interface{}{
			"order_id":     msg.OrderID,
			"user_id":      msg.UserID,
			"old_status":   msg.OldStatus,
			"new_status":   msg.NewStatus,
			"total_amount": msg.TotalAmount,
			"changed_by":   msg.ChangedBy,
		})

	return nil
}
