package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"

	"github.com/redis/go-redis/v9"
)

// Cache status заказа: order_status:{order_id} -> status
const keyOrderStatus = "order_status:%s"

var ttlOrderStatus = 5 * time.Minute

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

type statusCache struct {
	rdb *redis.Client
}

func NewStatusCache(rdb *redis.Client) interfaces.StatusCache {
	return &statusCache{rdb: rdb}
}

func (c *statusCache) SetStatus(ctx context.Context, orderID string, status domain.Status) error {
	key := fmt.Sprintf(keyOrderStatus, orderID)
	return c.rdb.Set(ctx, key, string(status), ttlOrderStatus).Err()
}

func (c *statusCache) GetStatus(ctx context.Context, orderID string) (domain.Status, error) {
	key := fmt.Sprintf(keyOrderStatus, orderID)
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", interfaces.ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return domain.Status(val), nil
}
