package interfaces

import (
	"context"
	"errors"

	"github.com/YelzhanWeb/canteen/internal/domain"
)

// ErrCacheMiss is returned by StatusCache.GetStatus when no entry exists.
var ErrCacheMiss = errors.New("cache miss")

// StatusCache keeps a short-lived copy of each order's current status so
// status polling does not hit the database. Writes are best-effort: the store
// stays the source of truth.
type StatusCache interface {
	SetStatus(ctx context.Context, orderID string, status domain.Status) error
	GetStatus(ctx context.Context, orderID string) (domain.Status, error)
}
