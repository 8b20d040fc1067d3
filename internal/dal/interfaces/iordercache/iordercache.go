package iordercache

import (
	"context"

	"github.com/ordermanager/oms/internal/service/models/order"
)

// IOrderCacheRepository writes best-effort denormalized order
// snapshots for fast reads. Failures are the caller's to log and
// swallow; the cache is never a system of record.
type IOrderCacheRepository interface {
	Set(ctx context.Context, o *order.Order) error
}
