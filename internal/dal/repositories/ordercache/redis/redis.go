package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ordermanager/oms/internal/dal/redis"
	"github.com/ordermanager/oms/internal/service/models/order"
)

const snapshotTTL = 10 * time.Minute

// OrderCacheRedisRepository keeps a denormalized order snapshot in
// Redis for fast reads. It is a read optimization, not a system of
// record; callers swallow its failures.
type OrderCacheRedisRepository struct {
	client *redis.Client
}

// NewOrderCacheRedisRepository creates a new order cache repository.
func NewOrderCacheRedisRepository(client *redis.Client) *OrderCacheRedisRepository {
	return &OrderCacheRedisRepository{
		client: client,
	}
}

// Set writes the order snapshot under order:{id} with a TTL.
func (r *OrderCacheRedisRepository) Set(ctx context.Context, o *order.Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal order snapshot: %w", err)
	}

	if err := r.client.DB().Set(ctx, cacheKey(o), payload, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to write order snapshot: %w", err)
	}

	return nil
}

func cacheKey(o *order.Order) string {
	return "order:" + o.ID.String()
}
