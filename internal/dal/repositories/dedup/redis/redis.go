package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ordermanager/oms/internal/dal/redis"
)

// Entries outlive any plausible broker redelivery horizon, then expire
// so the ledger does not grow forever.
const defaultRetention = 24 * time.Hour

// DedupRedisRepository is the shared idempotency ledger backed by
// Redis. SET NX is the atomic check-and-set: of N concurrent callers
// with the same id, exactly one inserts and receives true, cluster-wide.
type DedupRedisRepository struct {
	client    *redis.Client
	retention time.Duration
}

// NewDedupRedisRepository creates a new deduplicator.
func NewDedupRedisRepository(client *redis.Client) *DedupRedisRepository {
	return &DedupRedisRepository{
		client:    client,
		retention: defaultRetention,
	}
}

// MarkProcessedIfNotExists registers the message id, reporting whether
// this caller was the first to do so.
func (r *DedupRedisRepository) MarkProcessedIfNotExists(ctx context.Context, messageID string) (bool, error) {
	firstSeen := time.Now().UTC().Format(time.RFC3339Nano)

	ok, err := r.client.DB().SetNX(ctx, dedupKey(messageID), firstSeen, r.retention).Result()
	if err != nil {
		return false, fmt.Errorf("failed to register message id: %w", err)
	}

	return ok, nil
}

func dedupKey(messageID string) string {
	return "dedup:" + messageID
}
