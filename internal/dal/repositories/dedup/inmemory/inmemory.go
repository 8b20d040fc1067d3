package inmemory

import (
	"context"
	"sync"
	"time"
)

// DedupInMemoryRepository is a process-local idempotency ledger for
// local runs. It does not survive restarts and is not shared between
// instances; deployments use the Redis implementation.
type DedupInMemoryRepository struct {
	mu        sync.Mutex
	processed map[string]time.Time
}

// NewDedupInMemoryRepository creates a new in-memory deduplicator.
func NewDedupInMemoryRepository() *DedupInMemoryRepository {
	return &DedupInMemoryRepository{
		processed: make(map[string]time.Time),
	}
}

// MarkProcessedIfNotExists registers the message id, reporting whether
// this caller was the first to do so.
func (r *DedupInMemoryRepository) MarkProcessedIfNotExists(_ context.Context, messageID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.processed[messageID]; ok {
		return false, nil
	}
	r.processed[messageID] = time.Now().UTC()

	return true, nil
}
