package idedup

import "context"

// IMessageDeduplicator is the shared idempotency ledger consulted by
// every consumer before executing a side effect.
type IMessageDeduplicator interface {
	// MarkProcessedIfNotExists atomically registers the message id.
	// Exactly one of N concurrent callers with the same id receives
	// true; that caller proceeds with the side effect, all others skip.
	MarkProcessedIfNotExists(ctx context.Context, messageID string) (bool, error)
}
