package ideadletterrepo

import (
	"context"

	"github.com/ordermanager/oms/internal/service/models/deadletter"
)

// IDeadLetterRepository is the durable sink for messages that
// exhausted their retry budget.
type IDeadLetterRepository interface {
	// Insert captures a dead-lettered message for manual inspection
	Insert(ctx context.Context, rec deadletter.Record) error

	// List retrieves captured messages, newest first
	List(ctx context.Context, limit int) ([]deadletter.Record, error)
}
