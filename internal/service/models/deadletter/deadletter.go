package deadletter

import (
	"time"
)

// Record is a durably captured message that exhausted its retry
// budget. Operators triage these by (event kind, queue); there is no
// automatic replay.
type Record struct {
	ID           int64
	EventKind    string
	QueueName    string
	ExchangeName string
	Payload      []byte
	FailureCount int64
	LastError    string
	CreatedAt    time.Time
}
