package ieventbus

import "context"

// IEventBus publishes committed domain change events to the broker
// with at-least-once semantics.
type IEventBus interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
}
