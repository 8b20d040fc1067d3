package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ordermanager/oms/internal/service/models/orderevent"
)

type orderCreatedHandler interface {
	HandleOrderCreated(ctx context.Context, event orderevent.OrderCreated) error
}

type orderUpdatedHandler interface {
	HandleOrderUpdated(ctx context.Context, event orderevent.OrderUpdated) error
}

// OrderCreatedHandler decodes an order.created payload and hands it to
// the service. Malformed payloads are permanent failures.
func OrderCreatedHandler(svc orderCreatedHandler) Handler {
	return func(ctx context.Context, body []byte) error {
		var event orderevent.OrderCreated
		if err := json.Unmarshal(body, &event); err != nil {
			return Permanent(fmt.Errorf("failed to unmarshal order.created event: %w", err))
		}

		return svc.HandleOrderCreated(ctx, event)
	}
}

// OrderUpdatedHandler decodes an order.updated payload and hands it to
// the service.
func OrderUpdatedHandler(svc orderUpdatedHandler) Handler {
	return func(ctx context.Context, body []byte) error {
		var event orderevent.OrderUpdated
		if err := json.Unmarshal(body, &event); err != nil {
			return Permanent(fmt.Errorf("failed to unmarshal order.updated event: %w", err))
		}

		return svc.HandleOrderUpdated(ctx, event)
	}
}
