package rabbitmq

import (
	"context"
	"fmt"

	"github.com/ordermanager/oms/internal/dal/rabbitmq"
	"github.com/ordermanager/oms/internal/service/models/orderevent"
)

// EventBusRabbitMQRepository publishes domain change events to the
// orders topic exchange.
type EventBusRabbitMQRepository struct {
	client *rabbitmq.Client
}

// NewEventBusRabbitMQRepository declares the orders exchange and
// returns the publisher.
func NewEventBusRabbitMQRepository(client *rabbitmq.Client) *EventBusRabbitMQRepository {
	err := client.DeclareExchange(rabbitmq.DeclareExchangeConfig{
		Name:    orderevent.Exchange,
		Kind:    "topic",
		Durable: true,
	})
	if err != nil {
		panic(err)
	}

	return &EventBusRabbitMQRepository{
		client: client,
	}
}

// Publish delivers the payload with the given routing key.
func (r *EventBusRabbitMQRepository) Publish(_ context.Context, routingKey string, payload []byte) error {
	if err := r.client.Publish(orderevent.Exchange, routingKey, "application/json", payload); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", routingKey, err)
	}

	return nil
}
