package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/ordermanager/oms/internal/dal/interfaces/ideadletterrepo"
	"github.com/ordermanager/oms/internal/dal/rabbitmq"
	"github.com/ordermanager/oms/internal/service/models/deadletter"
	"github.com/ordermanager/oms/internal/service/models/orderevent"
)

// DeadLetterDrain consumes one dead-letter queue and persists every
// message so operators can inspect it after the broker expires it.
type DeadLetterDrain struct {
	client *rabbitmq.Client
	cfg    Config
	repo   ideadletterrepo.IDeadLetterRepository
	stop   chan struct{}
	done   chan struct{}
}

// NewDeadLetterDrain creates a drain for the dead-letter queue of the
// given receive path.
func NewDeadLetterDrain(client *rabbitmq.Client, cfg Config, repo ideadletterrepo.IDeadLetterRepository) *DeadLetterDrain {
	return &DeadLetterDrain{
		client: client,
		cfg:    cfg,
		repo:   repo,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Run starts draining the dead-letter queue.
func (d *DeadLetterDrain) Run(ctx context.Context) error {
	msgs, err := d.client.Consume(rabbitmq.ConsumeConfig{
		Queue:    d.cfg.DeadLetterQueue(),
		Consumer: d.cfg.ConsumerTag + "-dlq",
	})
	if err != nil {
		return err
	}

	slog.Info("Dead-letter drain started", "queue", d.cfg.DeadLetterQueue())

	go func() {
		for {
			select {
			case <-d.stop:
				close(d.done)

				return
			case msg, ok := <-msgs:
				if !ok {
					close(d.done)

					return
				}
				d.capture(ctx, msg)
			}
		}
	}()

	<-d.done

	return nil
}

func (d *DeadLetterDrain) capture(ctx context.Context, msg amqp.Delivery) {
	rec := deadletter.Record{
		EventKind:    d.cfg.EventKind,
		QueueName:    d.cfg.Queue,
		ExchangeName: orderevent.Exchange,
		Payload:      msg.Body,
		FailureCount: failureCount(msg),
		LastError:    lastError(msg),
		CreatedAt:    time.Now().UTC(),
	}

	if err := d.repo.Insert(ctx, rec); err != nil {
		slog.Error("Failed to persist dead letter, requeueing",
			"queue", d.cfg.DeadLetterQueue(),
			"error", err,
		)
		if nackErr := msg.Nack(false, true); nackErr != nil {
			slog.Error("Failed to nack dead letter", "error", nackErr)
		}

		return
	}

	slog.Warn("Dead letter captured",
		"event_kind", rec.EventKind,
		"queue", rec.QueueName,
		"failure_count", rec.FailureCount,
	)

	if err := msg.Ack(false); err != nil {
		slog.Error("Failed to ack dead letter", "error", err)
	}
}

// lastError prefers the reason the receiver attached. Messages that
// reached the queue through the broker-side fallback route carry none.
func lastError(msg amqp.Delivery) string {
	if reason, ok := msg.Headers[lastErrorHeader].(string); ok && reason != "" {
		return reason
	}

	return "retry budget exhausted"
}

// failureCount prefers the receiver's attempt count, falling back to
// the broker-maintained x-death header.
func failureCount(msg amqp.Delivery) int64 {
	if count, ok := msg.Headers[failureCountHeader].(int64); ok && count > 0 {
		return count
	}

	return deathCount(msg)
}

// deathCount reads the broker-maintained x-death header. The count is
// at least one for any message that reached the dead-letter exchange.
func deathCount(msg amqp.Delivery) int64 {
	deaths, ok := msg.Headers["x-death"].([]interface{})
	if !ok {
		return 1
	}

	var total int64
	for _, d := range deaths {
		table, ok := d.(amqp.Table)
		if !ok {
			continue
		}
		if count, ok := table["count"].(int64); ok {
			total += count
		}
	}

	if total == 0 {
		return 1
	}

	return total
}

// Shutdown gracefully shuts down the drain.
func (d *DeadLetterDrain) Shutdown() error {
	close(d.stop)

	select {
	case <-d.done:
	case <-time.After(10 * time.Second):
		slog.Warn("Dead-letter drain shutdown timeout", "queue", d.cfg.DeadLetterQueue())
	}

	return nil
}
