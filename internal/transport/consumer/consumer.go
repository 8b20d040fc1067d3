package consumer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/ordermanager/oms/internal/dal/rabbitmq"
	"github.com/ordermanager/oms/internal/service/models/orderevent"
)

// Handler processes the body of one delivery.
type Handler func(ctx context.Context, body []byte) error

// permanentError marks a failure that retrying cannot fix, such as a
// malformed payload.
type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent wraps an error so the receiver dead-letters the message
// without burning retries on it.
func Permanent(err error) error {
	return permanentError{err: err}
}

func isPermanent(err error) bool {
	var pe permanentError

	return errors.As(err, &pe)
}

// Config describes one receive path. Retry count, backoff, prefetch
// and the dead-letter route are deployment-time configuration.
type Config struct {
	Queue       string
	EventKind   string
	ConsumerTag string
	Prefetch    int
	MaxRetries  int
	Backoff     time.Duration
}

// DLX and DLQ names derived from the work queue, one pair per
// (event kind, consumer) path so operators triage independently.
func (c Config) DeadLetterExchange() string { return c.Queue + "-dlx" }
func (c Config) DeadLetterQueue() string    { return c.Queue + "-dlq" }

// prefetchLimit bounds the in-flight worker group. A zero prefetch
// would stall the limiter, so it falls back to serial processing.
func (c Config) prefetchLimit() int {
	if c.Prefetch <= 0 {
		return 1
	}

	return c.Prefetch
}

// Headers attached when a message is routed to the dead-letter
// exchange, so the drain records why it failed.
const (
	lastErrorHeader    = "x-last-error"
	failureCountHeader = "x-failure-count"
)

// broker is the slice of the amqp client the receive loop needs.
type broker interface {
	Consume(cfg rabbitmq.ConsumeConfig) (<-chan amqp.Delivery, error)
	PublishMessage(cfg rabbitmq.PublishConfig) error
}

// Receiver consumes one queue bound to the orders exchange and drives
// a handler with bounded in-process retries. Exhausted messages are
// routed to the path's dead-letter exchange.
type Receiver struct {
	client  broker
	cfg     Config
	handler Handler
	stop    chan struct{}
	done    chan struct{}
}

// NewReceiver declares the receive path topology (work queue, its
// dead-letter exchange and queue, bindings, prefetch) and returns the
// receiver.
func NewReceiver(client *rabbitmq.Client, cfg Config, handler Handler) (*Receiver, error) {
	err := client.DeclareExchange(rabbitmq.DeclareExchangeConfig{
		Name:    orderevent.Exchange,
		Kind:    "topic",
		Durable: true,
	})
	if err != nil {
		return nil, err
	}

	err = client.DeclareExchange(rabbitmq.DeclareExchangeConfig{
		Name:    cfg.DeadLetterExchange(),
		Kind:    "fanout",
		Durable: true,
	})
	if err != nil {
		return nil, err
	}

	if _, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:    cfg.DeadLetterQueue(),
		Durable: true,
	}); err != nil {
		return nil, err
	}
	if err := client.BindQueue(cfg.DeadLetterQueue(), "", cfg.DeadLetterExchange()); err != nil {
		return nil, err
	}

	if _, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:    cfg.Queue,
		Durable: true,
		Args: amqp.Table{
			"x-dead-letter-exchange": cfg.DeadLetterExchange(),
		},
	}); err != nil {
		return nil, err
	}
	if err := client.BindQueue(cfg.Queue, cfg.EventKind, orderevent.Exchange); err != nil {
		return nil, err
	}

	if err := client.Qos(cfg.prefetchLimit()); err != nil {
		return nil, err
	}

	return &Receiver{
		client:  client,
		cfg:     cfg,
		handler: handler,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// Run starts consuming messages from the receive path's queue.
func (r *Receiver) Run(ctx context.Context) error {
	msgs, err := r.client.Consume(rabbitmq.ConsumeConfig{
		Queue:    r.cfg.Queue,
		Consumer: r.cfg.ConsumerTag,
	})
	if err != nil {
		return err
	}

	slog.Info("Consumer started", "queue", r.cfg.Queue, "consumer_tag", r.cfg.ConsumerTag)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.prefetchLimit())

	go func() {
		for {
			select {
			case <-r.stop:
				slog.Info("Stopping consumer", "queue", r.cfg.Queue)
				close(r.done)

				return
			case msg, ok := <-msgs:
				if !ok {
					slog.Info("Message channel closed", "queue", r.cfg.Queue)
					close(r.done)

					return
				}

				g.Go(func() error {
					return r.processMessage(gctx, msg)
				})
			}
		}
	}()

	<-r.done
	if err := g.Wait(); err != nil {
		slog.Error("Error processing messages", "queue", r.cfg.Queue, "error", err)
	}

	return nil
}

// processMessage drives the handler for one delivery. The retry
// budget is spent in-process; exhaustion rejects the message to the
// dead-letter exchange.
func (r *Receiver) processMessage(ctx context.Context, msg amqp.Delivery) error {
	ctx, span := otel.Tracer("consumer").Start(ctx, "Receiver.processMessage")
	defer span.End()

	var err error
	attempts := 0
	backoff := r.cfg.Backoff

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				// Shutting down mid-retry. Requeue so the broker
				// redelivers after restart instead of dead-lettering
				// a message whose retry budget is not spent.
				if nackErr := msg.Nack(false, true); nackErr != nil {
					slog.Error("Failed to requeue message", "queue", r.cfg.Queue, "error", nackErr)
				}

				return ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		attempts = attempt + 1
		if err = r.handler(ctx, msg.Body); err == nil {
			break
		}
		if isPermanent(err) {
			slog.Error("Message is not processable", "queue", r.cfg.Queue, "error", err)

			break
		}

		slog.Warn("Failed to process message, will retry",
			"queue", r.cfg.Queue,
			"attempt", attempts,
			"error", err,
		)
	}

	if err != nil {
		r.deadLetter(msg, err, attempts)

		return err
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		slog.Error("Failed to ack message", "queue", r.cfg.Queue, "error", ackErr)

		return ackErr
	}

	return nil
}

// deadLetter routes a failed delivery to the path's dead-letter
// exchange, publishing directly so the failure reason and attempt
// count travel with it. If the publish fails the message is rejected
// and the broker's x-dead-letter-exchange routing takes over.
func (r *Receiver) deadLetter(msg amqp.Delivery, cause error, attempts int) {
	pubErr := r.client.PublishMessage(rabbitmq.PublishConfig{
		Exchange:    r.cfg.DeadLetterExchange(),
		ContentType: msg.ContentType,
		Body:        msg.Body,
		Headers: amqp.Table{
			lastErrorHeader:    cause.Error(),
			failureCountHeader: int64(attempts),
		},
	})
	if pubErr != nil {
		slog.Error("Failed to publish to dead-letter exchange, rejecting",
			"queue", r.cfg.Queue,
			"error", pubErr,
		)
		if nackErr := msg.Nack(false, false); nackErr != nil {
			slog.Error("Failed to nack message", "queue", r.cfg.Queue, "error", nackErr)
		}

		return
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		slog.Error("Failed to ack dead-lettered message", "queue", r.cfg.Queue, "error", ackErr)
	}
}

// Shutdown gracefully shuts down the receiver.
func (r *Receiver) Shutdown() error {
	slog.Info("Shutting down consumer", "queue", r.cfg.Queue)
	close(r.stop)

	// Wait for processing to finish with timeout
	select {
	case <-r.done:
		slog.Info("Consumer stopped successfully", "queue", r.cfg.Queue)
	case <-time.After(10 * time.Second):
		slog.Warn("Consumer shutdown timeout", "queue", r.cfg.Queue)
	}

	return nil
}
