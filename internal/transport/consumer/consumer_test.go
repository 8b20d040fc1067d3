package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermanager/oms/internal/dal/rabbitmq"
)

type fakeAcknowledger struct {
	acks  int
	nacks []bool
}

func (a *fakeAcknowledger) Ack(_ uint64, _ bool) error { a.acks++; return nil }

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacks = append(a.nacks, requeue)

	return nil
}

func (a *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	a.nacks = append(a.nacks, requeue)

	return nil
}

type fakeBroker struct {
	published  []rabbitmq.PublishConfig
	publishErr error
}

func (b *fakeBroker) Consume(_ rabbitmq.ConsumeConfig) (<-chan amqp.Delivery, error) {
	return nil, nil
}

func (b *fakeBroker) PublishMessage(cfg rabbitmq.PublishConfig) error {
	b.published = append(b.published, cfg)

	return b.publishErr
}

func newTestReceiver(handler Handler, b broker) *Receiver {
	return &Receiver{
		client: b,
		cfg: Config{
			Queue:      "order-created-stock",
			EventKind:  "order.created",
			MaxRetries: 2,
			Backoff:    time.Millisecond,
		},
		handler: handler,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func TestProcessMessage(t *testing.T) {
	t.Run("should ack on success without touching the dead-letter route", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		b := &fakeBroker{}
		r := newTestReceiver(func(_ context.Context, _ []byte) error { return nil }, b)

		err := r.processMessage(context.Background(), amqp.Delivery{Acknowledger: ack, DeliveryTag: 1})

		require.NoError(t, err)
		assert.Equal(t, 1, ack.acks)
		assert.Empty(t, ack.nacks)
		assert.Empty(t, b.published)
	})

	t.Run("should dead-letter after the retries are spent", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		b := &fakeBroker{}
		calls := 0
		r := newTestReceiver(func(_ context.Context, _ []byte) error {
			calls++

			return errors.New("stock service unavailable")
		}, b)

		err := r.processMessage(context.Background(), amqp.Delivery{Acknowledger: ack, DeliveryTag: 1})

		require.Error(t, err)
		assert.Equal(t, 3, calls)
		require.Len(t, b.published, 1)
		assert.Equal(t, "order-created-stock-dlx", b.published[0].Exchange)
		assert.Equal(t, "stock service unavailable", b.published[0].Headers[lastErrorHeader])
		assert.Equal(t, int64(3), b.published[0].Headers[failureCountHeader])
		assert.Equal(t, 1, ack.acks)
		assert.Empty(t, ack.nacks)
	})

	t.Run("should dead-letter a permanent failure on the first attempt", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		b := &fakeBroker{}
		calls := 0
		r := newTestReceiver(func(_ context.Context, _ []byte) error {
			calls++

			return Permanent(errors.New("unparseable payload"))
		}, b)

		err := r.processMessage(context.Background(), amqp.Delivery{Acknowledger: ack, DeliveryTag: 1})

		require.Error(t, err)
		assert.Equal(t, 1, calls)
		require.Len(t, b.published, 1)
		assert.Equal(t, "unparseable payload", b.published[0].Headers[lastErrorHeader])
		assert.Equal(t, int64(1), b.published[0].Headers[failureCountHeader])
	})

	t.Run("should requeue instead of dead-lettering when cancelled mid-retry", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		b := &fakeBroker{}
		r := newTestReceiver(func(_ context.Context, _ []byte) error {
			return errors.New("stock service unavailable")
		}, b)
		r.cfg.Backoff = time.Hour

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := r.processMessage(ctx, amqp.Delivery{Acknowledger: ack, DeliveryTag: 1})

		require.ErrorIs(t, err, context.Canceled)
		require.Len(t, ack.nacks, 1)
		assert.True(t, ack.nacks[0], "cancelled delivery must be requeued")
		assert.Empty(t, b.published)
		assert.Zero(t, ack.acks)
	})

	t.Run("should fall back to a broker-routed reject when the publish fails", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		b := &fakeBroker{publishErr: assert.AnError}
		r := newTestReceiver(func(_ context.Context, _ []byte) error {
			return Permanent(errors.New("unparseable payload"))
		}, b)

		err := r.processMessage(context.Background(), amqp.Delivery{Acknowledger: ack, DeliveryTag: 1})

		require.Error(t, err)
		require.Len(t, ack.nacks, 1)
		assert.False(t, ack.nacks[0], "fallback reject must not requeue")
		assert.Zero(t, ack.acks)
	})
}

func TestConfigPrefetchLimit(t *testing.T) {
	assert.Equal(t, 8, Config{Prefetch: 8}.prefetchLimit())
	assert.Equal(t, 1, Config{}.prefetchLimit())
	assert.Equal(t, 1, Config{Prefetch: -2}.prefetchLimit())
}
