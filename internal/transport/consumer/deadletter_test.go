package consumer

import (
	"context"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermanager/oms/internal/service/models/deadletter"
)

type fakeDeadLetterRepo struct {
	inserted  []deadletter.Record
	insertErr error
}

func (r *fakeDeadLetterRepo) Insert(_ context.Context, rec deadletter.Record) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, rec)

	return nil
}

func (r *fakeDeadLetterRepo) List(_ context.Context, _ int) ([]deadletter.Record, error) {
	return nil, nil
}

func newTestDrain(repo *fakeDeadLetterRepo) *DeadLetterDrain {
	return &DeadLetterDrain{
		cfg: Config{
			Queue:     "order-created-stock",
			EventKind: "order.created",
		},
		repo: repo,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func TestDeadLetterDrainCapture(t *testing.T) {
	t.Run("should record the failure with a capture timestamp", func(t *testing.T) {
		repo := &fakeDeadLetterRepo{}
		drain := newTestDrain(repo)
		ack := &fakeAcknowledger{}

		drain.capture(context.Background(), amqp.Delivery{
			Acknowledger: ack,
			DeliveryTag:  1,
			Body:         []byte(`{"orderId":"x"}`),
			Headers: amqp.Table{
				lastErrorHeader:    "stock service unavailable",
				failureCountHeader: int64(3),
			},
		})

		require.Len(t, repo.inserted, 1)
		rec := repo.inserted[0]
		assert.Equal(t, "order.created", rec.EventKind)
		assert.Equal(t, "order-created-stock", rec.QueueName)
		assert.Equal(t, "stock service unavailable", rec.LastError)
		assert.Equal(t, int64(3), rec.FailureCount)
		assert.False(t, rec.CreatedAt.IsZero())
		assert.WithinDuration(t, time.Now().UTC(), rec.CreatedAt, 5*time.Second)
		assert.Equal(t, 1, ack.acks)
	})

	t.Run("should fall back to x-death when the reason headers are absent", func(t *testing.T) {
		repo := &fakeDeadLetterRepo{}
		drain := newTestDrain(repo)

		drain.capture(context.Background(), amqp.Delivery{
			Acknowledger: &fakeAcknowledger{},
			DeliveryTag:  1,
			Headers: amqp.Table{
				"x-death": []interface{}{tableWithCount(4)},
			},
		})

		require.Len(t, repo.inserted, 1)
		assert.Equal(t, "retry budget exhausted", repo.inserted[0].LastError)
		assert.Equal(t, int64(4), repo.inserted[0].FailureCount)
	})

	t.Run("should requeue when the record cannot be persisted", func(t *testing.T) {
		repo := &fakeDeadLetterRepo{insertErr: assert.AnError}
		drain := newTestDrain(repo)
		ack := &fakeAcknowledger{}

		drain.capture(context.Background(), amqp.Delivery{Acknowledger: ack, DeliveryTag: 1})

		require.Len(t, ack.nacks, 1)
		assert.True(t, ack.nacks[0])
		assert.Zero(t, ack.acks)
	})
}
