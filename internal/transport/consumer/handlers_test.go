package consumer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermanager/oms/internal/service/models/orderevent"
)

func deliveryWithHeaders(headers amqp.Table) amqp.Delivery {
	return amqp.Delivery{Headers: headers}
}

func tableWithCount(count int64) amqp.Table {
	return amqp.Table{"count": count}
}

type recordingService struct {
	created []orderevent.OrderCreated
	updated []orderevent.OrderUpdated
	err     error
}

func (s *recordingService) HandleOrderCreated(_ context.Context, ev orderevent.OrderCreated) error {
	s.created = append(s.created, ev)

	return s.err
}

func (s *recordingService) HandleOrderUpdated(_ context.Context, ev orderevent.OrderUpdated) error {
	s.updated = append(s.updated, ev)

	return s.err
}

func TestOrderCreatedHandler(t *testing.T) {
	t.Run("should decode and dispatch the event", func(t *testing.T) {
		svc := &recordingService{}
		handler := OrderCreatedHandler(svc)

		ev := orderevent.OrderCreated{OrderID: uuid.New(), CustomerName: "Ana Souza"}
		body, err := json.Marshal(ev)
		require.NoError(t, err)

		require.NoError(t, handler(context.Background(), body))
		require.Len(t, svc.created, 1)
		assert.Equal(t, ev.OrderID, svc.created[0].OrderID)
	})

	t.Run("should mark a malformed payload as permanent", func(t *testing.T) {
		svc := &recordingService{}
		handler := OrderCreatedHandler(svc)

		err := handler(context.Background(), []byte("not json"))

		require.Error(t, err)
		assert.True(t, isPermanent(err))
		assert.Empty(t, svc.created)
	})

	t.Run("should pass service failures through as retryable", func(t *testing.T) {
		svc := &recordingService{err: assert.AnError}
		handler := OrderCreatedHandler(svc)

		body, err := json.Marshal(orderevent.OrderCreated{OrderID: uuid.New()})
		require.NoError(t, err)

		err = handler(context.Background(), body)

		require.Error(t, err)
		assert.False(t, isPermanent(err))
	})
}

func TestOrderUpdatedHandler(t *testing.T) {
	svc := &recordingService{}
	handler := OrderUpdatedHandler(svc)

	ev := orderevent.OrderUpdated{OrderID: uuid.New(), TotalCents: 4500}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), body))
	require.Len(t, svc.updated, 1)
	assert.Equal(t, int64(4500), svc.updated[0].TotalCents)
}

func TestDeathCount(t *testing.T) {
	t.Run("should default to one without headers", func(t *testing.T) {
		assert.Equal(t, int64(1), deathCount(deliveryWithHeaders(nil)))
	})

	t.Run("should sum counts across death entries", func(t *testing.T) {
		msg := deliveryWithHeaders(amqp.Table{
			"x-death": []interface{}{
				tableWithCount(3),
				tableWithCount(2),
			},
		})

		assert.Equal(t, int64(5), deathCount(msg))
	})
}
