package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	outboxmodel "github.com/ordermanager/oms/internal/service/models/outbox"
)

type fakeOutboxRepo struct {
	pending []outboxmodel.Message
	deleted []int64
	retries []int64
}

func (r *fakeOutboxRepo) Insert(_ context.Context, msg outboxmodel.Message) (int64, error) {
	r.pending = append(r.pending, msg)

	return msg.ID, nil
}

func (r *fakeOutboxRepo) GetPendingMessages(_ context.Context, _ int) ([]outboxmodel.Message, error) {
	return r.pending, nil
}

func (r *fakeOutboxRepo) Delete(_ context.Context, id int64) error {
	r.deleted = append(r.deleted, id)

	return nil
}

func (r *fakeOutboxRepo) UpdateRetry(_ context.Context, id int64, _ int, _ string, _ time.Time) error {
	r.retries = append(r.retries, id)

	return nil
}

type fakePublisher struct {
	failKeys  map[string]bool
	published []string
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, _ []byte) error {
	if p.failKeys[routingKey] {
		return assert.AnError
	}
	p.published = append(p.published, routingKey)

	return nil
}

func TestProcessMessages(t *testing.T) {
	t.Run("should publish pending messages and delete them", func(t *testing.T) {
		repo := &fakeOutboxRepo{pending: []outboxmodel.Message{
			{ID: 1, RoutingKey: "order.created", Payload: []byte(`{}`)},
			{ID: 2, RoutingKey: "order.updated", Payload: []byte(`{}`)},
		}}
		bus := &fakePublisher{}
		w := NewWorker(repo, bus)

		w.processMessages(context.Background())

		assert.Equal(t, []string{"order.created", "order.updated"}, bus.published)
		assert.Equal(t, []int64{1, 2}, repo.deleted)
		assert.Empty(t, repo.retries)
	})

	t.Run("should schedule a retry for failed deliveries only", func(t *testing.T) {
		repo := &fakeOutboxRepo{pending: []outboxmodel.Message{
			{ID: 1, RoutingKey: "order.created", Payload: []byte(`{}`)},
			{ID: 2, RoutingKey: "order.updated", Payload: []byte(`{}`)},
		}}
		bus := &fakePublisher{failKeys: map[string]bool{"order.updated": true}}
		w := NewWorker(repo, bus)

		w.processMessages(context.Background())

		assert.Equal(t, []int64{1}, repo.deleted)
		assert.Equal(t, []int64{2}, repo.retries)
	})

	t.Run("should do nothing when the outbox is empty", func(t *testing.T) {
		repo := &fakeOutboxRepo{}
		bus := &fakePublisher{}
		w := NewWorker(repo, bus)

		w.processMessages(context.Background())

		assert.Empty(t, bus.published)
		assert.Empty(t, repo.deleted)
	})
}

func TestStartStop(t *testing.T) {
	repo := &fakeOutboxRepo{}
	bus := &fakePublisher{}
	w := NewWorker(repo, bus)

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	w.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "worker did not stop")
	}
}
