package stocksvc_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermanager/oms/internal/dal/repositories/dedup/inmemory"
	"github.com/ordermanager/oms/internal/service/models/orderevent"
	"github.com/ordermanager/oms/internal/service/services/stocksvc"
)

func TestHandleOrderCreated(t *testing.T) {
	t.Run("should absorb a duplicate delivery", func(t *testing.T) {
		dedup := inmemory.NewDedupInMemoryRepository()
		svc := stocksvc.MustNewStockService(stocksvc.WithDeduplicator(dedup))

		ev := orderevent.OrderCreated{OrderID: uuid.New()}

		require.NoError(t, svc.HandleOrderCreated(context.Background(), ev))
		require.NoError(t, svc.HandleOrderCreated(context.Background(), ev))
	})

	t.Run("should keep distinct orders independent", func(t *testing.T) {
		dedup := inmemory.NewDedupInMemoryRepository()
		svc := stocksvc.MustNewStockService(stocksvc.WithDeduplicator(dedup))

		require.NoError(t, svc.HandleOrderCreated(context.Background(), orderevent.OrderCreated{OrderID: uuid.New()}))
		require.NoError(t, svc.HandleOrderCreated(context.Background(), orderevent.OrderCreated{OrderID: uuid.New()}))
	})

	t.Run("should not collide with the updated event for the same order", func(t *testing.T) {
		dedup := inmemory.NewDedupInMemoryRepository()
		svc := stocksvc.MustNewStockService(stocksvc.WithDeduplicator(dedup))
		id := uuid.New()

		require.NoError(t, svc.HandleOrderCreated(context.Background(), orderevent.OrderCreated{OrderID: id}))
		require.NoError(t, svc.HandleOrderUpdated(context.Background(), orderevent.OrderUpdated{OrderID: id}))

		// Both kinds must have been registered separately.
		first, err := dedup.MarkProcessedIfNotExists(context.Background(), orderevent.KindOrderCreated+":stock:"+id.String())
		require.NoError(t, err)
		assert.False(t, first)

		first, err = dedup.MarkProcessedIfNotExists(context.Background(), orderevent.KindOrderUpdated+":stock:"+id.String())
		require.NoError(t, err)
		assert.False(t, first)
	})
}
