package inmemory_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermanager/oms/internal/dal/repositories/dedup/inmemory"
)

func TestMarkProcessedIfNotExists(t *testing.T) {
	t.Run("should report first caller only", func(t *testing.T) {
		repo := inmemory.NewDedupInMemoryRepository()

		first, err := repo.MarkProcessedIfNotExists(context.Background(), "order.created:stock:1")
		require.NoError(t, err)
		assert.True(t, first)

		second, err := repo.MarkProcessedIfNotExists(context.Background(), "order.created:stock:1")
		require.NoError(t, err)
		assert.False(t, second)
	})

	t.Run("should keep distinct keys independent", func(t *testing.T) {
		repo := inmemory.NewDedupInMemoryRepository()

		_, err := repo.MarkProcessedIfNotExists(context.Background(), "order.created:stock:1")
		require.NoError(t, err)

		first, err := repo.MarkProcessedIfNotExists(context.Background(), "order.created:email:1")
		require.NoError(t, err)
		assert.True(t, first)
	})

	t.Run("should admit exactly one concurrent caller", func(t *testing.T) {
		repo := inmemory.NewDedupInMemoryRepository()

		const callers = 32
		var wg sync.WaitGroup
		var admitted atomic.Int64

		for range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				first, err := repo.MarkProcessedIfNotExists(context.Background(), "order.updated:stock:7")
				assert.NoError(t, err)
				if first {
					admitted.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(1), admitted.Load())
	})
}
