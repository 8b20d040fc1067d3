package postgresrepo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermanager/oms/internal/service/models/orderitem"
)

// recordingQuerier captures the SQL the repository builds. Queries
// fail with queryErr so no row set has to be faked.
type recordingQuerier struct {
	sql      string
	args     []any
	queryErr error
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.sql = sql
	q.args = args

	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (q *recordingQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql = sql
	q.args = args

	return nil, q.queryErr
}

func (q *recordingQuerier) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return nil
}

func TestBulkInsert(t *testing.T) {
	t.Run("should persist each item with its place in the order", func(t *testing.T) {
		q := &recordingQuerier{}
		repo := NewPostgresOrderItemRepository(q)

		orderID := uuid.New()
		items := []orderitem.OrderItem{
			{ID: uuid.New(), OrderID: orderID, Sku: "SKU-KB", Name: "Keyboard", Quantity: 1, UnitPriceCents: 15000},
			{ID: uuid.New(), OrderID: orderID, Sku: "SKU-MS", Name: "Mouse", Quantity: 2, UnitPriceCents: 5000},
		}

		require.NoError(t, repo.BulkInsert(context.Background(), items))
		assert.Contains(t, q.sql, "position")
		require.Len(t, q.args, 14)
		assert.Equal(t, 0, q.args[6])
		assert.Equal(t, 1, q.args[13])
	})

	t.Run("should do nothing for an empty slice", func(t *testing.T) {
		q := &recordingQuerier{}
		repo := NewPostgresOrderItemRepository(q)

		require.NoError(t, repo.BulkInsert(context.Background(), nil))
		assert.Empty(t, q.sql)
	})
}

func TestGetByOrderID(t *testing.T) {
	t.Run("should read items back in insertion order", func(t *testing.T) {
		q := &recordingQuerier{queryErr: assert.AnError}
		repo := NewPostgresOrderItemRepository(q)

		_, err := repo.GetByOrderID(context.Background(), uuid.New())

		require.Error(t, err)
		assert.Contains(t, q.sql, "ORDER BY position ASC")
	})
}
