package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/ordermanager/oms/internal/dal/postgres"
	"github.com/ordermanager/oms/internal/service/models/orderitem"
)

var itemColumns = []string{
	"id",
	"order_id",
	"sku",
	"name",
	"quantity",
	"unit_price_cents",
}

type PostgresOrderItemRepository struct {
	conn postgres.Querier
}

func NewPostgresOrderItemRepository(conn postgres.Querier) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
	}
}

// BulkInsert persists the given items in one statement.
func (r *PostgresOrderItemRepository) BulkInsert(ctx context.Context, items []orderitem.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	builder := sq.Insert("order_items").
		Columns(append(itemColumns, "position")...).
		PlaceholderFormat(sq.Dollar)

	// The slice index records the item's place in the order so reads
	// preserve the sequence the caller supplied.
	for pos, item := range items {
		builder = builder.Values(
			item.ID,
			item.OrderID,
			item.Sku,
			item.Name,
			item.Quantity,
			item.UnitPriceCents,
			pos,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to bulk insert order items: %w", err)
	}

	return nil
}

// ReplaceForOrder discards the stored items of the order and persists
// the given ones.
func (r *PostgresOrderItemRepository) ReplaceForOrder(ctx context.Context, orderID uuid.UUID, items []orderitem.OrderItem) error {
	query, args, err := sq.Delete("order_items").
		Where(sq.Eq{"order_id": orderID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}

	return r.BulkInsert(ctx, items)
}

// GetByOrderID fetches the items owned by an order.
func (r *PostgresOrderItemRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]orderitem.OrderItem, error) {
	query, args, err := sq.Select(itemColumns...).
		From("order_items").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("position ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []orderitem.OrderItem{}
	for rows.Next() {
		var item orderitem.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.Sku,
			&item.Name,
			&item.Quantity,
			&item.UnitPriceCents,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return items, nil
}
