package iorderitemrepo

import (
	"context"

	"github.com/google/uuid"

	"github.com/ordermanager/oms/internal/service/models/orderitem"
)

// IOrderItemRepository defines the order item storage contract.
type IOrderItemRepository interface {
	// BulkInsert persists the items of a freshly created order.
	BulkInsert(ctx context.Context, items []orderitem.OrderItem) error

	// ReplaceForOrder discards the stored items of an order and
	// persists the given ones, matching the replace-all update
	// semantics.
	ReplaceForOrder(ctx context.Context, orderID uuid.UUID, items []orderitem.OrderItem) error

	// GetByOrderID fetches the items owned by an order.
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]orderitem.OrderItem, error)
}
