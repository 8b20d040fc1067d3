package iorderrepo

import (
	"context"

	"github.com/google/uuid"

	"github.com/ordermanager/oms/internal/service/models/order"
)

// IOrderRepository defines the order storage contract consumed by the
// service layer.
type IOrderRepository interface {
	// GetByID fetches an order row without its items. Returns
	// errs.ErrNotFound when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)

	// Insert persists a new order with version 1.
	Insert(ctx context.Context, o *order.Order) error

	// Update persists the order if its version token still matches the
	// stored one, bumping the token. Returns errs.ErrConcurrencyConflict
	// on token mismatch, errs.ErrNotFound when the row is gone.
	Update(ctx context.Context, o *order.Order) error

	// Delete removes the order row. Items cascade. Reports whether a
	// row was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// Query retrieves a filtered, sorted page of orders.
	Query(ctx context.Context, filter *order.QueryOrdersModel) (*order.PagedOrders, error)
}
