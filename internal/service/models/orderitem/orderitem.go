package orderitem

import (
	"github.com/google/uuid"

	"github.com/ordermanager/oms/internal/errs"
)

// MaxSkuLength bounds the sku column.
const MaxSkuLength = 64

// OrderItem represents an item within an order. It is owned by its
// order and carries no back-reference to it beyond the order id.
type OrderItem struct {
	ID             uuid.UUID `json:"id"`
	OrderID        uuid.UUID `json:"orderId"`
	Sku            string    `json:"sku"`
	Name           string    `json:"name"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
}

// New creates a valid order item. The order id is assigned when the
// item is attached to an order.
func New(sku, name string, quantity int, unitPriceCents int64) (*OrderItem, error) {
	if sku == "" {
		return nil, errs.InvalidArgument("sku is required")
	}
	if len(sku) > MaxSkuLength {
		return nil, errs.InvalidArgumentf("sku exceeds %d characters", MaxSkuLength)
	}
	if quantity <= 0 {
		return nil, errs.InvalidArgumentf("quantity must be greater than zero, got %d", quantity)
	}
	if unitPriceCents <= 0 {
		return nil, errs.InvalidArgumentf("unit price must be greater than zero, got %d", unitPriceCents)
	}

	return &OrderItem{
		ID:             uuid.New(),
		Sku:            sku,
		Name:           name,
		Quantity:       quantity,
		UnitPriceCents: unitPriceCents,
	}, nil
}

// LineTotalCents returns the derived line total.
func (i *OrderItem) LineTotalCents() int64 {
	return int64(i.Quantity) * i.UnitPriceCents
}
