package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/ordermanager/oms/internal/errs"
	"github.com/ordermanager/oms/internal/service/models/address"
	"github.com/ordermanager/oms/internal/service/models/orderitem"
)

// Order is the aggregate root: the order plus its owned items and
// shipping address, treated as a single consistency unit.
type Order struct {
	ID                    uuid.UUID             `json:"id"`
	CustomerID            uuid.UUID             `json:"customerId"`
	CustomerName          string                `json:"customerName"`
	CustomerEmail         string                `json:"customerEmail"`
	Status                Status                `json:"status"`
	PaymentStatus         PaymentStatus         `json:"paymentStatus"`
	TotalCents            int64                 `json:"totalCents"`
	FreightCostCents      int64                 `json:"freightCostCents"`
	FreightType           FreightType           `json:"freightType"`
	EstimatedDeliveryDays int                   `json:"estimatedDeliveryDays"`
	ShippingAddress       *address.Address      `json:"shippingAddress"`
	OrderItems            []orderitem.OrderItem `json:"orderItems"`
	CreatedAt             time.Time             `json:"createdAt"`
	UpdatedAt             time.Time             `json:"updatedAt"`

	// Version is the optimistic concurrency token, bumped by the store
	// on every successful write.
	Version int64 `json:"version"`
}

// New creates an order in its transient construction state: Pending,
// no items yet. Items must be attached and the total recalculated
// before the order is persisted.
func New(customerID uuid.UUID, customerName, customerEmail string) *Order {
	now := time.Now().UTC()

	return &Order{
		ID:            uuid.New(),
		CustomerID:    customerID,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// AddItem attaches an item to the order.
func (o *Order) AddItem(item orderitem.OrderItem) {
	item.OrderID = o.ID
	o.OrderItems = append(o.OrderItems, item)
}

// ClearItems discards all items.
func (o *Order) ClearItems() {
	o.OrderItems = o.OrderItems[:0]
}

// SetItems replaces the item list wholesale.
func (o *Order) SetItems(items []orderitem.OrderItem) {
	o.ClearItems()
	for _, item := range items {
		o.AddItem(item)
	}
}

// SetShippingAddress attaches the owned address value.
func (o *Order) SetShippingAddress(addr *address.Address) error {
	if addr == nil {
		return errs.InvalidArgument("shipping address is required")
	}
	o.ShippingAddress = addr

	return nil
}

// SetFreight records a freight quote.
func (o *Order) SetFreight(costCents int64, freightType FreightType, estimatedDays int) error {
	if costCents < 0 {
		return errs.InvalidArgumentf("freight cost must not be negative, got %d", costCents)
	}

	o.FreightCostCents = costCents
	o.FreightType = freightType
	o.EstimatedDeliveryDays = estimatedDays

	return nil
}

// RecalculateTotal recomputes the total from the items. It is not
// triggered automatically; every mutation that touches items must call
// it before the order is persisted.
func (o *Order) RecalculateTotal() {
	var total int64
	for i := range o.OrderItems {
		total += o.OrderItems[i].LineTotalCents()
	}
	o.TotalCents = total
}

// UpdateStatus sets the order status. Status and payment status are
// driven by distinct callers and never derived from each other.
func (o *Order) UpdateStatus(status Status) {
	o.Status = status
}

// UpdatePaymentStatus sets the payment status.
func (o *Order) UpdatePaymentStatus(status PaymentStatus) {
	o.PaymentStatus = status
}

// Cancel transitions the order to Cancelled. Completed and already
// cancelled orders cannot be cancelled.
func (o *Order) Cancel(reason string) error {
	if o.Status == StatusCompleted || o.Status == StatusCancelled {
		return errs.InvalidOperation("order in status " + o.Status.String() + " cannot be cancelled")
	}

	o.Status = StatusCancelled

	return nil
}

// UpdateCustomerName replaces the customer name.
func (o *Order) UpdateCustomerName(name string) error {
	if name == "" {
		return errs.InvalidArgument("customer name is required")
	}
	o.CustomerName = name

	return nil
}
