package orderevent

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys on the orders exchange.
const (
	Exchange         = "orders"
	KindOrderCreated = "order.created"
	KindOrderUpdated = "order.updated"
)

// OrderCreated is published once per successful create. Items carry no
// price deliberately, to keep the event small and decoupled from
// pricing changes.
type OrderCreated struct {
	OrderID       uuid.UUID          `json:"orderId"`
	CustomerID    uuid.UUID          `json:"customerId"`
	CustomerName  string             `json:"customerName"`
	CustomerEmail string             `json:"customerEmail"`
	CreatedAt     time.Time          `json:"createdAt"`
	Items         []OrderCreatedItem `json:"items"`
}

// OrderCreatedItem is the minimal per-item summary in OrderCreated.
type OrderCreatedItem struct {
	ItemID   uuid.UUID `json:"itemId"`
	Sku      string    `json:"sku"`
	Quantity int       `json:"quantity"`
}

// OrderUpdated is published once per successful update with the full
// item snapshot.
type OrderUpdated struct {
	OrderID               uuid.UUID          `json:"orderId"`
	CustomerID            uuid.UUID          `json:"customerId"`
	TotalCents            int64              `json:"totalCents"`
	EstimatedDeliveryDays int                `json:"estimatedDeliveryDays"`
	FreightCostCents      int64              `json:"freightCostCents"`
	FreightType           string             `json:"freightType"`
	Items                 []OrderUpdatedItem `json:"items"`
	UpdatedAt             time.Time          `json:"updatedAt"`
}

// OrderUpdatedItem is the item snapshot in OrderUpdated.
type OrderUpdatedItem struct {
	ItemID         uuid.UUID `json:"itemId"`
	Name           string    `json:"name"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
}
