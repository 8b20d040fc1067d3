package converters

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ordermanager/oms/internal/errs"
	"github.com/ordermanager/oms/internal/service/models/order"
	"github.com/ordermanager/oms/internal/service/services/ordersvc"
)

var validate = validator.New()

// Validate runs struct-tag validation and wraps failures as invalid
// argument errors.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return errs.InvalidArgument(err.Error())
	}

	return nil
}

// OrderItemRequest is one item of a create or update request.
type OrderItemRequest struct {
	Sku            string `json:"sku" validate:"required,max=64"`
	Name           string `json:"name" validate:"required"`
	Quantity       int    `json:"quantity" validate:"required,gt=0"`
	UnitPriceCents int64  `json:"unitPriceCents" validate:"gte=0"`
}

// CreateOrderRequest is the create order request body.
type CreateOrderRequest struct {
	CustomerID    uuid.UUID          `json:"customerId" validate:"required"`
	CustomerName  string             `json:"customerName" validate:"required"`
	CustomerEmail string             `json:"customerEmail" validate:"required,email"`
	CustomerCep   string             `json:"customerCep" validate:"required"`
	Items         []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// AddressRequest is the shipping address of an update request.
type AddressRequest struct {
	Cep          string `json:"cep" validate:"required"`
	Street       string `json:"street" validate:"required"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood" validate:"required"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
}

// UpdateOrderRequest is the update order request body. Items replace
// the stored list wholesale.
type UpdateOrderRequest struct {
	CustomerName          string             `json:"customerName"`
	ShippingAddress       AddressRequest     `json:"shippingAddress" validate:"required"`
	Items                 []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	FreightCostCents      int64              `json:"freightCostCents" validate:"gte=0"`
	FreightType           string             `json:"freightType" validate:"required"`
	EstimatedDeliveryDays int                `json:"estimatedDeliveryDays" validate:"gte=0"`
}

// BatchUpdateEntry is one order of a batch update request.
type BatchUpdateEntry struct {
	ID uuid.UUID `json:"id" validate:"required"`
	UpdateOrderRequest
}

// BatchUpdateRequest is the batch update request body.
type BatchUpdateRequest struct {
	Orders []BatchUpdateEntry `json:"orders" validate:"required,min=1,dive"`
}

// ListOrdersRequest carries the query-string filters of a list
// request. Dates are RFC 3339.
type ListOrdersRequest struct {
	Status       string `schema:"status"`
	CustomerName string `schema:"customerName"`
	StartDate    string `schema:"startDate"`
	EndDate      string `schema:"endDate"`
	SortBy       string `schema:"sortBy"`
	SortDesc     bool   `schema:"sortDesc"`
	Page         int    `schema:"page"`
	PageSize     int    `schema:"pageSize"`
}

// CreateOrderCommandFromRequest converts a create request to the
// service command.
func CreateOrderCommandFromRequest(req CreateOrderRequest) ordersvc.CreateOrderCommand {
	return ordersvc.CreateOrderCommand{
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerCep:   req.CustomerCep,
		Items:         itemCommandsFromRequest(req.Items),
	}
}

// UpdateOrderCommandFromRequest converts an update request to the
// service command. The freight type string is parsed here, at the
// boundary.
func UpdateOrderCommandFromRequest(id uuid.UUID, req UpdateOrderRequest) (ordersvc.UpdateOrderCommand, error) {
	freightType, err := order.ParseFreightType(req.FreightType)
	if err != nil {
		return ordersvc.UpdateOrderCommand{}, fmt.Errorf("failed to parse freight type: %w", err)
	}

	return ordersvc.UpdateOrderCommand{
		ID:           id,
		CustomerName: req.CustomerName,
		ShippingAddress: ordersvc.AddressCommand{
			Cep:          req.ShippingAddress.Cep,
			Street:       req.ShippingAddress.Street,
			Complement:   req.ShippingAddress.Complement,
			Neighborhood: req.ShippingAddress.Neighborhood,
			City:         req.ShippingAddress.City,
			State:        req.ShippingAddress.State,
		},
		Items:                 itemCommandsFromRequest(req.Items),
		FreightCostCents:      req.FreightCostCents,
		FreightType:           freightType,
		EstimatedDeliveryDays: req.EstimatedDeliveryDays,
	}, nil
}

// BatchUpdateCommandsFromRequest converts a batch update request to
// service commands.
func BatchUpdateCommandsFromRequest(req BatchUpdateRequest) ([]ordersvc.UpdateOrderCommand, error) {
	cmds := make([]ordersvc.UpdateOrderCommand, len(req.Orders))
	for i, entry := range req.Orders {
		cmd, err := UpdateOrderCommandFromRequest(entry.ID, entry.UpdateOrderRequest)
		if err != nil {
			return nil, fmt.Errorf("failed to convert order %d: %w", i, err)
		}
		cmds[i] = cmd
	}

	return cmds, nil
}

// QueryModelFromRequest converts list query parameters to the service
// filter model. Status and dates are parsed here, at the boundary.
func QueryModelFromRequest(req ListOrdersRequest) (*order.QueryOrdersModel, error) {
	model := &order.QueryOrdersModel{
		CustomerName: req.CustomerName,
		SortBy:       req.SortBy,
		SortDesc:     req.SortDesc,
		Page:         req.Page,
		PageSize:     req.PageSize,
	}

	if req.Status != "" {
		status, err := order.ParseStatus(req.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to parse status: %w", err)
		}
		model.Status = &status
	}

	if req.StartDate != "" {
		start, err := time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			return nil, errs.InvalidArgumentf("startDate: %v", err)
		}
		model.StartDate = &start
	}

	if req.EndDate != "" {
		end, err := time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			return nil, errs.InvalidArgumentf("endDate: %v", err)
		}
		model.EndDate = &end
	}

	return model, nil
}

func itemCommandsFromRequest(items []OrderItemRequest) []ordersvc.CreateOrderItemCommand {
	cmds := make([]ordersvc.CreateOrderItemCommand, len(items))
	for i, item := range items {
		cmds[i] = ordersvc.CreateOrderItemCommand{
			Sku:            item.Sku,
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		}
	}

	return cmds
}

// AddressResponse is the shipping address projection.
type AddressResponse struct {
	Cep          string `json:"cep"`
	Street       string `json:"street"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// OrderItemResponse is one item of an order projection.
type OrderItemResponse struct {
	ID             uuid.UUID `json:"id"`
	Sku            string    `json:"sku"`
	Name           string    `json:"name"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	LineTotalCents int64     `json:"lineTotalCents"`
}

// OrderResponse is the order projection returned by read and write
// endpoints.
type OrderResponse struct {
	ID                    uuid.UUID           `json:"id"`
	CustomerID            uuid.UUID           `json:"customerId"`
	CustomerName          string              `json:"customerName"`
	CustomerEmail         string              `json:"customerEmail"`
	Status                string              `json:"status"`
	PaymentStatus         string              `json:"paymentStatus"`
	TotalCents            int64               `json:"totalCents"`
	FreightCostCents      int64               `json:"freightCostCents"`
	FreightType           string              `json:"freightType"`
	EstimatedDeliveryDays int                 `json:"estimatedDeliveryDays"`
	ShippingAddress       *AddressResponse    `json:"shippingAddress,omitempty"`
	Items                 []OrderItemResponse `json:"items"`
	CreatedAt             time.Time           `json:"createdAt"`
	UpdatedAt             time.Time           `json:"updatedAt"`
	Version               int64               `json:"version"`
}

// PagedOrdersResponse is one page of orders plus the total match
// count.
type PagedOrdersResponse struct {
	Items      []OrderResponse `json:"items"`
	TotalCount int64           `json:"totalCount"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
}

// OrderToResponse converts an order aggregate to its response
// projection.
func OrderToResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.OrderItems))
	for i, item := range o.OrderItems {
		items[i] = OrderItemResponse{
			ID:             item.ID,
			Sku:            item.Sku,
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.LineTotalCents(),
		}
	}

	resp := OrderResponse{
		ID:                    o.ID,
		CustomerID:            o.CustomerID,
		CustomerName:          o.CustomerName,
		CustomerEmail:         o.CustomerEmail,
		Status:                o.Status.String(),
		PaymentStatus:         o.PaymentStatus.String(),
		TotalCents:            o.TotalCents,
		FreightCostCents:      o.FreightCostCents,
		FreightType:           o.FreightType.String(),
		EstimatedDeliveryDays: o.EstimatedDeliveryDays,
		Items:                 items,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
		Version:               o.Version,
	}

	if o.ShippingAddress != nil {
		resp.ShippingAddress = &AddressResponse{
			Cep:          o.ShippingAddress.Cep,
			Street:       o.ShippingAddress.Street,
			Complement:   o.ShippingAddress.Complement,
			Neighborhood: o.ShippingAddress.Neighborhood,
			City:         o.ShippingAddress.City,
			State:        o.ShippingAddress.State,
		}
	}

	return resp
}

// PagedOrdersToResponse converts a result page to its response
// projection.
func PagedOrdersToResponse(page *order.PagedOrders) PagedOrdersResponse {
	items := make([]OrderResponse, len(page.Items))
	for i := range page.Items {
		items[i] = OrderToResponse(&page.Items[i])
	}

	return PagedOrdersResponse{
		Items:      items,
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
	}
}
