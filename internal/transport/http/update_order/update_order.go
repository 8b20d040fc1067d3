package updateorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ordermanager/oms/internal/errs"
	"github.com/ordermanager/oms/internal/service/models/order"
	"github.com/ordermanager/oms/internal/service/services/ordersvc"
	"github.com/ordermanager/oms/internal/transport/http/converters"
	"github.com/ordermanager/oms/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	Update(ctx context.Context, cmd ordersvc.UpdateOrderCommand) (*order.Order, error)
}

// UpdateOrder handles the update order request. The request body
// replaces the stored items wholesale.
func UpdateOrder(w http.ResponseWriter, r *http.Request, rawID string, service service) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		httperr.Write(w, errs.InvalidArgumentf("order id %q is not a uuid", rawID))

		return
	}

	var req converters.UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		slog.Error("Error decoding request body for update order", "error", err)

		return
	}

	if err := converters.Validate(req); err != nil {
		httperr.Write(w, err)

		return
	}

	cmd, err := converters.UpdateOrderCommandFromRequest(id, req)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	updated, err := service.Update(r.Context(), cmd)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error updating order", "order_id", id, "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(converters.OrderToResponse(updated)); err != nil {
		slog.Error("Error writing response for update order", "error", err)
	}
}
