package updateorderstatus

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ordermanager/oms/internal/errs"
	"github.com/ordermanager/oms/internal/service/models/order"
	"github.com/ordermanager/oms/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) (bool, error)
}

type request struct {
	Status string `json:"status"`
}

// UpdateOrderStatus handles the update order status request. No event
// is published for status changes.
func UpdateOrderStatus(w http.ResponseWriter, r *http.Request, rawID string, service service) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		httperr.Write(w, errs.InvalidArgumentf("order id %q is not a uuid", rawID))

		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		slog.Error("Error decoding request body for update order status", "error", err)

		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	ok, err := service.UpdateStatus(r.Context(), id, status)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error updating order status", "order_id", id, "error", err)

		return
	}
	if !ok {
		httperr.Write(w, errs.NotFound("order", id))

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
