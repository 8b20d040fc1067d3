package getorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ordermanager/oms/internal/errs"
	"github.com/ordermanager/oms/internal/service/models/order"
	"github.com/ordermanager/oms/internal/transport/http/converters"
	"github.com/ordermanager/oms/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

// GetOrder handles the get order request.
func GetOrder(w http.ResponseWriter, r *http.Request, rawID string, service service) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		httperr.Write(w, errs.InvalidArgumentf("order id %q is not a uuid", rawID))

		return
	}

	o, err := service.GetByID(r.Context(), id)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(converters.OrderToResponse(o)); err != nil {
		slog.Error("Error writing response for get order", "error", err)
	}
}
