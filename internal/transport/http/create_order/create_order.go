package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ordermanager/oms/internal/service/services/ordersvc"
	"github.com/ordermanager/oms/internal/transport/http/converters"
	"github.com/ordermanager/oms/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	Create(ctx context.Context, cmd ordersvc.CreateOrderCommand) (uuid.UUID, error)
}

// CreateOrder handles the create order request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	var req converters.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if err := converters.Validate(req); err != nil {
		httperr.Write(w, err)

		return
	}

	id, err := service.Create(r.Context(), converters.CreateOrderCommandFromRequest(req))
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error creating order", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(map[string]uuid.UUID{"id": id}); err != nil {
		slog.Error("Error writing response for create order", "error", err)
	}
}
