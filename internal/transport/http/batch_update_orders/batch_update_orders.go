package batchupdateorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ordermanager/oms/internal/service/services/ordersvc"
	"github.com/ordermanager/oms/internal/transport/http/converters"
	"github.com/ordermanager/oms/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	BatchUpdate(ctx context.Context, cmds []ordersvc.UpdateOrderCommand) (int, error)
}

// BatchUpdateOrders handles the batch update request. Failures of
// individual orders are absorbed by the service; the response reports
// how many updates were attempted.
func BatchUpdateOrders(w http.ResponseWriter, r *http.Request, service service) {
	var req converters.BatchUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		slog.Error("Error decoding request body for batch update", "error", err)

		return
	}

	if err := converters.Validate(req); err != nil {
		httperr.Write(w, err)

		return
	}

	cmds, err := converters.BatchUpdateCommandsFromRequest(req)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	processed, err := service.BatchUpdate(r.Context(), cmds)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error performing batch update", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(map[string]int{"processed": processed}); err != nil {
		slog.Error("Error writing response for batch update", "error", err)
	}
}
