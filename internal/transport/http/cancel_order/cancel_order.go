package cancelorder

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ordermanager/oms/internal/errs"
	"github.com/ordermanager/oms/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	Cancel(ctx context.Context, id uuid.UUID, reason string) (bool, error)
}

type request struct {
	Reason string `json:"reason"`
}

// CancelOrder handles the cancel order request. The body is optional;
// a reason, when given, is recorded in the audit log.
func CancelOrder(w http.ResponseWriter, r *http.Request, rawID string, service service) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		httperr.Write(w, errs.InvalidArgumentf("order id %q is not a uuid", rawID))

		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		slog.Error("Error decoding request body for cancel order", "error", err)

		return
	}

	ok, err := service.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error cancelling order", "order_id", id, "error", err)

		return
	}
	if !ok {
		httperr.Write(w, errs.NotFound("order", id))

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
