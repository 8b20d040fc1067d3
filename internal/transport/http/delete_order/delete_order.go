package deleteorder

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ordermanager/oms/internal/errs"
	"github.com/ordermanager/oms/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// DeleteOrder handles the delete order request. Items go with the
// order; deleting a missing order is a 404.
func DeleteOrder(w http.ResponseWriter, r *http.Request, rawID string, service service) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		httperr.Write(w, errs.InvalidArgumentf("order id %q is not a uuid", rawID))

		return
	}

	ok, err := service.Delete(r.Context(), id)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error deleting order", "order_id", id, "error", err)

		return
	}
	if !ok {
		httperr.Write(w, errs.NotFound("order", id))

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
