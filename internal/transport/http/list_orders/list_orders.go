package listorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/ordermanager/oms/internal/errs"
	"github.com/ordermanager/oms/internal/service/models/order"
	"github.com/ordermanager/oms/internal/transport/http/converters"
	"github.com/ordermanager/oms/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	Query(ctx context.Context, filter *order.QueryOrdersModel) (*order.PagedOrders, error)
}

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}()

// ListOrders handles the list orders request.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	var req converters.ListOrdersRequest
	if err := queryDecoder.Decode(&req, r.URL.Query()); err != nil {
		httperr.Write(w, errs.InvalidArgumentf("query parameters: %v", err))

		return
	}

	filter, err := converters.QueryModelFromRequest(req)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	page, err := service.Query(r.Context(), filter)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing orders", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(converters.PagedOrdersToResponse(page)); err != nil {
		slog.Error("Error writing response for list orders", "error", err)
	}
}
