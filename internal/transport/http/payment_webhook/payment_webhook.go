package paymentwebhook

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
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status order.PaymentStatus) (bool, error)
}

type request struct {
	OrderID       uuid.UUID `json:"orderId"`
	PaymentStatus string    `json:"paymentStatus"`
}

// PaymentWebhook handles payment provider notifications. Unknown
// orders are acknowledged with 404 so the provider stops retrying.
func PaymentWebhook(w http.ResponseWriter, r *http.Request, service service) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		slog.Error("Error decoding request body for payment webhook", "error", err)

		return
	}

	status, err := order.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	ok, err := service.UpdatePaymentStatus(r.Context(), req.OrderID, status)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error updating payment status", "order_id", req.OrderID, "error", err)

		return
	}
	if !ok {
		httperr.Write(w, errs.NotFound("order", req.OrderID))

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
