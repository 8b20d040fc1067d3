package listdeadletters

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ordermanager/oms/internal/errs"
	"github.com/ordermanager/oms/internal/service/models/deadletter"
	"github.com/ordermanager/oms/internal/transport/http/httperr"
)

const defaultLimit = 50

// repository is an interface for the dead-letter sink.
type repository interface {
	List(ctx context.Context, limit int) ([]deadletter.Record, error)
}

type recordResponse struct {
	ID           int64           `json:"id"`
	EventKind    string          `json:"eventKind"`
	QueueName    string          `json:"queueName"`
	ExchangeName string          `json:"exchangeName"`
	Payload      json.RawMessage `json:"payload"`
	FailureCount int64           `json:"failureCount"`
	LastError    string          `json:"lastError"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ListDeadLetters lists captured dead letters, newest first, for
// manual triage.
func ListDeadLetters(w http.ResponseWriter, r *http.Request, repo repository) {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httperr.Write(w, errs.InvalidArgumentf("limit %q is not a positive integer", raw))

			return
		}
		limit = parsed
	}

	records, err := repo.List(r.Context(), limit)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing dead letters", "error", err)

		return
	}

	resp := make([]recordResponse, len(records))
	for i, rec := range records {
		resp[i] = recordResponse{
			ID:           rec.ID,
			EventKind:    rec.EventKind,
			QueueName:    rec.QueueName,
			ExchangeName: rec.ExchangeName,
			Payload:      json.RawMessage(rec.Payload),
			FailureCount: rec.FailureCount,
			LastError:    rec.LastError,
			CreatedAt:    rec.CreatedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Error writing response for list dead letters", "error", err)
	}
}
