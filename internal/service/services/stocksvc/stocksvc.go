package stocksvc

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/ordermanager/oms/internal/dal/interfaces/idedup"
	"github.com/ordermanager/oms/internal/service/models/orderevent"
)

// StockService adjusts stock in response to order change events. Each
// event kind is absorbed at most once per order through the shared
// idempotency ledger.
type StockService struct {
	dedup idedup.IMessageDeduplicator
}

// option is a function that configures the StockService.
type option func(*StockService)

// MustNewStockService creates a new StockService.
func MustNewStockService(opts ...option) *StockService {
	s := &StockService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithDeduplicator sets the idempotency ledger for the StockService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithDeduplicator(dedup idedup.IMessageDeduplicator) option {
	return func(s *StockService) {
		s.dedup = dedup
	}
}

// HandleOrderCreated reserves stock for a freshly created order.
func (s *StockService) HandleOrderCreated(ctx context.Context, ev orderevent.OrderCreated) error {
	ctx, span := otel.Tracer("stocksvc").Start(ctx, "StockService.HandleOrderCreated")
	defer span.End()

	first, err := s.dedup.MarkProcessedIfNotExists(ctx, orderevent.KindOrderCreated+":stock:"+ev.OrderID.String())
	if err != nil {
		return err
	}
	if !first {
		slog.Info("Duplicate order created event absorbed", "order_id", ev.OrderID)

		return nil
	}

	for _, item := range ev.Items {
		slog.Info("Reserving stock",
			"order_id", ev.OrderID,
			"sku", item.Sku,
			"quantity", item.Quantity,
		)
	}

	return nil
}

// HandleOrderUpdated re-reserves stock against the replaced item list.
func (s *StockService) HandleOrderUpdated(ctx context.Context, ev orderevent.OrderUpdated) error {
	ctx, span := otel.Tracer("stocksvc").Start(ctx, "StockService.HandleOrderUpdated")
	defer span.End()

	first, err := s.dedup.MarkProcessedIfNotExists(ctx, orderevent.KindOrderUpdated+":stock:"+ev.OrderID.String())
	if err != nil {
		return err
	}
	if !first {
		slog.Info("Duplicate order updated event absorbed", "order_id", ev.OrderID)

		return nil
	}

	for _, item := range ev.Items {
		slog.Info("Adjusting stock reservation",
			"order_id", ev.OrderID,
			"item_id", item.ItemID,
			"quantity", item.Quantity,
		)
	}

	return nil
}
