package emailsvc

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/ordermanager/oms/internal/dal/interfaces/idedup"
	"github.com/ordermanager/oms/internal/service/models/orderevent"
)

// EmailService notifies customers about order changes. Each event kind
// is absorbed at most once per order through the shared idempotency
// ledger.
type EmailService struct {
	dedup idedup.IMessageDeduplicator
}

// option is a function that configures the EmailService.
type option func(*EmailService)

// MustNewEmailService creates a new EmailService.
func MustNewEmailService(opts ...option) *EmailService {
	s := &EmailService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithDeduplicator sets the idempotency ledger for the EmailService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithDeduplicator(dedup idedup.IMessageDeduplicator) option {
	return func(s *EmailService) {
		s.dedup = dedup
	}
}

// HandleOrderCreated sends the order confirmation email.
func (s *EmailService) HandleOrderCreated(ctx context.Context, ev orderevent.OrderCreated) error {
	ctx, span := otel.Tracer("emailsvc").Start(ctx, "EmailService.HandleOrderCreated")
	defer span.End()

	first, err := s.dedup.MarkProcessedIfNotExists(ctx, orderevent.KindOrderCreated+":email:"+ev.OrderID.String())
	if err != nil {
		return err
	}
	if !first {
		slog.Info("Duplicate order created event absorbed", "order_id", ev.OrderID)

		return nil
	}

	slog.Info("Sending order confirmation email",
		"order_id", ev.OrderID,
		"customer_id", ev.CustomerID,
		"email", ev.CustomerEmail,
	)

	return nil
}

// HandleOrderUpdated sends the order change notification email.
func (s *EmailService) HandleOrderUpdated(ctx context.Context, ev orderevent.OrderUpdated) error {
	ctx, span := otel.Tracer("emailsvc").Start(ctx, "EmailService.HandleOrderUpdated")
	defer span.End()

	first, err := s.dedup.MarkProcessedIfNotExists(ctx, orderevent.KindOrderUpdated+":email:"+ev.OrderID.String())
	if err != nil {
		return err
	}
	if !first {
		slog.Info("Duplicate order updated event absorbed", "order_id", ev.OrderID)

		return nil
	}

	slog.Info("Sending order updated email",
		"order_id", ev.OrderID,
		"customer_id", ev.CustomerID,
		"updated_at", ev.UpdatedAt,
	)

	return nil
}
