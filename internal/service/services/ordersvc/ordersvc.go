package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/ordermanager/oms/internal/dal/interfaces/ieventbus"
	"github.com/ordermanager/oms/internal/dal/interfaces/iordercache"
	"github.com/ordermanager/oms/internal/dal/interfaces/iorderitemrepo"
	"github.com/ordermanager/oms/internal/dal/interfaces/iorderrepo"
	"github.com/ordermanager/oms/internal/dal/interfaces/ioutboxrepo"
	"github.com/ordermanager/oms/internal/dal/postgres"
	"github.com/ordermanager/oms/internal/dal/uow"
	"github.com/ordermanager/oms/internal/errs"
	"github.com/ordermanager/oms/internal/integration/freight"
	"github.com/ordermanager/oms/internal/service/models/address"
	"github.com/ordermanager/oms/internal/service/models/order"
	"github.com/ordermanager/oms/internal/service/models/orderevent"
	"github.com/ordermanager/oms/internal/service/models/orderitem"
	"github.com/ordermanager/oms/internal/service/models/outbox"
)

// Shipment parameters assumed for the freight quote at creation time.
const (
	createWeightKg = 1.0
	createVolumeM3 = 0.01
)

// AddressLookup resolves a postal code to an address, nil when the
// code resolves to nothing.
type AddressLookup interface {
	GetAddressByCep(ctx context.Context, cep string) (*address.Address, error)
}

// FreightQuoter obtains a freight quote for a shipment.
type FreightQuoter interface {
	GetQuote(ctx context.Context, req freight.QuoteRequest) (*freight.Quote, error)
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// OrderService orchestrates order mutations: it validates commands,
// mutates the aggregate, persists through the repositories, updates
// the cache and publishes change events.
type OrderService struct {
	pgClient      *postgres.Client
	uowFactory    func() unitOfWork
	outboxRepo    ioutboxrepo.IOutboxRepository
	cache         iordercache.IOrderCacheRepository
	bus           ieventbus.IEventBus
	addressLookup AddressLookup
	freightQuoter FreightQuoter
}

func (s *OrderService) newUOW() unitOfWork {
	if s.uowFactory != nil {
		return s.uowFactory()
	}

	return uow.NewUnitOfWork(s.pgClient)
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides how units of work are created.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.uowFactory = factory
	}
}

// WithOutboxRepository sets the outbox repository used outside of
// transactions.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOutboxRepository(repo ioutboxrepo.IOutboxRepository) option {
	return func(s *OrderService) {
		s.outboxRepo = repo
	}
}

// WithOrderCache sets the order snapshot cache.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderCache(cache iordercache.IOrderCacheRepository) option {
	return func(s *OrderService) {
		s.cache = cache
	}
}

// WithEventBus sets the event publisher.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEventBus(bus ieventbus.IEventBus) option {
	return func(s *OrderService) {
		s.bus = bus
	}
}

// WithAddressLookup sets the postal code lookup collaborator.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAddressLookup(lookup AddressLookup) option {
	return func(s *OrderService) {
		s.addressLookup = lookup
	}
}

// WithFreightQuoter sets the freight quote collaborator.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithFreightQuoter(quoter FreightQuoter) option {
	return func(s *OrderService) {
		s.freightQuoter = quoter
	}
}

// CreateOrderItemCommand describes one item of a create or update
// command.
type CreateOrderItemCommand struct {
	Sku            string
	Name           string
	Quantity       int
	UnitPriceCents int64
}

// CreateOrderCommand is the create command received from the boundary.
type CreateOrderCommand struct {
	CustomerID    uuid.UUID
	CustomerName  string
	CustomerEmail string
	CustomerCep   string
	Items         []CreateOrderItemCommand
}

// AddressCommand carries the full shipping address of an update
// command.
type AddressCommand struct {
	Cep          string
	Street       string
	Complement   string
	Neighborhood string
	City         string
	State        string
}

// UpdateOrderCommand is the update command received from the boundary.
// Items replace the stored list wholesale.
type UpdateOrderCommand struct {
	ID                    uuid.UUID
	CustomerName          string
	ShippingAddress       AddressCommand
	Items                 []CreateOrderItemCommand
	FreightCostCents      int64
	FreightType           order.FreightType
	EstimatedDeliveryDays int
}

// Create builds the aggregate, quotes freight, resolves the shipping
// address, persists everything in one transaction and publishes an
// OrderCreated event after commit. Returns the new order id.
func (s *OrderService) Create(ctx context.Context, cmd CreateOrderCommand) (uuid.UUID, error) {
	o := order.New(cmd.CustomerID, cmd.CustomerName, cmd.CustomerEmail)

	for _, itemCmd := range cmd.Items {
		item, err := orderitem.New(itemCmd.Sku, itemCmd.Name, itemCmd.Quantity, itemCmd.UnitPriceCents)
		if err != nil {
			return uuid.Nil, err
		}
		o.AddItem(*item)
	}

	o.RecalculateTotal()

	quote, err := s.freightQuoter.GetQuote(ctx, freight.QuoteRequest{
		DestinationCep: cmd.CustomerCep,
		WeightKg:       createWeightKg,
		VolumeM3:       createVolumeM3,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to quote freight: %w", err)
	}
	if err := o.SetFreight(quote.PriceCents, quote.Type, quote.EstimatedDays); err != nil {
		return uuid.Nil, err
	}

	addr, err := s.addressLookup.GetAddressByCep(ctx, cmd.CustomerCep)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up address: %w", err)
	}
	if addr == nil {
		return uuid.Nil, errs.InvalidArgumentf("postal code %q resolves to no address", cmd.CustomerCep)
	}
	if err := o.SetShippingAddress(addr); err != nil {
		return uuid.Nil, err
	}

	payload, err := json.Marshal(newOrderCreatedEvent(o))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal order created event: %w", err)
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return uuid.Nil, err
	}
	defer func() { _ = work.Rollback(ctx) }()

	if err := work.OrderRepository().Insert(ctx, o); err != nil {
		return uuid.Nil, err
	}
	if err := work.OrderItemRepository().BulkInsert(ctx, o.OrderItems); err != nil {
		return uuid.Nil, err
	}

	outboxID, err := work.OutboxRepository().Insert(ctx, newOutboxMessage(orderevent.KindOrderCreated, payload))
	if err != nil {
		return uuid.Nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return uuid.Nil, err
	}

	s.publishCommitted(ctx, orderevent.KindOrderCreated, outboxID, payload)

	return o.ID, nil
}

// Update applies a full update: simple fields, shipping address and a
// wholesale item replacement. The write is guarded by the concurrency
// token; a conflict surfaces to the caller, who retries from a fresh
// read. A cache write failure never fails the operation.
func (s *OrderService) Update(ctx context.Context, cmd UpdateOrderCommand) (*order.Order, error) {
	items := make([]orderitem.OrderItem, 0, len(cmd.Items))
	for _, itemCmd := range cmd.Items {
		item, err := orderitem.New(itemCmd.Sku, itemCmd.Name, itemCmd.Quantity, itemCmd.UnitPriceCents)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	addr, err := address.New(
		cmd.ShippingAddress.Cep,
		cmd.ShippingAddress.Street,
		cmd.ShippingAddress.Complement,
		cmd.ShippingAddress.Neighborhood,
		cmd.ShippingAddress.City,
		cmd.ShippingAddress.State,
	)
	if err != nil {
		return nil, err
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback(ctx) }()

	o, err := work.OrderRepository().GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	if cmd.CustomerName != "" {
		if err := o.UpdateCustomerName(cmd.CustomerName); err != nil {
			return nil, err
		}
	}
	if err := o.SetShippingAddress(addr); err != nil {
		return nil, err
	}

	o.SetItems(items)
	o.RecalculateTotal()

	if err := o.SetFreight(cmd.FreightCostCents, cmd.FreightType, cmd.EstimatedDeliveryDays); err != nil {
		return nil, err
	}

	o.UpdatedAt = time.Now().UTC()

	if err := work.OrderRepository().Update(ctx, o); err != nil {
		return nil, err
	}
	if err := work.OrderItemRepository().ReplaceForOrder(ctx, o.ID, o.OrderItems); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(newOrderUpdatedEvent(o))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order updated event: %w", err)
	}

	outboxID, err := work.OutboxRepository().Insert(ctx, newOutboxMessage(orderevent.KindOrderUpdated, payload))
	if err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	// The cache is a read optimization, not a system of record.
	if err := s.cache.Set(ctx, o); err != nil {
		slog.Warn("Failed to write order snapshot to cache", "order_id", o.ID, "error", err)
	}

	s.publishCommitted(ctx, orderevent.KindOrderUpdated, outboxID, payload)

	return o, nil
}

// BatchUpdate processes each command independently and concurrently.
// A failure in one command is logged with the order id and never
// aborts its siblings. Returns the number of attempted commands.
func (s *OrderService) BatchUpdate(ctx context.Context, cmds []UpdateOrderCommand) (int, error) {
	limit := viper.GetInt("service.batch_concurrency")
	if limit == 0 {
		limit = 8
	}

	g := errgroup.Group{}
	g.SetLimit(limit)

	for _, cmd := range cmds {
		g.Go(func() error {
			if _, err := s.Update(ctx, cmd); err != nil {
				switch {
				case errors.Is(err, errs.ErrNotFound):
					slog.Warn("Order in batch does not exist, skipping", "order_id", cmd.ID)
				case errors.Is(err, errs.ErrConcurrencyConflict):
					slog.Warn("Concurrent write detected for order in batch", "order_id", cmd.ID)
				default:
					slog.Error("Failed to update order in batch", "order_id", cmd.ID, "error", err)
				}
			}

			return nil
		})
	}

	_ = g.Wait()

	return len(cmds), nil
}

// GetByID fetches the full aggregate.
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	work := s.newUOW()

	o, err := work.OrderRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := work.OrderItemRepository().GetByOrderID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.OrderItems = items

	return o, nil
}

// Query retrieves a filtered, sorted page of orders.
func (s *OrderService) Query(ctx context.Context, filter *order.QueryOrdersModel) (*order.PagedOrders, error) {
	return s.newUOW().OrderRepository().Query(ctx, filter)
}

// UpdateStatus sets the order status. No event is published for pure
// status changes. Reports false when the order does not exist.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) (bool, error) {
	work := s.newUOW()

	o, err := work.OrderRepository().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	o.UpdateStatus(status)
	o.UpdatedAt = time.Now().UTC()

	if err := work.OrderRepository().Update(ctx, o); err != nil {
		return false, err
	}

	return true, nil
}

// UpdatePaymentStatus sets the payment status, driven by the payment
// webhook. Decoupled from the order status by design.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status order.PaymentStatus) (bool, error) {
	work := s.newUOW()

	o, err := work.OrderRepository().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	o.UpdatePaymentStatus(status)
	o.UpdatedAt = time.Now().UTC()

	if err := work.OrderRepository().Update(ctx, o); err != nil {
		return false, err
	}

	return true, nil
}

// Cancel transitions the order to Cancelled. Completed and already
// cancelled orders surface errs.ErrInvalidOperation.
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	work := s.newUOW()

	o, err := work.OrderRepository().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	if err := o.Cancel(reason); err != nil {
		return false, err
	}
	o.UpdatedAt = time.Now().UTC()

	if err := work.OrderRepository().Update(ctx, o); err != nil {
		return false, err
	}

	slog.Info("Order cancelled", "order_id", id, "reason", reason)

	return true, nil
}

// Delete removes the full aggregate. Items and address are owned rows
// and go with it. Reports false when the order does not exist.
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.newUOW().OrderRepository().Delete(ctx, id)
}

// publishCommitted attempts direct delivery of an event whose state is
// already durable. On success the outbox row is removed; on failure it
// stays for the outbox worker, preserving at-least-once delivery.
func (s *OrderService) publishCommitted(ctx context.Context, routingKey string, outboxID int64, payload []byte) {
	if err := s.bus.Publish(ctx, routingKey, payload); err != nil {
		slog.Warn("Failed to publish event, outbox worker will retry",
			"routing_key", routingKey,
			"outbox_id", outboxID,
			"error", err,
		)

		return
	}

	if err := s.outboxRepo.Delete(ctx, outboxID); err != nil {
		slog.Error("Failed to delete outbox message after publish", "outbox_id", outboxID, "error", err)
	}
}

func newOutboxMessage(routingKey string, payload []byte) outbox.Message {
	maxRetries := viper.GetInt("rabbitmq.outbox.max_retries")
	if maxRetries == 0 {
		maxRetries = 5
	}

	now := time.Now()

	return outbox.Message{
		ExchangeName: orderevent.Exchange,
		RoutingKey:   routingKey,
		Payload:      payload,
		ContentType:  "application/json",
		MaxRetries:   maxRetries,
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	}
}

func newOrderCreatedEvent(o *order.Order) orderevent.OrderCreated {
	items := make([]orderevent.OrderCreatedItem, 0, len(o.OrderItems))
	for _, item := range o.OrderItems {
		items = append(items, orderevent.OrderCreatedItem{
			ItemID:   item.ID,
			Sku:      item.Sku,
			Quantity: item.Quantity,
		})
	}

	return orderevent.OrderCreated{
		OrderID:       o.ID,
		CustomerID:    o.CustomerID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CreatedAt:     o.CreatedAt,
		Items:         items,
	}
}

func newOrderUpdatedEvent(o *order.Order) orderevent.OrderUpdated {
	items := make([]orderevent.OrderUpdatedItem, 0, len(o.OrderItems))
	for _, item := range o.OrderItems {
		items = append(items, orderevent.OrderUpdatedItem{
			ItemID:         item.ID,
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}

	return orderevent.OrderUpdated{
		OrderID:               o.ID,
		CustomerID:            o.CustomerID,
		TotalCents:            o.TotalCents,
		EstimatedDeliveryDays: o.EstimatedDeliveryDays,
		FreightCostCents:      o.FreightCostCents,
		FreightType:           o.FreightType.String(),
		Items:                 items,
		UpdatedAt:             o.UpdatedAt,
	}
}
