package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ordermanager/oms/internal/dal/postgres"
	"github.com/ordermanager/oms/internal/errs"
	"github.com/ordermanager/oms/internal/service/models/address"
	"github.com/ordermanager/oms/internal/service/models/order"
	"github.com/ordermanager/oms/internal/service/models/orderitem"
)

var orderColumns = []string{
	"id",
	"customer_id",
	"customer_name",
	"customer_email",
	"status",
	"payment_status",
	"total_cents",
	"freight_cost_cents",
	"freight_type",
	"estimated_delivery_days",
	"cep",
	"street",
	"complement",
	"neighborhood",
	"city",
	"state",
	"created_at",
	"updated_at",
	"version",
}

// sortColumns whitelists sortable fields; anything else falls back to
// the creation timestamp.
var sortColumns = map[string]string{
	"createdAt":    "created_at",
	"status":       "status",
	"customerName": "customer_name",
	"total":        "total_cents",
}

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id                    uuid.UUID
	CustomerId            uuid.UUID
	CustomerName          string
	CustomerEmail         string
	Status                string
	PaymentStatus         string
	TotalCents            int64
	FreightCostCents      int64
	FreightType           string
	EstimatedDeliveryDays int
	Cep                   string
	Street                string
	Complement            string
	Neighborhood          string
	City                  string
	State                 string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Version               int64
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := order.ParsePaymentStatus(o.PaymentStatus)
	if err != nil {
		return nil, err
	}

	var freightType order.FreightType
	if o.FreightType != "" {
		freightType, err = order.ParseFreightType(o.FreightType)
		if err != nil {
			return nil, err
		}
	}

	model := &order.Order{
		ID:                    o.Id,
		CustomerID:            o.CustomerId,
		CustomerName:          o.CustomerName,
		CustomerEmail:         o.CustomerEmail,
		Status:                status,
		PaymentStatus:         paymentStatus,
		TotalCents:            o.TotalCents,
		FreightCostCents:      o.FreightCostCents,
		FreightType:           freightType,
		EstimatedDeliveryDays: o.EstimatedDeliveryDays,
		OrderItems:            []orderitem.OrderItem{}, // Will be populated separately
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
		Version:               o.Version,
	}

	if o.Cep != "" {
		model.ShippingAddress = &address.Address{
			Cep:          o.Cep,
			Street:       o.Street,
			Complement:   o.Complement,
			Neighborhood: o.Neighborhood,
			City:         o.City,
			State:        o.State,
		}
	}

	return model, nil
}

// OrderDalFromModel converts the service layer Order model to OrderDal.
func OrderDalFromModel(o *order.Order) *OrderDal {
	dal := &OrderDal{
		Id:                    o.ID,
		CustomerId:            o.CustomerID,
		CustomerName:          o.CustomerName,
		CustomerEmail:         o.CustomerEmail,
		Status:                o.Status.String(),
		PaymentStatus:         o.PaymentStatus.String(),
		TotalCents:            o.TotalCents,
		FreightCostCents:      o.FreightCostCents,
		FreightType:           o.FreightType.String(),
		EstimatedDeliveryDays: o.EstimatedDeliveryDays,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
		Version:               o.Version,
	}

	if o.ShippingAddress != nil {
		dal.Cep = o.ShippingAddress.Cep
		dal.Street = o.ShippingAddress.Street
		dal.Complement = o.ShippingAddress.Complement
		dal.Neighborhood = o.ShippingAddress.Neighborhood
		dal.City = o.ShippingAddress.City
		dal.State = o.ShippingAddress.State
	}

	return dal
}

func (o *OrderDal) scanFrom(row pgx.Row) error {
	return row.Scan(
		&o.Id,
		&o.CustomerId,
		&o.CustomerName,
		&o.CustomerEmail,
		&o.Status,
		&o.PaymentStatus,
		&o.TotalCents,
		&o.FreightCostCents,
		&o.FreightType,
		&o.EstimatedDeliveryDays,
		&o.Cep,
		&o.Street,
		&o.Complement,
		&o.Neighborhood,
		&o.City,
		&o.State,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.Version,
	)
}

type PostgresOrderRepository struct {
	conn postgres.Querier
}

func NewPostgresOrderRepository(conn postgres.Querier) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

// GetByID fetches a single order row without its items.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal OrderDal
	if err := dal.scanFrom(r.conn.QueryRow(ctx, query, args...)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("order", id)
		}

		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	return dal.ToModel()
}

// Insert persists a new order with version 1.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o *order.Order) error {
	dal := OrderDalFromModel(o)
	dal.Version = 1

	query, args, err := sq.Insert("orders").
		Columns(orderColumns...).
		Values(
			dal.Id,
			dal.CustomerId,
			dal.CustomerName,
			dal.CustomerEmail,
			dal.Status,
			dal.PaymentStatus,
			dal.TotalCents,
			dal.FreightCostCents,
			dal.FreightType,
			dal.EstimatedDeliveryDays,
			dal.Cep,
			dal.Street,
			dal.Complement,
			dal.Neighborhood,
			dal.City,
			dal.State,
			dal.CreatedAt,
			dal.UpdatedAt,
			dal.Version,
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	o.Version = dal.Version

	return nil
}

// Update persists the order guarded by its version token. The write is
// rejected when an intervening commit bumped the stored version.
func (r *PostgresOrderRepository) Update(ctx context.Context, o *order.Order) error {
	dal := OrderDalFromModel(o)

	query, args, err := sq.Update("orders").
		Set("customer_name", dal.CustomerName).
		Set("customer_email", dal.CustomerEmail).
		Set("status", dal.Status).
		Set("payment_status", dal.PaymentStatus).
		Set("total_cents", dal.TotalCents).
		Set("freight_cost_cents", dal.FreightCostCents).
		Set("freight_type", dal.FreightType).
		Set("estimated_delivery_days", dal.EstimatedDeliveryDays).
		Set("cep", dal.Cep).
		Set("street", dal.Street).
		Set("complement", dal.Complement).
		Set("neighborhood", dal.Neighborhood).
		Set("city", dal.City).
		Set("state", dal.State).
		Set("updated_at", dal.UpdatedAt).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": dal.Id, "version": dal.Version}).
		Suffix("RETURNING version").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, query, args...).Scan(&o.Version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.classifyStaleWrite(ctx, dal.Id)
		}

		return fmt.Errorf("failed to update order: %w", err)
	}

	return nil
}

// classifyStaleWrite tells a deleted row apart from a version
// mismatch after a zero-row update.
func (r *PostgresOrderRepository) classifyStaleWrite(ctx context.Context, id uuid.UUID) error {
	query, args, err := sq.Select("1").
		From("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build exists query: %w", err)
	}

	var one int
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.NotFound("order", id)
		}

		return fmt.Errorf("failed to check order existence: %w", err)
	}

	return errs.ConcurrencyConflict("order", id)
}

// Delete removes the order row; owned rows cascade.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	query, args, err := sq.Delete("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete order: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Query retrieves a filtered, sorted page of orders with the total
// match count.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) (*order.PagedOrders, error) {
	filter.Normalize()

	base := sq.Select(orderColumns...).From("orders").PlaceholderFormat(sq.Dollar)
	countBase := sq.Select("COUNT(*)").From("orders").PlaceholderFormat(sq.Dollar)

	conds := queryConditions(filter)
	for _, cond := range conds {
		base = base.Where(cond)
		countBase = countBase.Where(cond)
	}

	sortColumn, ok := sortColumns[filter.SortBy]
	if !ok {
		sortColumn = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	base = base.
		OrderBy(sortColumn + " " + direction).
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize))

	countQuery, countArgs, err := countBase.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.conn.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	query, args, err := base.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := []order.Order{}
	for rows.Next() {
		var dal OrderDal
		if err := dal.scanFrom(rows); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return &order.PagedOrders{
		Items:      result,
		TotalCount: total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}, nil
}

func queryConditions(filter *order.QueryOrdersModel) []sq.Sqlizer {
	conds := []sq.Sqlizer{}

	if filter.Status != nil {
		conds = append(conds, sq.Eq{"status": filter.Status.String()})
	}
	if filter.CustomerName != "" {
		conds = append(conds, sq.ILike{"customer_name": "%" + filter.CustomerName + "%"})
	}
	if filter.StartDate != nil {
		conds = append(conds, sq.GtOrEq{"created_at": *filter.StartDate})
	}
	if filter.EndDate != nil {
		conds = append(conds, sq.LtOrEq{"created_at": *filter.EndDate})
	}

	return conds
}
