package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/entity"
)

// StoredOrder is an order row together with its bookkeeping columns.
type StoredOrder struct {
	ID        string
	Format    string
	Status    constants.OrderStatus
	CreatedAt time.Time
	Order     *entity.Order
}

// ListFilter narrows List and Count. Zero values match everything.
type ListFilter struct {
	From   *time.Time
	To     *time.Time
	Format string
	Status constants.OrderStatus
	Limit  int
}

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) (*entity.Order, error)
	Get(ctx context.Context, id string) (*StoredOrder, error)
	List(ctx context.Context, filter ListFilter) ([]*StoredOrder, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

type orderRepository struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewOrderRepository(db *DB, logger *slog.Logger) OrderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

var orderColumns = []string{
	colID, colReference, colFormat, colStatus, colCustomerCompany, colCustomerCountry,
	colFreightPrice, colFreightCurrency, colAttachment, colPayload, colCreatedAt,
}

// Create stores order under a fresh ID. The format and fallback flag are read
// from ctx.
func (r *orderRepository) Create(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	if order == nil {
		return nil, common.NewAppError("INVALID_ORDER", "order is nil", common.ErrInvalidInput)
	}
	v := common.NewValidator().
		Field("order_reference", order.OrderReference, common.Required, common.MaxLen(255)).
		Field("customer.company", order.Customer.Company, common.Required, common.MinLen(2), common.MaxLen(255))
	if order.FreightCurrency != "" {
		v.Field("freight_currency", order.FreightCurrency, common.CurrencyCode)
	}
	if err := v.Error(); err != nil {
		return nil, err
	}

	stored := order.Clone()
	stored.ID = uuid.NewString()
	payload, err := json.Marshal(stored)
	if err != nil {
		return nil, common.WrapError(err, "encode order payload")
	}

	var currency any
	if stored.FreightCurrency != "" {
		currency = stored.FreightCurrency
	}
	var price any
	if stored.FreightPrice != nil {
		price = *stored.FreightPrice
	}
	attachment := ""
	if len(stored.AttachmentFilenames) > 0 {
		attachment = stored.AttachmentFilenames[0]
	}
	status := constants.StatusFor(common.FallbackFromContext(ctx))
	format := common.FormatFromContext(ctx)

	query, args := entsql.Dialect(r.db.Dialect()).
		Insert(ordersTable).
		Columns(orderColumns...).
		Values(
			stored.ID, stored.OrderReference, format, string(status),
			stored.Customer.Company, stored.Customer.Address.Country,
			price, currency, attachment, string(payload), r.now().UTC(),
		).
		Query()
	if _, err := r.db.drv.DB().ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to insert order", "order_reference", stored.OrderReference, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return stored, nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (*StoredOrder, error) {
	query, args := entsql.Dialect(r.db.Dialect()).
		Select(colID, colFormat, colStatus, colPayload, colCreatedAt).
		From(entsql.Table(ordersTable)).
		Where(entsql.EQ(colID, id)).
		Query()
	rows, err := r.db.drv.DB().QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to get order", "id", id, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, common.NewAppError("ORDER_NOT_FOUND", "order "+id+" not found", common.ErrNotFound)
	}
	return orders[0], nil
}

// List returns orders newest first.
func (r *orderRepository) List(ctx context.Context, filter ListFilter) ([]*StoredOrder, error) {
	sel := entsql.Dialect(r.db.Dialect()).
		Select(colID, colFormat, colStatus, colPayload, colCreatedAt).
		From(entsql.Table(ordersTable))
	if p := filter.predicate(); p != nil {
		sel = sel.Where(p)
	}
	sel = sel.OrderBy(entsql.Desc(colCreatedAt), colID)
	if filter.Limit > 0 {
		sel = sel.Limit(filter.Limit)
	}
	query, args := sel.Query()

	rows, err := r.db.drv.DB().QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list orders", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *orderRepository) Count(ctx context.Context, filter ListFilter) (int, error) {
	sel := entsql.Dialect(r.db.Dialect()).
		Select(entsql.Count("*")).
		From(entsql.Table(ordersTable))
	if p := filter.predicate(); p != nil {
		sel = sel.Where(p)
	}
	query, args := sel.Query()

	var n int
	if err := r.db.drv.DB().QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		r.logger.Error("failed to count orders", "error", err)
		return 0, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return n, nil
}

func (f ListFilter) predicate() *entsql.Predicate {
	var preds []*entsql.Predicate
	if f.From != nil {
		preds = append(preds, entsql.GTE(colCreatedAt, f.From.UTC()))
	}
	if f.To != nil {
		preds = append(preds, entsql.LT(colCreatedAt, f.To.UTC()))
	}
	if f.Format != "" {
		preds = append(preds, entsql.EQ(colFormat, f.Format))
	}
	if f.Status != "" {
		preds = append(preds, entsql.EQ(colStatus, string(f.Status)))
	}
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	}
	return entsql.And(preds...)
}

func scanOrders(rows *sql.Rows) ([]*StoredOrder, error) {
	var out []*StoredOrder
	for rows.Next() {
		var (
			so      StoredOrder
			status  string
			payload string
		)
		if err := rows.Scan(&so.ID, &so.Format, &status, &payload, &so.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		so.Status = constants.OrderStatus(status)
		so.Order = &entity.Order{}
		if err := json.Unmarshal([]byte(payload), so.Order); err != nil {
			return nil, common.NewAppError("CORRUPT_ORDER", "stored payload of order "+so.ID+" is unreadable", errors.Join(common.ErrInternal, err))
		}
		out = append(out, &so)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}
