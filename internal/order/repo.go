package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/backend-pupuseria/internal/common"
	"github.com/noah-isme/backend-pupuseria/internal/money"
)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repo persists orders and their lines.
type Repo struct {
	db DB
}

// NewRepo constructs a Repo.
func NewRepo(db DB) *Repo {
	return &Repo{db: db}
}

const orderColumns = `id, business_day, is_delivery, delivery_cost_cents, total_cents, created_at`

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o             Order
		day           time.Time
		deliveryCents int64
		totalCents    int64
	)
	if err := row.Scan(&o.ID, &day, &o.IsDelivery, &deliveryCents, &totalCents, &o.CreatedAt); err != nil {
		return Order{}, err
	}
	o.BusinessDay = common.FormatDay(day)
	o.DeliveryCost = money.FromCents(deliveryCents)
	o.Total = money.FromCents(totalCents)
	o.Items = []Item{}
	return o, nil
}

// ListByDay returns a business day's orders with lines, newest first.
func (r *Repo) ListByDay(ctx context.Context, day time.Time) ([]Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE business_day = $1
		ORDER BY created_at DESC`, day)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	orders := []Order{}
	ids := []uuid.UUID{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(ids) == 0 {
		return orders, nil
	}
	itemsByOrder, err := r.loadItems(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if items, ok := itemsByOrder[orders[i].ID]; ok {
			orders[i].Items = items
		}
	}
	return orders, nil
}

// GetByID returns one order with its lines. Missing orders surface pgx.ErrNoRows.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return Order{}, err
	}
	itemsByOrder, err := r.loadItems(ctx, r.db, []uuid.UUID{o.ID})
	if err != nil {
		return Order{}, err
	}
	if items, ok := itemsByOrder[o.ID]; ok {
		o.Items = items
	}
	return o, nil
}

// Create persists a priced draft and its lines in one transaction.
func (r *Repo) Create(ctx context.Context, draft Draft) (Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	var (
		id        uuid.UUID
		createdAt time.Time
	)
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (business_day, is_delivery, delivery_cost_cents, total_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		draft.BusinessDay, draft.IsDelivery, draft.DeliveryCost.Cents(), draft.Total.Cents()).
		Scan(&id, &createdAt)
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	if err := insertItems(ctx, tx, id, draft.Items); err != nil {
		return Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("commit: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Replace overwrites an order's fields and lines atomically: the old lines are
// deleted and the new priced set inserted in the same transaction.
func (r *Repo) Replace(ctx context.Context, id uuid.UUID, draft Draft) (Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET business_day = $2, is_delivery = $3, delivery_cost_cents = $4, total_cents = $5
		WHERE id = $1`,
		id, draft.BusinessDay, draft.IsDelivery, draft.DeliveryCost.Cents(), draft.Total.Cents())
	if err != nil {
		return Order{}, fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Order{}, pgx.ErrNoRows
	}
	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return Order{}, fmt.Errorf("delete order items: %w", err)
	}
	if err := insertItems(ctx, tx, id, draft.Items); err != nil {
		return Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("commit: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes an order; lines go with it via ON DELETE CASCADE.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete order: %w", err)
	}
	return tag.RowsAffected(), nil
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []DraftItem) error {
	for pos, item := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, masa, quantity, unit_price_cents, line_total_cents, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			orderID, item.ProductID, item.Masa, item.Quantity,
			item.UnitPrice.Cents(), item.LineTotal.Cents(), pos)
		if err != nil {
			return fmt.Errorf("insert order item %d: %w", pos, err)
		}
	}
	return nil
}

func (r *Repo) loadItems(ctx context.Context, q querier, orderIDs []uuid.UUID) (map[uuid.UUID][]Item, error) {
	rows, err := q.Query(ctx, `
		SELECT oi.order_id, oi.id, oi.product_id, p.name, oi.masa, oi.quantity,
		       oi.unit_price_cents, oi.line_total_cents, p.is_small
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.position`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	result := make(map[uuid.UUID][]Item, len(orderIDs))
	for rows.Next() {
		var (
			orderID    uuid.UUID
			item       Item
			unitCents  int64
			totalCents int64
		)
		err := rows.Scan(&orderID, &item.ID, &item.ProductID, &item.ProductName, &item.Masa,
			&item.Quantity, &unitCents, &totalCents, &item.PromoEligible)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.UnitPrice = money.FromCents(unitCents)
		item.LineTotal = money.FromCents(totalCents)
		result[orderID] = append(result[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	return result, nil
}
