package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/backend-pupuseria/internal/common"
	"github.com/noah-isme/backend-pupuseria/internal/money"
)

// ProductSummary aggregates a day's lines by product name, masa note, and
// promotion flag. Totals are sums of stored line totals, never recomputed.
type ProductSummary struct {
	Name     string      `json:"name"`
	Masa     *string     `json:"masa,omitempty"`
	IsSmall  bool        `json:"is_small"`
	Quantity int         `json:"quantity"`
	Total    money.Money `json:"total"`
}

// TopProduct is one entry of the top-by-quantity ranking.
type TopProduct struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// DayTotals summarises a business day's orders.
type DayTotals struct {
	OrderCount    int         `json:"order_count"`
	Total         money.Money `json:"total"`
	DeliveryCount int         `json:"delivery_count"`
	DeliveryCost  money.Money `json:"delivery_cost"`
}

// DaySales is one day's slice of a period summary.
type DaySales struct {
	Date       string      `json:"date"`
	OrderCount int         `json:"order_count"`
	Total      money.Money `json:"total"`
}

// ExportRow is one CSV line of a day's export: an order line joined with its
// order's stored fields.
type ExportRow struct {
	OrderID      uuid.UUID
	CreatedAt    time.Time
	ProductName  string
	Masa         *string
	Quantity     int
	UnitPrice    money.Money
	LineTotal    money.Money
	IsDelivery   bool
	DeliveryCost money.Money
	OrderTotal   money.Money
}

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo reads reporting aggregates from stored orders and lines.
type Repo struct {
	db DB
}

// NewRepo constructs a Repo.
func NewRepo(db DB) *Repo {
	return &Repo{db: db}
}

// DayTotals aggregates the orders of one business day.
func (r *Repo) DayTotals(ctx context.Context, day time.Time) (DayTotals, error) {
	var (
		t             DayTotals
		totalCents    int64
		deliveryCents int64
	)
	err := r.db.QueryRow(ctx, `
		SELECT count(*),
		       COALESCE(sum(total_cents), 0),
		       count(*) FILTER (WHERE is_delivery),
		       COALESCE(sum(delivery_cost_cents) FILTER (WHERE is_delivery), 0)
		FROM orders WHERE business_day = $1`, day).
		Scan(&t.OrderCount, &totalCents, &t.DeliveryCount, &deliveryCents)
	if err != nil {
		return DayTotals{}, fmt.Errorf("day totals: %w", err)
	}
	t.Total = money.FromCents(totalCents)
	t.DeliveryCost = money.FromCents(deliveryCents)
	return t, nil
}

// ProductSummaries groups a day's lines by (name, masa, promotion flag).
func (r *Repo) ProductSummaries(ctx context.Context, day time.Time) ([]ProductSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.name, oi.masa, p.is_small, sum(oi.quantity), sum(oi.line_total_cents)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.business_day = $1
		GROUP BY p.name, oi.masa, p.is_small
		ORDER BY p.name, oi.masa NULLS FIRST`, day)
	if err != nil {
		return nil, fmt.Errorf("product summaries: %w", err)
	}
	defer rows.Close()
	result := []ProductSummary{}
	for rows.Next() {
		var (
			s     ProductSummary
			qty   int64
			cents int64
		)
		if err := rows.Scan(&s.Name, &s.Masa, &s.IsSmall, &qty, &cents); err != nil {
			return nil, fmt.Errorf("scan product summary: %w", err)
		}
		s.Quantity = int(qty)
		s.Total = money.FromCents(cents)
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("product summaries: %w", err)
	}
	return result, nil
}

// TopProducts ranks a day's products by total quantity sold.
func (r *Repo) TopProducts(ctx context.Context, day time.Time, limit int) ([]TopProduct, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.name, sum(oi.quantity)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.business_day = $1
		GROUP BY p.name
		ORDER BY sum(oi.quantity) DESC, p.name
		LIMIT $2`, day, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()
	result := []TopProduct{}
	for rows.Next() {
		var (
			t   TopProduct
			qty int64
		)
		if err := rows.Scan(&t.Name, &qty); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		t.Quantity = int(qty)
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return result, nil
}

// PeriodDaily returns per-day sales over [start, end], oldest first.
func (r *Repo) PeriodDaily(ctx context.Context, start, end time.Time) ([]DaySales, error) {
	rows, err := r.db.Query(ctx, `
		SELECT business_day, count(*), COALESCE(sum(total_cents), 0)
		FROM orders
		WHERE business_day BETWEEN $1 AND $2
		GROUP BY business_day
		ORDER BY business_day`, start, end)
	if err != nil {
		return nil, fmt.Errorf("period daily: %w", err)
	}
	defer rows.Close()
	result := []DaySales{}
	for rows.Next() {
		var (
			day   time.Time
			d     DaySales
			cents int64
		)
		if err := rows.Scan(&day, &d.OrderCount, &cents); err != nil {
			return nil, fmt.Errorf("scan period day: %w", err)
		}
		d.Date = common.FormatDay(day)
		d.Total = money.FromCents(cents)
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("period daily: %w", err)
	}
	return result, nil
}

// ExportRows returns every stored line of a day joined with its order, oldest
// order first, lines in their submitted positions.
func (r *Repo) ExportRows(ctx context.Context, day time.Time) ([]ExportRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.created_at, p.name, oi.masa, oi.quantity,
		       oi.unit_price_cents, oi.line_total_cents,
		       o.is_delivery, o.delivery_cost_cents, o.total_cents
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.business_day = $1
		ORDER BY o.created_at, o.id, oi.position`, day)
	if err != nil {
		return nil, fmt.Errorf("export rows: %w", err)
	}
	defer rows.Close()
	result := []ExportRow{}
	for rows.Next() {
		var (
			row           ExportRow
			unitCents     int64
			lineCents     int64
			deliveryCents int64
			totalCents    int64
		)
		err := rows.Scan(&row.OrderID, &row.CreatedAt, &row.ProductName, &row.Masa, &row.Quantity,
			&unitCents, &lineCents, &row.IsDelivery, &deliveryCents, &totalCents)
		if err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		row.UnitPrice = money.FromCents(unitCents)
		row.LineTotal = money.FromCents(lineCents)
		row.DeliveryCost = money.FromCents(deliveryCents)
		row.OrderTotal = money.FromCents(totalCents)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("export rows: %w", err)
	}
	return result, nil
}
