package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/backend-pupuseria/internal/money"
)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repo persists catalog products.
type Repo struct {
	db DB
}

// NewRepo constructs a Repo.
func NewRepo(db DB) *Repo {
	return &Repo{db: db}
}

// ListGrouped returns one row per product name, covering all masa variants.
func (r *Repo) ListGrouped(ctx context.Context) ([]GroupedProduct, error) {
	rows, err := r.db.Query(ctx, `
		SELECT min(id::text)::uuid, name, min(price_cents), bool_or(is_small), count(*)
		FROM products
		GROUP BY name
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var result []GroupedProduct
	for rows.Next() {
		var (
			row   GroupedProduct
			cents int64
			count int64
		)
		if err := rows.Scan(&row.ID, &row.Name, &cents, &row.IsSmall, &count); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		row.Price = money.FromCents(cents)
		row.MasaCount = int(count)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return result, nil
}

// GetByID returns a single product variant.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Product, error) {
	var (
		p     Product
		cents int64
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, name, masa, price_cents, is_small, created_at, updated_at
		FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Masa, &cents, &p.IsSmall, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	p.Price = money.FromCents(cents)
	return p, nil
}

// CreateVariants inserts the corn and rice variants of a new product name in one
// transaction.
func (r *Repo) CreateVariants(ctx context.Context, name string, price money.Money, isSmall bool) ([]Product, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	created := make([]Product, 0, 2)
	for _, masa := range []string{MasaMaiz, MasaArroz} {
		var (
			p     Product
			cents int64
		)
		err := tx.QueryRow(ctx, `
			INSERT INTO products (name, masa, price_cents, is_small)
			VALUES ($1, $2, $3, $4)
			RETURNING id, name, masa, price_cents, is_small, created_at, updated_at`,
			name, masa, price.Cents(), isSmall).
			Scan(&p.ID, &p.Name, &p.Masa, &cents, &p.IsSmall, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert product %s/%s: %w", name, masa, err)
		}
		p.Price = money.FromCents(cents)
		created = append(created, p)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// UpdateByName applies the provided fields to every variant of a name. Nil
// fields keep their current values. Returns the number of variants touched.
func (r *Repo) UpdateByName(ctx context.Context, name string, newName *string, price *money.Money, isSmall *bool) (int64, error) {
	var cents *int64
	if price != nil {
		v := price.Cents()
		cents = &v
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = COALESCE($2, name),
		    price_cents = COALESCE($3, price_cents),
		    is_small = COALESCE($4, is_small),
		    updated_at = now()
		WHERE name = $1`,
		name, newName, cents, isSmall)
	if err != nil {
		return 0, fmt.Errorf("update product %s: %w", name, err)
	}
	return tag.RowsAffected(), nil
}

// ReferencedByName reports whether any order line references a variant of the
// name.
func (r *Repo) ReferencedByName(ctx context.Context, name string) (bool, error) {
	var referenced bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM order_items oi
			JOIN products p ON p.id = oi.product_id
			WHERE p.name = $1
		)`, name).Scan(&referenced)
	if err != nil {
		return false, fmt.Errorf("check product references %s: %w", name, err)
	}
	return referenced, nil
}

// DeleteByName removes every variant of a name.
func (r *Repo) DeleteByName(ctx context.Context, name string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE name = $1`, name)
	if err != nil {
		return 0, fmt.Errorf("delete product %s: %w", name, err)
	}
	return tag.RowsAffected(), nil
}
