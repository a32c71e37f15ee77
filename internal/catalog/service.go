package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/backend-pupuseria/internal/cache"
	"github.com/noah-isme/backend-pupuseria/internal/common"
	"github.com/noah-isme/backend-pupuseria/internal/money"
)

const groupedListKey = "catalog:products:grouped"

type store interface {
	ListGrouped(ctx context.Context) ([]GroupedProduct, error)
	GetByID(ctx context.Context, id uuid.UUID) (Product, error)
	CreateVariants(ctx context.Context, name string, price money.Money, isSmall bool) ([]Product, error)
	UpdateByName(ctx context.Context, name string, newName *string, price *money.Money, isSmall *bool) (int64, error)
	ReferencedByName(ctx context.Context, name string) (bool, error)
	DeleteByName(ctx context.Context, name string) (int64, error)
}

// Service orchestrates catalog reads/writes and the grouped-listing cache.
type Service struct {
	store store
	cache *cache.JSON
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store store
	Cache *cache.JSON
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	return &Service{store: cfg.Store, cache: cfg.Cache}, nil
}

// CreateParams carries a new product definition. Both masa variants are created.
type CreateParams struct {
	Name    string
	Price   money.Money
	IsSmall bool
}

// UpdateParams carries a partial product edit. Nil fields keep current values.
type UpdateParams struct {
	Name    *string
	Price   *money.Money
	IsSmall *bool
}

// List returns the grouped product listing, served from cache when possible.
func (s *Service) List(ctx context.Context) ([]GroupedProduct, error) {
	if s.cache != nil {
		var cached []GroupedProduct
		ok, err := s.cache.GetJSON(ctx, groupedListKey, &cached)
		if err == nil && ok {
			return cached, nil
		}
	}
	rows, err := s.store.ListGrouped(ctx)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []GroupedProduct{}
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, groupedListKey, rows)
	}
	return rows, nil
}

// Create inserts the corn and rice variants of a new product name.
func (s *Service) Create(ctx context.Context, params CreateParams) ([]Product, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, common.BadRequest("name", "name is required", nil)
	}
	if params.Price <= 0 {
		return nil, common.BadRequest("price", "price must be positive", nil)
	}
	created, err := s.store.CreateVariants(ctx, name, params.Price, params.IsSmall)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewAppError("CONFLICT", fmt.Sprintf("product %q already exists", name), http.StatusConflict, err)
		}
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

// Update applies a partial edit to every variant of the product the id belongs
// to. Stored order lines keep their snapshotted prices.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) ([]GroupedProduct, error) {
	if params.Name == nil && params.Price == nil && params.IsSmall == nil {
		return nil, common.BadRequest("body", "no fields to update", nil)
	}
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return nil, common.BadRequest("name", "name cannot be empty", nil)
	}
	if params.Price != nil && *params.Price <= 0 {
		return nil, common.BadRequest("price", "price must be positive", nil)
	}
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound(id, err)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if _, err := s.store.UpdateByName(ctx, current.Name, params.Name, params.Price, params.IsSmall); err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewAppError("CONFLICT", "a product with that name already exists", http.StatusConflict, err)
		}
		return nil, err
	}
	s.invalidate(ctx)
	return s.List(ctx)
}

// Delete removes every variant of the product the id belongs to. Deletion is
// refused while any order line references one of the variants.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(id, err)
		}
		return fmt.Errorf("get product: %w", err)
	}
	referenced, err := s.store.ReferencedByName(ctx, current.Name)
	if err != nil {
		return err
	}
	if referenced {
		return common.NewAppError("CONFLICT", fmt.Sprintf("product %q is referenced by existing orders", current.Name), http.StatusConflict, nil)
	}
	if _, err := s.store.DeleteByName(ctx, current.Name); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	_ = s.cache.Del(ctx, groupedListKey)
}

func notFound(id uuid.UUID, err error) *common.AppError {
	return common.NotFound(fmt.Sprintf("product %s not found", id), err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
