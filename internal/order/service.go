package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/backend-pupuseria/internal/catalog"
	"github.com/noah-isme/backend-pupuseria/internal/common"
	"github.com/noah-isme/backend-pupuseria/internal/money"
	"github.com/noah-isme/backend-pupuseria/internal/obs"
	"github.com/noah-isme/backend-pupuseria/internal/pricing"
)

type store interface {
	ListByDay(ctx context.Context, day time.Time) ([]Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (Order, error)
	Create(ctx context.Context, draft Draft) (Order, error)
	Replace(ctx context.Context, id uuid.UUID, draft Draft) (Order, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type productSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (catalog.Product, error)
}

type reportInvalidator interface {
	InvalidateDay(ctx context.Context, day time.Time)
}

// Service validates and prices order submissions and persists them atomically.
type Service struct {
	store    store
	products productSource
	reports  reportInvalidator
}

// ServiceConfig groups Service dependencies. Reports may be nil.
type ServiceConfig struct {
	Store    store
	Products productSource
	Reports  reportInvalidator
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("order: store is required")
	}
	if cfg.Products == nil {
		return nil, errors.New("order: product source is required")
	}
	return &Service{store: cfg.Store, products: cfg.Products, reports: cfg.Reports}, nil
}

// SubmitParams is a full order submission: create and update both take the
// complete line set. There is no partial line edit.
type SubmitParams struct {
	BusinessDay  string
	IsDelivery   bool
	DeliveryCost money.Money
	Items        []SubmitItem
}

// SubmitItem is one requested line before pricing.
type SubmitItem struct {
	ProductID uuid.UUID
	Masa      *string
	Quantity  int
}

// ListByDay returns the orders of one business day, newest first. An empty day
// string means today.
func (s *Service) ListByDay(ctx context.Context, day string) ([]Order, error) {
	var (
		date time.Time
		err  error
	)
	if strings.TrimSpace(day) == "" {
		date = common.Today()
	} else {
		date, err = common.ParseDay(day)
		if err != nil {
			return nil, common.BadRequest("date", "date must be YYYY-MM-DD", err)
		}
	}
	return s.store.ListByDay(ctx, date)
}

// Get returns one order with lines.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	o, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, notFound(id, err)
		}
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// Create validates and prices a submission, then persists the order and its
// lines in one transaction.
func (s *Service) Create(ctx context.Context, params SubmitParams) (Order, error) {
	draft, err := s.price(ctx, params)
	if err != nil {
		countWrite("create", "rejected")
		return Order{}, err
	}
	created, err := s.store.Create(ctx, draft)
	if err != nil {
		countWrite("create", "error")
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	countWrite("create", "ok")
	s.invalidate(ctx, draft.BusinessDay)
	return created, nil
}

// Update fully replaces an order: the submitted line set is re-validated and
// re-priced against the current catalog, then swapped in atomically.
// Resubmitting an identical payload yields the same persisted total.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params SubmitParams) (Order, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		countWrite("update", "rejected")
		return Order{}, err
	}
	draft, err := s.price(ctx, params)
	if err != nil {
		countWrite("update", "rejected")
		return Order{}, err
	}
	updated, err := s.store.Replace(ctx, id, draft)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			countWrite("update", "rejected")
			return Order{}, notFound(id, err)
		}
		countWrite("update", "error")
		return Order{}, fmt.Errorf("replace order: %w", err)
	}
	countWrite("update", "ok")
	if prevDay, err := common.ParseDay(existing.BusinessDay); err == nil {
		s.invalidate(ctx, prevDay)
	}
	s.invalidate(ctx, draft.BusinessDay)
	return updated, nil
}

// Delete removes an order and its lines.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		countWrite("delete", "rejected")
		return err
	}
	affected, err := s.store.Delete(ctx, id)
	if err != nil {
		countWrite("delete", "error")
		return fmt.Errorf("delete order: %w", err)
	}
	if affected == 0 {
		countWrite("delete", "rejected")
		return notFound(id, nil)
	}
	countWrite("delete", "ok")
	if day, err := common.ParseDay(existing.BusinessDay); err == nil {
		s.invalidate(ctx, day)
	}
	return nil
}

// price validates the whole submission before any write: malformed day, empty
// line set, non-positive quantity, or an unknown product rejects the order
// without touching storage.
func (s *Service) price(ctx context.Context, params SubmitParams) (Draft, error) {
	day, err := common.ParseDay(params.BusinessDay)
	if err != nil {
		return Draft{}, common.BadRequest("business_day", "business_day must be YYYY-MM-DD", err)
	}
	if len(params.Items) == 0 {
		return Draft{}, common.BadRequest("items", "at least one item is required", nil)
	}
	if params.DeliveryCost < 0 {
		return Draft{}, common.BadRequest("delivery_cost", "delivery_cost cannot be negative", nil)
	}
	draft := Draft{
		BusinessDay: day,
		IsDelivery:  params.IsDelivery,
		Items:       make([]DraftItem, 0, len(params.Items)),
	}
	if params.IsDelivery {
		draft.DeliveryCost = params.DeliveryCost
	}
	lines := make([]pricing.Line, 0, len(params.Items))
	for i, item := range params.Items {
		if item.Quantity < 1 {
			return Draft{}, common.BadRequest(fmt.Sprintf("items[%d].quantity", i), "quantity must be at least 1", nil)
		}
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Draft{}, common.BadRequest(fmt.Sprintf("items[%d].product_id", i),
					fmt.Sprintf("product %s not found", item.ProductID), err)
			}
			return Draft{}, fmt.Errorf("lookup product %s: %w", item.ProductID, err)
		}
		masa := normalizeMasaNote(item.Masa)
		lineTotal := pricing.LineTotal(item.Quantity, product.Price, product.IsSmall)
		if product.IsSmall && item.Quantity >= pricing.BundleSize && obs.PromotionLinesTotal != nil {
			obs.PromotionLinesTotal.Inc()
		}
		draft.Items = append(draft.Items, DraftItem{
			ProductID: item.ProductID,
			Masa:      masa,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			LineTotal: lineTotal,
		})
		lines = append(lines, pricing.Line{Qty: item.Quantity, UnitPrice: product.Price, PromoEligible: product.IsSmall})
	}
	draft.Total = pricing.OrderTotal(lines, draft.IsDelivery, draft.DeliveryCost)
	return draft, nil
}

func (s *Service) invalidate(ctx context.Context, day time.Time) {
	if s.reports != nil {
		s.reports.InvalidateDay(ctx, day)
	}
}

func normalizeMasaNote(masa *string) *string {
	if masa == nil {
		return nil
	}
	normalized := catalog.NormalizeMasa(*masa)
	if normalized == "" {
		return nil
	}
	return &normalized
}

func countWrite(op, result string) {
	if obs.OrderWritesTotal != nil {
		obs.OrderWritesTotal.WithLabelValues(op, result).Inc()
	}
}

func notFound(id uuid.UUID, err error) *common.AppError {
	return common.NotFound(fmt.Sprintf("order %s not found", id), err)
}
