package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pupuseria/internal/catalog"
	"github.com/noah-isme/backend-pupuseria/internal/common"
	"github.com/noah-isme/backend-pupuseria/internal/money"
	"github.com/noah-isme/backend-pupuseria/internal/order"
)

type fakeStore struct {
	orders map[uuid.UUID]order.Order
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: make(map[uuid.UUID]order.Order)}
}

func (f *fakeStore) materialize(id uuid.UUID, createdAt time.Time, draft order.Draft) order.Order {
	o := order.Order{
		ID:           id,
		BusinessDay:  common.FormatDay(draft.BusinessDay),
		IsDelivery:   draft.IsDelivery,
		DeliveryCost: draft.DeliveryCost,
		Total:        draft.Total,
		CreatedAt:    createdAt,
		Items:        make([]order.Item, 0, len(draft.Items)),
	}
	for _, item := range draft.Items {
		o.Items = append(o.Items, order.Item{
			ID:        uuid.New(),
			ProductID: item.ProductID,
			Masa:      item.Masa,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	return o
}

func (f *fakeStore) ListByDay(_ context.Context, day time.Time) ([]order.Order, error) {
	want := common.FormatDay(day)
	var result []order.Order
	for _, o := range f.orders {
		if o.BusinessDay == want {
			result = append(result, o)
		}
	}
	return result, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (order.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return order.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (f *fakeStore) Create(_ context.Context, draft order.Draft) (order.Order, error) {
	o := f.materialize(uuid.New(), time.Now(), draft)
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeStore) Replace(_ context.Context, id uuid.UUID, draft order.Draft) (order.Order, error) {
	existing, ok := f.orders[id]
	if !ok {
		return order.Order{}, pgx.ErrNoRows
	}
	o := f.materialize(id, existing.CreatedAt, draft)
	f.orders[id] = o
	return o, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	if _, ok := f.orders[id]; !ok {
		return 0, nil
	}
	delete(f.orders, id)
	return 1, nil
}

type fakeProducts struct {
	byID map[uuid.UUID]catalog.Product
}

func (f *fakeProducts) GetByID(_ context.Context, id uuid.UUID) (catalog.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return catalog.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

type fakeReports struct {
	invalidated []string
}

func (f *fakeReports) InvalidateDay(_ context.Context, day time.Time) {
	f.invalidated = append(f.invalidated, common.FormatDay(day))
}

func newTestService(t *testing.T) (*order.Service, *fakeStore, *fakeProducts, *fakeReports) {
	t.Helper()
	store := newFakeStore()
	products := &fakeProducts{byID: map[uuid.UUID]catalog.Product{}}
	reports := &fakeReports{}
	svc, err := order.NewService(order.ServiceConfig{Store: store, Products: products, Reports: reports})
	require.NoError(t, err)
	return svc, store, products, reports
}

func addProduct(products *fakeProducts, name string, cents int64, isSmall bool) uuid.UUID {
	id := uuid.New()
	products.byID[id] = catalog.Product{ID: id, Name: name, Price: money.FromCents(cents), IsSmall: isSmall}
	return id
}

func TestCreateAppliesBundlePromotion(t *testing.T) {
	svc, _, products, reports := newTestService(t)
	small := addProduct(products, "revuelta", 250, true)

	created, err := svc.Create(context.Background(), order.SubmitParams{
		BusinessDay: "2026-08-20",
		Items:       []order.SubmitItem{{ProductID: small, Quantity: 4}},
	})
	require.NoError(t, err)
	// floor(4/3)x1.00 + 1x2.50
	require.Equal(t, money.FromCents(350), created.Total)
	require.Equal(t, money.FromCents(350), created.Items[0].LineTotal)
	require.Equal(t, []string{"2026-08-20"}, reports.invalidated)
}

func TestCreateDeliverySurcharge(t *testing.T) {
	svc, _, products, _ := newTestService(t)
	regular := addProduct(products, "queso grande", 300, false)

	delivered, err := svc.Create(context.Background(), order.SubmitParams{
		BusinessDay:  "2026-08-20",
		IsDelivery:   true,
		DeliveryCost: money.FromCents(150),
		Items:        []order.SubmitItem{{ProductID: regular, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, money.FromCents(750), delivered.Total)
	require.Equal(t, money.FromCents(150), delivered.DeliveryCost)

	// Same payload without the delivery flag ignores the supplied surcharge.
	pickup, err := svc.Create(context.Background(), order.SubmitParams{
		BusinessDay:  "2026-08-20",
		IsDelivery:   false,
		DeliveryCost: money.FromCents(150),
		Items:        []order.SubmitItem{{ProductID: regular, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, money.FromCents(600), pickup.Total)
	require.Equal(t, money.Zero, pickup.DeliveryCost)
}

func TestCreateRejectsWholeSubmission(t *testing.T) {
	svc, store, products, _ := newTestService(t)
	known := addProduct(products, "frijol", 250, true)

	cases := []order.SubmitParams{
		{BusinessDay: "not-a-date", Items: []order.SubmitItem{{ProductID: known, Quantity: 1}}},
		{BusinessDay: "2026-08-20"},
		{BusinessDay: "2026-08-20", Items: []order.SubmitItem{{ProductID: known, Quantity: 0}}},
		{BusinessDay: "2026-08-20", Items: []order.SubmitItem{{ProductID: known, Quantity: -2}}},
		{BusinessDay: "2026-08-20", Items: []order.SubmitItem{
			{ProductID: known, Quantity: 1},
			{ProductID: uuid.New(), Quantity: 1},
		}},
	}
	for _, params := range cases {
		_, err := svc.Create(context.Background(), params)
		require.Error(t, err)
		appErr := common.AsAppError(err)
		require.NotNil(t, appErr)
		require.Equal(t, "BAD_REQUEST", appErr.Code)
	}
	require.Empty(t, store.orders, "rejected submissions must not persist anything")
}

func TestUpdateIsIdempotent(t *testing.T) {
	svc, _, products, _ := newTestService(t)
	small := addProduct(products, "revuelta", 250, true)

	created, err := svc.Create(context.Background(), order.SubmitParams{
		BusinessDay: "2026-08-20",
		Items:       []order.SubmitItem{{ProductID: small, Quantity: 3}},
	})
	require.NoError(t, err)
	require.Equal(t, money.FromCents(100), created.Total)

	payload := order.SubmitParams{
		BusinessDay: "2026-08-20",
		Items:       []order.SubmitItem{{ProductID: small, Quantity: 5}},
	}
	first, err := svc.Update(context.Background(), created.ID, payload)
	require.NoError(t, err)
	second, err := svc.Update(context.Background(), created.ID, payload)
	require.NoError(t, err)
	require.Equal(t, first.Total, second.Total)
	// 5 units at 2.50: one bundle at 1.00 plus two at unit price.
	require.Equal(t, money.FromCents(600), second.Total)
}

func TestUpdateInvalidatesBothDays(t *testing.T) {
	svc, _, products, reports := newTestService(t)
	small := addProduct(products, "revuelta", 250, true)

	created, err := svc.Create(context.Background(), order.SubmitParams{
		BusinessDay: "2026-08-20",
		Items:       []order.SubmitItem{{ProductID: small, Quantity: 1}},
	})
	require.NoError(t, err)
	reports.invalidated = nil

	_, err = svc.Update(context.Background(), created.ID, order.SubmitParams{
		BusinessDay: "2026-08-21",
		Items:       []order.SubmitItem{{ProductID: small, Quantity: 1}},
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"2026-08-20", "2026-08-21"}, reports.invalidated)
}

func TestDelete(t *testing.T) {
	svc, store, products, reports := newTestService(t)
	small := addProduct(products, "revuelta", 250, true)

	created, err := svc.Create(context.Background(), order.SubmitParams{
		BusinessDay: "2026-08-20",
		Items:       []order.SubmitItem{{ProductID: small, Quantity: 1}},
	})
	require.NoError(t, err)
	reports.invalidated = nil

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	require.Empty(t, store.orders)
	require.Equal(t, []string{"2026-08-20"}, reports.invalidated)

	err = svc.Delete(context.Background(), created.ID)
	appErr := common.AsAppError(err)
	require.NotNil(t, appErr)
	require.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestMasaNoteNormalized(t *testing.T) {
	svc, _, products, _ := newTestService(t)
	small := addProduct(products, "revuelta", 250, true)

	masa := "Arróz"
	created, err := svc.Create(context.Background(), order.SubmitParams{
		BusinessDay: "2026-08-20",
		Items:       []order.SubmitItem{{ProductID: small, Masa: &masa, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NotNil(t, created.Items[0].Masa)
	require.Equal(t, "arroz", *created.Items[0].Masa)
}
