package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pupuseria/internal/cache"
	"github.com/noah-isme/backend-pupuseria/internal/common"
	"github.com/noah-isme/backend-pupuseria/internal/money"
	"github.com/noah-isme/backend-pupuseria/internal/report"
)

type fakeStore struct {
	totals    map[string]report.DayTotals
	summaries map[string][]report.ProductSummary
	top       map[string][]report.TopProduct
	period    []report.DaySales
	export    map[string][]report.ExportRow
	calls     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		totals:    map[string]report.DayTotals{},
		summaries: map[string][]report.ProductSummary{},
		top:       map[string][]report.TopProduct{},
		export:    map[string][]report.ExportRow{},
	}
}

func (f *fakeStore) DayTotals(_ context.Context, day time.Time) (report.DayTotals, error) {
	f.calls++
	return f.totals[common.FormatDay(day)], nil
}

func (f *fakeStore) ProductSummaries(_ context.Context, day time.Time) ([]report.ProductSummary, error) {
	return f.summaries[common.FormatDay(day)], nil
}

func (f *fakeStore) TopProducts(_ context.Context, day time.Time, limit int) ([]report.TopProduct, error) {
	top := f.top[common.FormatDay(day)]
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (f *fakeStore) PeriodDaily(_ context.Context, start, end time.Time) ([]report.DaySales, error) {
	var result []report.DaySales
	for _, d := range f.period {
		day, _ := common.ParseDay(d.Date)
		if !day.Before(start) && !day.After(end) {
			result = append(result, d)
		}
	}
	return result, nil
}

func (f *fakeStore) ExportRows(_ context.Context, day time.Time) ([]report.ExportRow, error) {
	return f.export[common.FormatDay(day)], nil
}

func newTestService(t *testing.T, store *fakeStore, withCache bool) *report.Service {
	t.Helper()
	cfg := report.ServiceConfig{Store: store, DefaultDays: 7}
	if withCache {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		cfg.Cache = cache.NewJSON(client, 2*time.Minute)
	}
	svc, err := report.NewService(cfg)
	require.NoError(t, err)
	return svc
}

func TestDailyReportCaching(t *testing.T) {
	store := newFakeStore()
	masa := "maiz"
	store.totals["2026-08-20"] = report.DayTotals{OrderCount: 2, Total: money.FromCents(1250)}
	store.summaries["2026-08-20"] = []report.ProductSummary{
		{Name: "revuelta", Masa: &masa, IsSmall: true, Quantity: 6, Total: money.FromCents(200)},
	}
	store.top["2026-08-20"] = []report.TopProduct{{Name: "revuelta", Quantity: 6}}
	svc := newTestService(t, store, true)
	ctx := context.Background()

	first, err := svc.Daily(ctx, "2026-08-20")
	require.NoError(t, err)
	require.Equal(t, 2, first.Totals.OrderCount)
	require.Len(t, first.Products, 1)
	callsAfterFirst := store.calls

	second, err := svc.Daily(ctx, "2026-08-20")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, callsAfterFirst, store.calls, "second read must come from cache")

	day, _ := common.ParseDay("2026-08-20")
	svc.InvalidateDay(ctx, day)
	_, err = svc.Daily(ctx, "2026-08-20")
	require.NoError(t, err)
	require.Greater(t, store.calls, callsAfterFirst, "invalidated day must be rebuilt")
}

func TestDailyReportRejectsBadDate(t *testing.T) {
	svc := newTestService(t, newFakeStore(), false)
	_, err := svc.Daily(context.Background(), "garbage")
	appErr := common.AsAppError(err)
	require.NotNil(t, appErr)
	require.Equal(t, "BAD_REQUEST", appErr.Code)
}

func TestPeriodSummary(t *testing.T) {
	store := newFakeStore()
	store.period = []report.DaySales{
		{Date: "2026-08-18", OrderCount: 2, Total: money.FromCents(500)},
		{Date: "2026-08-19", OrderCount: 1, Total: money.FromCents(300)},
	}
	svc := newTestService(t, store, false)

	summary, err := svc.Summary(context.Background(), "2026-08-17", "2026-08-20")
	require.NoError(t, err)
	require.Equal(t, 3, summary.OrderCount)
	require.Equal(t, money.FromCents(800), summary.Total)
	// 8.00 / 3 rounded half away from zero at 2 decimals
	require.Equal(t, "2.67", summary.AverageOrderValue.String())
	require.Len(t, summary.Days, 2)
}

func TestPeriodSummaryDefaultsToLastWeek(t *testing.T) {
	svc := newTestService(t, newFakeStore(), false)
	summary, err := svc.Summary(context.Background(), "", "")
	require.NoError(t, err)

	end, err := common.ParseDay(summary.EndDate)
	require.NoError(t, err)
	start, err := common.ParseDay(summary.StartDate)
	require.NoError(t, err)
	require.Equal(t, common.FormatDay(common.Today()), summary.EndDate)
	require.Equal(t, 6*24*time.Hour, end.Sub(start))
	require.Equal(t, money.Zero, summary.AverageOrderValue)
}

func TestExportCSV(t *testing.T) {
	store := newFakeStore()
	masa := "arroz"
	orderID := uuid.New()
	createdAt := time.Date(2026, 8, 20, 12, 30, 0, 0, time.UTC)
	store.export["2026-08-20"] = []report.ExportRow{
		{
			OrderID: orderID, CreatedAt: createdAt,
			ProductName: "revuelta, especial", Masa: &masa, Quantity: 3,
			UnitPrice: money.FromCents(250), LineTotal: money.FromCents(100),
			IsDelivery: true, DeliveryCost: money.FromCents(150), OrderTotal: money.FromCents(250),
		},
	}
	store.totals["2026-08-20"] = report.DayTotals{
		OrderCount: 1, Total: money.FromCents(250),
		DeliveryCount: 1, DeliveryCost: money.FromCents(150),
	}
	svc := newTestService(t, store, false)

	export, err := svc.ExportCSV(context.Background(), "2026-08-20")
	require.NoError(t, err)
	require.Equal(t, "sales_2026-08-20.csv", export.Filename)
	require.True(t, bytes.HasPrefix(export.Content, []byte{0xEF, 0xBB, 0xBF}), "export must start with a UTF-8 BOM")

	reader := csv.NewReader(bytes.NewReader(export.Content[3:]))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Equal(t, "order_id", records[0][0])
	require.Equal(t, "revuelta, especial", records[1][2])
	require.Equal(t, "1.00", records[1][6])
	require.Equal(t, []string{"total", "2.50"}, records[len(records)-1])
}

func TestExportCSVEmptyDayIs404(t *testing.T) {
	svc := newTestService(t, newFakeStore(), false)
	_, err := svc.ExportCSV(context.Background(), "2026-08-20")
	appErr := common.AsAppError(err)
	require.NotNil(t, appErr)
	require.Equal(t, "NOT_FOUND", appErr.Code)
}
