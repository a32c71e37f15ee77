package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pupuseria/internal/cache"
	"github.com/noah-isme/backend-pupuseria/internal/common"
	"github.com/noah-isme/backend-pupuseria/internal/money"
	"github.com/noah-isme/backend-pupuseria/internal/obs"
)

const topProductsLimit = 5

type store interface {
	DayTotals(ctx context.Context, day time.Time) (DayTotals, error)
	ProductSummaries(ctx context.Context, day time.Time) ([]ProductSummary, error)
	TopProducts(ctx context.Context, day time.Time, limit int) ([]TopProduct, error)
	PeriodDaily(ctx context.Context, start, end time.Time) ([]DaySales, error)
	ExportRows(ctx context.Context, day time.Time) ([]ExportRow, error)
}

// DailyReport is the full payload for one business day.
type DailyReport struct {
	Date     string           `json:"date"`
	Totals   DayTotals        `json:"totals"`
	Products []ProductSummary `json:"products"`
	Top      []TopProduct     `json:"top_products"`
}

// PeriodSummary aggregates a date range, defaulting to the last week.
type PeriodSummary struct {
	StartDate         string      `json:"start_date"`
	EndDate           string      `json:"end_date"`
	Days              []DaySales  `json:"days"`
	OrderCount        int         `json:"order_count"`
	Total             money.Money `json:"total"`
	AverageOrderValue money.Money `json:"average_order_value"`
}

// Export is a rendered CSV attachment.
type Export struct {
	Filename string
	Content  []byte
}

// Service assembles reports from stored totals. Daily reports are Redis-cached;
// order writes invalidate the day they touch.
type Service struct {
	store       store
	cache       *cache.JSON
	defaultDays int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store store
	Cache *cache.JSON
	// DefaultDays is the period-summary window when no range is given.
	DefaultDays int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("report: store is required")
	}
	days := cfg.DefaultDays
	if days < 1 {
		days = 7
	}
	return &Service{store: cfg.Store, cache: cfg.Cache, defaultDays: days}, nil
}

// Daily returns the report for one business day.
func (s *Service) Daily(ctx context.Context, date string) (DailyReport, error) {
	day, err := common.ParseDay(date)
	if err != nil {
		return DailyReport{}, common.BadRequest("date", "date must be YYYY-MM-DD", err)
	}
	key := dailyCacheKey(day)
	if s.cache != nil {
		var cached DailyReport
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		countCacheLookup(ok && err == nil)
		if err == nil && ok {
			return cached, nil
		}
	}
	report, err := s.buildDaily(ctx, day)
	if err != nil {
		return DailyReport{}, err
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, report)
	}
	return report, nil
}

func (s *Service) buildDaily(ctx context.Context, day time.Time) (DailyReport, error) {
	totals, err := s.store.DayTotals(ctx, day)
	if err != nil {
		return DailyReport{}, err
	}
	products, err := s.store.ProductSummaries(ctx, day)
	if err != nil {
		return DailyReport{}, err
	}
	top, err := s.store.TopProducts(ctx, day, topProductsLimit)
	if err != nil {
		return DailyReport{}, err
	}
	return DailyReport{
		Date:     common.FormatDay(day),
		Totals:   totals,
		Products: products,
		Top:      top,
	}, nil
}

// Summary aggregates a period. Empty bounds default to the last defaultDays
// days ending today.
func (s *Service) Summary(ctx context.Context, startDate, endDate string) (PeriodSummary, error) {
	var (
		start, end time.Time
		err        error
	)
	if strings.TrimSpace(endDate) == "" {
		end = common.Today()
	} else if end, err = common.ParseDay(endDate); err != nil {
		return PeriodSummary{}, common.BadRequest("end_date", "end_date must be YYYY-MM-DD", err)
	}
	if strings.TrimSpace(startDate) == "" {
		start = end.AddDate(0, 0, -(s.defaultDays - 1))
	} else if start, err = common.ParseDay(startDate); err != nil {
		return PeriodSummary{}, common.BadRequest("start_date", "start_date must be YYYY-MM-DD", err)
	}
	if end.Before(start) {
		return PeriodSummary{}, common.BadRequest("end_date", "end_date cannot precede start_date", nil)
	}
	days, err := s.store.PeriodDaily(ctx, start, end)
	if err != nil {
		return PeriodSummary{}, err
	}
	summary := PeriodSummary{
		StartDate: common.FormatDay(start),
		EndDate:   common.FormatDay(end),
		Days:      days,
	}
	for _, d := range days {
		summary.OrderCount += d.OrderCount
		summary.Total += d.Total
	}
	if summary.OrderCount > 0 {
		avg := summary.Total.Decimal().Div(decimal.NewFromInt(int64(summary.OrderCount)))
		summary.AverageOrderValue = money.FromDecimal(avg)
	}
	return summary, nil
}

// ExportCSV renders a day's lines as a CSV attachment. A day with no orders is
// a 404, not an empty file.
func (s *Service) ExportCSV(ctx context.Context, date string) (Export, error) {
	day, err := common.ParseDay(date)
	if err != nil {
		countExport("rejected")
		return Export{}, common.BadRequest("date", "date must be YYYY-MM-DD", err)
	}
	rows, err := s.store.ExportRows(ctx, day)
	if err != nil {
		countExport("error")
		return Export{}, err
	}
	if len(rows) == 0 {
		countExport("empty")
		return Export{}, common.NotFound(fmt.Sprintf("no orders on %s", common.FormatDay(day)), nil)
	}
	totals, err := s.store.DayTotals(ctx, day)
	if err != nil {
		countExport("error")
		return Export{}, err
	}
	content, err := renderCSV(rows, totals)
	if err != nil {
		countExport("error")
		return Export{}, err
	}
	countExport("ok")
	return Export{
		Filename: fmt.Sprintf("sales_%s.csv", common.FormatDay(day)),
		Content:  content,
	}, nil
}

// InvalidateDay drops the cached daily report for a business day. Order writes
// call this for every day they touch.
func (s *Service) InvalidateDay(ctx context.Context, day time.Time) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, dailyCacheKey(day))
	}
}

func dailyCacheKey(day time.Time) string {
	return "report:daily:" + common.FormatDay(day)
}

func countCacheLookup(hit bool) {
	if obs.ReportCacheHitsTotal == nil {
		return
	}
	if hit {
		obs.ReportCacheHitsTotal.WithLabelValues("hit").Inc()
	} else {
		obs.ReportCacheHitsTotal.WithLabelValues("miss").Inc()
	}
}

func countExport(result string) {
	if obs.ReportExportsTotal != nil {
		obs.ReportExportsTotal.WithLabelValues(result).Inc()
	}
}
