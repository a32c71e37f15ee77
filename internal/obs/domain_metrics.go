package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// OrderWritesTotal counts order mutations by operation and outcome.
	OrderWritesTotal *prometheus.CounterVec
	// PromotionLinesTotal counts priced lines that had the bundle promotion applied.
	PromotionLinesTotal prometheus.Counter
	// ReportExportsTotal counts CSV export requests by outcome.
	ReportExportsTotal *prometheus.CounterVec
	// ReportCacheHitsTotal counts report cache lookups by result.
	ReportCacheHitsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		OrderWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_writes_total",
			Help:      "Count of order create/update/delete operations by outcome.",
		}, []string{"op", "result"})
		PromotionLinesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promotion_lines_total",
			Help:      "Number of order lines priced under the bundle promotion.",
		})
		ReportExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_exports_total",
			Help:      "Count of daily CSV export requests by outcome.",
		}, []string{"result"})
		ReportCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_cache_lookups_total",
			Help:      "Report cache lookups by result (hit or miss).",
		}, []string{"result"})

		mustRegisterCollector(reg, OrderWritesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				OrderWritesTotal = v
			}
		})
		mustRegisterCollector(reg, PromotionLinesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				PromotionLinesTotal = v
			}
		})
		mustRegisterCollector(reg, ReportExportsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ReportExportsTotal = v
			}
		})
		mustRegisterCollector(reg, ReportCacheHitsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ReportCacheHitsTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
