package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pupuseria/internal/money"
	"github.com/noah-isme/backend-pupuseria/internal/pricing"
)

func TestLineTotalWithoutPromotion(t *testing.T) {
	require.Equal(t, money.FromCents(250), pricing.LineTotal(1, money.FromCents(250), false))
	require.Equal(t, money.FromCents(750), pricing.LineTotal(3, money.FromCents(250), false))
	require.Equal(t, money.Zero, pricing.LineTotal(0, money.FromCents(250), false))
}

func TestLineTotalBundlePromotion(t *testing.T) {
	// one complete group, no remainder
	require.Equal(t, money.FromCents(100), pricing.LineTotal(3, money.FromCents(250), true))
	// one group plus one remainder unit at full price
	require.Equal(t, money.FromCents(350), pricing.LineTotal(4, money.FromCents(250), true))
	// 5 units at 1.00: one group at 1.00 plus two at 1.00
	require.Equal(t, money.FromCents(300), pricing.LineTotal(5, money.FromCents(100), true))
	// 5 units at 2.50: one group at 1.00 plus two at 2.50
	require.Equal(t, money.FromCents(600), pricing.LineTotal(5, money.FromCents(250), true))
	// below a full group, promotion has no effect
	require.Equal(t, money.FromCents(500), pricing.LineTotal(2, money.FromCents(250), true))
	require.Equal(t, money.Zero, pricing.LineTotal(0, money.FromCents(250), true))
}

// Whenever the unit price exceeds the bundle's implied per-unit rate (1.00/3),
// the promotion never charges more than plain pricing.
func TestPromotionNeverIncreasesPriceAboveBundleRate(t *testing.T) {
	prices := []money.Money{34, 50, 100, 250, 999}
	for _, p := range prices {
		for q := 0; q <= 20; q++ {
			promo := pricing.LineTotal(q, p, true)
			plain := pricing.LineTotal(q, p, false)
			require.LessOrEqual(t, promo, plain, "qty=%d price=%s", q, p)
		}
	}
}

// At or below 1/3 of the bundle price the promotion can cost more than plain
// pricing. The rule is applied as published, not corrected.
func TestPromotionBoundaryBelowBundleRate(t *testing.T) {
	// 0.25/unit: three plain units cost 0.75, the bundle charges 1.00
	promo := pricing.LineTotal(3, money.FromCents(25), true)
	plain := pricing.LineTotal(3, money.FromCents(25), false)
	require.Equal(t, money.FromCents(100), promo)
	require.Equal(t, money.FromCents(75), plain)
	require.Greater(t, promo, plain)
}

func TestOrderTotalSumsLinesAndSurcharge(t *testing.T) {
	lines := []pricing.Line{
		{Qty: 3, UnitPrice: money.FromCents(250), PromoEligible: true},  // 1.00
		{Qty: 2, UnitPrice: money.FromCents(150), PromoEligible: false}, // 3.00
	}
	require.Equal(t, money.FromCents(400), pricing.OrderTotal(lines, false, money.Zero))
	require.Equal(t, money.FromCents(600), pricing.OrderTotal(lines, true, money.FromCents(200)))
}

func TestOrderTotalIgnoresSurchargeWhenNotDelivery(t *testing.T) {
	lines := []pricing.Line{
		{Qty: 1, UnitPrice: money.FromCents(250)},
	}
	require.Equal(t, money.FromCents(250), pricing.OrderTotal(lines, false, money.FromCents(500)))
}

// Separate lines of the same product never pool quantities toward a bundle.
func TestPromotionAppliesPerLine(t *testing.T) {
	split := []pricing.Line{
		{Qty: 2, UnitPrice: money.FromCents(250), PromoEligible: true},
		{Qty: 1, UnitPrice: money.FromCents(250), PromoEligible: true},
	}
	pooled := []pricing.Line{
		{Qty: 3, UnitPrice: money.FromCents(250), PromoEligible: true},
	}
	require.Equal(t, money.FromCents(750), pricing.OrderTotal(split, false, money.Zero))
	require.Equal(t, money.FromCents(100), pricing.OrderTotal(pooled, false, money.Zero))
}
