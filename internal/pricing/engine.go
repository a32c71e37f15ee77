package pricing

import "github.com/noah-isme/backend-pupuseria/internal/money"

// Small pupusas sell under a bundle promotion: every complete group of
// BundleSize units charges BundlePrice instead of the per-unit price.
const (
	BundleSize  = 3
	BundlePrice = money.Money(100) // 1.00
)

// Line is one order line as seen by the pricing engine.
type Line struct {
	Qty           int
	UnitPrice     money.Money
	PromoEligible bool
}

// LineTotal computes the charge for a single line.
//
// Ineligible lines price as qty x unit. Eligible lines charge BundlePrice per
// complete group of BundleSize units plus the remainder at the unit price.
// A unit price below BundlePrice/BundleSize makes the promotion cost more
// than plain pricing; that is the published rule and is kept as-is. Quantity
// zero yields 0.00; callers reject non-positive quantities before pricing.
func LineTotal(qty int, unit money.Money, promoEligible bool) money.Money {
	if qty <= 0 {
		return money.Zero
	}
	if !promoEligible {
		return money.Money(int64(qty)) * unit
	}
	groups := int64(qty / BundleSize)
	remainder := int64(qty % BundleSize)
	return money.Money(groups)*BundlePrice + money.Money(remainder)*unit
}

// OrderTotal sums line totals and adds the delivery surcharge. The surcharge
// only counts when the order is a delivery; a cost supplied on a non-delivery
// order is ignored.
func OrderTotal(lines []Line, isDelivery bool, deliveryCost money.Money) money.Money {
	var total money.Money
	for _, l := range lines {
		total += LineTotal(l.Qty, l.UnitPrice, l.PromoEligible)
	}
	if isDelivery && deliveryCost > 0 {
		total += deliveryCost
	}
	return total
}
