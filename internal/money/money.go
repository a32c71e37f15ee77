package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a currency amount in minor units (cents). All arithmetic on order
// totals happens on this type so two-decimal amounts stay exact.
type Money int64

// Zero is the zero amount.
const Zero Money = 0

var centsFactor = decimal.NewFromInt(100)

// FromCents wraps a raw cent count.
func FromCents(cents int64) Money {
	return Money(cents)
}

// Parse converts a decimal string such as "2.50" into Money. Amounts with more
// than two fractional digits are rounded half away from zero at two decimals,
// matching how totals are rounded everywhere else.
func Parse(value string) (Money, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("money: empty amount")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, fmt.Errorf("money: parse %q: %w", value, err)
	}
	return FromDecimal(d), nil
}

// FromDecimal converts a decimal amount to cents, rounding half away from zero
// at two decimal places.
func FromDecimal(d decimal.Decimal) Money {
	return Money(d.Round(2).Mul(centsFactor).IntPart())
}

// Cents returns the raw cent count.
func (m Money) Cents() int64 { return int64(m) }

// Decimal returns the amount as a two-decimal decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(centsFactor)
}

// String formats the amount with exactly two decimal places, e.g. "2.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON renders the amount as a plain JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*m = 0
		return nil
	}
	raw = strings.Trim(raw, `"`)
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
