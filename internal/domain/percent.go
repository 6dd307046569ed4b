package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a percentage value (2.5 means 2.5%). Used for configuration
// limits, not for money arithmetic.
type Percent float64

// Equal compares two percentages with a small tolerance.
func (p Percent) Equal(q Percent) bool {
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

// Decimal returns the exact decimal form for comparisons against
// decimal-computed ratios.
func (p Percent) Decimal() decimal.Decimal {
	return decimal.NewFromFloat(float64(p))
}

// String renders "2.50%".
func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}
