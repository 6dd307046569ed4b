package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Quantity is an immutable, exact, non-negative share count. Fractional
// quantities are allowed (fractional shares, fund units); negative ones
// are not representable.
type Quantity struct {
	value decimal.Decimal
}

// NewQuantity creates a Quantity. Negative values fail with an
// invalid-quantity error.
func NewQuantity(value decimal.Decimal) (Quantity, error) {
	if value.IsNegative() {
		return Quantity{}, NewInvalidQuantityError(value.String())
	}
	return Quantity{value: value}, nil
}

// NewQuantityFromInt creates a Quantity from a whole share count.
func NewQuantityFromInt(value int64) (Quantity, error) {
	return NewQuantity(decimal.NewFromInt(value))
}

// NewQuantityFromString parses a decimal string into a Quantity.
func NewQuantityFromString(value string) (Quantity, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Quantity{}, NewInvalidQuantityError(value)
	}
	return NewQuantity(d)
}

// MustQuantity is NewQuantityFromString that panics on error. Test helper.
func MustQuantity(value string) Quantity {
	q, err := NewQuantityFromString(value)
	if err != nil {
		panic(err)
	}
	return q
}

// Value returns the exact decimal share count.
func (q Quantity) Value() decimal.Decimal { return q.value }

// Add returns q + o.
func (q Quantity) Add(o Quantity) Quantity {
	return Quantity{value: q.value.Add(o.value)}
}

// Sub returns q - o. A result below zero fails with an
// insufficient-quantity error: you cannot sell more shares than you hold.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	res := q.value.Sub(o.value)
	if res.IsNegative() {
		return Quantity{}, NewInsufficientQuantityError(q.value.String(), o.value.String())
	}
	return Quantity{value: res}, nil
}

// MulPrice multiplies the share count by a per-share price, yielding the
// notional Money value.
func (q Quantity) MulPrice(price Money) Money {
	return price.Mul(q.value)
}

// Cmp compares two quantities: -1, 0 or +1.
func (q Quantity) Cmp(o Quantity) int { return q.value.Cmp(o.value) }

// Equal reports whether both quantities are the same count.
func (q Quantity) Equal(o Quantity) bool { return q.value.Equal(o.value) }

// IsZero reports whether the count is zero.
func (q Quantity) IsZero() bool { return q.value.IsZero() }

// String returns the plain decimal representation.
func (q Quantity) String() string { return q.value.String() }

// MarshalJSON encodes the count as a decimal string.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.value.String())
}

// UnmarshalJSON decodes a decimal string, enforcing non-negativity.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := NewQuantityFromString(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
