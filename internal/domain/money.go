// Package domain provides the shared kernel: exact-decimal value objects,
// the domain error hierarchy, aggregate models, and the repository and
// unit-of-work contracts implemented by the storage layer.
package domain

import (
	"encoding/json"
	"fmt"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an immutable monetary value: an exact decimal amount tagged
// with an ISO 4217 currency code. All arithmetic returns new values and
// never touches binary floating point, so repeated accumulation over a
// transaction history cannot drift.
//
// The zero value is the additive identity: zero of no particular
// currency. It combines with any currency in Add/Sub, which keeps
// sums over empty sets usable without threading a currency everywhere.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney creates a Money value. The currency must be a known ISO 4217
// code; unknown codes fail with a validation error.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if gomoney.GetCurrency(currency) == nil {
		return Money{}, NewValidationError(
			fmt.Sprintf("unknown currency code %q", currency)).
			WithContext("rule", "currency_code").
			WithContext("currency", currency)
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromString parses a decimal string ("150.25") into Money.
func NewMoneyFromString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, NewValidationError(
			fmt.Sprintf("invalid money amount %q", amount)).
			WithContext("rule", "amount_format").
			WithContext("amount", amount)
	}
	return NewMoney(d, currency)
}

// NewMoneyFromFloat converts a float64 into Money. The float is converted
// once at the boundary; everything downstream stays exact.
func NewMoneyFromFloat(amount float64, currency string) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// MustMoney is NewMoneyFromString that panics on error. Test helper.
func MustMoney(amount, currency string) Money {
	m, err := NewMoneyFromString(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Amount returns the exact decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the ISO 4217 currency code, or "" for the zero value.
func (m Money) Currency() string { return m.currency }

// sameCurrency resolves the currency for a binary operation. The empty
// currency (zero value) is weak and adopts the other side's currency.
func sameCurrency(op string, a, b Money) (string, error) {
	if a.currency == "" {
		return b.currency, nil
	}
	if b.currency == "" {
		return a.currency, nil
	}
	if a.currency != b.currency {
		return "", NewCurrencyMismatchError(op, a.currency, b.currency)
	}
	return a.currency, nil
}

// Add returns m + o. Fails with a currency-mismatch error when the
// currencies differ.
func (m Money) Add(o Money) (Money, error) {
	cur, err := sameCurrency("add", m, o)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(o.amount), currency: cur}, nil
}

// Sub returns m - o. Fails with a currency-mismatch error when the
// currencies differ.
func (m Money) Sub(o Money) (Money, error) {
	cur, err := sameCurrency("subtract", m, o)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(o.amount), currency: cur}, nil
}

// Mul returns m scaled by a dimensionless factor.
func (m Money) Mul(scalar decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(scalar), currency: m.currency}
}

// Div returns m divided by a dimensionless divisor. A zero divisor fails
// with a division-by-zero error.
func (m Money) Div(scalar decimal.Decimal) (Money, error) {
	if scalar.IsZero() {
		return Money{}, NewDivisionByZeroError("money division").
			WithContext("amount", m.amount.String())
	}
	return Money{amount: m.amount.Div(scalar), currency: m.currency}, nil
}

// Cmp compares two Money values of the same currency: -1 if m < o, 0 if
// equal, +1 if m > o. Cross-currency comparison fails rather than
// returning a misleading ordering.
func (m Money) Cmp(o Money) (int, error) {
	if _, err := sameCurrency("compare", m, o); err != nil {
		return 0, err
	}
	return m.amount.Cmp(o.amount), nil
}

// Equal reports value-object equality: same currency and same amount.
func (m Money) Equal(o Money) bool {
	return m.currency == o.currency && m.amount.Equal(o.amount)
}

// Neg returns the negation of m.
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Abs returns the absolute value of m.
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs(), currency: m.currency}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// IsPositive reports whether the amount is strictly positive.
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// IsNegative reports whether the amount is strictly negative.
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// String renders the amount rounded to the currency's minor units,
// e.g. "$1,500.00". The zero value renders as the bare amount.
func (m Money) String() string {
	if m.currency == "" {
		return m.amount.String()
	}
	cur := gomoney.GetCurrency(m.currency)
	minor := m.amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// MarshalJSON encodes the amount as a decimal string to keep it exact in
// transport.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount.String(), Currency: m.currency})
}

// UnmarshalJSON decodes the string-amount form produced by MarshalJSON.
func (m *Money) UnmarshalJSON(data []byte) error {
	var aux moneyJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Currency == "" {
		d, err := decimal.NewFromString(aux.Amount)
		if err != nil {
			return NewValidationError(
				fmt.Sprintf("invalid money amount %q", aux.Amount))
		}
		*m = Money{amount: d}
		return nil
	}
	parsed, err := NewMoneyFromString(aux.Amount, aux.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
