package database

import (
	"fmt"
	"time"

	"github.com/avoran/folio/internal/domain"
)

// Timestamps are stored as RFC 3339 UTC strings; amounts as decimal
// strings. Parsing happens at the scan boundary so the rest of the code
// only ever sees domain types.

// timeDBLayout pads nanoseconds to a fixed width so that lexicographic
// order of stored strings matches chronological order. RFC3339Nano trims
// trailing zeros, which breaks ORDER BY on timestamp columns.
const timeDBLayout = "2006-01-02T15:04:05.000000000Z07:00"

func timeToDB(t time.Time) string {
	return t.UTC().Format(timeDBLayout)
}

func timeFromDB(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func moneyToDB(m domain.Money) (amount, currency string) {
	return m.Amount().String(), m.Currency()
}

func moneyFromDB(amount, currency string) (domain.Money, error) {
	if currency == "" {
		// Zero money (e.g. no fees recorded).
		return domain.Money{}, nil
	}
	m, err := domain.NewMoneyFromString(amount, currency)
	if err != nil {
		return domain.Money{}, fmt.Errorf("invalid stored money %s %s: %w", amount, currency, err)
	}
	return m, nil
}

func quantityFromDB(value string) (domain.Quantity, error) {
	q, err := domain.NewQuantityFromString(value)
	if err != nil {
		return domain.Quantity{}, fmt.Errorf("invalid stored quantity %q: %w", value, err)
	}
	return q, nil
}
