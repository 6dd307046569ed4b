package domain

import "time"

// Grade is the analyst grade assigned to a stock.
type Grade string

const (
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeUnset Grade = ""
)

// Side is the direction of a transaction.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Stock represents a tracked security.
type Stock struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Sector    string    `json:"sector,omitempty"`
	Grade     Grade     `json:"grade,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Portfolio represents one portfolio with its risk configuration.
// MaxRiskPerTrade is a percentage of total portfolio value.
type Portfolio struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Currency        string    `json:"currency"`
	MaxPositions    int       `json:"max_positions"`
	MaxRiskPerTrade Percent   `json:"max_risk_per_trade"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Transaction is a buy or sell of a stock within a portfolio.
// Cross-aggregate references are identifiers, never embedded objects.
type Transaction struct {
	ID          int64     `json:"id"`
	PortfolioID int64     `json:"portfolio_id"`
	StockID     int64     `json:"stock_id"`
	Symbol      string    `json:"symbol"`
	Side        Side      `json:"side"`
	Quantity    Quantity  `json:"quantity"`
	Price       Money     `json:"price"` // per share
	Fees        Money     `json:"fees"`
	ExecutedAt  time.Time `json:"executed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notional returns quantity x price, excluding fees.
func (t Transaction) Notional() Money {
	return t.Quantity.MulPrice(t.Price)
}

// Target is a price target for a stock: the pivot (entry/confirmation)
// price and the failure (stop) price.
type Target struct {
	ID           int64     `json:"id"`
	StockID      int64     `json:"stock_id"`
	PivotPrice   Money     `json:"pivot_price"`
	FailurePrice Money     `json:"failure_price"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BalanceSnapshot records a portfolio's total value at a point in time.
type BalanceSnapshot struct {
	ID          int64     `json:"id"`
	PortfolioID int64     `json:"portfolio_id"`
	Value       Money     `json:"value"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// JournalEntry is a free-form trading journal note, optionally tied to a
// portfolio (PortfolioID 0 means unscoped).
type JournalEntry struct {
	ID          int64     `json:"id"`
	PortfolioID int64     `json:"portfolio_id,omitempty"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
