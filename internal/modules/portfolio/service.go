// Package portfolio computes portfolio state from raw transaction
// history: holdings, weighted-average cost basis, realized and
// unrealized gain/loss, and total value. Prices are always supplied by
// the caller; nothing here performs I/O.
package portfolio

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/avoran/folio/internal/domain"
)

// Holding is the computed state of one open position.
type Holding struct {
	Symbol        string          `json:"symbol"`
	Quantity      domain.Quantity `json:"quantity"`
	CostBasis     domain.Money    `json:"cost_basis"`   // total cost of the open position
	AverageCost   domain.Money    `json:"average_cost"` // per share
	MarketValue   domain.Money    `json:"market_value"`
	UnrealizedPnL domain.Money    `json:"unrealized_pnl"`
}

// Valuation is the full result of a portfolio calculation.
type Valuation struct {
	Holdings    map[string]Holding `json:"holdings"`
	RealizedPnL domain.Money       `json:"realized_pnl"`
	TotalValue  domain.Money       `json:"total_value"`
}

// Quantities returns just the held share counts, the shape the risk
// service takes as input.
func (v *Valuation) Quantities() map[string]domain.Quantity {
	out := make(map[string]domain.Quantity, len(v.Holdings))
	for symbol, h := range v.Holdings {
		out[symbol] = h.Quantity
	}
	return out
}

// CalculationService replays transaction history into portfolio state.
type CalculationService struct {
	log zerolog.Logger
}

// NewCalculationService creates a new calculation service.
func NewCalculationService(log zerolog.Logger) *CalculationService {
	return &CalculationService{
		log: log.With().Str("service", "portfolio_calculation").Logger(),
	}
}

// position is the running replay state for one symbol.
type position struct {
	quantity domain.Quantity
	cost     domain.Money // total cost basis of the open quantity
}

// Calculate replays transactions in chronological order (ties broken by
// id) and values the resulting holdings with the supplied prices.
//
// Each buy recomputes the weighted-average cost basis; each sell
// realizes gain/loss against the current average cost. A sell exceeding
// the quantity held at that point in history fails with an
// insufficient-quantity error. A symbol still held after replay but
// missing from prices fails the whole calculation with a validation
// error: an incomplete price set must not produce a valuation that
// looks complete.
func (s *CalculationService) Calculate(
	transactions []domain.Transaction,
	prices map[string]domain.Money,
) (*Valuation, error) {
	replay := make([]domain.Transaction, len(transactions))
	copy(replay, transactions)
	sort.SliceStable(replay, func(i, j int) bool {
		if !replay[i].ExecutedAt.Equal(replay[j].ExecutedAt) {
			return replay[i].ExecutedAt.Before(replay[j].ExecutedAt)
		}
		return replay[i].ID < replay[j].ID
	})

	positions := make(map[string]*position)
	var realized domain.Money

	for _, t := range replay {
		pos, ok := positions[t.Symbol]
		if !ok {
			pos = &position{}
			positions[t.Symbol] = pos
		}

		switch t.Side {
		case domain.SideBuy:
			if err := s.applyBuy(pos, t); err != nil {
				return nil, err
			}
		case domain.SideSell:
			gain, err := s.applySell(pos, t)
			if err != nil {
				return nil, err
			}
			if realized, err = realized.Add(gain); err != nil {
				return nil, err
			}
		default:
			return nil, domain.NewValidationError(
				fmt.Sprintf("unknown transaction side %q", t.Side)).
				WithContext("transaction_id", t.ID)
		}
	}

	return s.value(positions, prices, realized)
}

// applyBuy folds a purchase into the position's quantity and total cost.
// Fees are part of the cost basis.
func (s *CalculationService) applyBuy(pos *position, t domain.Transaction) error {
	cost, err := t.Notional().Add(t.Fees)
	if err != nil {
		return err
	}
	if pos.cost, err = pos.cost.Add(cost); err != nil {
		return err
	}
	pos.quantity = pos.quantity.Add(t.Quantity)
	return nil
}

// applySell reduces the position and returns the realized gain/loss
// against the weighted-average cost at that point in history.
func (s *CalculationService) applySell(pos *position, t domain.Transaction) (domain.Money, error) {
	// A zero-quantity sell would slip past the Sub check and divide the
	// cost basis by a zero share count below.
	if t.Quantity.IsZero() {
		return domain.Money{}, domain.NewValidationError(
			fmt.Sprintf("sell of zero quantity for %s", t.Symbol)).
			WithContext("rule", "nonzero_sell").
			WithContext("transaction_id", t.ID)
	}

	remaining, err := pos.quantity.Sub(t.Quantity)
	if err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) {
			derr.WithContext("symbol", t.Symbol).WithContext("transaction_id", t.ID)
		}
		return domain.Money{}, err
	}

	// Average cost of the shares being sold.
	avgCost, err := pos.cost.Div(pos.quantity.Value())
	if err != nil {
		return domain.Money{}, err
	}
	costOfSold := avgCost.Mul(t.Quantity.Value())

	proceeds, err := t.Notional().Sub(t.Fees)
	if err != nil {
		return domain.Money{}, err
	}
	gain, err := proceeds.Sub(costOfSold)
	if err != nil {
		return domain.Money{}, err
	}

	pos.quantity = remaining
	if pos.cost, err = pos.cost.Sub(costOfSold); err != nil {
		return domain.Money{}, err
	}
	if remaining.IsZero() {
		// Close out exactly; avoids a dust cost basis from division.
		pos.cost = domain.Money{}
	}
	return gain, nil
}

// value prices the surviving positions and sums the totals.
func (s *CalculationService) value(
	positions map[string]*position,
	prices map[string]domain.Money,
	realized domain.Money,
) (*Valuation, error) {
	holdings := make(map[string]Holding)
	var total domain.Money

	for symbol, pos := range positions {
		if pos.quantity.IsZero() {
			continue
		}

		price, ok := prices[symbol]
		if !ok {
			return nil, domain.NewValidationError(
				fmt.Sprintf("no current price supplied for held symbol %s", symbol)).
				WithContext("rule", "price_coverage").
				WithContext("symbol", symbol)
		}

		marketValue := pos.quantity.MulPrice(price)
		unrealized, err := marketValue.Sub(pos.cost)
		if err != nil {
			return nil, err
		}
		avgCost, err := pos.cost.Div(pos.quantity.Value())
		if err != nil {
			return nil, err
		}

		holdings[symbol] = Holding{
			Symbol:        symbol,
			Quantity:      pos.quantity,
			CostBasis:     pos.cost,
			AverageCost:   avgCost,
			MarketValue:   marketValue,
			UnrealizedPnL: unrealized,
		}
		if total, err = total.Add(marketValue); err != nil {
			return nil, err
		}
	}

	s.log.Debug().
		Int("holdings", len(holdings)).
		Str("total_value", total.Amount().String()).
		Msg("portfolio valued")

	return &Valuation{
		Holdings:    holdings,
		RealizedPnL: realized,
		TotalValue:  total,
	}, nil
}
