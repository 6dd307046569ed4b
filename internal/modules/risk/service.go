// Package risk evaluates proposed transactions against a portfolio's
// configured limits. Violations are reported in the assessment result,
// not raised: trade limits are soft, and the caller decides whether to
// block.
package risk

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/avoran/folio/internal/domain"
)

// Limit names the configured limit a violation refers to.
type Limit string

const (
	LimitMaxPositions    Limit = "max_positions"
	LimitMaxRiskPerTrade Limit = "max_risk_per_trade"
	LimitPortfolioActive Limit = "portfolio_active"
)

// Violation describes one exceeded limit.
type Violation struct {
	Limit    Limit  `json:"limit"`
	Message  string `json:"message"`
	Observed string `json:"observed"`
	Allowed  string `json:"allowed"`
}

// Assessment is the result of evaluating a proposed transaction.
type Assessment struct {
	Approved   bool        `json:"approved"`
	Violations []Violation `json:"violations,omitempty"`
	// TradeRiskPct is the proposed notional as a percentage of total
	// portfolio value.
	TradeRiskPct domain.Percent `json:"trade_risk_pct"`
}

// AssessmentService checks proposed transactions against portfolio limits.
type AssessmentService struct {
	log zerolog.Logger
}

// NewAssessmentService creates a new risk assessment service.
func NewAssessmentService(log zerolog.Logger) *AssessmentService {
	return &AssessmentService{
		log: log.With().Str("service", "risk_assessment").Logger(),
	}
}

// Assess evaluates a proposed transaction against the portfolio's
// configured limits, given the current holdings and total value computed
// by the calculation service.
//
// Per-trade risk is notional / total value, as a percentage. A buy that
// opens a new symbol counts against max_positions. A limit of zero means
// the limit is not configured and is skipped. Currency mismatches
// between the proposal and the portfolio value are hard failures, not
// reported violations.
func (s *AssessmentService) Assess(
	p domain.Portfolio,
	holdings map[string]domain.Quantity,
	totalValue domain.Money,
	proposed domain.Transaction,
) (*Assessment, error) {
	assessment := &Assessment{Approved: true}

	if !p.IsActive {
		assessment.flag(Violation{
			Limit:    LimitPortfolioActive,
			Message:  fmt.Sprintf("portfolio %s is not active", p.Name),
			Observed: "inactive",
			Allowed:  "active",
		})
	}

	if err := s.checkTradeRisk(assessment, p, totalValue, proposed); err != nil {
		return nil, err
	}
	s.checkPositionCount(assessment, p, holdings, proposed)

	s.log.Debug().
		Str("symbol", proposed.Symbol).
		Bool("approved", assessment.Approved).
		Int("violations", len(assessment.Violations)).
		Msg("transaction assessed")

	return assessment, nil
}

// checkTradeRisk compares the proposed notional against the per-trade
// risk limit.
func (s *AssessmentService) checkTradeRisk(
	a *Assessment,
	p domain.Portfolio,
	totalValue domain.Money,
	proposed domain.Transaction,
) error {
	notional := proposed.Notional()
	if notional.IsZero() {
		return nil
	}

	// Comparing notional against total value requires one currency.
	if _, err := notional.Cmp(totalValue); err != nil {
		return err
	}

	if totalValue.IsZero() || totalValue.IsNegative() {
		// No value to risk against: any nonzero notional is unbounded risk.
		a.flag(Violation{
			Limit:    LimitMaxRiskPerTrade,
			Message:  "portfolio has no value to risk against",
			Observed: notional.Amount().String(),
			Allowed:  "0",
		})
		return nil
	}

	riskPct := notional.Amount().Div(totalValue.Amount()).Mul(decimal.NewFromInt(100))
	a.TradeRiskPct = domain.Percent(riskPct.InexactFloat64())

	if p.MaxRiskPerTrade <= 0 {
		return nil
	}
	if riskPct.GreaterThan(p.MaxRiskPerTrade.Decimal()) {
		a.flag(Violation{
			Limit: LimitMaxRiskPerTrade,
			Message: fmt.Sprintf("trade risks %s%% of portfolio value, limit is %s",
				riskPct.StringFixed(2), p.MaxRiskPerTrade),
			Observed: riskPct.StringFixed(2) + "%",
			Allowed:  p.MaxRiskPerTrade.String(),
		})
	}
	return nil
}

// checkPositionCount flags a buy that would open one position too many.
func (s *AssessmentService) checkPositionCount(
	a *Assessment,
	p domain.Portfolio,
	holdings map[string]domain.Quantity,
	proposed domain.Transaction,
) {
	if p.MaxPositions <= 0 || proposed.Side != domain.SideBuy {
		return
	}
	if q, held := holdings[proposed.Symbol]; held && !q.IsZero() {
		// Adding to an existing position never changes the count.
		return
	}

	open := 0
	for _, q := range holdings {
		if !q.IsZero() {
			open++
		}
	}
	if open >= p.MaxPositions {
		a.flag(Violation{
			Limit: LimitMaxPositions,
			Message: fmt.Sprintf("opening %s would exceed the position limit of %d",
				proposed.Symbol, p.MaxPositions),
			Observed: fmt.Sprintf("%d", open+1),
			Allowed:  fmt.Sprintf("%d", p.MaxPositions),
		})
	}
}

func (a *Assessment) flag(v Violation) {
	a.Approved = false
	a.Violations = append(a.Violations, v)
}
