package risk

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoran/folio/internal/domain"
	foliotesting "github.com/avoran/folio/internal/testing"
)

func newService() *AssessmentService {
	return NewAssessmentService(zerolog.Nop())
}

func buyProposal(symbol, quantity, price string) domain.Transaction {
	return *foliotesting.NewBuyFixture(1, 1, symbol, quantity, price,
		time.Date(2025, 5, 1, 14, 30, 0, 0, time.UTC))
}

func violated(a *Assessment, limit Limit) bool {
	for _, v := range a.Violations {
		if v.Limit == limit {
			return true
		}
	}
	return false
}

func TestAssess_TradeOverRiskLimitFlagged(t *testing.T) {
	p := *foliotesting.NewPortfolioFixture() // 2% per trade

	// 300 notional against 10,000 total is 3%.
	a, err := newService().Assess(p, nil,
		domain.MustMoney("10000.00", "USD"), buyProposal("AAPL", "3", "100.00"))
	require.NoError(t, err)

	assert.False(t, a.Approved)
	assert.True(t, violated(a, LimitMaxRiskPerTrade))
	assert.True(t, a.TradeRiskPct.Equal(3.0), "risk pct %v", a.TradeRiskPct)
}

func TestAssess_TradeWithinRiskLimitApproved(t *testing.T) {
	p := *foliotesting.NewPortfolioFixture()

	a, err := newService().Assess(p, nil,
		domain.MustMoney("10000.00", "USD"), buyProposal("AAPL", "1", "150.00"))
	require.NoError(t, err)

	assert.True(t, a.Approved)
	assert.Empty(t, a.Violations)
	assert.True(t, a.TradeRiskPct.Equal(1.5), "risk pct %v", a.TradeRiskPct)
}

func TestAssess_UnconfiguredRiskLimitSkipped(t *testing.T) {
	p := *foliotesting.NewPortfolioFixture()
	p.MaxRiskPerTrade = 0

	a, err := newService().Assess(p, nil,
		domain.MustMoney("100.00", "USD"), buyProposal("AAPL", "10", "100.00"))
	require.NoError(t, err)
	assert.True(t, a.Approved)
}

func TestAssess_NoPortfolioValueFlagged(t *testing.T) {
	p := *foliotesting.NewPortfolioFixture()

	a, err := newService().Assess(p, nil, domain.Money{}, buyProposal("AAPL", "1", "100.00"))
	require.NoError(t, err)

	assert.False(t, a.Approved)
	assert.True(t, violated(a, LimitMaxRiskPerTrade))
}

func TestAssess_CurrencyMismatchIsHardError(t *testing.T) {
	p := *foliotesting.NewPortfolioFixture()
	proposed := buyProposal("AAPL", "1", "100.00")
	proposed.Price = domain.MustMoney("100.00", "EUR")

	a, err := newService().Assess(p, nil,
		domain.MustMoney("10000.00", "USD"), proposed)
	require.Error(t, err)
	assert.Nil(t, a)
	assert.True(t, domain.IsKind(err, domain.KindCurrencyMismatch))
}

func TestAssess_NewPositionOverLimitFlagged(t *testing.T) {
	p := *foliotesting.NewPortfolioFixture()
	p.MaxPositions = 2

	holdings := map[string]domain.Quantity{
		"AAPL": domain.MustQuantity("10"),
		"MSFT": domain.MustQuantity("5"),
	}

	a, err := newService().Assess(p, holdings,
		domain.MustMoney("100000.00", "USD"), buyProposal("KO", "1", "65.00"))
	require.NoError(t, err)

	assert.False(t, a.Approved)
	assert.True(t, violated(a, LimitMaxPositions))
}

func TestAssess_AddingToExistingPositionExempt(t *testing.T) {
	p := *foliotesting.NewPortfolioFixture()
	p.MaxPositions = 2

	holdings := map[string]domain.Quantity{
		"AAPL": domain.MustQuantity("10"),
		"MSFT": domain.MustQuantity("5"),
	}

	a, err := newService().Assess(p, holdings,
		domain.MustMoney("100000.00", "USD"), buyProposal("AAPL", "1", "150.00"))
	require.NoError(t, err)
	assert.True(t, a.Approved)
}

func TestAssess_ClosedPositionFreesASlot(t *testing.T) {
	p := *foliotesting.NewPortfolioFixture()
	p.MaxPositions = 2

	holdings := map[string]domain.Quantity{
		"AAPL": domain.MustQuantity("10"),
		"MSFT": domain.MustQuantity("0"),
	}

	a, err := newService().Assess(p, holdings,
		domain.MustMoney("100000.00", "USD"), buyProposal("KO", "1", "65.00"))
	require.NoError(t, err)
	assert.True(t, a.Approved)
}

func TestAssess_SellNeverCountsAgainstPositions(t *testing.T) {
	p := *foliotesting.NewPortfolioFixture()
	p.MaxPositions = 1

	holdings := map[string]domain.Quantity{"AAPL": domain.MustQuantity("10")}
	sell := *foliotesting.NewSellFixture(1, 1, "AAPL", "1", "150.00",
		time.Date(2025, 5, 1, 14, 30, 0, 0, time.UTC))

	a, err := newService().Assess(p, holdings,
		domain.MustMoney("10000.00", "USD"), sell)
	require.NoError(t, err)
	assert.True(t, a.Approved)
}

func TestAssess_InactivePortfolioFlagged(t *testing.T) {
	p := *foliotesting.NewPortfolioFixture()
	p.IsActive = false

	a, err := newService().Assess(p, nil,
		domain.MustMoney("10000.00", "USD"), buyProposal("AAPL", "1", "100.00"))
	require.NoError(t, err)

	assert.False(t, a.Approved)
	assert.True(t, violated(a, LimitPortfolioActive))
}

func TestAssess_CollectsAllViolations(t *testing.T) {
	p := *foliotesting.NewPortfolioFixture()
	p.IsActive = false
	p.MaxPositions = 1

	holdings := map[string]domain.Quantity{"MSFT": domain.MustQuantity("5")}

	// Inactive portfolio, over risk, and one position too many.
	a, err := newService().Assess(p, holdings,
		domain.MustMoney("10000.00", "USD"), buyProposal("AAPL", "5", "100.00"))
	require.NoError(t, err)

	assert.False(t, a.Approved)
	assert.Len(t, a.Violations, 3)
}
