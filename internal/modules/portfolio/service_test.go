package portfolio

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoran/folio/internal/domain"
	foliotesting "github.com/avoran/folio/internal/testing"
)

var (
	day1 = time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC)
	day2 = time.Date(2025, 2, 10, 15, 0, 0, 0, time.UTC)
	day3 = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
)

func newService() *CalculationService {
	return NewCalculationService(zerolog.Nop())
}

func usd(amount string) domain.Money {
	return domain.MustMoney(amount, "USD")
}

func prices(m map[string]string) map[string]domain.Money {
	out := make(map[string]domain.Money, len(m))
	for symbol, amount := range m {
		out[symbol] = usd(amount)
	}
	return out
}

func TestCalculate_WeightedAverageCost(t *testing.T) {
	txs := []domain.Transaction{
		*foliotesting.NewBuyFixture(1, 1, "AAPL", "10", "100.00", day1),
		*foliotesting.NewBuyFixture(1, 1, "AAPL", "10", "200.00", day2),
	}

	v, err := newService().Calculate(txs, prices(map[string]string{"AAPL": "150.00"}))
	require.NoError(t, err)

	h, ok := v.Holdings["AAPL"]
	require.True(t, ok)
	assert.True(t, h.Quantity.Equal(domain.MustQuantity("20")))
	assert.True(t, h.CostBasis.Equal(usd("3000")), "cost basis %s", h.CostBasis)
	assert.True(t, h.AverageCost.Equal(usd("150")), "average cost %s", h.AverageCost)
	assert.True(t, h.MarketValue.Equal(usd("3000")))
	assert.True(t, h.UnrealizedPnL.IsZero())
	assert.True(t, v.TotalValue.Equal(usd("3000")))
}

func TestCalculate_FeesRaiseCostBasis(t *testing.T) {
	buy := foliotesting.NewBuyFixture(1, 1, "AAPL", "10", "100.00", day1)
	buy.Fees = usd("10.00")

	v, err := newService().Calculate([]domain.Transaction{*buy},
		prices(map[string]string{"AAPL": "100.00"}))
	require.NoError(t, err)

	h := v.Holdings["AAPL"]
	assert.True(t, h.CostBasis.Equal(usd("1010")), "cost basis %s", h.CostBasis)
	assert.True(t, h.AverageCost.Equal(usd("101")))
	assert.True(t, h.UnrealizedPnL.Equal(usd("-10")))
}

func TestCalculate_RealizedGain(t *testing.T) {
	txs := []domain.Transaction{
		*foliotesting.NewBuyFixture(1, 1, "AAPL", "10", "100.00", day1),
		*foliotesting.NewSellFixture(1, 1, "AAPL", "5", "150.00", day2),
	}

	v, err := newService().Calculate(txs, prices(map[string]string{"AAPL": "150.00"}))
	require.NoError(t, err)

	// Sold 5 at 150 against an average cost of 100.
	assert.True(t, v.RealizedPnL.Equal(usd("250")), "realized %s", v.RealizedPnL)

	h := v.Holdings["AAPL"]
	assert.True(t, h.Quantity.Equal(domain.MustQuantity("5")))
	assert.True(t, h.CostBasis.Equal(usd("500")))
	assert.True(t, h.UnrealizedPnL.Equal(usd("250")))
}

func TestCalculate_OversellFails(t *testing.T) {
	txs := []domain.Transaction{
		*foliotesting.NewBuyFixture(1, 1, "AAPL", "10", "100.00", day1),
		*foliotesting.NewSellFixture(1, 1, "AAPL", "15", "150.00", day2),
	}

	_, err := newService().Calculate(txs, prices(map[string]string{"AAPL": "150.00"}))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInsufficientQuantity))
}

func TestCalculate_ZeroQuantitySellRejected(t *testing.T) {
	txs := []domain.Transaction{
		*foliotesting.NewSellFixture(1, 1, "AAPL", "0", "150.00", day1),
	}

	_, err := newService().Calculate(txs, prices(map[string]string{"AAPL": "150.00"}))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.False(t, domain.IsKind(err, domain.KindDivisionByZero))
}

func TestCalculate_ZeroQuantitySellAgainstHoldingRejected(t *testing.T) {
	txs := []domain.Transaction{
		*foliotesting.NewBuyFixture(1, 1, "AAPL", "10", "100.00", day1),
		*foliotesting.NewSellFixture(1, 1, "AAPL", "0", "150.00", day2),
	}

	_, err := newService().Calculate(txs, prices(map[string]string{"AAPL": "150.00"}))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestCalculate_ReplaysInChronologicalOrder(t *testing.T) {
	// The sell arrives first in the slice but executed after the buy.
	txs := []domain.Transaction{
		*foliotesting.NewSellFixture(1, 1, "AAPL", "5", "150.00", day2),
		*foliotesting.NewBuyFixture(1, 1, "AAPL", "10", "100.00", day1),
	}

	v, err := newService().Calculate(txs, prices(map[string]string{"AAPL": "150.00"}))
	require.NoError(t, err)
	assert.True(t, v.Holdings["AAPL"].Quantity.Equal(domain.MustQuantity("5")))
}

func TestCalculate_SameTimestampTieBrokenByID(t *testing.T) {
	buy := foliotesting.NewBuyFixture(1, 1, "AAPL", "5", "100.00", day1)
	buy.ID = 1
	sell := foliotesting.NewSellFixture(1, 1, "AAPL", "5", "120.00", day1)
	sell.ID = 2

	v, err := newService().Calculate([]domain.Transaction{*sell, *buy},
		prices(map[string]string{}))
	require.NoError(t, err)
	assert.Empty(t, v.Holdings)
	assert.True(t, v.RealizedPnL.Equal(usd("100")))
}

func TestCalculate_MissingPriceFailsWholeCalculation(t *testing.T) {
	txs := []domain.Transaction{
		*foliotesting.NewBuyFixture(1, 1, "AAPL", "10", "100.00", day1),
		*foliotesting.NewBuyFixture(1, 2, "MSFT", "5", "400.00", day2),
	}

	_, err := newService().Calculate(txs, prices(map[string]string{"AAPL": "150.00"}))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Contains(t, err.Error(), "MSFT")
}

func TestCalculate_ClosedPositionNeedsNoPrice(t *testing.T) {
	txs := []domain.Transaction{
		*foliotesting.NewBuyFixture(1, 1, "AAPL", "10", "100.00", day1),
		*foliotesting.NewSellFixture(1, 1, "AAPL", "10", "120.00", day2),
		*foliotesting.NewBuyFixture(1, 2, "MSFT", "5", "400.00", day3),
	}

	v, err := newService().Calculate(txs, prices(map[string]string{"MSFT": "410.00"}))
	require.NoError(t, err)

	_, held := v.Holdings["AAPL"]
	assert.False(t, held)
	assert.True(t, v.RealizedPnL.Equal(usd("200")))
	assert.True(t, v.TotalValue.Equal(usd("2050")))
}

func TestCalculate_ReopenedPositionStartsFresh(t *testing.T) {
	txs := []domain.Transaction{
		*foliotesting.NewBuyFixture(1, 1, "AAPL", "10", "100.00", day1),
		*foliotesting.NewSellFixture(1, 1, "AAPL", "10", "150.00", day2),
		*foliotesting.NewBuyFixture(1, 1, "AAPL", "4", "200.00", day3),
	}

	v, err := newService().Calculate(txs, prices(map[string]string{"AAPL": "200.00"}))
	require.NoError(t, err)

	h := v.Holdings["AAPL"]
	assert.True(t, h.CostBasis.Equal(usd("800")), "cost basis %s", h.CostBasis)
	assert.True(t, h.AverageCost.Equal(usd("200")))
}

func TestCalculate_EmptyHistory(t *testing.T) {
	v, err := newService().Calculate(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, v.Holdings)
	assert.True(t, v.TotalValue.IsZero())
	assert.True(t, v.RealizedPnL.IsZero())
}

func TestValuation_Quantities(t *testing.T) {
	txs := []domain.Transaction{
		*foliotesting.NewBuyFixture(1, 1, "AAPL", "10", "100.00", day1),
		*foliotesting.NewBuyFixture(1, 2, "MSFT", "5", "400.00", day2),
	}

	v, err := newService().Calculate(txs,
		prices(map[string]string{"AAPL": "100.00", "MSFT": "400.00"}))
	require.NoError(t, err)

	q := v.Quantities()
	require.Len(t, q, 2)
	assert.True(t, q["AAPL"].Equal(domain.MustQuantity("10")))
	assert.True(t, q["MSFT"].Equal(domain.MustQuantity("5")))
}
