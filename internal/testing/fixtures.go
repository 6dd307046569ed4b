package testing

import (
	"time"

	"github.com/avoran/folio/internal/domain"
)

// NewStockFixtures returns a set of test stocks for use in tests.
func NewStockFixtures() []*domain.Stock {
	return []*domain.Stock{
		{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", Grade: domain.GradeA},
		{Symbol: "MSFT", Name: "Microsoft Corporation", Sector: "Technology", Grade: domain.GradeA},
		{Symbol: "KO", Name: "The Coca-Cola Company", Sector: "Consumer Staples", Grade: domain.GradeB},
	}
}

// NewPortfolioFixture returns a test portfolio with sensible limits.
func NewPortfolioFixture() *domain.Portfolio {
	return &domain.Portfolio{
		Name:            "Family",
		Currency:        "USD",
		MaxPositions:    10,
		MaxRiskPerTrade: 2.0,
		IsActive:        true,
	}
}

// NewBuyFixture returns a buy transaction for tests.
func NewBuyFixture(portfolioID, stockID int64, symbol, quantity, price string, executedAt time.Time) *domain.Transaction {
	return &domain.Transaction{
		PortfolioID: portfolioID,
		StockID:     stockID,
		Symbol:      symbol,
		Side:        domain.SideBuy,
		Quantity:    domain.MustQuantity(quantity),
		Price:       domain.MustMoney(price, "USD"),
		ExecutedAt:  executedAt,
	}
}

// NewSellFixture returns a sell transaction for tests.
func NewSellFixture(portfolioID, stockID int64, symbol, quantity, price string, executedAt time.Time) *domain.Transaction {
	return &domain.Transaction{
		PortfolioID: portfolioID,
		StockID:     stockID,
		Symbol:      symbol,
		Side:        domain.SideSell,
		Quantity:    domain.MustQuantity(quantity),
		Price:       domain.MustMoney(price, "USD"),
		ExecutedAt:  executedAt,
	}
}
