package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/avoran/folio/internal/domain"
	"github.com/avoran/folio/internal/events"
	"github.com/avoran/folio/internal/modules/portfolio"
)

// PriceSource supplies current prices for the given symbols. It is
// implemented by the calling layer; this core never fetches market data
// itself.
type PriceSource interface {
	Prices(symbols []string) (map[string]domain.Money, error)
}

// SnapshotJob values every active portfolio and records a balance
// snapshot plus a BalanceRecorded event, one unit of work per run.
type SnapshotJob struct {
	uowFactory domain.UnitOfWorkFactory
	calc       *portfolio.CalculationService
	prices     PriceSource
	source     *events.Source
	log        zerolog.Logger
}

// NewSnapshotJob creates the balance snapshot job.
func NewSnapshotJob(
	uowFactory domain.UnitOfWorkFactory,
	calc *portfolio.CalculationService,
	prices PriceSource,
	source *events.Source,
	log zerolog.Logger,
) *SnapshotJob {
	return &SnapshotJob{
		uowFactory: uowFactory,
		calc:       calc,
		prices:     prices,
		source:     source,
		log:        log.With().Str("job", "balance_snapshot").Logger(),
	}
}

// Name implements Job.
func (j *SnapshotJob) Name() string { return "balance_snapshot" }

// Run records one snapshot per active portfolio. All snapshots of a run
// commit together; any failure rolls the whole run back.
func (j *SnapshotJob) Run() error {
	now := time.Now()

	return domain.WithUnitOfWork(context.Background(), j.uowFactory, func(uow domain.UnitOfWork) error {
		portfolios, err := uow.Portfolios().ListActive()
		if err != nil {
			return err
		}

		for _, p := range portfolios {
			if err := j.snapshot(uow, p, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (j *SnapshotJob) snapshot(uow domain.UnitOfWork, p domain.Portfolio, now time.Time) error {
	txs, err := uow.Transactions().ListByPortfolio(p.ID)
	if err != nil {
		return err
	}

	prices, err := j.prices.Prices(symbolsOf(txs))
	if err != nil {
		return err
	}

	valuation, err := j.calc.Calculate(txs, prices)
	if err != nil {
		return err
	}

	value := valuation.TotalValue
	if value.Currency() == "" {
		// Empty portfolio: record an explicit zero in its own currency.
		if value, err = domain.NewMoneyFromString("0", p.Currency); err != nil {
			return err
		}
	}

	snapshot := domain.BalanceSnapshot{
		PortfolioID: p.ID,
		Value:       value,
		RecordedAt:  now,
	}
	if _, err := uow.Balances().Create(&snapshot); err != nil {
		return err
	}

	event := j.source.New(&events.BalanceRecordedData{
		PortfolioID: p.ID,
		Value:       value.Amount().String(),
		Currency:    value.Currency(),
	})
	if err := uow.Events().Append(event); err != nil {
		return err
	}

	j.log.Info().
		Int64("portfolio_id", p.ID).
		Str("value", value.Amount().String()).
		Str("currency", value.Currency()).
		Msg("Balance snapshot recorded")
	return nil
}

// symbolsOf collects the distinct symbols appearing in a transaction
// history, in first-seen order.
func symbolsOf(txs []domain.Transaction) []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, t := range txs {
		if !seen[t.Symbol] {
			seen[t.Symbol] = true
			symbols = append(symbols, t.Symbol)
		}
	}
	return symbols
}
