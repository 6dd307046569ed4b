package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoran/folio/internal/database"
	"github.com/avoran/folio/internal/domain"
	"github.com/avoran/folio/internal/events"
	"github.com/avoran/folio/internal/modules/portfolio"
	"github.com/avoran/folio/internal/scheduler"
	foliotesting "github.com/avoran/folio/internal/testing"
)

type staticPrices map[string]domain.Money

func (p staticPrices) Prices(symbols []string) (map[string]domain.Money, error) {
	out := make(map[string]domain.Money, len(symbols))
	for _, s := range symbols {
		if m, ok := p[s]; ok {
			out[s] = m
		}
	}
	return out, nil
}

type failingPrices struct{ err error }

func (p failingPrices) Prices([]string) (map[string]domain.Money, error) {
	return nil, p.err
}

func newJob(t *testing.T, prices scheduler.PriceSource) (*scheduler.SnapshotJob, *database.Manager) {
	t.Helper()
	db := foliotesting.NewTestDB(t)
	mgr := database.NewManager(db, zerolog.Nop())
	job := scheduler.NewSnapshotJob(mgr,
		portfolio.NewCalculationService(zerolog.Nop()),
		prices, events.NewSource(), zerolog.Nop())
	return job, mgr
}

func seedPortfolio(t *testing.T, mgr *database.Manager, withTrades bool) int64 {
	t.Helper()
	var pfID int64
	err := domain.WithUnitOfWork(context.Background(), mgr, func(uow domain.UnitOfWork) error {
		var err error
		if pfID, err = uow.Portfolios().Create(foliotesting.NewPortfolioFixture()); err != nil {
			return err
		}
		if !withTrades {
			return nil
		}
		stockID, err := uow.Stocks().Create(&domain.Stock{Symbol: "AAPL", Name: "Apple Inc."})
		if err != nil {
			return err
		}
		buy := foliotesting.NewBuyFixture(pfID, stockID, "AAPL", "10", "100.00",
			time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC))
		_, err = uow.Transactions().Create(buy)
		return err
	})
	require.NoError(t, err)
	return pfID
}

func TestSnapshotJob_RecordsBalanceAndEvent(t *testing.T) {
	job, mgr := newJob(t, staticPrices{"AAPL": domain.MustMoney("150.00", "USD")})
	pfID := seedPortfolio(t, mgr, true)

	require.NoError(t, job.Run())

	uow, err := mgr.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = uow.Rollback() }()

	latest, err := uow.Balances().Latest(pfID)
	require.NoError(t, err)
	assert.True(t, latest.Value.Equal(domain.MustMoney("1500.00", "USD")),
		"snapshot value %s", latest.Value)

	pending, err := uow.Events().ListPending(0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, events.BalanceRecorded, pending[0].Type)
	payload, ok := pending[0].Payload.(*events.BalanceRecordedData)
	require.True(t, ok)
	assert.Equal(t, pfID, payload.PortfolioID)
	assert.Equal(t, "1500", payload.Value)
	assert.Equal(t, "USD", payload.Currency)
}

func TestSnapshotJob_EmptyPortfolioRecordsZero(t *testing.T) {
	job, mgr := newJob(t, staticPrices{})
	pfID := seedPortfolio(t, mgr, false)

	require.NoError(t, job.Run())

	uow, err := mgr.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = uow.Rollback() }()

	latest, err := uow.Balances().Latest(pfID)
	require.NoError(t, err)
	assert.True(t, latest.Value.IsZero())
	assert.Equal(t, "USD", latest.Value.Currency())
}

func TestSnapshotJob_SkipsInactivePortfolios(t *testing.T) {
	job, mgr := newJob(t, staticPrices{})

	var pfID int64
	err := domain.WithUnitOfWork(context.Background(), mgr, func(uow domain.UnitOfWork) error {
		p := foliotesting.NewPortfolioFixture()
		p.IsActive = false
		var err error
		pfID, err = uow.Portfolios().Create(p)
		return err
	})
	require.NoError(t, err)

	require.NoError(t, job.Run())

	uow, err := mgr.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = uow.Rollback() }()

	_, err = uow.Balances().Latest(pfID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestSnapshotJob_PriceFailureRollsRunBack(t *testing.T) {
	boom := errors.New("feed unavailable")
	job, mgr := newJob(t, failingPrices{err: boom})
	pfID := seedPortfolio(t, mgr, true)

	require.ErrorIs(t, job.Run(), boom)

	uow, err := mgr.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = uow.Rollback() }()

	_, err = uow.Balances().Latest(pfID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	pending, err := uow.Events().ListPending(0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
