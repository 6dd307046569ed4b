package database

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/avoran/folio/internal/domain"
)

// uowState tracks the unit-of-work lifecycle:
// ACTIVE -> {COMMITTED, ROLLED_BACK}. Both end states are terminal.
type uowState int

const (
	uowActive uowState = iota
	uowCommitted
	uowRolledBack
)

// txHandle shares one physical transaction and its lifecycle state
// between the unit of work and every repository it hands out. This is
// the rule that prevents split-brain writes: all handles from one unit
// of work go through this single *sql.Tx.
type txHandle struct {
	tx    *sql.Tx
	state uowState
}

// guard returns the transaction while the unit of work is active and a
// concurrency-conflict error once it has been finalized.
func (h *txHandle) guard() (*sql.Tx, error) {
	if h.state != uowActive {
		return nil, domain.NewConcurrencyConflictError("unit of work already finalized")
	}
	return h.tx, nil
}

// UnitOfWork is the sqlite implementation of domain.UnitOfWork. It is
// single-use, owned by exactly one business operation, and not safe for
// concurrent use. Nested units of work are impossible by construction:
// every Begin on the Manager opens its own transaction.
type UnitOfWork struct {
	handle       *txHandle
	stocks       *StockRepository
	portfolios   *PortfolioRepository
	transactions *TransactionRepository
	targets      *TargetRepository
	balances     *BalanceRepository
	journal      *JournalRepository
	outbox       *EventOutbox
	log          zerolog.Logger
}

// Stocks returns the stock repository bound to this transaction.
func (u *UnitOfWork) Stocks() domain.StockRepository { return u.stocks }

// Portfolios returns the portfolio repository bound to this transaction.
func (u *UnitOfWork) Portfolios() domain.PortfolioRepository { return u.portfolios }

// Transactions returns the transaction repository bound to this transaction.
func (u *UnitOfWork) Transactions() domain.TransactionRepository { return u.transactions }

// Targets returns the target repository bound to this transaction.
func (u *UnitOfWork) Targets() domain.TargetRepository { return u.targets }

// Balances returns the balance repository bound to this transaction.
func (u *UnitOfWork) Balances() domain.BalanceRepository { return u.balances }

// Journal returns the journal repository bound to this transaction.
func (u *UnitOfWork) Journal() domain.JournalRepository { return u.journal }

// Events returns the event outbox bound to this transaction.
func (u *UnitOfWork) Events() domain.EventOutbox { return u.outbox }

// Commit makes all writes since Begin durable atomically. The unit of
// work is finalized afterwards, whether the commit succeeded or not.
func (u *UnitOfWork) Commit() error {
	if u.handle.state != uowActive {
		return domain.NewConcurrencyConflictError("unit of work already finalized")
	}
	if err := u.handle.tx.Commit(); err != nil {
		// A failed commit leaves nothing durable; the state is terminal.
		u.handle.state = uowRolledBack
		return domain.NewInternalError("commit failed", err)
	}
	u.handle.state = uowCommitted
	u.log.Debug().Msg("unit of work committed")
	return nil
}

// Rollback discards all writes since Begin. Calling it on an already
// finalized unit of work fails with a concurrency-conflict error.
func (u *UnitOfWork) Rollback() error {
	if u.handle.state != uowActive {
		return domain.NewConcurrencyConflictError("unit of work already finalized")
	}
	u.handle.state = uowRolledBack
	if err := u.handle.tx.Rollback(); err != nil {
		return domain.NewInternalError("rollback failed", err)
	}
	u.log.Debug().Msg("unit of work rolled back")
	return nil
}

// Manager opens units of work against one database. It implements
// domain.UnitOfWorkFactory.
type Manager struct {
	db  *DB
	log zerolog.Logger
}

// NewManager creates a unit-of-work manager.
func NewManager(db *DB, log zerolog.Logger) *Manager {
	return &Manager{
		db:  db,
		log: log.With().Str("component", "unit_of_work").Logger(),
	}
}

// Begin opens a fresh unit of work backed by its own transaction.
func (m *Manager) Begin(ctx context.Context) (domain.UnitOfWork, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.NewInternalError("failed to begin transaction", err)
	}

	h := &txHandle{tx: tx, state: uowActive}
	return &UnitOfWork{
		handle:       h,
		stocks:       newStockRepository(h, m.log),
		portfolios:   newPortfolioRepository(h, m.log),
		transactions: newTransactionRepository(h, m.log),
		targets:      newTargetRepository(h, m.log),
		balances:     newBalanceRepository(h, m.log),
		journal:      newJournalRepository(h, m.log),
		outbox:       newEventOutbox(h, m.log),
		log:          m.log,
	}, nil
}
