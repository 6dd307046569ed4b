package domain

import (
	"context"

	"github.com/avoran/folio/internal/events"
)

// Repository interfaces are capability sets over one aggregate each. They
// are implemented by the storage layer and handed out by a UnitOfWork;
// consumers depend only on these contracts, never on the storage types.
//
// A miss on any Get* returns a not-found domain error. Infrastructure
// failures come back wrapped; callers should not branch on their text.

// StockRepository manages tracked securities.
type StockRepository interface {
	Create(s *Stock) (int64, error)
	GetByID(id int64) (*Stock, error)
	GetBySymbol(symbol string) (*Stock, error)
	List() ([]Stock, error)
	Update(s *Stock) error
	Delete(id int64) error
}

// PortfolioRepository manages portfolios and their risk configuration.
type PortfolioRepository interface {
	Create(p *Portfolio) (int64, error)
	GetByID(id int64) (*Portfolio, error)
	List() ([]Portfolio, error)
	ListActive() ([]Portfolio, error)
	Update(p *Portfolio) error
	Delete(id int64) error
}

// TransactionRepository manages buy/sell history.
type TransactionRepository interface {
	Create(t *Transaction) (int64, error)
	GetByID(id int64) (*Transaction, error)
	// ListByPortfolio returns transactions in replay order:
	// executed_at ascending, ties broken by id.
	ListByPortfolio(portfolioID int64) ([]Transaction, error)
	Delete(id int64) error
}

// TargetRepository manages price targets.
type TargetRepository interface {
	Create(t *Target) (int64, error)
	GetByID(id int64) (*Target, error)
	GetByStock(stockID int64) (*Target, error)
	Update(t *Target) error
	Delete(id int64) error
}

// BalanceRepository manages portfolio value history.
type BalanceRepository interface {
	Create(b *BalanceSnapshot) (int64, error)
	ListByPortfolio(portfolioID int64) ([]BalanceSnapshot, error)
	Latest(portfolioID int64) (*BalanceSnapshot, error)
	Delete(id int64) error
}

// JournalRepository manages trading journal entries.
type JournalRepository interface {
	Create(e *JournalEntry) (int64, error)
	GetByID(id int64) (*JournalEntry, error)
	// List returns entries newest-first, at most limit (0 = no limit).
	List(limit int) ([]JournalEntry, error)
	Update(e *JournalEntry) error
	Delete(id int64) error
}

// EventOutbox persists domain events in the same transaction as the state
// change they record. An external publisher drains pending events later.
type EventOutbox interface {
	Append(e events.Event) error
	ListPending(limit int) ([]events.Event, error)
	MarkPublished(eventID string) error
}

// UnitOfWork is the transactional boundary for one business operation.
// Every repository handle obtained from the same instance is backed by
// the same physical transaction; Commit makes all writes durable
// atomically, Rollback discards them all.
//
// A UnitOfWork is single-use and not safe for concurrent use: one
// instance per operation, finalized exactly once. Any repository call
// after Commit or Rollback fails with a concurrency-conflict error.
type UnitOfWork interface {
	Stocks() StockRepository
	Portfolios() PortfolioRepository
	Transactions() TransactionRepository
	Targets() TargetRepository
	Balances() BalanceRepository
	Journal() JournalRepository
	Events() EventOutbox

	Commit() error
	Rollback() error
}

// UnitOfWorkFactory opens a fresh UnitOfWork per business operation.
// Nesting is not supported; each Begin starts its own transaction.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// WithUnitOfWork runs fn inside a fresh UnitOfWork and commits when fn
// returns nil. On error or panic the transaction is rolled back before
// the failure propagates, so no partial writes survive any exit path.
func WithUnitOfWork(ctx context.Context, factory UnitOfWorkFactory, fn func(UnitOfWork) error) error {
	uow, err := factory.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		// No-op after a successful Commit; discards writes otherwise.
		_ = uow.Rollback()
	}()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}
