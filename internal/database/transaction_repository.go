package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/avoran/folio/internal/domain"
)

// TransactionRepository handles buy/sell history within a unit of work.
type TransactionRepository struct {
	handle *txHandle
	log    zerolog.Logger
}

func newTransactionRepository(handle *txHandle, log zerolog.Logger) *TransactionRepository {
	return &TransactionRepository{
		handle: handle,
		log:    log.With().Str("repo", "transactions").Logger(),
	}
}

// Create inserts a transaction and returns its id.
func (r *TransactionRepository) Create(t *domain.Transaction) (int64, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return 0, err
	}

	priceAmount, priceCurrency := moneyToDB(t.Price)
	feesAmount, feesCurrency := moneyToDB(t.Fees)
	now := time.Now()

	res, err := tx.Exec(`INSERT INTO transactions
		(portfolio_id, stock_id, symbol, side, quantity, price_amount, price_currency,
		 fees_amount, fees_currency, executed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.PortfolioID, t.StockID, t.Symbol, string(t.Side), t.Quantity.String(),
		priceAmount, priceCurrency, feesAmount, feesCurrency,
		timeToDB(t.ExecutedAt), timeToDB(now))
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction for %s: %w", t.Symbol, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction insert id: %w", err)
	}
	t.ID = id
	t.CreatedAt = now
	return id, nil
}

// GetByID returns the transaction with the given id.
func (r *TransactionRepository) GetByID(id int64) (*domain.Transaction, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(`SELECT id, portfolio_id, stock_id, symbol, side, quantity,
		price_amount, price_currency, fees_amount, fees_currency, executed_at, created_at
		FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("transaction", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, err)
	}
	return t, nil
}

// ListByPortfolio returns a portfolio's transactions in replay order:
// executed_at ascending, ties broken by id.
func (r *TransactionRepository) ListByPortfolio(portfolioID int64) ([]domain.Transaction, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(`SELECT id, portfolio_id, stock_id, symbol, side, quantity,
		price_amount, price_currency, fees_amount, fees_currency, executed_at, created_at
		FROM transactions WHERE portfolio_id = ? ORDER BY executed_at, id`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}

// Delete removes a transaction. The ledger is normally append-only;
// deletion exists for correcting data-entry mistakes.
func (r *TransactionRepository) Delete(id int64) error {
	tx, err := r.handle.guard()
	if err != nil {
		return err
	}

	res, err := tx.Exec(`DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("transaction", id)
	}
	return nil
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var t domain.Transaction
	var side, quantity, priceAmount, priceCurrency, feesAmount, feesCurrency string
	var executedAt, createdAt string
	if err := row.Scan(&t.ID, &t.PortfolioID, &t.StockID, &t.Symbol, &side, &quantity,
		&priceAmount, &priceCurrency, &feesAmount, &feesCurrency, &executedAt, &createdAt); err != nil {
		return nil, err
	}
	t.Side = domain.Side(side)

	var err error
	if t.Quantity, err = quantityFromDB(quantity); err != nil {
		return nil, err
	}
	if t.Price, err = moneyFromDB(priceAmount, priceCurrency); err != nil {
		return nil, err
	}
	if t.Fees, err = moneyFromDB(feesAmount, feesCurrency); err != nil {
		return nil, err
	}
	if t.ExecutedAt, err = timeFromDB(executedAt); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return nil, err
	}
	return &t, nil
}
