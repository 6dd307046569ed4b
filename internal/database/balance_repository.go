package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/avoran/folio/internal/domain"
)

// BalanceRepository handles portfolio value history within a unit of work.
type BalanceRepository struct {
	handle *txHandle
	log    zerolog.Logger
}

func newBalanceRepository(handle *txHandle, log zerolog.Logger) *BalanceRepository {
	return &BalanceRepository{
		handle: handle,
		log:    log.With().Str("repo", "balances").Logger(),
	}
}

// Create inserts a balance snapshot and returns its id.
func (r *BalanceRepository) Create(b *domain.BalanceSnapshot) (int64, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return 0, err
	}

	amount, currency := moneyToDB(b.Value)
	res, err := tx.Exec(`INSERT INTO balances (portfolio_id, value_amount, value_currency, recorded_at)
		VALUES (?, ?, ?, ?)`,
		b.PortfolioID, amount, currency, timeToDB(b.RecordedAt))
	if err != nil {
		return 0, fmt.Errorf("failed to insert balance snapshot: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get balance insert id: %w", err)
	}
	b.ID = id
	return id, nil
}

// ListByPortfolio returns a portfolio's balance history oldest-first.
func (r *BalanceRepository) ListByPortfolio(portfolioID int64) ([]domain.BalanceSnapshot, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(`SELECT id, portfolio_id, value_amount, value_currency, recorded_at
		FROM balances WHERE portfolio_id = ? ORDER BY recorded_at, id`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.BalanceSnapshot
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		snapshots = append(snapshots, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balances: %w", err)
	}
	return snapshots, nil
}

// Latest returns the most recent balance snapshot for a portfolio.
func (r *BalanceRepository) Latest(portfolioID int64) (*domain.BalanceSnapshot, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(`SELECT id, portfolio_id, value_amount, value_currency, recorded_at
		FROM balances WHERE portfolio_id = ? ORDER BY recorded_at DESC, id DESC LIMIT 1`, portfolioID)
	b, err := scanBalance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("balance for portfolio", portfolioID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest balance for portfolio %d: %w", portfolioID, err)
	}
	return b, nil
}

// Delete removes a balance snapshot.
func (r *BalanceRepository) Delete(id int64) error {
	tx, err := r.handle.guard()
	if err != nil {
		return err
	}

	res, err := tx.Exec(`DELETE FROM balances WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete balance %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("balance", id)
	}
	return nil
}

func scanBalance(row rowScanner) (*domain.BalanceSnapshot, error) {
	var b domain.BalanceSnapshot
	var amount, currency, recordedAt string
	if err := row.Scan(&b.ID, &b.PortfolioID, &amount, &currency, &recordedAt); err != nil {
		return nil, err
	}

	var err error
	if b.Value, err = moneyFromDB(amount, currency); err != nil {
		return nil, err
	}
	if b.RecordedAt, err = timeFromDB(recordedAt); err != nil {
		return nil, err
	}
	return &b, nil
}
