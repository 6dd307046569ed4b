package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/avoran/folio/internal/domain"
)

// TargetRepository handles price-target persistence within a unit of work.
type TargetRepository struct {
	handle *txHandle
	log    zerolog.Logger
}

func newTargetRepository(handle *txHandle, log zerolog.Logger) *TargetRepository {
	return &TargetRepository{
		handle: handle,
		log:    log.With().Str("repo", "targets").Logger(),
	}
}

// Create inserts a target and returns its id. A stock has at most one
// target; a second insert for the same stock fails on the unique index.
func (r *TargetRepository) Create(t *domain.Target) (int64, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return 0, err
	}

	pivotAmount, pivotCurrency := moneyToDB(t.PivotPrice)
	failureAmount, failureCurrency := moneyToDB(t.FailurePrice)
	now := time.Now()

	res, err := tx.Exec(`INSERT INTO targets
		(stock_id, pivot_amount, pivot_currency, failure_amount, failure_currency, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.StockID, pivotAmount, pivotCurrency, failureAmount, failureCurrency,
		t.Notes, timeToDB(now), timeToDB(now))
	if err != nil {
		return 0, fmt.Errorf("failed to insert target for stock %d: %w", t.StockID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get target insert id: %w", err)
	}
	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now
	return id, nil
}

// GetByID returns the target with the given id.
func (r *TargetRepository) GetByID(id int64) (*domain.Target, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(`SELECT id, stock_id, pivot_amount, pivot_currency,
		failure_amount, failure_currency, notes, created_at, updated_at
		FROM targets WHERE id = ?`, id)
	t, err := scanTarget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("target", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get target %d: %w", id, err)
	}
	return t, nil
}

// GetByStock returns the target for the given stock.
func (r *TargetRepository) GetByStock(stockID int64) (*domain.Target, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(`SELECT id, stock_id, pivot_amount, pivot_currency,
		failure_amount, failure_currency, notes, created_at, updated_at
		FROM targets WHERE stock_id = ?`, stockID)
	t, err := scanTarget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("target for stock", stockID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get target for stock %d: %w", stockID, err)
	}
	return t, nil
}

// Update rewrites the mutable fields of a target.
func (r *TargetRepository) Update(t *domain.Target) error {
	tx, err := r.handle.guard()
	if err != nil {
		return err
	}

	pivotAmount, pivotCurrency := moneyToDB(t.PivotPrice)
	failureAmount, failureCurrency := moneyToDB(t.FailurePrice)
	now := time.Now()

	res, err := tx.Exec(`UPDATE targets SET pivot_amount = ?, pivot_currency = ?,
		failure_amount = ?, failure_currency = ?, notes = ?, updated_at = ? WHERE id = ?`,
		pivotAmount, pivotCurrency, failureAmount, failureCurrency, t.Notes,
		timeToDB(now), t.ID)
	if err != nil {
		return fmt.Errorf("failed to update target %d: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("target", t.ID)
	}
	t.UpdatedAt = now
	return nil
}

// Delete removes a target.
func (r *TargetRepository) Delete(id int64) error {
	tx, err := r.handle.guard()
	if err != nil {
		return err
	}

	res, err := tx.Exec(`DELETE FROM targets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete target %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("target", id)
	}
	return nil
}

func scanTarget(row rowScanner) (*domain.Target, error) {
	var t domain.Target
	var pivotAmount, pivotCurrency, failureAmount, failureCurrency string
	var createdAt, updatedAt string
	if err := row.Scan(&t.ID, &t.StockID, &pivotAmount, &pivotCurrency,
		&failureAmount, &failureCurrency, &t.Notes, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if t.PivotPrice, err = moneyFromDB(pivotAmount, pivotCurrency); err != nil {
		return nil, err
	}
	if t.FailurePrice, err = moneyFromDB(failureAmount, failureCurrency); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = timeFromDB(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
