package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/avoran/folio/internal/domain"
)

// StockRepository handles stock persistence within a unit of work.
type StockRepository struct {
	handle *txHandle
	log    zerolog.Logger
}

func newStockRepository(handle *txHandle, log zerolog.Logger) *StockRepository {
	return &StockRepository{
		handle: handle,
		log:    log.With().Str("repo", "stocks").Logger(),
	}
}

// Create inserts a stock and returns its id.
func (r *StockRepository) Create(s *domain.Stock) (int64, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return 0, err
	}

	now := time.Now()
	res, err := tx.Exec(`INSERT INTO stocks (symbol, name, sector, grade, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.Symbol, s.Name, s.Sector, string(s.Grade), timeToDB(now), timeToDB(now))
	if err != nil {
		return 0, fmt.Errorf("failed to insert stock %s: %w", s.Symbol, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get stock insert id: %w", err)
	}
	s.ID = id
	s.CreatedAt = now
	s.UpdatedAt = now
	return id, nil
}

// GetByID returns the stock with the given id.
func (r *StockRepository) GetByID(id int64) (*domain.Stock, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(`SELECT id, symbol, name, sector, grade, created_at, updated_at
		FROM stocks WHERE id = ?`, id)
	s, err := scanStock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("stock", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock %d: %w", id, err)
	}
	return s, nil
}

// GetBySymbol returns the stock with the given symbol.
func (r *StockRepository) GetBySymbol(symbol string) (*domain.Stock, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(`SELECT id, symbol, name, sector, grade, created_at, updated_at
		FROM stocks WHERE symbol = ?`, symbol)
	s, err := scanStock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("stock", symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock %s: %w", symbol, err)
	}
	return s, nil
}

// List returns all stocks ordered by symbol.
func (r *StockRepository) List() ([]domain.Stock, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(`SELECT id, symbol, name, sector, grade, created_at, updated_at
		FROM stocks ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stocks: %w", err)
	}
	defer rows.Close()

	var stocks []domain.Stock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stocks: %w", err)
	}
	return stocks, nil
}

// Update rewrites the mutable fields of a stock.
func (r *StockRepository) Update(s *domain.Stock) error {
	tx, err := r.handle.guard()
	if err != nil {
		return err
	}

	now := time.Now()
	res, err := tx.Exec(`UPDATE stocks SET symbol = ?, name = ?, sector = ?, grade = ?, updated_at = ?
		WHERE id = ?`,
		s.Symbol, s.Name, s.Sector, string(s.Grade), timeToDB(now), s.ID)
	if err != nil {
		return fmt.Errorf("failed to update stock %d: %w", s.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("stock", s.ID)
	}
	s.UpdatedAt = now
	return nil
}

// Delete removes a stock.
func (r *StockRepository) Delete(id int64) error {
	tx, err := r.handle.guard()
	if err != nil {
		return err
	}

	res, err := tx.Exec(`DELETE FROM stocks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stock %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("stock", id)
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStock(row rowScanner) (*domain.Stock, error) {
	var s domain.Stock
	var grade, createdAt, updatedAt string
	if err := row.Scan(&s.ID, &s.Symbol, &s.Name, &s.Sector, &grade, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	s.Grade = domain.Grade(grade)

	var err error
	if s.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = timeFromDB(updatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
