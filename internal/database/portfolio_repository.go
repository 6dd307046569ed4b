package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/avoran/folio/internal/domain"
)

// PortfolioRepository handles portfolio persistence within a unit of work.
type PortfolioRepository struct {
	handle *txHandle
	log    zerolog.Logger
}

func newPortfolioRepository(handle *txHandle, log zerolog.Logger) *PortfolioRepository {
	return &PortfolioRepository{
		handle: handle,
		log:    log.With().Str("repo", "portfolios").Logger(),
	}
}

// Create inserts a portfolio and returns its id.
func (r *PortfolioRepository) Create(p *domain.Portfolio) (int64, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return 0, err
	}

	now := time.Now()
	res, err := tx.Exec(`INSERT INTO portfolios
		(name, currency, max_positions, max_risk_per_trade, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Currency, p.MaxPositions, float64(p.MaxRiskPerTrade), p.IsActive,
		timeToDB(now), timeToDB(now))
	if err != nil {
		return 0, fmt.Errorf("failed to insert portfolio %s: %w", p.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get portfolio insert id: %w", err)
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return id, nil
}

// GetByID returns the portfolio with the given id.
func (r *PortfolioRepository) GetByID(id int64) (*domain.Portfolio, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(`SELECT id, name, currency, max_positions, max_risk_per_trade,
		is_active, created_at, updated_at FROM portfolios WHERE id = ?`, id)
	p, err := scanPortfolio(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("portfolio", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio %d: %w", id, err)
	}
	return p, nil
}

// List returns all portfolios.
func (r *PortfolioRepository) List() ([]domain.Portfolio, error) {
	return r.list(`SELECT id, name, currency, max_positions, max_risk_per_trade,
		is_active, created_at, updated_at FROM portfolios ORDER BY id`)
}

// ListActive returns portfolios with the active flag set.
func (r *PortfolioRepository) ListActive() ([]domain.Portfolio, error) {
	return r.list(`SELECT id, name, currency, max_positions, max_risk_per_trade,
		is_active, created_at, updated_at FROM portfolios WHERE is_active = 1 ORDER BY id`)
}

func (r *PortfolioRepository) list(query string) ([]domain.Portfolio, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []domain.Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolios: %w", err)
	}
	return portfolios, nil
}

// Update rewrites the mutable fields of a portfolio.
func (r *PortfolioRepository) Update(p *domain.Portfolio) error {
	tx, err := r.handle.guard()
	if err != nil {
		return err
	}

	now := time.Now()
	res, err := tx.Exec(`UPDATE portfolios SET name = ?, currency = ?, max_positions = ?,
		max_risk_per_trade = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Currency, p.MaxPositions, float64(p.MaxRiskPerTrade), p.IsActive,
		timeToDB(now), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update portfolio %d: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("portfolio", p.ID)
	}
	p.UpdatedAt = now
	return nil
}

// Delete removes a portfolio.
func (r *PortfolioRepository) Delete(id int64) error {
	tx, err := r.handle.guard()
	if err != nil {
		return err
	}

	res, err := tx.Exec(`DELETE FROM portfolios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("portfolio", id)
	}
	return nil
}

func scanPortfolio(row rowScanner) (*domain.Portfolio, error) {
	var p domain.Portfolio
	var maxRisk float64
	var createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Name, &p.Currency, &p.MaxPositions, &maxRisk,
		&p.IsActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.MaxRiskPerTrade = domain.Percent(maxRisk)

	var err error
	if p.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = timeFromDB(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
