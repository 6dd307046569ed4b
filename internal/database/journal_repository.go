package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/avoran/folio/internal/domain"
)

// JournalRepository handles trading-journal persistence within a unit of work.
type JournalRepository struct {
	handle *txHandle
	log    zerolog.Logger
}

func newJournalRepository(handle *txHandle, log zerolog.Logger) *JournalRepository {
	return &JournalRepository{
		handle: handle,
		log:    log.With().Str("repo", "journal").Logger(),
	}
}

// Create inserts a journal entry and returns its id.
func (r *JournalRepository) Create(e *domain.JournalEntry) (int64, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return 0, err
	}

	now := time.Now()
	res, err := tx.Exec(`INSERT INTO journal_entries (portfolio_id, title, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.PortfolioID, e.Title, e.Body, timeToDB(now), timeToDB(now))
	if err != nil {
		return 0, fmt.Errorf("failed to insert journal entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get journal insert id: %w", err)
	}
	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now
	return id, nil
}

// GetByID returns the journal entry with the given id.
func (r *JournalRepository) GetByID(id int64) (*domain.JournalEntry, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(`SELECT id, portfolio_id, title, body, created_at, updated_at
		FROM journal_entries WHERE id = ?`, id)
	e, err := scanJournalEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("journal entry", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry %d: %w", id, err)
	}
	return e, nil
}

// List returns journal entries newest-first, at most limit (0 = no limit).
func (r *JournalRepository) List(limit int) ([]domain.JournalEntry, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return nil, err
	}

	query := `SELECT id, portfolio_id, title, body, created_at, updated_at
		FROM journal_entries ORDER BY created_at DESC, id DESC`
	var rows *sql.Rows
	if limit > 0 {
		rows, err = tx.Query(query+` LIMIT ?`, limit)
	} else {
		rows, err = tx.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entries: %w", err)
	}
	return entries, nil
}

// Update rewrites the mutable fields of a journal entry.
func (r *JournalRepository) Update(e *domain.JournalEntry) error {
	tx, err := r.handle.guard()
	if err != nil {
		return err
	}

	now := time.Now()
	res, err := tx.Exec(`UPDATE journal_entries SET title = ?, body = ?, updated_at = ?
		WHERE id = ?`,
		e.Title, e.Body, timeToDB(now), e.ID)
	if err != nil {
		return fmt.Errorf("failed to update journal entry %d: %w", e.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("journal entry", e.ID)
	}
	e.UpdatedAt = now
	return nil
}

// Delete removes a journal entry.
func (r *JournalRepository) Delete(id int64) error {
	tx, err := r.handle.guard()
	if err != nil {
		return err
	}

	res, err := tx.Exec(`DELETE FROM journal_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("journal entry", id)
	}
	return nil
}

func scanJournalEntry(row rowScanner) (*domain.JournalEntry, error) {
	var e domain.JournalEntry
	var createdAt, updatedAt string
	if err := row.Scan(&e.ID, &e.PortfolioID, &e.Title, &e.Body, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if e.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = timeFromDB(updatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
