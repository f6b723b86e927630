package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MitulMistry/paper-trader/internal/models"
)

const holdingColumns = `id, user_id, symbol, shares, created_at, updated_at`

// CreateHolding inserts a new holding row
func (s *Queries) CreateHolding(ctx context.Context, h *models.Holding) error {
	query := `
		INSERT INTO holdings (user_id, symbol, shares, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id
	`
	now := time.Now()
	err := s.q.QueryRowContext(ctx, query, h.UserID, h.Symbol, h.Shares, now).Scan(&h.ID)
	if err != nil {
		return fmt.Errorf("failed to create holding: %w", err)
	}
	h.CreatedAt = now
	h.UpdatedAt = now
	return nil
}

// GetHoldingBySymbol retrieves a user's holding for one symbol
func (s *Queries) GetHoldingBySymbol(ctx context.Context, userID int, symbol string) (*models.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 AND symbol = $2`
	return s.scanHolding(s.q.QueryRowContext(ctx, query, userID, symbol))
}

// GetHoldingForUpdate retrieves a user's holding for one symbol with a row
// lock. Only valid inside a transaction.
func (s *Queries) GetHoldingForUpdate(ctx context.Context, userID int, symbol string) (*models.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 AND symbol = $2 FOR UPDATE`
	return s.scanHolding(s.q.QueryRowContext(ctx, query, userID, symbol))
}

func (s *Queries) scanHolding(row *sql.Row) (*models.Holding, error) {
	var h models.Holding
	err := row.Scan(&h.ID, &h.UserID, &h.Symbol, &h.Shares, &h.CreatedAt, &h.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	return &h, nil
}

// GetHoldingsByUser retrieves all of a user's holdings ordered by symbol
func (s *Queries) GetHoldingsByUser(ctx context.Context, userID int) ([]*models.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 ORDER BY symbol`
	rows, err := s.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*models.Holding
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.ID, &h.UserID, &h.Symbol, &h.Shares, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, &h)
	}
	return holdings, rows.Err()
}

// UpdateHoldingShares sets the share count on a holding row
func (s *Queries) UpdateHoldingShares(ctx context.Context, id int, shares int64) error {
	query := `UPDATE holdings SET shares = $2, updated_at = $3 WHERE id = $1`
	result, err := s.q.ExecContext(ctx, query, id, shares, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteHolding removes a single holding row
func (s *Queries) DeleteHolding(ctx context.Context, id int) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM holdings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteHoldingsByUser removes all of a user's holdings
func (s *Queries) DeleteHoldingsByUser(ctx context.Context, userID int) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM holdings WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete holdings: %w", err)
	}
	return nil
}
