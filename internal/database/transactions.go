package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MitulMistry/paper-trader/internal/models"
)

const transactionColumns = `id, user_id, symbol, shares, price, executed_at`

// CreateTransaction appends an entry to the trade ledger
func (s *Queries) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, symbol, shares, price, executed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	executedAt := t.ExecutedAt
	if executedAt.IsZero() {
		executedAt = time.Now()
	}
	err := s.q.QueryRowContext(ctx, query,
		t.UserID, t.Symbol, t.Shares, t.Price, executedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	t.ExecutedAt = executedAt
	return nil
}

// GetTransactionsByUser retrieves a user's full trade history, newest first
func (s *Queries) GetTransactionsByUser(ctx context.Context, userID int) ([]*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY executed_at DESC, id DESC
	`
	return s.scanTransactions(s.q.QueryContext(ctx, query, userID))
}

// GetTransactionsByUserAndSymbol retrieves a user's trades in one symbol,
// oldest first, for cost basis reconstruction
func (s *Queries) GetTransactionsByUserAndSymbol(ctx context.Context, userID int, symbol string) ([]*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND symbol = $2
		ORDER BY executed_at ASC, id ASC
	`
	return s.scanTransactions(s.q.QueryContext(ctx, query, userID, symbol))
}

func (s *Queries) scanTransactions(rows *sql.Rows, err error) ([]*models.Transaction, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Symbol, &t.Shares, &t.Price, &t.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &t)
	}
	return transactions, rows.Err()
}

// DeleteTransactionsByUser purges a user's trade ledger
func (s *Queries) DeleteTransactionsByUser(ctx context.Context, userID int) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	return nil
}
