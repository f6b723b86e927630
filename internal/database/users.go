package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/MitulMistry/paper-trader/internal/models"
)

// CreateUser inserts a new user row
func (s *Queries) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (username, email, password_digest, cash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`
	now := time.Now()
	err := s.q.QueryRowContext(ctx, query,
		u.Username, u.Email, u.PasswordDigest, u.Cash, now,
	).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			if pqErr.Constraint == "users_email_key" {
				return ErrDuplicateEmail
			}
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

const userColumns = `id, username, email, password_digest, cash, created_at, updated_at`

// GetUserByID retrieves a user by primary key
func (s *Queries) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanUser(s.q.QueryRowContext(ctx, query, id))
}

// GetUserByIDForUpdate retrieves a user by primary key with a row lock,
// serializing concurrent cash mutations. Only valid inside a transaction.
func (s *Queries) GetUserByIDForUpdate(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return s.scanUser(s.q.QueryRowContext(ctx, query, id))
}

// GetUserByUsername retrieves a user by username
func (s *Queries) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return s.scanUser(s.q.QueryRowContext(ctx, query, username))
}

// GetUserByEmail retrieves a user by email
func (s *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanUser(s.q.QueryRowContext(ctx, query, email))
}

func (s *Queries) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordDigest, &u.Cash, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// UpdateUserCash sets a user's cash balance
func (s *Queries) UpdateUserCash(ctx context.Context, id int, cash decimal.Decimal) error {
	query := `UPDATE users SET cash = $2, updated_at = $3 WHERE id = $1`
	result, err := s.q.ExecContext(ctx, query, id, cash, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update user cash: %w", err)
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

// DeleteUser removes a user row; holdings and transactions cascade
func (s *Queries) DeleteUser(ctx context.Context, id int) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
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
