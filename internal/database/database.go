package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/MitulMistry/paper-trader/internal/models"
)

// ErrNotFound is returned by point lookups when no row matches.
var ErrNotFound = errors.New("not found")

// Returned by CreateUser when the insert loses a uniqueness race; the
// constraints are the backstop for checks done before the transaction.
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

// querier is satisfied by both *sql.DB and *sql.Tx so every query method
// works inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the persistence contract the ledger operates against. The same
// method set is available on the pooled connection and on a transaction
// passed to an InTransaction callback.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByIDForUpdate(ctx context.Context, id int) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserCash(ctx context.Context, id int, cash decimal.Decimal) error
	DeleteUser(ctx context.Context, id int) error

	CreateHolding(ctx context.Context, h *models.Holding) error
	GetHoldingBySymbol(ctx context.Context, userID int, symbol string) (*models.Holding, error)
	GetHoldingForUpdate(ctx context.Context, userID int, symbol string) (*models.Holding, error)
	GetHoldingsByUser(ctx context.Context, userID int) ([]*models.Holding, error)
	UpdateHoldingShares(ctx context.Context, id int, shares int64) error
	DeleteHolding(ctx context.Context, id int) error
	DeleteHoldingsByUser(ctx context.Context, userID int) error

	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransactionsByUser(ctx context.Context, userID int) ([]*models.Transaction, error)
	GetTransactionsByUserAndSymbol(ctx context.Context, userID int, symbol string) ([]*models.Transaction, error)
	DeleteTransactionsByUser(ctx context.Context, userID int) error
}

// TxRunner is a Store that can also execute a callback inside a single
// database transaction. Every mutating ledger operation runs through
// InTransaction so partial writes never become visible.
type TxRunner interface {
	Store
	InTransaction(ctx context.Context, fn func(Store) error) error
}

// Queries implements Store against any querier.
type Queries struct {
	q querier
}

// DB wraps a PostgreSQL connection pool.
type DB struct {
	Queries
	conn *sql.DB
}

var _ TxRunner = (*DB)(nil)

// New connects to PostgreSQL and verifies the connection.
func New(connStr string) (*DB, error) {
	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{Queries: Queries{q: conn}, conn: conn}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// RunMigrations applies all migrations from the given directory.
func (db *DB) RunMigrations(migrationsPath string) error {
	driver, err := postgres.WithInstance(db.conn, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// InTransaction runs fn inside a single transaction. The Store passed to fn
// issues every statement on that transaction; any error (or panic) rolls the
// whole unit of work back.
func (db *DB) InTransaction(ctx context.Context, fn func(Store) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(&Queries{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
