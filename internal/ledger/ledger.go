// Package ledger implements the portfolio ledger: the rules governing how
// buy, sell, deposit, and reset operations mutate the user, holding, and
// transaction rows. Every mutating operation runs as a single database
// transaction with row locks on the rows it adjusts, so concurrent requests
// against the same account cannot lose updates and partial writes never
// become visible.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/MitulMistry/paper-trader/internal/common"
	"github.com/MitulMistry/paper-trader/internal/database"
	"github.com/MitulMistry/paper-trader/internal/models"
)

// QuoteProvider resolves live quotes for ticker symbols. Implementations
// return an error for any failure mode (unknown symbol, network error,
// malformed response); the ledger treats all of them as "quote unavailable".
type QuoteProvider interface {
	Lookup(ctx context.Context, symbol string) (*models.Quote, error)
}

// EventPublisher receives ledger events after a successful commit. A publish
// failure is logged, never surfaced to the caller.
type EventPublisher interface {
	PublishTradeExecuted(ctx context.Context, t *models.Transaction) error
	PublishCashDeposited(ctx context.Context, userID int) error
	PublishAccountReset(ctx context.Context, userID int) error
	PublishAccountDeleted(ctx context.Context, userID int) error
}

// Ledger is the engine applying account mutations against the store.
type Ledger struct {
	store  database.TxRunner
	quotes QuoteProvider
	events EventPublisher
	log    *common.Logger
}

// New creates a Ledger. events may be nil when no event stream is configured.
func New(store database.TxRunner, quotes QuoteProvider, events EventPublisher, log *common.Logger) *Ledger {
	if log == nil {
		log = common.NewLogger("info")
	}
	return &Ledger{
		store:  store,
		quotes: quotes,
		events: events,
		log:    log.Component("ledger"),
	}
}

// RegisterInput carries raw registration form values. Cash arrives as a
// string because the rule is "an integer string", not "a number".
type RegisterInput struct {
	Username             string `json:"username"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Cash                 string `json:"cash"`
}

// Register validates the input rule by rule, short-circuiting on the first
// failure, then creates the user with a bcrypt digest and the starting cash.
// Uniqueness is checked in rule order up front and re-checked inside the
// insert transaction.
func (l *Ledger) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if strings.TrimSpace(in.Username) == "" {
		return nil, invalid("username", msgUsernameRequired)
	}
	username := strings.TrimSpace(in.Username)
	if _, err := l.store.GetUserByUsername(ctx, username); err == nil {
		return nil, invalid("username", msgUsernameTaken)
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	if strings.TrimSpace(in.Email) == "" {
		return nil, invalid("email", msgEmailRequired)
	}
	email := strings.TrimSpace(in.Email)
	if !validEmail(email) {
		return nil, invalid("email", msgEmailInvalid)
	}
	if _, err := l.store.GetUserByEmail(ctx, email); err == nil {
		return nil, invalid("email", msgEmailTaken)
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	if in.Password == "" {
		return nil, invalid("password", msgPasswordRequired)
	}
	if in.PasswordConfirmation == "" {
		return nil, invalid("password_confirmation", msgConfirmationRequired)
	}
	if in.Password != in.PasswordConfirmation {
		return nil, invalid("password_confirmation", msgPasswordMismatch)
	}
	if !validPassword(in.Password) {
		return nil, invalid("password", msgPasswordWeak)
	}

	if strings.TrimSpace(in.Cash) == "" {
		return nil, invalid("cash", msgStartingCashRequired)
	}
	cash, ok := parseCashAmount(in.Cash, models.MinStartingCash, models.MaxAccountCash)
	if !ok {
		return nil, invalid("cash", msgStartingCashRange)
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		PasswordDigest: string(digest),
		Cash:           decimal.NewFromInt(cash),
	}

	// The unique constraints catch a registration that races past the
	// lookups above.
	err = l.store.InTransaction(ctx, func(tx database.Store) error {
		switch err := tx.CreateUser(ctx, user); {
		case errors.Is(err, database.ErrDuplicateUsername):
			return invalid("username", msgUsernameTaken)
		case errors.Is(err, database.ErrDuplicateEmail):
			return invalid("email", msgEmailTaken)
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	l.log.Info().Str("username", username).Int("user_id", user.ID).Msg("registered user")
	return user, nil
}

// Authenticate verifies a username/password pair. Unknown usernames and
// wrong passwords fail identically.
func (l *Ledger) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := l.store.GetUserByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordDigest), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Buy purchases shares at the live quote price. Within one transaction it
// appends the ledger entry, debits cash, and creates or grows the holding.
func (l *Ledger) Buy(ctx context.Context, userID int, symbol, sharesRequested string) (*models.Transaction, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !validSymbol(symbol) {
		return nil, ErrUnknownSymbol
	}

	quote, err := l.quotes.Lookup(ctx, symbol)
	if err != nil {
		l.log.Warn().Str("symbol", symbol).Err(err).Msg("quote lookup failed")
		return nil, ErrUnknownSymbol
	}

	shares, ok := parseShares(sharesRequested)
	if !ok {
		return nil, invalid("shares", msgSharesInvalid)
	}

	transaction := &models.Transaction{
		UserID:     userID,
		Symbol:     quote.Symbol,
		Shares:     shares,
		Price:      quote.Price,
		ExecutedAt: time.Now(),
	}

	err = l.store.InTransaction(ctx, func(tx database.Store) error {
		user, err := tx.GetUserByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		cost := quote.Price.Mul(decimal.NewFromInt(shares))
		if cost.GreaterThan(user.Cash) {
			return invalid("shares", msgCannotAfford)
		}

		if err := tx.CreateTransaction(ctx, transaction); err != nil {
			return err
		}
		if err := tx.UpdateUserCash(ctx, userID, user.Cash.Sub(cost)); err != nil {
			return err
		}

		holding, err := tx.GetHoldingForUpdate(ctx, userID, quote.Symbol)
		if errors.Is(err, database.ErrNotFound) {
			return tx.CreateHolding(ctx, &models.Holding{
				UserID: userID,
				Symbol: quote.Symbol,
				Shares: shares,
			})
		}
		if err != nil {
			return err
		}
		return tx.UpdateHoldingShares(ctx, holding.ID, holding.Shares+shares)
	})
	if err != nil {
		return nil, err
	}

	l.publishTrade(ctx, transaction)
	return transaction, nil
}

// Sell disposes of shares at the live quote price. Within one transaction it
// appends the negative ledger entry, credits cash, and shrinks the holding,
// deleting the row when it hits exactly zero.
func (l *Ledger) Sell(ctx context.Context, userID int, symbol, sharesRequested string) (*models.Transaction, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !validSymbol(symbol) {
		return nil, ErrUnknownSymbol
	}

	quote, err := l.quotes.Lookup(ctx, symbol)
	if err != nil {
		l.log.Warn().Str("symbol", symbol).Err(err).Msg("quote lookup failed")
		return nil, ErrUnknownSymbol
	}

	shares, ok := parseShares(sharesRequested)
	if !ok {
		return nil, invalid("shares", msgSharesInvalid)
	}

	transaction := &models.Transaction{
		UserID:     userID,
		Symbol:     quote.Symbol,
		Shares:     -shares,
		Price:      quote.Price,
		ExecutedAt: time.Now(),
	}

	err = l.store.InTransaction(ctx, func(tx database.Store) error {
		user, err := tx.GetUserByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		holding, err := tx.GetHoldingForUpdate(ctx, userID, quote.Symbol)
		if errors.Is(err, database.ErrNotFound) {
			return invalid("symbol", msgNoHolding)
		}
		if err != nil {
			return err
		}
		if shares > holding.Shares {
			return invalid("shares", msgTooManyShares)
		}

		if err := tx.CreateTransaction(ctx, transaction); err != nil {
			return err
		}

		proceeds := quote.Price.Mul(decimal.NewFromInt(shares))
		if err := tx.UpdateUserCash(ctx, userID, user.Cash.Add(proceeds)); err != nil {
			return err
		}

		if remaining := holding.Shares - shares; remaining > 0 {
			return tx.UpdateHoldingShares(ctx, holding.ID, remaining)
		}
		return tx.DeleteHolding(ctx, holding.ID)
	})
	if err != nil {
		return nil, err
	}

	l.publishTrade(ctx, transaction)
	return transaction, nil
}

// AddCash deposits a whole-dollar amount, enforcing the account cash cap.
func (l *Ledger) AddCash(ctx context.Context, userID int, amountRequested string) (*models.User, error) {
	if strings.TrimSpace(amountRequested) == "" {
		return nil, invalid("amount", msgDepositRequired)
	}
	amount, ok := parseCashAmount(amountRequested, models.MinDeposit, models.MaxAccountCash)
	if !ok {
		return nil, invalid("amount", msgDepositRange)
	}

	var user *models.User
	limit := decimal.NewFromInt(models.MaxAccountCash)

	err := l.store.InTransaction(ctx, func(tx database.Store) error {
		u, err := tx.GetUserByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if u.Cash.GreaterThanOrEqual(limit) {
			return invalid("amount", msgCashAtCap)
		}

		newCash := u.Cash.Add(decimal.NewFromInt(amount))
		if newCash.GreaterThan(limit) {
			return invalid("amount", msgDepositOverCap)
		}
		if err := tx.UpdateUserCash(ctx, userID, newCash); err != nil {
			return err
		}
		u.Cash = newCash
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if l.events != nil {
		if err := l.events.PublishCashDeposited(ctx, userID); err != nil {
			l.log.Warn().Int("user_id", userID).Err(err).Msg("failed to publish cash deposited event")
		}
	}
	return user, nil
}

// ResetAccount overwrites the cash balance and purges every holding and
// transaction the user owns. Destructive and irreversible.
func (l *Ledger) ResetAccount(ctx context.Context, userID int, newCashRequested string) (*models.User, error) {
	if strings.TrimSpace(newCashRequested) == "" {
		return nil, invalid("cash", msgResetCashRequired)
	}
	newCash, ok := parseCashAmount(newCashRequested, models.MinStartingCash, models.MaxAccountCash)
	if !ok {
		return nil, invalid("cash", msgResetCashRange)
	}

	var user *models.User
	err := l.store.InTransaction(ctx, func(tx database.Store) error {
		u, err := tx.GetUserByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if err := tx.UpdateUserCash(ctx, userID, decimal.NewFromInt(newCash)); err != nil {
			return err
		}
		if err := tx.DeleteHoldingsByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.DeleteTransactionsByUser(ctx, userID); err != nil {
			return err
		}
		u.Cash = decimal.NewFromInt(newCash)
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Info().Int("user_id", userID).Msg("reset account")
	if l.events != nil {
		if err := l.events.PublishAccountReset(ctx, userID); err != nil {
			l.log.Warn().Int("user_id", userID).Err(err).Msg("failed to publish account reset event")
		}
	}
	return user, nil
}

// DeleteAccount removes the user and, via cascade, every owned holding and
// transaction.
func (l *Ledger) DeleteAccount(ctx context.Context, userID int) error {
	err := l.store.InTransaction(ctx, func(tx database.Store) error {
		return tx.DeleteUser(ctx, userID)
	})
	if err != nil {
		return err
	}

	l.log.Info().Int("user_id", userID).Msg("deleted account")
	if l.events != nil {
		if err := l.events.PublishAccountDeleted(ctx, userID); err != nil {
			l.log.Warn().Int("user_id", userID).Err(err).Msg("failed to publish account deleted event")
		}
	}
	return nil
}

// Transactions returns the user's full trade history, newest first.
func (l *Ledger) Transactions(ctx context.Context, userID int) ([]*models.Transaction, error) {
	return l.store.GetTransactionsByUser(ctx, userID)
}

func (l *Ledger) publishTrade(ctx context.Context, t *models.Transaction) {
	if l.events == nil {
		return
	}
	if err := l.events.PublishTradeExecuted(ctx, t); err != nil {
		l.log.Warn().Str("symbol", t.Symbol).Int("user_id", t.UserID).Err(err).
			Msg("failed to publish trade event")
	}
}
