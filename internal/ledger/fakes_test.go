package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/MitulMistry/paper-trader/internal/database"
	"github.com/MitulMistry/paper-trader/internal/models"
)

// fakeStore is an in-memory database.TxRunner. InTransaction snapshots the
// state before running the callback and restores it on error, mirroring a
// rolled-back transaction.
type fakeStore struct {
	mu            sync.Mutex
	users         map[int]*models.User
	holdings      map[int]*models.Holding
	transactions  []*models.Transaction
	nextUserID    int
	nextHoldingID int
	nextTxID      int

	// failCreateTransaction forces CreateTransaction to error, for
	// exercising rollback of multi-step mutations.
	failCreateTransaction bool
	failCreateHolding     bool

	// createUserErr is returned by CreateUser when set, standing in for a
	// unique-constraint violation from a racing registration.
	createUserErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[int]*models.User),
		holdings:      make(map[int]*models.Holding),
		nextUserID:    1,
		nextHoldingID: 1,
		nextTxID:      1,
	}
}

var _ database.TxRunner = (*fakeStore)(nil)

func (f *fakeStore) snapshot() (map[int]*models.User, map[int]*models.Holding, []*models.Transaction, int, int, int) {
	users := make(map[int]*models.User, len(f.users))
	for id, u := range f.users {
		cp := *u
		users[id] = &cp
	}
	holdings := make(map[int]*models.Holding, len(f.holdings))
	for id, h := range f.holdings {
		cp := *h
		holdings[id] = &cp
	}
	transactions := make([]*models.Transaction, len(f.transactions))
	for i, t := range f.transactions {
		cp := *t
		transactions[i] = &cp
	}
	return users, holdings, transactions, f.nextUserID, f.nextHoldingID, f.nextTxID
}

func (f *fakeStore) InTransaction(ctx context.Context, fn func(database.Store) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	users, holdings, transactions, nu, nh, nt := f.snapshot()
	if err := fn(f); err != nil {
		f.users, f.holdings, f.transactions = users, holdings, transactions
		f.nextUserID, f.nextHoldingID, f.nextTxID = nu, nh, nt
		return err
	}
	return nil
}

func (f *fakeStore) CreateUser(ctx context.Context, u *models.User) error {
	if f.createUserErr != nil {
		return f.createUserErr
	}
	u.ID = f.nextUserID
	f.nextUserID++
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByIDForUpdate(ctx context.Context, id int) (*models.User, error) {
	return f.GetUserByID(ctx, id)
}

func (f *fakeStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) UpdateUserCash(ctx context.Context, id int, cash decimal.Decimal) error {
	u, ok := f.users[id]
	if !ok {
		return database.ErrNotFound
	}
	u.Cash = cash
	return nil
}

func (f *fakeStore) DeleteUser(ctx context.Context, id int) error {
	if _, ok := f.users[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.users, id)
	for hid, h := range f.holdings {
		if h.UserID == id {
			delete(f.holdings, hid)
		}
	}
	kept := f.transactions[:0]
	for _, t := range f.transactions {
		if t.UserID != id {
			kept = append(kept, t)
		}
	}
	f.transactions = kept
	return nil
}

func (f *fakeStore) CreateHolding(ctx context.Context, h *models.Holding) error {
	if f.failCreateHolding {
		return fmt.Errorf("injected holding failure")
	}
	h.ID = f.nextHoldingID
	f.nextHoldingID++
	cp := *h
	f.holdings[h.ID] = &cp
	return nil
}

func (f *fakeStore) GetHoldingBySymbol(ctx context.Context, userID int, symbol string) (*models.Holding, error) {
	for _, h := range f.holdings {
		if h.UserID == userID && h.Symbol == symbol {
			cp := *h
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) GetHoldingForUpdate(ctx context.Context, userID int, symbol string) (*models.Holding, error) {
	return f.GetHoldingBySymbol(ctx, userID, symbol)
}

func (f *fakeStore) GetHoldingsByUser(ctx context.Context, userID int) ([]*models.Holding, error) {
	var holdings []*models.Holding
	for _, h := range f.holdings {
		if h.UserID == userID {
			cp := *h
			holdings = append(holdings, &cp)
		}
	}
	return holdings, nil
}

func (f *fakeStore) UpdateHoldingShares(ctx context.Context, id int, shares int64) error {
	h, ok := f.holdings[id]
	if !ok {
		return database.ErrNotFound
	}
	h.Shares = shares
	return nil
}

func (f *fakeStore) DeleteHolding(ctx context.Context, id int) error {
	if _, ok := f.holdings[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.holdings, id)
	return nil
}

func (f *fakeStore) DeleteHoldingsByUser(ctx context.Context, userID int) error {
	for id, h := range f.holdings {
		if h.UserID == userID {
			delete(f.holdings, id)
		}
	}
	return nil
}

func (f *fakeStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if f.failCreateTransaction {
		return fmt.Errorf("injected transaction failure")
	}
	t.ID = f.nextTxID
	f.nextTxID++
	cp := *t
	f.transactions = append(f.transactions, &cp)
	return nil
}

func (f *fakeStore) GetTransactionsByUser(ctx context.Context, userID int) ([]*models.Transaction, error) {
	var transactions []*models.Transaction
	for _, t := range f.transactions {
		if t.UserID == userID {
			cp := *t
			transactions = append(transactions, &cp)
		}
	}
	return transactions, nil
}

func (f *fakeStore) GetTransactionsByUserAndSymbol(ctx context.Context, userID int, symbol string) ([]*models.Transaction, error) {
	var transactions []*models.Transaction
	for _, t := range f.transactions {
		if t.UserID == userID && t.Symbol == symbol {
			cp := *t
			transactions = append(transactions, &cp)
		}
	}
	return transactions, nil
}

func (f *fakeStore) DeleteTransactionsByUser(ctx context.Context, userID int) error {
	kept := f.transactions[:0]
	for _, t := range f.transactions {
		if t.UserID != userID {
			kept = append(kept, t)
		}
	}
	f.transactions = kept
	return nil
}

// fakeQuotes serves canned quotes and fails for any other symbol.
type fakeQuotes struct {
	prices map[string]float64
	down   map[string]bool
}

func (f *fakeQuotes) Lookup(ctx context.Context, symbol string) (*models.Quote, error) {
	if f.down[symbol] {
		return nil, fmt.Errorf("provider down")
	}
	price, ok := f.prices[symbol]
	if !ok {
		return nil, fmt.Errorf("unknown symbol %q", symbol)
	}
	return &models.Quote{
		Symbol: symbol,
		Name:   symbol + " Inc",
		Price:  decimal.NewFromFloat(price),
	}, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	events []string
}

func (f *fakePublisher) PublishTradeExecuted(ctx context.Context, t *models.Transaction) error {
	f.events = append(f.events, models.EventTradeExecuted)
	return nil
}

func (f *fakePublisher) PublishCashDeposited(ctx context.Context, userID int) error {
	f.events = append(f.events, models.EventCashDeposited)
	return nil
}

func (f *fakePublisher) PublishAccountReset(ctx context.Context, userID int) error {
	f.events = append(f.events, models.EventAccountReset)
	return nil
}

func (f *fakePublisher) PublishAccountDeleted(ctx context.Context, userID int) error {
	f.events = append(f.events, models.EventAccountDeleted)
	return nil
}
