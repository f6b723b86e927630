package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one entry in the append-only trade ledger.
// Shares is signed: positive for a buy, negative for a sell. Price is the
// per-share quote price at execution time. Rows are never updated or
// deleted except by a full account reset.
type Transaction struct {
	ID         int             `json:"id"`
	UserID     int             `json:"user_id"`
	Symbol     string          `json:"symbol"`
	Shares     int64           `json:"shares"`
	Price      decimal.Decimal `json:"price"`
	ExecutedAt time.Time       `json:"executed_at"`
}

// Cost returns the signed cash impact of the transaction: positive for a
// buy (cash spent), negative for a sell (cash received).
func (t *Transaction) Cost() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Shares))
}
