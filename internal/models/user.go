package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cash limits enforced by the ledger, in whole dollars.
const (
	MinStartingCash = 100
	MaxAccountCash  = 10_000_000
	MinDeposit      = 1
)

// User represents a registered account
type User struct {
	ID             int             `json:"id"`
	Username       string          `json:"username"`
	Email          string          `json:"email"`
	PasswordDigest string          `json:"-"`
	Cash           decimal.Decimal `json:"cash"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
