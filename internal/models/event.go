package models

import "time"

// Ledger event type constants
const (
	EventTradeExecuted  = "TRADE_EXECUTED"
	EventCashDeposited  = "CASH_DEPOSITED"
	EventAccountReset   = "ACCOUNT_RESET"
	EventAccountDeleted = "ACCOUNT_DELETED"
)

// LedgerEvent represents a Kafka event emitted after a committed ledger mutation
type LedgerEvent struct {
	EventType   string       `json:"event_type"`
	UserID      int          `json:"user_id"`
	Symbol      string       `json:"symbol,omitempty"`
	Transaction *Transaction `json:"transaction,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}
