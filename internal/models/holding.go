package models

import "time"

// Holding represents a user's current position in one symbol.
// A row exists only while shares > 0; selling to zero deletes it.
type Holding struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Symbol    string    `json:"symbol"`
	Shares    int64     `json:"shares"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
