package models

import "time"

// Trade side values.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Trade status values.
const (
	StatusOpen      = "open"
	StatusClosed    = "closed"
	StatusCancelled = "cancelled"
)

// Trade represents an executed trade record in the ledger.
// ID, BotID, Exchange, Symbol, Side, Amount, Price and Timestamp are
// immutable once the row is created; only Status, Pnl and Fees may be
// amended afterwards.
type Trade struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BotID     string    `gorm:"index" json:"bot_id"`
	Exchange  string    `json:"exchange"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"` // "buy" or "sell"
	Amount    float64   `gorm:"not null" json:"amount"`
	Price     float64   `gorm:"not null" json:"price"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
	Pnl       float64   `json:"pnl"`
	Status    string    `gorm:"default:open" json:"status"`
	Strategy  string    `json:"strategy,omitempty"`
	Fees      float64   `json:"fees"`
}
