package models

import "time"

// Alert level values.
const (
	LevelInfo     = "info"
	LevelWarning  = "warning"
	LevelCritical = "critical"
)

// DefaultCategory is assigned when an alert is added without one.
const DefaultCategory = "general"

// Alert represents an operational alert raised by a bot or by the
// monitoring layer. Acknowledged only ever transitions false to true.
type Alert struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Timestamp    time.Time `gorm:"index" json:"timestamp"`
	Level        string    `json:"level"` // "info", "warning" or "critical"
	Message      string    `gorm:"not null" json:"message"`
	BotID        string    `json:"bot_id,omitempty"`
	Acknowledged bool      `gorm:"default:false" json:"acknowledged"`
	Category     string    `gorm:"default:general" json:"category"`
}
