package ledger

import (
	"fmt"
	"time"

	"trade-journal-go/internal/models"
	"trade-journal-go/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ledger is the append-only collection of executed trades. Records are
// never deleted; after creation only status, pnl and fees may change,
// and only through Amend.
type Ledger struct {
	store  *storage.Store
	logger *zap.Logger
}

// New creates a trade ledger on top of the record store.
func New(store *storage.Store, logger *zap.Logger) *Ledger {
	return &Ledger{store: store, logger: logger}
}

// Patch holds the amendable fields of a trade. Nil fields are left
// untouched.
type Patch struct {
	Status *string  `json:"status,omitempty"`
	Pnl    *float64 `json:"pnl,omitempty"`
	Fees   *float64 `json:"fees,omitempty"`
}

// Filter narrows a Range query. Zero values mean "no constraint".
type Filter struct {
	Since      time.Time
	Until      time.Time
	BotID      string
	Limit      int
	Descending bool // newest-first, for display; analytics wants ascending
}

// Append validates and durably stores a new trade, returning its
// assigned identifier. The caller must leave ID unset. A zero timestamp
// defaults to the insertion time and an empty status defaults to open.
func (l *Ledger) Append(trade models.Trade) (uint, error) {
	if err := validate(&trade); err != nil {
		return 0, err
	}
	if trade.Timestamp.IsZero() {
		trade.Timestamp = time.Now()
	}
	if trade.Status == "" {
		trade.Status = models.StatusOpen
	}
	trade.ID = 0

	err := l.store.Write(func(tx *gorm.DB) error {
		return tx.Create(&trade).Error
	})
	if err != nil {
		return 0, err
	}

	l.logger.Info("Trade appended",
		zap.Uint("trade_id", trade.ID),
		zap.String("bot_id", trade.BotID),
		zap.String("symbol", trade.Symbol),
		zap.String("side", trade.Side),
		zap.Float64("pnl", trade.Pnl),
	)
	return trade.ID, nil
}

// Amend updates the mutable fields of an existing trade. Immutable
// fields cannot be changed through any operation.
func (l *Ledger) Amend(id uint, patch Patch) error {
	fields := map[string]interface{}{}
	if patch.Status != nil {
		if !validStatus(*patch.Status) {
			return fmt.Errorf("%w: unknown status %q", storage.ErrInvalidRecord, *patch.Status)
		}
		fields["status"] = *patch.Status
	}
	if patch.Pnl != nil {
		fields["pnl"] = *patch.Pnl
	}
	if patch.Fees != nil {
		fields["fees"] = *patch.Fees
	}
	if len(fields) == 0 {
		return nil
	}

	return l.store.Write(func(tx *gorm.DB) error {
		res := tx.Model(&models.Trade{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: trade %d", storage.ErrNotFound, id)
		}
		return nil
	})
}

// Range returns trades matching the filter, ordered by timestamp
// (insertion order breaks ties). With no time bounds it returns the
// whole ledger, bounded by Limit if given.
func (l *Ledger) Range(f Filter) ([]models.Trade, error) {
	var trades []models.Trade
	err := l.store.Read(func(tx *gorm.DB) error {
		q := tx.Model(&models.Trade{})
		if !f.Since.IsZero() {
			q = q.Where("timestamp >= ?", f.Since)
		}
		if !f.Until.IsZero() {
			q = q.Where("timestamp <= ?", f.Until)
		}
		if f.BotID != "" {
			q = q.Where("bot_id = ?", f.BotID)
		}
		if f.Descending {
			q = q.Order("timestamp desc, id desc")
		} else {
			q = q.Order("timestamp asc, id asc")
		}
		if f.Limit > 0 {
			q = q.Limit(f.Limit)
		}
		return q.Find(&trades).Error
	})
	if err != nil {
		return nil, err
	}
	return trades, nil
}

// validate rejects a trade before anything touches durable storage.
func validate(t *models.Trade) error {
	if t.Side != models.SideBuy && t.Side != models.SideSell {
		return fmt.Errorf("%w: side must be %q or %q, got %q",
			storage.ErrInvalidRecord, models.SideBuy, models.SideSell, t.Side)
	}
	if t.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %v", storage.ErrInvalidRecord, t.Amount)
	}
	if t.Price <= 0 {
		return fmt.Errorf("%w: price must be positive, got %v", storage.ErrInvalidRecord, t.Price)
	}
	// An empty status defaults to open in Append.
	if t.Status != "" && !validStatus(t.Status) {
		return fmt.Errorf("%w: unknown status %q", storage.ErrInvalidRecord, t.Status)
	}
	return nil
}

func validStatus(status string) bool {
	return status == models.StatusOpen || status == models.StatusClosed || status == models.StatusCancelled
}
