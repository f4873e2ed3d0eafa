package alerts

import (
	"fmt"
	"sync"
	"time"

	"trade-journal-go/internal/models"
	"trade-journal-go/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultCacheSize bounds the in-memory mirror of recent alerts.
const DefaultCacheSize = 100

// Store is the mutable alert collection. Durable history is unbounded;
// a bounded newest-first ring mirrors the most recent rows for
// low-latency reads.
type Store struct {
	store    *storage.Store
	logger   *zap.Logger
	notifier Notifier

	mu    sync.Mutex
	cache *ring
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier routes critical alerts to the given notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithCacheSize overrides the recent-alerts cache capacity.
func WithCacheSize(size int) Option {
	return func(s *Store) { s.cache = newRing(size) }
}

// New creates an alert store and warms its cache from the newest
// durable rows.
func New(store *storage.Store, logger *zap.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		store:    store,
		logger:   logger,
		notifier: NoopNotifier{},
		cache:    newRing(DefaultCacheSize),
	}
	for _, opt := range opts {
		opt(s)
	}

	var recent []models.Alert
	err := store.Read(func(tx *gorm.DB) error {
		return tx.Model(&models.Alert{}).
			Order("timestamp desc, id desc").
			Limit(s.cache.size).
			Find(&recent).Error
	})
	if err != nil {
		return nil, err
	}
	// Push oldest first so the ring ends up newest-first.
	for i := len(recent) - 1; i >= 0; i-- {
		s.cache.push(recent[i])
	}

	return s, nil
}

// Add validates and durably stores a new alert, then mirrors it into
// the cache. An empty category defaults to "general". Critical alerts
// are forwarded to the notifier in the background; Add never waits on
// network I/O, and delivery failures are logged without affecting
// persistence.
func (s *Store) Add(level, message, botID, category string) (uint, error) {
	if level != models.LevelInfo && level != models.LevelWarning && level != models.LevelCritical {
		return 0, fmt.Errorf("%w: unknown alert level %q", storage.ErrInvalidRecord, level)
	}
	if message == "" {
		return 0, fmt.Errorf("%w: alert message must not be empty", storage.ErrInvalidRecord)
	}
	if category == "" {
		category = models.DefaultCategory
	}

	alert := models.Alert{
		Timestamp:    time.Now(),
		Level:        level,
		Message:      message,
		BotID:        botID,
		Acknowledged: false,
		Category:     category,
	}

	err := s.store.Write(func(tx *gorm.DB) error {
		return tx.Create(&alert).Error
	})
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.cache.push(alert)
	s.mu.Unlock()

	s.logger.Info("Alert added",
		zap.Uint("alert_id", alert.ID),
		zap.String("level", level),
		zap.String("message", message),
	)

	if level == models.LevelCritical {
		go func() {
			if err := s.notifier.Notify(alert); err != nil {
				s.logger.Warn("Failed to deliver critical alert notification",
					zap.Uint("alert_id", alert.ID), zap.Error(err))
			}
		}()
	}

	return alert.ID, nil
}

// Acknowledge marks an alert as reviewed. It is idempotent: a second
// call on the same id succeeds without changing state. An unknown id
// fails with ErrNotFound.
func (s *Store) Acknowledge(id uint) error {
	err := s.store.Write(func(tx *gorm.DB) error {
		var alert models.Alert
		if err := tx.First(&alert, id).Error; err != nil {
			return err
		}
		if alert.Acknowledged {
			return nil
		}
		return tx.Model(&alert).Update("acknowledged", true).Error
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache.acknowledge(id)
	s.mu.Unlock()
	return nil
}

// Recent returns up to limit alerts, newest first. Served from the
// cache whenever the cache is known to contain every row the caller
// asked for; otherwise it falls back to a durable query.
func (s *Store) Recent(limit int) ([]models.Alert, error) {
	s.mu.Lock()
	// The cache answers when it holds enough entries, or when it holds
	// the whole table (it is warmed at open, so fewer entries than
	// capacity means the table itself is that small).
	if limit > 0 && (limit <= s.cache.len() || s.cache.len() < s.cache.size) {
		out := s.cache.newestFirst(limit)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	var out []models.Alert
	err := s.store.Read(func(tx *gorm.DB) error {
		q := tx.Model(&models.Alert{}).Order("timestamp desc, id desc")
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q.Find(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UnacknowledgedCount reports how many alerts in durable storage are
// still unacknowledged. The durable table is authoritative; the cache
// only mirrors the newest rows.
func (s *Store) UnacknowledgedCount() (int64, error) {
	var count int64
	err := s.store.Read(func(tx *gorm.DB) error {
		return tx.Model(&models.Alert{}).
			Where("acknowledged = ?", false).
			Count(&count).Error
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
