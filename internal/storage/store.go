package storage

import (
	"errors"
	"fmt"

	"trade-journal-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Store is the durable record store backing the trade ledger and the
// alert store. It owns the database handle, runs the schema migration
// once at open, and translates driver errors into the package taxonomy.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to the sqlite database at dsn and migrates the schema.
// The connection pool is capped at a single connection so identifier
// assignment and the row write always commit as one serialized unit.
func Open(dsn string, logger *zap.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %v", ErrStorageUnavailable, dsn, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	sqlDB.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		return nil, err
	}

	logger.Info("Record store opened", zap.String("dsn", dsn))
	return s, nil
}

// migrate creates the trades and alerts tables if they do not exist.
// It is idempotent and runs exactly once, at open.
func (s *Store) migrate() error {
	if err := s.db.AutoMigrate(&models.Trade{}, &models.Alert{}); err != nil {
		return fmt.Errorf("%w: migrate schema: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return sqlDB.Close()
}

// Write runs fn inside a transaction. Either every statement in fn is
// durably committed before Write returns, or none is.
func (s *Store) Write(fn func(tx *gorm.DB) error) error {
	err := s.db.Transaction(fn)
	return s.translate(err)
}

// Read runs fn against a read-only snapshot of the store. fn must not
// mutate rows.
func (s *Store) Read(fn func(tx *gorm.DB) error) error {
	return s.translate(fn(s.db.Session(&gorm.Session{})))
}

// translate maps gorm errors onto the package taxonomy. Errors already
// in the taxonomy pass through unchanged.
func (s *Store) translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidRecord), errors.Is(err, ErrNotFound), errors.Is(err, ErrStorageUnavailable):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
}
