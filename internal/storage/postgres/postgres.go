// Package postgres provides a PostgreSQL implementation of storage.Store on top of gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mmynk/runlog/internal/models"
	"github.com/mmynk/runlog/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store implements storage.Store using gorm over pgx.
type Store struct {
	db *gorm.DB
}

// New connects to dsn and migrates the schema.
func New(dsn string) (*Store, error) {
	s, err := Open(postgres.Open(dsn))
	if err != nil {
		return nil, err
	}

	if err := s.db.AutoMigrate(&models.User{}, &models.Run{}); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

// Open wraps an existing dialector without migrating.
func Open(dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn), logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{db: db}, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translateError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storage.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", storage.ErrConflict, err)
	}
	return err
}
