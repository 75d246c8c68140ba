package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	_ "github.com/glebarez/go-sqlite" // Pure Go SQLite driver
	"github.com/gmsas95/nutritrack/internal/config"
	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store provides unified access to SQLite and BadgerDB. It implements every
// repository the use cases depend on.
type Store struct {
	db     *gorm.DB
	badger *badger.DB
}

// New opens the on-disk databases described by cfg
func New(cfg *config.Config) (*Store, error) {
	sqliteDB, err := sql.Open("sqlite", cfg.Storage.SQLitePath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqliteDB.SetMaxOpenConns(10)
	sqliteDB.SetMaxIdleConns(5)
	sqliteDB.SetConnMaxLifetime(time.Hour)

	db, err := gorm.Open(sqlite.Dialector{Conn: sqliteDB}, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	badgerOpts := badger.DefaultOptions(cfg.Storage.BadgerPath).
		WithLogger(nil).
		WithNumVersionsToKeep(1).
		WithCompactL0OnClose(true).
		WithValueLogFileSize(16 << 20).
		WithMemTableSize(16 << 20)

	badgerDB, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	st, err := Open(db, badgerDB)
	if err != nil {
		badgerDB.Close()
		return nil, err
	}
	return st, nil
}

// Open wraps already opened databases and migrates the schema
func Open(db *gorm.DB, kv *badger.DB) (*Store, error) {
	if err := db.AutoMigrate(
		&User{},
		&Meal{},
		&Favorite{},
		&MealIntake{},
		&DailyMenuItem{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return &Store{db: db, badger: kv}, nil
}

// Close closes all database connections
func (s *Store) Close() error {
	var errs []error
	if sqlDB, err := s.db.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}
	if s.badger != nil {
		errs = append(errs, s.badger.Close())
	}
	return errors.Join(errs...)
}

// DB returns the GORM database instance
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping checks that both databases are usable
func (s *Store) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	if s.badger == nil || s.badger.IsClosed() {
		return fmt.Errorf("badger: closed")
	}
	return nil
}

// notFound maps gorm.ErrRecordNotFound onto the given domain error and wraps
// everything else as a storage failure.
func notFound(err error, sentinel *apperrors.AppError) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.WrapAs(sentinel, err)
	}
	return apperrors.Wrap(err, apperrors.ErrInternal.Code, "storage failure")
}

// Stats holds row counts for status output
type Stats struct {
	Users     int64 `json:"users"`
	Meals     int64 `json:"meals"`
	Intakes   int64 `json:"intakes"`
	MenuItems int64 `json:"menu_items"`
}

// GetStats counts rows in the main tables
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var st Stats
	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&User{}, &st.Users},
		{&Meal{}, &st.Meals},
		{&MealIntake{}, &st.Intakes},
		{&DailyMenuItem{}, &st.MenuItems},
	}
	for _, c := range counts {
		if err := s.db.WithContext(ctx).Model(c.model).Count(c.dst).Error; err != nil {
			return Stats{}, fmt.Errorf("failed to count rows: %w", err)
		}
	}
	return st, nil
}
