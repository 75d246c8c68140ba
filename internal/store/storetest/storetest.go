// Package storetest opens throwaway in-memory stores for tests.
package storetest

import (
	"database/sql"
	"testing"

	"github.com/dgraph-io/badger/v4"
	_ "github.com/glebarez/go-sqlite"
	"github.com/gmsas95/nutritrack/internal/store"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated store backed by in-memory SQLite and BadgerDB. It is
// closed when the test ends.
func New(t testing.TB) *store.Store {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	db, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	kv, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)

	st, err := store.Open(db, kv)
	require.NoError(t, err)

	t.Cleanup(func() { st.Close() })
	return st
}
