// Package storetest provides an in-memory database for tests.
package storetest

import (
	"fmt"         // DSN formatting
	"sync/atomic" // Unique database names
	"testing"     // Test helpers

	"trade_journal/internal/db" // Migrations

	"github.com/glebarez/sqlite"          // Pure Go SQLite driver for GORM
	"github.com/stretchr/testify/require" // Assertions
	"gorm.io/gorm"                        // GORM ORM library
)

var counter atomic.Int64

// NewDB returns a migrated, isolated in-memory database closed on cleanup
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:storetest%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", counter.Add(1))
	gdb, err := db.Open(sqlite.Open(name), true)
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // One connection keeps the memory database alive and serialized
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))
	return gdb
}
