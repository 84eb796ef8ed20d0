// Package dbtest opens throwaway in-memory stores for tests.
package dbtest

import (
	"fmt"
	"testing"

	"coinquest/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Open returns a migrated, empty in-memory SQLite store private to tb.
func Open(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.OpenSQLite(dsn)
	if err != nil {
		tb.Fatalf("open test store: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// OpenSeeded is Open plus the default quest, reward and game catalog.
func OpenSeeded(tb testing.TB) *gorm.DB {
	tb.Helper()

	db := Open(tb)
	if err := database.Seed(db); err != nil {
		tb.Fatalf("seed test store: %v", err)
	}
	return db
}
