// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"folio/config"
	"folio/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated SQLite database living in the test's temp dir.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { database.Close(db) })
	return db
}
