// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/infaq/internal/database"
)

// NewSQLite returns a migrated SQLite database in a temporary directory. It is
// closed when the test ends.
func NewSQLite(t testing.TB) *database.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		filepath.Join(t.TempDir(), "infaq.db"))

	require.NoError(t, database.Migrate(database.DriverSQLite, dsn))

	db, err := database.New(database.DriverSQLite, dsn)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return db
}
