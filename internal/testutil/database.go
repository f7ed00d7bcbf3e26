package testutil

import (
	"testing"

	"iqdbtag/internal/database"
	"iqdbtag/internal/database/migrations"
)

// NewTestDatabase creates a new in-memory SQLite database migrated to the
// latest schema. The database is automatically closed when the test completes.
func NewTestDatabase(t *testing.T) *database.SQLiteDatabase {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := migrations.MigrateUp(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to migrate schema: %v", err)
	}

	db := database.NewSQLiteDatabaseFromDB(sqlDB, ":memory:", FixedClock())

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
