package testutil

import (
	"database/sql"
	"testing"

	"github.com/vrsandeep/noor-go/internal/db"
)

// SetupTestDB creates an in-memory SQLite database and applies the content migrations.
// It returns the database connection, ready for use in tests.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return setupMemoryDB(t, db.ContentSchema)
}

// SetupTestCacheDB is SetupTestDB for the response cache schema.
func SetupTestCacheDB(t *testing.T) *sql.DB {
	t.Helper()
	return setupMemoryDB(t, db.CacheSchema)
}

func setupMemoryDB(t *testing.T, schema db.Schema) *sql.DB {
	t.Helper()
	database, err := db.OpenMemory(schema)
	if err != nil {
		t.Fatalf("Failed to set up in-memory %s database: %v", schema.Name, err)
	}
	// Attach a cleanup function to automatically close the DB when the test completes.
	t.Cleanup(func() {
		database.Close()
	})
	return database
}
