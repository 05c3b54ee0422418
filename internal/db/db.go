package db

import (
	"database/sql"
	"embed"
	"fmt"
	"log"
	"net/http"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/httpfs"
	"github.com/vrsandeep/noor-go/internal/assets"

	// Import the sqlite3 driver. The blank import is used because we only
	// need the driver to be registered with database/sql.
	_ "github.com/mattn/go-sqlite3"
)

// connParams are appended to every file path so each pooled connection
// gets the same settings; a PRAGMA would only reach one of them.
const connParams = "?_foreign_keys=on&_journal=WAL&_busy_timeout=5000"

// Schema is one embedded set of migrations.
type Schema struct {
	Name string
	FS   embed.FS
	Dir  string
}

var (
	// ContentSchema holds the verse, hadith, metadata and status tables.
	ContentSchema = Schema{Name: "content", FS: assets.MigrationsFS, Dir: "migrations"}
	// CacheSchema holds the named response caches of the interception layer.
	CacheSchema = Schema{Name: "response cache", FS: assets.CacheMigrationsFS, Dir: "cache_migrations"}
)

// Open opens the SQLite file at path and brings it up to date with schema.
func Open(path string, schema Schema) (*sql.DB, error) {
	database, err := sql.Open("sqlite3", path+connParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", schema.Name, err)
	}
	if err := prepare(database, schema); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// OpenMemory opens a private in-memory database with schema applied.
func OpenMemory(schema Schema) (*sql.DB, error) {
	database, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory %s database: %w", schema.Name, err)
	}
	// Every connection to ":memory:" is a separate database, so pin the pool to one.
	database.SetMaxOpenConns(1)
	if err := prepare(database, schema); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func prepare(database *sql.DB, schema Schema) error {
	// Ping the database to verify the connection is alive.
	if err := database.Ping(); err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", schema.Name, err)
	}
	return Migrate(database, schema)
}

// Migrate applies every "up" migration of schema.
func Migrate(database *sql.DB, schema Schema) error {
	source, err := httpfs.New(http.FS(schema.FS), schema.Dir)
	if err != nil {
		return fmt.Errorf("could not create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(database, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("could not create sqlite3 migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("httpfs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	log.Printf("Applying %s migrations...", schema.Name)
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("an error occurred while applying %s migrations: %w", schema.Name, err)
	}
	return nil
}
