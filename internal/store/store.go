// To handle all database interactions. This is our
// data access layer, keeping SQL queries separate from business logic.
//
// Reads never fail: a miss or an error yields nil or an empty slice and
// the error is logged. Writes return their error so callers can fall
// back to memory-only operation for the session.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/vrsandeep/noor-go/internal/models"
)

// Store provides all functions to interact with the database.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance. A nil db yields a degraded store
// whose reads are empty and whose writes report ErrStorageUnavailable.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Available reports whether the store is backed by a database.
func (s *Store) Available() bool {
	return s != nil && s.db != nil
}

func (s *Store) writable(op string) error {
	if !s.Available() {
		return fmt.Errorf("%s: %w", op, models.ErrStorageUnavailable)
	}
	return nil
}

// tables maps each record kind to its content table.
var tables = map[models.Kind]string{
	models.KindVerse:              "verses",
	models.KindHadith:             "hadiths",
	models.KindSurahMetadata:      "surah_metadata",
	models.KindCollectionMetadata: "collection_metadata",
}

// Count returns the number of records of the given kind, or 0 on error.
func (s *Store) Count(ctx context.Context, kind models.Kind) int {
	table, ok := tables[kind]
	if !ok || !s.Available() {
		return 0
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		log.Printf("store: count %s: %v", kind, err)
		return 0
	}
	return n
}

// ClearAll wipes every content table and the status table in a single
// transaction. Either everything is cleared or an error is returned.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.writable("clear all"); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clear all: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"verses", "hadiths", "surah_metadata", "collection_metadata", "status"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clear all: commit: %w", err)
	}
	return nil
}
