package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/vrsandeep/noor-go/internal/models"
)

const hadithColumns = "collection_id, book_number, chapter_number, hadith_number, arabic_text, english_text, narrator, grade, reference"

const upsertHadith = `
	INSERT INTO hadiths (` + hadithColumns + `, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(collection_id, book_number, hadith_number) DO UPDATE SET
		chapter_number = excluded.chapter_number,
		arabic_text = excluded.arabic_text,
		english_text = excluded.english_text,
		narrator = excluded.narrator,
		grade = excluded.grade,
		reference = excluded.reference,
		updated_at = excluded.updated_at`

func hadithArgs(h models.HadithRecord) []any {
	return []any{h.CollectionID, h.BookNumber, h.ChapterNumber, h.HadithNumber,
		h.ArabicText, h.EnglishText, h.Narrator, h.Grade, h.Reference}
}

// PutHadith upserts one hadith keyed by (collection, book, number).
// Callers that care about collection metadata follow up with RebuildCollectionMetadata.
func (s *Store) PutHadith(ctx context.Context, h models.HadithRecord) error {
	if err := s.writable("put hadith"); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, upsertHadith, hadithArgs(h)...); err != nil {
		return fmt.Errorf("put hadith %s: %w", h.ID(), err)
	}
	return nil
}

// PutHadiths upserts a batch of hadiths in one transaction.
func (s *Store) PutHadiths(ctx context.Context, hadiths []models.HadithRecord) error {
	if err := s.writable("put hadiths"); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put hadiths: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertHadith)
	if err != nil {
		return fmt.Errorf("put hadiths: %w", err)
	}
	defer stmt.Close()

	for _, h := range hadiths {
		if _, err := stmt.ExecContext(ctx, hadithArgs(h)...); err != nil {
			return fmt.Errorf("put hadith %s: %w", h.ID(), err)
		}
	}
	return tx.Commit()
}

func scanHadith(row interface{ Scan(...any) error }) (models.HadithRecord, error) {
	var h models.HadithRecord
	err := row.Scan(&h.CollectionID, &h.BookNumber, &h.ChapterNumber, &h.HadithNumber,
		&h.ArabicText, &h.EnglishText, &h.Narrator, &h.Grade, &h.Reference)
	return h, err
}

// GetHadith returns the hadith with the composite id "collection:book:number", or nil.
func (s *Store) GetHadith(ctx context.Context, id string) *models.HadithRecord {
	if !s.Available() {
		return nil
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+hadithColumns+" FROM hadiths WHERE id = ?", id)
	h, err := scanHadith(row)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("store: get hadith %s: %v", id, err)
		}
		return nil
	}
	return &h
}

// GetHadithsByBook returns the hadiths of one book in insertion order.
func (s *Store) GetHadithsByBook(ctx context.Context, collectionID, bookNumber string) []models.HadithRecord {
	return s.queryHadiths(ctx,
		"SELECT "+hadithColumns+" FROM hadiths WHERE collection_id = ? AND book_number = ? ORDER BY rowid",
		collectionID, bookNumber)
}

// GetHadithsByCollection returns every stored hadith of one collection.
func (s *Store) GetHadithsByCollection(ctx context.Context, collectionID string) []models.HadithRecord {
	return s.queryHadiths(ctx,
		"SELECT "+hadithColumns+" FROM hadiths WHERE collection_id = ? ORDER BY rowid", collectionID)
}

// GetAllHadiths returns every stored hadith. Used as a search corpus.
func (s *Store) GetAllHadiths(ctx context.Context) []models.HadithRecord {
	return s.queryHadiths(ctx, "SELECT "+hadithColumns+" FROM hadiths ORDER BY rowid")
}

func (s *Store) queryHadiths(ctx context.Context, query string, args ...any) []models.HadithRecord {
	hadiths := []models.HadithRecord{}
	if !s.Available() {
		return hadiths
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Printf("store: query hadiths: %v", err)
		return hadiths
	}
	defer rows.Close()

	for rows.Next() {
		h, err := scanHadith(rows)
		if err != nil {
			log.Printf("store: scan hadith: %v", err)
			return []models.HadithRecord{}
		}
		hadiths = append(hadiths, h)
	}
	if err := rows.Err(); err != nil {
		log.Printf("store: iterate hadiths: %v", err)
		return []models.HadithRecord{}
	}
	return hadiths
}
