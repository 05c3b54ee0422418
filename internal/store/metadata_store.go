package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/vrsandeep/noor-go/internal/models"
	"github.com/vrsandeep/noor-go/internal/util"
)

// PutSurahMetadata upserts the metadata of one surah.
func (s *Store) PutSurahMetadata(ctx context.Context, m models.SurahMetadata) error {
	if err := s.writable("put surah metadata"); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO surah_metadata (surah_number, arabic_name, english_name, english_translation, ayah_count, revelation_type, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(surah_number) DO UPDATE SET
			arabic_name = excluded.arabic_name,
			english_name = excluded.english_name,
			english_translation = excluded.english_translation,
			ayah_count = excluded.ayah_count,
			revelation_type = excluded.revelation_type,
			updated_at = excluded.updated_at`,
		m.SurahNumber, m.ArabicName, m.EnglishName, m.EnglishTranslation, m.AyahCount, m.RevelationType)
	if err != nil {
		return fmt.Errorf("put surah metadata %d: %w", m.SurahNumber, err)
	}
	return nil
}

const surahColumns = "surah_number, arabic_name, english_name, english_translation, ayah_count, revelation_type"

func scanSurah(row interface{ Scan(...any) error }) (models.SurahMetadata, error) {
	var m models.SurahMetadata
	err := row.Scan(&m.SurahNumber, &m.ArabicName, &m.EnglishName, &m.EnglishTranslation, &m.AyahCount, &m.RevelationType)
	return m, err
}

// GetSurahMetadata returns the metadata of one surah, or nil.
func (s *Store) GetSurahMetadata(ctx context.Context, surah int) *models.SurahMetadata {
	if !s.Available() {
		return nil
	}
	m, err := scanSurah(s.db.QueryRowContext(ctx,
		"SELECT "+surahColumns+" FROM surah_metadata WHERE surah_number = ?", surah))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("store: get surah metadata %d: %v", surah, err)
		}
		return nil
	}
	return &m
}

// GetAllSurahMetadata returns the stored surah list ordered by surah number.
func (s *Store) GetAllSurahMetadata(ctx context.Context) []models.SurahMetadata {
	list := []models.SurahMetadata{}
	if !s.Available() {
		return list
	}
	rows, err := s.db.QueryContext(ctx, "SELECT "+surahColumns+" FROM surah_metadata ORDER BY surah_number")
	if err != nil {
		log.Printf("store: list surah metadata: %v", err)
		return list
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanSurah(rows)
		if err != nil {
			log.Printf("store: scan surah metadata: %v", err)
			return []models.SurahMetadata{}
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		log.Printf("store: iterate surah metadata: %v", err)
		return []models.SurahMetadata{}
	}
	return list
}

// PutCollectionMetadata upserts the aggregate of one collection. Last write wins.
func (s *Store) PutCollectionMetadata(ctx context.Context, m models.CollectionMetadata) error {
	if err := s.writable("put collection metadata"); err != nil {
		return err
	}
	books := m.Books
	if books == nil {
		books = []models.Book{}
	}
	encoded, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("encode books of %s: %w", m.CollectionID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO collection_metadata (collection_id, name, books, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(collection_id) DO UPDATE SET
			name = excluded.name,
			books = excluded.books,
			updated_at = excluded.updated_at`,
		m.CollectionID, m.Name, string(encoded))
	if err != nil {
		return fmt.Errorf("put collection metadata %s: %w", m.CollectionID, err)
	}
	return nil
}

func scanCollection(row interface{ Scan(...any) error }) (models.CollectionMetadata, error) {
	var m models.CollectionMetadata
	var books string
	if err := row.Scan(&m.CollectionID, &m.Name, &books); err != nil {
		return m, err
	}
	if err := json.Unmarshal([]byte(books), &m.Books); err != nil {
		return m, fmt.Errorf("decode books of %s: %w", m.CollectionID, err)
	}
	return m, nil
}

// GetCollectionMetadata returns the aggregate of one collection, or nil.
func (s *Store) GetCollectionMetadata(ctx context.Context, collectionID string) *models.CollectionMetadata {
	if !s.Available() {
		return nil
	}
	m, err := scanCollection(s.db.QueryRowContext(ctx,
		"SELECT collection_id, name, books FROM collection_metadata WHERE collection_id = ?", collectionID))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("store: get collection metadata %s: %v", collectionID, err)
		}
		return nil
	}
	return &m
}

// GetAllCollectionMetadata returns every stored collection aggregate in insertion order.
func (s *Store) GetAllCollectionMetadata(ctx context.Context) []models.CollectionMetadata {
	list := []models.CollectionMetadata{}
	if !s.Available() {
		return list
	}
	rows, err := s.db.QueryContext(ctx, "SELECT collection_id, name, books FROM collection_metadata ORDER BY rowid")
	if err != nil {
		log.Printf("store: list collection metadata: %v", err)
		return list
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanCollection(rows)
		if err != nil {
			log.Printf("store: scan collection metadata: %v", err)
			continue
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		log.Printf("store: iterate collection metadata: %v", err)
	}
	return list
}

// RebuildCollectionMetadata recomputes the book list of a collection from
// its stored hadiths. Book names already known are kept; books with no
// stored hadiths keep their entry with a zero count.
func (s *Store) RebuildCollectionMetadata(ctx context.Context, collectionID string) error {
	if err := s.writable("rebuild collection metadata"); err != nil {
		return err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT book_number, COUNT(*) FROM hadiths WHERE collection_id = ? GROUP BY book_number", collectionID)
	if err != nil {
		return fmt.Errorf("rebuild collection metadata %s: %w", collectionID, err)
	}
	counts := make(map[string]int)
	for rows.Next() {
		var book string
		var n int
		if err := rows.Scan(&book, &n); err != nil {
			rows.Close()
			return fmt.Errorf("rebuild collection metadata %s: %w", collectionID, err)
		}
		counts[book] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rebuild collection metadata %s: %w", collectionID, err)
	}

	meta := models.CollectionMetadata{CollectionID: collectionID}
	if existing := s.GetCollectionMetadata(ctx, collectionID); existing != nil {
		meta.Name = existing.Name
		for _, b := range existing.Books {
			if _, ok := counts[b.BookNumber]; !ok {
				counts[b.BookNumber] = 0
			}
		}
		for _, b := range existing.Books {
			meta.Books = append(meta.Books, models.Book{BookNumber: b.BookNumber, BookName: b.BookName})
		}
	}
	known := make(map[string]int, len(meta.Books))
	for i, b := range meta.Books {
		known[b.BookNumber] = i
	}
	for book := range counts {
		if _, ok := known[book]; !ok {
			meta.Books = append(meta.Books, models.Book{BookNumber: book})
		}
	}
	for i := range meta.Books {
		meta.Books[i].HadithCount = counts[meta.Books[i].BookNumber]
	}
	util.SortNatural(meta.Books, func(b models.Book) string { return b.BookNumber })

	return s.PutCollectionMetadata(ctx, meta)
}
