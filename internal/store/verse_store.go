package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/vrsandeep/noor-go/internal/models"
)

const verseColumns = "surah_number, ayah_number, arabic_text, translation_text, surah_name, total_verses_in_surah"

const upsertVerse = `
	INSERT INTO verses (` + verseColumns + `, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(surah_number, ayah_number) DO UPDATE SET
		arabic_text = excluded.arabic_text,
		translation_text = excluded.translation_text,
		surah_name = excluded.surah_name,
		total_verses_in_surah = excluded.total_verses_in_surah,
		updated_at = excluded.updated_at`

// PutVerse upserts one verse keyed by (surah, ayah).
func (s *Store) PutVerse(ctx context.Context, v models.VerseRecord) error {
	if err := s.writable("put verse"); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, upsertVerse,
		v.SurahNumber, v.AyahNumber, v.ArabicText, v.TranslationText, v.SurahName, v.TotalVersesInSurah)
	if err != nil {
		return fmt.Errorf("put verse %d: %w", v.ID(), err)
	}
	return nil
}

// PutVerses upserts a batch of verses. The batch shares one transaction;
// it is still last-write-wins per key against concurrent writers.
func (s *Store) PutVerses(ctx context.Context, verses []models.VerseRecord) error {
	if err := s.writable("put verses"); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put verses: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertVerse)
	if err != nil {
		return fmt.Errorf("put verses: %w", err)
	}
	defer stmt.Close()

	for _, v := range verses {
		if _, err := stmt.ExecContext(ctx,
			v.SurahNumber, v.AyahNumber, v.ArabicText, v.TranslationText, v.SurahName, v.TotalVersesInSurah); err != nil {
			return fmt.Errorf("put verse %d: %w", v.ID(), err)
		}
	}
	return tx.Commit()
}

func scanVerse(row interface{ Scan(...any) error }) (models.VerseRecord, error) {
	var v models.VerseRecord
	err := row.Scan(&v.SurahNumber, &v.AyahNumber, &v.ArabicText, &v.TranslationText, &v.SurahName, &v.TotalVersesInSurah)
	return v, err
}

// GetVerse returns the verse or nil on miss.
func (s *Store) GetVerse(ctx context.Context, surah, ayah int) *models.VerseRecord {
	if !s.Available() {
		return nil
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT "+verseColumns+" FROM verses WHERE id = ?", models.VerseID(surah, ayah))
	v, err := scanVerse(row)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("store: get verse %d:%d: %v", surah, ayah, err)
		}
		return nil
	}
	return &v
}

// GetVersesBySurah returns the stored verses of one surah in insertion order.
func (s *Store) GetVersesBySurah(ctx context.Context, surah int) []models.VerseRecord {
	return s.queryVerses(ctx, "SELECT "+verseColumns+" FROM verses WHERE surah_number = ? ORDER BY rowid", surah)
}

// GetAllVerses returns every stored verse. Used as a search corpus.
func (s *Store) GetAllVerses(ctx context.Context) []models.VerseRecord {
	return s.queryVerses(ctx, "SELECT "+verseColumns+" FROM verses ORDER BY rowid")
}

func (s *Store) queryVerses(ctx context.Context, query string, args ...any) []models.VerseRecord {
	verses := []models.VerseRecord{}
	if !s.Available() {
		return verses
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Printf("store: query verses: %v", err)
		return verses
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVerse(rows)
		if err != nil {
			log.Printf("store: scan verse: %v", err)
			return []models.VerseRecord{}
		}
		verses = append(verses, v)
	}
	if err := rows.Err(); err != nil {
		log.Printf("store: iterate verses: %v", err)
		return []models.VerseRecord{}
	}
	return verses
}
