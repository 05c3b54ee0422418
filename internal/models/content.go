// This file defines the content records (verses, hadiths) and the metadata
// aggregates that the offline layer stores and serves.

package models

import (
	"encoding/json"
	"fmt"
)

// Kind names a logical table of the persistent store.
type Kind string

const (
	KindVerse              Kind = "verse"
	KindHadith             Kind = "hadith"
	KindSurahMetadata      Kind = "surah_metadata"
	KindCollectionMetadata Kind = "collection_metadata"
)

// SurahCount is the number of surahs in the Quran.
const SurahCount = 114

// VerseID derives the primary key of a verse from its position.
func VerseID(surah, ayah int) int {
	return surah*1000 + ayah
}

// VerseRecord is a single ayah with its translation.
// Its ID is always derived from (SurahNumber, AyahNumber) and never stored on its own.
type VerseRecord struct {
	SurahNumber        int    `json:"surahNumber"`
	AyahNumber         int    `json:"ayahNumber"`
	ArabicText         string `json:"arabicText"`
	TranslationText    string `json:"translationText"`
	SurahName          string `json:"surahName,omitempty"`
	TotalVersesInSurah int    `json:"totalVersesInSurah,omitempty"`
}

// ID returns the composite key surahNumber*1000+ayahNumber.
func (v VerseRecord) ID() int {
	return VerseID(v.SurahNumber, v.AyahNumber)
}

type verseJSON struct {
	ID int `json:"id"`
	verseFields
}

type verseFields VerseRecord

// MarshalJSON emits the derived id alongside the stored fields.
func (v VerseRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(verseJSON{ID: v.ID(), verseFields: verseFields(v)})
}

// UnmarshalJSON ignores any incoming id; it is recomputed on demand.
func (v *VerseRecord) UnmarshalJSON(data []byte) error {
	var aux verseJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*v = VerseRecord(aux.verseFields)
	return nil
}

// HadithID derives the composite string key of a hadith.
func HadithID(collectionID, bookNumber, hadithNumber string) string {
	return fmt.Sprintf("%s:%s:%s", collectionID, bookNumber, hadithNumber)
}

// HadithRecord is a single narration within a collection book.
type HadithRecord struct {
	CollectionID  string `json:"collectionId"`
	BookNumber    string `json:"bookNumber"`
	ChapterNumber string `json:"chapterNumber"`
	HadithNumber  string `json:"hadithNumber"`
	ArabicText    string `json:"arabicText"`
	EnglishText   string `json:"englishText"`
	Narrator      string `json:"narrator,omitempty"`
	Grade         string `json:"grade,omitempty"`
	Reference     string `json:"reference"`
}

// ID returns "{collectionId}:{bookNumber}:{hadithNumber}".
func (h HadithRecord) ID() string {
	return HadithID(h.CollectionID, h.BookNumber, h.HadithNumber)
}

type hadithJSON struct {
	ID string `json:"id"`
	hadithFields
}

type hadithFields HadithRecord

func (h HadithRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(hadithJSON{ID: h.ID(), hadithFields: hadithFields(h)})
}

func (h *HadithRecord) UnmarshalJSON(data []byte) error {
	var aux hadithJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*h = HadithRecord(aux.hadithFields)
	return nil
}

// Book is one book (section) of a hadith collection.
type Book struct {
	BookNumber  string `json:"bookNumber"`
	BookName    string `json:"bookName"`
	HadithCount int    `json:"hadithCount"`
}

// CollectionMetadata is the cached aggregate over the hadiths of one collection.
type CollectionMetadata struct {
	CollectionID string `json:"collectionId"`
	Name         string `json:"name,omitempty"`
	Books        []Book `json:"books"`
}

// SurahMetadata describes one surah.
type SurahMetadata struct {
	SurahNumber        int    `json:"surahNumber"`
	ArabicName         string `json:"arabicName"`
	EnglishName        string `json:"englishName"`
	EnglishTranslation string `json:"englishTranslation"`
	AyahCount          int    `json:"ayahCount"`
	RevelationType     string `json:"revelationType"`
}

// SampleVerse is served when a requested verse does not exist upstream
// and nothing better is cached.
var SampleVerse = VerseRecord{
	SurahNumber:        1,
	AyahNumber:         1,
	ArabicText:         "بِسْمِ ٱللَّهِ ٱلرَّحْمَٰنِ ٱلرَّحِيمِ",
	TranslationText:    "In the name of Allah, the Entirely Merciful, the Especially Merciful.",
	SurahName:          "Al-Fatiha",
	TotalVersesInSurah: 7,
}
