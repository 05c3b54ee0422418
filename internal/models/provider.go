package models

import "context"

// ProviderInfo contains static information about a provider.
type ProviderInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// QuranProvider normalizes one upstream Quran API into VerseRecords.
// Returned records are already cleaned of footnote markup.
type QuranProvider interface {
	GetInfo() ProviderInfo
	FetchSurahList(ctx context.Context) ([]SurahMetadata, error)
	FetchVerse(ctx context.Context, surah, ayah int) (*VerseRecord, error)
	FetchSurahVerses(ctx context.Context, surah int) ([]VerseRecord, error)
}

// HadithProvider normalizes one upstream Hadith API into HadithRecords.
type HadithProvider interface {
	GetInfo() ProviderInfo
	FetchCollections(ctx context.Context) ([]CollectionMetadata, error)
	FetchCollectionBooks(ctx context.Context, collectionID string) ([]Book, error)
	FetchBookHadiths(ctx context.Context, collectionID, bookNumber string) ([]HadithRecord, error)
}

// FallbackHeader marks responses synthesized by the interception gateway.
// Its value is "cache" for a stored copy and "placeholder" for an offline stand-in.
const FallbackHeader = "X-Noor-Fallback"
