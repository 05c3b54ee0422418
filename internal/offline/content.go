package offline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/vrsandeep/noor-go/internal/connectivity"
	"github.com/vrsandeep/noor-go/internal/memcache"
	"github.com/vrsandeep/noor-go/internal/models"
	"github.com/vrsandeep/noor-go/internal/store"
	"github.com/vrsandeep/noor-go/internal/util"
)

// ErrNotAvailableOffline means the network failed and nothing was cached.
var ErrNotAvailableOffline = errors.New("content not available offline")

const allKey = "all"

// ContentService is the read path used by the origin API. It decides
// between the network and local copies and writes network results through
// to the store and the memory cache.
type ContentService struct {
	store   *store.Store
	memory  *memcache.Cache
	quran   models.QuranProvider
	hadith  models.HadithProvider
	conn    *connectivity.State
	manager *Manager
}

func NewContentService(st *store.Store, memory *memcache.Cache, quran models.QuranProvider, hadith models.HadithProvider,
	conn *connectivity.State, manager *Manager) *ContentService {
	return &ContentService{store: st, memory: memory, quran: quran, hadith: hadith, conn: conn, manager: manager}
}

// preferLocal is true when the downloaded corpus is complete or we are offline.
func (c *ContentService) preferLocal(ctx context.Context) bool {
	return !c.conn.Online() || c.manager.CheckAvailability(ctx)
}

// read resolves one item. local looks at memory and the store, remote asks
// the provider and save writes a remote result through.
func read[T any](ctx context.Context, c *ContentService, local func() (T, bool), remote func() (T, error), save func(T)) (T, error) {
	if c.preferLocal(ctx) {
		if v, ok := local(); ok {
			return v, nil
		}
	}
	v, err := remote()
	if err == nil {
		save(v)
		return v, nil
	}
	if errors.Is(err, models.ErrNotFound) {
		return v, err
	}
	log.Printf("content: network read failed, trying local copy: %v", err)
	if v, ok := local(); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %w", ErrNotAvailableOffline, err)
}

func (c *ContentService) SurahList(ctx context.Context) ([]models.SurahMetadata, error) {
	return read(ctx, c,
		func() ([]models.SurahMetadata, bool) {
			if list, ok := memcache.Get[[]models.SurahMetadata](c.memory, models.KindSurahMetadata, allKey); ok {
				return list, true
			}
			list := c.store.GetAllSurahMetadata(ctx)
			if len(list) == 0 {
				return nil, false
			}
			c.memory.Set(models.KindSurahMetadata, allKey, list)
			return list, true
		},
		func() ([]models.SurahMetadata, error) { return c.quran.FetchSurahList(ctx) },
		func(list []models.SurahMetadata) {
			for _, meta := range list {
				if err := c.store.PutSurahMetadata(ctx, meta); err != nil {
					log.Printf("content: keeping surah list in memory only: %v", err)
					break
				}
			}
			c.memory.Set(models.KindSurahMetadata, allKey, list)
		})
}

// Verse returns one verse. A verse the upstream does not know falls back
// to the sample verse.
func (c *ContentService) Verse(ctx context.Context, surah, ayah int) (*models.VerseRecord, error) {
	key := memcache.VerseKey(surah, ayah)
	v, err := read(ctx, c,
		func() (*models.VerseRecord, bool) {
			if v, ok := memcache.Get[*models.VerseRecord](c.memory, models.KindVerse, key); ok {
				return v, true
			}
			v := c.store.GetVerse(ctx, surah, ayah)
			if v == nil {
				return nil, false
			}
			c.memory.Set(models.KindVerse, key, v)
			return v, true
		},
		func() (*models.VerseRecord, error) { return c.quran.FetchVerse(ctx, surah, ayah) },
		func(v *models.VerseRecord) {
			if err := c.store.PutVerse(ctx, *v); err != nil {
				log.Printf("content: keeping verse %d:%d in memory only: %v", surah, ayah, err)
			}
			c.memory.Set(models.KindVerse, key, v)
		})
	if errors.Is(err, models.ErrNotFound) {
		sample := models.SampleVerse
		return &sample, nil
	}
	return v, err
}

// SurahVerses returns the verses of a surah in ayah order.
func (c *ContentService) SurahVerses(ctx context.Context, surah int) ([]models.VerseRecord, error) {
	key := memcache.SurahKey(surah)
	return read(ctx, c,
		func() ([]models.VerseRecord, bool) {
			if verses, ok := memcache.Get[[]models.VerseRecord](c.memory, models.KindVerse, key); ok {
				return verses, true
			}
			verses := c.store.GetVersesBySurah(ctx, surah)
			if len(verses) == 0 {
				return nil, false
			}
			sort.Slice(verses, func(i, j int) bool { return verses[i].AyahNumber < verses[j].AyahNumber })
			// Only a complete surah is memoized; a partial one may still fill in.
			if total := verses[0].TotalVersesInSurah; total == 0 || len(verses) >= total {
				c.memory.Set(models.KindVerse, key, verses)
			}
			return verses, true
		},
		func() ([]models.VerseRecord, error) { return c.quran.FetchSurahVerses(ctx, surah) },
		func(verses []models.VerseRecord) {
			if err := c.store.PutVerses(ctx, verses); err != nil {
				log.Printf("content: keeping surah %d in memory only: %v", surah, err)
			}
			c.memory.Set(models.KindVerse, key, verses)
		})
}

func (c *ContentService) Collections(ctx context.Context) ([]models.CollectionMetadata, error) {
	return read(ctx, c,
		func() ([]models.CollectionMetadata, bool) {
			list := c.store.GetAllCollectionMetadata(ctx)
			return list, len(list) > 0
		},
		func() ([]models.CollectionMetadata, error) { return c.hadith.FetchCollections(ctx) },
		func(list []models.CollectionMetadata) {
			for i, col := range list {
				// Keep books already known for the collection.
				if existing := c.store.GetCollectionMetadata(ctx, col.CollectionID); existing != nil && len(col.Books) == 0 {
					col.Books = existing.Books
					list[i].Books = existing.Books
				}
				if err := c.store.PutCollectionMetadata(ctx, col); err != nil {
					log.Printf("content: keeping collections in memory only: %v", err)
					return
				}
			}
		})
}

func (c *ContentService) CollectionBooks(ctx context.Context, collectionID string) ([]models.Book, error) {
	return read(ctx, c,
		func() ([]models.Book, bool) {
			meta := c.store.GetCollectionMetadata(ctx, collectionID)
			if meta == nil || len(meta.Books) == 0 {
				return nil, false
			}
			return meta.Books, true
		},
		func() ([]models.Book, error) { return c.hadith.FetchCollectionBooks(ctx, collectionID) },
		func(books []models.Book) {
			meta := models.CollectionMetadata{CollectionID: collectionID, Books: books}
			if existing := c.store.GetCollectionMetadata(ctx, collectionID); existing != nil {
				meta.Name = existing.Name
			}
			if err := c.store.PutCollectionMetadata(ctx, meta); err != nil {
				log.Printf("content: keeping books of %s in memory only: %v", collectionID, err)
			}
		})
}

// BookHadiths returns the hadiths of one book in hadith number order.
func (c *ContentService) BookHadiths(ctx context.Context, collectionID, bookNumber string) ([]models.HadithRecord, error) {
	key := memcache.BookKey(collectionID, bookNumber)
	return read(ctx, c,
		func() ([]models.HadithRecord, bool) {
			if hadiths, ok := memcache.Get[[]models.HadithRecord](c.memory, models.KindHadith, key); ok {
				return hadiths, true
			}
			hadiths := c.store.GetHadithsByBook(ctx, collectionID, bookNumber)
			if len(hadiths) == 0 {
				return nil, false
			}
			util.SortNatural(hadiths, func(h models.HadithRecord) string { return h.HadithNumber })
			c.memory.Set(models.KindHadith, key, hadiths)
			return hadiths, true
		},
		func() ([]models.HadithRecord, error) { return c.hadith.FetchBookHadiths(ctx, collectionID, bookNumber) },
		func(hadiths []models.HadithRecord) {
			c.memory.Set(models.KindHadith, key, hadiths)
			if err := c.store.PutHadiths(ctx, hadiths); err != nil {
				log.Printf("content: keeping %s book %s in memory only: %v", collectionID, bookNumber, err)
				return
			}
			if err := c.store.RebuildCollectionMetadata(ctx, collectionID); err != nil {
				log.Printf("content: %v", err)
			}
		})
}

// SearchVerses returns up to limit stored verses whose text contains query,
// case-insensitively. Only downloaded content is searched.
func (c *ContentService) SearchVerses(ctx context.Context, query string, limit int) []models.VerseRecord {
	needle := strings.ToLower(strings.TrimSpace(query))
	results := []models.VerseRecord{}
	if needle == "" {
		return results
	}
	for _, v := range c.store.GetAllVerses(ctx) {
		if strings.Contains(strings.ToLower(v.TranslationText), needle) || strings.Contains(v.ArabicText, query) {
			results = append(results, v)
			if limit > 0 && len(results) == limit {
				break
			}
		}
	}
	return results
}

// SearchHadiths is SearchVerses for hadith text and narrators.
func (c *ContentService) SearchHadiths(ctx context.Context, query string, limit int) []models.HadithRecord {
	needle := strings.ToLower(strings.TrimSpace(query))
	results := []models.HadithRecord{}
	if needle == "" {
		return results
	}
	for _, h := range c.store.GetAllHadiths(ctx) {
		if strings.Contains(strings.ToLower(h.EnglishText), needle) ||
			strings.Contains(strings.ToLower(h.Narrator), needle) ||
			strings.Contains(h.ArabicText, query) {
			results = append(results, h)
			if limit > 0 && len(results) == limit {
				break
			}
		}
	}
	return results
}
