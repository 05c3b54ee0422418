package offline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/noor-go/internal/memcache"
	"github.com/vrsandeep/noor-go/internal/models"
	"github.com/vrsandeep/noor-go/internal/upstream/mockupstream"
)

func TestContentNetworkFirstWritesThrough(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	verses, err := f.content.SurahVerses(ctx, 2)
	require.NoError(t, err)
	require.Len(t, verses, 3+2%4)

	stored := f.store.GetVersesBySurah(ctx, 2)
	assert.Len(t, stored, len(verses))
	assert.Equal(t, verses[0].TranslationText, stored[0].TranslationText)

	// Online and not fully downloaded: the network is asked again.
	before := f.mock.Calls()
	_, err = f.content.SurahVerses(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, before+1, f.mock.Calls())
}

func TestContentPrefersLocalWhenComplete(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	_, err := f.manager.PrefetchAll(ctx, nil)
	require.NoError(t, err)

	before := f.mock.Calls()
	verse, err := f.content.Verse(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1002, verse.ID())
	hadiths, err := f.content.BookHadiths(ctx, "bukhari", "2")
	require.NoError(t, err)
	assert.Len(t, hadiths, 3)
	list, err := f.content.SurahList(ctx)
	require.NoError(t, err)
	assert.Len(t, list, models.SurahCount)

	assert.Equal(t, before, f.mock.Calls(), "complete offline data must be served without network calls")
}

func TestContentPrefersLocalWhenOffline(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	require.NoError(t, f.store.PutVerses(ctx, []models.VerseRecord{
		{SurahNumber: 5, AyahNumber: 2, ArabicText: "b", TranslationText: "second"},
		{SurahNumber: 5, AyahNumber: 1, ArabicText: "a", TranslationText: "first"},
	}))
	f.conn.Set(false)

	before := f.mock.Calls()
	verses, err := f.content.SurahVerses(ctx, 5)
	require.NoError(t, err)
	require.Len(t, verses, 2)
	assert.Equal(t, 1, verses[0].AyahNumber, "local results are sorted by ayah")
	assert.Equal(t, before, f.mock.Calls())
}

func TestContentFallsBackToStoreOnNetworkFailure(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	require.NoError(t, f.store.PutVerse(ctx, models.VerseRecord{SurahNumber: 3, AyahNumber: 1, TranslationText: "stored"}))
	f.mock.SetOffline(true)

	verse, err := f.content.Verse(ctx, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, "stored", verse.TranslationText)

	_, err = f.content.SurahVerses(ctx, 4)
	assert.ErrorIs(t, err, ErrNotAvailableOffline)
	assert.ErrorIs(t, err, models.ErrTransport)
}

func TestContentUnknownVerseFallsBackToSample(t *testing.T) {
	f := newFixture(t, 0)
	verse, err := f.content.Verse(context.Background(), 1, 99)
	require.NoError(t, err)
	assert.Equal(t, models.SampleVerse, *verse)

	_, err = f.content.SurahVerses(context.Background(), 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestContentHadithWritesRebuildMetadata(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	books, err := f.content.CollectionBooks(ctx, "muslim")
	require.NoError(t, err)
	require.Len(t, books, 2)

	_, err = f.content.BookHadiths(ctx, "muslim", "1")
	require.NoError(t, err)

	meta := f.store.GetCollectionMetadata(ctx, "muslim")
	require.NotNil(t, meta)
	require.Len(t, meta.Books, 2)
	assert.Equal(t, "Book 1", meta.Books[0].BookName)
	assert.Equal(t, 3, meta.Books[0].HadithCount)
	assert.Equal(t, 0, meta.Books[1].HadithCount)

	cols, err := f.content.Collections(ctx)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	stored := f.store.GetCollectionMetadata(ctx, "muslim")
	require.NotNil(t, stored)
	assert.Len(t, stored.Books, 2, "refreshing the collection list keeps known books")
	assert.Equal(t, "Mock muslim", stored.Name)
}

func TestSearch(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	_, err := f.manager.PrefetchAll(ctx, nil)
	require.NoError(t, err)

	verses := f.content.SearchVerses(ctx, "translation of 2:3", 0)
	require.Len(t, verses, 1)
	assert.Equal(t, 2003, verses[0].ID())

	assert.Len(t, f.content.SearchVerses(ctx, "MOCK TRANSLATION", 5), 5)
	assert.Empty(t, f.content.SearchVerses(ctx, "  ", 0))

	hadiths := f.content.SearchHadiths(ctx, "hadith 4 of muslim", 0)
	require.Len(t, hadiths, 1)
	assert.Equal(t, "muslim:2:4", hadiths[0].ID())
	assert.Empty(t, f.content.SearchHadiths(ctx, "nothing like this", 0))
}

func TestContentPartialSurahNotMemoized(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	total := mockupstream.AyahCount(1)
	require.NoError(t, f.store.PutVerse(ctx, models.VerseRecord{
		SurahNumber: 1, AyahNumber: 1, ArabicText: "a", TranslationText: "b", TotalVersesInSurah: total,
	}))

	f.conn.Set(false)
	f.mock.SetOffline(true)
	verses, err := f.content.SurahVerses(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, verses, 1)
	_, memoized := memcache.Get[[]models.VerseRecord](f.memory, models.KindVerse, memcache.SurahKey(1))
	assert.False(t, memoized)

	f.conn.Set(true)
	f.mock.SetOffline(false)
	_, err = f.manager.PrefetchAll(ctx, nil)
	require.NoError(t, err)

	verses, err = f.content.SurahVerses(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, verses, total)
}

func TestPrefetchInvalidatesMemoizedReads(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	require.NoError(t, f.store.PutVerse(ctx, models.VerseRecord{SurahNumber: 2, AyahNumber: 1, TranslationText: "old text"}))

	f.conn.Set(false)
	v, err := f.content.Verse(ctx, 2, 1)
	require.NoError(t, err)
	require.Equal(t, "old text", v.TranslationText)

	f.conn.Set(true)
	_, err = f.manager.PrefetchAll(ctx, nil)
	require.NoError(t, err)

	// Complete now, so the local copy is read; it must be the prefetched one.
	v, err = f.content.Verse(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, "Mock translation of 2:1", v.TranslationText)
}
