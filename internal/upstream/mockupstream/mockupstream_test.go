package mockupstream

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/noor-go/internal/models"
)

func TestMockProvider(t *testing.T) {
	p := New()
	ctx := context.Background()

	list, err := p.FetchSurahList(ctx)
	require.NoError(t, err)
	assert.Len(t, list, models.SurahCount)

	verses, err := p.FetchSurahVerses(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, verses, AyahCount(2))
	assert.Equal(t, "Mock translation of 2:1", verses[0].TranslationText)

	_, err = p.FetchVerse(ctx, 2, 99)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	hadiths, err := p.FetchBookHadiths(ctx, "muslim", "2")
	require.NoError(t, err)
	require.Len(t, hadiths, 3)
	assert.Equal(t, "muslim:2:4", hadiths[0].ID())
	assert.Equal(t, "Narrated Mock: hadith 4 of muslim", hadiths[0].EnglishText)
}

func TestMockFaultInjection(t *testing.T) {
	p := New()
	ctx := context.Background()

	p.FailSurah(7)
	_, err := p.FetchSurahVerses(ctx, 7)
	assert.True(t, errors.Is(err, models.ErrTransport))
	_, err = p.FetchSurahVerses(ctx, 8)
	assert.NoError(t, err)

	p.FailBook("bukhari", "1")
	_, err = p.FetchBookHadiths(ctx, "bukhari", "1")
	assert.True(t, errors.Is(err, models.ErrTransport))

	p.SetOffline(true)
	_, err = p.FetchCollections(ctx)
	assert.True(t, errors.Is(err, models.ErrTransport))
	assert.Equal(t, int64(4), p.Calls())
}
