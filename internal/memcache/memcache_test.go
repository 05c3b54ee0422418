package memcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vrsandeep/noor-go/internal/models"
)

func TestCache(t *testing.T) {
	c := New(16)
	v := models.VerseRecord{SurahNumber: 1, AyahNumber: 2, ArabicText: "a"}
	c.Set(models.KindVerse, VerseKey(1, 2), v)

	got, ok := Get[models.VerseRecord](c, models.KindVerse, VerseKey(1, 2))
	assert.True(t, ok)
	assert.Equal(t, v, got)

	t.Run("kinds do not collide", func(t *testing.T) {
		_, ok := Get[models.VerseRecord](c, models.KindHadith, VerseKey(1, 2))
		assert.False(t, ok)
	})

	t.Run("wrong type is a miss", func(t *testing.T) {
		_, ok := Get[models.HadithRecord](c, models.KindVerse, VerseKey(1, 2))
		assert.False(t, ok)
	})

	t.Run("reset empties", func(t *testing.T) {
		c.Reset()
		assert.Equal(t, 0, c.Len())
		_, ok := Get[models.VerseRecord](c, models.KindVerse, VerseKey(1, 2))
		assert.False(t, ok)
	})
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(16)
	for i := 1; i <= 17; i++ {
		c.Set(models.KindVerse, VerseKey(1, i), i)
	}
	assert.Equal(t, 16, c.Len())
	_, ok := Get[int](c, models.KindVerse, VerseKey(1, 1))
	assert.False(t, ok)
	n, ok := Get[int](c, models.KindVerse, VerseKey(1, 17))
	assert.True(t, ok)
	assert.Equal(t, 17, n)
}

func TestNewWithInvalidSize(t *testing.T) {
	c := New(0)
	c.Set(models.KindVerse, "x", 1)
	assert.Equal(t, 1, c.Len())
}
