package qurancom

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/noor-go/internal/models"
)

func setupTestServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v4/chapters", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chapters":[{"id":2,"revelation_place":"madinah","name_simple":"Al-Baqarah","name_arabic":"البقرة","verses_count":286,"translated_name":{"name":"The Cow"}}]}`)
	})
	mux.HandleFunc("/api/v4/chapters/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chapter":{"id":2,"revelation_place":"madinah","name_simple":"Al-Baqarah","verses_count":286}}`)
	})
	mux.HandleFunc("/api/v4/verses/by_chapter/2", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("translations"))
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `{"verses":[{"id":8,"verse_number":1,"verse_key":"2:1","text_uthmani":"الٓمٓ","translations":[{"resource_id":20,"text":"Alif, Lam, Meem."}]}],
				"pagination":{"per_page":50,"current_page":1,"next_page":2,"total_pages":2}}`)
		case "2":
			fmt.Fprint(w, `{"verses":[{"id":9,"verse_number":2,"verse_key":"2:2","text_uthmani":"ذَٰلِكَ ٱلْكِتَٰبُ","translations":[{"resource_id":20,"text":"This is the Book<sup foot_note=\"1\">1</sup> about which there is no doubt."}]}],
				"pagination":{"per_page":50,"current_page":2,"next_page":null,"total_pages":2}}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/api/v4/verses/by_key/2:2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"verse":{"id":9,"verse_key":"2:2","text_uthmani":"ذَٰلِكَ","translations":[{"resource_id":20,"text":"This is the Book"}]}}`)
	})
	mux.HandleFunc("/api/v4/verses/by_chapter/3", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	return httptest.NewServer(mux)
}

func TestQuranComProvider(t *testing.T) {
	server := setupTestServer(t)
	defer server.Close()
	p := New(server.URL, "en.sahih", nil)
	ctx := context.Background()

	t.Run("FetchSurahList", func(t *testing.T) {
		list, err := p.FetchSurahList(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, models.SurahMetadata{
			SurahNumber: 2, ArabicName: "البقرة", EnglishName: "Al-Baqarah",
			EnglishTranslation: "The Cow", AyahCount: 286, RevelationType: "Medinan",
		}, list[0])
	})

	t.Run("FetchSurahVerses follows pages and strips footnotes", func(t *testing.T) {
		verses, err := p.FetchSurahVerses(ctx, 2)
		require.NoError(t, err)
		require.Len(t, verses, 2)
		assert.Equal(t, 2001, verses[0].ID())
		assert.Equal(t, "This is the Book about which there is no doubt.", verses[1].TranslationText)
		assert.Equal(t, "Al-Baqarah", verses[1].SurahName)
		assert.Equal(t, 286, verses[1].TotalVersesInSurah)
	})

	t.Run("FetchVerse falls back to the verse key", func(t *testing.T) {
		v, err := p.FetchVerse(ctx, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, v.AyahNumber)
		assert.Equal(t, "This is the Book", v.TranslationText)
	})

	t.Run("server errors are transport failures", func(t *testing.T) {
		_, err := p.FetchSurahVerses(ctx, 3)
		assert.True(t, errors.Is(err, models.ErrTransport))
	})

	t.Run("missing verse is not found", func(t *testing.T) {
		_, err := p.FetchVerse(ctx, 2, 999)
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})
}
