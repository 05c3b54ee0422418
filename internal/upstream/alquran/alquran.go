// Package alquran reads verses from api.alquran.cloud. The Arabic text and
// the translation are separate editions fetched independently, so a failing
// translation edition degrades to empty translations.
package alquran

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/vrsandeep/noor-go/internal/models"
	"github.com/vrsandeep/noor-go/internal/textclean"
	"github.com/vrsandeep/noor-go/internal/upstream"
)

const providerID = "alquran"

// Provider implements models.QuranProvider for api.alquran.cloud.
type Provider struct {
	client      *resty.Client
	edition     string
	translation string
}

// New creates a provider. transport may be nil.
func New(baseURL, edition, translation string, transport http.RoundTripper) *Provider {
	if edition == "" {
		edition = "quran-uthmani"
	}
	return &Provider{
		client:      upstream.NewClient(strings.TrimRight(baseURL, "/"), transport),
		edition:     edition,
		translation: translation,
	}
}

// GetInfo returns static information about this provider.
func (p *Provider) GetInfo() models.ProviderInfo {
	return models.ProviderInfo{ID: providerID, Name: "AlQuran Cloud"}
}

// FetchSurahList returns the metadata of all surahs.
func (p *Provider) FetchSurahList(ctx context.Context) ([]models.SurahMetadata, error) {
	var env Envelope[[]SurahSummary]
	if err := upstream.GetJSON(ctx, p.client, providerID, "surah list", "/v1/surah", &env); err != nil {
		return nil, err
	}
	list := make([]models.SurahMetadata, 0, len(env.Data))
	for _, s := range env.Data {
		if s.Number <= 0 {
			return nil, upstream.Malformed(providerID, "surah list", "surah without number")
		}
		list = append(list, models.SurahMetadata{
			SurahNumber:        s.Number,
			ArabicName:         s.Name,
			EnglishName:        s.EnglishName,
			EnglishTranslation: s.EnglishNameTranslation,
			AyahCount:          s.NumberOfAyahs,
			RevelationType:     s.RevelationType,
		})
	}
	return list, nil
}

// FetchSurahVerses returns every verse of a surah.
func (p *Provider) FetchSurahVerses(ctx context.Context, surah int) ([]models.VerseRecord, error) {
	op := fmt.Sprintf("surah %d", surah)
	var arabic Envelope[SurahEdition]
	if err := upstream.GetJSON(ctx, p.client, providerID, op, fmt.Sprintf("/v1/surah/%d/%s", surah, p.edition), &arabic); err != nil {
		return nil, err
	}

	translations := map[int]string{}
	if p.translation != "" {
		var translated Envelope[SurahEdition]
		err := upstream.GetJSON(ctx, p.client, providerID, op+" translation",
			fmt.Sprintf("/v1/surah/%d/%s", surah, p.translation), &translated)
		if err != nil {
			log.Printf("alquran: translation of surah %d unavailable, continuing without it: %v", surah, err)
		} else {
			for _, a := range translated.Data.Ayahs {
				translations[a.NumberInSurah] = a.Text
			}
		}
	}

	verses := make([]models.VerseRecord, 0, len(arabic.Data.Ayahs))
	for _, a := range arabic.Data.Ayahs {
		if a.NumberInSurah <= 0 {
			return nil, upstream.Malformed(providerID, op, "ayah %d has no position in surah", a.Number)
		}
		verses = append(verses, normalize(surah, a, translations[a.NumberInSurah], arabic.Data.SurahSummary))
	}
	return verses, nil
}

// FetchVerse returns a single verse.
func (p *Provider) FetchVerse(ctx context.Context, surah, ayah int) (*models.VerseRecord, error) {
	op := fmt.Sprintf("verse %d:%d", surah, ayah)
	var arabic Envelope[AyahEdition]
	if err := upstream.GetJSON(ctx, p.client, providerID, op, fmt.Sprintf("/v1/ayah/%d:%d/%s", surah, ayah, p.edition), &arabic); err != nil {
		return nil, err
	}
	if arabic.Data.NumberInSurah <= 0 {
		return nil, upstream.Malformed(providerID, op, "ayah has no position in surah")
	}

	translation := ""
	if p.translation != "" {
		var translated Envelope[AyahEdition]
		err := upstream.GetJSON(ctx, p.client, providerID, op+" translation",
			fmt.Sprintf("/v1/ayah/%d:%d/%s", surah, ayah, p.translation), &translated)
		if err != nil {
			log.Printf("alquran: translation of %d:%d unavailable, continuing without it: %v", surah, ayah, err)
		} else {
			translation = translated.Data.Text
		}
	}

	v := normalize(surah, arabic.Data.Ayah, translation, arabic.Data.Surah)
	return &v, nil
}

func normalize(surah int, a Ayah, translation string, info SurahSummary) models.VerseRecord {
	return models.VerseRecord{
		SurahNumber:        surah,
		AyahNumber:         a.NumberInSurah,
		ArabicText:         strings.TrimSpace(a.Text),
		TranslationText:    textclean.Clean(translation),
		SurahName:          info.EnglishName,
		TotalVersesInSurah: info.NumberOfAyahs,
	}
}
