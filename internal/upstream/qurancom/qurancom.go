// Package qurancom reads verses from the quran.com v4 API.
package qurancom

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/vrsandeep/noor-go/internal/models"
	"github.com/vrsandeep/noor-go/internal/textclean"
	"github.com/vrsandeep/noor-go/internal/upstream"
)

const (
	providerID = "qurancom"
	// Sahih International.
	defaultTranslation = "20"
	perPage            = 50
)

// Provider implements models.QuranProvider for api.quran.com.
type Provider struct {
	client      *resty.Client
	translation string
}

// New creates a provider. translation is a quran.com resource id; anything
// non-numeric falls back to Sahih International.
func New(baseURL, translation string, transport http.RoundTripper) *Provider {
	if _, err := strconv.Atoi(translation); err != nil {
		translation = defaultTranslation
	}
	return &Provider{
		client:      upstream.NewClient(strings.TrimRight(baseURL, "/"), transport),
		translation: translation,
	}
}

// GetInfo returns static information about this provider.
func (p *Provider) GetInfo() models.ProviderInfo {
	return models.ProviderInfo{ID: providerID, Name: "Quran.com"}
}

// FetchSurahList returns the metadata of all surahs.
func (p *Provider) FetchSurahList(ctx context.Context) ([]models.SurahMetadata, error) {
	var resp ChapterListResponse
	if err := upstream.GetJSON(ctx, p.client, providerID, "surah list", "/api/v4/chapters", &resp); err != nil {
		return nil, err
	}
	list := make([]models.SurahMetadata, 0, len(resp.Chapters))
	for _, c := range resp.Chapters {
		if c.ID <= 0 {
			return nil, upstream.Malformed(providerID, "surah list", "chapter without id")
		}
		list = append(list, chapterMetadata(c))
	}
	return list, nil
}

func chapterMetadata(c Chapter) models.SurahMetadata {
	revelation := "Medinan"
	if c.RevelationPlace == "makkah" {
		revelation = "Meccan"
	}
	return models.SurahMetadata{
		SurahNumber:        c.ID,
		ArabicName:         c.NameArabic,
		EnglishName:        c.NameSimple,
		EnglishTranslation: c.TranslatedName.Name,
		AyahCount:          c.VersesCount,
		RevelationType:     revelation,
	}
}

// chapter fetches surah info. A failure only costs the name and count.
func (p *Provider) chapter(ctx context.Context, surah int) Chapter {
	var resp ChapterResponse
	if err := upstream.GetJSON(ctx, p.client, providerID, fmt.Sprintf("chapter %d", surah),
		fmt.Sprintf("/api/v4/chapters/%d", surah), &resp); err != nil {
		log.Printf("qurancom: chapter %d info unavailable: %v", surah, err)
		return Chapter{ID: surah}
	}
	return resp.Chapter
}

// FetchSurahVerses returns every verse of a surah, following pagination.
func (p *Provider) FetchSurahVerses(ctx context.Context, surah int) ([]models.VerseRecord, error) {
	op := fmt.Sprintf("surah %d", surah)
	var all []Verse
	page := 1
	for {
		var resp VersesResponse
		path := fmt.Sprintf("/api/v4/verses/by_chapter/%d?translations=%s&fields=text_uthmani&per_page=%d&page=%d",
			surah, p.translation, perPage, page)
		if err := upstream.GetJSON(ctx, p.client, providerID, op, path, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Verses...)
		if resp.Pagination.NextPage == nil || *resp.Pagination.NextPage <= page {
			break // No more pages
		}
		page = *resp.Pagination.NextPage
	}

	info := p.chapter(ctx, surah)
	total := info.VersesCount
	if total == 0 {
		total = len(all)
	}
	verses := make([]models.VerseRecord, 0, len(all))
	for _, v := range all {
		record, err := normalize(surah, v, info.NameSimple, total)
		if err != nil {
			return nil, upstream.Malformed(providerID, op, "%v", err)
		}
		verses = append(verses, record)
	}
	return verses, nil
}

// FetchVerse returns a single verse.
func (p *Provider) FetchVerse(ctx context.Context, surah, ayah int) (*models.VerseRecord, error) {
	op := fmt.Sprintf("verse %d:%d", surah, ayah)
	var resp VerseResponse
	path := fmt.Sprintf("/api/v4/verses/by_key/%d:%d?translations=%s&fields=text_uthmani", surah, ayah, p.translation)
	if err := upstream.GetJSON(ctx, p.client, providerID, op, path, &resp); err != nil {
		return nil, err
	}
	info := p.chapter(ctx, surah)
	record, err := normalize(surah, resp.Verse, info.NameSimple, info.VersesCount)
	if err != nil {
		return nil, upstream.Malformed(providerID, op, "%v", err)
	}
	return &record, nil
}

func normalize(surah int, v Verse, surahName string, total int) (models.VerseRecord, error) {
	ayah := v.VerseNumber
	if ayah <= 0 {
		// Older responses only carry the key.
		parts := strings.SplitN(v.VerseKey, ":", 2)
		if len(parts) == 2 {
			ayah, _ = strconv.Atoi(parts[1])
		}
	}
	if ayah <= 0 {
		return models.VerseRecord{}, fmt.Errorf("verse %d has no number", v.ID)
	}
	translation := ""
	if len(v.Translations) > 0 {
		translation = v.Translations[0].Text
	}
	return models.VerseRecord{
		SurahNumber:        surah,
		AyahNumber:         ayah,
		ArabicText:         strings.TrimSpace(v.TextUthmani),
		TranslationText:    textclean.Clean(translation),
		SurahName:          surahName,
		TotalVersesInSurah: total,
	}, nil
}
