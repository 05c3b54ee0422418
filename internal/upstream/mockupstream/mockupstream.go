// A mock provider for development and testing purposes. It serves a small
// deterministic Quran and Hadith corpus without making network calls, and
// can be told to fail specific surahs or books.
package mockupstream

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/vrsandeep/noor-go/internal/models"
	"github.com/vrsandeep/noor-go/internal/textclean"
)

const providerID = "mock"

// Provider implements both models.QuranProvider and models.HadithProvider.
type Provider struct {
	collections []string
	booksPer    int
	hadithsPer  int

	mu         sync.Mutex
	failSurahs map[int]bool
	failBooks  map[string]bool
	offline    bool
	calls      atomic.Int64
}

// New creates a mock with two collections of two books, three hadiths each.
func New() *Provider {
	return NewWithCollections([]string{"bukhari", "muslim"}, 2, 3)
}

// NewWithCollections creates a mock with a custom hadith corpus size.
func NewWithCollections(collections []string, booksPer, hadithsPer int) *Provider {
	return &Provider{
		collections: collections,
		booksPer:    booksPer,
		hadithsPer:  hadithsPer,
		failSurahs:  make(map[int]bool),
		failBooks:   make(map[string]bool),
	}
}

func (p *Provider) GetInfo() models.ProviderInfo {
	return models.ProviderInfo{ID: providerID, Name: "Mock Upstream"}
}

// AyahCount is the number of verses the mock serves for a surah.
func AyahCount(surah int) int {
	return 3 + surah%4
}

// FailSurah makes every fetch touching the surah fail with a transport error.
func (p *Provider) FailSurah(surah int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failSurahs[surah] = true
}

// FailBook makes fetching one book fail with a transport error.
func (p *Provider) FailBook(collectionID, bookNumber string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failBooks[collectionID+"/"+bookNumber] = true
}

// SetOffline makes every call fail with a transport error.
func (p *Provider) SetOffline(offline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offline = offline
}

// Calls returns how many fetches were attempted.
func (p *Provider) Calls() int64 {
	return p.calls.Load()
}

func (p *Provider) check(op string, failing bool) error {
	p.calls.Add(1)
	p.mu.Lock()
	offline := p.offline
	p.mu.Unlock()
	if offline || failing {
		return &models.UpstreamError{Provider: providerID, Op: op, Kind: models.ErrTransport,
			Cause: fmt.Errorf("simulated failure")}
	}
	return nil
}

func (p *Provider) surahFails(surah int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failSurahs[surah]
}

func (p *Provider) FetchSurahList(ctx context.Context) ([]models.SurahMetadata, error) {
	if err := p.check("surah list", false); err != nil {
		return nil, err
	}
	list := make([]models.SurahMetadata, 0, models.SurahCount)
	for n := 1; n <= models.SurahCount; n++ {
		revelation := "Meccan"
		if n%3 == 0 {
			revelation = "Medinan"
		}
		list = append(list, models.SurahMetadata{
			SurahNumber:        n,
			ArabicName:         fmt.Sprintf("سورة %d", n),
			EnglishName:        fmt.Sprintf("Surah %d", n),
			EnglishTranslation: fmt.Sprintf("Chapter %d", n),
			AyahCount:          AyahCount(n),
			RevelationType:     revelation,
		})
	}
	return list, nil
}

func verse(surah, ayah int) models.VerseRecord {
	return models.VerseRecord{
		SurahNumber:        surah,
		AyahNumber:         ayah,
		ArabicText:         fmt.Sprintf("آية %d:%d", surah, ayah),
		TranslationText:    textclean.Clean(fmt.Sprintf("Mock translation of %d:%d<sup>1</sup> [2]", surah, ayah)),
		SurahName:          fmt.Sprintf("Surah %d", surah),
		TotalVersesInSurah: AyahCount(surah),
	}
}

func (p *Provider) FetchVerse(ctx context.Context, surah, ayah int) (*models.VerseRecord, error) {
	if err := p.check(fmt.Sprintf("verse %d:%d", surah, ayah), p.surahFails(surah)); err != nil {
		return nil, err
	}
	if surah < 1 || surah > models.SurahCount || ayah < 1 || ayah > AyahCount(surah) {
		return nil, &models.UpstreamError{Provider: providerID, Op: fmt.Sprintf("verse %d:%d", surah, ayah),
			StatusCode: 404, Kind: models.ErrNotFound}
	}
	v := verse(surah, ayah)
	return &v, nil
}

func (p *Provider) FetchSurahVerses(ctx context.Context, surah int) ([]models.VerseRecord, error) {
	op := fmt.Sprintf("surah %d", surah)
	if err := p.check(op, p.surahFails(surah)); err != nil {
		return nil, err
	}
	if surah < 1 || surah > models.SurahCount {
		return nil, &models.UpstreamError{Provider: providerID, Op: op, StatusCode: 404, Kind: models.ErrNotFound}
	}
	verses := make([]models.VerseRecord, 0, AyahCount(surah))
	for a := 1; a <= AyahCount(surah); a++ {
		verses = append(verses, verse(surah, a))
	}
	return verses, nil
}

func (p *Provider) FetchCollections(ctx context.Context) ([]models.CollectionMetadata, error) {
	if err := p.check("collections", false); err != nil {
		return nil, err
	}
	var list []models.CollectionMetadata
	for _, id := range p.collections {
		list = append(list, models.CollectionMetadata{CollectionID: id, Name: "Mock " + id})
	}
	return list, nil
}

func (p *Provider) known(collectionID string) bool {
	for _, id := range p.collections {
		if id == collectionID {
			return true
		}
	}
	return false
}

func (p *Provider) FetchCollectionBooks(ctx context.Context, collectionID string) ([]models.Book, error) {
	op := "books of " + collectionID
	if err := p.check(op, false); err != nil {
		return nil, err
	}
	if !p.known(collectionID) {
		return nil, &models.UpstreamError{Provider: providerID, Op: op, StatusCode: 404, Kind: models.ErrNotFound}
	}
	books := make([]models.Book, 0, p.booksPer)
	for b := 1; b <= p.booksPer; b++ {
		books = append(books, models.Book{
			BookNumber:  strconv.Itoa(b),
			BookName:    fmt.Sprintf("Book %d", b),
			HadithCount: p.hadithsPer,
		})
	}
	return books, nil
}

func (p *Provider) FetchBookHadiths(ctx context.Context, collectionID, bookNumber string) ([]models.HadithRecord, error) {
	op := fmt.Sprintf("book %s/%s", collectionID, bookNumber)
	p.mu.Lock()
	failing := p.failBooks[collectionID+"/"+bookNumber]
	p.mu.Unlock()
	if err := p.check(op, failing); err != nil {
		return nil, err
	}
	book, err := strconv.Atoi(bookNumber)
	if !p.known(collectionID) || err != nil || book < 1 || book > p.booksPer {
		return nil, &models.UpstreamError{Provider: providerID, Op: op, StatusCode: 404, Kind: models.ErrNotFound}
	}
	hadiths := make([]models.HadithRecord, 0, p.hadithsPer)
	for i := 1; i <= p.hadithsPer; i++ {
		number := strconv.Itoa((book-1)*p.hadithsPer + i)
		hadiths = append(hadiths, models.HadithRecord{
			CollectionID:  collectionID,
			BookNumber:    bookNumber,
			ChapterNumber: bookNumber,
			HadithNumber:  number,
			ArabicText:    "حديث " + number,
			EnglishText:   textclean.Clean(fmt.Sprintf("Narrated Mock: hadith %s of %s (1)", number, collectionID)),
			Narrator:      "Mock",
			Grade:         "Sahih",
			Reference:     fmt.Sprintf("Mock %s %s", collectionID, number),
		})
	}
	return hadiths, nil
}
