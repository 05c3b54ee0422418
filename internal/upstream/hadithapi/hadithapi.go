// Package hadithapi reads hadith collections from the fawazahmed0
// hadith-api editions served over jsDelivr. Arabic and English are
// separate editions; either may be missing for a book, not both.
package hadithapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/vrsandeep/noor-go/internal/models"
	"github.com/vrsandeep/noor-go/internal/textclean"
	"github.com/vrsandeep/noor-go/internal/upstream"
	"github.com/vrsandeep/noor-go/internal/util"
)

const providerID = "hadithapi"

var narratorPrefix = regexp.MustCompile(`^Narrated\s+([^:]{1,120}):\s*`)

// Provider implements models.HadithProvider.
type Provider struct {
	client      *resty.Client
	collections []string
}

// New creates a provider limited to the given collection ids. An empty
// list means every collection the API offers.
func New(baseURL string, collections []string, transport http.RoundTripper) *Provider {
	return &Provider{
		client:      upstream.NewClient(strings.TrimRight(baseURL, "/"), transport),
		collections: collections,
	}
}

// GetInfo returns static information about this provider.
func (p *Provider) GetInfo() models.ProviderInfo {
	return models.ProviderInfo{ID: providerID, Name: "Hadith API"}
}

// FetchCollections returns the configured collections with their display names.
// Books are fetched separately.
func (p *Provider) FetchCollections(ctx context.Context) ([]models.CollectionMetadata, error) {
	var editions EditionsResponse
	if err := upstream.GetJSON(ctx, p.client, providerID, "collections", "/editions.json", &editions); err != nil {
		return nil, err
	}

	ids := p.collections
	if len(ids) == 0 {
		for id := range editions {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}
	var list []models.CollectionMetadata
	for _, id := range ids {
		edition, ok := editions[id]
		if !ok {
			log.Printf("hadithapi: collection '%s' is not offered upstream, skipping", id)
			continue
		}
		list = append(list, models.CollectionMetadata{CollectionID: id, Name: edition.Name})
	}
	return list, nil
}

// FetchCollectionBooks returns the books (sections) of a collection in natural order.
func (p *Provider) FetchCollectionBooks(ctx context.Context, collectionID string) ([]models.Book, error) {
	op := fmt.Sprintf("books of %s", collectionID)
	var info InfoResponse
	if err := upstream.GetJSON(ctx, p.client, providerID, op, "/info.json", &info); err != nil {
		return nil, err
	}
	entry, ok := info[collectionID]
	if !ok {
		return nil, &models.UpstreamError{Provider: providerID, Op: op, Kind: models.ErrNotFound}
	}

	var books []models.Book
	for number, name := range entry.Metadata.Sections {
		// Section "0" is the unnamed preamble some collections carry.
		if number == "0" && name == "" {
			continue
		}
		books = append(books, models.Book{
			BookNumber:  number,
			BookName:    name,
			HadithCount: hadithCount(entry.Metadata.SectionDetails[number]),
		})
	}
	sort.Slice(books, func(i, j int) bool {
		return util.NaturalSortLess(books[i].BookNumber, books[j].BookNumber)
	})
	return books, nil
}

func hadithCount(d SectionDetail) int {
	first, err1 := d.HadithNumberFirst.Float64()
	last, err2 := d.HadithNumberLast.Float64()
	if err1 != nil || err2 != nil || last < first || first == 0 {
		return 0
	}
	return int(last-first) + 1
}

// FetchBookHadiths returns the hadiths of one book, Arabic and English merged
// by hadith number.
func (p *Provider) FetchBookHadiths(ctx context.Context, collectionID, bookNumber string) ([]models.HadithRecord, error) {
	op := fmt.Sprintf("book %s/%s", collectionID, bookNumber)
	english, engErr := p.section(ctx, op, "eng-"+collectionID, bookNumber)
	arabic, araErr := p.section(ctx, op, "ara-"+collectionID, bookNumber)
	switch {
	case engErr != nil && araErr != nil:
		// Report not-found only when both editions agree on it.
		if errors.Is(engErr, models.ErrNotFound) && errors.Is(araErr, models.ErrNotFound) {
			return nil, engErr
		}
		if !errors.Is(engErr, models.ErrNotFound) {
			return nil, engErr
		}
		return nil, araErr
	case engErr != nil:
		log.Printf("hadithapi: English edition of %s unavailable, continuing with Arabic only: %v", op, engErr)
	case araErr != nil:
		log.Printf("hadithapi: Arabic edition of %s unavailable, continuing with English only: %v", op, araErr)
	}

	primary := english
	arabicByNumber := make(map[string]string, len(arabic.Hadiths))
	if engErr != nil {
		primary = arabic
	} else {
		for _, h := range arabic.Hadiths {
			arabicByNumber[h.HadithNumber.String()] = h.Text
		}
	}

	name := primary.Metadata.Name
	records := make([]models.HadithRecord, 0, len(primary.Hadiths))
	for _, h := range primary.Hadiths {
		number := h.HadithNumber.String()
		if number == "" {
			return nil, upstream.Malformed(providerID, op, "hadith without number")
		}
		record := models.HadithRecord{
			CollectionID:  collectionID,
			BookNumber:    bookNumber,
			ChapterNumber: bookNumber,
			HadithNumber:  number,
			Reference:     strings.TrimSpace(fmt.Sprintf("%s %s", name, number)),
		}
		if h.Reference.Book.String() != "" {
			record.ChapterNumber = h.Reference.Book.String()
		}
		if len(h.Grades) > 0 {
			record.Grade = h.Grades[0].Grade
		}
		if engErr == nil {
			record.EnglishText = textclean.Clean(h.Text)
			record.Narrator = narrator(record.EnglishText)
			record.ArabicText = textclean.Clean(arabicByNumber[number])
		} else {
			record.ArabicText = textclean.Clean(h.Text)
		}
		records = append(records, record)
	}
	return records, nil
}

func (p *Provider) section(ctx context.Context, op, edition, bookNumber string) (*SectionResponse, error) {
	var resp SectionResponse
	path := fmt.Sprintf("/editions/%s/sections/%s.json", edition, bookNumber)
	if err := upstream.GetJSON(ctx, p.client, providerID, op+" "+edition, path, &resp); err != nil {
		return &SectionResponse{}, err
	}
	return &resp, nil
}

// narrator reads the chain's last link from a leading "Narrated X:".
func narrator(text string) string {
	m := narratorPrefix.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
