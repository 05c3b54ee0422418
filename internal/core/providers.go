package core

import (
	"fmt"
	"net/http"

	"github.com/vrsandeep/noor-go/internal/config"
	"github.com/vrsandeep/noor-go/internal/models"
	"github.com/vrsandeep/noor-go/internal/upstream"
	"github.com/vrsandeep/noor-go/internal/upstream/alquran"
	"github.com/vrsandeep/noor-go/internal/upstream/hadithapi"
	"github.com/vrsandeep/noor-go/internal/upstream/mockupstream"
	"github.com/vrsandeep/noor-go/internal/upstream/qurancom"
)

// RegisterProviders registers every known provider and returns the ones
// the configuration selects. Outbound calls go through transport.
func RegisterProviders(cfg *config.Config, transport http.RoundTripper) (models.QuranProvider, models.HadithProvider, error) {
	q := cfg.Upstream.Quran
	h := cfg.Upstream.Hadith

	upstream.UnregisterAll()
	mock := mockupstream.NewWithCollections(h.Collections, 2, 5)
	upstream.RegisterQuran(alquran.New(q.BaseURL, q.Edition, q.Translation, transport))
	upstream.RegisterQuran(qurancom.New(q.BaseURL, q.Translation, transport))
	upstream.RegisterQuran(mock)
	upstream.RegisterHadith(hadithapi.New(h.BaseURL, h.Collections, transport))
	upstream.RegisterHadith(mock)

	quran, ok := upstream.GetQuran(q.Provider)
	if !ok {
		return nil, nil, fmt.Errorf("unknown quran provider %q", q.Provider)
	}
	hadith, ok := upstream.GetHadith(h.Provider)
	if !ok {
		return nil, nil, fmt.Errorf("unknown hadith provider %q", h.Provider)
	}
	return quran, hadith, nil
}
