package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vrsandeep/noor-go/internal/models"
)

const defaultSearchLimit = 50

type surahResponse struct {
	SurahNumber int                  `json:"surahNumber"`
	Verses      []models.VerseRecord `json:"verses"`
}

type searchResponse[T any] struct {
	Query   string `json:"query"`
	Results []T    `json:"results"`
}

// parseSurah reads a surah number URL parameter in 1..114.
func parseSurah(r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "surah"))
	return n, err == nil && n >= 1 && n <= models.SurahCount
}

func searchParams(r *http.Request) (string, int) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultSearchLimit
	}
	return strings.TrimSpace(r.URL.Query().Get("q")), limit
}

func (s *Server) handleListSurahs(w http.ResponseWriter, r *http.Request) {
	list, err := s.app.Content().SurahList(r.Context())
	if err != nil {
		respondContentError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetSurah(w http.ResponseWriter, r *http.Request) {
	surah, ok := parseSurah(r)
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid surah number")
		return
	}
	verses, err := s.app.Content().SurahVerses(r.Context(), surah)
	if err != nil {
		respondContentError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, surahResponse{SurahNumber: surah, Verses: verses})
}

func (s *Server) handleGetVerse(w http.ResponseWriter, r *http.Request) {
	surah, ok := parseSurah(r)
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid surah number")
		return
	}
	ayah, err := strconv.Atoi(chi.URLParam(r, "ayah"))
	if err != nil || ayah < 1 {
		RespondWithError(w, http.StatusBadRequest, "Invalid ayah number")
		return
	}
	verse, err := s.app.Content().Verse(r.Context(), surah, ayah)
	if err != nil {
		respondContentError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, verse)
}

func (s *Server) handleSearchQuran(w http.ResponseWriter, r *http.Request) {
	query, limit := searchParams(r)
	if query == "" {
		RespondWithError(w, http.StatusBadRequest, "Search query 'q' is required")
		return
	}
	results := s.app.Content().SearchVerses(r.Context(), query, limit)
	RespondWithJSON(w, http.StatusOK, searchResponse[models.VerseRecord]{Query: query, Results: results})
}

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	list, err := s.app.Content().Collections(r.Context())
	if err != nil {
		respondContentError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, list)
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.app.Content().CollectionBooks(r.Context(), chi.URLParam(r, "collection"))
	if err != nil {
		respondContentError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, books)
}

func (s *Server) handleGetBookHadiths(w http.ResponseWriter, r *http.Request) {
	hadiths, err := s.app.Content().BookHadiths(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "book"))
	if err != nil {
		respondContentError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, hadiths)
}

func (s *Server) handleSearchHadith(w http.ResponseWriter, r *http.Request) {
	query, limit := searchParams(r)
	if query == "" {
		RespondWithError(w, http.StatusBadRequest, "Search query 'q' is required")
		return
	}
	results := s.app.Content().SearchHadiths(r.Context(), query, limit)
	RespondWithJSON(w, http.StatusOK, searchResponse[models.HadithRecord]{Query: query, Results: results})
}
