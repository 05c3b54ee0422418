package alquran

// Envelope wraps every api.alquran.cloud response.
type Envelope[T any] struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   T      `json:"data"`
}

// SurahSummary is one entry of GET /v1/surah.
type SurahSummary struct {
	Number                 int    `json:"number"`
	Name                   string `json:"name"`
	EnglishName            string `json:"englishName"`
	EnglishNameTranslation string `json:"englishNameTranslation"`
	NumberOfAyahs          int    `json:"numberOfAyahs"`
	RevelationType         string `json:"revelationType"`
}

// SurahEdition is GET /v1/surah/{n}/{edition}.
type SurahEdition struct {
	SurahSummary
	Ayahs []Ayah `json:"ayahs"`
}

// Ayah is one verse inside an edition.
type Ayah struct {
	Number        int    `json:"number"`
	Text          string `json:"text"`
	NumberInSurah int    `json:"numberInSurah"`
}

// AyahEdition is GET /v1/ayah/{surah}:{ayah}/{edition}.
type AyahEdition struct {
	Ayah
	Surah SurahSummary `json:"surah"`
}
