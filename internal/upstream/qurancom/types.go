package qurancom

// ChapterListResponse is GET /api/v4/chapters.
type ChapterListResponse struct {
	Chapters []Chapter `json:"chapters"`
}

// ChapterResponse is GET /api/v4/chapters/{n}.
type ChapterResponse struct {
	Chapter Chapter `json:"chapter"`
}

type Chapter struct {
	ID              int    `json:"id"`
	RevelationPlace string `json:"revelation_place"`
	NameSimple      string `json:"name_simple"`
	NameArabic      string `json:"name_arabic"`
	VersesCount     int    `json:"verses_count"`
	TranslatedName  struct {
		Name string `json:"name"`
	} `json:"translated_name"`
}

// VersesResponse is GET /api/v4/verses/by_chapter/{n}.
type VersesResponse struct {
	Verses     []Verse    `json:"verses"`
	Pagination Pagination `json:"pagination"`
}

// VerseResponse is GET /api/v4/verses/by_key/{s}:{a}.
type VerseResponse struct {
	Verse Verse `json:"verse"`
}

type Verse struct {
	ID           int           `json:"id"`
	VerseNumber  int           `json:"verse_number"`
	VerseKey     string        `json:"verse_key"`
	TextUthmani  string        `json:"text_uthmani"`
	Translations []Translation `json:"translations"`
}

// Translation text carries <sup foot_note=...> markup.
type Translation struct {
	ID         int    `json:"id"`
	ResourceID int    `json:"resource_id"`
	Text       string `json:"text"`
}

type Pagination struct {
	PerPage     int  `json:"per_page"`
	CurrentPage int  `json:"current_page"`
	NextPage    *int `json:"next_page"`
	TotalPages  int  `json:"total_pages"`
}
