package hadithapi

import "encoding/json"

// EditionsResponse is GET /editions.json, keyed by collection id.
type EditionsResponse map[string]struct {
	Name       string    `json:"name"`
	Collection []Edition `json:"collection"`
}

type Edition struct {
	Name     string `json:"name"`
	Book     string `json:"book"`
	Language string `json:"language"`
}

// InfoResponse is GET /info.json, keyed by collection id.
type InfoResponse map[string]struct {
	Metadata InfoMetadata `json:"metadata"`
}

type InfoMetadata struct {
	Name           string                   `json:"name"`
	Sections       map[string]string        `json:"sections"`
	SectionDetails map[string]SectionDetail `json:"section_details"`
}

type SectionDetail struct {
	HadithNumberFirst json.Number `json:"hadithnumber_first"`
	HadithNumberLast  json.Number `json:"hadithnumber_last"`
}

// SectionResponse is GET /editions/{lang}-{collection}/sections/{n}.json.
type SectionResponse struct {
	Metadata struct {
		Name    string            `json:"name"`
		Section map[string]string `json:"section"`
	} `json:"metadata"`
	Hadiths []Hadith `json:"hadiths"`
}

type Hadith struct {
	HadithNumber json.Number `json:"hadithnumber"`
	ArabicNumber json.Number `json:"arabicnumber"`
	Text         string      `json:"text"`
	Grades       []Grade     `json:"grades"`
	Reference    struct {
		Book   json.Number `json:"book"`
		Hadith json.Number `json:"hadith"`
	} `json:"reference"`
}

type Grade struct {
	Name  string `json:"name"`
	Grade string `json:"grade"`
}
