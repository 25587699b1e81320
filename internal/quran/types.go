package quran

import "fmt"

// Translation is one translated rendering of a verse.
type Translation struct {
	ID           int    `json:"id,omitempty"`
	ResourceID   int    `json:"resource_id"`
	ResourceName string `json:"resource_name,omitempty"`
	Text         string `json:"text"`
	LanguageName string `json:"language_name,omitempty"`
	VerseKey     string `json:"verse_key,omitempty"`
}

// Verse carries the verse-level fields this service asks for.
type Verse struct {
	ID                   int           `json:"id"`
	VerseNumber          int           `json:"verse_number"`
	VerseKey             string        `json:"verse_key"`
	ChapterID            int           `json:"chapter_id,omitempty"`
	JuzNumber            int           `json:"juz_number,omitempty"`
	PageNumber           int           `json:"page_number,omitempty"`
	TextIndopak          string        `json:"text_indopak,omitempty"`
	TextUthmani          string        `json:"text_uthmani,omitempty"`
	TextUthmaniSimple    string        `json:"text_uthmani_simple,omitempty"`
	TextImlaeiSimple     string        `json:"text_imlaei_simple,omitempty"`
	TextIndopakNastaleeq string        `json:"text_indopak_nastaleeq,omitempty"`
	Translations         []Translation `json:"translations,omitempty"`
}

// VerseByKeyResponse is the body of GET verses/by_key/{key}.
type VerseByKeyResponse struct {
	Verse Verse `json:"verse"`
}

// TranslationResource describes an available translation.
type TranslationResource struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	AuthorName     string `json:"author_name"`
	Slug           string `json:"slug"`
	LanguageName   string `json:"language_name"`
	TranslatedName struct {
		Name         string `json:"name"`
		LanguageName string `json:"language_name"`
	} `json:"translated_name"`
}

// TranslationResourcesResponse is the body of GET resources/translations.
type TranslationResourcesResponse struct {
	Translations []TranslationResource `json:"translations"`
}

// APIError is returned for non-2xx content API responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quran api: status %d: %s", e.StatusCode, e.Body)
}
