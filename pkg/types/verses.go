// Package types holds the response shapes shared by the GraphQL and REST surfaces.
package types

// Surah identifies the chapter a verse belongs to.
type Surah struct {
	Number int `json:"number"`
}

// Script is one rendering of the Arabic verse text, e.g. "indopak" or "uthmani".
type Script struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Translation is the verse text in one language.
type Translation struct {
	LanguageID string `json:"languageId"`
	Text       string `json:"text"`
}

// Verse is the content fetched for one verse key.
type Verse struct {
	Key          string        `json:"-"`
	Number       int           `json:"number"`
	Surah        Surah         `json:"surah"`
	Scripts      []Script      `json:"scripts"`
	Translations []Translation `json:"translations"`
}

// MoodResponse is returned for a mood query. Verses follow the model's
// ordering with failed fetches removed.
type MoodResponse struct {
	Mood   string   `json:"mood"`
	Verses []*Verse `json:"verses"`
}
