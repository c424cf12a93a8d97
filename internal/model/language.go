package model

// Language is seeded reference data; snippets hold a language_id.
type Language struct {
	ID   string `json:"id"   db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}
