package models

import "time"

// Article is an authored post. Slug is unique and derived from the title.
// FavoritesCount is denormalized: it is recomputed from the favorites table
// after every favorite/unfavorite, never incremented in place.
type Article struct {
	ID             string
	Slug           string
	Title          string
	Description    string
	Body           string
	AuthorID       string
	FavoritesCount int
	TagList        []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
