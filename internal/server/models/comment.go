package models

import "time"

// Comment belongs to an article and is removed when the article is deleted.
type Comment struct {
	ID        string
	ArticleID string
	AuthorID  string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
