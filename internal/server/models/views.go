package models

import "time"

// Views are read-only shapings of the entities for API consumption. They are
// built by pure functions of (entity, viewer-derived facts): whether the
// viewer follows the author and whether the viewer favorited the article are
// passed in explicitly, so the views carry no hidden receiver state.

// UserView is the self-facing projection, including a freshly issued token.
type UserView struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
}

// ProfileView is the public projection of a user.
type ProfileView struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Image     string `json:"image"`
	Following bool   `json:"following"`
}

// ArticleView is the projection of an article for a particular viewer.
type ArticleView struct {
	Slug           string      `json:"slug"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Body           string      `json:"body"`
	TagList        []string    `json:"tagList"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
	Favorited      bool        `json:"favorited"`
	FavoritesCount int         `json:"favoritesCount"`
	Author         ProfileView `json:"author"`
}

// CommentView is the projection of a comment for a particular viewer.
type CommentView struct {
	ID        string      `json:"id"`
	Body      string      `json:"body"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Author    ProfileView `json:"author"`
}

// UserViewOf assembles the auth projection for the user itself.
func UserViewOf(u *User, token string) UserView {
	return UserView{
		Username: u.Username,
		Email:    u.Email,
		Token:    token,
		Bio:      u.Bio,
		Image:    u.Image,
	}
}

// ProfileViewOf assembles the public projection of u. The following flag is
// true iff the viewer follows u; anonymous viewers pass false.
func ProfileViewOf(u *User, following bool) ProfileView {
	return ProfileView{
		Username:  u.Username,
		Bio:       u.Bio,
		Image:     u.ImageOrDefault(),
		Following: following,
	}
}

// ArticleViewOf assembles the projection of a for a viewer. The favorited
// flag is true iff the viewer's favorites set contains the article.
func ArticleViewOf(a *Article, author ProfileView, favorited bool) ArticleView {
	tags := a.TagList
	if tags == nil {
		tags = []string{}
	}
	return ArticleView{
		Slug:           a.Slug,
		Title:          a.Title,
		Description:    a.Description,
		Body:           a.Body,
		TagList:        tags,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		Favorited:      favorited,
		FavoritesCount: a.FavoritesCount,
		Author:         author,
	}
}

// CommentViewOf assembles the projection of c for a viewer.
func CommentViewOf(c *Comment, author ProfileView) CommentView {
	return CommentView{
		ID:        c.ID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Author:    author,
	}
}
