// Package models defines the persistent entities of the Conduit server and
// the viewer-parameterized views derived from them.
package models

import "time"

// DefaultUserImage is served whenever a user has not set a profile image.
const DefaultUserImage = "https://static.productionready.io/images/smiley-cyrus.jpg"

// User is a registered account. Username and Email are unique across all
// users; PasswordHash/PasswordSalt are managed by the auth package.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	PasswordSalt string
	Bio          string
	Image        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ImageOrDefault returns the user's image URL, or the placeholder when unset.
func (u *User) ImageOrDefault() string {
	if u.Image == "" {
		return DefaultUserImage
	}
	return u.Image
}
