package users

import (
	"context"

	"github.com/dmitrijs2005/conduit/internal/server/models"
)

// Repository is the storage contract for the user aggregate, including the
// follow and favorite reference sets held on the user side.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error

	Follow(ctx context.Context, followerID, followedID string) error
	Unfollow(ctx context.Context, followerID, followedID string) error
	IsFollowing(ctx context.Context, followerID, followedID string) (bool, error)

	Favorite(ctx context.Context, userID, articleID string) error
	Unfavorite(ctx context.Context, userID, articleID string) error
	IsFavorite(ctx context.Context, userID, articleID string) (bool, error)
}
