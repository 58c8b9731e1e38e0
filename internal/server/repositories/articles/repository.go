package articles

import (
	"context"

	"github.com/dmitrijs2005/conduit/internal/server/models"
)

// Filter narrows article listings. Zero-valued fields apply no restriction;
// resolving usernames to IDs (and deciding what an unknown favoriter means)
// is the service's job.
type Filter struct {
	Tag           string
	AuthorID      string
	FavoritedByID string
	Limit         int
	Offset        int
}

// Repository is the storage contract for the article aggregate, including
// its ordered tag list and the denormalized favorites count.
type Repository interface {
	Create(ctx context.Context, article *models.Article) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filter Filter) ([]*models.Article, int, error)
	Feed(ctx context.Context, followerID string, limit, offset int) ([]*models.Article, int, error)

	RecalcFavoritesCount(ctx context.Context, articleID string) (int, error)
	Tags(ctx context.Context) ([]string, error)
}
