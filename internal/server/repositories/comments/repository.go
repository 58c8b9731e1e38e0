package comments

import (
	"context"

	"github.com/dmitrijs2005/conduit/internal/server/models"
)

// Repository is the storage contract for comments.
type Repository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error)
	Delete(ctx context.Context, id string) error
}
