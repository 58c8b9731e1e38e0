package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/repomanager"
)

// CommentService implements commenting on articles. Comments belong to their
// article; the storage schema removes them when the article is deleted.
type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewCommentService constructs a CommentService.
func NewCommentService(db *sql.DB, m repomanager.RepositoryManager) *CommentService {
	return &CommentService{db: db, repomanager: m}
}

// Add attaches a comment by authorID to the article with the given slug.
func (s *CommentService) Add(ctx context.Context, articleSlug, authorID, body string) (*models.CommentView, error) {
	if body == "" {
		return nil, common.FieldError("body", "can't be blank")
	}

	article, err := s.repomanager.Articles(s.db).GetBySlug(ctx, articleSlug)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{ArticleID: article.ID, AuthorID: authorID, Body: body}
	if comment, err = s.repomanager.Comments(s.db).Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("error creating comment: %w", err)
	}

	return s.viewFor(ctx, comment, authorID)
}

// List returns the article's comments, newest first, projected for viewerID
// (may be empty for anonymous viewers).
func (s *CommentService) List(ctx context.Context, articleSlug, viewerID string) ([]models.CommentView, error) {
	article, err := s.repomanager.Articles(s.db).GetBySlug(ctx, articleSlug)
	if err != nil {
		return nil, err
	}

	items, err := s.repomanager.Comments(s.db).ListByArticle(ctx, article.ID)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, 0, len(items))
	for _, item := range items {
		view, err := s.viewFor(ctx, item, viewerID)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// Delete removes a comment. Only the comment's author may delete it; the
// comment must belong to the article named by the slug.
func (s *CommentService) Delete(ctx context.Context, articleSlug, commentID, requesterID string) error {
	article, err := s.repomanager.Articles(s.db).GetBySlug(ctx, articleSlug)
	if err != nil {
		return err
	}

	repo := s.repomanager.Comments(s.db)
	comment, err := repo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.ArticleID != article.ID {
		return common.ErrorNotFound
	}
	if comment.AuthorID != requesterID {
		return common.ErrorForbidden
	}

	return repo.Delete(ctx, comment.ID)
}

func (s *CommentService) viewFor(ctx context.Context, comment *models.Comment, viewerID string) (*models.CommentView, error) {
	userRepo := s.repomanager.Users(s.db)

	author, err := userRepo.GetByID(ctx, comment.AuthorID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	following := false
	if viewerID != "" {
		if following, err = userRepo.IsFollowing(ctx, viewerID, author.ID); err != nil {
			return nil, common.ErrorInternal
		}
	}

	view := models.CommentViewOf(comment, models.ProfileViewOf(author, following))
	return &view, nil
}
