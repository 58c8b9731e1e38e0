package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/dbx"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/articles"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/repomanager"
	"github.com/gosimple/slug"
)

// slugSuffixBytes controls the random suffix appended to every slug so that
// two articles titled identically still get distinct slugs.
const slugSuffixBytes = 3

// ArticleDraft carries the fields of a new article.
type ArticleDraft struct {
	Title       string
	Description string
	Body        string
	TagList     []string
}

// ArticlePatch carries a partial update. Nil fields are left untouched.
type ArticlePatch struct {
	Title       *string
	Description *string
	Body        *string
}

// ListQuery narrows and pages article listings. Author and FavoritedBy are
// usernames, resolved here before hitting storage.
type ListQuery struct {
	Tag         string
	Author      string
	FavoritedBy string
	Limit       int
	Offset      int
}

// ArticleList is a page of article projections plus the total match count.
type ArticleList struct {
	Articles []models.ArticleView
	Total    int
}

// ArticleService implements article CRUD, listing/feed queries, and the
// favorite/unfavorite operations with their favorites-count recomputation.
type ArticleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewArticleService constructs an ArticleService.
func NewArticleService(db *sql.DB, m repomanager.RepositoryManager) *ArticleService {
	return &ArticleService{db: db, repomanager: m}
}

// makeSlug derives a URL slug from the title plus a short random suffix.
func makeSlug(title string) (string, error) {
	suffix, err := common.MakeRandHexString(slugSuffixBytes)
	if err != nil {
		return "", err
	}
	return slug.Make(title) + "-" + suffix, nil
}

func validateDraft(draft ArticleDraft) error {
	ve := common.NewValidationError()
	if draft.Title == "" {
		ve.Add("title", "can't be blank")
	}
	if draft.Description == "" {
		ve.Add("description", "can't be blank")
	}
	if draft.Body == "" {
		ve.Add("body", "can't be blank")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// Create stores a new article authored by authorID and returns its
// projection for the author.
func (s *ArticleService) Create(ctx context.Context, authorID string, draft ArticleDraft) (*models.ArticleView, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	articleSlug, err := makeSlug(draft.Title)
	if err != nil {
		return nil, common.ErrorInternal
	}

	article := &models.Article{
		Slug:        articleSlug,
		Title:       draft.Title,
		Description: draft.Description,
		Body:        draft.Body,
		AuthorID:    authorID,
		TagList:     draft.TagList,
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := s.repomanager.Articles(tx).Create(ctx, article)
		return err
	}); err != nil {
		var ve *common.ValidationError
		if errors.As(err, &ve) {
			return nil, ve
		}
		return nil, fmt.Errorf("error creating article: %w", err)
	}

	return s.viewFor(ctx, article, authorID)
}

// Get returns the projection of the article with the given slug as seen by
// viewerID (may be empty for anonymous viewers).
func (s *ArticleService) Get(ctx context.Context, articleSlug, viewerID string) (*models.ArticleView, error) {
	article, err := s.repomanager.Articles(s.db).GetBySlug(ctx, articleSlug)
	if err != nil {
		return nil, err
	}
	return s.viewFor(ctx, article, viewerID)
}

// Update applies a partial patch to the article. Only its author may update
// it; a supplied title also refreshes the slug.
func (s *ArticleService) Update(ctx context.Context, articleSlug, requesterID string, patch ArticlePatch) (*models.ArticleView, error) {
	repo := s.repomanager.Articles(s.db)

	article, err := repo.GetBySlug(ctx, articleSlug)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != requesterID {
		return nil, common.ErrorForbidden
	}

	if patch.Title != nil && *patch.Title != article.Title {
		article.Title = *patch.Title
		if article.Slug, err = makeSlug(*patch.Title); err != nil {
			return nil, common.ErrorInternal
		}
	}
	if patch.Description != nil {
		article.Description = *patch.Description
	}
	if patch.Body != nil {
		article.Body = *patch.Body
	}

	if err := repo.Update(ctx, article); err != nil {
		return nil, err
	}

	return s.viewFor(ctx, article, requesterID)
}

// Delete removes the article and, through the storage schema, all comments
// it owns. Only the author may delete it.
func (s *ArticleService) Delete(ctx context.Context, articleSlug, requesterID string) error {
	repo := s.repomanager.Articles(s.db)

	article, err := repo.GetBySlug(ctx, articleSlug)
	if err != nil {
		return err
	}
	if article.AuthorID != requesterID {
		return common.ErrorForbidden
	}

	return repo.Delete(ctx, article.ID)
}

// List returns a page of articles matching the query, newest first.
func (s *ArticleService) List(ctx context.Context, query ListQuery, viewerID string) (*ArticleList, error) {
	userRepo := s.repomanager.Users(s.db)

	filter := articles.Filter{
		Tag:    query.Tag,
		Limit:  normalizeLimit(query.Limit),
		Offset: query.Offset,
	}

	if query.Author != "" {
		author, err := userRepo.GetByUsername(ctx, query.Author)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInternal
		}
		// An unknown author leaves the filter unset, matching the original
		// API behavior.
		if author != nil {
			filter.AuthorID = author.ID
		}
	}

	if query.FavoritedBy != "" {
		favoriter, err := userRepo.GetByUsername(ctx, query.FavoritedBy)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				// An unknown favoriter matches nothing.
				return &ArticleList{Articles: []models.ArticleView{}}, nil
			}
			return nil, common.ErrorInternal
		}
		filter.FavoritedByID = favoriter.ID
	}

	items, total, err := s.repomanager.Articles(s.db).List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return s.viewsFor(ctx, items, total, viewerID)
}

// Feed returns a page of articles authored by users the viewer follows,
// newest first.
func (s *ArticleService) Feed(ctx context.Context, viewerID string, limit, offset int) (*ArticleList, error) {
	items, total, err := s.repomanager.Articles(s.db).Feed(ctx, viewerID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	return s.viewsFor(ctx, items, total, viewerID)
}

// Favorite adds the article to the viewer's favorites set and recomputes the
// article's favorites count. Both run in one transaction so the derived
// count cannot be left behind by a crash between the two writes.
func (s *ArticleService) Favorite(ctx context.Context, articleSlug, viewerID string) (*models.ArticleView, error) {
	return s.setFavorite(ctx, articleSlug, viewerID, true)
}

// Unfavorite removes the article from the viewer's favorites set and
// recomputes the favorites count.
func (s *ArticleService) Unfavorite(ctx context.Context, articleSlug, viewerID string) (*models.ArticleView, error) {
	return s.setFavorite(ctx, articleSlug, viewerID, false)
}

func (s *ArticleService) setFavorite(ctx context.Context, articleSlug, viewerID string, favorite bool) (*models.ArticleView, error) {
	article, err := s.repomanager.Articles(s.db).GetBySlug(ctx, articleSlug)
	if err != nil {
		return nil, err
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		userRepo := s.repomanager.Users(tx)
		if favorite {
			if err := userRepo.Favorite(ctx, viewerID, article.ID); err != nil {
				return err
			}
		} else {
			if err := userRepo.Unfavorite(ctx, viewerID, article.ID); err != nil {
				return err
			}
		}
		count, err := s.repomanager.Articles(tx).RecalcFavoritesCount(ctx, article.ID)
		if err != nil {
			return err
		}
		article.FavoritesCount = count
		return nil
	}); err != nil {
		return nil, fmt.Errorf("error toggling favorite: %w", err)
	}

	return s.viewFor(ctx, article, viewerID)
}

// Tags returns every tag in use.
func (s *ArticleService) Tags(ctx context.Context) ([]string, error) {
	return s.repomanager.Articles(s.db).Tags(ctx)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}

// viewFor builds the viewer-parameterized projection of one article.
func (s *ArticleService) viewFor(ctx context.Context, article *models.Article, viewerID string) (*models.ArticleView, error) {
	userRepo := s.repomanager.Users(s.db)

	author, err := userRepo.GetByID(ctx, article.AuthorID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	following, favorited := false, false
	if viewerID != "" {
		if following, err = userRepo.IsFollowing(ctx, viewerID, author.ID); err != nil {
			return nil, common.ErrorInternal
		}
		if favorited, err = userRepo.IsFavorite(ctx, viewerID, article.ID); err != nil {
			return nil, common.ErrorInternal
		}
	}

	view := models.ArticleViewOf(article, models.ProfileViewOf(author, following), favorited)
	return &view, nil
}

func (s *ArticleService) viewsFor(ctx context.Context, items []*models.Article, total int, viewerID string) (*ArticleList, error) {
	views := make([]models.ArticleView, 0, len(items))
	for _, item := range items {
		view, err := s.viewFor(ctx, item, viewerID)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return &ArticleList{Articles: views, Total: total}, nil
}
