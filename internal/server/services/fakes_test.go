package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/dbx"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	articlesrepo "github.com/dmitrijs2005/conduit/internal/server/repositories/articles"
	commentsrepo "github.com/dmitrijs2005/conduit/internal/server/repositories/comments"
	usersrepo "github.com/dmitrijs2005/conduit/internal/server/repositories/users"
)

// In-memory fakes standing in for the PostgreSQL repositories. The service
// tests exercise business rules; SQL mapping is covered in the repository
// packages.

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type fakeUsersRepo struct {
	users     []*models.User
	following map[string]bool
	favorites map[string]bool

	createErr error
	updateErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		following: map[string]bool{},
		favorites: map[string]bool{},
	}
}

func pairKey(a, b string) string { return a + "|" + b }

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return nil, common.FieldError("username", "is already taken")
		}
		if existing.Email == u.Email {
			return nil, common.FieldError("email", "is already taken")
		}
	}
	u.ID = fmt.Sprintf("u-%d", len(f.users)+1)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) Update(ctx context.Context, user *models.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i, u := range f.users {
		if u.ID == user.ID {
			f.users[i] = user
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeUsersRepo) Follow(ctx context.Context, followerID, followedID string) error {
	f.following[pairKey(followerID, followedID)] = true
	return nil
}

func (f *fakeUsersRepo) Unfollow(ctx context.Context, followerID, followedID string) error {
	delete(f.following, pairKey(followerID, followedID))
	return nil
}

func (f *fakeUsersRepo) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	return f.following[pairKey(followerID, followedID)], nil
}

func (f *fakeUsersRepo) Favorite(ctx context.Context, userID, articleID string) error {
	f.favorites[pairKey(userID, articleID)] = true
	return nil
}

func (f *fakeUsersRepo) Unfavorite(ctx context.Context, userID, articleID string) error {
	delete(f.favorites, pairKey(userID, articleID))
	return nil
}

func (f *fakeUsersRepo) IsFavorite(ctx context.Context, userID, articleID string) (bool, error) {
	return f.favorites[pairKey(userID, articleID)], nil
}

func (f *fakeUsersRepo) favoritesCountFor(articleID string) int {
	count := 0
	for key := range f.favorites {
		if strings.HasSuffix(key, "|"+articleID) {
			count++
		}
	}
	return count
}

type fakeArticlesRepo struct {
	articles []*models.Article
	userRepo *fakeUsersRepo

	createErr error
}

func (f *fakeArticlesRepo) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.articles {
		if existing.Slug == a.Slug {
			return nil, common.FieldError("slug", "is already taken")
		}
	}
	a.ID = fmt.Sprintf("a-%d", len(f.articles)+1)
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	f.articles = append(f.articles, a)
	return a, nil
}

func (f *fakeArticlesRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	for _, a := range f.articles {
		if a.Slug == slug {
			copied := *a
			return &copied, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeArticlesRepo) Update(ctx context.Context, article *models.Article) error {
	for i, a := range f.articles {
		if a.ID == article.ID {
			f.articles[i] = article
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeArticlesRepo) Delete(ctx context.Context, id string) error {
	for i, a := range f.articles {
		if a.ID == id {
			f.articles = append(f.articles[:i], f.articles[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeArticlesRepo) List(ctx context.Context, filter articlesrepo.Filter) ([]*models.Article, int, error) {
	var matched []*models.Article
	for _, a := range f.articles {
		if filter.AuthorID != "" && a.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Tag != "" && !containsTag(a.TagList, filter.Tag) {
			continue
		}
		if filter.FavoritedByID != "" && !f.userRepo.favorites[pairKey(filter.FavoritedByID, a.ID)] {
			continue
		}
		matched = append(matched, a)
	}
	total := len(matched)
	if filter.Offset < len(matched) {
		matched = matched[filter.Offset:]
	} else {
		matched = nil
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (f *fakeArticlesRepo) Feed(ctx context.Context, followerID string, limit, offset int) ([]*models.Article, int, error) {
	var matched []*models.Article
	for _, a := range f.articles {
		if f.userRepo.following[pairKey(followerID, a.AuthorID)] {
			matched = append(matched, a)
		}
	}
	return matched, len(matched), nil
}

func (f *fakeArticlesRepo) RecalcFavoritesCount(ctx context.Context, articleID string) (int, error) {
	count := f.userRepo.favoritesCountFor(articleID)
	for _, a := range f.articles {
		if a.ID == articleID {
			a.FavoritesCount = count
			return count, nil
		}
	}
	return 0, common.ErrorNotFound
}

func (f *fakeArticlesRepo) Tags(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	tags := []string{}
	for _, a := range f.articles {
		for _, tag := range a.TagList {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags, nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

type fakeCommentsRepo struct {
	comments []*models.Comment
}

func (f *fakeCommentsRepo) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	c.ID = fmt.Sprintf("c-%d", len(f.comments)+1)
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	f.comments = append(f.comments, c)
	return c, nil
}

func (f *fakeCommentsRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	for _, c := range f.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, common.ErrorNotFound
}

// ListByArticle returns newest first, mirroring the SQL ordering.
func (f *fakeCommentsRepo) ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error) {
	var result []*models.Comment
	for i := len(f.comments) - 1; i >= 0; i-- {
		if f.comments[i].ArticleID == articleID {
			result = append(result, f.comments[i])
		}
	}
	return result, nil
}

func (f *fakeCommentsRepo) Delete(ctx context.Context, id string) error {
	for i, c := range f.comments {
		if c.ID == id {
			f.comments = append(f.comments[:i], f.comments[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeRepoManager struct {
	userRepo    *fakeUsersRepo
	articleRepo *fakeArticlesRepo
	commentRepo *fakeCommentsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	userRepo := newFakeUsersRepo()
	return &fakeRepoManager{
		userRepo:    userRepo,
		articleRepo: &fakeArticlesRepo{userRepo: userRepo},
		commentRepo: &fakeCommentsRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error      { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository            { return m.userRepo }
func (m *fakeRepoManager) Articles(db dbx.DBTX) articlesrepo.Repository      { return m.articleRepo }
func (m *fakeRepoManager) Comments(db dbx.DBTX) commentsrepo.Repository      { return m.commentRepo }

func (m *fakeRepoManager) addUser(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com"}
	u, err := m.userRepo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("addUser error: %v", err)
	}
	return u
}

func (m *fakeRepoManager) addArticle(t *testing.T, authorID, title string, tags ...string) *models.Article {
	t.Helper()
	a := &models.Article{
		Slug:        fmt.Sprintf("%s-%d", title, len(m.articleRepo.articles)+1),
		Title:       title,
		Description: "desc",
		Body:        "body",
		AuthorID:    authorID,
		TagList:     tags,
	}
	a, err := m.articleRepo.Create(context.Background(), a)
	if err != nil {
		t.Fatalf("addArticle error: %v", err)
	}
	return a
}
