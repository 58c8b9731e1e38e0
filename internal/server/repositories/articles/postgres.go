// Package articles provides the PostgreSQL-backed repository for articles,
// their tag lists, and the favorites-count recomputation.
package articles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/dbx"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements article storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const articleColumns = `id, slug, title, description, body, author_id, favorites_count, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, article *models.Article) (*models.Article, error) {

	query :=
		`INSERT INTO articles (slug, title, description, body, author_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		article.Slug, article.Title, article.Description, article.Body, article.AuthorID).
		Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.FieldError("slug", "is already taken")
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.replaceTags(ctx, article.ID, article.TagList); err != nil {
		return nil, err
	}

	return article, nil
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE slug = $1`

	article := &models.Article{}
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&article.ID, &article.Slug, &article.Title, &article.Description, &article.Body,
		&article.AuthorID, &article.FavoritesCount, &article.CreatedAt, &article.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if article.TagList, err = r.tagsFor(ctx, article.ID); err != nil {
		return nil, err
	}

	return article, nil
}

func (r *PostgresRepository) Update(ctx context.Context, article *models.Article) error {
	query :=
		`UPDATE articles
		 SET slug = $2, title = $3, description = $4, body = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		article.ID, article.Slug, article.Title, article.Description, article.Body).
		Scan(&article.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// Delete removes the article; comments and tag rows go with it via cascading
// foreign keys.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// List returns a page of articles matching the filter, newest first, plus the
// total match count.
func (r *PostgresRepository) List(ctx context.Context, filter Filter) ([]*models.Article, int, error) {

	var where []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Tag != "" {
		where = append(where, `id IN (SELECT article_id FROM article_tags WHERE tag = `+arg(filter.Tag)+`)`)
	}
	if filter.AuthorID != "" {
		where = append(where, `author_id = `+arg(filter.AuthorID))
	}
	if filter.FavoritedByID != "" {
		where = append(where, `id IN (SELECT article_id FROM favorites WHERE user_id = `+arg(filter.FavoritedByID)+`)`)
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `SELECT ` + articleColumns + ` FROM articles` + cond +
		` ORDER BY created_at DESC LIMIT ` + arg(filter.Limit) + ` OFFSET ` + arg(filter.Offset)

	items, err := r.selectArticles(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// Feed returns a page of articles authored by users the follower follows,
// newest first, plus the total count.
func (r *PostgresRepository) Feed(ctx context.Context, followerID string, limit, offset int) ([]*models.Article, int, error) {

	cond := ` WHERE author_id IN (SELECT followed_id FROM follows WHERE follower_id = $1)`

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`+cond, followerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `SELECT ` + articleColumns + ` FROM articles` + cond +
		` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	items, err := r.selectArticles(ctx, query, followerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// RecalcFavoritesCount recomputes the denormalized counter from the favorites
// table. Read-repair: the count is always re-derived from its source rather
// than incremented in place.
func (r *PostgresRepository) RecalcFavoritesCount(ctx context.Context, articleID string) (int, error) {
	query :=
		`UPDATE articles
		 SET favorites_count = (SELECT COUNT(*) FROM favorites WHERE article_id = $1)
		 WHERE id = $1
		 RETURNING favorites_count
		 `

	var count int
	err := r.db.QueryRowContext(ctx, query, articleID).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return count, nil
}

// Tags returns every distinct tag in use.
func (r *PostgresRepository) Tags(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT tag FROM article_tags ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		result = append(result, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) selectArticles(ctx context.Context, query string, args ...any) ([]*models.Article, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select articles: %w", err)
	}
	defer rows.Close()

	var result []*models.Article
	for rows.Next() {
		var item models.Article
		if err := rows.Scan(
			&item.ID, &item.Slug, &item.Title, &item.Description, &item.Body,
			&item.AuthorID, &item.FavoritesCount, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, item := range result {
		if item.TagList, err = r.tagsFor(ctx, item.ID); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (r *PostgresRepository) tagsFor(ctx context.Context, articleID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tag FROM article_tags WHERE article_id = $1 ORDER BY position`, articleID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *PostgresRepository) replaceTags(ctx context.Context, articleID string, tags []string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	for i, tag := range tags {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO article_tags (article_id, position, tag) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			articleID, i, tag); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}
