// Package users provides the PostgreSQL-backed repository for user accounts
// and their follow/favorite sets.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/dbx"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements user storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, email, password_hash, password_salt, bio, image, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email,
		&user.PasswordHash, &user.PasswordSalt,
		&user.Bio, &user.Image, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// uniquenessError translates a unique-constraint violation on username or
// email into a field-level validation error. Returns nil for other errors.
func uniquenessError(err error) *common.ValidationError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "username"):
		return common.FieldError("username", "is already taken")
	case strings.Contains(pgErr.ConstraintName, "email"):
		return common.FieldError("email", "is already taken")
	default:
		return nil
	}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, email, password_hash, password_salt, bio, image)
         VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.PasswordSalt, user.Bio, user.Image).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if ve := uniquenessError(err); ve != nil {
			return nil, ve
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users
		 SET username = $2, email = $3, password_hash = $4, password_salt = $5,
		     bio = $6, image = $7, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.PasswordSalt,
		user.Bio, user.Image).Scan(&user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		if ve := uniquenessError(err); ve != nil {
			return ve
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// Follow adds followedID to the follower's following set. Idempotent.
func (r *PostgresRepository) Follow(ctx context.Context, followerID, followedID string) error {
	query :=
		`INSERT INTO follows (follower_id, followed_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING
		 `
	if _, err := r.db.ExecContext(ctx, query, followerID, followedID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Unfollow removes followedID from the follower's following set. Idempotent.
func (r *PostgresRepository) Unfollow(ctx context.Context, followerID, followedID string) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2`
	if _, err := r.db.ExecContext(ctx, query, followerID, followedID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followed_id = $2)`
	var following bool
	if err := r.db.QueryRowContext(ctx, query, followerID, followedID).Scan(&following); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return following, nil
}

// Favorite adds articleID to the user's favorites set. The composite primary
// key plus ON CONFLICT DO NOTHING keeps the operation idempotent: favoriting
// twice leaves the set as favoriting once.
func (r *PostgresRepository) Favorite(ctx context.Context, userID, articleID string) error {
	query :=
		`INSERT INTO favorites (user_id, article_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING
		 `
	if _, err := r.db.ExecContext(ctx, query, userID, articleID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Unfavorite removes articleID from the user's favorites set. Idempotent.
func (r *PostgresRepository) Unfavorite(ctx context.Context, userID, articleID string) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND article_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, articleID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IsFavorite(ctx context.Context, userID, articleID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND article_id = $2)`
	var favorited bool
	if err := r.db.QueryRowContext(ctx, query, userID, articleID).Scan(&favorited); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return favorited, nil
}
