// Package services contains server-side business logic. This file implements
// UserService: registration, login, and the self-facing user projection with
// a freshly issued JWT.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/server/auth"
	"github.com/dmitrijs2005/conduit/internal/server/config"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/repomanager"
)

var (
	usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRegexp    = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

// UserPatch carries a partial update of the account. Nil fields are left
// untouched; a set field replaces the stored value.
type UserPatch struct {
	Username *string
	Email    *string
	Password *string
	Bio      *string
	Image    *string
}

// UserService provides account-related operations:
// - Register: create users
// - Login: verify credentials and mint a token
// - GetCurrent / Update: self-facing reads and partial updates
type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
	}
}

func validateRegistration(username, email, password string) error {
	ve := common.NewValidationError()
	if username == "" {
		ve.Add("username", "can't be blank")
	} else if !usernameRegexp.MatchString(username) {
		ve.Add("username", "is invalid")
	}
	if email == "" {
		ve.Add("email", "can't be blank")
	} else if !emailRegexp.MatchString(email) {
		ve.Add("email", "is invalid")
	}
	if password == "" {
		ve.Add("password", "can't be blank")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// Register creates a new account and returns the auth projection, including
// a fresh token.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.UserView, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	user := &models.User{Username: username, Email: email}
	if err := auth.SetPassword(user, password); err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, user)
	if err != nil {
		var ve *common.ValidationError
		if errors.As(err, &ve) {
			return nil, ve
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.authView(user)
}

// Login verifies the credentials and, on success, returns the auth
// projection. Any failure (unknown email or wrong password) surfaces as the
// same ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.UserView, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}
	if !auth.VerifyPassword(user, password) {
		return nil, common.ErrInvalidCredentials
	}

	return s.authView(user)
}

// GetCurrent returns the auth projection for the authenticated user.
func (s *UserService) GetCurrent(ctx context.Context, userID string) (*models.UserView, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return s.authView(user)
}

// Update applies a partial update: only fields the caller supplied are
// replaced, omitted fields keep their stored values.
func (s *UserService) Update(ctx context.Context, userID string, patch UserPatch) (*models.UserView, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if patch.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*patch.Username))
		if !usernameRegexp.MatchString(username) {
			return nil, common.FieldError("username", "is invalid")
		}
		user.Username = username
	}
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		if !emailRegexp.MatchString(email) {
			return nil, common.FieldError("email", "is invalid")
		}
		user.Email = email
	}
	if patch.Password != nil {
		if *patch.Password == "" {
			return nil, common.FieldError("password", "can't be blank")
		}
		if err := auth.SetPassword(user, *patch.Password); err != nil {
			return nil, common.ErrorInternal
		}
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	if patch.Image != nil {
		user.Image = *patch.Image
	}

	if err := repo.Update(ctx, user); err != nil {
		var ve *common.ValidationError
		if errors.As(err, &ve) {
			return nil, ve
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	return s.authView(user)
}

func (s *UserService) authView(user *models.User) (*models.UserView, error) {
	token, err := auth.GenerateToken(user.ID, user.Username, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}
	view := models.UserViewOf(user, token)
	return &view, nil
}
