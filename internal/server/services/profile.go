package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/repomanager"
)

// ProfileService exposes the public projection of users and the
// follow/unfollow operations. The viewer is identified by ID and may be
// empty for anonymous requests, in which case following is always false.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewProfileService constructs a ProfileService.
func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m}
}

// Get returns the public projection of username as seen by viewerID.
func (s *ProfileService) Get(ctx context.Context, username, viewerID string) (*models.ProfileView, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	following := false
	if viewerID != "" {
		if following, err = repo.IsFollowing(ctx, viewerID, user.ID); err != nil {
			return nil, common.ErrorInternal
		}
	}

	view := models.ProfileViewOf(user, following)
	return &view, nil
}

// Follow adds username to the viewer's following set and returns the updated
// projection. Idempotent.
func (s *ProfileService) Follow(ctx context.Context, viewerID, username string) (*models.ProfileView, error) {
	return s.setFollowing(ctx, viewerID, username, true)
}

// Unfollow removes username from the viewer's following set and returns the
// updated projection. Idempotent.
func (s *ProfileService) Unfollow(ctx context.Context, viewerID, username string) (*models.ProfileView, error) {
	return s.setFollowing(ctx, viewerID, username, false)
}

func (s *ProfileService) setFollowing(ctx context.Context, viewerID, username string, follow bool) (*models.ProfileView, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if follow {
		err = repo.Follow(ctx, viewerID, user.ID)
	} else {
		err = repo.Unfollow(ctx, viewerID, user.ID)
	}
	if err != nil {
		return nil, common.ErrorInternal
	}

	view := models.ProfileViewOf(user, follow)
	return &view, nil
}
