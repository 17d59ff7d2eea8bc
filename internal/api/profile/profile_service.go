package profile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/signbridge/signbridge-api/internal/types"
)

var _ ProfileService = (*ProfileServiceImpl)(nil)

// ProfileService is the business-logic contract for user profiles.
type ProfileService interface {
	// GetProfile never fails closed: when the lookup errors the caller gets a
	// minimal profile with role 'student'.
	GetProfile(ctx context.Context, userID uuid.UUID) *types.UserProfile
	UpdateProfile(ctx context.Context, userID uuid.UUID, actingRole string, params types.UpdateProfileParams) (*types.UserProfile, error)
	ListStudents(ctx context.Context) ([]types.UserProfile, error)
}

type ProfileServiceImpl struct {
	repo   ProfileRepo
	cache  *gocache.Cache
	logger *slog.Logger
}

func NewProfileService(repo ProfileRepo, ttl, cleanup time.Duration, logger *slog.Logger) *ProfileServiceImpl {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &ProfileServiceImpl{
		repo:   repo,
		cache:  gocache.New(ttl, cleanup),
		logger: logger,
	}
}

// GetProfile returns the user's profile, serving repeated lookups from cache.
// On any failure it falls back to a 'student' profile so downstream role
// checks degrade to the least-privileged role.
func (s *ProfileServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) *types.UserProfile {
	key := userID.String()
	if cached, found := s.cache.Get(key); found {
		return cached.(*types.UserProfile)
	}

	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "Profile lookup failed, defaulting role to student",
			slog.String("userID", key), slog.Any("error", err))
		return &types.UserProfile{ID: userID, Role: types.RoleStudent}
	}

	s.cache.SetDefault(key, p)
	return p
}

func (s *ProfileServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, actingRole string, params types.UpdateProfileParams) (*types.UserProfile, error) {
	if params.Role != nil {
		if !types.ValidRole(*params.Role) {
			return nil, fmt.Errorf("role must be 'student' or 'teacher': %w", types.ErrBadRequest)
		}
		// Students cannot self-promote.
		if actingRole != types.RoleTeacher {
			return nil, fmt.Errorf("only teachers may change roles: %w", types.ErrForbidden)
		}
	}

	p, err := s.repo.UpdateProfile(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	s.cache.Delete(userID.String())
	return p, nil
}

func (s *ProfileServiceImpl) ListStudents(ctx context.Context) ([]types.UserProfile, error) {
	return s.repo.ListStudents(ctx)
}
