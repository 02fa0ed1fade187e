package services

import (
	"context"
	"time"

	"recruithub/internal/domain"
	"recruithub/internal/repository"
	"recruithub/pkg/logger"

	"github.com/google/uuid"
)

// UserService owns the online/offline lifecycle writes and recruiter lookups.
// The hub calls SetOnline exactly once per connect and SetOffline when a
// user's last connection drops.
type UserService struct {
	userRepo repository.UserRepository
	mirror   StatusMirror
	logger   *logger.Logger
}

func NewUserService(userRepo repository.UserRepository, mirror StatusMirror, log *logger.Logger) *UserService {
	return &UserService{userRepo: userRepo, mirror: mirror, logger: log}
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) SetOnline(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.SetOnlineStatus(ctx, userID, true, time.Now()); err != nil {
		return err
	}
	if s.mirror != nil {
		if err := s.mirror.SetOnline(ctx, userID.String()); err != nil {
			s.logger.Warnf("presence mirror online failed for %s: %v", userID, err)
		}
	}
	return nil
}

func (s *UserService) SetOffline(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.SetOnlineStatus(ctx, userID, false, time.Now()); err != nil {
		return err
	}
	if s.mirror != nil {
		if err := s.mirror.SetOffline(ctx, userID.String()); err != nil {
			s.logger.Warnf("presence mirror offline failed for %s: %v", userID, err)
		}
	}
	return nil
}

// Recruiters lists accounts whose display name starts with prefix, for the
// client's mention autocomplete. Empty prefix lists the first page of all.
func (s *UserService) Recruiters(ctx context.Context, prefix string) ([]domain.PublicUser, error) {
	users, err := s.userRepo.SearchRecruiters(ctx, prefix)
	if err != nil {
		return nil, err
	}
	result := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		result = append(result, u.Public())
	}
	return result, nil
}
