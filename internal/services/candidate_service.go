package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recruithub/internal/domain"
	"recruithub/internal/repository"
	hub_errors "recruithub/pkg/errors"
	"recruithub/pkg/events"
	"recruithub/pkg/logger"

	"github.com/google/uuid"
)

type CandidateService struct {
	candidateRepo repository.CandidateRepository
	userRepo      repository.UserRepository
	notifRepo     repository.NotificationRepository
	broadcaster   Broadcaster
	logger        *logger.Logger
}

func NewCandidateService(
	candidateRepo repository.CandidateRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	broadcaster Broadcaster,
	log *logger.Logger,
) *CandidateService {
	return &CandidateService{
		candidateRepo: candidateRepo,
		userRepo:      userRepo,
		notifRepo:     notifRepo,
		broadcaster:   broadcaster,
		logger:        log,
	}
}

type CreateCandidateInput struct {
	Name       string
	Email      string
	Phone      string
	Position   string
	Skills     []string
	Experience int
	Notes      string
}

type UpdateCandidateInput struct {
	Name       *string
	Email      *string
	Phone      *string
	Position   *string
	Status     *string
	Skills     *[]string
	Experience *int
	Notes      *string
}

func (s *CandidateService) Create(ctx context.Context, actorID uuid.UUID, in CreateCandidateInput) (domain.Candidate, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" {
		return domain.Candidate{}, hub_errors.ErrInvalidInput
	}

	c := domain.Candidate{
		ID:         uuid.New(),
		Name:       name,
		Email:      email,
		Phone:      in.Phone,
		Position:   in.Position,
		Status:     domain.CandidateStatusActive,
		Skills:     in.Skills,
		Experience: in.Experience,
		Notes:      in.Notes,
		AddedByID:  actorID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.candidateRepo.Create(ctx, &c); err != nil {
		return domain.Candidate{}, err
	}
	return c, nil
}

func (s *CandidateService) Get(ctx context.Context, id uuid.UUID) (domain.Candidate, error) {
	return s.candidateRepo.GetByID(ctx, id)
}

func (s *CandidateService) List(ctx context.Context, page, limit int) ([]domain.Candidate, int64, error) {
	return s.candidateRepo.List(ctx, page, limit)
}

// Update applies a partial update. A status transition additionally notifies
// every other recruiter, durably and live.
func (s *CandidateService) Update(ctx context.Context, id, actorID uuid.UUID, in UpdateCandidateInput) (domain.Candidate, error) {
	c, err := s.candidateRepo.GetByID(ctx, id)
	if err != nil {
		return domain.Candidate{}, err
	}

	previousStatus := c.Status

	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.Position != nil {
		c.Position = *in.Position
	}
	if in.Status != nil {
		if !domain.ValidCandidateStatus(*in.Status) {
			return domain.Candidate{}, hub_errors.ErrInvalidInput
		}
		c.Status = *in.Status
	}
	if in.Skills != nil {
		c.Skills = *in.Skills
	}
	if in.Experience != nil {
		c.Experience = *in.Experience
	}
	if in.Notes != nil {
		c.Notes = *in.Notes
	}
	if c.Name == "" || c.Email == "" {
		return domain.Candidate{}, hub_errors.ErrInvalidInput
	}

	c.UpdatedAt = time.Now()
	if err := s.candidateRepo.Update(ctx, &c); err != nil {
		return domain.Candidate{}, err
	}

	if c.Status != previousStatus {
		s.fanOutStatusChange(ctx, c, actorID, previousStatus)
	}

	return c, nil
}

func (s *CandidateService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.candidateRepo.Delete(ctx, id)
}

// fanOutStatusChange notifies every recruiter except the actor that a
// candidate moved status. Failures to reach one recipient never block the
// rest.
func (s *CandidateService) fanOutStatusChange(ctx context.Context, c domain.Candidate, actorID uuid.UUID, previousStatus string) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		s.logger.Warnf("status change fan-out skipped, actor %s lookup failed: %v", actorID, err)
		return
	}
	recipients, err := s.userRepo.List(ctx)
	if err != nil {
		s.logger.Warnf("status change fan-out skipped, user list failed: %v", err)
		return
	}

	content := fmt.Sprintf("%s moved %s from %s to %s", actor.Name, c.Name, previousStatus, c.Status)
	for _, recipient := range recipients {
		if recipient.ID == actorID {
			continue
		}

		n := domain.Notification{
			ID:            uuid.New(),
			RecipientID:   recipient.ID,
			SenderID:      actor.ID,
			SenderName:    actor.Name,
			Type:          domain.NotificationTypeCandidateUpdate,
			CandidateID:   c.ID,
			Content:       content,
			CandidateName: c.Name,
			CreatedAt:     time.Now(),
		}
		if err := s.notifRepo.Create(ctx, &n); err != nil {
			s.logger.Errorf("status notification persist failed recipient=%s candidate=%s: %v", recipient.ID, c.ID, err)
			continue
		}

		s.broadcaster.BroadcastToUser(recipient.ID, events.New(events.TypeNewNotification, events.NewNotificationPayload{
			UserID:       recipient.ID,
			Notification: n,
		}))
	}
}
