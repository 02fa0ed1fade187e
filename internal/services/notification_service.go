package services

import (
	"context"
	"time"

	"recruithub/config"
	"recruithub/internal/domain"
	"recruithub/internal/repository"
	"recruithub/pkg/logger"

	"github.com/google/uuid"
)

type NotificationService struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	logger    *logger.Logger

	catchUpLimit int
}

func NewNotificationService(notifRepo repository.NotificationRepository, userRepo repository.UserRepository, cfg *config.Config, log *logger.Logger) *NotificationService {
	return &NotificationService{
		notifRepo:    notifRepo,
		userRepo:     userRepo,
		logger:       log,
		catchUpLimit: cfg.CatchUpPageSize,
	}
}

type NotificationPage struct {
	Items       []domain.Notification `json:"items"`
	Total       int64                 `json:"total"`
	UnreadCount int64                 `json:"unreadCount"`
}

func (s *NotificationService) List(ctx context.Context, recipientID uuid.UUID, page, limit int, unreadOnly bool) (NotificationPage, error) {
	items, total, err := s.notifRepo.ListByRecipient(ctx, recipientID, page, limit, unreadOnly)
	if err != nil {
		return NotificationPage{}, err
	}
	unread, err := s.notifRepo.CountUnread(ctx, recipientID)
	if err != nil {
		return NotificationPage{}, err
	}
	return NotificationPage{Items: items, Total: total, UnreadCount: unread}, nil
}

// MarkRead flips one notification read for its recipient. Idempotent: a
// second mark returns the record unchanged with the original ReadAt.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, recipientID uuid.UUID) (domain.Notification, error) {
	return s.notifRepo.MarkRead(ctx, notificationID, recipientID, time.Now())
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.notifRepo.MarkAllRead(ctx, recipientID, time.Now())
}

func (s *NotificationService) Delete(ctx context.Context, notificationID, recipientID uuid.UUID) error {
	return s.notifRepo.Delete(ctx, notificationID, recipientID)
}

// Clear removes notifications in bulk; readOnly limits the sweep to ones
// already read.
func (s *NotificationService) Clear(ctx context.Context, recipientID uuid.UUID, readOnly bool) (int64, error) {
	return s.notifRepo.Clear(ctx, recipientID, readOnly)
}

func (s *NotificationService) Stats(ctx context.Context, recipientID uuid.UUID) (repository.NotificationStats, error) {
	return s.notifRepo.Stats(ctx, recipientID)
}

// OfflineCatchUp returns the notifications a reconnecting user missed: unread
// rows created after their last recorded online moment, newest first, capped.
// Rows older than the cutoff stay reachable through List; this is the small
// "while you were away" surface, not the full inbox.
func (s *NotificationService) OfflineCatchUp(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.notifRepo.ListUnreadSince(ctx, userID, u.LastOnline, s.catchUpLimit)
}
