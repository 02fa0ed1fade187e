package repository

import (
	"context"
	"time"

	"recruithub/internal/domain"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	GetByName(ctx context.Context, name string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	SearchRecruiters(ctx context.Context, namePrefix string) ([]domain.User, error)
	// SetOnlineStatus flips the online flag and touches LastOnline.
	// LastOnline never moves backwards.
	SetOnlineStatus(ctx context.Context, id uuid.UUID, online bool, at time.Time) error
}

type CandidateRepository interface {
	Create(ctx context.Context, c *domain.Candidate) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Candidate, error)
	List(ctx context.Context, page, limit int) ([]domain.Candidate, int64, error)
	Update(ctx context.Context, c *domain.Candidate) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	IncrementMessageCount(ctx context.Context, id uuid.UUID, delta int) error
	// RecountMessages restores the denormalized counter from the actual
	// message count; self-heal for crashes between write and increment.
	RecountMessages(ctx context.Context, id uuid.UUID) (int64, error)
}

type MessageRepository interface {
	// Create persists the message with its mention rows and assigns the
	// insertion-order tie-breaker.
	Create(ctx context.Context, m *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Message, error)
	// ListByCandidate returns one page ordered by creation time, ties broken
	// by insertion order.
	ListByCandidate(ctx context.Context, candidateID uuid.UUID, page, limit int) ([]domain.Message, int64, error)
	// UpdateContent replaces content and the mention list atomically and
	// stamps the edited flag.
	UpdateContent(ctx context.Context, id uuid.UUID, content string, mentions []domain.Mention, editedAt time.Time) (domain.Message, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// MarkRead records a read receipt once per (message, user).
	MarkRead(ctx context.Context, messageID, userID uuid.UUID, at time.Time) error
}

type NotificationStats struct {
	UnreadCount int64            `json:"unreadCount"`
	TotalCount  int64            `json:"totalCount"`
	TodayCount  int64            `json:"todayCount"`
	TypeStats   map[string]int64 `json:"typeStats"`
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Notification, error)
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, page, limit int, unreadOnly bool) ([]domain.Notification, int64, error)
	// ListUnreadSince is the offline catch-up query: unread notifications
	// created strictly after since, newest first, capped at limit.
	ListUnreadSince(ctx context.Context, recipientID uuid.UUID, since time.Time, limit int) ([]domain.Notification, error)
	// MarkRead is idempotent; ReadAt is set only on the unread-to-read
	// transition. Scoped to the recipient.
	MarkRead(ctx context.Context, id, recipientID uuid.UUID, at time.Time) (domain.Notification, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID, at time.Time) (int64, error)
	Delete(ctx context.Context, id, recipientID uuid.UUID) error
	Clear(ctx context.Context, recipientID uuid.UUID, readOnly bool) (int64, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	Stats(ctx context.Context, recipientID uuid.UUID) (NotificationStats, error)
}
