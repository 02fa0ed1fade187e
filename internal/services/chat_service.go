package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recruithub/config"
	"recruithub/internal/domain"
	"recruithub/internal/mention"
	"recruithub/internal/repository"
	hub_errors "recruithub/pkg/errors"
	"recruithub/pkg/events"
	"recruithub/pkg/logger"

	"github.com/google/uuid"
)

// ChatService is the single ingest path for candidate-thread messages. Both
// the WebSocket dispatch and the REST endpoint call into it, so persistence,
// mention fan-out and broadcast behave identically regardless of transport.
type ChatService struct {
	messageRepo   repository.MessageRepository
	candidateRepo repository.CandidateRepository
	userRepo      repository.UserRepository
	notifRepo     repository.NotificationRepository
	resolver      *mention.Resolver
	broadcaster   Broadcaster
	logger        *logger.Logger

	maxMessageLen    int
	notifyTruncateAt int
}

func NewChatService(
	messageRepo repository.MessageRepository,
	candidateRepo repository.CandidateRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	resolver *mention.Resolver,
	broadcaster Broadcaster,
	cfg *config.Config,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		messageRepo:      messageRepo,
		candidateRepo:    candidateRepo,
		userRepo:         userRepo,
		notifRepo:        notifRepo,
		resolver:         resolver,
		broadcaster:      broadcaster,
		logger:           log,
		maxMessageLen:    cfg.MaxMessageLen,
		notifyTruncateAt: cfg.NotifyTruncateAt,
	}
}

// SendMessage validates, persists and broadcasts one message, then fans out
// mention notifications. The persisted record is broadcast to the whole room
// including the sender's own connections; the echo is the acknowledgement.
func (s *ChatService) SendMessage(ctx context.Context, senderID, candidateID uuid.UUID, content string) (domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, hub_errors.ErrInvalidInput
	}
	if len(content) > s.maxMessageLen {
		return domain.Message{}, hub_errors.ErrTooLarge
	}

	candidate, err := s.candidateRepo.GetByID(ctx, candidateID)
	if err != nil {
		return domain.Message{}, err
	}
	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return domain.Message{}, err
	}

	mentions, err := s.resolver.Resolve(ctx, content)
	if err != nil {
		return domain.Message{}, err
	}

	msg := domain.Message{
		ID:          uuid.New(),
		CandidateID: candidateID,
		SenderID:    senderID,
		Content:     content,
		Mentions:    mentions,
		CreatedAt:   time.Now(),
	}
	if err := s.messageRepo.Create(ctx, &msg); err != nil {
		return domain.Message{}, err
	}

	if err := s.candidateRepo.IncrementMessageCount(ctx, candidateID, 1); err != nil {
		// The counter is advisory; a miss here is healed by the next recount.
		s.logger.Warnf("message count increment failed for candidate %s: %v", candidateID, err)
	}

	msg.Sender = sender.Public()

	s.broadcaster.BroadcastToRoom(candidateID, events.New(events.TypeNewMessage, msg))
	s.fanOutMentions(ctx, msg, sender, candidate)

	return msg, nil
}

// fanOutMentions creates and delivers one mention notification per distinct
// mentioned user. The mention rows keep duplicates; delivery collapses them
// so "@Bob ping @Bob" yields a single notification. Self-mentions are
// skipped. Recipients need not be online: the row is durable and the live
// event simply reaches zero connections.
func (s *ChatService) fanOutMentions(ctx context.Context, msg domain.Message, sender domain.User, candidate domain.Candidate) {
	notified := make(map[uuid.UUID]bool, len(msg.Mentions))
	for _, m := range msg.Mentions {
		if m.UserID == sender.ID || notified[m.UserID] {
			continue
		}
		notified[m.UserID] = true

		messageID := msg.ID
		n := domain.Notification{
			ID:            uuid.New(),
			RecipientID:   m.UserID,
			SenderID:      sender.ID,
			SenderName:    sender.Name,
			Type:          domain.NotificationTypeMention,
			CandidateID:   msg.CandidateID,
			MessageID:     &messageID,
			Content:       fmt.Sprintf("@%s mentioned you: %s", sender.Name, truncate(msg.Content, s.notifyTruncateAt)),
			CandidateName: candidate.Name,
			CreatedAt:     time.Now(),
		}
		if err := s.notifRepo.Create(ctx, &n); err != nil {
			s.logger.Errorf("mention notification persist failed recipient=%s message=%s: %v", m.UserID, msg.ID, err)
			continue
		}

		s.broadcaster.BroadcastToUser(m.UserID, events.New(events.TypeNewNotification, events.NewNotificationPayload{
			UserID:       m.UserID,
			Notification: n,
		}))
	}
}

// EditMessage replaces a message's content, re-resolves its mentions and
// broadcasts the updated record. Only the author may edit. Edits never
// re-notify: mention notifications fire on create only.
func (s *ChatService) EditMessage(ctx context.Context, messageID, editorID uuid.UUID, content string) (domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, hub_errors.ErrInvalidInput
	}
	if len(content) > s.maxMessageLen {
		return domain.Message{}, hub_errors.ErrTooLarge
	}

	existing, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return domain.Message{}, err
	}
	if existing.SenderID != editorID {
		return domain.Message{}, hub_errors.ErrForbidden
	}

	mentions, err := s.resolver.Resolve(ctx, content)
	if err != nil {
		return domain.Message{}, err
	}

	updated, err := s.messageRepo.UpdateContent(ctx, messageID, content, mentions, time.Now())
	if err != nil {
		return domain.Message{}, err
	}

	sender, err := s.userRepo.GetByID(ctx, updated.SenderID)
	if err == nil {
		updated.Sender = sender.Public()
	}

	s.broadcaster.BroadcastToRoom(updated.CandidateID, events.New(events.TypeMessageUpdated, updated))
	return updated, nil
}

// DeleteMessage removes a message and its dependent rows. Only the author may
// delete. Already-delivered mention notifications survive the delete.
func (s *ChatService) DeleteMessage(ctx context.Context, messageID, actorID uuid.UUID) error {
	existing, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if existing.SenderID != actorID {
		return hub_errors.ErrForbidden
	}

	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return err
	}

	if err := s.candidateRepo.IncrementMessageCount(ctx, existing.CandidateID, -1); err != nil {
		s.logger.Warnf("message count decrement failed for candidate %s: %v", existing.CandidateID, err)
	}

	s.broadcaster.BroadcastToRoom(existing.CandidateID, events.New(events.TypeMessageDeleted, events.MessageDeletedPayload{
		MessageID:   messageID,
		CandidateID: existing.CandidateID,
	}))
	return nil
}

// MarkMessageRead records a read receipt. Re-marking is a no-op.
func (s *ChatService) MarkMessageRead(ctx context.Context, messageID, userID uuid.UUID) error {
	if _, err := s.messageRepo.GetByID(ctx, messageID); err != nil {
		return err
	}
	return s.messageRepo.MarkRead(ctx, messageID, userID, time.Now())
}

// ListMessages returns one page of a candidate thread in render order, oldest
// first within the page, with sender shapes populated. The first page doubles
// as a consistency checkpoint for the denormalized message counter.
func (s *ChatService) ListMessages(ctx context.Context, candidateID uuid.UUID, page, limit int) ([]domain.Message, int64, error) {
	candidate, err := s.candidateRepo.GetByID(ctx, candidateID)
	if err != nil {
		return nil, 0, err
	}

	msgs, total, err := s.messageRepo.ListByCandidate(ctx, candidateID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	if page <= 1 && candidate.MessageCount != total {
		if _, err := s.candidateRepo.RecountMessages(ctx, candidateID); err != nil {
			s.logger.Warnf("message recount failed for candidate %s: %v", candidateID, err)
		}
	}

	senderIDs := make([]uuid.UUID, 0, len(msgs))
	seen := make(map[uuid.UUID]bool, len(msgs))
	for _, m := range msgs {
		if !seen[m.SenderID] {
			seen[m.SenderID] = true
			senderIDs = append(senderIDs, m.SenderID)
		}
	}
	senders, err := s.userRepo.GetByIDs(ctx, senderIDs)
	if err != nil {
		return nil, 0, err
	}
	for i := range msgs {
		if u, ok := senders[msgs[i].SenderID]; ok {
			msgs[i].Sender = u.Public()
		}
	}

	return msgs, total, nil
}

func truncate(text string, at int) string {
	if at <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= at {
		return text
	}
	return string(runes[:at]) + "..."
}
