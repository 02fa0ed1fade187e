package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"recruithub/internal/domain"
	"recruithub/internal/repository"
	hub_errors "recruithub/pkg/errors"
	"recruithub/pkg/events"

	"github.com/google/uuid"
)

// In-memory fakes for the repository interfaces. They hold the same
// invariants the gorm implementations do (idempotent read-marking,
// monotonic last-online) so service tests exercise real flows.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Name == u.Name || existing.Email == u.Email {
			return hub_errors.ErrAlreadyExists
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, hub_errors.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByName(_ context.Context, name string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Name == name {
			return u, nil
		}
	}
	return domain.User{}, hub_errors.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, hub_errors.ErrNotFound
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uuid.UUID]domain.User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeUserRepo) SearchRecruiters(_ context.Context, prefix string) ([]domain.User, error) {
	all, _ := r.List(context.Background())
	if prefix == "" {
		return all, nil
	}
	var out []domain.User
	for _, u := range all {
		if len(u.Name) >= len(prefix) && u.Name[:len(prefix)] == prefix {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) SetOnlineStatus(_ context.Context, id uuid.UUID, online bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return hub_errors.ErrNotFound
	}
	if u.LastOnline.After(at) {
		return nil
	}
	u.IsOnline = online
	u.LastOnline = at
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) add(name, email string) domain.User {
	u := domain.User{ID: uuid.New(), Name: name, Email: email}
	r.mu.Lock()
	r.users[u.ID] = u
	r.mu.Unlock()
	return u
}

type fakeCandidateRepo struct {
	mu         sync.Mutex
	candidates map[uuid.UUID]domain.Candidate
}

func newFakeCandidateRepo() *fakeCandidateRepo {
	return &fakeCandidateRepo{candidates: make(map[uuid.UUID]domain.Candidate)}
}

func (r *fakeCandidateRepo) Create(_ context.Context, c *domain.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.candidates[c.ID] = *c
	return nil
}

func (r *fakeCandidateRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[id]
	if !ok {
		return domain.Candidate{}, hub_errors.ErrNotFound
	}
	return c, nil
}

func (r *fakeCandidateRepo) List(_ context.Context, _, _ int) ([]domain.Candidate, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Candidate, 0, len(r.candidates))
	for _, c := range r.candidates {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCandidateRepo) Update(_ context.Context, c *domain.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.candidates[c.ID]; !ok {
		return hub_errors.ErrNotFound
	}
	r.candidates[c.ID] = *c
	return nil
}

func (r *fakeCandidateRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.candidates[id]; !ok {
		return hub_errors.ErrNotFound
	}
	delete(r.candidates, id)
	return nil
}

func (r *fakeCandidateRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.candidates[id]
	return ok, nil
}

func (r *fakeCandidateRepo) IncrementMessageCount(_ context.Context, id uuid.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[id]
	if !ok {
		return hub_errors.ErrNotFound
	}
	c.MessageCount += int64(delta)
	r.candidates[id] = c
	return nil
}

func (r *fakeCandidateRepo) RecountMessages(_ context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[id]
	if !ok {
		return 0, hub_errors.ErrNotFound
	}
	return c.MessageCount, nil
}

func (r *fakeCandidateRepo) add(name string) domain.Candidate {
	c := domain.Candidate{ID: uuid.New(), Name: name, Email: name + "@example.com", Status: domain.CandidateStatusActive}
	r.mu.Lock()
	r.candidates[c.ID] = c
	r.mu.Unlock()
	return c
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[uuid.UUID]domain.Message
	receipts map[uuid.UUID]map[uuid.UUID]time.Time
	seq      int64
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		messages: make(map[uuid.UUID]domain.Message),
		receipts: make(map[uuid.UUID]map[uuid.UUID]time.Time),
	}
}

func (r *fakeMessageRepo) Create(_ context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	m.Seq = r.seq
	for i := range m.Mentions {
		m.Mentions[i].MessageID = m.ID
	}
	r.messages[m.ID] = *m
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return domain.Message{}, hub_errors.ErrNotFound
	}
	return m, nil
}

func (r *fakeMessageRepo) ListByCandidate(_ context.Context, candidateID uuid.UUID, _, _ int) ([]domain.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.messages {
		if m.CandidateID == candidateID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Seq < out[j].Seq
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, int64(len(out)), nil
}

func (r *fakeMessageRepo) UpdateContent(_ context.Context, id uuid.UUID, content string, mentions []domain.Mention, editedAt time.Time) (domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return domain.Message{}, hub_errors.ErrNotFound
	}
	m.Content = content
	m.Mentions = mentions
	m.IsEdited = true
	m.EditedAt = &editedAt
	r.messages[id] = m
	return m, nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[id]; !ok {
		return hub_errors.ErrNotFound
	}
	delete(r.messages, id)
	delete(r.receipts, id)
	return nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, messageID, userID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[messageID]; !ok {
		return hub_errors.ErrNotFound
	}
	if r.receipts[messageID] == nil {
		r.receipts[messageID] = make(map[uuid.UUID]time.Time)
	}
	if _, seen := r.receipts[messageID][userID]; seen {
		return nil
	}
	r.receipts[messageID][userID] = at
	return nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]domain.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[uuid.UUID]domain.Notification)}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications[n.ID] = *n
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return domain.Notification{}, hub_errors.ErrNotFound
	}
	return n, nil
}

func (r *fakeNotificationRepo) byRecipient(recipientID uuid.UUID) []domain.Notification {
	var out []domain.Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID uuid.UUID, _, _ int, unreadOnly bool) ([]domain.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.byRecipient(recipientID)
	if !unreadOnly {
		return all, int64(len(all)), nil
	}
	var out []domain.Notification
	for _, n := range all {
		if !n.IsRead {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) ListUnreadSince(_ context.Context, recipientID uuid.UUID, since time.Time, limit int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.byRecipient(recipientID) {
		if !n.IsRead && n.CreatedAt.After(since) {
			out = append(out, n)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, recipientID uuid.UUID, at time.Time) (domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return domain.Notification{}, hub_errors.ErrNotFound
	}
	if n.IsRead {
		return n, nil
	}
	n.IsRead = true
	n.ReadAt = &at
	r.notifications[id] = n
	return n, nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID uuid.UUID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, n := range r.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &at
			r.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, id, recipientID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return hub_errors.ErrNotFound
	}
	delete(r.notifications, id)
	return nil
}

func (r *fakeNotificationRepo) Clear(_ context.Context, recipientID uuid.UUID, readOnly bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, n := range r.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if readOnly && !n.IsRead {
			continue
		}
		delete(r.notifications, id)
		count++
	}
	return count, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, recipientID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) Stats(_ context.Context, recipientID uuid.UUID) (repository.NotificationStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := repository.NotificationStats{TypeStats: make(map[string]int64)}
	for _, n := range r.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		stats.TotalCount++
		if !n.IsRead {
			stats.UnreadCount++
		}
		stats.TypeStats[n.Type]++
	}
	return stats, nil
}

// recordingBroadcaster captures every fan-out a service performs.
type recordingBroadcaster struct {
	mu         sync.Mutex
	roomEvents []roomEvent
	userEvents []userEvent
	online     map[uuid.UUID]bool
}

type roomEvent struct {
	candidateID uuid.UUID
	exceptUser  uuid.UUID
	event       events.Event
}

type userEvent struct {
	userID uuid.UUID
	event  events.Event
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{online: make(map[uuid.UUID]bool)}
}

func (b *recordingBroadcaster) BroadcastToRoom(candidateID uuid.UUID, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roomEvents = append(b.roomEvents, roomEvent{candidateID: candidateID, event: event})
}

func (b *recordingBroadcaster) BroadcastToRoomExcept(candidateID, exceptUserID uuid.UUID, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roomEvents = append(b.roomEvents, roomEvent{candidateID: candidateID, exceptUser: exceptUserID, event: event})
}

func (b *recordingBroadcaster) BroadcastToUser(userID uuid.UUID, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.userEvents = append(b.userEvents, userEvent{userID: userID, event: event})
}

func (b *recordingBroadcaster) IsUserOnline(userID uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.online[userID]
}

func (b *recordingBroadcaster) userEventsFor(userID uuid.UUID) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Event
	for _, ue := range b.userEvents {
		if ue.userID == userID {
			out = append(out, ue.event)
		}
	}
	return out
}
