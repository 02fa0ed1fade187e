// Package client is the connection-side counterpart of the messaging core:
// a dialer wrapper plus the local state mirror that reconciles optimistic
// sends against authoritative broadcasts.
package client

import (
	"fmt"
	"sync"
	"time"

	"recruithub/internal/domain"

	"github.com/google/uuid"
)

// Entry is one row in the conversation mirror. Provisional entries carry a
// client-generated temp id until the authoritative broadcast replaces them.
type Entry struct {
	ID          string
	CandidateID uuid.UUID
	SenderID    uuid.UUID
	SenderName  string
	Content     string
	Provisional bool
	CreatedAt   time.Time
	Message     *domain.Message
}

const typingDisplayTTL = 3 * time.Second

type typingKey struct {
	userID      uuid.UUID
	candidateID uuid.UUID
}

type typingState struct {
	userName string
	deadline time.Time
}

// State mirrors what the user currently sees: the active conversation's
// messages, the notification list and unread indicators for conversations
// not on screen. One State per session; all methods are safe for use from
// the read-loop goroutine and the UI concurrently.
type State struct {
	mu sync.Mutex

	selfID uuid.UUID
	active uuid.UUID

	entries map[uuid.UUID][]Entry

	notifications []domain.Notification
	notifSeen     map[uuid.UUID]bool

	unread map[uuid.UUID]int
	typing map[typingKey]typingState

	now func() time.Time
}

func NewState(selfID uuid.UUID) *State {
	return &State{
		selfID:    selfID,
		entries:   make(map[uuid.UUID][]Entry),
		notifSeen: make(map[uuid.UUID]bool),
		unread:    make(map[uuid.UUID]int),
		typing:    make(map[typingKey]typingState),
		now:       time.Now,
	}
}

// SetActiveConversation switches the on-screen thread and clears its unread
// indicator.
func (s *State) SetActiveConversation(candidateID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = candidateID
	delete(s.unread, candidateID)
}

// AppendLocal records an optimistic send and returns its temp id. The entry
// renders immediately; the echoed broadcast later replaces it.
func (s *State) AppendLocal(candidateID uuid.UUID, senderName, content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	tempID := fmt.Sprintf("temp_%s", uuid.New())
	s.entries[candidateID] = append(s.entries[candidateID], Entry{
		ID:          tempID,
		CandidateID: candidateID,
		SenderID:    s.selfID,
		SenderName:  senderName,
		Content:     content,
		Provisional: true,
		CreatedAt:   s.now(),
	})
	return tempID
}

// ApplyMessage folds an authoritative broadcast into the mirror. For the
// active conversation it removes the oldest provisional entry from the same
// sender, whatever its content, and appends the record; rapid consecutive
// sends therefore resolve one-for-one in order even when the server trimmed
// whitespace or the texts are identical. Other conversations only bump their
// unread indicator.
func (s *State) ApplyMessage(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.CandidateID != s.active {
		if msg.Sender.ID != s.selfID {
			s.unread[msg.CandidateID]++
		}
		return
	}

	list := s.entries[msg.CandidateID]
	if msg.Sender.ID == s.selfID {
		for i := range list {
			if list[i].Provisional && list[i].SenderID == s.selfID {
				list = append(list[:i], list[i+1:]...)
				break
			}
		}
	}

	m := msg
	s.entries[msg.CandidateID] = append(list, Entry{
		ID:          msg.ID.String(),
		CandidateID: msg.CandidateID,
		SenderID:    msg.Sender.ID,
		SenderName:  msg.Sender.Name,
		Content:     msg.Content,
		CreatedAt:   msg.CreatedAt,
		Message:     &m,
	})

	// A delivered message supersedes the sender's typing indicator.
	delete(s.typing, typingKey{userID: msg.Sender.ID, candidateID: msg.CandidateID})
}

// ApplyMessageUpdated replaces the matching entry's content in place.
func (s *State) ApplyMessageUpdated(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.entries[msg.CandidateID]
	for i := range list {
		if list[i].ID == msg.ID.String() {
			m := msg
			list[i].Content = msg.Content
			list[i].Message = &m
			return
		}
	}
}

// ApplyMessageDeleted drops the matching entry.
func (s *State) ApplyMessageDeleted(messageID, candidateID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.entries[candidateID]
	for i := range list {
		if list[i].ID == messageID.String() {
			s.entries[candidateID] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// ApplyNotification prepends a live notification. Duplicates of anything
// already merged, from any source, are dropped by id.
func (s *State) ApplyNotification(n domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyNotificationLocked(n)
}

func (s *State) applyNotificationLocked(n domain.Notification) {
	if s.notifSeen[n.ID] {
		return
	}
	s.notifSeen[n.ID] = true
	s.notifications = append([]domain.Notification{n}, s.notifications...)
}

// MergeFetched folds a regular list fetch and an offline catch-up response
// into the mirror. The two sets overlap by construction; each notification
// still appears exactly once.
func (s *State) MergeFetched(regular, catchup []domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range regular {
		s.applyNotificationLocked(n)
	}
	for _, n := range catchup {
		s.applyNotificationLocked(n)
	}
}

// MarkNotificationRead flips the local copy; the server confirmation carries
// the authoritative ReadAt.
func (s *State) MarkNotificationRead(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].IsRead = true
			return
		}
	}
}

// MergeHistory replaces the conversation's authoritative entries with a
// fetched page while keeping any still-pending provisional sends at the tail.
func (s *State) MergeHistory(candidateID uuid.UUID, msgs []domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []Entry
	for _, e := range s.entries[candidateID] {
		if e.Provisional {
			pending = append(pending, e)
		}
	}

	list := make([]Entry, 0, len(msgs)+len(pending))
	for _, msg := range msgs {
		m := msg
		list = append(list, Entry{
			ID:          msg.ID.String(),
			CandidateID: msg.CandidateID,
			SenderID:    msg.Sender.ID,
			SenderName:  msg.Sender.Name,
			Content:     msg.Content,
			CreatedAt:   msg.CreatedAt,
			Message:     &m,
		})
	}
	s.entries[candidateID] = append(list, pending...)
}

// ApplyTyping records another user's typing signal. Indicators self-expire
// locally on the same horizon the server uses, so a lost stop event cannot
// pin one forever.
func (s *State) ApplyTyping(userID uuid.UUID, userName string, candidateID uuid.UUID, isTyping bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := typingKey{userID: userID, candidateID: candidateID}
	if !isTyping {
		delete(s.typing, key)
		return
	}
	s.typing[key] = typingState{userName: userName, deadline: s.now().Add(typingDisplayTTL)}
}

// TypingUsers returns who is currently typing in the conversation.
func (s *State) TypingUsers(candidateID uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var names []string
	for key, state := range s.typing {
		if key.candidateID != candidateID {
			continue
		}
		if now.After(state.deadline) {
			delete(s.typing, key)
			continue
		}
		names = append(names, state.userName)
	}
	return names
}

// Messages returns a copy of the conversation's current entries.
func (s *State) Messages(candidateID uuid.UUID) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.entries[candidateID]
	out := make([]Entry, len(list))
	copy(out, list)
	return out
}

// Notifications returns a copy of the notification mirror, newest first.
func (s *State) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// UnreadCount reports the unread indicator for a conversation.
func (s *State) UnreadCount(candidateID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread[candidateID]
}

// PendingCount reports how many provisional entries await their echo.
func (s *State) PendingCount(candidateID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, e := range s.entries[candidateID] {
		if e.Provisional {
			count++
		}
	}
	return count
}
