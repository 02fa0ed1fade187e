package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTypingTTL is how long a typing-started signal stays alive without
// renewal before the room is told the user stopped typing.
const DefaultTypingTTL = 3 * time.Second

type typingKey struct {
	userID      uuid.UUID
	candidateID uuid.UUID
}

type typingEntry struct {
	timer    *time.Timer
	userName string
}

// ExpireFunc is invoked when a typing signal times out without renewal or an
// explicit stop.
type ExpireFunc func(userID uuid.UUID, userName string, candidateID uuid.UUID)

// TypingTracker holds ephemeral per-(user, conversation) typing state.
// Nothing is persisted; a started signal auto-clears after the TTL so a
// client that crashes mid-keystroke does not leave a stale indicator.
// Expiry runs on monotonic timers, not wall-clock comparison.
type TypingTracker struct {
	mu       sync.Mutex
	ttl      time.Duration
	active   map[typingKey]*typingEntry
	onExpire ExpireFunc
}

func NewTypingTracker(ttl time.Duration, onExpire ExpireFunc) *TypingTracker {
	if ttl <= 0 {
		ttl = DefaultTypingTTL
	}
	return &TypingTracker{
		ttl:      ttl,
		active:   make(map[typingKey]*typingEntry),
		onExpire: onExpire,
	}
}

// Set records a typing-state change. A true signal arms or renews the expiry
// timer; a false signal cancels it.
func (t *TypingTracker) Set(userID uuid.UUID, userName string, candidateID uuid.UUID, isTyping bool) {
	key := typingKey{userID: userID, candidateID: candidateID}

	t.mu.Lock()
	defer t.mu.Unlock()

	entry, exists := t.active[key]
	if !isTyping {
		if exists {
			entry.timer.Stop()
			delete(t.active, key)
		}
		return
	}

	if exists {
		entry.timer.Reset(t.ttl)
		return
	}

	t.active[key] = &typingEntry{
		userName: userName,
		timer: time.AfterFunc(t.ttl, func() {
			t.expire(key, userName)
		}),
	}
}

// IsTyping reports the tracker's current view of a (user, conversation) pair.
func (t *TypingTracker) IsTyping(userID, candidateID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.active[typingKey{userID: userID, candidateID: candidateID}]
	return ok
}

func (t *TypingTracker) expire(key typingKey, userName string) {
	t.mu.Lock()
	_, ok := t.active[key]
	if ok {
		delete(t.active, key)
	}
	t.mu.Unlock()

	if ok && t.onExpire != nil {
		t.onExpire(key.userID, userName, key.candidateID)
	}
}

// StopAll cancels every pending timer without firing expiry callbacks.
func (t *TypingTracker) StopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, entry := range t.active {
		entry.timer.Stop()
		delete(t.active, key)
	}
}
