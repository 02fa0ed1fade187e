package client

import (
	"testing"
	"time"

	"recruithub/internal/domain"

	"github.com/google/uuid"
)

func authoritative(candidateID uuid.UUID, sender domain.PublicUser, content string) domain.Message {
	return domain.Message{
		ID:          uuid.New(),
		CandidateID: candidateID,
		Sender:      sender,
		Content:     content,
		CreatedAt:   time.Now(),
	}
}

func TestEchoRemovesOldestProvisionalFIFO(t *testing.T) {
	t.Parallel()

	selfID := uuid.New()
	candidateID := uuid.New()
	state := NewState(selfID)
	state.SetActiveConversation(candidateID)

	// Two rapid sends with identical text; reconciliation must not match on
	// content.
	state.AppendLocal(candidateID, "alice", "same text")
	state.AppendLocal(candidateID, "alice", "same text")

	self := domain.PublicUser{ID: selfID, Name: "alice"}
	state.ApplyMessage(authoritative(candidateID, self, "same text"))

	if got := state.PendingCount(candidateID); got != 1 {
		t.Fatalf("pending after first echo = %d, want 1", got)
	}

	state.ApplyMessage(authoritative(candidateID, self, "same text"))
	if got := state.PendingCount(candidateID); got != 0 {
		t.Fatalf("pending after second echo = %d, want 0 (no stranded provisionals)", got)
	}

	entries := state.Messages(candidateID)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Provisional {
			t.Error("all remaining entries should be authoritative")
		}
	}
}

func TestEchoWithServerTrimmedContentStillReconciles(t *testing.T) {
	t.Parallel()

	selfID := uuid.New()
	candidateID := uuid.New()
	state := NewState(selfID)
	state.SetActiveConversation(candidateID)

	state.AppendLocal(candidateID, "alice", "  hello  ")

	self := domain.PublicUser{ID: selfID, Name: "alice"}
	state.ApplyMessage(authoritative(candidateID, self, "hello"))

	if got := state.PendingCount(candidateID); got != 0 {
		t.Errorf("pending = %d, want 0 even though the server trimmed content", got)
	}
}

func TestOtherSendersMessageNeverConsumesProvisional(t *testing.T) {
	t.Parallel()

	selfID := uuid.New()
	candidateID := uuid.New()
	state := NewState(selfID)
	state.SetActiveConversation(candidateID)

	state.AppendLocal(candidateID, "alice", "mine")

	bob := domain.PublicUser{ID: uuid.New(), Name: "bob"}
	state.ApplyMessage(authoritative(candidateID, bob, "mine"))

	if got := state.PendingCount(candidateID); got != 1 {
		t.Errorf("pending = %d, want 1: bob's message must not consume alice's provisional", got)
	}
	if got := len(state.Messages(candidateID)); got != 2 {
		t.Errorf("entries = %d, want provisional + bob's message", got)
	}
}

func TestInactiveConversationBumpsUnread(t *testing.T) {
	t.Parallel()

	selfID := uuid.New()
	active := uuid.New()
	other := uuid.New()
	state := NewState(selfID)
	state.SetActiveConversation(active)

	bob := domain.PublicUser{ID: uuid.New(), Name: "bob"}
	state.ApplyMessage(authoritative(other, bob, "psst"))
	state.ApplyMessage(authoritative(other, bob, "hello?"))

	if got := state.UnreadCount(other); got != 2 {
		t.Errorf("unread = %d, want 2", got)
	}
	if got := len(state.Messages(other)); got != 0 {
		t.Errorf("inactive conversation stored %d entries, want 0", got)
	}

	// Switching to the conversation clears the indicator.
	state.SetActiveConversation(other)
	if got := state.UnreadCount(other); got != 0 {
		t.Errorf("unread after switch = %d, want 0", got)
	}
}

func TestOwnEchoInInactiveConversationNotUnread(t *testing.T) {
	t.Parallel()

	selfID := uuid.New()
	state := NewState(selfID)
	state.SetActiveConversation(uuid.New())

	other := uuid.New()
	self := domain.PublicUser{ID: selfID, Name: "alice"}
	state.ApplyMessage(authoritative(other, self, "sent from REST"))

	if got := state.UnreadCount(other); got != 0 {
		t.Errorf("own message bumped unread to %d", got)
	}
}

func TestNotificationDedupAcrossLiveAndFetched(t *testing.T) {
	t.Parallel()

	state := NewState(uuid.New())

	n1 := domain.Notification{ID: uuid.New(), Content: "one", CreatedAt: time.Now().Add(-2 * time.Minute)}
	n2 := domain.Notification{ID: uuid.New(), Content: "two", CreatedAt: time.Now().Add(-time.Minute)}
	n3 := domain.Notification{ID: uuid.New(), Content: "three", CreatedAt: time.Now()}

	// Live delivery first, then a regular fetch and a catch-up response that
	// both contain overlapping entries.
	state.ApplyNotification(n3)
	state.MergeFetched(
		[]domain.Notification{n1, n2, n3},
		[]domain.Notification{n2, n3},
	)

	got := state.Notifications()
	if len(got) != 3 {
		t.Fatalf("notifications = %d, want 3 distinct", len(got))
	}
	seen := make(map[uuid.UUID]bool)
	for _, n := range got {
		if seen[n.ID] {
			t.Errorf("duplicate notification %s", n.ID)
		}
		seen[n.ID] = true
	}
}

func TestTypingIndicatorExpiresLocally(t *testing.T) {
	t.Parallel()

	state := NewState(uuid.New())
	candidateID := uuid.New()
	bobID := uuid.New()

	current := time.Now()
	state.now = func() time.Time { return current }

	state.ApplyTyping(bobID, "bob", candidateID, true)
	if got := state.TypingUsers(candidateID); len(got) != 1 || got[0] != "bob" {
		t.Fatalf("typing users = %v, want [bob]", got)
	}

	// A lost stop event: the local deadline still clears the indicator.
	current = current.Add(4 * time.Second)
	if got := state.TypingUsers(candidateID); len(got) != 0 {
		t.Errorf("typing users after expiry = %v, want none", got)
	}
}

func TestDeliveredMessageClearsTypingIndicator(t *testing.T) {
	t.Parallel()

	selfID := uuid.New()
	candidateID := uuid.New()
	state := NewState(selfID)
	state.SetActiveConversation(candidateID)

	bob := domain.PublicUser{ID: uuid.New(), Name: "bob"}
	state.ApplyTyping(bob.ID, "bob", candidateID, true)
	state.ApplyMessage(authoritative(candidateID, bob, "done typing"))

	if got := state.TypingUsers(candidateID); len(got) != 0 {
		t.Errorf("typing users after delivery = %v, want none", got)
	}
}

func TestMergeHistoryKeepsPendingProvisionals(t *testing.T) {
	t.Parallel()

	selfID := uuid.New()
	candidateID := uuid.New()
	state := NewState(selfID)
	state.SetActiveConversation(candidateID)

	tempID := state.AppendLocal(candidateID, "alice", "in flight")

	bob := domain.PublicUser{ID: uuid.New(), Name: "bob"}
	history := []domain.Message{
		authoritative(candidateID, bob, "old one"),
		authoritative(candidateID, bob, "old two"),
	}
	state.MergeHistory(candidateID, history)

	entries := state.Messages(candidateID)
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want history + pending", len(entries))
	}
	last := entries[len(entries)-1]
	if !last.Provisional || last.ID != tempID {
		t.Error("pending provisional should survive a history merge at the tail")
	}
}

func TestMessageUpdateAndDelete(t *testing.T) {
	t.Parallel()

	selfID := uuid.New()
	candidateID := uuid.New()
	state := NewState(selfID)
	state.SetActiveConversation(candidateID)

	bob := domain.PublicUser{ID: uuid.New(), Name: "bob"}
	msg := authoritative(candidateID, bob, "draft")
	state.ApplyMessage(msg)

	msg.Content = "final"
	state.ApplyMessageUpdated(msg)

	entries := state.Messages(candidateID)
	if len(entries) != 1 || entries[0].Content != "final" {
		t.Fatalf("entries after update = %+v", entries)
	}

	state.ApplyMessageDeleted(msg.ID, candidateID)
	if got := len(state.Messages(candidateID)); got != 0 {
		t.Errorf("entries after delete = %d, want 0", got)
	}
}
