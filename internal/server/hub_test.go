package server

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"recruithub/pkg/events"
	"recruithub/pkg/logger"

	"github.com/google/uuid"
)

type statusRecorder struct {
	mu      sync.Mutex
	online  []uuid.UUID
	offline []uuid.UUID
}

func (r *statusRecorder) SetOnline(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.online = append(r.online, userID)
	return nil
}

func (r *statusRecorder) SetOffline(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offline = append(r.offline, userID)
	return nil
}

func newTestHub(t *testing.T, users UserStatusWriter) *Hub {
	t.Helper()
	return NewHub(users, nil, time.Second, logger.NewNop())
}

func newTestClient(hub *Hub, userID uuid.UUID, name string) *Client {
	return NewClient(hub, nil, userID, name, logger.NewNop())
}

// drainEvents empties the client's send queue and decodes each event.
func drainEvents(c *Client) []events.Event {
	var out []events.Event
	for {
		select {
		case data := <-c.send:
			var evt events.Event
			if err := json.Unmarshal(data, &evt); err == nil {
				out = append(out, evt)
			}
		default:
			return out
		}
	}
}

func TestRoomBroadcastIncludesSender(t *testing.T) {
	t.Parallel()

	hub := newTestHub(t, nil)
	candidateID := uuid.New()

	sender := newTestClient(hub, uuid.New(), "alice")
	member := newTestClient(hub, uuid.New(), "bob")
	outsider := newTestClient(hub, uuid.New(), "carol")

	hub.handleRegister(sender)
	hub.handleRegister(member)
	hub.handleRegister(outsider)
	hub.handleJoin(sender, candidateID)
	hub.handleJoin(member, candidateID)

	hub.BroadcastToRoom(candidateID, events.New(events.TypeNewMessage, map[string]string{"hello": "world"}))

	if got := len(drainEvents(sender)); got != 1 {
		t.Errorf("sender received %d events, want 1 (self-echo)", got)
	}
	if got := len(drainEvents(member)); got != 1 {
		t.Errorf("room member received %d events, want 1", got)
	}
	if got := len(drainEvents(outsider)); got != 0 {
		t.Errorf("non-member received %d events, want 0", got)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	t.Parallel()

	hub := newTestHub(t, nil)
	candidateID := uuid.New()

	c := newTestClient(hub, uuid.New(), "alice")
	hub.handleRegister(c)
	hub.handleJoin(c, candidateID)
	hub.handleJoin(c, candidateID)

	hub.BroadcastToRoom(candidateID, events.New(events.TypeNewMessage, nil))

	if got := len(drainEvents(c)); got != 1 {
		t.Errorf("double join delivered %d copies, want 1", got)
	}
}

func TestLeaveUnjoinedRoomIsNoop(t *testing.T) {
	t.Parallel()

	hub := newTestHub(t, nil)
	c := newTestClient(hub, uuid.New(), "alice")
	hub.handleRegister(c)
	hub.handleLeave(c, uuid.New())
}

func TestJoinQueuedBehindRegisterLands(t *testing.T) {
	t.Parallel()

	hub := newTestHub(t, nil)
	candidateID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// The connect sequence: register enqueued before the read pump starts,
	// then the client's first frame is a join. The shared ordered channel
	// must process them in that order every time.
	c := newTestClient(hub, uuid.New(), "alice")
	hub.Register(c)
	hub.Join(c, candidateID)

	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.BroadcastToRoom(candidateID, events.New(events.TypeNewMessage, nil))
		if len(drainEvents(c)) > 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("join queued right behind register never took effect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestJoinAfterUnregisterIsDropped(t *testing.T) {
	t.Parallel()

	hub := newTestHub(t, nil)
	candidateID := uuid.New()

	c := newTestClient(hub, uuid.New(), "alice")
	hub.handleRegister(c)
	hub.handleUnregister(c)
	hub.handleJoin(c, candidateID)

	hub.mu.RLock()
	members := len(hub.rooms[candidateID])
	hub.mu.RUnlock()
	if members != 0 {
		t.Errorf("stale client held %d room memberships, want 0", members)
	}
}

func TestBroadcastToUserReachesAllConnections(t *testing.T) {
	t.Parallel()

	hub := newTestHub(t, nil)
	userID := uuid.New()

	tab1 := newTestClient(hub, userID, "alice")
	tab2 := newTestClient(hub, userID, "alice")
	other := newTestClient(hub, uuid.New(), "bob")

	hub.handleRegister(tab1)
	hub.handleRegister(tab2)
	hub.handleRegister(other)

	hub.BroadcastToUser(userID, events.New(events.TypeNewNotification, nil))

	if got := len(drainEvents(tab1)); got != 1 {
		t.Errorf("first connection received %d events, want 1", got)
	}
	if got := len(drainEvents(tab2)); got != 1 {
		t.Errorf("second connection received %d events, want 1", got)
	}
	if got := len(drainEvents(other)); got != 0 {
		t.Errorf("other user received %d events, want 0", got)
	}
}

func TestOfflineOnlyAfterLastConnectionDrops(t *testing.T) {
	t.Parallel()

	rec := &statusRecorder{}
	hub := newTestHub(t, rec)
	userID := uuid.New()

	tab1 := newTestClient(hub, userID, "alice")
	tab2 := newTestClient(hub, userID, "alice")
	hub.handleRegister(tab1)
	hub.handleRegister(tab2)

	hub.handleUnregister(tab1)

	rec.mu.Lock()
	offlineAfterFirst := len(rec.offline)
	rec.mu.Unlock()
	if offlineAfterFirst != 0 {
		t.Fatalf("user flipped offline with a connection still open")
	}
	if !hub.IsUserOnline(userID) {
		t.Fatal("user should still be online with one connection left")
	}

	hub.handleUnregister(tab2)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.offline) != 1 {
		t.Errorf("offline writes = %d, want 1", len(rec.offline))
	}
	if hub.IsUserOnline(userID) {
		t.Error("user should be offline after last disconnect")
	}
}

func TestUnregisterRemovesRoomMemberships(t *testing.T) {
	t.Parallel()

	hub := newTestHub(t, nil)
	candidateID := uuid.New()

	gone := newTestClient(hub, uuid.New(), "alice")
	stays := newTestClient(hub, uuid.New(), "bob")

	hub.handleRegister(gone)
	hub.handleRegister(stays)
	hub.handleJoin(gone, candidateID)
	hub.handleJoin(stays, candidateID)

	hub.handleUnregister(gone)

	hub.BroadcastToRoom(candidateID, events.New(events.TypeNewMessage, nil))
	if got := len(drainEvents(stays)); got != 1 {
		t.Errorf("remaining member received %d events, want 1", got)
	}
}

func TestTypingNeverEchoedToSelf(t *testing.T) {
	t.Parallel()

	hub := newTestHub(t, nil)
	candidateID := uuid.New()

	typist := newTestClient(hub, uuid.New(), "alice")
	watcher := newTestClient(hub, uuid.New(), "bob")

	hub.handleRegister(typist)
	hub.handleRegister(watcher)
	hub.handleJoin(typist, candidateID)
	hub.handleJoin(watcher, candidateID)

	hub.HandleTyping(typist, candidateID, true)

	if got := len(drainEvents(typist)); got != 0 {
		t.Errorf("typist received %d typing events, want 0", got)
	}

	got := drainEvents(watcher)
	if len(got) != 1 {
		t.Fatalf("watcher received %d events, want 1", len(got))
	}
	if got[0].Type != events.TypeUserTyping {
		t.Errorf("event type = %q, want %q", got[0].Type, events.TypeUserTyping)
	}
}

func TestTypingExpiryBroadcastsStop(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil, nil, 30*time.Millisecond, logger.NewNop())
	candidateID := uuid.New()

	typist := newTestClient(hub, uuid.New(), "alice")
	watcher := newTestClient(hub, uuid.New(), "bob")

	hub.handleRegister(typist)
	hub.handleRegister(watcher)
	hub.handleJoin(typist, candidateID)
	hub.handleJoin(watcher, candidateID)

	hub.HandleTyping(typist, candidateID, true)

	deadline := time.After(time.Second)
	var received []events.Event
	for len(received) < 2 {
		select {
		case data := <-watcher.send:
			var evt events.Event
			if err := json.Unmarshal(data, &evt); err != nil {
				t.Fatalf("bad event payload: %v", err)
			}
			received = append(received, evt)
		case <-deadline:
			t.Fatalf("watcher saw %d typing events, want start then auto-stop", len(received))
		}
	}

	var stop events.UserTypingPayload
	raw, _ := json.Marshal(received[1].Payload)
	if err := json.Unmarshal(raw, &stop); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if stop.IsTyping {
		t.Error("second event should be the auto-expiry stop signal")
	}
}

func TestStopFlipsUsersOfflineOnce(t *testing.T) {
	t.Parallel()

	rec := &statusRecorder{}
	hub := newTestHub(t, rec)
	userID := uuid.New()

	tab1 := newTestClient(hub, userID, "alice")
	tab2 := newTestClient(hub, userID, "alice")
	hub.handleRegister(tab1)
	hub.handleRegister(tab2)

	hub.Stop()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.offline) != 1 {
		t.Errorf("offline writes on shutdown = %d, want 1 per user", len(rec.offline))
	}
}
