package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"recruithub/internal/domain"
	"recruithub/pkg/events"
	"recruithub/pkg/logger"

	"github.com/google/uuid"
)

// ChatSender ingests a message on behalf of an authenticated connection.
type ChatSender interface {
	SendMessage(ctx context.Context, senderID, candidateID uuid.UUID, content string) (domain.Message, error)
}

// NotificationMarker marks a notification read on behalf of its recipient.
type NotificationMarker interface {
	MarkRead(ctx context.Context, notificationID, recipientID uuid.UUID) (domain.Notification, error)
}

// UserStatusWriter flips a user's online flag on connection lifecycle events.
type UserStatusWriter interface {
	SetOnline(ctx context.Context, userID uuid.UUID) error
	SetOffline(ctx context.Context, userID uuid.UUID) error
}

// PresenceMirror pushes advisory typing state to an external store.
// The hub remains authoritative for delivery.
type PresenceMirror interface {
	TrackTyping(ctx context.Context, candidateID, userID string, isTyping bool) error
}

type requestKind int

const (
	reqRegister requestKind = iota
	reqUnregister
	reqJoin
	reqLeave
)

// hubRequest is one connection lifecycle or membership event. Everything
// flows through a single ordered channel: a connection's register is enqueued
// before its read pump starts, so it is always processed before any join the
// connection sends.
type hubRequest struct {
	kind        requestKind
	client      *Client
	candidateID uuid.UUID
}

// Hub owns the room registry: which connections want live events for which
// candidate thread. All membership mutations flow through its run loop;
// broadcasts iterate the registry under a read lock. One hub per process.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[string]*Client
	rooms   map[uuid.UUID]map[*Client]struct{}

	requests chan hubRequest
	stopChan chan struct{}
	stopOnce sync.Once

	typing *TypingTracker

	chat          ChatSender
	notifications NotificationMarker
	users         UserStatusWriter
	presence      PresenceMirror
	logger        *logger.Logger
}

func NewHub(users UserStatusWriter, presence PresenceMirror, typingTTL time.Duration, log *logger.Logger) *Hub {
	h := &Hub{
		clients:  make(map[uuid.UUID]map[string]*Client),
		rooms:    make(map[uuid.UUID]map[*Client]struct{}),
		requests: make(chan hubRequest, 1024),
		stopChan: make(chan struct{}),
		users:    users,
		presence: presence,
		logger:   log,
	}
	h.typing = NewTypingTracker(typingTTL, h.typingExpired)
	return h
}

// AttachServices binds the ingest services after construction; the services
// hold the hub as their broadcaster, so the two are wired in cmd.
func (h *Hub) AttachServices(chat ChatSender, notifications NotificationMarker) {
	h.chat = chat
	h.notifications = notifications
}

// Run drains the request channel in order until Stop or ctx cancellation.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopChan:
			return
		case req := <-h.requests:
			switch req.kind {
			case reqRegister:
				h.handleRegister(req.client)
			case reqUnregister:
				h.handleUnregister(req.client)
			case reqJoin:
				h.handleJoin(req.client, req.candidateID)
			case reqLeave:
				h.handleLeave(req.client, req.candidateID)
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.requests <- hubRequest{kind: reqRegister, client: client}
}

func (h *Hub) Unregister(client *Client) {
	h.requests <- hubRequest{kind: reqUnregister, client: client}
}

// Join subscribes the connection to a candidate room. Idempotent. A join is
// never reordered ahead of the same connection's register.
func (h *Hub) Join(client *Client, candidateID uuid.UUID) {
	h.requests <- hubRequest{kind: reqJoin, client: client, candidateID: candidateID}
}

// Leave removes the connection from a candidate room. Leaving a room never
// joined is a no-op.
func (h *Hub) Leave(client *Client, candidateID uuid.UUID) {
	h.requests <- hubRequest{kind: reqLeave, client: client, candidateID: candidateID}
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[string]*Client)
	}
	h.clients[client.userID][client.clientID] = client
	h.mu.Unlock()

	// Exactly one online-transition write per successful connect, before any
	// other event from this connection is processed.
	if h.users != nil {
		if err := h.users.SetOnline(context.Background(), client.userID); err != nil {
			h.logger.Warnf("set online failed for %s: %v", client.userID, err)
		}
	}
	h.logger.Infof("client connected user=%s conn=%s", client.userID, client.clientID)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	userClients, ok := h.clients[client.userID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := userClients[client.clientID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(userClients, client.clientID)

	for candidateID := range client.rooms {
		if members, ok := h.rooms[candidateID]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, candidateID)
			}
		}
	}

	lastConnection := len(userClients) == 0
	if lastConnection {
		delete(h.clients, client.userID)
	}
	h.mu.Unlock()

	client.closeSend()

	if lastConnection && h.users != nil {
		if err := h.users.SetOffline(context.Background(), client.userID); err != nil {
			h.logger.Warnf("set offline failed for %s: %v", client.userID, err)
		}
	}
	h.logger.Infof("client disconnected user=%s conn=%s", client.userID, client.clientID)
}

func (h *Hub) handleJoin(client *Client, candidateID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Only stale clients fail this check: the ordered request channel
	// guarantees the register was processed first, so a miss means the
	// connection already unregistered.
	if !h.isRegistered(client) {
		return
	}
	if h.rooms[candidateID] == nil {
		h.rooms[candidateID] = make(map[*Client]struct{})
	}
	h.rooms[candidateID][client] = struct{}{}
	client.rooms[candidateID] = true
}

func (h *Hub) handleLeave(client *Client, candidateID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[candidateID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, candidateID)
		}
	}
	delete(client.rooms, candidateID)
}

func (h *Hub) isRegistered(client *Client) bool {
	userClients, ok := h.clients[client.userID]
	if !ok {
		return false
	}
	_, ok = userClients[client.clientID]
	return ok
}

// BroadcastToRoom fans an event out to every connection in the room,
// including the sender's. Room members observe one conversation's broadcasts
// in the order the hub is handed them.
func (h *Hub) BroadcastToRoom(candidateID uuid.UUID, event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Errorf("marshal event %s: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[candidateID] {
		h.enqueue(client, data)
	}
}

// BroadcastToRoomExcept sends to every room member except the named user's
// connections. Used for typing signals, which are never echoed to self.
func (h *Hub) BroadcastToRoomExcept(candidateID uuid.UUID, exceptUserID uuid.UUID, event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Errorf("marshal event %s: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[candidateID] {
		if client.userID == exceptUserID {
			continue
		}
		h.enqueue(client, data)
	}
}

// BroadcastToUser targets an identity: every connection the user currently
// holds receives the event.
func (h *Hub) BroadcastToUser(userID uuid.UUID, event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Errorf("marshal event %s: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients[userID] {
		h.enqueue(client, data)
	}
}

// IsUserOnline reports whether the user has at least one live connection.
func (h *Hub) IsUserOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

func (h *Hub) enqueue(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.logger.Warnf("send buffer full, dropping event user=%s conn=%s", client.userID, client.clientID)
	}
}

// HandleTyping relays an advisory typing signal to the other room members
// and arms (or clears) the auto-expiry timer.
func (h *Hub) HandleTyping(client *Client, candidateID uuid.UUID, isTyping bool) {
	h.typing.Set(client.userID, client.userName, candidateID, isTyping)

	if h.presence != nil {
		if err := h.presence.TrackTyping(context.Background(), candidateID.String(), client.userID.String(), isTyping); err != nil {
			h.logger.Warnf("typing mirror failed: %v", err)
		}
	}

	h.BroadcastToRoomExcept(candidateID, client.userID, events.New(events.TypeUserTyping, events.UserTypingPayload{
		UserID:      client.userID,
		UserName:    client.userName,
		CandidateID: candidateID,
		IsTyping:    isTyping,
	}))
}

func (h *Hub) typingExpired(userID uuid.UUID, userName string, candidateID uuid.UUID) {
	if h.presence != nil {
		if err := h.presence.TrackTyping(context.Background(), candidateID.String(), userID.String(), false); err != nil {
			h.logger.Warnf("typing mirror failed: %v", err)
		}
	}
	h.BroadcastToRoomExcept(candidateID, userID, events.New(events.TypeUserTyping, events.UserTypingPayload{
		UserID:      userID,
		UserName:    userName,
		CandidateID: candidateID,
		IsTyping:    false,
	}))
}

// Stop shuts the hub down, closing every connection and flipping the
// affected users offline so nobody is stuck "online" after a restart.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stopChan) })
	h.typing.StopAll()

	h.mu.Lock()
	clients := make([]*Client, 0)
	for _, userClients := range h.clients {
		for _, client := range userClients {
			clients = append(clients, client)
		}
	}
	h.clients = make(map[uuid.UUID]map[string]*Client)
	h.rooms = make(map[uuid.UUID]map[*Client]struct{})
	h.mu.Unlock()

	seen := make(map[uuid.UUID]bool)
	for _, client := range clients {
		client.closeSend()
		client.closeConn()
		if h.users != nil && !seen[client.userID] {
			seen[client.userID] = true
			if err := h.users.SetOffline(context.Background(), client.userID); err != nil {
				h.logger.Warnf("set offline failed for %s: %v", client.userID, err)
			}
		}
	}
}
