package services

import (
	"context"

	"recruithub/pkg/events"

	"github.com/google/uuid"
)

// Broadcaster is the delivery surface the services push live events through.
// The hub satisfies it; services never reach into connection state directly.
type Broadcaster interface {
	// BroadcastToRoom delivers to every connection in the candidate room,
	// the sender's included.
	BroadcastToRoom(candidateID uuid.UUID, event events.Event)
	// BroadcastToRoomExcept delivers to every room member except the named
	// user's connections.
	BroadcastToRoomExcept(candidateID, exceptUserID uuid.UUID, event events.Event)
	// BroadcastToUser delivers to every connection the user holds, room
	// membership notwithstanding.
	BroadcastToUser(userID uuid.UUID, event events.Event)
	IsUserOnline(userID uuid.UUID) bool
}

// StatusMirror pushes advisory presence state to an external store. Failures
// are logged, never propagated; the database row stays authoritative.
type StatusMirror interface {
	SetOnline(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
}
