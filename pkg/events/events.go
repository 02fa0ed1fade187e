package events

import "time"

// Event is the envelope for everything that crosses the persistent
// connection, in both directions.
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp int64       `json:"timestamp"`
}

func New(eventType string, payload interface{}) Event {
	return Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Client-to-server events.
const (
	TypeJoinRoom             = "join-room"
	TypeLeaveRoom            = "leave-room"
	TypeSendMessage          = "send-message"
	TypeTyping               = "typing"
	TypeMarkNotificationRead = "mark-notification-read"
)

// Server-to-client events.
const (
	TypeNewMessage       = "new-message"
	TypeMessageUpdated   = "message-updated"
	TypeMessageDeleted   = "message-deleted"
	TypeNewNotification  = "new-notification"
	TypeNotificationRead = "notification-read"
	TypeUserTyping       = "user-typing"
	TypeError            = "error"
)
