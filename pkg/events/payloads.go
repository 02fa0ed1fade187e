package events

import (
	"recruithub/internal/domain"

	"github.com/google/uuid"
)

// SendMessagePayload is the body of a client send-message event.
type SendMessagePayload struct {
	CandidateID uuid.UUID `json:"candidateId"`
	Content     string    `json:"content"`
}

// RoomPayload is the body of join-room and leave-room events.
type RoomPayload struct {
	CandidateID uuid.UUID `json:"candidateId"`
}

// TypingPayload is the body of a client typing event.
type TypingPayload struct {
	CandidateID uuid.UUID `json:"candidateId"`
	IsTyping    bool      `json:"isTyping"`
}

// MarkNotificationReadPayload is the body of a mark-notification-read event.
type MarkNotificationReadPayload struct {
	NotificationID uuid.UUID `json:"notificationId"`
}

// NewNotificationPayload targets a user identity; every connection that user
// holds receives it and clients dedup by notification id.
type NewNotificationPayload struct {
	UserID       uuid.UUID           `json:"userId"`
	Notification domain.Notification `json:"notification"`
}

// NotificationReadPayload is echoed to the acting connection only.
type NotificationReadPayload struct {
	NotificationID uuid.UUID `json:"notificationId"`
}

// UserTypingPayload goes to every other member of the room.
type UserTypingPayload struct {
	UserID      uuid.UUID `json:"userId"`
	UserName    string    `json:"userName"`
	CandidateID uuid.UUID `json:"candidateId"`
	IsTyping    bool      `json:"isTyping"`
}

// MessageDeletedPayload tells room members to drop a message.
type MessageDeletedPayload struct {
	MessageID   uuid.UUID `json:"messageId"`
	CandidateID uuid.UUID `json:"candidateId"`
}

// ErrorPayload reports a validation or delivery failure to the one
// connection that triggered it.
type ErrorPayload struct {
	Message string `json:"message"`
}
