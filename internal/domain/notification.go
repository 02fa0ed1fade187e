package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	NotificationTypeMention         = "mention"
	NotificationTypeNewMessage      = "new_message"
	NotificationTypeCandidateUpdate = "candidate_update"
)

// Notification is a durable per-recipient alert. Created by the fan-out path;
// the read flag is mutated by the recipient only, and ReadAt is set only on
// the unread-to-read transition.
type Notification struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID   uuid.UUID  `gorm:"type:uuid;index:idx_notifications_recipient;not null" json:"recipientId"`
	SenderID      uuid.UUID  `gorm:"type:uuid;not null" json:"senderId"`
	SenderName    string     `gorm:"size:100" json:"sender"`
	Type          string     `gorm:"size:20;not null" json:"type"`
	CandidateID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"candidateId"`
	MessageID     *uuid.UUID `gorm:"type:uuid" json:"messageId,omitempty"`
	Content       string     `gorm:"not null" json:"content"`
	CandidateName string     `gorm:"size:255;not null" json:"candidateName"`
	IsRead        bool       `gorm:"index:idx_notifications_recipient;not null;default:false" json:"isRead"`
	ReadAt        *time.Time `json:"readAt,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"createdAt"`
}
