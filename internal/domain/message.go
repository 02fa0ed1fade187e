package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is one annotation in a candidate thread. Content edits re-run
// mention resolution and replace Mentions atomically with the content save.
// Ordering is by CreatedAt with Seq breaking ties in insertion order;
// messages are never reordered after creation.
type Message struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	CandidateID uuid.UUID     `gorm:"type:uuid;index:idx_messages_thread;not null" json:"candidateId"`
	SenderID    uuid.UUID     `gorm:"type:uuid;index;not null" json:"-"`
	Sender      PublicUser    `gorm:"-" json:"sender"`
	Content     string        `gorm:"size:2000;not null" json:"content"`
	Mentions    []Mention     `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"mentions"`
	IsEdited    bool          `gorm:"not null;default:false" json:"isEdited"`
	EditedAt    *time.Time    `json:"editedAt,omitempty"`
	ReadBy      []ReadReceipt `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"readBy,omitempty"`
	Seq         int64         `gorm:"index:idx_messages_thread;not null" json:"-"`
	CreatedAt   time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time     `json:"-"`
}

// Mention is a resolved reference from message text to a user. Rows keep the
// resolver's output order via Position; duplicates are not collapsed here.
type Mention struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	MessageID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	Username  string    `gorm:"size:100;not null" json:"username"`
	Position  int       `gorm:"not null" json:"-"`
}

// ReadReceipt records that a user has seen a message. One row per
// (message, user); re-marking is a no-op.
type ReadReceipt struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	MessageID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_receipt_once;not null" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_receipt_once;not null" json:"userId"`
	ReadAt    time.Time `gorm:"not null" json:"readAt"`
}
