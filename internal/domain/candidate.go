package domain

import (
	"time"

	"github.com/google/uuid"
)

// Candidate statuses.
const (
	CandidateStatusActive      = "active"
	CandidateStatusInterviewed = "interviewed"
	CandidateStatusRejected    = "rejected"
	CandidateStatusHired       = "hired"
)

// Candidate is a shared candidate record. Its ID doubles as the room key for
// the conversation thread recruiters annotate. MessageCount is a denormalized
// counter kept eventually consistent with the non-deleted message count.
type Candidate struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone        string    `gorm:"size:50" json:"phone,omitempty"`
	Position     string    `gorm:"size:255" json:"position,omitempty"`
	Status       string    `gorm:"size:20;not null;default:active" json:"status"`
	Skills       []string  `gorm:"serializer:json" json:"skills,omitempty"`
	Experience   int       `json:"experience"`
	Notes        string    `json:"notes,omitempty"`
	AddedByID    uuid.UUID `gorm:"type:uuid;index;not null" json:"addedBy"`
	MessageCount int64     `gorm:"not null;default:0" json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func ValidCandidateStatus(status string) bool {
	switch status {
	case CandidateStatusActive, CandidateStatusInterviewed, CandidateStatusRejected, CandidateStatusHired:
		return true
	}
	return false
}
