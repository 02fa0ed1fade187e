package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a recruiter account. Name is the display name that @-mentions
// resolve against, so it is unique. IsOnline and LastOnline are mutated only
// by connection lifecycle events; LastOnline never moves backwards.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsOnline     bool      `gorm:"not null;default:false" json:"isOnline"`
	LastOnline   time.Time `json:"lastOnline"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the denormalized shape embedded in broadcast payloads.
type PublicUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
