package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a dashboard profile. Role is either admin or assistant.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor is the authenticated identity passed by value into authorization
// checks. Resolved once per session from the JWT, never re-queried.
type Actor struct {
	UserID string
	Role   string
}
