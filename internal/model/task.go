package model

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses.
const (
	TaskStatusOpen = "open"
	TaskStatusDone = "done"
)

type Task struct {
	ID            uuid.UUID  `json:"id"`
	ClientID      *uuid.UUID `json:"client_id,omitempty"`
	Title         string     `json:"title"`
	AssignedTo    string     `json:"assigned_to,omitempty"`
	AssigneeEmail string     `json:"assignee_email,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}
