package mq

import "time"

// Routing keys published through the outbox.
const (
	RoutingKeyTaskCreated  = "task.created"
	RoutingKeyStageChanged = "client.stage_changed"
)

// TaskCreatedPayload announces a newly created task so the worker can send
// the notification email. Email failure never affects the task itself.
type TaskCreatedPayload struct {
	TaskID        string     `json:"task_id"`
	Title         string     `json:"title"`
	ClientID      *string    `json:"client_id,omitempty"`
	ClientName    string     `json:"client_name,omitempty"`
	AssigneeEmail string     `json:"assignee_email,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	TraceID       string     `json:"trace_id,omitempty"`
}

// StageChangedPayload announces a committed stage transition.
type StageChangedPayload struct {
	ClientID  string    `json:"client_id"`
	FromStage *string   `json:"from_stage"`
	ToStage   string    `json:"to_stage"`
	ChangedAt time.Time `json:"changed_at"`
	TraceID   string    `json:"trace_id,omitempty"`
}
