// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains them.
package queue

// TaskAssignedEvent is published when a task is assigned to a user, either
// at creation time or through the assign endpoint. It carries enough context
// for downstream consumers to log or notify without querying the primary
// database.
type TaskAssignedEvent struct {
	TaskID       string `json:"task_id"`
	Title        string `json:"title"`
	Priority     string `json:"priority"`
	AssignedToID string `json:"assigned_to_id"`
	AssignedBy   string `json:"assigned_by"`
	DueDate      string `json:"due_date,omitempty"`
	AssignedAt   string `json:"assigned_at"`
}
