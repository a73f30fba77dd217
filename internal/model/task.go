package model

import "time"

// Task statuses and priorities as stored in the tasks table enums.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task mirrors the 'tasks' table. AssignedToID and DueDate are nullable and
// therefore pointers; CreatedByID always references the user who created the
// task and is taken from the authenticated principal, never from the request
// body.
type Task struct {
	ID           string // tasks.id (UUID)
	Title        string // tasks.title
	Description  string // tasks.description
	Status       string // tasks.status
	Priority     string // tasks.priority
	DueDate      *time.Time
	AssignedToID *string // tasks.assigned_to_id (UUID, nullable)
	CreatedByID  string  // tasks.created_by_id (UUID)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
