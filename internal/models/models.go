package models

import "time"

// Status is a task status as the API spells it
type Status string

const (
	StatusPending    Status = "Pendiente"
	StatusInProgress Status = "En Progreso"
	StatusCompleted  Status = "Completada"
	StatusBlocked    Status = "Bloqueada"
)

// Statuses lists every known status in board order
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusBlocked}

// Known reports whether s is one of Statuses
func (s Status) Known() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Label returns the English display label for a status
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusBlocked:
		return "Blocked"
	}
	return string(s)
}

// Priority is a task priority as the API spells it
type Priority string

const (
	PriorityLow      Priority = "Baja"
	PriorityMedium   Priority = "Media"
	PriorityHigh     Priority = "Alta"
	PriorityCritical Priority = "Crítica"
)

// Priorities lists every known priority, lowest first
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Label returns the English display label for a priority
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	}
	return string(p)
}

// TaskInput is the writable field set of a task. The update endpoint
// replaces the whole record, so updates always carry every field.
type TaskInput struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Status         Status   `json:"status"`
	Priority       Priority `json:"priority"`
	ProjectID      int64    `json:"project_id"`
	AssignedTo     int64    `json:"assigned_to"`
	DueDate        string   `json:"due_date"`
	EstimatedHours float64  `json:"estimated_hours"`
}

// Task represents a task as returned by the API
type Task struct {
	ID int64 `json:"id"`
	TaskInput
	ActualHours float64 `json:"actual_hours"`
	CreatedBy   int64   `json:"created_by"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// Input returns the writable fields of the task
func (t Task) Input() TaskInput {
	return t.TaskInput
}

// ProjectInput is the writable field set of a project
type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Project groups tasks
type Project struct {
	ID int64 `json:"id"`
	ProjectInput
}

// User is read-only from the client's point of view
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Comment represents a comment on a task
type Comment struct {
	ID        int64  `json:"id"`
	TaskID    int64  `json:"task_id"`
	UserID    int64  `json:"user_id"`
	Text      string `json:"comment_text"`
	CreatedAt string `json:"created_at"`
}

// HistoryEntry is a server-generated audit record for a task
type HistoryEntry struct {
	ID        int64  `json:"id"`
	TaskID    int64  `json:"task_id"`
	UserID    int64  `json:"user_id"`
	Action    string `json:"action"`
	OldValue  string `json:"old_value"`
	NewValue  string `json:"new_value"`
	Timestamp string `json:"timestamp"`
}

// Notification is addressed to the current user
type Notification struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTime parses the API's ISO-8601 timestamps. Timestamps without a zone
// are UTC.
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
