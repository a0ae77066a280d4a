package model

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the three workflow states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown task status %q", raw)
	}
	return s, nil
}

type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AssignedTo  *int      `json:"assignedTo"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IsAssignedTo reports whether the task belongs to employeeID.
func (t Task) IsAssignedTo(employeeID int) bool {
	return t.AssignedTo != nil && *t.AssignedTo == employeeID
}

// Input returns the replaceable fields of t, used to build full-replace updates.
func (t Task) Input() TaskInput {
	return TaskInput{
		Title:       t.Title,
		Description: t.Description,
		AssignedTo:  t.AssignedTo,
		Status:      t.Status,
	}
}

// TaskInput is the body of POST /tasks and PUT /tasks/{id}. Updates replace
// every field.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  *int   `json:"assignedTo"`
	Status      Status `json:"status"`
}
