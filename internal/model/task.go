package model

import (
	"errors"
	"fmt"
	"time"
)

// Status is the kanban column a task sits in
type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusBlocked    Status = "blocked"
	StatusFinish     Status = "finish"
)

// Statuses lists every status in board column order
var Statuses = []Status{StatusInProgress, StatusBlocked, StatusFinish}

// DefaultTaskTitle is used when a task is created without a title
const DefaultTaskTitle = "New Task"

var (
	// ErrInvalidStatus is returned for anything outside the three known statuses
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrValidation marks input rejected before any write happens
	ErrValidation = errors.New("validation failed")
)

// ParseStatus converts a raw value into a Status
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Valid reports whether s is one of the three known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusBlocked, StatusFinish:
		return true
	}
	return false
}

// Label returns the board column title
func (s Status) Label() string {
	switch s {
	case StatusInProgress:
		return "In Progress"
	case StatusBlocked:
		return "Blocked"
	case StatusFinish:
		return "Finished"
	default:
		return string(s)
	}
}

// Task is a single unit of work inside a project
type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	OrderIndex  int       `json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask creates a task with defaults
func NewTask(id, projectID string, in TaskInput) (Task, error) {
	status := StatusInProgress
	if in.Status != "" {
		if !in.Status.Valid() {
			return Task{}, fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
		}
		status = in.Status
	}
	title := in.Title
	if title == "" {
		title = DefaultTaskTitle
	}
	order := 0
	if in.OrderIndex != nil {
		order = *in.OrderIndex
	}

	now := time.Now().UTC()
	return Task{
		ID:          id,
		ProjectID:   projectID,
		Title:       title,
		Description: in.Description,
		Status:      status,
		OrderIndex:  order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SetStatus moves the task to another column. Every status may move to every
// other status. Setting the current status again is a no-op.
func (t *Task) SetStatus(s Status) (bool, error) {
	if !s.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	if t.Status == s {
		return false, nil
	}
	t.Status = s
	return true, nil
}

// TaskInput carries the fields accepted when creating a task
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status,omitempty"`
	OrderIndex  *int   `json:"order_index,omitempty"`
}

// TaskPatch is a partial update; nil fields are left unchanged
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
	OrderIndex  *int    `json:"order_index,omitempty"`
}

// Empty reports whether the patch changes nothing
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.OrderIndex == nil
}

// Validate rejects unknown statuses
func (p TaskPatch) Validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *p.Status)
	}
	return nil
}

// Apply writes the patch onto t
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.OrderIndex != nil {
		t.OrderIndex = *p.OrderIndex
	}
}
