package model

import (
	"fmt"
	"strings"
	"time"
)

// DefaultProjectColor is applied when a project is created without a color
const DefaultProjectColor = "#4ECDC4"

// Project groups the tasks discussed in a meeting
type Project struct {
	ID          string    `json:"id"`
	MeetingID   string    `json:"meeting_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Tasks       []Task    `json:"tasks"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TasksWithStatus returns the tasks in s, keeping collection order
func (p Project) TasksWithStatus(s Status) []Task {
	var out []Task
	for _, t := range p.Tasks {
		if t.Status == s {
			out = append(out, t)
		}
	}
	return out
}

// ProjectInput carries the fields accepted when creating a project
type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// Validate checks required fields
func (in ProjectInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: project name required", ErrValidation)
	}
	return nil
}

// ProjectPatch is a partial update; nil fields are left unchanged
type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// Empty reports whether the patch changes nothing
func (p ProjectPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Color == nil
}

// Validate rejects blank names
func (p ProjectPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: project name cannot be empty", ErrValidation)
	}
	return nil
}
