package model

import (
	"fmt"
	"strings"
	"time"
)

// Style selects the report template
type Style string

const (
	StyleExecutive      Style = "executive"
	StyleDetailed       Style = "detailed"
	StyleClientFriendly Style = "client-friendly"
	StyleTechnical      Style = "technical"
)

// Styles lists the known report styles
var Styles = []Style{StyleExecutive, StyleDetailed, StyleClientFriendly, StyleTechnical}

// DefaultStyle is stored with every new meeting
const DefaultStyle = StyleExecutive

// DefaultMeetingStatus is stored with every new meeting
const DefaultMeetingStatus = "scheduled"

// Valid reports whether s is a known style
func (s Style) Valid() bool {
	for _, known := range Styles {
		if s == known {
			return true
		}
	}
	return false
}

// ReportSettings drives the report composer
type ReportSettings struct {
	Style            Style  `json:"style"`
	AdditionalPrompt string `json:"additional_prompt"`
}

// GeneratedReport is the single current report of a meeting
type GeneratedReport struct {
	Content   string    `json:"content"`
	FilePath  string    `json:"file_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Meeting is the root of the meeting/project/task tree
type Meeting struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Date           time.Time        `json:"date"`
	Time           string           `json:"time"`
	Duration       int              `json:"duration"`
	Status         string           `json:"status"`
	Projects       []Project        `json:"projects"`
	Notes          string           `json:"notes"`
	ReportSettings ReportSettings   `json:"report_settings"`
	Report         *GeneratedReport `json:"report,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ClockOf returns the HH:mm part of a meeting date, in UTC
func ClockOf(date time.Time) string {
	return date.UTC().Format("15:04")
}

// FindProject returns a pointer into m.Projects
func (m *Meeting) FindProject(id string) *Project {
	for i := range m.Projects {
		if m.Projects[i].ID == id {
			return &m.Projects[i]
		}
	}
	return nil
}

// FindTask returns a pointer to the task and its owning project
func (m *Meeting) FindTask(id string) (*Task, *Project) {
	for i := range m.Projects {
		p := &m.Projects[i]
		for j := range p.Tasks {
			if p.Tasks[j].ID == id {
				return &p.Tasks[j], p
			}
		}
	}
	return nil, nil
}

// Clone returns a deep copy of the meeting tree
func (m Meeting) Clone() Meeting {
	out := m
	if m.Projects != nil {
		out.Projects = make([]Project, len(m.Projects))
		for i, p := range m.Projects {
			cp := p
			if p.Tasks != nil {
				cp.Tasks = append([]Task(nil), p.Tasks...)
			}
			out.Projects[i] = cp
		}
	}
	if m.Report != nil {
		r := *m.Report
		out.Report = &r
	}
	return out
}

// MeetingInput carries the fields accepted when creating a meeting
type MeetingInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Duration    int       `json:"duration"`
}

// Validate checks required fields
func (in MeetingInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: meeting title required", ErrValidation)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: meeting date required", ErrValidation)
	}
	if in.Duration < 0 {
		return fmt.Errorf("%w: duration cannot be negative", ErrValidation)
	}
	return nil
}

// MeetingPatch is a partial update; nil fields are left unchanged
type MeetingPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Duration    *int       `json:"duration,omitempty"`
	Status      *string    `json:"status,omitempty"`
}

// Empty reports whether the patch changes nothing
func (p MeetingPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.Duration == nil && p.Status == nil
}

// Validate rejects blank titles and negative durations
func (p MeetingPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: meeting title cannot be empty", ErrValidation)
	}
	if p.Duration != nil && *p.Duration < 0 {
		return fmt.Errorf("%w: duration cannot be negative", ErrValidation)
	}
	return nil
}
