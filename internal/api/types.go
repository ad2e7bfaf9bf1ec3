// Package api holds the JSON bodies shared by the HTTP server and its client.
package api

import (
	"time"

	"github.com/existflow/ironmeet/internal/model"
	"github.com/existflow/ironmeet/internal/stats"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	UserID    string `json:"user_id"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// MeetingView is a meeting tree with its recomputed progress
type MeetingView struct {
	model.Meeting
	Stats stats.Breakdown `json:"stats"`
}

// NewMeetingView attaches the breakdown of m
func NewMeetingView(m model.Meeting) MeetingView {
	return MeetingView{Meeting: m, Stats: stats.MeetingBreakdown(m)}
}

type MeetingList struct {
	Meetings []MeetingView `json:"meetings"`
	Overview stats.Overview `json:"overview"`
}

type StatusRequest struct {
	Status model.Status `json:"status"`
}

type NotesRequest struct {
	Content string `json:"content"`
}

type GenerateReportRequest struct {
	StoreAsFile bool `json:"store_as_file"`
}

// ReportResponse carries a composed or stored report
type ReportResponse struct {
	Content    string    `json:"content"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"file_path,omitempty"`
	URL        string    `json:"url,omitempty"`
	EmailDraft string    `json:"email_draft"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// StoredFile is one report file kept for the user
type StoredFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url,omitempty"`
}

type FileList struct {
	Files []StoredFile `json:"files"`
}

type WebhookEvent struct {
	UserID  string `json:"user_id"`
	Status  string `json:"status"`
	PriceID string `json:"price_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
