// Package backend gives the CLI and TUI one view over the local database
// and a remote server.
package backend

import (
	"context"
	"time"

	"github.com/existflow/ironmeet/internal/api"
	"github.com/existflow/ironmeet/internal/client"
	"github.com/existflow/ironmeet/internal/db"
	"github.com/existflow/ironmeet/internal/files"
	"github.com/existflow/ironmeet/internal/model"
	"github.com/existflow/ironmeet/internal/report"
)

// Backend is every meeting operation the front ends need
type Backend interface {
	FetchTree(ctx context.Context) ([]model.Meeting, error)
	GetMeeting(ctx context.Context, id string) (model.Meeting, error)
	CreateMeeting(ctx context.Context, in model.MeetingInput) (model.Meeting, error)
	UpdateMeeting(ctx context.Context, id string, p model.MeetingPatch) (model.Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error
	SaveNotes(ctx context.Context, meetingID, content string) error
	SaveReportSettings(ctx context.Context, meetingID string, rs model.ReportSettings) error

	CreateProject(ctx context.Context, meetingID string, in model.ProjectInput) (model.Project, error)
	UpdateProject(ctx context.Context, id string, p model.ProjectPatch) (model.Project, error)
	DeleteProject(ctx context.Context, id string) error

	CreateTask(ctx context.Context, projectID string, in model.TaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, id string, p model.TaskPatch) (model.Task, error)
	SetTaskStatus(ctx context.Context, id string, s model.Status) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error

	GenerateReport(ctx context.Context, meetingID string, storeAsFile bool) (api.ReportResponse, error)
	Report(ctx context.Context, meetingID string) (api.ReportResponse, error)
	StoredReports(ctx context.Context) ([]api.StoredFile, error)
}

var (
	_ Backend = (*Local)(nil)
	_ Backend = (*client.Client)(nil)
)

// urlTTL is how long local download links stay valid
const urlTTL = time.Hour

// Local serves one user's meetings straight from the database
type Local struct {
	*db.Scope
	files *files.Local
}

// NewLocal scopes database access to userID. fs may be nil, in which case
// reports are always stored inline.
func NewLocal(d *db.DB, userID string, fs *files.Local) *Local {
	return &Local{Scope: d.For(userID), files: fs}
}

// DeleteMeeting removes the meeting and the file behind its stored report
func (l *Local) DeleteMeeting(ctx context.Context, id string) error {
	m, err := l.GetMeeting(ctx, id)
	if err != nil {
		return err
	}
	if err := l.Scope.DeleteMeeting(ctx, id); err != nil {
		return err
	}
	if l.files == nil {
		return nil
	}
	return report.Discard(ctx, m, l.files, l.UserID())
}

// StoredReports lists the report files kept in local storage
func (l *Local) StoredReports(ctx context.Context) ([]api.StoredFile, error) {
	if l.files == nil {
		return []api.StoredFile{}, nil
	}
	return report.StoredFiles(ctx, l.files, l.UserID(), urlTTL, time.Now())
}

// GenerateReport composes and stores the meeting's current report
func (l *Local) GenerateReport(ctx context.Context, meetingID string, storeAsFile bool) (api.ReportResponse, error) {
	m, err := l.GetMeeting(ctx, meetingID)
	if err != nil {
		return api.ReportResponse{}, err
	}
	var fs report.FileStore
	if l.files != nil {
		fs = l.files
	}
	saved, content, err := report.Publish(ctx, m, l.Scope, fs, l.UserID(), storeAsFile)
	if err != nil {
		return api.ReportResponse{}, err
	}
	return l.response(m, saved, content), nil
}

// Report returns the stored report with its content resolved
func (l *Local) Report(ctx context.Context, meetingID string) (api.ReportResponse, error) {
	m, err := l.GetMeeting(ctx, meetingID)
	if err != nil {
		return api.ReportResponse{}, err
	}
	r, err := l.GetReport(ctx, meetingID)
	if err != nil {
		return api.ReportResponse{}, err
	}
	var fs report.FileStore
	if l.files != nil {
		fs = l.files
	}
	content, err := report.Content(ctx, r, fs)
	if err != nil {
		return api.ReportResponse{}, err
	}
	return l.response(m, r, content), nil
}

func (l *Local) response(m model.Meeting, r model.GeneratedReport, content string) api.ReportResponse {
	resp := api.ReportResponse{
		Content:    content,
		FileName:   report.FileName(m.Title),
		FilePath:   r.FilePath,
		EmailDraft: report.EmailDraft(m, content),
		CreatedAt:  r.CreatedAt,
	}
	if r.FilePath != "" && l.files != nil {
		if u, err := l.files.SignedURL(r.FilePath, urlTTL, time.Now()); err == nil {
			resp.URL = u
		}
	}
	return resp
}
