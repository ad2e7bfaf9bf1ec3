package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/existflow/ironmeet/internal/api"
	"github.com/existflow/ironmeet/internal/model"
)

func meetingPath(id string, rest ...string) string {
	p := "/api/v1/meetings/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

// FetchTree returns every meeting of the user, newest first
func (c *Client) FetchTree(ctx context.Context) ([]model.Meeting, error) {
	var list api.MeetingList
	if err := c.do(ctx, http.MethodGet, "/api/v1/meetings", nil, &list, true); err != nil {
		return nil, err
	}
	ms := make([]model.Meeting, len(list.Meetings))
	for i, v := range list.Meetings {
		ms[i] = v.Meeting
	}
	return ms, nil
}

func (c *Client) GetMeeting(ctx context.Context, id string) (model.Meeting, error) {
	var v api.MeetingView
	err := c.do(ctx, http.MethodGet, meetingPath(id), nil, &v, true)
	return v.Meeting, err
}

func (c *Client) CreateMeeting(ctx context.Context, in model.MeetingInput) (model.Meeting, error) {
	var v api.MeetingView
	err := c.do(ctx, http.MethodPost, "/api/v1/meetings", in, &v, true)
	return v.Meeting, err
}

func (c *Client) UpdateMeeting(ctx context.Context, id string, p model.MeetingPatch) (model.Meeting, error) {
	var v api.MeetingView
	err := c.do(ctx, http.MethodPatch, meetingPath(id), p, &v, true)
	return v.Meeting, err
}

func (c *Client) DeleteMeeting(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, meetingPath(id), nil, nil, true)
}

func (c *Client) SaveNotes(ctx context.Context, meetingID, content string) error {
	return c.do(ctx, http.MethodPut, meetingPath(meetingID, "notes"), api.NotesRequest{Content: content}, nil, true)
}

func (c *Client) SaveReportSettings(ctx context.Context, meetingID string, rs model.ReportSettings) error {
	return c.do(ctx, http.MethodPut, meetingPath(meetingID, "settings"), rs, nil, true)
}

func (c *Client) CreateProject(ctx context.Context, meetingID string, in model.ProjectInput) (model.Project, error) {
	var p model.Project
	err := c.do(ctx, http.MethodPost, meetingPath(meetingID, "projects"), in, &p, true)
	return p, err
}

func (c *Client) UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (model.Project, error) {
	var p model.Project
	err := c.do(ctx, http.MethodPatch, "/api/v1/projects/"+url.PathEscape(id), patch, &p, true)
	return p, err
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/projects/"+url.PathEscape(id), nil, nil, true)
}

func (c *Client) CreateTask(ctx context.Context, projectID string, in model.TaskInput) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, http.MethodPost, "/api/v1/projects/"+url.PathEscape(projectID)+"/tasks", in, &t, true)
	return t, err
}

// UpdateTask applies a partial update. It satisfies board.Persister.
func (c *Client) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, http.MethodPatch, "/api/v1/tasks/"+url.PathEscape(id), patch, &t, true)
	return t, err
}

func (c *Client) SetTaskStatus(ctx context.Context, id string, s model.Status) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, http.MethodPut, "/api/v1/tasks/"+url.PathEscape(id)+"/status", api.StatusRequest{Status: s}, &t, true)
	return t, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/tasks/"+url.PathEscape(id), nil, nil, true)
}

// PreviewReport composes the report server-side without storing it
func (c *Client) PreviewReport(ctx context.Context, meetingID string) (api.ReportResponse, error) {
	var r api.ReportResponse
	err := c.do(ctx, http.MethodGet, meetingPath(meetingID, "report", "preview"), nil, &r, true)
	return r, err
}

// GenerateReport composes and stores the meeting's current report
func (c *Client) GenerateReport(ctx context.Context, meetingID string, storeAsFile bool) (api.ReportResponse, error) {
	var r api.ReportResponse
	req := api.GenerateReportRequest{StoreAsFile: storeAsFile}
	err := c.do(ctx, http.MethodPost, meetingPath(meetingID, "report"), req, &r, true)
	return r, err
}

// StoredReports lists the report files kept on the server
func (c *Client) StoredReports(ctx context.Context) ([]api.StoredFile, error) {
	var list api.FileList
	if err := c.do(ctx, http.MethodGet, "/api/v1/files", nil, &list, true); err != nil {
		return nil, err
	}
	return list.Files, nil
}

// Report returns the meeting's stored report
func (c *Client) Report(ctx context.Context, meetingID string) (api.ReportResponse, error) {
	var r api.ReportResponse
	err := c.do(ctx, http.MethodGet, meetingPath(meetingID, "report"), nil, &r, true)
	return r, err
}
