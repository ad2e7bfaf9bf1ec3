package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/ironmeet/internal/model"
	"github.com/google/uuid"
)

// Scope runs tree operations on behalf of one user
type Scope struct {
	db     *DB
	userID string
}

// For returns a scope limited to rows owned by userID
func (db *DB) For(userID string) *Scope {
	return &Scope{db: db, userID: userID}
}

// UserID returns the owner of the scope
func (s *Scope) UserID() string {
	return s.userID
}

// FetchTree loads every meeting of the user with projects, tasks, notes,
// settings and report attached
func (s *Scope) FetchTree(ctx context.Context) ([]model.Meeting, error) {
	return s.loadTree(ctx, "")
}

// GetMeeting loads one meeting tree
func (s *Scope) GetMeeting(ctx context.Context, id string) (model.Meeting, error) {
	ms, err := s.loadTree(ctx, id)
	if err != nil {
		return model.Meeting{}, err
	}
	if len(ms) == 0 {
		return model.Meeting{}, fmt.Errorf("meeting %s: %w", id, ErrNotFound)
	}
	return ms[0], nil
}

func (s *Scope) loadTree(ctx context.Context, meetingID string) ([]model.Meeting, error) {
	where := ` WHERE m.user_id = ?`
	args := []any{s.userID}
	if meetingID != "" {
		where += ` AND m.id = ?`
		args = append(args, meetingID)
	}

	var r treeRows
	db := s.db

	rows, err := db.query(ctx, db, `SELECT `+meetingColumns+` FROM meetings m`+where+` ORDER BY m.starts_at DESC, m.created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	if r.meetings, err = collect(rows, scanMeeting); err != nil {
		return nil, fmt.Errorf("failed to read meetings: %w", err)
	}
	if len(r.meetings) == 0 {
		return []model.Meeting{}, nil
	}

	rows, err = db.query(ctx, db, `SELECT `+projectColumns+` FROM projects p
		JOIN meetings m ON m.id = p.meeting_id`+where+` ORDER BY p.created_at, p.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	if r.projects, err = collect(rows, scanProject); err != nil {
		return nil, fmt.Errorf("failed to read projects: %w", err)
	}

	rows, err = db.query(ctx, db, `SELECT `+taskColumns+` FROM tasks t
		JOIN projects p ON p.id = t.project_id
		JOIN meetings m ON m.id = p.meeting_id`+where+` ORDER BY t.order_index, t.created_at, t.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if r.tasks, err = collect(rows, scanTask); err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}

	if r.notes, err = s.loadNotes(ctx, where, args); err != nil {
		return nil, err
	}
	if r.settings, err = s.loadSettings(ctx, where, args); err != nil {
		return nil, err
	}
	if r.reports, err = s.loadReports(ctx, where, args); err != nil {
		return nil, err
	}

	return assemble(r), nil
}

func (s *Scope) loadNotes(ctx context.Context, where string, args []any) (map[string]string, error) {
	rows, err := s.db.query(ctx, s.db, `SELECT n.meeting_id, n.content FROM meeting_notes n
		JOIN meetings m ON m.id = n.meeting_id`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, content string
		if err := rows.Scan(&id, &content); err != nil {
			return nil, fmt.Errorf("failed to read notes: %w", err)
		}
		out[id] = content
	}
	return out, rows.Err()
}

func (s *Scope) loadSettings(ctx context.Context, where string, args []any) (map[string]model.ReportSettings, error) {
	rows, err := s.db.query(ctx, s.db, `SELECT r.meeting_id, r.style, r.additional_prompt FROM report_settings r
		JOIN meetings m ON m.id = r.meeting_id`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list report settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.ReportSettings)
	for rows.Next() {
		var id, style, prompt string
		if err := rows.Scan(&id, &style, &prompt); err != nil {
			return nil, fmt.Errorf("failed to read report settings: %w", err)
		}
		out[id] = model.ReportSettings{Style: model.Style(style), AdditionalPrompt: prompt}
	}
	return out, rows.Err()
}

func (s *Scope) loadReports(ctx context.Context, where string, args []any) (map[string]model.GeneratedReport, error) {
	rows, err := s.db.query(ctx, s.db, `SELECT g.meeting_id, g.content, g.file_path, g.created_at FROM generated_reports g
		JOIN meetings m ON m.id = g.meeting_id`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.GeneratedReport)
	for rows.Next() {
		var id, created string
		var rep model.GeneratedReport
		if err := rows.Scan(&id, &rep.Content, &rep.FilePath, &created); err != nil {
			return nil, fmt.Errorf("failed to read reports: %w", err)
		}
		rep.CreatedAt = parseTime(created)
		out[id] = rep
	}
	return out, rows.Err()
}

// CreateMeeting inserts a meeting with its empty notes and default settings
func (s *Scope) CreateMeeting(ctx context.Context, in model.MeetingInput) (model.Meeting, error) {
	if err := in.Validate(); err != nil {
		return model.Meeting{}, err
	}

	now := time.Now().UTC()
	id := uuid.New().String()
	db := s.db

	err := db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := db.exec(ctx, tx, `
			INSERT INTO meetings (id, user_id, title, description, starts_at, duration, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, s.userID, in.Title, in.Description, formatTime(in.Date), in.Duration,
			model.DefaultMeetingStatus, formatTime(now), formatTime(now),
		); err != nil {
			return fmt.Errorf("failed to create meeting: %w", err)
		}
		if _, err := db.exec(ctx, tx,
			`INSERT INTO meeting_notes (meeting_id, content, updated_at) VALUES (?, '', ?)`,
			id, formatTime(now),
		); err != nil {
			return fmt.Errorf("failed to create meeting notes: %w", err)
		}
		if _, err := db.exec(ctx, tx,
			`INSERT INTO report_settings (meeting_id, style, additional_prompt, updated_at) VALUES (?, ?, '', ?)`,
			id, string(model.DefaultStyle), formatTime(now),
		); err != nil {
			return fmt.Errorf("failed to create report settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Meeting{}, err
	}

	return s.GetMeeting(ctx, id)
}

// UpdateMeeting applies a partial update
func (s *Scope) UpdateMeeting(ctx context.Context, id string, p model.MeetingPatch) (model.Meeting, error) {
	if err := p.Validate(); err != nil {
		return model.Meeting{}, err
	}
	if p.Empty() {
		return s.GetMeeting(ctx, id)
	}

	var set setClause
	if p.Title != nil {
		set.add("title", *p.Title)
	}
	if p.Description != nil {
		set.add("description", *p.Description)
	}
	if p.Date != nil {
		set.add("starts_at", formatTime(*p.Date))
	}
	if p.Duration != nil {
		set.add("duration", *p.Duration)
	}
	if p.Status != nil {
		set.add("status", *p.Status)
	}
	set.add("updated_at", formatTime(time.Now()))

	args := append(set.args, id, s.userID)
	res, err := s.db.exec(ctx, s.db, `UPDATE meetings SET `+set.String()+` WHERE id = ? AND user_id = ?`, args...)
	if err != nil {
		return model.Meeting{}, fmt.Errorf("failed to update meeting: %w", err)
	}
	if err := affectedOne(res, "meeting", id); err != nil {
		return model.Meeting{}, err
	}
	return s.GetMeeting(ctx, id)
}

// DeleteMeeting removes a meeting and everything under it
func (s *Scope) DeleteMeeting(ctx context.Context, id string) error {
	res, err := s.db.exec(ctx, s.db, `DELETE FROM meetings WHERE id = ? AND user_id = ?`, id, s.userID)
	if err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}
	return affectedOne(res, "meeting", id)
}

// ownsMeeting returns ErrNotFound unless the meeting belongs to the scope's user
func (s *Scope) ownsMeeting(ctx context.Context, q querier, id string) error {
	var found string
	err := s.db.queryRow(ctx, q, `SELECT id FROM meetings WHERE id = ? AND user_id = ?`, id, s.userID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("meeting %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up meeting: %w", err)
	}
	return nil
}
