package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/ironmeet/internal/model"
)

// SaveNotes replaces the meeting notes
func (s *Scope) SaveNotes(ctx context.Context, meetingID, content string) error {
	if err := s.ownsMeeting(ctx, s.db, meetingID); err != nil {
		return err
	}
	_, err := s.db.exec(ctx, s.db, `
		INSERT INTO meeting_notes (meeting_id, content, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (meeting_id) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		meetingID, content, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save notes: %w", err)
	}
	return nil
}

// SaveReportSettings replaces the report style and prompt. An empty style
// resets to the default.
func (s *Scope) SaveReportSettings(ctx context.Context, meetingID string, rs model.ReportSettings) error {
	if rs.Style == "" {
		rs.Style = model.DefaultStyle
	}
	if !rs.Style.Valid() {
		return fmt.Errorf("%w: unknown report style %q", model.ErrValidation, rs.Style)
	}
	if err := s.ownsMeeting(ctx, s.db, meetingID); err != nil {
		return err
	}
	_, err := s.db.exec(ctx, s.db, `
		INSERT INTO report_settings (meeting_id, style, additional_prompt, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (meeting_id) DO UPDATE SET
			style = excluded.style,
			additional_prompt = excluded.additional_prompt,
			updated_at = excluded.updated_at`,
		meetingID, string(rs.Style), rs.AdditionalPrompt, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save report settings: %w", err)
	}
	return nil
}

// SaveReport stores the meeting's single current report, replacing any
// earlier one
func (s *Scope) SaveReport(ctx context.Context, meetingID string, r model.GeneratedReport) (model.GeneratedReport, error) {
	if err := s.ownsMeeting(ctx, s.db, meetingID); err != nil {
		return model.GeneratedReport{}, err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.exec(ctx, s.db, `
		INSERT INTO generated_reports (meeting_id, content, file_path, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (meeting_id) DO UPDATE SET
			content = excluded.content,
			file_path = excluded.file_path,
			created_at = excluded.created_at`,
		meetingID, r.Content, r.FilePath, formatTime(r.CreatedAt),
	)
	if err != nil {
		return model.GeneratedReport{}, fmt.Errorf("failed to save report: %w", err)
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

// GetReport returns the meeting's current report
func (s *Scope) GetReport(ctx context.Context, meetingID string) (model.GeneratedReport, error) {
	var r model.GeneratedReport
	var created string
	err := s.db.queryRow(ctx, s.db, `SELECT g.content, g.file_path, g.created_at FROM generated_reports g
		JOIN meetings m ON m.id = g.meeting_id
		WHERE g.meeting_id = ? AND m.user_id = ?`, meetingID, s.userID,
	).Scan(&r.Content, &r.FilePath, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.GeneratedReport{}, fmt.Errorf("report for meeting %s: %w", meetingID, ErrNotFound)
	}
	if err != nil {
		return model.GeneratedReport{}, fmt.Errorf("failed to get report: %w", err)
	}
	r.CreatedAt = parseTime(created)
	return r, nil
}
