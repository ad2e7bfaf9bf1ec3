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

const ownedProjects = `SELECT p.id FROM projects p JOIN meetings m ON m.id = p.meeting_id WHERE m.user_id = ?`

// CreateProject adds a project to a meeting
func (s *Scope) CreateProject(ctx context.Context, meetingID string, in model.ProjectInput) (model.Project, error) {
	if err := in.Validate(); err != nil {
		return model.Project{}, err
	}
	if err := s.ownsMeeting(ctx, s.db, meetingID); err != nil {
		return model.Project{}, err
	}

	color := in.Color
	if color == "" {
		color = model.DefaultProjectColor
	}
	now := time.Now().UTC()
	p := model.Project{
		ID:          uuid.New().String(),
		MeetingID:   meetingID,
		Name:        in.Name,
		Description: in.Description,
		Color:       color,
		Tasks:       []model.Task{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.exec(ctx, s.db, `
		INSERT INTO projects (id, meeting_id, name, description, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.MeetingID, p.Name, p.Description, p.Color, formatTime(now), formatTime(now),
	)
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

// GetProject returns a project with its tasks
func (s *Scope) GetProject(ctx context.Context, id string) (model.Project, error) {
	row := s.db.queryRow(ctx, s.db, `SELECT `+projectColumns+` FROM projects p
		JOIN meetings m ON m.id = p.meeting_id WHERE p.id = ? AND m.user_id = ?`, id, s.userID)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to get project: %w", err)
	}

	rows, err := s.db.query(ctx, s.db, `SELECT `+taskColumns+` FROM tasks t
		WHERE t.project_id = ? ORDER BY t.order_index, t.created_at, t.id`, id)
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	tasks, err := collect(rows, scanTask)
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to read tasks: %w", err)
	}
	if tasks != nil {
		p.Tasks = tasks
	}
	return p, nil
}

// UpdateProject applies a partial update
func (s *Scope) UpdateProject(ctx context.Context, id string, p model.ProjectPatch) (model.Project, error) {
	if err := p.Validate(); err != nil {
		return model.Project{}, err
	}
	if p.Empty() {
		return s.GetProject(ctx, id)
	}

	var set setClause
	if p.Name != nil {
		set.add("name", *p.Name)
	}
	if p.Description != nil {
		set.add("description", *p.Description)
	}
	if p.Color != nil {
		color := *p.Color
		if color == "" {
			color = model.DefaultProjectColor
		}
		set.add("color", color)
	}
	set.add("updated_at", formatTime(time.Now()))

	args := append(set.args, id, s.userID)
	res, err := s.db.exec(ctx, s.db, `UPDATE projects SET `+set.String()+` WHERE id = ? AND id IN (`+ownedProjects+`)`, args...)
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to update project: %w", err)
	}
	if err := affectedOne(res, "project", id); err != nil {
		return model.Project{}, err
	}
	return s.GetProject(ctx, id)
}

// DeleteProject removes a project and its tasks
func (s *Scope) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.exec(ctx, s.db, `DELETE FROM projects WHERE id = ? AND id IN (`+ownedProjects+`)`, id, s.userID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return affectedOne(res, "project", id)
}
