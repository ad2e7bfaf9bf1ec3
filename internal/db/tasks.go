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

const ownedTasks = `SELECT t.id FROM tasks t
	JOIN projects p ON p.id = t.project_id
	JOIN meetings m ON m.id = p.meeting_id
	WHERE m.user_id = ?`

// CreateTask adds a task to a project. Without an explicit order index the
// task is placed after the tasks already in the project.
func (s *Scope) CreateTask(ctx context.Context, projectID string, in model.TaskInput) (model.Task, error) {
	var task model.Task
	db := s.db

	err := db.inTx(ctx, func(tx *sql.Tx) error {
		var count int
		err := db.queryRow(ctx, tx, `SELECT COUNT(t.id) FROM projects p
			JOIN meetings m ON m.id = p.meeting_id
			LEFT JOIN tasks t ON t.project_id = p.id
			WHERE p.id = ? AND m.user_id = ?
			GROUP BY p.id`, projectID, s.userID).Scan(&count)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to look up project: %w", err)
		}

		if in.OrderIndex == nil {
			in.OrderIndex = &count
		}
		task, err = model.NewTask(uuid.New().String(), projectID, in)
		if err != nil {
			return err
		}

		_, err = db.exec(ctx, tx, `
			INSERT INTO tasks (id, project_id, title, description, status, order_index, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			task.ID, task.ProjectID, task.Title, task.Description, string(task.Status), task.OrderIndex,
			formatTime(task.CreatedAt), formatTime(task.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// GetTask returns a single task
func (s *Scope) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := s.db.queryRow(ctx, s.db, `SELECT `+taskColumns+` FROM tasks t
		WHERE t.id = ? AND t.id IN (`+ownedTasks+`)`, id, s.userID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// UpdateTask applies a partial update. A status change goes through the
// same validation as the in-memory status machine.
func (s *Scope) UpdateTask(ctx context.Context, id string, p model.TaskPatch) (model.Task, error) {
	if err := p.Validate(); err != nil {
		return model.Task{}, err
	}
	if p.Empty() {
		return s.GetTask(ctx, id)
	}

	var set setClause
	if p.Title != nil {
		set.add("title", *p.Title)
	}
	if p.Description != nil {
		set.add("description", *p.Description)
	}
	if p.Status != nil {
		set.add("status", string(*p.Status))
	}
	if p.OrderIndex != nil {
		set.add("order_index", *p.OrderIndex)
	}
	set.add("updated_at", formatTime(time.Now()))

	args := append(set.args, id, s.userID)
	res, err := s.db.exec(ctx, s.db, `UPDATE tasks SET `+set.String()+` WHERE id = ? AND id IN (`+ownedTasks+`)`, args...)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	if err := affectedOne(res, "task", id); err != nil {
		return model.Task{}, err
	}
	return s.GetTask(ctx, id)
}

// SetTaskStatus moves a task to another column, appending it to the end of
// that column. Setting the current status again changes nothing.
func (s *Scope) SetTaskStatus(ctx context.Context, id string, status model.Status) (model.Task, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	changed, err := t.SetStatus(status)
	if err != nil {
		return model.Task{}, err
	}
	if !changed {
		return t, nil
	}

	var count int
	err = s.db.queryRow(ctx, s.db,
		`SELECT COUNT(*) FROM tasks WHERE project_id = ? AND status = ?`, t.ProjectID, string(status),
	).Scan(&count)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to count column: %w", err)
	}

	return s.UpdateTask(ctx, id, model.TaskPatch{Status: &status, OrderIndex: &count})
}

// DeleteTask removes a task
func (s *Scope) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.exec(ctx, s.db, `DELETE FROM tasks WHERE id = ? AND id IN (`+ownedTasks+`)`, id, s.userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return affectedOne(res, "task", id)
}
