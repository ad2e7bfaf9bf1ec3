package board

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/existflow/ironmeet/internal/logger"
	"github.com/existflow/ironmeet/internal/model"
)

// ErrTaskNotFound is returned for task ids not on the board
var ErrTaskNotFound = errors.New("task not on board")

// Persister writes task changes to the backing store
type Persister interface {
	UpdateTask(ctx context.Context, id string, p model.TaskPatch) (model.Task, error)
}

// Options controls failure handling
type Options struct {
	// RollbackOnFailure restores the previous values when a write fails.
	// When false the optimistic values stay on screen.
	RollbackOnFailure bool
}

// DefaultOptions rolls back failed writes
func DefaultOptions() Options {
	return Options{RollbackOnFailure: true}
}

// Board holds one meeting tree and applies task changes to it before they
// are persisted
type Board struct {
	mu      sync.Mutex
	meeting model.Meeting
	store   Persister
	opts    Options
	log     *logger.Logger
}

// New creates a board over a copy of m
func New(m model.Meeting, store Persister, opts Options) *Board {
	return &Board{meeting: m.Clone(), store: store, opts: opts}
}

// WithLogger sets the logger used to report failed writes
func (b *Board) WithLogger(l *logger.Logger) *Board {
	b.log = l
	return b
}

// Snapshot returns a deep copy of the current tree
func (b *Board) Snapshot() model.Meeting {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.meeting.Clone()
}

// Replace swaps in a freshly loaded tree
func (b *Board) Replace(m model.Meeting) {
	b.mu.Lock()
	b.meeting = m.Clone()
	b.mu.Unlock()
}

// Column returns the tasks of a project in one status, ordered for display
func (b *Board) Column(projectID string, s model.Status) []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.meeting.FindProject(projectID)
	if p == nil {
		return nil
	}
	return sortedColumn(p.TasksWithStatus(s))
}

func sortedColumn(ts []model.Task) []model.Task {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].OrderIndex < ts[j].OrderIndex })
	return ts
}

// fields is the subset of a task a Change can touch
type fields struct {
	Title       string
	Description string
	Status      model.Status
	OrderIndex  int
}

func fieldsOf(t *model.Task) fields {
	return fields{Title: t.Title, Description: t.Description, Status: t.Status, OrderIndex: t.OrderIndex}
}

func (f fields) applyTo(t *model.Task) {
	t.Title = f.Title
	t.Description = f.Description
	t.Status = f.Status
	t.OrderIndex = f.OrderIndex
}

// Change is a tentative edit already visible on the board. Persist writes it
// and undoes it if the write fails.
type Change struct {
	board  *Board
	taskID string
	before fields
	after  fields
	patch  model.TaskPatch

	rolledBack bool
}

// TaskID returns the task the change applies to
func (c *Change) TaskID() string {
	return c.taskID
}

// RolledBack reports whether a failed Persist restored the previous values
func (c *Change) RolledBack() bool {
	return c.rolledBack
}

// NoOp reports whether the change leaves the task as it was
func (c *Change) NoOp() bool {
	return c.patch.Empty()
}

// SetTaskStatus moves a task to the end of another column
func (b *Board) SetTaskStatus(taskID string, s model.Status) (*Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, p := b.meeting.FindTask(taskID)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	before := fieldsOf(t)
	changed, err := t.SetStatus(s)
	if err != nil {
		return nil, err
	}
	if !changed {
		return &Change{board: b, taskID: taskID, before: before, after: before}, nil
	}

	// Count the target column without the moving task
	t.OrderIndex = len(p.TasksWithStatus(s)) - 1
	after := fieldsOf(t)
	status, order := after.Status, after.OrderIndex

	return &Change{
		board:  b,
		taskID: taskID,
		before: before,
		after:  after,
		patch:  model.TaskPatch{Status: &status, OrderIndex: &order},
	}, nil
}

// EditTask changes the title and description of a task
func (b *Board) EditTask(taskID, title, description string) (*Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, _ := b.meeting.FindTask(taskID)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if title == "" {
		title = model.DefaultTaskTitle
	}

	before := fieldsOf(t)
	var patch model.TaskPatch
	if title != t.Title {
		patch.Title = &title
	}
	if description != t.Description {
		patch.Description = &description
	}
	patch.Apply(t)

	return &Change{board: b, taskID: taskID, before: before, after: fieldsOf(t), patch: patch}, nil
}

// AddTask puts a task created by the store onto the board
func (b *Board) AddTask(t model.Task) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.meeting.FindProject(t.ProjectID)
	if p == nil {
		return fmt.Errorf("project %s not on board", t.ProjectID)
	}
	p.Tasks = append(p.Tasks, t)
	return nil
}

// RemoveTask drops a task from the board
func (b *Board) RemoveTask(taskID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, p := b.meeting.FindTask(taskID)
	if p == nil {
		return
	}
	for i := range p.Tasks {
		if p.Tasks[i].ID == taskID {
			p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
			return
		}
	}
}

// Persist writes the change. On failure, and when rollback is enabled, the
// previous values are restored unless the task was edited again meanwhile.
func (c *Change) Persist(ctx context.Context) error {
	if c.NoOp() {
		return nil
	}

	saved, err := c.board.store.UpdateTask(ctx, c.taskID, c.patch)
	if err == nil {
		c.board.confirm(c, saved)
		return nil
	}

	if c.board.opts.RollbackOnFailure {
		c.rolledBack = c.board.rollback(c)
	}
	c.board.logFailure(c, err, c.rolledBack)
	return fmt.Errorf("failed to save task %s: %w", c.taskID, err)
}

func (b *Board) confirm(c *Change, saved model.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, _ := b.meeting.FindTask(c.taskID)
	if t == nil || fieldsOf(t) != c.after {
		return
	}
	t.UpdatedAt = saved.UpdatedAt
}

// rollback reports whether the previous values were restored
func (b *Board) rollback(c *Change) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, _ := b.meeting.FindTask(c.taskID)
	if t == nil || fieldsOf(t) != c.after {
		return false
	}
	c.before.applyTo(t)
	return true
}

func (b *Board) logFailure(c *Change, err error, rolledBack bool) {
	fs := []logger.Field{
		logger.F("task", c.taskID),
		logger.F("rolled_back", rolledBack),
		logger.Err(err),
	}
	if b.log != nil {
		b.log.Error("Failed to persist task change", fs...)
		return
	}
	logger.Error("Failed to persist task change", fs...)
}
