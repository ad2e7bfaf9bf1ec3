// Package tui is the kanban board of one meeting.
package tui

import (
	"context"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/huh"
	"github.com/existflow/ironmeet/internal/board"
	"github.com/existflow/ironmeet/internal/logger"
	"github.com/existflow/ironmeet/internal/model"
)

// Store is what the board needs from the database or the server
type Store interface {
	board.Persister
	GetMeeting(ctx context.Context, id string) (model.Meeting, error)
	CreateTask(ctx context.Context, projectID string, in model.TaskInput) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeForm
	ModeChart
	ModeReport
	ModeHelp
)

// columns are the board columns, left to right
var columns = []model.Status{model.StatusInProgress, model.StatusBlocked, model.StatusFinish}

type formKind int

const (
	formAdd formKind = iota
	formEdit
	formDelete
)

// Options configures the board screen
type Options struct {
	Board board.Options

	// ConfirmDelete asks before a task is deleted
	ConfirmDelete bool
}

// DefaultOptions rolls back failed writes and confirms deletes
func DefaultOptions() Options {
	return Options{Board: board.DefaultOptions(), ConfirmDelete: true}
}

// Model is the main TUI model
type Model struct {
	store Store
	board *board.Board

	// meeting is the last snapshot taken from board, used for rendering
	meeting model.Meeting

	// UI state
	width      int
	height     int
	mode       Mode
	projCursor int
	colCursor  int
	rowCursor  int

	// Forms keep their values behind pointers so copies of Model share them
	form        *huh.Form
	formKind    formKind
	formTitle   *string
	formDesc    *string
	formConfirm *bool
	editingID   string

	confirmDelete bool

	chart    barchart.Model
	report   viewport.Model
	progress progress.Model
	help     help.Model

	message string
	isError bool
}

// NewModel creates a board for meeting m
func NewModel(store Store, m model.Meeting, opts Options) Model {
	logger.Info("Initializing TUI model", logger.F("meeting", m.ID), logger.F("projects", len(m.Projects)))

	title, desc, ok := "", "", false
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30

	tm := Model{
		store:         store,
		board:         board.New(m, store, opts.Board),
		formTitle:     &title,
		formDesc:      &desc,
		formConfirm:   &ok,
		confirmDelete: opts.ConfirmDelete,
		chart:         barchart.New(60, 12),
		report:        viewport.New(80, 20),
		progress:      bar,
		help:          help.New(),
	}
	tm.refresh()
	return tm
}

// refresh re-reads the board and keeps the cursors in range
func (m *Model) refresh() {
	m.meeting = m.board.Snapshot()
	m.projCursor = clamp(m.projCursor, 0, len(m.meeting.Projects)-1)
	m.colCursor = clamp(m.colCursor, 0, len(columns)-1)
	m.rowCursor = clamp(m.rowCursor, 0, len(m.column(m.colCursor))-1)
}

func (m *Model) currentProject() *model.Project {
	if m.projCursor < len(m.meeting.Projects) {
		return &m.meeting.Projects[m.projCursor]
	}
	return nil
}

// column returns the tasks of the current project in column i
func (m *Model) column(i int) []model.Task {
	p := m.currentProject()
	if p == nil {
		return nil
	}
	return m.board.Column(p.ID, columns[i])
}

func (m *Model) currentTask() *model.Task {
	col := m.column(m.colCursor)
	if m.rowCursor < len(col) {
		return &col[m.rowCursor]
	}
	return nil
}

func (m *Model) setMessage(msg string) {
	m.message = msg
	m.isError = false
}

func (m *Model) setError(msg string) {
	m.message = msg
	m.isError = true
}
